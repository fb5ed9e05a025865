package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/pairchat/internal/common"
)

type errorResponse struct {
	Message string `json:"message"`
}

// statusFor maps sentinel errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrValidation),
		errors.Is(err, common.ErrEmptyMessage),
		errors.Is(err, common.ErrInvalidAttachment):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, errBodyTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, common.ErrAttachmentUpload):
		return http.StatusBadGateway
	case errors.Is(err, common.ErrPersistence):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// messageFor hides internal details behind the status text on 5xx.
func messageFor(status int, err error) string {
	if status >= http.StatusInternalServerError {
		switch {
		case errors.Is(err, common.ErrAttachmentUpload):
			return common.ErrAttachmentUpload.Error()
		case errors.Is(err, common.ErrPersistence):
			return common.ErrPersistence.Error()
		}
		return http.StatusText(status)
	}
	return err.Error()
}

func (s *Server) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(ctx, "request failed", "status", status, "error", err)
	} else {
		s.logger.Debug(ctx, "request rejected", "status", status, "error", err)
	}
	writeJSON(w, status, errorResponse{Message: messageFor(status, err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
