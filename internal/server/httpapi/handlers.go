package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/pairchat/internal/common"
	"github.com/dmitrijs2005/pairchat/internal/server/delivery"
	"github.com/dmitrijs2005/pairchat/internal/server/services"
	"github.com/julienschmidt/httprouter"
)

const apiVersion = "1.0.0"

var errBodyTooLarge = errors.New("request body too large")

type healthResponse struct {
	Status     string    `json:"status"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
	APIVersion string    `json:"apiVersion"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type sendMessageRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// decodeJSON reads a JSON body into v, capped at maxBodyBytes when set.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := r.Body
	if s.maxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	}
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errBodyTooLarge
		}
		return fmt.Errorf("%w: malformed JSON body", common.ErrValidation)
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "ok",
		Message:    "pairchat server is running",
		Timestamp:  s.now().UTC(),
		APIVersion: apiVersion,
	})
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in services.SignupInput
	if err := s.decodeJSON(w, r, &in); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	session, err := s.users.Signup(r.Context(), in)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in services.LoginInput
	if err := s.decodeJSON(w, r, &in); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	session, err := s.users.Login(r.Context(), in)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in refreshRequest
	if err := s.decodeJSON(w, r, &in); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	if in.RefreshToken == "" {
		s.writeError(r.Context(), w, common.ErrorUnauthorized)
		return
	}
	pair, err := s.users.RefreshToken(r.Context(), in.RefreshToken)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in refreshRequest
	if err := s.decodeJSON(w, r, &in); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	if in.RefreshToken != "" {
		if err := s.users.Logout(r.Context(), in.RefreshToken); err != nil {
			s.writeError(r.Context(), w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

func (s *Server) check(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, _ := UserIDFromContext(r.Context())
	user, err := s.users.Profile(r.Context(), userID)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in services.UpdateProfileInput
	if err := s.decodeJSON(w, r, &in); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	userID, _ := UserIDFromContext(r.Context())
	user, err := s.users.UpdateProfile(r.Context(), userID, in)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) partners(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, _ := UserIDFromContext(r.Context())
	users, err := s.conversations.Partners(r.Context(), userID)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) history(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, _ := UserIDFromContext(r.Context())
	msgs, err := s.conversations.History(r.Context(), userID, ps.ByName("peerId"))
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var in sendMessageRequest
	if err := s.decodeJSON(w, r, &in); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	peer, err := s.conversations.Peer(r.Context(), ps.ByName("peerId"))
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	userID, _ := UserIDFromContext(r.Context())
	msg, err := s.messages.Send(r.Context(), delivery.Draft{
		SenderID:   userID,
		ReceiverID: peer.ID,
		Text:       in.Text,
		Image:      in.Image,
	})
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// attachment redirects to a short-lived presigned URL so the bucket itself
// can stay private.
func (s *Server) attachment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	key := strings.TrimPrefix(ps.ByName("key"), "/")
	url, err := s.attachments.PresignGet(r.Context(), key)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}
