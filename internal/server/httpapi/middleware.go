package httpapi

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/pairchat/internal/common"
	"github.com/julienschmidt/httprouter"
)

// bearerToken reads the access token from the Authorization header, falling
// back to the token query parameter used by WebSocket handshakes.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, common.AuthorizationScheme) {
		return strings.TrimSpace(strings.TrimPrefix(h, common.AuthorizationScheme))
	}
	return r.URL.Query().Get(common.AccessTokenQueryParam)
}

func (s *Server) authenticate(r *http.Request) (*http.Request, error) {
	token := bearerToken(r)
	if token == "" {
		return nil, common.ErrorUnauthorized
	}
	userID, err := s.users.UserIDFromAccessToken(token)
	if err != nil {
		return nil, err
	}
	return r.WithContext(withUserID(r.Context(), userID)), nil
}

// auth guards an httprouter handle.
func (s *Server) auth(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ar, err := s.authenticate(r)
		if err != nil {
			s.writeError(r.Context(), w, err)
			return
		}
		next(w, ar, ps)
	}
}

// authHandler guards a plain http.Handler.
func (s *Server) authHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ar, err := s.authenticate(r)
		if err != nil {
			s.writeError(r.Context(), w, err)
			return
		}
		next.ServeHTTP(w, ar)
	})
}

// cors answers preflights and decorates responses for allowed origins.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowed := s.origins.Allowed(origin)

		if allowed {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			if !allowed {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			h := w.Header()
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			h.Set("Access-Control-Max-Age", "600")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack is required by the WebSocket upgrade.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

// logRequests logs one line per request and turns panics into 500s.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			if p := recover(); p != nil {
				s.logger.Error(r.Context(), "panic serving request", "path", r.URL.Path, "panic", p)
				writeJSON(rec, http.StatusInternalServerError, errorResponse{Message: http.StatusText(http.StatusInternalServerError)})
			}
			s.logger.Info(r.Context(), "request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
		}()

		next.ServeHTTP(rec, r)
	})
}
