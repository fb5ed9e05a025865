package ws

import (
	"net/http"

	"github.com/dmitrijs2005/pairchat/internal/logging"
	"github.com/gorilla/websocket"
)

// IdentityFunc extracts the authenticated identity placed on the request
// by the auth middleware.
type IdentityFunc func(r *http.Request) (string, bool)

// Handler upgrades authenticated requests and hands them to the Hub.
type Handler struct {
	hub            *Hub
	identity       IdentityFunc
	upgrader       websocket.Upgrader
	maxMessageSize int64
	logger         logging.Logger
}

func NewHandler(hub *Hub, identity IdentityFunc, origins *OriginPolicy, maxMessageSize int64, logger logging.Logger) *Handler {
	h := &Handler{
		hub:            hub,
		identity:       identity,
		maxMessageSize: maxMessageSize,
		logger:         logger.With("module", "ws"),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if origins.CheckRequest(r) {
				return true
			}
			h.logger.Warn(r.Context(), "blocked websocket from disallowed origin", "origin", r.Header.Get("Origin"))
			return false
		},
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	identity, ok := h.identity(r)
	if !ok || identity == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.logger.Warn(r.Context(), "websocket upgrade failed", "user_id", identity, "error", err)
		return
	}

	c := newConn(wsConn, h.hub, identity, r.RemoteAddr, h.maxMessageSize, h.logger)
	if !h.hub.Register(c) {
		_ = wsConn.Close()
	}
}
