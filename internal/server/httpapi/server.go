// Package httpapi exposes pairchat over HTTP: the JSON REST endpoints and
// the authenticated WebSocket upgrade.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/pairchat/internal/logging"
	"github.com/dmitrijs2005/pairchat/internal/server/delivery"
	"github.com/dmitrijs2005/pairchat/internal/server/models"
	"github.com/dmitrijs2005/pairchat/internal/server/services"
	"github.com/dmitrijs2005/pairchat/internal/server/ws"
	"github.com/julienschmidt/httprouter"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

type UserAPI interface {
	Signup(ctx context.Context, in services.SignupInput) (*services.Session, error)
	Login(ctx context.Context, in services.LoginInput) (*services.Session, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Profile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, in services.UpdateProfileInput) (*models.User, error)
	UserIDFromAccessToken(token string) (string, error)
}

type ConversationAPI interface {
	Partners(ctx context.Context, userID string) ([]*models.User, error)
	Peer(ctx context.Context, peerID string) (*models.User, error)
	History(ctx context.Context, userID, peerID string) ([]*models.Message, error)
}

type MessageSender interface {
	Send(ctx context.Context, d delivery.Draft) (*models.Message, error)
}

type AttachmentLinker interface {
	PresignGet(ctx context.Context, key string) (string, error)
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	Users         UserAPI
	Conversations ConversationAPI
	Messages      MessageSender
	Attachments   AttachmentLinker
	// WebSocket is mounted at /ws behind the auth middleware.
	WebSocket http.Handler
}

type Server struct {
	address       string
	logger        logging.Logger
	users         UserAPI
	conversations ConversationAPI
	messages      MessageSender
	attachments   AttachmentLinker
	websocket     http.Handler
	origins       *ws.OriginPolicy
	maxBodyBytes  int64
	now           func() time.Time
}

// NewServer builds the API server. maxBodyBytes <= 0 leaves request
// bodies uncapped.
func NewServer(address string, l logging.Logger, deps Deps, origins *ws.OriginPolicy, maxBodyBytes int64) *Server {
	return &Server{
		address:       address,
		logger:        l.With("module", "http_server"),
		users:         deps.Users,
		conversations: deps.Conversations,
		messages:      deps.Messages,
		attachments:   deps.Attachments,
		websocket:     deps.WebSocket,
		origins:       origins,
		maxBodyBytes:  maxBodyBytes,
		now:           time.Now,
	}
}

// Handler returns the fully wrapped router.
func (s *Server) Handler() http.Handler {
	r := httprouter.New()
	r.HandleOPTIONS = false
	r.NotFound = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "route not found"})
	})
	r.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Message: http.StatusText(http.StatusMethodNotAllowed)})
	})

	r.GET("/", s.health)

	r.POST("/api/auth/signup", s.signup)
	r.POST("/api/auth/login", s.login)
	r.POST("/api/auth/refresh", s.refresh)
	r.POST("/api/auth/logout", s.logout)
	r.GET("/api/auth/check", s.auth(s.check))
	r.PUT("/api/auth/update-profile", s.auth(s.updateProfile))

	r.GET("/api/conversation-partners", s.auth(s.partners))
	r.GET("/api/messages/:peerId", s.auth(s.history))
	r.POST("/api/messages/:peerId", s.auth(s.sendMessage))

	r.GET("/api/attachments/*key", s.attachment)

	if s.websocket != nil {
		r.Handler(http.MethodGet, "/ws", s.authHandler(s.websocket))
	}

	return s.logRequests(s.cors(r))
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
