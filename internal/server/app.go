// Package server wires the chat server together: database and migrations,
// object storage, presence tracking, message delivery and the HTTP API.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/pairchat/internal/dbx"
	"github.com/dmitrijs2005/pairchat/internal/logging"
	"github.com/dmitrijs2005/pairchat/internal/server/attachments"
	"github.com/dmitrijs2005/pairchat/internal/server/config"
	"github.com/dmitrijs2005/pairchat/internal/server/delivery"
	"github.com/dmitrijs2005/pairchat/internal/server/httpapi"
	"github.com/dmitrijs2005/pairchat/internal/server/presence"
	"github.com/dmitrijs2005/pairchat/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/pairchat/internal/server/services"
	"github.com/dmitrijs2005/pairchat/internal/server/ws"
)

const (
	tokenPurgeInterval   = time.Hour
	hubShutdownTimeout   = 5 * time.Second
	jsonEnvelopeOverhead = 64 << 10
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	hub         *ws.Hub
	userService *services.UserService
	httpServer  *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := dbx.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	store, err := attachments.NewS3Store(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("s3 init error: %w", err)
	}
	if err := store.EnsureBucket(ctx); err != nil {
		// attachments fail per request until the bucket is reachable
		logger.Warn(ctx, "attachment bucket unavailable", "bucket", c.S3Bucket, "error", err)
	}

	origins, invalid := ws.NewOriginPolicy(c.AllowedOrigins)
	for _, o := range invalid {
		logger.Warn(ctx, "ignoring invalid allowed origin", "origin", o)
	}

	registry := presence.NewRegistry()
	hub := ws.NewHub(registry, presence.NewBroadcaster(logger), logger)
	coordinator := delivery.NewCoordinator(rm.Messages(db), store, registry, logger)

	us := services.NewUserService(db, rm, store, c)
	cs := services.NewConversationService(db, rm)

	wsHandler := ws.NewHandler(hub, httpapi.UserIDFromRequest, origins, c.MaxMessageSize, logger)

	hs := httpapi.NewServer(c.HTTPAddr, logger, httpapi.Deps{
		Users:         us,
		Conversations: cs,
		Messages:      coordinator,
		Attachments:   store,
		WebSocket:     wsHandler,
	}, origins, requestBodyLimit(c.MaxAttachmentSize))

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		hub:         hub,
		userService: us,
		httpServer:  hs,
	}, nil
}

// requestBodyLimit sizes the JSON body cap to fit one base64 image.
// A non-positive attachment limit means unlimited, so no cap either.
func requestBodyLimit(maxAttachmentSize int64) int64 {
	if maxAttachmentSize <= 0 {
		return 0
	}
	return maxAttachmentSize*4/3 + jsonEnvelopeOverhead
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHub(ctx context.Context) {
	app.hub.Run(ctx)
}

// purgeExpiredTokens drops unusable refresh tokens once per interval.
func (app *App) purgeExpiredTokens(ctx context.Context) {
	ticker := time.NewTicker(tokenPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.userService.PurgeExpiredTokens(ctx)
			if err != nil {
				app.logger.Error(ctx, "purge expired refresh tokens", "error", err)
				continue
			}
			if n > 0 {
				app.logger.Info(ctx, "purged expired refresh tokens", "count", n)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startHub(ctx)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.purgeExpiredTokens(ctx)
	}()

	<-ctx.Done()

	if err := app.hub.Shutdown(hubShutdownTimeout); err != nil {
		app.logger.Warn(ctx, "hub shutdown", "error", err)
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing database", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
}
