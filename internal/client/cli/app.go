package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/pairchat/internal/client/client"
	"github.com/dmitrijs2005/pairchat/internal/client/config"
	"github.com/dmitrijs2005/pairchat/internal/client/models"
	"github.com/dmitrijs2005/pairchat/internal/client/repositories/messages"
	"github.com/dmitrijs2005/pairchat/internal/client/repositories/session"
	"github.com/dmitrijs2005/pairchat/internal/client/services"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const pingTimeout = 3 * time.Second

type App struct {
	config      *config.Config
	db          *sql.DB
	authService services.AuthService
	chatService services.ChatService
	reader      *bufio.Reader

	// out is shared with the listener goroutine; write through a.printf.
	outMu sync.Mutex
	out   io.Writer

	stateMu      sync.Mutex
	user         *models.User
	names        map[string]string
	Mode         Mode
	stopListener context.CancelFunc
	listenerGen  uint64
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	path, err := c.DatabasePath()
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, path)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	sessions := session.NewSQLiteRepository(db)
	cache := messages.NewSQLiteRepository(db)

	apiClient, err := client.NewHTTPClient(c.ServerURL, c.RequestTimeout, func(accessToken, refreshToken string) {
		if err := services.SaveTokens(context.Background(), sessions, accessToken, refreshToken); err != nil {
			log.Printf("error saving refreshed tokens: %v", err)
		}
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{
		config:      c,
		db:          db,
		authService: services.NewAuthService(apiClient, sessions, cache),
		chatService: services.NewChatService(apiClient, cache),
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}, nil
}

func (a *App) printf(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) setMode(mode Mode) {
	a.stateMu.Lock()
	changed := a.Mode != mode
	a.Mode = mode
	a.stateMu.Unlock()

	if changed {
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) currentUser() *models.User {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	return a.user
}

func (a *App) setUser(u *models.User) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	a.user = u
}

func (a *App) isLoggedIn() bool {
	return a.currentUser() != nil
}

func (a *App) status() string {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()

	s := string(a.Mode)
	if a.user != nil {
		s = a.user.FullName + " " + s
	}
	if a.stopListener != nil {
		s += " listening"
	}
	return s
}

// StartOnlineStatusWatcher pings the server every interval and flips Mode.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		a.checkOnline(ctx)

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := a.authService.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// restore resumes the session saved by a previous run, if any.
func (a *App) restore(ctx context.Context) {
	u, err := a.authService.Restore(ctx)
	if err != nil {
		if !errors.Is(err, session.ErrNoSession) {
			log.Printf("error restoring session: %v", err)
		}
		return
	}
	a.setUser(u)
	a.printf("Logged in as %s <%s>\n", u.FullName, u.Email)
}

func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.db.Close()

	a.printf("pairchat CLI (type 'help' for commands)\n")
	a.restore(ctx)

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.status, a.reader)

	a.stopListening()
}
