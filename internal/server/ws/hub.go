// Package ws is the WebSocket transport: it accepts authenticated
// connections, keeps the presence registry in step with them, and carries
// server-pushed events to clients.
package ws

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/pairchat/internal/logging"
	"github.com/dmitrijs2005/pairchat/internal/server/presence"
)

// Hub serializes connect and disconnect events through a single loop so
// presence announcements follow transport order.
type Hub struct {
	registry    *presence.Registry
	broadcaster *presence.Broadcaster
	logger      logging.Logger

	// conns is every open connection, superseded ones included.
	// Only the Run goroutine touches it.
	conns map[*Conn]struct{}

	register   chan *Conn
	unregister chan *Conn

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewHub(registry *presence.Registry, broadcaster *presence.Broadcaster, logger logging.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		registry:    registry,
		broadcaster: broadcaster,
		logger:      logger.With("module", "ws"),
		conns:       make(map[*Conn]struct{}),
		register:    make(chan *Conn),
		unregister:  make(chan *Conn),
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
}

// Register hands a freshly upgraded connection to the hub. It returns false
// when the hub is no longer running.
func (h *Hub) Register(c *Conn) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister reports a dead connection. Safe to call more than once.
func (h *Hub) Unregister(c *Conn) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Run processes registrations until ctx is cancelled or Shutdown is called.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.shutdownConns(ctx)
			return
		case <-h.ctx.Done():
			h.shutdownConns(ctx)
			return
		case c := <-h.register:
			h.handleRegister(ctx, c)
		case c := <-h.unregister:
			h.handleUnregister(ctx, c)
		}
	}
}

func (h *Hub) handleRegister(ctx context.Context, c *Conn) {
	if c == nil {
		return
	}

	c.open()
	h.conns[c] = struct{}{}

	if prev := h.registry.Register(c.identity, c); prev != nil {
		h.logger.Info(ctx, "connection superseded", "user_id", c.identity, "conn_id", c.id, "superseded_conn_id", prev.ID())
	}
	h.logger.Info(ctx, "connection registered", "user_id", c.identity, "conn_id", c.id, "open_conns", len(h.conns))

	h.announce(ctx)

	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		c.writePump(h.ctx)
	}()
	go func() {
		defer h.wg.Done()
		c.readPump(h.ctx)
	}()
}

func (h *Hub) handleUnregister(ctx context.Context, c *Conn) {
	if _, ok := h.conns[c]; !ok {
		return
	}
	delete(h.conns, c)
	c.close()

	identity, removed := h.registry.Unregister(c)
	h.logger.Info(ctx, "connection unregistered", "user_id", identity, "conn_id", c.id, "authoritative", removed, "open_conns", len(h.conns))

	if removed {
		h.announce(ctx)
	}
}

func (h *Hub) announce(ctx context.Context) {
	handles := make([]presence.Handle, 0, len(h.conns))
	for c := range h.conns {
		handles = append(handles, c)
	}
	h.broadcaster.Announce(ctx, handles, h.registry.OnlineIdentities())
}

func (h *Hub) shutdownConns(ctx context.Context) {
	for c := range h.conns {
		c.close()
		h.registry.Unregister(c)
		if err := c.ws.Close(); err != nil && !isExpectedCloseError(err) {
			h.logger.Warn(ctx, "error closing connection", "conn_id", c.id, "error", err)
		}
		delete(h.conns, c)
	}
	h.logger.Info(ctx, "hub stopped")
}

// Shutdown stops the loop, closes every connection and waits for the pumps.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.cancel()
	<-h.done

	finished := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-time.After(timeout):
		return context.DeadlineExceeded
	}
}
