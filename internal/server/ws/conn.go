package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/pairchat/internal/common"
	"github.com/dmitrijs2005/pairchat/internal/logging"
	"github.com/dmitrijs2005/pairchat/internal/server/presence"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	sendQueueSize  = 256
	closeGraceWait = time.Second
)

type State int

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	default:
		return "closed"
	}
}

// Conn is one authenticated WebSocket session. It implements presence.Handle.
// Connecting -> Open on hub registration, Open -> Closed on unregister or
// shutdown; Closed is terminal.
type Conn struct {
	id       string
	identity string
	addr     string
	ws       *websocket.Conn
	hub      *Hub
	logger   logging.Logger

	mu    sync.Mutex
	state State
	send  chan []byte
}

func newConn(ws *websocket.Conn, hub *Hub, identity, addr string, maxMessageSize int64, logger logging.Logger) *Conn {
	if ws != nil && maxMessageSize > 0 {
		ws.SetReadLimit(maxMessageSize)
	}
	id := uuid.NewString()
	return &Conn{
		id:       id,
		identity: identity,
		addr:     addr,
		ws:       ws,
		hub:      hub,
		logger:   logger.With("conn_id", id, "user_id", identity),
		state:    StateConnecting,
		send:     make(chan []byte, sendQueueSize),
	}
}

func (c *Conn) ID() string       { return c.id }
func (c *Conn) Identity() string { return c.identity }

func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Push serializes ev and enqueues it for the write pump without blocking.
func (c *Conn) Push(ctx context.Context, ev presence.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrPushDelivery, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateOpen {
		return fmt.Errorf("%w: connection %s", common.ErrPushDelivery, c.state)
	}

	select {
	case c.send <- b:
		return nil
	default:
		return fmt.Errorf("%w: send queue full", common.ErrPushDelivery)
	}
}

func (c *Conn) open() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateConnecting {
		c.state = StateOpen
	}
}

// close moves the connection to Closed and stops the write pump.
// It reports whether this call did the transition.
func (c *Conn) close() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return false
	}
	c.state = StateClosed
	close(c.send)
	return true
}

func (c *Conn) readPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		if err := c.ws.Close(); err != nil && !isExpectedCloseError(err) {
			c.logger.Warn(ctx, "error closing connection in read pump", "error", err)
		}
	}()

	if err := c.ws.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Warn(ctx, "error setting initial read deadline", "error", err)
	}
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		// inbound frames carry no commands; reading keeps pong and close handling alive
		_, _, err := c.ws.ReadMessage()
		if err != nil {
			c.logReadError(ctx, err)
			return
		}
	}
}

func (c *Conn) logReadError(ctx context.Context, err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		c.logger.Warn(ctx, "inbound frame exceeded read limit", "addr", c.addr)
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived):
		c.logger.Debug(ctx, "client disconnected", "addr", c.addr)
	case errors.Is(err, io.EOF) || isExpectedCloseError(err):
		c.logger.Debug(ctx, "connection closed", "addr", c.addr, "error", err)
	default:
		c.logger.Warn(ctx, "websocket read error", "addr", c.addr, "error", err)
	}
}

func (c *Conn) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.ws.Close(); err != nil && !isExpectedCloseError(err) {
			c.logger.Warn(ctx, "error closing connection in write pump", "error", err)
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				c.writeClose()
				return
			}
			if err := c.write(websocket.TextMessage, message); err != nil {
				c.logger.Warn(ctx, "error writing message", "error", err)
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.logger.Debug(ctx, "error writing ping", "error", err)
				return
			}
		}
	}
}

func (c *Conn) write(messageType int, data []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(messageType, data)
}

func (c *Conn) writeClose() {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGraceWait))
}

func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, websocket.ErrCloseSent) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "broken pipe")
}
