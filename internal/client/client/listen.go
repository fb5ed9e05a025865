package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/pairchat/internal/client/models"
	"github.com/dmitrijs2005/pairchat/internal/common"
	"github.com/gorilla/websocket"
)

const closeGrace = time.Second

func (c *HTTPClient) wsURL(token string) string {
	u := *c.baseURL
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	u.RawQuery = url.Values{common.AccessTokenQueryParam: {token}}.Encode()
	return u.String()
}

func (c *HTTPClient) dial(ctx context.Context) (*websocket.Conn, error) {
	access, _ := c.tokens()
	conn, resp, err := c.dialer.DialContext(ctx, c.wsURL(access), nil)
	if err != nil {
		if resp != nil && resp.StatusCode >= 400 {
			defer resp.Body.Close()
			return nil, decodeError(resp)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return conn, nil
}

func (c *HTTPClient) Listen(ctx context.Context, handle func(models.Event)) error {
	conn, err := c.dial(ctx)
	if isTokenExpired(err) {
		if _, refresh := c.tokens(); refresh != "" {
			if rerr := c.refresh(ctx); rerr != nil {
				return rerr
			}
			conn, err = c.dial(ctx)
		}
	}
	if err != nil {
		return err
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)

	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(closeGrace))
			_ = conn.Close()
		case <-stop:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		var ev models.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		handle(ev)
	}
}
