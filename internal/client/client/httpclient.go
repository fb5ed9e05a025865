package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/pairchat/internal/client/models"
	"github.com/dmitrijs2005/pairchat/internal/common"
	"github.com/gorilla/websocket"
)

type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	dialer  *websocket.Dialer

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	onRefresh    func(accessToken, refreshToken string)
}

type errorBody struct {
	Message string `json:"message"`
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type sessionBody struct {
	User *models.User `json:"user"`
	tokenPair
}

// NewHTTPClient builds a client for the server at baseURL. onRefresh, when
// set, is told about every token rotation so the caller can persist it.
func NewHTTPClient(baseURL string, timeout time.Duration, onRefresh func(accessToken, refreshToken string)) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", baseURL)
	}

	return &HTTPClient{
		baseURL:   u,
		http:      &http.Client{Timeout: timeout},
		dialer:    &websocket.Dialer{HandshakeTimeout: timeout},
		onRefresh: onRefresh,
	}, nil
}

func (c *HTTPClient) SetTokens(accessToken, refreshToken string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken, c.refreshToken = accessToken, refreshToken
}

func (c *HTTPClient) tokens() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

func (c *HTTPClient) endpoint(path string) string {
	return c.baseURL.String() + path
}

// do sends one JSON request. Authenticated calls that fail with an expired
// access token are retried once after a refresh.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any, authenticated bool) error {
	err := c.doOnce(ctx, method, path, in, out, authenticated)
	if !authenticated || !isTokenExpired(err) {
		return err
	}

	if _, refresh := c.tokens(); refresh == "" {
		return err
	}
	if rerr := c.refresh(ctx); rerr != nil {
		return rerr
	}
	return c.doOnce(ctx, method, path, in, out, authenticated)
}

func (c *HTTPClient) doOnce(ctx context.Context, method, path string, in, out any, authenticated bool) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		access, _ := c.tokens()
		req.Header.Set("Authorization", common.AuthorizationScheme+access)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	return apiError(resp.StatusCode, data)
}

func apiError(status int, data []byte) error {
	var eb errorBody
	if err := json.Unmarshal(data, &eb); err != nil || eb.Message == "" {
		eb.Message = strings.TrimSpace(string(data))
		if eb.Message == "" {
			eb.Message = http.StatusText(status)
		}
	}
	return &APIError{Status: status, Message: eb.Message}
}

func isTokenExpired(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) &&
		apiErr.Status == http.StatusUnauthorized &&
		apiErr.Message == common.ErrTokenExpired.Error()
}

func (c *HTTPClient) refresh(ctx context.Context) error {
	_, refresh := c.tokens()

	var pair tokenPair
	if err := c.doOnce(ctx, http.MethodPost, "/api/auth/refresh", map[string]string{"refreshToken": refresh}, &pair, false); err != nil {
		return err
	}

	c.SetTokens(pair.AccessToken, pair.RefreshToken)
	if c.onRefresh != nil {
		c.onRefresh(pair.AccessToken, pair.RefreshToken)
	}
	return nil
}

func (c *HTTPClient) session(ctx context.Context, path string, in any) (*models.Session, error) {
	var sb sessionBody
	if err := c.do(ctx, http.MethodPost, path, in, &sb, false); err != nil {
		return nil, err
	}
	if sb.User == nil {
		return nil, fmt.Errorf("decoding %s response: missing user", path)
	}

	c.SetTokens(sb.AccessToken, sb.RefreshToken)
	return &models.Session{User: *sb.User, AccessToken: sb.AccessToken, RefreshToken: sb.RefreshToken}, nil
}

func (c *HTTPClient) Signup(ctx context.Context, fullName, email string, password []byte) (*models.Session, error) {
	return c.session(ctx, "/api/auth/signup", map[string]string{
		"fullName": fullName,
		"email":    email,
		"password": string(password),
	})
}

func (c *HTTPClient) Login(ctx context.Context, email string, password []byte) (*models.Session, error) {
	return c.session(ctx, "/api/auth/login", map[string]string{
		"email":    email,
		"password": string(password),
	})
}

// Logout revokes the refresh token on the server and forgets both tokens.
func (c *HTTPClient) Logout(ctx context.Context) error {
	_, refresh := c.tokens()
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", map[string]string{"refreshToken": refresh}, nil, false)
	c.SetTokens("", "")
	return err
}

func (c *HTTPClient) Check(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/check", nil, &u, true); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) Partners(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	if err := c.do(ctx, http.MethodGet, "/api/conversation-partners", nil, &users, true); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *HTTPClient) History(ctx context.Context, peerID string) ([]*models.Message, error) {
	var msgs []*models.Message
	if err := c.do(ctx, http.MethodGet, "/api/messages/"+url.PathEscape(peerID), nil, &msgs, true); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (c *HTTPClient) Send(ctx context.Context, peerID, text, image string) (*models.Message, error) {
	var m models.Message
	in := map[string]string{"text": text}
	if image != "" {
		in["image"] = image
	}
	if err := c.do(ctx, http.MethodPost, "/api/messages/"+url.PathEscape(peerID), in, &m, true); err != nil {
		return nil, err
	}
	return &m, nil
}

// Ping checks that the server answers its health endpoint.
func (c *HTTPClient) Ping(ctx context.Context) error {
	var health struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/", nil, &health, false); err != nil {
		return err
	}
	if health.Status != "ok" {
		return ErrUnavailable
	}
	return nil
}
