// Package services contains application services for the pairchat CLI.
// This file defines the authentication service: signup, login, session
// restore from the local cache, and logout.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pairchat/internal/client/client"
	"github.com/dmitrijs2005/pairchat/internal/client/models"
	"github.com/dmitrijs2005/pairchat/internal/client/repositories/messages"
	"github.com/dmitrijs2005/pairchat/internal/client/repositories/session"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Signup / Login: authenticate against the server and persist the session.
//   - Restore: resume the session saved by a previous run.
//   - Logout: revoke the session on the server and wipe local data.
//   - Ping: check server liveness.
type AuthService interface {
	Signup(ctx context.Context, fullName, email string, password []byte) (*models.User, error)
	Login(ctx context.Context, email string, password []byte) (*models.User, error)
	Restore(ctx context.Context) (*models.User, error)
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
}

type authService struct {
	client   client.Client
	sessions session.Repository
	cache    messages.Repository
}

func NewAuthService(c client.Client, sessions session.Repository, cache messages.Repository) AuthService {
	return &authService{client: c, sessions: sessions, cache: cache}
}

func (a *authService) Signup(ctx context.Context, fullName, email string, password []byte) (*models.User, error) {
	s, err := a.client.Signup(ctx, fullName, email, password)
	if err != nil {
		return nil, fmt.Errorf("signup error: %w", err)
	}
	return a.remember(ctx, s)
}

func (a *authService) Login(ctx context.Context, email string, password []byte) (*models.User, error) {
	s, err := a.client.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}
	return a.remember(ctx, s)
}

// remember persists a fresh session. Cached history from another account
// is dropped.
func (a *authService) remember(ctx context.Context, s *models.Session) (*models.User, error) {
	prev, err := a.sessions.Load(ctx)
	if err == nil && prev.User.ID != s.User.ID {
		if err := a.cache.Clear(ctx); err != nil {
			return nil, err
		}
	}
	if err := a.sessions.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}
	user := s.User
	return &user, nil
}

// Restore loads the saved session and hands its tokens to the client.
// It returns session.ErrNoSession when nobody is logged in.
func (a *authService) Restore(ctx context.Context) (*models.User, error) {
	s, err := a.sessions.Load(ctx)
	if err != nil {
		return nil, err
	}
	a.client.SetTokens(s.AccessToken, s.RefreshToken)
	user := s.User
	return &user, nil
}

// SaveTokens records a token rotation performed by the client.
func SaveTokens(ctx context.Context, sessions session.Repository, accessToken, refreshToken string) error {
	s, err := sessions.Load(ctx)
	if err != nil {
		return err
	}
	s.AccessToken, s.RefreshToken = accessToken, refreshToken
	return sessions.Save(ctx, s)
}

// Logout revokes the refresh token when the server is reachable, then
// clears local data regardless.
func (a *authService) Logout(ctx context.Context) error {
	remoteErr := a.client.Logout(ctx)

	if err := a.sessions.Clear(ctx); err != nil {
		return err
	}
	if err := a.cache.Clear(ctx); err != nil {
		return err
	}

	if remoteErr != nil && !errors.Is(remoteErr, client.ErrUnavailable) {
		return remoteErr
	}
	return nil
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}
