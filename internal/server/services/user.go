// Package services contains server-side business logic: account
// management and token issuance (UserService) and conversation
// read paths (ConversationService).
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/pairchat/internal/common"
	"github.com/dmitrijs2005/pairchat/internal/dbx"
	"github.com/dmitrijs2005/pairchat/internal/server/auth"
	"github.com/dmitrijs2005/pairchat/internal/server/config"
	"github.com/dmitrijs2005/pairchat/internal/server/models"
	"github.com/dmitrijs2005/pairchat/internal/server/repositories/repomanager"
)

const defaultAvatarURL = "https://avatar.iran.liara.run/public?username="

// ImageStore turns an inbound image payload into a durable reference.
type ImageStore interface {
	Store(ctx context.Context, ownerID string, payload string) (string, error)
}

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Session is what signup and login hand back to the client.
type Session struct {
	User *models.User `json:"user"`
	TokenPair
}

type SignupInput struct {
	FullName string `json:"fullName" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=14"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileInput struct {
	FullName   string `json:"fullName" validate:"max=100"`
	ProfilePic string `json:"profilePic"`
}

// UserService handles accounts and tokens:
//   - Signup / Login: create or verify users and mint tokens
//   - RefreshToken: rotate refresh tokens and mint new access tokens
//   - Logout: revoke a refresh token
//   - Profile / UpdateProfile: read and edit the current user
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	images                       ImageStore
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, images ImageStore, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		images:                       images,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Signup registers a user and opens a session. The user row and its first
// refresh token are written in one transaction.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: hash,
		ProfilePic:   defaultAvatar(in.FullName),
	}

	var session *Session
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		created, err := s.repomanager.Users(tx).Create(ctx, user)
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return err
			}
			return fmt.Errorf("error creating user: %w", err)
		}
		pair, err := s.generateTokenPair(ctx, created.ID, tx)
		if err != nil {
			return err
		}
		session = &Session{User: created, TokenPair: *pair}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Login verifies credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if err := auth.CheckPassword(user.PasswordHash, in.Password); err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	pair, err := s.generateTokenPair(ctx, user.ID, s.db)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, TokenPair: *pair}, nil
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Unknown tokens yield ErrorUnauthorized,
// expired ones ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, token.UserID, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout revokes refreshToken. Revoking an unknown token succeeds.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.repomanager.RefreshTokens(s.db).Delete(ctx, refreshToken); err != nil {
		return common.ErrorInternal
	}
	return nil
}

// Profile returns the user behind an authenticated request.
func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

// UpdateProfile changes the full name and/or profile picture. The picture
// payload is uploaded through the ImageStore first. Asking for no change
// is a validation error.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*models.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.ProfilePic = strings.TrimSpace(in.ProfilePic)
	if in.FullName == "" && in.ProfilePic == "" {
		return nil, fmt.Errorf("%w: no changes provided", common.ErrValidation)
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	current, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	fullName := current.FullName
	if in.FullName != "" {
		fullName = in.FullName
	}

	profilePic := current.ProfilePic
	if in.ProfilePic != "" {
		ref, err := s.images.Store(ctx, userID, in.ProfilePic)
		if err != nil {
			return nil, err
		}
		profilePic = ref
	}

	updated, err := s.repomanager.Users(s.db).UpdateProfile(ctx, userID, fullName, profilePic)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	return updated, nil
}

// PurgeExpiredTokens drops refresh tokens that can no longer be redeemed.
func (s *UserService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.repomanager.RefreshTokens(s.db).DeleteExpired(ctx, time.Now())
}

// UserIDFromAccessToken verifies an access token and returns its identity.
func (s *UserService) UserIDFromAccessToken(token string) (string, error) {
	return auth.GetUserIDFromToken(token, s.jwtSecret)
}

// --- helpers below ---

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func defaultAvatar(fullName string) string {
	first := fullName
	if fields := strings.Fields(fullName); len(fields) > 0 {
		first = fields[0]
	}
	return defaultAvatarURL + url.QueryEscape(first)
}

func (s *UserService) generateAccessToken(userID string) (string, error) {
	return auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *UserService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *UserService) generateTokenPair(ctx context.Context, userID string, tx dbx.DBTX) (*TokenPair, error) {
	access, err := s.generateAccessToken(userID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, userID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
