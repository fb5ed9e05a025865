// Package session persists the logged-in CLI session in the local cache.
package session

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/pairchat/internal/client/models"
)

var ErrNoSession = errors.New("not logged in")

type Repository interface {
	Load(ctx context.Context) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
	Clear(ctx context.Context) error
}
