// Package users declares the repository contract for registered users.
package users

import (
	"context"

	"github.com/dmitrijs2005/pairchat/internal/server/models"
)

type Repository interface {
	// Create inserts the user and fills ID and CreatedAt. A taken email
	// yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// ListExcept returns every user but id, ordered by full name.
	ListExcept(ctx context.Context, id string) ([]*models.User, error)
	UpdateProfile(ctx context.Context, id string, fullName string, profilePic string) (*models.User, error)
}
