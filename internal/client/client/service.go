package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/pairchat/internal/client/models"
)

// Client is the CLI's view of the pairchat server.
type Client interface {
	Signup(ctx context.Context, fullName, email string, password []byte) (*models.Session, error)
	Login(ctx context.Context, email string, password []byte) (*models.Session, error)
	Logout(ctx context.Context) error
	Check(ctx context.Context) (*models.User, error)
	Partners(ctx context.Context) ([]*models.User, error)
	History(ctx context.Context, peerID string) ([]*models.Message, error)
	Send(ctx context.Context, peerID, text, image string) (*models.Message, error)
	// Listen streams server events to handle until ctx ends or the
	// connection drops.
	Listen(ctx context.Context, handle func(models.Event)) error
	// Download copies an attachment into w and returns its Content-Type.
	Download(ctx context.Context, ref string, w io.Writer) (string, error)
	Ping(ctx context.Context) error
	SetTokens(accessToken, refreshToken string)
}
