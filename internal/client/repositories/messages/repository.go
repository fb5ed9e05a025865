// Package messages is the CLI's local copy of conversation history, used
// to answer history requests while the server is unreachable.
package messages

import (
	"context"

	"github.com/dmitrijs2005/pairchat/internal/client/models"
)

type Repository interface {
	// Upsert stores messages; ones already cached are left as they are.
	Upsert(ctx context.Context, msgs ...*models.Message) error
	// Conversation returns the cached exchange between a and b, oldest first.
	Conversation(ctx context.Context, a, b string) ([]*models.Message, error)
	Clear(ctx context.Context) error
}
