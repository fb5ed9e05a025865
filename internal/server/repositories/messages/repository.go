// Package messages is the durable, append-only message store.
package messages

import (
	"context"

	"github.com/dmitrijs2005/pairchat/internal/server/models"
)

// Repository persists messages and answers conversation queries.
// Failures are reported wrapped in common.ErrPersistence.
type Repository interface {
	// Append stores msg, assigning ID (when empty) and CreatedAt.
	// The record is visible to QueryConversation once Append returns.
	Append(ctx context.Context, msg *models.Message) (*models.Message, error)
	// QueryConversation returns every message exchanged between a and b in
	// either direction, oldest first. The result is the same for (a, b) and (b, a).
	QueryConversation(ctx context.Context, a, b string) ([]*models.Message, error)
}
