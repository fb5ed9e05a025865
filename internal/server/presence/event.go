package presence

import (
	"context"

	"github.com/dmitrijs2005/pairchat/internal/server/models"
)

type EventType string

const (
	// EventPresenceChanged carries the sorted list of online identities.
	EventPresenceChanged EventType = "presence-changed"
	// EventMessageReceived carries a persisted models.Message.
	EventMessageReceived EventType = "message-received"
)

// Event is one server-to-client notification.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

func PresenceChanged(online []string) Event {
	if online == nil {
		online = []string{}
	}
	return Event{Type: EventPresenceChanged, Payload: online}
}

func MessageReceived(msg *models.Message) Event {
	return Event{Type: EventMessageReceived, Payload: msg}
}

// Handle is one live client connection.
type Handle interface {
	// ID is unique per connection, never reused.
	ID() string
	// Identity is the authenticated user the connection belongs to.
	Identity() string
	// Push enqueues ev without blocking. It fails with common.ErrPushDelivery
	// once the connection is closed or its queue is full.
	Push(ctx context.Context, ev Event) error
}
