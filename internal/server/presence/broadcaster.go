package presence

import (
	"context"

	"github.com/dmitrijs2005/pairchat/internal/logging"
)

// Broadcaster fans a presence-changed event out to connections.
type Broadcaster struct {
	logger logging.Logger
}

func NewBroadcaster(logger logging.Logger) *Broadcaster {
	return &Broadcaster{logger: logger.With("module", "presence")}
}

// Announce pushes the online set to every handle and returns how many
// pushes failed. A failed push never stops the fan-out.
func (b *Broadcaster) Announce(ctx context.Context, handles []Handle, online []string) int {
	ev := PresenceChanged(online)

	failed := 0
	for _, h := range handles {
		if err := h.Push(ctx, ev); err != nil {
			failed++
			b.logger.Warn(ctx, "presence push failed", "conn_id", h.ID(), "user_id", h.Identity(), "error", err)
		}
	}

	b.logger.Debug(ctx, "presence announced", "online", len(online), "targets", len(handles), "failed", failed)
	return failed
}
