package presence

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/pairchat/internal/common"
)

type fakeHandle struct {
	id       string
	identity string
	closed   bool

	mu     sync.Mutex
	events []Event
}

func newFakeHandle(id, identity string) *fakeHandle {
	return &fakeHandle{id: id, identity: identity}
}

func (h *fakeHandle) ID() string       { return h.id }
func (h *fakeHandle) Identity() string { return h.identity }

func (h *fakeHandle) Push(ctx context.Context, ev Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return common.ErrPushDelivery
	}
	h.events = append(h.events, ev)
	return nil
}

func (h *fakeHandle) received() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Event(nil), h.events...)
}
