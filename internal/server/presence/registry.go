// Package presence tracks which users are connected and tells every
// connection when that set changes.
package presence

import (
	"slices"
	"sync"

	"github.com/samber/lo"
)

// Registry maps each online identity to its authoritative connection.
// At most one handle per identity; the most recent Register wins.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Handle
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Handle)}
}

// Register makes h the authoritative handle for identity and returns the
// handle it replaced, if any. The replaced handle is left open.
func (r *Registry) Register(identity string, h Handle) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.entries[identity]
	r.entries[identity] = h
	if prev != nil && prev.ID() == h.ID() {
		return nil
	}
	return prev
}

// Unregister removes h's entry only while h is still the authoritative
// handle for its identity. A superseded handle disconnecting is a no-op.
func (r *Registry) Unregister(h Handle) (string, bool) {
	identity := h.Identity()

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.entries[identity]
	if !ok || current.ID() != h.ID() {
		return identity, false
	}
	delete(r.entries, identity)
	return identity, true
}

func (r *Registry) Lookup(identity string) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.entries[identity]
	return h, ok
}

// OnlineIdentities returns a sorted snapshot of the online set.
func (r *Registry) OnlineIdentities() []string {
	r.mu.RLock()
	ids := lo.Keys(r.entries)
	r.mu.RUnlock()

	slices.Sort(ids)
	return ids
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
