// internal/store/memory.go
//
// In-memory store of active guess sessions.
//
// Characteristics:
//   - Stores *game.Session values keyed by round ID, together with their owner.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Idle sessions are swept after a TTL so abandoned rounds do not pile up.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/crwordle/internal/game"
)

// ErrNotFound is returned by Get for unknown or expired ids.
var ErrNotFound = errors.New("session not found")

// ErrNotOwner is returned by Get when the session belongs to someone else.
var ErrNotOwner = errors.New("session belongs to another player")

// Store defines the persistence interface for guess sessions.
type Store interface {
	// Save adds or replaces the session under id for owner.
	Save(ctx context.Context, id, owner string, s *game.Session) error

	// Get retrieves owner's session by id.
	Get(ctx context.Context, id, owner string) (*game.Session, error)

	// Delete drops a session.
	Delete(ctx context.Context, id string) error
}

type item struct {
	s     *game.Session
	owner string
	seen  time.Time
}

// Memory is an in-memory map-based Store implementation.
type Memory struct {
	mu    sync.RWMutex    // guards items
	items map[string]item // keyed by round id
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryStore constructs a new in-memory Store. ttl ≤ 0 disables sweeping.
func NewMemoryStore(ttl time.Duration) *Memory {
	return &Memory{items: make(map[string]item), ttl: ttl, now: time.Now}
}

func (m *Memory) Save(_ context.Context, id, owner string, s *game.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id] = item{s: s, owner: owner, seen: m.now()}
	return nil
}

// Get looks up a session and refreshes its idle timer.
func (m *Memory) Get(_ context.Context, id, owner string) (*game.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok || m.expired(it) {
		delete(m.items, id)
		return nil, ErrNotFound
	}
	if it.owner != owner {
		return nil, ErrNotOwner
	}
	it.seen = m.now()
	m.items[id] = it
	return it.s, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

// Len reports how many sessions are held.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *Memory) expired(it item) bool {
	return m.ttl > 0 && m.now().Sub(it.seen) > m.ttl
}

// Sweep drops expired sessions and returns how many were removed.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, it := range m.items {
		if m.expired(it) {
			delete(m.items, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (m *Memory) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Sweep()
		}
	}
}
