// apps/go-server/internal/store/memory.go
//
// In-memory implementation of the session Store interface.
// This is a lightweight persistence layer used for ephemeral puzzle
// sessions, primarily in development/testing, or when durability is
// not required.
//
// Characteristics:
//   - Stores *engine.Session objects keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.
//   - Errors are returned for missing session IDs on Get().

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/mazekids/circuit/apps/go-server/internal/engine"
)

// ErrNotFound is returned by Get for unknown session ids.
var ErrNotFound = errors.New("session not found")

// Store defines the persistence interface for puzzle sessions.
// Implementations may be backed by memory (this package), Redis, SQL, etc.
type Store interface {
	// Save persists or updates a session.
	Save(ctx context.Context, s *engine.Session) error

	// Get retrieves a session by ID.
	// Returns ErrNotFound if the session does not exist.
	Get(ctx context.Context, id string) (*engine.Session, error)

	// Delete removes an abandoned session. Deleting a missing id is
	// not an error.
	Delete(ctx context.Context, id string) error
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex               // guards sessions map
	sessions map[string]*engine.Session // keyed by Session.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*engine.Session)}
}

// Save adds or updates the session in the map.
func (m *memory) Save(ctx context.Context, s *engine.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

// Get looks up a session by ID.
func (m *memory) Get(ctx context.Context, id string) (*engine.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

// Delete drops a session if present.
func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
