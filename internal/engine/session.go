// apps/go-server/internal/engine/session.go
//
// A Session pairs a stable identifier with one player's game state so
// the HTTP layer can park attempts between requests.

package engine

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Session is one in-flight puzzle attempt.
type Session struct {
	ID        string
	State     GameState
	CreatedAt time.Time
	// NextRequestID feeds GeneratePuzzle ids; incremented by the caller
	// before each generation so stale results are dropped.
	NextRequestID uint64
	// Recorded marks that this attempt's summary has been persisted;
	// reset together with the attempt.
	Recorded bool
	// Daily marks a daily-challenge session. Free-play mutation routes
	// refuse these, so the shared board can be neither regenerated nor
	// reset for extra tries before scoring.
	Daily bool
}

// NewSession wraps a fresh state under a random identifier.
func NewSession(state GameState) *Session {
	return &Session{ID: randomID(), State: state, CreatedAt: time.Now()}
}

// randomID returns a compact 16-hex-char identifier.
// Collisions are extremely unlikely given crypto/rand entropy.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
