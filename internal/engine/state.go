// apps/go-server/internal/engine/state.go
//
// Session state for one puzzle attempt.
// Defines:
//   - Status: the lifecycle states (setup → ready → playing → terminal).
//   - MoveRecord: one logged move attempt; the move history is the
//     sole source of truth for post-game statistics.
//   - HiddenModeResults: deferred-feedback bookkeeping for hidden mode.
//   - CoinAnimation: transient UI-facing coin events, never
//     gameplay-authoritative.
//   - GameState: everything the reducer reads and writes.

package engine

import (
	"time"

	"github.com/mazekids/circuit/apps/go-server/internal/puzzle"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusSetup     Status = "setup"     // no puzzle, or awaiting generation
	StatusReady     Status = "ready"     // puzzle loaded, no move made yet
	StatusPlaying   Status = "playing"   // at least one move attempted
	StatusWon       Status = "won"       // terminal
	StatusLost      Status = "lost"      // terminal, standard mode only
	StatusRevealing Status = "revealing" // hidden mode reached FINISH, not yet revealed
)

// Terminal reports whether no further moves are accepted.
func (s Status) Terminal() bool {
	return s == StatusWon || s == StatusLost || s == StatusRevealing
}

// MoveRecord logs one move attempt, accepted or not.
type MoveRecord struct {
	From           puzzle.Coordinate `json:"from"`
	To             puzzle.Coordinate `json:"to"`
	Correct        bool              `json:"correct"`
	ConnectorValue int               `json:"connectorValue"`
	CellAnswer     int               `json:"cellAnswer"`
	At             time.Time         `json:"at"`
}

// HiddenModeResults accumulates deferred scoring. Present only while
// a hidden-mode puzzle is in play.
type HiddenModeResults struct {
	Moves        []MoveRecord `json:"moves"`
	CorrectCount int          `json:"correctCount"`
	MistakeCount int          `json:"mistakeCount"`
}

// CoinAnimation is a cosmetic event drained by the presentation layer
// via ClearCoinAnimation.
type CoinAnimation struct {
	ID     string    `json:"id"`
	Amount int       `json:"amount"`
	At     time.Time `json:"at"`
}

// GameState is the full mutable state of one session. The reducer
// treats it as a value: Apply returns a new state and never mutates
// its input.
type GameState struct {
	Status     Status                    `json:"status"`
	Puzzle     *puzzle.Puzzle            `json:"puzzle,omitempty"`
	Difficulty puzzle.DifficultySettings `json:"difficulty"`

	// GenerationRequestID is the outstanding generation request, or 0.
	// Results carrying any other id are discarded as stale.
	GenerationRequestID uint64 `json:"generationRequestId,omitempty"`

	CurrentPosition     puzzle.Coordinate   `json:"currentPosition"`
	VisitedCells        []puzzle.Coordinate `json:"visitedCells"`
	TraversedConnectors []puzzle.Connector  `json:"traversedConnectors"`
	MoveHistory         []MoveRecord        `json:"moveHistory"`

	Lives    int `json:"lives"`
	MaxLives int `json:"maxLives"`

	StartTime    time.Time `json:"startTime"`
	ElapsedMs    int64     `json:"elapsedMs"`
	TimerRunning bool      `json:"isTimerRunning"`

	PuzzleCoins    int             `json:"puzzleCoins"`
	CoinAnimations []CoinAnimation `json:"coinAnimations"`

	HiddenMode    bool               `json:"isHiddenMode"`
	HiddenResults *HiddenModeResults `json:"hiddenModeResults,omitempty"`

	ShowingSolution bool   `json:"showingSolution"`
	Error           string `json:"error,omitempty"`
}

// NewGameState returns a fresh pre-generation state.
func NewGameState(d puzzle.DifficultySettings) GameState {
	return GameState{Status: StatusSetup, Difficulty: d}
}

// Mistakes counts incorrect attempts in the move history.
func (s *GameState) Mistakes() int {
	n := 0
	for _, m := range s.MoveHistory {
		if !m.Correct {
			n++
		}
	}
	return n
}

// CorrectMoves counts correct attempts in the move history.
func (s *GameState) CorrectMoves() int {
	n := 0
	for _, m := range s.MoveHistory {
		if m.Correct {
			n++
		}
	}
	return n
}
