// apps/go-server/internal/engine/actions.go
//
// The closed action set the reducer understands. Actions are a tagged
// union: each is a small struct implementing the unexported marker
// method, and the reducer switches over the concrete types.
//
// Generation actions carry a request id so a stale asynchronous
// result can never land on a session that has already moved on.

package engine

import (
	"github.com/mazekids/circuit/apps/go-server/internal/puzzle"
)

// Action is one input to the reducer.
type Action interface {
	isAction()
}

// SetDifficulty selects the settings used by the next generation.
type SetDifficulty struct {
	Settings puzzle.DifficultySettings
}

// GeneratePuzzle marks a generation request as outstanding. RequestID
// must be strictly increasing per session.
type GeneratePuzzle struct {
	RequestID uint64
}

// PuzzleGenerated delivers a generation result. Ignored unless
// RequestID matches the outstanding request.
type PuzzleGenerated struct {
	RequestID uint64
	Puzzle    *puzzle.Puzzle
}

// PuzzleGenerationFailed delivers a generation failure. Ignored unless
// RequestID matches the outstanding request.
type PuzzleGenerationFailed struct {
	RequestID uint64
	Message   string
}

// StartTimer starts the session clock. Idempotent while running.
type StartTimer struct{}

// TickTimer reports elapsed wall-clock time; applied only while the
// timer runs.
type TickTimer struct {
	ElapsedMs int64
}

// MakeMove attempts to move to an adjacent, unvisited cell.
type MakeMove struct {
	To puzzle.Coordinate
}

// ResetPuzzle rewinds the session for a fresh attempt at the same
// puzzle.
type ResetPuzzle struct{}

// NewPuzzle discards the current puzzle and returns to setup.
type NewPuzzle struct{}

// ShowSolution / HideSolution toggle the solution overlay. The
// overlay never changes status.
type ShowSolution struct{}
type HideSolution struct{}

// RevealHiddenResults resolves a hidden-mode session that has reached
// FINISH, computing final coins from accumulated correctness.
type RevealHiddenResults struct{}

// ClearCoinAnimation drains one transient coin event by id.
type ClearCoinAnimation struct {
	ID string
}

func (SetDifficulty) isAction()          {}
func (GeneratePuzzle) isAction()         {}
func (PuzzleGenerated) isAction()        {}
func (PuzzleGenerationFailed) isAction() {}
func (StartTimer) isAction()             {}
func (TickTimer) isAction()              {}
func (MakeMove) isAction()               {}
func (ResetPuzzle) isAction()            {}
func (NewPuzzle) isAction()              {}
func (ShowSolution) isAction()           {}
func (HideSolution) isAction()           {}
func (RevealHiddenResults) isAction()    {}
func (ClearCoinAnimation) isAction()     {}
