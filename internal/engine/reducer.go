// apps/go-server/internal/engine/reducer.go
//
// The game state machine: a pure reducer from (state, action) to a
// new state, plus the move-legality helper trio that doubles as the
// authoritative oracle for callers.
//
// State transitions:
//   setup → setup (generation failed, error set) | ready (puzzle loaded)
//   ready → playing on the first move attempt (timer starts there)
//   playing → won   (standard: correct move onto FINISH)
//   playing → lost  (standard: lives hit 0)
//   playing → revealing (hidden: any move onto FINISH)
//   revealing → won (RevealHiddenResults; hidden mode never fails)
//   any → ready via ResetPuzzle, any → setup via NewPuzzle
//
// Invalid moves (adjacency, revisits, missing connector, wrong
// lifecycle) are a no-op transition, never an error event.

package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/mazekids/circuit/apps/go-server/internal/puzzle"
)

// Coin arithmetic. The penalty clamps at zero; a balance never goes
// negative.
const (
	CoinsPerCorrectMove = 10
	CoinPenaltyPerMiss  = 30
)

// Reducer applies actions. Now is the only side channel: it stamps
// move records, coin events, and the timer's start instant.
type Reducer struct {
	Now func() time.Time
}

// NewReducer returns a Reducer on the wall clock.
func NewReducer() *Reducer {
	return &Reducer{Now: time.Now}
}

// Apply returns the state after one action. The input state is never
// mutated.
func (rd *Reducer) Apply(s GameState, a Action) GameState {
	switch act := a.(type) {
	case SetDifficulty:
		next := NewGameState(act.Settings)
		next.GenerationRequestID = s.GenerationRequestID
		return next

	case GeneratePuzzle:
		if act.RequestID <= s.GenerationRequestID {
			return s
		}
		s.Status = StatusSetup
		s.Puzzle = nil
		s.Error = ""
		s.GenerationRequestID = act.RequestID
		return s

	case PuzzleGenerated:
		if act.RequestID != s.GenerationRequestID || act.Puzzle == nil {
			return s
		}
		return rd.loadPuzzle(s, act.Puzzle)

	case PuzzleGenerationFailed:
		if act.RequestID != s.GenerationRequestID {
			return s
		}
		s.Status = StatusSetup
		s.Puzzle = nil
		s.Error = act.Message
		return s

	case StartTimer:
		if s.TimerRunning || s.Status.Terminal() {
			return s
		}
		s.TimerRunning = true
		s.StartTime = rd.Now()
		return s

	case TickTimer:
		if !s.TimerRunning {
			return s
		}
		s.ElapsedMs = act.ElapsedMs
		return s

	case MakeMove:
		return rd.makeMove(s, act.To)

	case ResetPuzzle:
		return rd.resetAttempt(s)

	case NewPuzzle:
		next := NewGameState(s.Difficulty)
		next.GenerationRequestID = s.GenerationRequestID
		return next

	case ShowSolution:
		s.ShowingSolution = true
		return s

	case HideSolution:
		s.ShowingSolution = false
		return s

	case RevealHiddenResults:
		if s.Status != StatusRevealing || s.HiddenResults == nil {
			return s
		}
		coins := s.HiddenResults.CorrectCount*CoinsPerCorrectMove - s.HiddenResults.MistakeCount*CoinPenaltyPerMiss
		if coins < 0 {
			coins = 0
		}
		s.PuzzleCoins = coins
		s.Status = StatusWon
		return s

	case ClearCoinAnimation:
		if len(s.CoinAnimations) == 0 {
			return s
		}
		kept := make([]CoinAnimation, 0, len(s.CoinAnimations))
		for _, ca := range s.CoinAnimations {
			if ca.ID != act.ID {
				kept = append(kept, ca)
			}
		}
		s.CoinAnimations = kept
		return s
	}
	return s
}

// loadPuzzle swaps a fresh puzzle in and resets all per-attempt state.
func (rd *Reducer) loadPuzzle(s GameState, p *puzzle.Puzzle) GameState {
	s.Status = StatusReady
	s.Puzzle = p
	s.Error = ""
	return rd.freshAttempt(s)
}

// resetAttempt rewinds the session while keeping the same puzzle. With
// no puzzle loaded it falls back to setup.
func (rd *Reducer) resetAttempt(s GameState) GameState {
	if s.Puzzle == nil {
		next := NewGameState(s.Difficulty)
		next.GenerationRequestID = s.GenerationRequestID
		return next
	}
	s.Status = StatusReady
	s.Error = ""
	return rd.freshAttempt(s)
}

// freshAttempt zeroes every per-attempt field against s.Puzzle.
func (rd *Reducer) freshAttempt(s GameState) GameState {
	start := s.Puzzle.Start()
	s.CurrentPosition = start
	s.VisitedCells = []puzzle.Coordinate{start}
	s.TraversedConnectors = nil
	s.MoveHistory = nil
	s.HiddenMode = s.Difficulty.HiddenMode
	if s.HiddenMode {
		s.Lives, s.MaxLives = 0, 0
		s.HiddenResults = &HiddenModeResults{}
	} else {
		s.Lives, s.MaxLives = s.Difficulty.MaxLives, s.Difficulty.MaxLives
		s.HiddenResults = nil
	}
	s.StartTime = time.Time{}
	s.ElapsedMs = 0
	s.TimerRunning = false
	s.PuzzleCoins = 0
	s.CoinAnimations = nil
	s.ShowingSolution = false
	return s
}

// makeMove validates and applies one move attempt. Rejections return
// the state unchanged.
func (rd *Reducer) makeMove(s GameState, to puzzle.Coordinate) GameState {
	if s.Puzzle == nil || s.Status.Terminal() || s.Status == StatusSetup {
		return s
	}
	if !IsAdjacent(s.CurrentPosition, to) {
		return s
	}
	for _, v := range s.VisitedCells {
		if v == to {
			return s
		}
	}
	conn := s.Puzzle.ConnectorBetween(s.CurrentPosition, to)
	if conn == nil {
		return s
	}

	// First accepted attempt flips ready → playing and starts the clock.
	if s.Status == StatusReady {
		s.Status = StatusPlaying
		if !s.TimerRunning {
			s.TimerRunning = true
			s.StartTime = rd.Now()
		}
	}

	fromCell := s.Puzzle.CellAt(s.CurrentPosition)
	correct := fromCell.Answer == conn.Value
	isFinish := to == s.Puzzle.Finish()

	rec := MoveRecord{
		From:           s.CurrentPosition,
		To:             to,
		Correct:        correct,
		ConnectorValue: conn.Value,
		CellAnswer:     fromCell.Answer,
		At:             rd.Now(),
	}
	s.MoveHistory = appendMove(s.MoveHistory, rec)

	if s.HiddenMode {
		return rd.applyHiddenMove(s, rec, *conn, isFinish)
	}
	if correct {
		return rd.applyCorrectMove(s, *conn, to, isFinish)
	}
	return rd.applyIncorrectMove(s)
}

// applyHiddenMove accepts any move; correctness only feeds the
// deferred tally.
func (rd *Reducer) applyHiddenMove(s GameState, rec MoveRecord, conn puzzle.Connector, isFinish bool) GameState {
	results := &HiddenModeResults{
		Moves:        appendMove(s.HiddenResults.Moves, rec),
		CorrectCount: s.HiddenResults.CorrectCount,
		MistakeCount: s.HiddenResults.MistakeCount,
	}
	if rec.Correct {
		results.CorrectCount++
	} else {
		results.MistakeCount++
	}
	s.HiddenResults = results
	s.CurrentPosition = rec.To
	s.VisitedCells = appendCoord(s.VisitedCells, rec.To)
	s.TraversedConnectors = appendConn(s.TraversedConnectors, conn)
	if isFinish {
		s.Status = StatusRevealing
		s.TimerRunning = false
	}
	return s
}

func (rd *Reducer) applyCorrectMove(s GameState, conn puzzle.Connector, to puzzle.Coordinate, isFinish bool) GameState {
	s.CurrentPosition = to
	s.VisitedCells = appendCoord(s.VisitedCells, to)
	s.TraversedConnectors = appendConn(s.TraversedConnectors, conn)
	s.PuzzleCoins += CoinsPerCorrectMove
	s.CoinAnimations = append(cloneAnims(s.CoinAnimations), CoinAnimation{
		ID: uuid.NewString(), Amount: CoinsPerCorrectMove, At: rd.Now(),
	})
	if isFinish {
		s.Status = StatusWon
		s.TimerRunning = false
	}
	return s
}

// applyIncorrectMove keeps the player in place, burns a life, and
// clamps the coin penalty at zero.
func (rd *Reducer) applyIncorrectMove(s GameState) GameState {
	s.Lives--
	s.PuzzleCoins -= CoinPenaltyPerMiss
	if s.PuzzleCoins < 0 {
		s.PuzzleCoins = 0
	}
	s.CoinAnimations = append(cloneAnims(s.CoinAnimations), CoinAnimation{
		ID: uuid.NewString(), Amount: -CoinPenaltyPerMiss, At: rd.Now(),
	})
	if s.Lives <= 0 {
		s.Status = StatusLost
		s.TimerRunning = false
	}
	return s
}

// ------------------------- move-legality oracle -----------------------------

// IsAdjacent reports 8-neighborhood adjacency. Symmetric in its
// arguments.
func IsAdjacent(a, b puzzle.Coordinate) bool {
	return a.IsAdjacent(b)
}

// GetConnectorBetweenCells finds the connector joining a and b, in
// either argument order, or nil.
func GetConnectorBetweenCells(p *puzzle.Puzzle, a, b puzzle.Coordinate) *puzzle.Connector {
	return p.ConnectorBetween(a, b)
}

// CheckMoveCorrectness reports whether moving from → to is a correct
// move on p, along with the connector examined (nil when no connector
// exists, in which case correct is false).
func CheckMoveCorrectness(p *puzzle.Puzzle, from, to puzzle.Coordinate) (bool, *puzzle.Connector) {
	conn := p.ConnectorBetween(from, to)
	if conn == nil {
		return false, nil
	}
	cell := p.CellAt(from)
	if cell == nil {
		return false, conn
	}
	return cell.Answer == conn.Value, conn
}

// --------------------------- copy-on-write helpers ---------------------------
//
// Apply hands back value copies of GameState; these keep the slice
// fields from aliasing the previous state's backing arrays.

func appendCoord(s []puzzle.Coordinate, c puzzle.Coordinate) []puzzle.Coordinate {
	out := make([]puzzle.Coordinate, len(s), len(s)+1)
	copy(out, s)
	return append(out, c)
}

func appendConn(s []puzzle.Connector, c puzzle.Connector) []puzzle.Connector {
	out := make([]puzzle.Connector, len(s), len(s)+1)
	copy(out, s)
	return append(out, c)
}

func appendMove(s []MoveRecord, m MoveRecord) []MoveRecord {
	out := make([]MoveRecord, len(s), len(s)+1)
	copy(out, s)
	return append(out, m)
}

func cloneAnims(s []CoinAnimation) []CoinAnimation {
	out := make([]CoinAnimation, len(s), len(s)+1)
	copy(out, s)
	return out
}
