// apps/go-server/internal/httpserver/views.go
//
// Wire shapes for session state. The server is authoritative for move
// correctness, so cell answers and the solution path are redacted from
// the grid the client sees; the solution appears only while the
// overlay is showing, and hidden-mode tallies only once the session
// has resolved.

package httpserver

import (
	"github.com/mazekids/circuit/apps/go-server/internal/engine"
	"github.com/mazekids/circuit/apps/go-server/internal/puzzle"
)

type cellJSON struct {
	Row        int    `json:"row"`
	Col        int    `json:"col"`
	Expression string `json:"expression"`
	IsStart    bool   `json:"isStart"`
	IsFinish   bool   `json:"isFinish"`
}

type puzzleJSON struct {
	ID         string              `json:"id"`
	Difficulty string              `json:"difficulty"`
	Rows       int                 `json:"rows"`
	Cols       int                 `json:"cols"`
	Cells      [][]cellJSON        `json:"cells"`
	Connectors []puzzle.Connector  `json:"connectors"`
	Solution   []puzzle.Coordinate `json:"solution,omitempty"`
	ParSeconds int                 `json:"parSeconds,omitempty"`
}

type sessionJSON struct {
	GameID          string                 `json:"gameId"`
	Status          engine.Status          `json:"status"`
	Difficulty      string                 `json:"difficulty"`
	HiddenMode      bool                   `json:"hiddenMode"`
	Puzzle          *puzzleJSON            `json:"puzzle,omitempty"`
	CurrentPosition puzzle.Coordinate      `json:"currentPosition"`
	VisitedCells    []puzzle.Coordinate    `json:"visitedCells"`
	Lives           int                    `json:"lives"`
	MaxLives        int                    `json:"maxLives"`
	PuzzleCoins     int                    `json:"puzzleCoins"`
	ElapsedMs       int64                  `json:"elapsedMs"`
	TimerRunning    bool                   `json:"isTimerRunning"`
	Moves           int                    `json:"moves"`
	Stars           int                    `json:"stars,omitempty"`
	CoinAnimations  []engine.CoinAnimation `json:"coinAnimations,omitempty"`
	HiddenResults   *hiddenJSON            `json:"hiddenModeResults,omitempty"`
	ShowingSolution bool                   `json:"showingSolution"`
	Error           string                 `json:"error,omitempty"`
}

type hiddenJSON struct {
	CorrectCount int `json:"correctCount"`
	MistakeCount int `json:"mistakeCount"`
}

// sessionView projects a session into its client-facing shape.
func sessionView(sess *engine.Session) *sessionJSON {
	st := &sess.State
	out := &sessionJSON{
		GameID:          sess.ID,
		Status:          st.Status,
		Difficulty:      st.Difficulty.Name,
		HiddenMode:      st.HiddenMode,
		CurrentPosition: st.CurrentPosition,
		VisitedCells:    st.VisitedCells,
		Lives:           st.Lives,
		MaxLives:        st.MaxLives,
		PuzzleCoins:     st.PuzzleCoins,
		ElapsedMs:       st.ElapsedMs,
		TimerRunning:    st.TimerRunning,
		Moves:           len(st.MoveHistory),
		CoinAnimations:  st.CoinAnimations,
		ShowingSolution: st.ShowingSolution,
		Error:           st.Error,
	}
	if st.Status == engine.StatusWon {
		out.Stars = engine.Rate(st.MoveHistory, st.ElapsedMs)
	}
	// Hidden tallies stay hidden until the session resolves.
	if st.HiddenResults != nil && (st.Status == engine.StatusWon || st.Status == engine.StatusRevealing) {
		out.HiddenResults = &hiddenJSON{
			CorrectCount: st.HiddenResults.CorrectCount,
			MistakeCount: st.HiddenResults.MistakeCount,
		}
	}
	if st.Puzzle != nil {
		out.Puzzle = puzzleView(st.Puzzle, st.Difficulty.ParSeconds(st.Puzzle.Solution.Steps), st.ShowingSolution)
	}
	return out
}

// puzzleView strips answers from the grid; the solution path rides
// along only when the overlay is active.
func puzzleView(p *puzzle.Puzzle, parSeconds int, withSolution bool) *puzzleJSON {
	cells := make([][]cellJSON, p.Rows)
	for r := range cells {
		cells[r] = make([]cellJSON, p.Cols)
		for c := range cells[r] {
			src := &p.Cells[r][c]
			cells[r][c] = cellJSON{
				Row: src.Row, Col: src.Col,
				Expression: src.Expression,
				IsStart:    src.IsStart, IsFinish: src.IsFinish,
			}
		}
	}
	out := &puzzleJSON{
		ID:         p.ID,
		Difficulty: p.Difficulty,
		Rows:       p.Rows,
		Cols:       p.Cols,
		Cells:      cells,
		Connectors: p.Connectors,
		ParSeconds: parSeconds,
	}
	if withSolution {
		out.Solution = p.Solution.Path
	}
	return out
}
