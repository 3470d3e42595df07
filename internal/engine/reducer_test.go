package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mazekids/circuit/apps/go-server/internal/puzzle"
)

// uniformPuzzle builds a fully connected grid where every cell answers
// `answer` and every connector carries `value`. Tests tweak individual
// connectors to stage correct/incorrect moves.
func uniformPuzzle(rows, cols, answer, value int) *puzzle.Puzzle {
	p := &puzzle.Puzzle{
		ID: "fixture", Difficulty: "test",
		Rows: rows, Cols: cols,
	}
	p.Cells = make([][]puzzle.Cell, rows)
	for r := range p.Cells {
		p.Cells[r] = make([]puzzle.Cell, cols)
		for c := range p.Cells[r] {
			p.Cells[r][c] = puzzle.Cell{
				Row: r, Col: c,
				Expression: "2 + 3", Answer: answer,
				IsStart:  r == 0 && c == 0,
				IsFinish: r == rows-1 && c == cols-1,
			}
		}
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			a := puzzle.Coordinate{Row: r, Col: c}
			for _, b := range p.Neighbors(a) {
				if b.Row < a.Row || (b.Row == a.Row && b.Col < a.Col) {
					continue
				}
				t, dir := puzzle.ClassifyEdge(a, b)
				p.Connectors = append(p.Connectors, puzzle.Connector{
					A: a, B: b, Type: t, Direction: dir, Value: value,
				})
			}
		}
	}
	p.Solution = puzzle.Solution{Path: []puzzle.Coordinate{p.Start(), p.Finish()}, Steps: 1}
	return p
}

func testDifficulty(hidden bool, lives int) puzzle.DifficultySettings {
	return puzzle.DifficultySettings{
		Name: "test", Rows: 3, Cols: 3,
		Operations:   []puzzle.Operation{puzzle.OpAdd},
		AddSubRange:  puzzle.Range{Min: 1, Max: 10},
		MultDivRange: puzzle.Range{Min: 2, Max: 5},
		MaxConnector: 20,
		MaxLives:     lives,
		HiddenMode:   hidden,
	}
}

// fixedClock returns a Reducer whose clock advances stepMs per call.
func fixedClock(stepMs int64) *Reducer {
	t0 := time.Unix(1000, 0)
	calls := int64(0)
	return &Reducer{Now: func() time.Time {
		calls++
		return t0.Add(time.Duration(calls*stepMs) * time.Millisecond)
	}}
}

// loaded returns a ready state with the given puzzle swapped in.
func loaded(rd *Reducer, d puzzle.DifficultySettings, p *puzzle.Puzzle) GameState {
	s := NewGameState(d)
	s = rd.Apply(s, GeneratePuzzle{RequestID: 1})
	return rd.Apply(s, PuzzleGenerated{RequestID: 1, Puzzle: p})
}

func move(rd *Reducer, s GameState, r, c int) GameState {
	return rd.Apply(s, MakeMove{To: puzzle.Coordinate{Row: r, Col: c}})
}

func TestPuzzleLoadResetsSession(t *testing.T) {
	rd := fixedClock(10)
	p := uniformPuzzle(3, 3, 5, 5)
	s := loaded(rd, testDifficulty(false, 5), p)

	assert.Equal(t, StatusReady, s.Status)
	assert.Equal(t, p.Start(), s.CurrentPosition)
	assert.Equal(t, []puzzle.Coordinate{p.Start()}, s.VisitedCells)
	assert.Equal(t, 5, s.Lives)
	assert.Equal(t, 5, s.MaxLives)
	assert.Zero(t, s.PuzzleCoins)
	assert.False(t, s.TimerRunning)
}

func TestStaleGenerationResultIgnored(t *testing.T) {
	rd := fixedClock(10)
	s := NewGameState(testDifficulty(false, 5))
	s = rd.Apply(s, GeneratePuzzle{RequestID: 1})
	s = rd.Apply(s, GeneratePuzzle{RequestID: 2})

	// Result for the abandoned first request must be dropped.
	s = rd.Apply(s, PuzzleGenerated{RequestID: 1, Puzzle: uniformPuzzle(3, 3, 5, 5)})
	assert.Equal(t, StatusSetup, s.Status)
	assert.Nil(t, s.Puzzle)

	// A stale failure is likewise dropped.
	s = rd.Apply(s, PuzzleGenerationFailed{RequestID: 1, Message: "boom"})
	assert.Empty(t, s.Error)

	s = rd.Apply(s, PuzzleGenerated{RequestID: 2, Puzzle: uniformPuzzle(3, 3, 5, 5)})
	assert.Equal(t, StatusReady, s.Status)
	require.NotNil(t, s.Puzzle)
}

func TestGenerationFailureIsRecoverable(t *testing.T) {
	rd := fixedClock(10)
	s := NewGameState(testDifficulty(false, 5))
	s = rd.Apply(s, GeneratePuzzle{RequestID: 1})
	s = rd.Apply(s, PuzzleGenerationFailed{RequestID: 1, Message: "could not generate"})

	assert.Equal(t, StatusSetup, s.Status)
	assert.Equal(t, "could not generate", s.Error)

	// Retry succeeds and clears the error.
	s = rd.Apply(s, GeneratePuzzle{RequestID: 2})
	s = rd.Apply(s, PuzzleGenerated{RequestID: 2, Puzzle: uniformPuzzle(3, 3, 5, 5)})
	assert.Equal(t, StatusReady, s.Status)
	assert.Empty(t, s.Error)
}

// Scenario A: move legality is the adjacency+connector rule, not path
// order — a diagonal first move is evaluated on its own merits.
func TestDiagonalFirstMoveEvaluatedByRule(t *testing.T) {
	rd := fixedClock(10)
	p := uniformPuzzle(3, 3, 8, 8)
	p.Cells[0][0].Expression = "5 + 3"
	s := loaded(rd, testDifficulty(false, 5), p)

	s = move(rd, s, 1, 1)
	assert.Equal(t, StatusPlaying, s.Status)
	assert.Equal(t, puzzle.Coordinate{Row: 1, Col: 1}, s.CurrentPosition)
	require.Len(t, s.MoveHistory, 1)
	assert.True(t, s.MoveHistory[0].Correct)
	assert.Equal(t, 8, s.MoveHistory[0].ConnectorValue)
}

func TestMoveRejections(t *testing.T) {
	rd := fixedClock(10)
	p := uniformPuzzle(3, 3, 5, 5)
	s := loaded(rd, testDifficulty(false, 5), p)

	// Not adjacent.
	next := move(rd, s, 0, 2)
	assert.Equal(t, s, next, "non-adjacent move must be a no-op")

	// Revisit.
	s = move(rd, s, 0, 1)
	next = move(rd, s, 0, 0)
	assert.Equal(t, s, next, "revisiting a cell must be a no-op")

	// No duplicate coordinates ever enter visitedCells.
	seen := map[puzzle.Coordinate]int{}
	for _, v := range s.VisitedCells {
		seen[v]++
		assert.Equal(t, 1, seen[v])
	}
}

func TestCorrectMoveAwardsCoinsAndWins(t *testing.T) {
	rd := fixedClock(10)
	p := uniformPuzzle(2, 2, 5, 5)
	s := loaded(rd, testDifficulty(false, 3), p)

	s = move(rd, s, 0, 1)
	assert.Equal(t, 10, s.PuzzleCoins)
	assert.Len(t, s.CoinAnimations, 1)

	s = move(rd, s, 1, 1) // finish
	assert.Equal(t, StatusWon, s.Status)
	assert.Equal(t, 20, s.PuzzleCoins)
	assert.False(t, s.TimerRunning)
}

// Scenario B: five wrong moves from the same cell exhaust five lives,
// coins clamped at zero throughout.
func TestLivesExhaustionLosesWithCoinFloor(t *testing.T) {
	rd := fixedClock(10)
	p := uniformPuzzle(3, 3, 5, 5)
	// Wrong exit: connector to (1,0) no longer matches the answer.
	p.ConnectorBetween(puzzle.Coordinate{Row: 0, Col: 0}, puzzle.Coordinate{Row: 1, Col: 0}).Value = 9
	s := loaded(rd, testDifficulty(false, 5), p)

	for i := 0; i < 5; i++ {
		s = move(rd, s, 1, 0)
		assert.GreaterOrEqual(t, s.PuzzleCoins, 0, "coins must never go negative")
		// Incorrect moves never advance the player.
		assert.Equal(t, p.Start(), s.CurrentPosition)
	}
	assert.Equal(t, 0, s.Lives)
	assert.Equal(t, StatusLost, s.Status)
	assert.Equal(t, 0, s.PuzzleCoins)
	assert.Len(t, s.MoveHistory, 5)
}

func TestTerminalStatesAreFixedPoints(t *testing.T) {
	rd := fixedClock(10)
	p := uniformPuzzle(2, 2, 5, 5)
	s := loaded(rd, testDifficulty(false, 3), p)
	s = move(rd, s, 1, 1)
	require.Equal(t, StatusWon, s.Status)

	next := move(rd, s, 0, 1)
	assert.Equal(t, s, next, "moves after won must be no-ops")

	// And the same once lost.
	p2 := uniformPuzzle(2, 2, 5, 5)
	p2.ConnectorBetween(puzzle.Coordinate{Row: 0, Col: 0}, puzzle.Coordinate{Row: 0, Col: 1}).Value = 9
	s2 := loaded(rd, testDifficulty(false, 1), p2)
	s2 = move(rd, s2, 0, 1)
	require.Equal(t, StatusLost, s2.Status)
	next2 := move(rd, s2, 1, 1)
	assert.Equal(t, s2, next2, "moves after lost must be no-ops")
}

// Scenario C: hidden mode accepts every move, reaches revealing at
// FINISH, and resolves to won with max(0, 8*10 - 2*30) = 20 coins.
func TestHiddenModeDeferredScoring(t *testing.T) {
	rd := fixedClock(10)
	p := uniformPuzzle(4, 4, 5, 5)
	route := []puzzle.Coordinate{
		{Row: 0, Col: 1}, {Row: 0, Col: 2}, {Row: 0, Col: 3}, {Row: 1, Col: 3}, {Row: 1, Col: 2}, {Row: 1, Col: 1}, {Row: 2, Col: 1}, {Row: 2, Col: 2}, {Row: 3, Col: 2}, {Row: 3, Col: 3},
	}
	// Two wrong steps along the route.
	p.ConnectorBetween(puzzle.Coordinate{Row: 0, Col: 2}, puzzle.Coordinate{Row: 0, Col: 3}).Value = 7
	p.ConnectorBetween(puzzle.Coordinate{Row: 1, Col: 2}, puzzle.Coordinate{Row: 1, Col: 1}).Value = 7

	s := loaded(rd, testDifficulty(true, 0), p)
	for _, c := range route {
		s = move(rd, s, c.Row, c.Col)
		assert.NotEqual(t, StatusLost, s.Status, "hidden mode can never lose")
	}

	assert.Equal(t, StatusRevealing, s.Status)
	require.NotNil(t, s.HiddenResults)
	assert.Equal(t, 8, s.HiddenResults.CorrectCount)
	assert.Equal(t, 2, s.HiddenResults.MistakeCount)
	assert.Len(t, s.HiddenResults.Moves, 10)

	s = rd.Apply(s, RevealHiddenResults{})
	assert.Equal(t, StatusWon, s.Status)
	assert.Equal(t, 20, s.PuzzleCoins)
}

func TestHiddenModeNeverLosesUnderHeavyMistakes(t *testing.T) {
	rd := fixedClock(10)
	p := uniformPuzzle(3, 3, 5, 9) // every connector wrong
	s := loaded(rd, testDifficulty(true, 0), p)

	for _, c := range []puzzle.Coordinate{{Row: 0, Col: 1}, {Row: 1, Col: 0}, {Row: 1, Col: 1}, {Row: 2, Col: 0}, {Row: 2, Col: 1}, {Row: 2, Col: 2}} {
		s = move(rd, s, c.Row, c.Col)
		assert.NotEqual(t, StatusLost, s.Status)
	}
	assert.Equal(t, StatusRevealing, s.Status)

	s = rd.Apply(s, RevealHiddenResults{})
	assert.Equal(t, StatusWon, s.Status)
	assert.Equal(t, 0, s.PuzzleCoins, "all-mistake reveal clamps at zero")
}

// Scenario D: reset rewinds everything but keeps the same puzzle.
func TestResetPuzzleRewindsAttempt(t *testing.T) {
	rd := fixedClock(10)
	p := uniformPuzzle(3, 3, 5, 5)
	s := loaded(rd, testDifficulty(false, 5), p)
	s = move(rd, s, 0, 1)
	s = move(rd, s, 1, 1)
	s = move(rd, s, 1, 0)
	require.Len(t, s.MoveHistory, 3)

	s = rd.Apply(s, ResetPuzzle{})
	assert.Equal(t, StatusReady, s.Status)
	assert.Equal(t, p.Start(), s.CurrentPosition)
	assert.Equal(t, []puzzle.Coordinate{p.Start()}, s.VisitedCells)
	assert.Equal(t, 5, s.Lives)
	assert.Empty(t, s.MoveHistory)
	assert.Zero(t, s.PuzzleCoins)
	require.NotNil(t, s.Puzzle)
	assert.Equal(t, "fixture", s.Puzzle.ID, "reset keeps the same puzzle")
}

func TestNewPuzzleDiscardsBoard(t *testing.T) {
	rd := fixedClock(10)
	s := loaded(rd, testDifficulty(false, 5), uniformPuzzle(3, 3, 5, 5))
	s = rd.Apply(s, NewPuzzle{})
	assert.Equal(t, StatusSetup, s.Status)
	assert.Nil(t, s.Puzzle)
}

func TestTimerSemantics(t *testing.T) {
	rd := fixedClock(10)
	s := loaded(rd, testDifficulty(false, 5), uniformPuzzle(3, 3, 5, 5))

	// Ticks before the timer runs are ignored.
	s = rd.Apply(s, TickTimer{ElapsedMs: 500})
	assert.Zero(t, s.ElapsedMs)

	s = rd.Apply(s, StartTimer{})
	require.True(t, s.TimerRunning)
	started := s.StartTime

	// Idempotent: a second start keeps the original instant.
	s = rd.Apply(s, StartTimer{})
	assert.Equal(t, started, s.StartTime)

	s = rd.Apply(s, TickTimer{ElapsedMs: 1200})
	assert.EqualValues(t, 1200, s.ElapsedMs)

	// Timer stops at a terminal state; the last reading survives.
	s = move(rd, s, 0, 1)
	s = move(rd, s, 1, 2)
	s = move(rd, s, 2, 2)
	require.Equal(t, StatusWon, s.Status)
	assert.False(t, s.TimerRunning)
	s = rd.Apply(s, TickTimer{ElapsedMs: 9999})
	assert.EqualValues(t, 1200, s.ElapsedMs)
}

func TestFirstMoveStartsTimerAndPlay(t *testing.T) {
	rd := fixedClock(10)
	p := uniformPuzzle(3, 3, 5, 5)
	p.ConnectorBetween(puzzle.Coordinate{Row: 0, Col: 0}, puzzle.Coordinate{Row: 1, Col: 0}).Value = 9
	s := loaded(rd, testDifficulty(false, 5), p)

	// Even an incorrect first attempt flips ready → playing and starts
	// the clock.
	s = move(rd, s, 1, 0)
	assert.Equal(t, StatusPlaying, s.Status)
	assert.True(t, s.TimerRunning)
	assert.False(t, s.StartTime.IsZero())
}

func TestSolutionOverlayLeavesStatusAlone(t *testing.T) {
	rd := fixedClock(10)
	p := uniformPuzzle(2, 2, 5, 5)
	p.ConnectorBetween(puzzle.Coordinate{Row: 0, Col: 0}, puzzle.Coordinate{Row: 0, Col: 1}).Value = 9
	s := loaded(rd, testDifficulty(false, 1), p)
	s = move(rd, s, 0, 1)
	require.Equal(t, StatusLost, s.Status)

	s = rd.Apply(s, ShowSolution{})
	assert.True(t, s.ShowingSolution)
	assert.Equal(t, StatusLost, s.Status)

	s = rd.Apply(s, HideSolution{})
	assert.False(t, s.ShowingSolution)
}

func TestClearCoinAnimation(t *testing.T) {
	rd := fixedClock(10)
	s := loaded(rd, testDifficulty(false, 5), uniformPuzzle(3, 3, 5, 5))
	s = move(rd, s, 0, 1)
	require.Len(t, s.CoinAnimations, 1)

	id := s.CoinAnimations[0].ID
	s = rd.Apply(s, ClearCoinAnimation{ID: "someone-else"})
	assert.Len(t, s.CoinAnimations, 1)
	s = rd.Apply(s, ClearCoinAnimation{ID: id})
	assert.Empty(t, s.CoinAnimations)
}

func TestApplyNeverMutatesInput(t *testing.T) {
	rd := fixedClock(10)
	s := loaded(rd, testDifficulty(false, 5), uniformPuzzle(3, 3, 5, 5))
	s1 := move(rd, s, 0, 1)
	_ = move(rd, s1, 1, 2)

	// The earlier states keep their own history and visited slices.
	assert.Len(t, s.MoveHistory, 0)
	assert.Len(t, s1.MoveHistory, 1)
	assert.Equal(t, []puzzle.Coordinate{{Row: 0, Col: 0}, {Row: 0, Col: 1}}, s1.VisitedCells)
}

func TestMoveLegalityOracle(t *testing.T) {
	p := uniformPuzzle(3, 3, 5, 5)
	a := puzzle.Coordinate{Row: 0, Col: 0}
	b := puzzle.Coordinate{Row: 0, Col: 1}
	far := puzzle.Coordinate{Row: 0, Col: 2}

	assert.True(t, IsAdjacent(a, b))
	assert.Equal(t, IsAdjacent(a, far), IsAdjacent(far, a))

	// Connector lookup ignores argument order.
	require.NotNil(t, GetConnectorBetweenCells(p, a, b))
	assert.Same(t, GetConnectorBetweenCells(p, a, b), GetConnectorBetweenCells(p, b, a))
	assert.Nil(t, GetConnectorBetweenCells(p, a, far))

	ok, conn := CheckMoveCorrectness(p, a, b)
	require.NotNil(t, conn)
	assert.True(t, ok, "answer 5 over a value-5 connector is correct")

	conn.Value = 9
	ok, _ = CheckMoveCorrectness(p, a, b)
	assert.False(t, ok)

	// No connector means never correct.
	ok, conn = CheckMoveCorrectness(p, a, far)
	assert.False(t, ok)
	assert.Nil(t, conn)
}

func TestRate(t *testing.T) {
	correct := MoveRecord{Correct: true}
	wrong := MoveRecord{Correct: false}

	cases := []struct {
		name      string
		history   []MoveRecord
		elapsedMs int64
		want      int
	}{
		{"no moves", nil, 0, 0},
		{"mistakes cap at one star", []MoveRecord{correct, wrong, correct}, 1000, 1},
		{"clean but slow", []MoveRecord{correct, correct}, 20000, 2},
		{"clean at pace", []MoveRecord{correct, correct, correct}, 9000, 3},
		{"boundary is exclusive", []MoveRecord{correct}, 5000, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Rate(tc.history, tc.elapsedMs))
		})
	}
}
