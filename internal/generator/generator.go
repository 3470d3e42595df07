// apps/go-server/internal/generator/generator.go
//
// Puzzle generator for Circuit Challenge.
// Responsibilities:
//   - Lay out a rows×cols grid with START at (0,0) and FINISH at
//     (rows-1, cols-1).
//   - Carve a solution path whose length falls inside the difficulty's
//     derived bounds (path.go).
//   - Assign arithmetic expressions and connector values along the
//     path, then fill every remaining connector and cell (arithmetic.go).
//   - Verify exactly one satisfying path exists, repairing or retrying
//     when an accidental alternate shows up (unique.go).
//
// Generation failure is recoverable: after the retry budget is spent
// the caller gets ErrGeneration and is expected to ask again.

package generator

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/mazekids/circuit/apps/go-server/internal/puzzle"
)

// ErrGeneration is returned when no valid unique-solution puzzle could
// be produced within the retry budget.
var ErrGeneration = errors.New("could not generate a valid puzzle")

const (
	defaultMaxAttempts = 30 // full regenerations per Generate call
	maxRepairs         = 12 // local connector repairs per attempt
	maxValueDraws      = 64 // rejection-sampling draws before an attempt fails
)

// Generator produces puzzles. Not safe for concurrent use; each
// session (or request) should own its own Generator.
type Generator struct {
	rng         *rand.Rand
	maxAttempts int
}

// New returns a Generator seeded from the shared runtime source.
func New() *Generator {
	return NewSeeded(rand.Uint64(), rand.Uint64())
}

// NewSeeded returns a deterministic Generator. The daily challenge
// uses this so every player gets the same board for a given date.
func NewSeeded(seed1, seed2 uint64) *Generator {
	return &Generator{
		rng:         rand.New(rand.NewPCG(seed1, seed2)),
		maxAttempts: defaultMaxAttempts,
	}
}

// Generate builds a puzzle for the given difficulty, or reports
// ErrGeneration after the attempt budget is exhausted.
func (g *Generator) Generate(d puzzle.DifficultySettings) (*puzzle.Puzzle, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		p, ok := g.tryGenerate(d)
		if ok {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: difficulty %q after %d attempts", ErrGeneration, d.Name, g.maxAttempts)
}

// tryGenerate runs one full generation attempt.
func (g *Generator) tryGenerate(d puzzle.DifficultySettings) (*puzzle.Puzzle, bool) {
	minLen, maxLen := d.PathBounds()
	path := g.carvePath(d.Rows, d.Cols, minLen, maxLen)
	if path == nil {
		return nil, false
	}

	p := &puzzle.Puzzle{
		ID:         uuid.NewString(),
		Difficulty: d.Name,
		Rows:       d.Rows,
		Cols:       d.Cols,
		Cells:      emptyGrid(d.Rows, d.Cols),
		Solution:   puzzle.Solution{Path: path, Steps: len(path) - 1},
	}

	onPath := make(map[puzzle.Coordinate]bool, len(path))
	for _, c := range path {
		onPath[c] = true
	}

	// Expressions along the path; each connector value equals the
	// departure cell's answer. Consecutive answers must differ so a
	// cell's back-connector can never also read as correct.
	prevAnswer := -1
	for i := 0; i < len(path)-1; i++ {
		expr, answer, ok := g.expressionAvoiding(d, prevAnswer)
		if !ok {
			return nil, false
		}
		cell := p.CellAt(path[i])
		cell.Expression = expr
		cell.Answer = answer
		t, dir := puzzle.ClassifyEdge(path[i], path[i+1])
		p.Connectors = append(p.Connectors, puzzle.Connector{
			A: path[i], B: path[i+1], Type: t, Direction: dir, Value: answer,
		})
		prevAnswer = answer
	}

	// Every remaining cell still needs a prompt, FINISH included.
	for r := 0; r < d.Rows; r++ {
		for c := 0; c < d.Cols; c++ {
			cell := &p.Cells[r][c]
			if cell.Expression == "" {
				cell.Expression, cell.Answer = g.expression(d)
			}
		}
	}

	if !g.fillConnectors(p, d, onPath) {
		return nil, false
	}

	if !g.ensureUnique(p, d) {
		return nil, false
	}
	return p, true
}

// fillConnectors adds a connector for every adjacency-eligible pair
// not already covered by the solution path. Values incident to a
// path cell never equal that cell's answer, which keeps the "exactly
// one correct exit" invariant intact; values elsewhere are free to
// coincide (decoys) subject to the uniqueness guard. Reports false
// when a filler value cannot be drawn within budget.
func (g *Generator) fillConnectors(p *puzzle.Puzzle, d puzzle.DifficultySettings, onPath map[puzzle.Coordinate]bool) bool {
	finish := p.Finish()
	for r := 0; r < p.Rows; r++ {
		for c := 0; c < p.Cols; c++ {
			a := puzzle.Coordinate{Row: r, Col: c}
			for _, b := range p.Neighbors(a) {
				// Scan order visits each unordered pair twice; keep one.
				if b.Row < a.Row || (b.Row == a.Row && b.Col < a.Col) {
					continue
				}
				if p.ConnectorBetween(a, b) != nil {
					continue
				}
				v, ok := g.fillerValue(p, d, a, b, onPath, finish)
				if !ok {
					return false
				}
				t, dir := puzzle.ClassifyEdge(a, b)
				p.Connectors = append(p.Connectors, puzzle.Connector{
					A: a, B: b, Type: t, Direction: dir, Value: v,
				})
			}
		}
	}
	return true
}

// fillerValue draws a connector value that cannot serve as a correct
// exit from a solution-path endpoint. Bounded draws: tiny
// maxConnectorValue settings can leave no admissible value.
func (g *Generator) fillerValue(p *puzzle.Puzzle, d puzzle.DifficultySettings, a, b puzzle.Coordinate, onPath map[puzzle.Coordinate]bool, finish puzzle.Coordinate) (int, bool) {
	for i := 0; i < maxValueDraws; i++ {
		v := 1 + g.rng.IntN(d.MaxConnector)
		if onPath[a] && a != finish && v == p.CellAt(a).Answer {
			continue
		}
		if onPath[b] && b != finish && v == p.CellAt(b).Answer {
			continue
		}
		return v, true
	}
	return 0, false
}

// emptyGrid allocates the row-major cell grid with coordinates and
// start/finish flags set.
func emptyGrid(rows, cols int) [][]puzzle.Cell {
	grid := make([][]puzzle.Cell, rows)
	for r := range grid {
		grid[r] = make([]puzzle.Cell, cols)
		for c := range grid[r] {
			grid[r][c] = puzzle.Cell{
				Row:      r,
				Col:      c,
				IsStart:  r == 0 && c == 0,
				IsFinish: r == rows-1 && c == cols-1,
			}
		}
	}
	return grid
}
