package generator

import (
	"errors"
	"fmt"
	"testing"

	"github.com/mazekids/circuit/apps/go-server/internal/puzzle"
)

func testSettings(name string, rows, cols int, ops ...puzzle.Operation) puzzle.DifficultySettings {
	return puzzle.DifficultySettings{
		Name: name, Rows: rows, Cols: cols,
		Operations:   ops,
		AddSubRange:  puzzle.Range{Min: 1, Max: 12},
		MultDivRange: puzzle.Range{Min: 2, Max: 9},
		MaxConnector: 30,
		MaxLives:     3,
	}
}

func TestGenerateAcrossGridSizes(t *testing.T) {
	cases := []struct {
		name string
		diff puzzle.DifficultySettings
	}{
		{"3x3 add/sub", testSettings("3x3", 3, 3, puzzle.OpAdd, puzzle.OpSub)},
		{"4x4 all ops", testSettings("4x4", 4, 4, puzzle.OpAdd, puzzle.OpSub, puzzle.OpMul, puzzle.OpDiv)},
		{"5x5 mixed", testSettings("5x5", 5, 5, puzzle.OpAdd, puzzle.OpMul)},
		{"2x4 narrow", testSettings("2x4", 2, 4, puzzle.OpAdd)},
	}

	g := NewSeeded(42, 1)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := g.Generate(tc.diff)
			if err != nil {
				t.Fatalf("Generate(%s) failed: %v", tc.name, err)
			}
			verifyPuzzle(t, p, tc.diff)
		})
	}
}

// verifyPuzzle asserts every structural invariant a generated puzzle
// must satisfy.
func verifyPuzzle(t *testing.T, p *puzzle.Puzzle, d puzzle.DifficultySettings) {
	t.Helper()

	if p.Rows != d.Rows || p.Cols != d.Cols {
		t.Fatalf("grid %dx%d, want %dx%d", p.Rows, p.Cols, d.Rows, d.Cols)
	}
	if !p.Cells[0][0].IsStart || !p.Cells[p.Rows-1][p.Cols-1].IsFinish {
		t.Fatal("start/finish flags misplaced")
	}

	// Solution path shape and length window.
	path := p.Solution.Path
	minLen, maxLen := d.PathBounds()
	if p.Solution.Steps != len(path)-1 {
		t.Fatalf("steps %d != len(path)-1 %d", p.Solution.Steps, len(path)-1)
	}
	if p.Solution.Steps < minLen || p.Solution.Steps > maxLen {
		t.Fatalf("path length %d outside [%d,%d]", p.Solution.Steps, minLen, maxLen)
	}
	if path[0] != p.Start() || path[len(path)-1] != p.Finish() {
		t.Fatalf("path endpoints %v..%v", path[0], path[len(path)-1])
	}
	seen := map[puzzle.Coordinate]bool{}
	for i, c := range path {
		if seen[c] {
			t.Fatalf("path revisits %v", c)
		}
		seen[c] = true
		if i > 0 && !path[i-1].IsAdjacent(c) {
			t.Fatalf("path step %v -> %v not adjacent", path[i-1], c)
		}
	}

	// Along the path, the connector value equals the departure cell's
	// answer, and no other exit from that cell matches it.
	for i := 0; i < len(path)-1; i++ {
		from := p.CellAt(path[i])
		conn := p.ConnectorBetween(path[i], path[i+1])
		if conn == nil {
			t.Fatalf("missing solution connector %v -> %v", path[i], path[i+1])
		}
		if conn.Value != from.Answer {
			t.Fatalf("solution connector %v -> %v value %d != answer %d", path[i], path[i+1], conn.Value, from.Answer)
		}
		matches := 0
		for _, n := range p.Neighbors(path[i]) {
			if c := p.ConnectorBetween(path[i], n); c != nil && c.Value == from.Answer {
				matches++
			}
		}
		// The back-connector from the previous step never matches
		// because consecutive answers differ, so exactly one exit is
		// correct.
		if matches != 1 {
			t.Fatalf("cell %v has %d correct exits, want 1", path[i], matches)
		}
	}

	// Every adjacency-eligible pair carries exactly one connector.
	wantEdges := d.Rows*(d.Cols-1) + (d.Rows-1)*d.Cols + 2*(d.Rows-1)*(d.Cols-1)
	if len(p.Connectors) != wantEdges {
		t.Fatalf("connector count %d, want %d", len(p.Connectors), wantEdges)
	}

	// Exactly one satisfying path exists.
	if n, _ := countSatisfyingPaths(p, 2); n != 1 {
		t.Fatalf("satisfying path count = %d, want 1", n)
	}
}

func TestGenerateDeterministicWithSeed(t *testing.T) {
	d := testSettings("seeded", 4, 4, puzzle.OpAdd, puzzle.OpMul)
	a, err := NewSeeded(7, 7).Generate(d)
	if err != nil {
		t.Fatalf("first generate: %v", err)
	}
	b, err := NewSeeded(7, 7).Generate(d)
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	for r := 0; r < d.Rows; r++ {
		for c := 0; c < d.Cols; c++ {
			if a.Cells[r][c].Expression != b.Cells[r][c].Expression {
				t.Fatalf("cell (%d,%d) differs across identical seeds", r, c)
			}
		}
	}
	if len(a.Connectors) != len(b.Connectors) {
		t.Fatal("connector sets differ across identical seeds")
	}
	for i := range a.Connectors {
		if a.Connectors[i] != b.Connectors[i] {
			t.Fatalf("connector %d differs across identical seeds", i)
		}
	}
}

func TestDivisionAlwaysExact(t *testing.T) {
	d := testSettings("division", 4, 4, puzzle.OpDiv)
	p, err := NewSeeded(3, 9).Generate(d)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for r := 0; r < d.Rows; r++ {
		for c := 0; c < d.Cols; c++ {
			cell := p.Cells[r][c]
			var dividend, divisor int
			if _, err := fmt.Sscanf(cell.Expression, "%d ÷ %d", &dividend, &divisor); err != nil {
				t.Fatalf("cell (%d,%d) expression %q not a division", r, c, cell.Expression)
			}
			if divisor == 0 || dividend%divisor != 0 {
				t.Fatalf("inexact division %q", cell.Expression)
			}
			if dividend/divisor != cell.Answer {
				t.Fatalf("%q evaluates to %d, answer says %d", cell.Expression, dividend/divisor, cell.Answer)
			}
		}
	}
}

func TestGenerateRejectsInvalidSettings(t *testing.T) {
	g := NewSeeded(1, 1)
	bad := testSettings("bad", 1, 3, puzzle.OpAdd)
	if _, err := g.Generate(bad); err == nil {
		t.Fatal("expected error for 1-row grid")
	}
	noOps := testSettings("noops", 3, 3)
	if _, err := g.Generate(noOps); err == nil {
		t.Fatal("expected error for empty operation set")
	}
}

// A degenerate range that admits exactly one answer makes the
// consecutive-answers-differ constraint unsatisfiable. Generate must
// return ErrGeneration rather than rejection-sample forever.
func TestGenerateFailsClosedOnDegenerateRange(t *testing.T) {
	d := testSettings("degenerate", 3, 3, puzzle.OpAdd)
	d.AddSubRange = puzzle.Range{Min: 5, Max: 5} // every expression is "5 + 5"

	_, err := NewSeeded(1, 2).Generate(d)
	if !errors.Is(err, ErrGeneration) {
		t.Fatalf("err = %v, want ErrGeneration", err)
	}
}

func TestConsecutivePathAnswersDiffer(t *testing.T) {
	d := testSettings("consec", 5, 5, puzzle.OpAdd, puzzle.OpSub)
	p, err := NewSeeded(11, 23).Generate(d)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	path := p.Solution.Path
	for i := 0; i+2 < len(path); i++ {
		a := p.CellAt(path[i]).Answer
		b := p.CellAt(path[i+1]).Answer
		if a == b {
			t.Fatalf("consecutive path answers equal (%d) at step %d", a, i)
		}
	}
}
