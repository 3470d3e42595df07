// apps/go-server/internal/generator/unique.go
//
// Uniqueness guard. Counts simple paths from START to FINISH on which
// every step's connector value equals the departure cell's answer,
// stopping as soon as a second one turns up. When an accidental
// alternate exists, the first diverging connector on it is re-valued
// and the count re-run, up to a bounded number of repairs.

package generator

import (
	"github.com/mazekids/circuit/apps/go-server/internal/puzzle"
)

// ensureUnique verifies the puzzle has exactly one satisfying path,
// repairing stray connectors when possible. Reports false when the
// attempt should be thrown away.
func (g *Generator) ensureUnique(p *puzzle.Puzzle, d puzzle.DifficultySettings) bool {
	solutionEdges := make(map[[2]puzzle.Coordinate]bool, p.Solution.Steps)
	for i := 0; i < len(p.Solution.Path)-1; i++ {
		a, b := p.Solution.Path[i], p.Solution.Path[i+1]
		solutionEdges[edgeKey(a, b)] = true
	}

	for repair := 0; repair <= maxRepairs; repair++ {
		count, alt := countSatisfyingPaths(p, 2)
		if count == 1 {
			return true
		}
		if count == 0 || alt == nil {
			// The solution path itself always satisfies, so this is a
			// generator bug rather than bad luck; discard the attempt.
			return false
		}
		if !g.repairAlternate(p, d, alt, solutionEdges) {
			return false
		}
	}
	return false
}

// repairAlternate re-values the first connector on alt that is not a
// solution edge, breaking the second path. Reports false when every
// edge of alt belongs to the solution (cannot happen for a genuine
// alternate, kept as a guard).
func (g *Generator) repairAlternate(p *puzzle.Puzzle, d puzzle.DifficultySettings, alt []puzzle.Coordinate, solutionEdges map[[2]puzzle.Coordinate]bool) bool {
	for i := 0; i < len(alt)-1; i++ {
		a, b := alt[i], alt[i+1]
		if solutionEdges[edgeKey(a, b)] {
			continue
		}
		conn := p.ConnectorBetween(a, b)
		if conn == nil {
			return false
		}
		v, ok := g.valueAvoiding(p, d, a, b)
		if !ok {
			return false
		}
		conn.Value = v
		return true
	}
	return false
}

// valueAvoiding draws a connector value distinct from both endpoint
// answers, so the repaired edge cannot read as correct from either
// side. Bounded draws; failure discards the attempt.
func (g *Generator) valueAvoiding(p *puzzle.Puzzle, d puzzle.DifficultySettings, a, b puzzle.Coordinate) (int, bool) {
	for i := 0; i < maxValueDraws; i++ {
		v := 1 + g.rng.IntN(d.MaxConnector)
		if v == p.CellAt(a).Answer || v == p.CellAt(b).Answer {
			continue
		}
		return v, true
	}
	return 0, false
}

// countSatisfyingPaths counts simple satisfying paths from START to
// FINISH up to the given limit. When a second path is found it is
// returned so the caller can repair it.
func countSatisfyingPaths(p *puzzle.Puzzle, limit int) (int, []puzzle.Coordinate) {
	start, finish := p.Start(), p.Finish()
	visited := map[puzzle.Coordinate]bool{start: true}
	walk := []puzzle.Coordinate{start}
	count := 0
	var second []puzzle.Coordinate

	var dfs func(cur puzzle.Coordinate) bool
	dfs = func(cur puzzle.Coordinate) bool {
		if cur == finish {
			count++
			if count == 2 {
				second = append([]puzzle.Coordinate(nil), walk...)
			}
			return count >= limit
		}
		answer := p.CellAt(cur).Answer
		for _, n := range p.Neighbors(cur) {
			if visited[n] {
				continue
			}
			conn := p.ConnectorBetween(cur, n)
			if conn == nil || conn.Value != answer {
				continue
			}
			visited[n] = true
			walk = append(walk, n)
			if dfs(n) {
				return true
			}
			walk = walk[:len(walk)-1]
			visited[n] = false
		}
		return false
	}
	dfs(start)
	return count, second
}

// edgeKey normalizes an unordered coordinate pair for map use.
func edgeKey(a, b puzzle.Coordinate) [2]puzzle.Coordinate {
	if b.Row < a.Row || (b.Row == a.Row && b.Col < a.Col) {
		a, b = b, a
	}
	return [2]puzzle.Coordinate{a, b}
}
