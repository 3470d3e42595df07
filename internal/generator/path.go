// apps/go-server/internal/generator/path.go
//
// Solution path carving: a randomized self-avoiding walk over the
// 8-neighborhood from START to FINISH, backtracking when it corners
// itself, bounded by the difficulty's path length window.

package generator

import (
	"github.com/mazekids/circuit/apps/go-server/internal/puzzle"
)

// carvePath returns a simple path from (0,0) to (rows-1, cols-1) with
// a move count in [minLen, maxLen], or nil when the randomized search
// gives up. len(path) == moves+1.
func (g *Generator) carvePath(rows, cols, minLen, maxLen int) []puzzle.Coordinate {
	start := puzzle.Coordinate{Row: 0, Col: 0}
	finish := puzzle.Coordinate{Row: rows - 1, Col: cols - 1}

	visited := make(map[puzzle.Coordinate]bool, rows*cols)
	visited[start] = true
	path := []puzzle.Coordinate{start}

	var walk func() bool
	walk = func() bool {
		cur := path[len(path)-1]
		moves := len(path) - 1
		if cur == finish {
			return moves >= minLen && moves <= maxLen
		}
		if moves >= maxLen {
			return false
		}
		// Chebyshev distance is the minimum moves still needed; prune
		// branches that can no longer reach FINISH inside the window.
		if moves+chebyshev(cur, finish) > maxLen {
			return false
		}

		for _, n := range g.shuffledNeighbors(cur, rows, cols) {
			if visited[n] {
				continue
			}
			// Arriving at FINISH too early wastes the branch.
			if n == finish && moves+1 < minLen {
				continue
			}
			visited[n] = true
			path = append(path, n)
			if walk() {
				return true
			}
			path = path[:len(path)-1]
			visited[n] = false
		}
		return false
	}

	if !walk() {
		return nil
	}
	return path
}

// shuffledNeighbors returns the in-bounds 8-neighborhood of c in
// random order.
func (g *Generator) shuffledNeighbors(c puzzle.Coordinate, rows, cols int) []puzzle.Coordinate {
	out := make([]puzzle.Coordinate, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			n := puzzle.Coordinate{Row: c.Row + dr, Col: c.Col + dc}
			if n.Row >= 0 && n.Row < rows && n.Col >= 0 && n.Col < cols {
				out = append(out, n)
			}
		}
	}
	g.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// chebyshev is the move distance between two cells when diagonals
// count as a single move.
func chebyshev(a, b puzzle.Coordinate) int {
	dr := a.Row - b.Row
	if dr < 0 {
		dr = -dr
	}
	dc := a.Col - b.Col
	if dc < 0 {
		dc = -dc
	}
	if dr > dc {
		return dr
	}
	return dc
}
