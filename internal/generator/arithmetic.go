// apps/go-server/internal/generator/arithmetic.go
//
// Arithmetic prompt generation. Operations are picked by weighted
// random among the difficulty's enabled set; operands come from the
// per-family ranges (add/sub share one range, mult/div the other).
// Division is built as answer × divisor so the quotient is always an
// exact integer, and subtraction never goes below 1.

package generator

import (
	"fmt"

	"github.com/mazekids/circuit/apps/go-server/internal/puzzle"
)

// expression produces one prompt and its evaluated answer.
func (g *Generator) expression(d puzzle.DifficultySettings) (string, int) {
	switch g.pickOperation(d) {
	case puzzle.OpAdd:
		a := g.inRange(d.AddSubRange)
		b := g.inRange(d.AddSubRange)
		return fmt.Sprintf("%d + %d", a, b), a + b
	case puzzle.OpSub:
		a := g.inRange(d.AddSubRange)
		b := g.inRange(d.AddSubRange)
		if a < b {
			a, b = b, a
		}
		if a == b {
			a++ // keep answers positive so they can label a connector
		}
		return fmt.Sprintf("%d - %d", a, b), a - b
	case puzzle.OpMul:
		a := g.inRange(d.MultDivRange)
		b := g.inRange(d.MultDivRange)
		return fmt.Sprintf("%d × %d", a, b), a * b
	default: // OpDiv
		quotient := g.inRange(d.MultDivRange)
		divisor := g.inRange(d.MultDivRange)
		return fmt.Sprintf("%d ÷ %d", quotient*divisor, divisor), quotient
	}
}

// expressionAvoiding draws expressions until the answer differs from
// avoid. Used along the solution path so consecutive cells never share
// an answer. avoid < 0 disables the check. Reports false when the
// draw budget runs out (degenerate ranges admit only one answer), so
// the caller fails the attempt instead of spinning.
func (g *Generator) expressionAvoiding(d puzzle.DifficultySettings, avoid int) (string, int, bool) {
	for i := 0; i < maxValueDraws; i++ {
		expr, answer := g.expression(d)
		if answer != avoid {
			return expr, answer, true
		}
	}
	return "", 0, false
}

// pickOperation selects an enabled operation by configured weight.
func (g *Generator) pickOperation(d puzzle.DifficultySettings) puzzle.Operation {
	total := 0
	for _, op := range d.Operations {
		total += d.WeightFor(op)
	}
	n := g.rng.IntN(total)
	for _, op := range d.Operations {
		n -= d.WeightFor(op)
		if n < 0 {
			return op
		}
	}
	return d.Operations[len(d.Operations)-1]
}

// inRange draws uniformly from the inclusive range.
func (g *Generator) inRange(r puzzle.Range) int {
	return r.Min + g.rng.IntN(r.Span())
}
