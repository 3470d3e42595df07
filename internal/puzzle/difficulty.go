// apps/go-server/internal/puzzle/difficulty.go
//
// Difficulty configuration for puzzle generation.
// Defines:
//   - Operation: the arithmetic operation families.
//   - Range: inclusive operand bounds.
//   - DifficultySettings: the full knob set a generator consumes.
//
// Path length bounds are derived from grid dimensions when not set
// explicitly: long enough to span the grid, well short of a full
// Hamiltonian traversal.

package puzzle

import (
	"errors"
	"fmt"
)

// Operation is an arithmetic operation family.
type Operation string

const (
	OpAdd Operation = "add"
	OpSub Operation = "sub"
	OpMul Operation = "mult"
	OpDiv Operation = "div"
)

// Range is an inclusive [Min, Max] operand bound.
type Range struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Span returns the number of integers in the range.
func (r Range) Span() int { return r.Max - r.Min + 1 }

// DifficultySettings configures one puzzle tier. Zero MinPathLength /
// MaxPathLength mean "derive from grid dimensions".
type DifficultySettings struct {
	Name           string            `json:"name" yaml:"name"`
	Rows           int               `json:"rows" yaml:"rows"`
	Cols           int               `json:"cols" yaml:"cols"`
	Operations     []Operation       `json:"operations" yaml:"operations"`
	Weights        map[Operation]int `json:"weights,omitempty" yaml:"weights,omitempty"`
	AddSubRange    Range             `json:"addSubRange" yaml:"addSubRange"`
	MultDivRange   Range             `json:"multDivRange" yaml:"multDivRange"`
	MaxConnector   int               `json:"maxConnectorValue" yaml:"maxConnectorValue"`
	MinPathLength  int               `json:"minPathLength,omitempty" yaml:"minPathLength,omitempty"`
	MaxPathLength  int               `json:"maxPathLength,omitempty" yaml:"maxPathLength,omitempty"`
	MaxLives       int               `json:"maxLives" yaml:"maxLives"`
	HiddenMode     bool              `json:"hiddenMode" yaml:"hiddenMode"`
	SecondsPerStep int               `json:"secondsPerStep" yaml:"secondsPerStep"`
}

// PathBounds returns the effective [min, max] solution path length in
// moves. Defaults derive from the grid: min spans the grid
// (rows+cols-1 moves), max stops at two thirds of the cell count so a
// path never approaches a full traversal.
func (d DifficultySettings) PathBounds() (int, int) {
	min := d.MinPathLength
	if min <= 0 {
		min = d.Rows + d.Cols - 1
	}
	max := d.MaxPathLength
	if max <= 0 {
		max = (d.Rows*d.Cols*2 + 2) / 3
	}
	if max < min {
		max = min
	}
	return min, max
}

// ParSeconds returns the display-only par time for a solution of the
// given step count.
func (d DifficultySettings) ParSeconds(steps int) int {
	if d.SecondsPerStep <= 0 {
		return 0
	}
	return d.SecondsPerStep * steps
}

// WeightFor returns the selection weight for op, defaulting to 1 when
// no explicit weight is configured.
func (d DifficultySettings) WeightFor(op Operation) int {
	if w, ok := d.Weights[op]; ok && w > 0 {
		return w
	}
	return 1
}

// Validate rejects settings a generator cannot satisfy.
func (d DifficultySettings) Validate() error {
	if d.Name == "" {
		return errors.New("difficulty: name required")
	}
	if d.Rows < 2 || d.Cols < 2 {
		return fmt.Errorf("difficulty %q: grid must be at least 2x2", d.Name)
	}
	if d.Rows > 12 || d.Cols > 12 {
		return fmt.Errorf("difficulty %q: grid too large", d.Name)
	}
	if len(d.Operations) == 0 {
		return fmt.Errorf("difficulty %q: at least one operation required", d.Name)
	}
	for _, op := range d.Operations {
		switch op {
		case OpAdd, OpSub, OpMul, OpDiv:
		default:
			return fmt.Errorf("difficulty %q: unknown operation %q", d.Name, op)
		}
	}
	if d.AddSubRange.Min < 0 || d.AddSubRange.Max < d.AddSubRange.Min {
		return fmt.Errorf("difficulty %q: bad addSubRange", d.Name)
	}
	if d.MultDivRange.Min < 1 || d.MultDivRange.Max < d.MultDivRange.Min {
		return fmt.Errorf("difficulty %q: bad multDivRange", d.Name)
	}
	if d.MaxConnector < 2 {
		return fmt.Errorf("difficulty %q: maxConnectorValue must be >= 2", d.Name)
	}
	if !d.HiddenMode && d.MaxLives < 1 {
		return fmt.Errorf("difficulty %q: maxLives must be >= 1", d.Name)
	}
	min, _ := d.PathBounds()
	if min > d.Rows*d.Cols-1 {
		return fmt.Errorf("difficulty %q: minPathLength %d exceeds grid capacity", d.Name, min)
	}
	return nil
}
