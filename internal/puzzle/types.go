// apps/go-server/internal/puzzle/types.go
//
// Core type definitions for Circuit Challenge puzzles.
// Defines:
//   - Coordinate: a {row, col} grid position with value equality.
//   - Cell: one grid position with its arithmetic prompt and answer.
//   - Connector: a labeled edge between two grid-adjacent cells.
//   - Puzzle: an immutable generated puzzle with its certified solution.
//
// A puzzle is a rows×cols grid. START is always (0,0) and FINISH is
// always (rows-1, cols-1). Cells are joined by connectors in the full
// 8-neighborhood (horizontal, vertical, and diagonal). Traversing a
// connector is "correct" iff its value equals the departure cell's
// answer.

package puzzle

// Coordinate identifies a cell by grid position. Compared by value.
type Coordinate struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// IsAdjacent reports whether b is within the 8-neighborhood of a.
// Symmetric: IsAdjacent(a, b) == IsAdjacent(b, a).
func (a Coordinate) IsAdjacent(b Coordinate) bool {
	dr := absInt(a.Row - b.Row)
	dc := absInt(a.Col - b.Col)
	return dr <= 1 && dc <= 1 && !(dr == 0 && dc == 0)
}

// Cell holds one grid position. Every cell carries an expression and
// its evaluated answer — START included, since it must direct the
// player onward.
type Cell struct {
	Row        int    `json:"row"`
	Col        int    `json:"col"`
	Expression string `json:"expression"` // human-readable prompt, e.g. "7 + 5"
	Answer     int    `json:"answer"`
	IsStart    bool   `json:"isStart"`
	IsFinish   bool   `json:"isFinish"`
}

// Coord returns the cell's position.
func (c *Cell) Coord() Coordinate { return Coordinate{Row: c.Row, Col: c.Col} }

// ConnectorType classifies the geometric orientation of a connector.
type ConnectorType string

const (
	ConnHorizontal ConnectorType = "horizontal"
	ConnVertical   ConnectorType = "vertical"
	ConnDiagonal   ConnectorType = "diagonal"
)

// DiagonalDirection disambiguates the two diagonal orientations.
// "down-right" runs NW→SE, "down-left" runs NE→SW.
type DiagonalDirection string

const (
	DiagDownRight DiagonalDirection = "down-right"
	DiagDownLeft  DiagonalDirection = "down-left"
	DiagNone      DiagonalDirection = ""
)

// Connector is an edge between two grid-adjacent cells. The (A, B)
// pair is unordered: lookups treat (A,B) and (B,A) identically.
type Connector struct {
	A         Coordinate        `json:"cellA"`
	B         Coordinate        `json:"cellB"`
	Type      ConnectorType     `json:"type"`
	Direction DiagonalDirection `json:"direction,omitempty"`
	Value     int               `json:"value"`
}

// Joins reports whether this connector links a and b, in either order.
func (c *Connector) Joins(a, b Coordinate) bool {
	return (c.A == a && c.B == b) || (c.A == b && c.B == a)
}

// ClassifyEdge derives the connector type and diagonal direction for
// an edge between two adjacent coordinates.
func ClassifyEdge(a, b Coordinate) (ConnectorType, DiagonalDirection) {
	dr := b.Row - a.Row
	dc := b.Col - a.Col
	switch {
	case dr == 0:
		return ConnHorizontal, DiagNone
	case dc == 0:
		return ConnVertical, DiagNone
	case dr == dc:
		return ConnDiagonal, DiagDownRight
	default:
		return ConnDiagonal, DiagDownLeft
	}
}

// Solution is the generator-certified path from START to FINISH.
type Solution struct {
	Path  []Coordinate `json:"path"`
	Steps int          `json:"steps"` // number of moves, = len(Path)-1
}

// Puzzle is immutable once generated. Cells is row-major
// (Cells[row][col]); Connectors covers every adjacency-eligible pair
// in the grid exactly once.
type Puzzle struct {
	ID         string      `json:"id"`
	Difficulty string      `json:"difficulty"`
	Rows       int         `json:"rows"`
	Cols       int         `json:"cols"`
	Cells      [][]Cell    `json:"cells"`
	Connectors []Connector `json:"connectors"`
	Solution   Solution    `json:"solution"`
}

// Start returns the START coordinate, always (0,0).
func (p *Puzzle) Start() Coordinate { return Coordinate{Row: 0, Col: 0} }

// Finish returns the FINISH coordinate, always (rows-1, cols-1).
func (p *Puzzle) Finish() Coordinate { return Coordinate{Row: p.Rows - 1, Col: p.Cols - 1} }

// InBounds reports whether c lies on the grid.
func (p *Puzzle) InBounds(c Coordinate) bool {
	return c.Row >= 0 && c.Row < p.Rows && c.Col >= 0 && c.Col < p.Cols
}

// CellAt returns the cell at c, or nil when out of bounds.
func (p *Puzzle) CellAt(c Coordinate) *Cell {
	if !p.InBounds(c) {
		return nil
	}
	return &p.Cells[c.Row][c.Col]
}

// ConnectorBetween returns the connector joining a and b, argument
// order irrelevant, or nil when the cells are not adjacent or no
// connector exists.
func (p *Puzzle) ConnectorBetween(a, b Coordinate) *Connector {
	if !a.IsAdjacent(b) {
		return nil
	}
	for i := range p.Connectors {
		if p.Connectors[i].Joins(a, b) {
			return &p.Connectors[i]
		}
	}
	return nil
}

// Neighbors returns all in-bounds coordinates in the 8-neighborhood
// of c, in row-major scan order.
func (p *Puzzle) Neighbors(c Coordinate) []Coordinate {
	out := make([]Coordinate, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			n := Coordinate{Row: c.Row + dr, Col: c.Col + dc}
			if p.InBounds(n) {
				out = append(out, n)
			}
		}
	}
	return out
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
