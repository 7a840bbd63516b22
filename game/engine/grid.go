package engine

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyGrid     = errors.New("grid is empty")
	ErrRaggedGrid    = errors.New("grid is not rectangular")
	ErrGridTooSmall  = errors.New("grid is too small")
	ErrGridTooLarge  = errors.New("grid is too large")
	ErrUnknownAction = errors.New("unknown action")
	ErrMoveLimit     = errors.New("move limit reached")
)

// Grid is a validated, read-only maze
type Grid struct {
	rows   []string
	width  int
	height int
}

// ValidateLayout checks that rows form a non-empty rectangle large enough to
// hold the rod at its start position.
func ValidateLayout(rows []string) error {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return ErrEmptyGrid
	}

	width := len(rows[0])
	for i, row := range rows {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has %d cells, expected %d", ErrRaggedGrid, i+1, len(row), width)
		}
	}

	if width < MinGridWidth || len(rows) < MinGridHeight {
		return fmt.Errorf("%w: %dx%d, need at least %dx%d", ErrGridTooSmall, width, len(rows), MinGridWidth, MinGridHeight)
	}
	if width > MaxGridSize || len(rows) > MaxGridSize {
		return fmt.Errorf("%w: %dx%d, limit is %d per side", ErrGridTooLarge, width, len(rows), MaxGridSize)
	}

	return nil
}

// NewGrid validates rows and wraps them in a Grid
func NewGrid(rows []string) (*Grid, error) {
	if err := ValidateLayout(rows); err != nil {
		return nil, err
	}

	copied := make([]string, len(rows))
	copy(copied, rows)

	return &Grid{
		rows:   copied,
		width:  len(copied[0]),
		height: len(copied),
	}, nil
}

// MustGrid is NewGrid for fixtures known to be valid
func MustGrid(rows ...string) *Grid {
	g, err := NewGrid(rows)
	if err != nil {
		panic(err)
	}
	return g
}

// Width returns the number of columns
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows
func (g *Grid) Height() int { return g.height }

// Rows returns a copy of the layout rows
func (g *Grid) Rows() []string {
	rows := make([]string, len(g.rows))
	copy(rows, g.rows)
	return rows
}

// InBounds reports whether (x, y) lies on the grid
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// IsOpen reports whether (x, y) is not a wall. Move generation checks bounds
// before asking; anything off the grid counts as closed.
func (g *Grid) IsOpen(x, y int) bool {
	if !g.InBounds(x, y) {
		return false
	}
	return g.rows[y][x] != WallChar
}

// Fits reports whether every cell covered by the rod is on the grid and open
func (g *Grid) Fits(s RodState) bool {
	for _, c := range s.Cells() {
		if !g.IsOpen(c.X, c.Y) {
			return false
		}
	}
	return true
}
