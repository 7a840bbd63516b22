package engine

// LegalMoves returns every action the rod can take from s, in W, E, N, S, R order.
//
// A horizontal rod slides along its axis by checking the single cell beyond
// its far end, and sideways by checking the three-cell strip it sweeps into.
// A vertical rod is the same turned 90 degrees. Rotation needs the whole 3x3
// window around the anchor clear and inside the grid.
func LegalMoves(g *Grid, s RodState) []Action {
	w, h := g.Width(), g.Height()
	x, y := s.X, s.Y

	moves := make([]Action, 0, len(Actions))

	if s.Orientation == Horizontal {
		if x > 1 && g.IsOpen(x-2, y) {
			moves = append(moves, West)
		}
		if x < w-2 && g.IsOpen(x+2, y) {
			moves = append(moves, East)
		}
		if y > 0 && g.IsOpen(x, y-1) && g.IsOpen(x-1, y-1) && g.IsOpen(x+1, y-1) {
			moves = append(moves, North)
		}
		if y < h-1 && g.IsOpen(x, y+1) && g.IsOpen(x-1, y+1) && g.IsOpen(x+1, y+1) {
			moves = append(moves, South)
		}
	} else {
		if x > 0 && g.IsOpen(x-1, y) && g.IsOpen(x-1, y-1) && g.IsOpen(x-1, y+1) {
			moves = append(moves, West)
		}
		if x < w-1 && g.IsOpen(x+1, y) && g.IsOpen(x+1, y-1) && g.IsOpen(x+1, y+1) {
			moves = append(moves, East)
		}
		if y > 1 && g.IsOpen(x, y-2) {
			moves = append(moves, North)
		}
		if y < h-2 && g.IsOpen(x, y+2) {
			moves = append(moves, South)
		}
	}

	if canRotate(g, x, y) {
		moves = append(moves, Rotate)
	}

	return moves
}

// canRotate checks the eight neighbours of (x, y); the anchor itself is
// already occupied by the rod.
func canRotate(g *Grid, x, y int) bool {
	if x <= 0 || x >= g.Width()-1 || y <= 0 || y >= g.Height()-1 {
		return false
	}

	neighbours := []struct{ dx, dy int }{
		{0, -1},  // North
		{1, -1},  // North-East
		{1, 0},   // East
		{1, 1},   // South-East
		{0, 1},   // South
		{-1, 1},  // South-West
		{-1, 0},  // West
		{-1, -1}, // North-West
	}
	for _, n := range neighbours {
		if !g.IsOpen(x+n.dx, y+n.dy) {
			return false
		}
	}
	return true
}

// CanMove checks whether a single action is legal from s
func CanMove(g *Grid, s RodState, a Action) bool {
	for _, m := range LegalMoves(g, s) {
		if m == a {
			return true
		}
	}
	return false
}

// NextState applies a to s. It does not check legality.
func NextState(s RodState, a Action) RodState {
	switch a {
	case West:
		s.X--
	case East:
		s.X++
	case North:
		s.Y--
	case South:
		s.Y++
	case Rotate:
		s.Orientation = s.Orientation.Flip()
	}
	return s
}

// Expand returns every state one legal action away from any of states.
// Duplicates reached from different sources are kept.
func Expand(g *Grid, states []RodState) []RodState {
	next := make([]RodState, 0, len(states)*2)
	for _, s := range states {
		for _, a := range LegalMoves(g, s) {
			next = append(next, NextState(s, a))
		}
	}
	return next
}
