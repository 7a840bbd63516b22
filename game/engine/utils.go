package engine

// CountWalls counts the wall cells in the grid
func CountWalls(g *Grid) int {
	count := 0
	for _, row := range g.rows {
		for i := 0; i < len(row); i++ {
			if row[i] == WallChar {
				count++
			}
		}
	}
	return count
}

// WallDensity returns the fraction of cells that are walls
func WallDensity(g *Grid) float64 {
	return float64(CountWalls(g)) / float64(g.width*g.height)
}

// GoalStates returns the final states of a w×h grid, horizontal first
func GoalStates(w, h int) []RodState {
	return []RodState{
		{X: w - 2, Y: h - 1, Orientation: Horizontal},
		{X: w - 1, Y: h - 2, Orientation: Vertical},
	}
}

// ReachableGoals returns the goal states the rod could physically occupy.
// An empty result means the maze is unsolvable without searching.
func ReachableGoals(g *Grid) []RodState {
	var goals []RodState
	for _, s := range GoalStates(g.width, g.height) {
		if g.Fits(s) {
			goals = append(goals, s)
		}
	}
	return goals
}

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// LowerBound is an admissible estimate of the moves left from s: the
// anchor distance to the nearest goal, plus one when that goal needs a turn.
func LowerBound(s RodState, w, h int) int {
	best := -1
	for _, goal := range GoalStates(w, h) {
		d := ManhattanDistance(Position{s.X, s.Y}, Position{goal.X, goal.Y})
		if goal.Orientation != s.Orientation {
			d++
		}
		if best == -1 || d < best {
			best = d
		}
	}
	return best
}
