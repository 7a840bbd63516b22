package engine

import (
	"context"
	"fmt"
	"time"
)

// Outcome tells how a search ended
type Outcome string

const (
	GoalFound Outcome = "goal_found"
	Exhausted Outcome = "exhausted"
)

// SearchResult summarizes one breadth-first search
type SearchResult struct {
	Moves         int           `json:"moves"`
	Outcome       Outcome       `json:"outcome"`
	Levels        int           `json:"levels"`
	StatesVisited int           `json:"states_visited"`
	Duration      time.Duration `json:"duration"`
}

// Solvable reports whether a goal state was reached
func (r *SearchResult) Solvable() bool {
	return r.Outcome == GoalFound
}

// LevelHook observes each frontier before it is goal-tested. The slice must
// not be retained or modified.
type LevelHook func(level int, frontier []RodState)

type searchOptions struct {
	start    RodState
	maxMoves int
	hook     LevelHook
}

// SearchOption configures Search
type SearchOption func(*searchOptions)

// WithStart begins the search from s instead of StartState
func WithStart(s RodState) SearchOption {
	return func(o *searchOptions) { o.start = s }
}

// WithMaxMoves stops the search with ErrMoveLimit after n levels without a goal
func WithMaxMoves(n int) SearchOption {
	return func(o *searchOptions) { o.maxMoves = n }
}

// WithLevelHook registers an observer for every frontier
func WithLevelHook(h LevelHook) SearchOption {
	return func(o *searchOptions) { o.hook = h }
}

// Solve validates rows and returns the minimum number of moves from
// StartState to a final state, or NoSolution when none exists.
func Solve(rows []string) (int, error) {
	g, err := NewGrid(rows)
	if err != nil {
		return NoSolution, err
	}
	return SolveGrid(g), nil
}

// SolveGrid runs the search from StartState on an already validated grid
func SolveGrid(g *Grid) int {
	// Background context and no move limit: Search cannot fail here.
	res, err := Search(context.Background(), g)
	if err != nil {
		return NoSolution
	}
	return res.Moves
}

// Search expands the state space level by level. The frontier at level n
// holds exactly the states first reachable in n moves, so the first level
// containing a final state gives the minimum move count.
func Search(ctx context.Context, g *Grid, opts ...SearchOption) (*SearchResult, error) {
	o := searchOptions{start: StartState}
	for _, opt := range opts {
		opt(&o)
	}

	began := time.Now()
	w, h := g.Width(), g.Height()

	result := &SearchResult{Moves: NoSolution, Outcome: Exhausted}
	finish := func() *SearchResult {
		result.Duration = time.Since(began)
		return result
	}

	frontier := []RodState{o.start}
	visited := map[RodState]struct{}{o.start: {}}
	moves := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result.Levels = moves + 1
		result.StatesVisited = len(visited)
		if o.hook != nil {
			o.hook(moves, frontier)
		}

		for _, s := range frontier {
			if s.IsFinal(w, h) {
				result.Moves = moves
				result.Outcome = GoalFound
				return finish(), nil
			}
		}

		if o.maxMoves > 0 && moves >= o.maxMoves {
			return nil, fmt.Errorf("%w: no goal within %d moves", ErrMoveLimit, o.maxMoves)
		}

		next := make([]RodState, 0, len(frontier))
		for _, s := range Expand(g, frontier) {
			if _, seen := visited[s]; seen {
				continue
			}
			visited[s] = struct{}{}
			next = append(next, s)
		}

		if len(next) == 0 {
			return finish(), nil
		}

		frontier = next
		moves++
	}
}
