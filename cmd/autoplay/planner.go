package main

import (
	"context"

	"github.com/wricardo/mcp-training/rodmaze/game/engine"
)

// Planner picks each move along a shortest route to the corner. The
// search only yields move counts, so it steps to any neighbour whose
// distance is one less than the current one.
type Planner struct {
	grid      *engine.Grid
	remaining map[engine.RodState]int
}

func NewPlanner(layout []string) (*Planner, error) {
	grid, err := engine.NewGrid(layout)
	if err != nil {
		return nil, err
	}
	return &Planner{
		grid:      grid,
		remaining: make(map[engine.RodState]int),
	}, nil
}

// Remaining returns the minimum moves from s to a final state, or
// engine.NoSolution
func (p *Planner) Remaining(ctx context.Context, s engine.RodState) (int, error) {
	if n, ok := p.remaining[s]; ok {
		return n, nil
	}

	res, err := engine.Search(ctx, p.grid, engine.WithStart(s))
	if err != nil {
		return engine.NoSolution, err
	}
	p.remaining[s] = res.Moves
	return res.Moves, nil
}

// NextMove returns the first legal action that shortens the route. ok is
// false when s is final or the corner cannot be reached from s.
func (p *Planner) NextMove(ctx context.Context, s engine.RodState) (action engine.Action, ok bool, err error) {
	current, err := p.Remaining(ctx, s)
	if err != nil || current <= 0 {
		return 0, false, err
	}

	for _, a := range engine.LegalMoves(p.grid, s) {
		n, err := p.Remaining(ctx, engine.NextState(s, a))
		if err != nil {
			return 0, false, err
		}
		if n == current-1 {
			return a, true, nil
		}
	}
	return 0, false, nil
}
