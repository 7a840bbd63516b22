package engine

import (
	"context"
	"fmt"
	"time"
)

// Engine provides the main interface for interactive rod play
type Engine interface {
	// State management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	IsSolved() bool
	GetRod() RodState

	// Movement operations
	Move(action Action) bool
	CanMove(action Action) bool
	GetPossibleMoves() []Action
	MovesRemaining(ctx context.Context) (int, error)

	// Configuration
	GetConfig() *MazeConfig
	GetGrid() *Grid

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// RodEngine implements the Engine interface
type RodEngine struct {
	state  *GameState
	config *MazeConfig
	grid   *Grid
}

// NewEngine creates a new rod engine for the provided maze
func NewEngine(config *MazeConfig) (*RodEngine, error) {
	if err := ValidateMazeConfig(config); err != nil {
		return nil, err
	}

	grid, err := NewGrid(config.Layout)
	if err != nil {
		return nil, err
	}

	return &RodEngine{
		config: config,
		grid:   grid,
		state:  newGameState(config, grid),
	}, nil
}

// NewEngineWithDefaults creates a rod engine on the built-in maze
func NewEngineWithDefaults() *RodEngine {
	eng, err := NewEngine(DefaultMazeConfig())
	if err != nil {
		panic(fmt.Sprintf("engine: default maze is invalid: %v", err))
	}
	return eng
}

func newGameState(config *MazeConfig, grid *Grid) *GameState {
	state := &GameState{
		Layout:      grid.Rows(),
		Width:       grid.Width(),
		Height:      grid.Height(),
		ConfigName:  config.Name,
		MoveHistory: []MoveHistoryEntry{},
	}
	state.placeRod(StartState, grid)

	switch {
	case !grid.Fits(StartState):
		state.Message = "The start position is blocked, this maze cannot be played"
	case state.Solved:
		state.Message = "Already in the corner. Nothing to do!"
	default:
		state.Message = fmt.Sprintf("Move the rod to the bottom-right corner of the %dx%d maze", grid.Width(), grid.Height())
	}
	return state
}

// placeRod moves the rod and refreshes the derived fields
func (gs *GameState) placeRod(s RodState, grid *Grid) {
	gs.Rod = s
	cells := s.Cells()
	gs.RodCells = cells[:]
	gs.Solved = s.IsFinal(grid.Width(), grid.Height())
}

// GetState returns the current game state
func (e *RodEngine) GetState() *GameState {
	return e.state
}

// SetState sets the game state (used for persistence loading)
func (e *RodEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if !e.grid.Fits(state.Rod) && state.Rod != StartState {
		return fmt.Errorf("rod %s does not fit the maze", state.Rod)
	}
	state.Layout = e.grid.Rows()
	state.Width = e.grid.Width()
	state.Height = e.grid.Height()
	state.placeRod(state.Rod, e.grid)
	if state.MoveHistory == nil {
		state.MoveHistory = []MoveHistoryEntry{}
	}
	e.state = state
	return nil
}

// Reset puts the rod back at the start, keeping the cumulative history
func (e *RodEngine) Reset() *GameState {
	prevHistory := e.state.MoveHistory
	prevTotal := e.state.TotalMoves

	e.state = newGameState(e.config, e.grid)

	e.state.MoveHistory = prevHistory
	e.state.TotalMoves = prevTotal

	return e.state
}

// IsSolved returns whether the rod has reached the corner
func (e *RodEngine) IsSolved() bool {
	return e.state.Solved
}

// GetRod returns the current rod state
func (e *RodEngine) GetRod() RodState {
	return e.state.Rod
}

// Move attempts to apply the action. Illegal actions leave the rod where it
// is and are still recorded in the history.
func (e *RodEngine) Move(action Action) bool {
	from := e.state.Rod
	success := e.CanMove(action)

	switch {
	case e.state.Solved:
		e.state.Message = "The maze is already solved. Reset to play again"
	case !success:
		e.state.Message = fmt.Sprintf("Can't %s from %s", action.Name(), from)
	default:
		e.state.placeRod(NextState(from, action), e.grid)
		e.state.Moves++
		if e.state.Solved {
			e.state.Message = fmt.Sprintf("Solved in %d moves!", e.state.Moves)
		} else {
			e.state.Message = fmt.Sprintf("Moved %s to %s", action.Name(), e.state.Rod)
		}
	}

	e.state.addMoveToHistory(action, from, e.state.Rod, success)
	return success
}

// CanMove checks if the rod can take the action right now
func (e *RodEngine) CanMove(action Action) bool {
	if e.state.Solved || !e.grid.Fits(e.state.Rod) {
		return false
	}
	return CanMove(e.grid, e.state.Rod, action)
}

// GetPossibleMoves returns all legal actions from the current position
func (e *RodEngine) GetPossibleMoves() []Action {
	if e.state.Solved || !e.grid.Fits(e.state.Rod) {
		return []Action{}
	}
	return LegalMoves(e.grid, e.state.Rod)
}

// MovesRemaining returns the shortest distance from the current rod to a
// goal, or NoSolution if the corner is no longer reachable. A rod placed over
// a wall cannot be played, so it has no distance.
func (e *RodEngine) MovesRemaining(ctx context.Context) (int, error) {
	return MovesRemainingFrom(ctx, e.grid, e.state)
}

// MovesRemainingFrom is MovesRemaining for a state detached from its engine.
// A rod that overlaps a wall cannot be played and reports NoSolution.
func MovesRemainingFrom(ctx context.Context, g *Grid, state *GameState) (int, error) {
	if !state.Solved && !g.Fits(state.Rod) {
		return NoSolution, nil
	}
	res, err := Search(ctx, g, WithStart(state.Rod))
	if err != nil {
		return NoSolution, err
	}
	return res.Moves, nil
}

// GetConfig returns the maze configuration
func (e *RodEngine) GetConfig() *MazeConfig {
	return e.config
}

// GetGrid returns the validated maze grid
func (e *RodEngine) GetGrid() *Grid {
	return e.grid
}

// GetMoveHistory returns the complete move history
func (e *RodEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.state.MoveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *RodEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}

// addMoveToHistory records an attempted action
func (gs *GameState) addMoveToHistory(action Action, from, to RodState, success bool) {
	gs.MoveHistory = append(gs.MoveHistory, MoveHistoryEntry{
		Action:     action.String(),
		From:       from,
		To:         to,
		Timestamp:  time.Now().Unix(),
		Success:    success,
		MoveNumber: gs.TotalMoves + 1,
	})
	gs.TotalMoves++
}
