package service

import (
	"time"

	"github.com/wricardo/mcp-training/rodmaze/game/engine"
)

// SessionInfo provides information about a play session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	MazeConfig     *engine.MazeConfig `json:"maze_config"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success   bool              `json:"success"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Action    engine.Action     `json:"action"`
	From      engine.RodState   `json:"from"`
	To        engine.RodState   `json:"to"`
	Events    []GameEvent       `json:"events,omitempty"`

	// Decision aids for the next move
	PossibleMoves  []engine.Action `json:"possible_moves"`
	MovesRemaining int             `json:"moves_remaining"`
}

// GameEvent represents something that happened during play
type GameEvent struct {
	Type      string           `json:"type"` // "move", "blocked", "solved", "reset"
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Rod       *engine.RodState `json:"rod,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo describes one maze in the catalog
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Difficulty  string `json:"difficulty,omitempty"`
}

// SolveReport is the outcome of solving one maze from the fixed start
type SolveReport struct {
	ConfigID      string `json:"config_id,omitempty"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Moves         int    `json:"moves"` // -1 when the corner cannot be reached
	Solvable      bool   `json:"solvable"`
	StatesVisited int    `json:"states_visited"`
	Levels        int    `json:"levels"`
	Cached        bool   `json:"cached"`
	DurationMS    int64  `json:"duration_ms"`
}
