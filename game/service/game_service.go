package service

import (
	"context"
	"time"

	"github.com/wricardo/mcp-training/rodmaze/game/engine"
)

// MazeService defines all maze operations shared by the transports
type MazeService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Play
	Move(ctx context.Context, sessionID, action string, reset bool) (*MoveResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Solving
	Solve(ctx context.Context, configName string) (*SolveReport, error)
	SolveLayout(ctx context.Context, layout []string) (*SolveReport, error)

	// Catalog
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.MazeConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.MazeConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.MazeConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.MazeConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles maze catalog loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.MazeConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.MazeConfig
	SaveConfig(name string, config *engine.MazeConfig) error
}

// Session represents an active play session
type Session struct {
	ID             string
	Engine         *engine.RodEngine
	Config         *engine.MazeConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
