package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/wricardo/mcp-training/rodmaze/game/cache"
	"github.com/wricardo/mcp-training/rodmaze/game/engine"
)

// DefaultSolveTTL is how long solve results stay cached when no TTL is given
const DefaultSolveTTL = 24 * time.Hour

// mazeServiceImpl implements the MazeService interface
type mazeServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	cache    cache.Cache
	cacheTTL time.Duration
	mu       sync.RWMutex
}

// Option configures the service
type Option func(*mazeServiceImpl)

// WithCache stores solve reports in c for ttl
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *mazeServiceImpl) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// NewMazeService creates a new maze service instance
func NewMazeService(sessions SessionManager, configs ConfigManager, opts ...Option) MazeService {
	s := &mazeServiceImpl{
		sessions: sessions,
		configs:  configs,
		cache:    cache.NewNullCache(),
		cacheTTL: DefaultSolveTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a display name, used for consistent API responses
func (s *mazeServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// loadConfig resolves a config id, falling back to the catalog default
func (s *mazeServiceImpl) loadConfig(configName string) (*engine.MazeConfig, error) {
	if configName == "" {
		return s.configs.GetDefault(), nil
	}

	config, err := s.configs.LoadConfig(configName)
	if err == nil {
		return config, nil
	}
	if !errors.Is(err, ErrConfigNotFound) {
		return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
	}

	// Name the alternatives to help the caller
	availableConfigs, listErr := s.configs.ListConfigs()
	if listErr == nil && len(availableConfigs) > 0 {
		var configIDs []string
		for _, cfg := range availableConfigs {
			configIDs = append(configIDs, cfg.ConfigID)
		}
		return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
	}
	return nil, fmt.Errorf("%w: '%s'. Use /api/mazes to list available mazes", ErrConfigNotFound, configName)
}

func (s *mazeServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState().Clone(),
		MazeConfig:     sess.Config,
	}
}

func (s *mazeServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, err
	}
	return sess, nil
}

// persist saves the session; failures are logged, not returned
func (s *mazeServiceImpl) persist(sessionID, after string) {
	if err := s.sessions.Save(sessionID); err != nil {
		log.Warn("Failed to persist session", "session", sessionID, "after", after, "err", err)
	}
}

// CreateSession creates a new play session
func (s *mazeServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	config, err := s.loadConfig(configName)
	if err != nil {
		return nil, err
	}

	// Let the session manager generate a 4-character ID
	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	log.Info("Session created", "session", sess.ID, "maze", configID)
	return s.sessionInfo(sess, configID), nil
}

// GetSession retrieves session information. It touches LastAccessedAt, so it
// takes the write lock.
func (s *mazeServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return s.sessionInfo(sess, s.getConfigID(sess.Config.Name)), nil
}

// ListSessions returns all active sessions
func (s *mazeServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, s.getConfigID(sess.Config.Name)))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *mazeServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return err
	}
	return nil
}

// Move applies one action to the rod of a session. The distance to the goal
// is searched from a snapshot after the session lock is released.
func (s *mazeServiceImpl) Move(ctx context.Context, sessionID, action string, reset bool) (*MoveResult, error) {
	act, err := engine.ParseAction(action)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAction, err)
	}

	result, grid, err := s.applyMove(sessionID, act, reset)
	if err != nil {
		return nil, err
	}

	remaining, err := engine.MovesRemainingFrom(ctx, grid, result.GameState)
	if err != nil {
		return nil, err
	}
	result.MovesRemaining = remaining

	log.Debug("Move", "session", sessionID, "action", act, "from", result.From, "to", result.To, "ok", result.Success, "remaining", remaining)
	return result, nil
}

// applyMove mutates and persists the session under the lock and returns a
// detached result along with the grid it was played on
func (s *mazeServiceImpl) applyMove(sessionID string, act engine.Action, reset bool) (*MoveResult, *engine.Grid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)

	events := []GameEvent{}
	if reset {
		sess.Engine.Reset()
		events = append(events, GameEvent{
			Type:      "reset",
			Message:   "Rod returned to the start",
			Timestamp: time.Now(),
		})
	}

	from := sess.Engine.GetRod()
	success := sess.Engine.Move(act)
	state := sess.Engine.GetState().Clone()

	result := &MoveResult{
		Success:       success,
		GameState:     state,
		Message:       state.Message,
		Action:        act,
		From:          from,
		To:            state.Rod,
		Events:        append(events, moveEvents(act, success, state)...),
		PossibleMoves: sess.Engine.GetPossibleMoves(),
	}

	s.persist(sessionID, "move")
	return result, sess.Engine.GetGrid(), nil
}

func moveEvents(act engine.Action, success bool, state *engine.GameState) []GameEvent {
	now := time.Now()
	rod := state.Rod

	if !success {
		return []GameEvent{{Type: "blocked", Message: state.Message, Timestamp: now, Rod: &rod}}
	}

	events := []GameEvent{{
		Type:      "move",
		Message:   fmt.Sprintf("Moved %s to %s", act.Name(), rod),
		Timestamp: now,
		Rod:       &rod,
	}}
	if state.Solved {
		events = append(events, GameEvent{Type: "solved", Message: state.Message, Timestamp: now, Rod: &rod})
	}
	return events
}

// Reset returns the rod of a session to the start
func (s *mazeServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	s.sessions.UpdateLastAccessed(sessionID)
	state := sess.Engine.Reset().Clone()

	s.persist(sessionID, "reset")
	return state, nil
}

// GetGameState retrieves a snapshot of the current game state
func (s *mazeServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Engine.GetState().Clone(), nil
}

// GetMoveHistory returns paginated move history
func (s *mazeServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	return paginate(sess.Engine.GetMoveHistory(), opts), nil
}

func paginate(history []engine.MoveHistoryEntry, opts HistoryOptions) *HistoryResponse {
	total := len(history)

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	moves := []engine.MoveHistoryEntry{}
	if start < total {
		if opts.Order == "desc" {
			for i := total - 1 - start; i >= total-end; i-- {
				moves = append(moves, history[i])
			}
		} else {
			moves = append(moves, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}
}

// Solve runs the search on a catalog maze. An empty name solves the default.
func (s *mazeServiceImpl) Solve(ctx context.Context, configName string) (*SolveReport, error) {
	config, err := s.loadConfig(configName)
	if err != nil {
		return nil, err
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}
	return s.solve(ctx, configID, config.Layout)
}

// SolveLayout runs the search on rows supplied by the caller
func (s *mazeServiceImpl) SolveLayout(ctx context.Context, layout []string) (*SolveReport, error) {
	if err := engine.ValidateLayout(layout); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLayout, err)
	}
	return s.solve(ctx, "", layout)
}

func (s *mazeServiceImpl) solve(ctx context.Context, configID string, layout []string) (*SolveReport, error) {
	key := cache.LayoutKey(layout)

	data, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Warn("Solve cache read failed", "key", key, "err", err)
	}
	if hit {
		var report SolveReport
		if err := json.Unmarshal(data, &report); err == nil {
			report.ConfigID = configID
			report.Cached = true
			return &report, nil
		}
		log.Warn("Discarding unreadable cache entry", "key", key)
	}

	grid, err := engine.NewGrid(layout)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLayout, err)
	}

	res, err := engine.Search(ctx, grid)
	if err != nil {
		return nil, err
	}

	report := &SolveReport{
		Width:         grid.Width(),
		Height:        grid.Height(),
		Moves:         res.Moves,
		Solvable:      res.Solvable(),
		StatesVisited: res.StatesVisited,
		Levels:        res.Levels,
		DurationMS:    res.Duration.Milliseconds(),
	}

	if data, err := json.Marshal(report); err == nil {
		if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
			log.Warn("Solve cache write failed", "key", key, "err", err)
		}
	}

	log.Info("Maze solved", "maze", configID, "size", fmt.Sprintf("%dx%d", report.Width, report.Height),
		"moves", report.Moves, "states", report.StatesVisited, "took", res.Duration)

	report.ConfigID = configID
	return report, nil
}

// ListConfigs returns the maze catalog
func (s *mazeServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific maze
func (s *mazeServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.MazeConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a maze to the catalog
func (s *mazeServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.MazeConfig) error {
	return s.configs.SaveConfig(configName, config)
}
