package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/wricardo/mcp-training/rodmaze/game/engine"
	"github.com/wricardo/mcp-training/rodmaze/game/service"
)

// FilePersistence stores each session as <id>.json in one directory
type FilePersistence struct {
	sessionsDir   string
	configManager service.ConfigManager
}

// NewFilePersistence creates the directory if needed. configManager resolves
// the stored config id back to a maze on load.
func NewFilePersistence(sessionsDir string, configManager service.ConfigManager) (*FilePersistence, error) {
	if err := os.MkdirAll(sessionsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	return &FilePersistence{
		sessionsDir:   sessionsDir,
		configManager: configManager,
	}, nil
}

// Save writes the session through a temp file
func (fp *FilePersistence) Save(session *service.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}

	data := PersistedSessionData{
		ID:             session.ID,
		ConfigName:     fp.configID(session.Config.Name),
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.GetState(),
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	path := fp.path(session.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Load rebuilds a session and its engine from disk
func (fp *FilePersistence) Load(id string) (*service.Session, error) {
	raw, err := os.ReadFile(fp.path(id))
	if os.IsNotExist(err) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var data PersistedSessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}
	if data.GameState == nil {
		return nil, fmt.Errorf("session %s has no game state", id)
	}

	config, err := fp.resolveConfig(&data)
	if err != nil {
		return nil, err
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	if err := eng.SetState(data.GameState); err != nil {
		return nil, fmt.Errorf("failed to restore game state: %w", err)
	}

	return &service.Session{
		ID:             data.ID,
		Engine:         eng,
		Config:         config,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}

// resolveConfig finds the maze in the catalog. When the maze has been removed
// or its layout changed, the snapshot layout keeps the session playable.
func (fp *FilePersistence) resolveConfig(data *PersistedSessionData) (*engine.MazeConfig, error) {
	config, err := fp.configManager.LoadConfig(data.ConfigName)
	switch {
	case err == nil && sameLayout(config.Layout, data.GameState.Layout):
		return config, nil
	case err != nil && !errors.Is(err, ErrConfigNotFound):
		return nil, fmt.Errorf("failed to load config '%s': %w", data.ConfigName, err)
	case len(data.GameState.Layout) == 0:
		return nil, fmt.Errorf("failed to load config '%s': %w", data.ConfigName, err)
	}

	log.Warn("Restoring session from its saved layout", "session", data.ID, "config", data.ConfigName)
	return &engine.MazeConfig{
		Name:   data.ConfigName,
		Layout: data.GameState.Layout,
	}, nil
}

func sameLayout(a, b []string) bool {
	if len(b) == 0 {
		return true
	}
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Delete removes a session file
func (fp *FilePersistence) Delete(id string) error {
	err := os.Remove(fp.path(id))
	if os.IsNotExist(err) {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// ListAll returns all persisted session IDs
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.sessionsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), ".json"))
	}
	return ids, nil
}

// Exists checks if a session file exists
func (fp *FilePersistence) Exists(id string) bool {
	_, err := os.Stat(fp.path(id))
	return err == nil
}

func (fp *FilePersistence) path(id string) string {
	return filepath.Join(fp.sessionsDir, key(id)+".json")
}

// configID maps a display name to its catalog id; unknown names are kept
func (fp *FilePersistence) configID(displayName string) string {
	configs, err := fp.configManager.ListConfigs()
	if err != nil {
		return displayName
	}
	for _, c := range configs {
		if c.Name == displayName {
			return c.ConfigID
		}
	}
	return displayName
}

var _ SessionPersistence = (*FilePersistence)(nil)
