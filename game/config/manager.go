package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/wricardo/mcp-training/rodmaze/game/engine"
	"github.com/wricardo/mcp-training/rodmaze/game/service"
)

// Shared with the service layer so transports can match them with errors.Is.
var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = service.ErrInvalidConfig
)

// DefaultConfigID is the maze preferred as the catalog default
const DefaultConfigID = "classic"

// Manager reads maze files from a directory and caches them by config id
type Manager struct {
	configDir     string
	defaultConfig *engine.MazeConfig
	configs       map[string]*engine.MazeConfig
	mu            sync.RWMutex
}

// NewManager creates a catalog over configDir, which must exist
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.MazeConfig),
	}

	m.defaultConfig = m.findDefault()
	return m, nil
}

// Dir returns the catalog directory
func (m *Manager) Dir() string {
	return m.configDir
}

// LoadConfig loads a maze by config id; a trailing .json is ignored
func (m *Manager) LoadConfig(name string) (*engine.MazeConfig, error) {
	id := configID(name)
	if !validID(id) {
		return nil, fmt.Errorf("%w: %q", ErrConfigNotFound, name)
	}

	m.mu.RLock()
	if config, exists := m.configs[id]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[id]; exists {
		return config, nil
	}

	config, err := m.readConfig(id)
	if err != nil {
		return nil, err
	}

	m.configs[id] = config
	return config, nil
}

// readConfig parses and validates one file without touching the cache
func (m *Manager) readConfig(id string) (*engine.MazeConfig, error) {
	data, err := os.ReadFile(m.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, id)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config engine.MazeConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidConfig, id, err)
	}

	if err := engine.ValidateMazeConfig(&config); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, id, err)
	}

	return &config, nil
}

// ListConfigs describes every valid maze in the directory, sorted by file name.
// Invalid files are skipped.
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	ids, err := m.configIDs()
	if err != nil {
		return nil, err
	}

	configs := make([]*service.ConfigInfo, 0, len(ids))
	for _, id := range ids {
		config, err := m.LoadConfig(id)
		if err != nil {
			log.Debug("Skipping maze", "config", id, "err", err)
			continue
		}

		configs = append(configs, &service.ConfigInfo{
			Filename:    id + ".json",
			ConfigID:    id,
			Name:        config.Name,
			Description: config.Description,
			Width:       len(config.Layout[0]),
			Height:      len(config.Layout),
			Difficulty:  config.Difficulty,
		})
	}

	return configs, nil
}

// configIDs lists the *.json files in the directory as config ids
func (m *Manager) configIDs() ([]string, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
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

// GetDefault returns the default maze
func (m *Manager) GetDefault() *engine.MazeConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default maze by config id
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// ReloadConfig drops one maze from the cache and reads it again
func (m *Manager) ReloadConfig(name string) error {
	m.mu.Lock()
	delete(m.configs, configID(name))
	m.mu.Unlock()

	_, err := m.LoadConfig(name)
	return err
}

// RefreshCache forgets every cached maze and re-selects the default
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.configs = make(map[string]*engine.MazeConfig)
	m.mu.Unlock()

	def := m.findDefault()

	m.mu.Lock()
	m.defaultConfig = def
	m.mu.Unlock()
}

// Count returns the number of cached mazes
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.configs)
}

// findDefault prefers classic, then the first valid file, then the built-in maze
func (m *Manager) findDefault() *engine.MazeConfig {
	if config, err := m.LoadConfig(DefaultConfigID); err == nil {
		return config
	}

	ids, err := m.configIDs()
	if err == nil {
		for _, id := range ids {
			if config, err := m.LoadConfig(id); err == nil {
				return config
			}
		}
	}

	log.Warn("No valid maze in catalog, using built-in default", "dir", m.configDir)
	return engine.DefaultMazeConfig()
}

// SaveConfig validates a maze and writes it as indented JSON
func (m *Manager) SaveConfig(name string, config *engine.MazeConfig) error {
	if err := engine.ValidateMazeConfig(config); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	id := configID(name)
	if !validID(id) {
		return fmt.Errorf("%w: bad config id %q", ErrInvalidConfig, name)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.path(id), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[id] = config
	m.mu.Unlock()

	log.Info("Maze saved", "config", id, "size", fmt.Sprintf("%dx%d", len(config.Layout[0]), len(config.Layout)))
	return nil
}

func (m *Manager) path(id string) string {
	return filepath.Join(m.configDir, id+".json")
}

func configID(name string) string {
	return strings.TrimSuffix(name, ".json")
}

// validID rejects ids that would escape the catalog directory
func validID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}

var _ service.ConfigManager = (*Manager)(nil)
