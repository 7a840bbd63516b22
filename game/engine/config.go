package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateMazeConfig validates a maze configuration for correctness
func ValidateMazeConfig(config *MazeConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if err := ValidateLayout(config.Layout); err != nil {
		return fmt.Errorf("config validation: layout: %w", err)
	}

	switch config.Difficulty {
	case "", "easy", "medium", "hard":
	default:
		return fmt.Errorf("config validation: difficulty must be easy, medium or hard, got %q", config.Difficulty)
	}

	return nil
}

// LoadMazeConfig loads a maze configuration from a JSON file
func LoadMazeConfig(filename string) (*MazeConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config MazeConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse maze file '%s': %w", filename, err)
	}

	if err := ValidateMazeConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid maze '%s': %w", filename, err)
	}

	return &config, nil
}

// DefaultMazeConfig is the built-in maze used when no catalog is available
func DefaultMazeConfig() *MazeConfig {
	return &MazeConfig{
		Name:        "default",
		Description: "Built-in open 7x7 room with a single pillar",
		Difficulty:  "easy",
		Layout: []string{
			".......",
			".......",
			".......",
			"...#...",
			".......",
			".......",
			".......",
		},
	}
}
