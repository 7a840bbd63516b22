package engine

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateMazeConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  *MazeConfig
		wantErr string
	}{
		{"nil", nil, "config is nil"},
		{"missing name", &MazeConfig{Layout: []string{"..."}}, "name is required"},
		{"bad layout", &MazeConfig{Name: "x", Layout: []string{"...", ".."}}, "layout"},
		{"bad difficulty", &MazeConfig{Name: "x", Layout: []string{"..."}, Difficulty: "brutal"}, "difficulty"},
		{"valid", &MazeConfig{Name: "x", Layout: []string{"..."}, Difficulty: "hard"}, ""},
		{"difficulty optional", &MazeConfig{Name: "x", Layout: []string{"..."}}, ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := ValidateMazeConfig(test.config)
			if test.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("expected error containing %q, got %v", test.wantErr, err)
			}
		})
	}
}

func TestValidateMazeConfig_WrapsGridErrors(t *testing.T) {
	err := ValidateMazeConfig(&MazeConfig{Name: "x", Layout: []string{"..", ".."}})
	if !errors.Is(err, ErrGridTooSmall) {
		t.Errorf("expected ErrGridTooSmall in chain, got %v", err)
	}
}

func TestLoadMazeConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "room.json")
	data := `{
		"name": "room",
		"description": "open room",
		"difficulty": "easy",
		"layout": ["....", "....", "...."]
	}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("Failed to write maze: %v", err)
	}

	config, err := LoadMazeConfig(path)
	if err != nil {
		t.Fatalf("LoadMazeConfig: %v", err)
	}
	if config.Name != "room" || len(config.Layout) != 3 {
		t.Errorf("unexpected config: %+v", config)
	}
}

func TestLoadMazeConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadMazeConfig(filepath.Join(dir, "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}

	broken := filepath.Join(dir, "broken.json")
	os.WriteFile(broken, []byte("{not json"), 0644)
	if _, err := LoadMazeConfig(broken); err == nil || !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("expected parse error, got %v", err)
	}

	invalid := filepath.Join(dir, "invalid.json")
	os.WriteFile(invalid, []byte(`{"name":"bad","layout":["..",".."]}`), 0644)
	if _, err := LoadMazeConfig(invalid); !errors.Is(err, ErrGridTooSmall) {
		t.Errorf("expected ErrGridTooSmall, got %v", err)
	}
}

func TestLoadMazeConfig_ConfigDir(t *testing.T) {
	dir := t.TempDir()
	data := `{"name":"alt","layout":["...","...","..."]}`
	if err := os.WriteFile(filepath.Join(dir, "alt.json"), []byte(data), 0644); err != nil {
		t.Fatalf("Failed to write maze: %v", err)
	}

	t.Setenv("CONFIG_DIR", dir)

	config, err := LoadMazeConfig("configs/alt.json")
	if err != nil {
		t.Fatalf("LoadMazeConfig with CONFIG_DIR: %v", err)
	}
	if config.Name != "alt" {
		t.Errorf("expected 'alt', got %q", config.Name)
	}
}

func TestDefaultMazeConfig(t *testing.T) {
	config := DefaultMazeConfig()
	if err := ValidateMazeConfig(config); err != nil {
		t.Fatalf("default maze is invalid: %v", err)
	}
	if moves, _ := Solve(config.Layout); moves != 10 {
		t.Errorf("expected default maze to take 10 moves, got %d", moves)
	}
}
