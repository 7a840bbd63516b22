package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wricardo/mcp-training/rodmaze/game/engine"
)

func createValidConfig() *engine.MazeConfig {
	return &engine.MazeConfig{
		Name:        "Test Maze",
		Description: "Test maze",
		Difficulty:  "easy",
		Layout: []string{
			".....",
			".....",
			"..#..",
			".....",
			".....",
		},
	}
}

func writeConfigFile(t *testing.T, dir, name string, config *engine.MazeConfig) {
	t.Helper()
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, name+".json"), data, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := t.TempDir()
		writeConfigFile(t, dir, "default", createValidConfig())

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.Dir() != dir {
			t.Errorf("expected dir %s, got %s", dir, manager.Dir())
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		if _, err := NewManager("/non/existent/path"); err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("empty directory falls back to built-in maze", func(t *testing.T) {
		manager, err := NewManager(t.TempDir())
		if err != nil {
			t.Fatalf("NewManager should succeed without maze files: %v", err)
		}

		def := manager.GetDefault()
		if def == nil || def.Name != engine.DefaultMazeConfig().Name {
			t.Errorf("expected built-in default, got %+v", def)
		}
	})
}

func TestManager_GetDefault(t *testing.T) {
	t.Run("prefers classic", func(t *testing.T) {
		dir := t.TempDir()
		a := createValidConfig()
		a.Name = "Alpha"
		writeConfigFile(t, dir, "alpha", a)
		c := createValidConfig()
		c.Name = "Classic"
		writeConfigFile(t, dir, "classic", c)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("NewManager: %v", err)
		}
		if got := manager.GetDefault().Name; got != "Classic" {
			t.Errorf("expected Classic, got %s", got)
		}
	})

	t.Run("first valid file otherwise", func(t *testing.T) {
		dir := t.TempDir()
		os.WriteFile(filepath.Join(dir, "aaa.json"), []byte(`{"name":"broken"`), 0644)
		b := createValidConfig()
		b.Name = "Bravo"
		writeConfigFile(t, dir, "bravo", b)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("NewManager: %v", err)
		}
		if got := manager.GetDefault().Name; got != "Bravo" {
			t.Errorf("expected Bravo, got %s", got)
		}
	})

	t.Run("SetDefault", func(t *testing.T) {
		dir := t.TempDir()
		writeConfigFile(t, dir, "classic", createValidConfig())
		other := createValidConfig()
		other.Name = "Other"
		writeConfigFile(t, dir, "other", other)

		manager, _ := NewManager(dir)
		if err := manager.SetDefault("other"); err != nil {
			t.Fatalf("SetDefault: %v", err)
		}
		if got := manager.GetDefault().Name; got != "Other" {
			t.Errorf("expected Other, got %s", got)
		}
		if err := manager.SetDefault("missing"); !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := t.TempDir()

	room := createValidConfig()
	room.Name = "Room"
	writeConfigFile(t, dir, "room", room)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("load existing config", func(t *testing.T) {
		config, err := manager.LoadConfig("room")
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}
		if config.Name != "Room" || len(config.Layout) != 5 {
			t.Errorf("unexpected config: %+v", config)
		}
	})

	t.Run("load with .json extension", func(t *testing.T) {
		config, err := manager.LoadConfig("room.json")
		if err != nil {
			t.Fatalf("Failed to load config with extension: %v", err)
		}
		if config.Name != "Room" {
			t.Errorf("Expected config name 'Room', got '%s'", config.Name)
		}
	})

	t.Run("load from cache", func(t *testing.T) {
		config1, _ := manager.LoadConfig("room")
		config2, _ := manager.LoadConfig("room.json")
		if config1 != config2 {
			t.Error("Expected the same cached pointer")
		}
	})

	t.Run("load non-existent config", func(t *testing.T) {
		if _, err := manager.LoadConfig("non-existent"); !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("path traversal is not found", func(t *testing.T) {
		if _, err := manager.LoadConfig("../room"); !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("load invalid config", func(t *testing.T) {
		os.WriteFile(filepath.Join(dir, "tiny.json"), []byte(`{"name":"tiny","layout":["..",".."]}`), 0644)

		_, err := manager.LoadConfig("tiny")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
		if !errors.Is(err, engine.ErrGridTooSmall) {
			t.Errorf("Expected the grid error in the chain, got %v", err)
		}
	})

	t.Run("load malformed JSON", func(t *testing.T) {
		os.WriteFile(filepath.Join(dir, "malformed.json"), []byte(`{"name": "Malformed", invalid json}`), 0644)

		if _, err := manager.LoadConfig("malformed"); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestManager_ListConfigs(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"classic", "easy", "medium", "hard"} {
		config := createValidConfig()
		config.Name = name + " maze"
		writeConfigFile(t, dir, name, config)
	}

	// Ignored: not JSON, a directory, and an invalid maze
	os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("readme"), 0644)
	os.Mkdir(filepath.Join(dir, "archive.json"), 0755)
	os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"name":""}`), 0644)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	configList, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("Failed to list configs: %v", err)
	}
	if len(configList) != 4 {
		t.Fatalf("Expected 4 configs, got %d", len(configList))
	}

	// Sorted by file name
	expected := []string{"classic", "easy", "hard", "medium"}
	for i, info := range configList {
		if info.ConfigID != expected[i] {
			t.Errorf("position %d: expected %s, got %s", i, expected[i], info.ConfigID)
		}
		if info.Filename != expected[i]+".json" {
			t.Errorf("unexpected filename %s", info.Filename)
		}
		if info.Width != 5 || info.Height != 5 || info.Difficulty != "easy" {
			t.Errorf("unexpected info: %+v", info)
		}
	}
}

func TestManager_SaveConfig(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	config := createValidConfig()
	config.Name = "Saved"
	if err := manager.SaveConfig("saved", config); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "saved.json")); err != nil {
		t.Errorf("expected file on disk: %v", err)
	}

	loaded, err := manager.LoadConfig("saved")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.Name != "Saved" {
		t.Errorf("unexpected name %s", loaded.Name)
	}

	// A fresh manager reads the same file back
	fresh, _ := NewManager(dir)
	if got, err := fresh.LoadConfig("saved"); err != nil || got.Name != "Saved" {
		t.Errorf("round trip through disk failed: %+v, %v", got, err)
	}

	t.Run("invalid maze", func(t *testing.T) {
		bad := createValidConfig()
		bad.Layout = []string{"...", ".."}
		if err := manager.SaveConfig("bad", bad); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("bad id", func(t *testing.T) {
		if err := manager.SaveConfig("../escape", createValidConfig()); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestManager_ReloadConfig(t *testing.T) {
	dir := t.TempDir()

	config := createValidConfig()
	config.Difficulty = "easy"
	writeConfigFile(t, dir, "changeable", config)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	loaded, _ := manager.LoadConfig("changeable")
	if loaded.Difficulty != "easy" {
		t.Errorf("Expected initial difficulty easy, got %s", loaded.Difficulty)
	}

	config.Difficulty = "hard"
	writeConfigFile(t, dir, "changeable", config)

	if err := manager.ReloadConfig("changeable"); err != nil {
		t.Fatalf("Failed to reload config: %v", err)
	}

	reloaded, _ := manager.LoadConfig("changeable")
	if reloaded.Difficulty != "hard" {
		t.Errorf("Expected reloaded difficulty hard, got %s", reloaded.Difficulty)
	}
}

func TestManager_RefreshCache(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "one", createValidConfig())

	manager, _ := NewManager(dir)
	manager.LoadConfig("one")

	classic := createValidConfig()
	classic.Name = "Classic"
	writeConfigFile(t, dir, "classic", classic)

	manager.RefreshCache()

	if got := manager.GetDefault().Name; got != "Classic" {
		t.Errorf("expected refreshed default Classic, got %s", got)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := t.TempDir()

	for i := 1; i <= 5; i++ {
		config := createValidConfig()
		config.Name = fmt.Sprintf("Config%d", i)
		writeConfigFile(t, dir, fmt.Sprintf("config%d", i), config)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if _, err := manager.LoadConfig(fmt.Sprintf("config%d", id%5+1)); err != nil {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}

	if manager.Count() != 5 {
		t.Errorf("Expected 5 configs in cache, got %d", manager.Count())
	}
}
