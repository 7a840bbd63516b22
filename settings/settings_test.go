package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rodmaze.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeFile(t, `
debug = true

[server]
port = 9090
config_dir = "/srv/mazes"

[sessions]
max_age = "2h"

[cache]
backend = "redis"
ttl = "90m"
redis_addr = "cache:6379"
redis_db = 2
`)

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := Default()
	want.Debug = true
	want.Server.Port = 9090
	want.Server.ConfigDir = "/srv/mazes"
	want.Sessions.MaxAge = Duration{2 * time.Hour}
	want.Cache.Backend = "redis"
	want.Cache.TTL = Duration{90 * time.Minute}
	want.Cache.RedisAddr = "cache:6379"
	want.Cache.RedisDB = 2

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
	if got.Addr() != "localhost:9090" {
		t.Errorf("Expected localhost:9090, got %s", got.Addr())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("Expected not-exist error, got %v", err)
		}
	})

	t.Run("default file absent", func(t *testing.T) {
		t.Chdir(t.TempDir())
		got, err := Load("")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if diff := cmp.Diff(Default(), got); diff != "" {
			t.Errorf("Expected defaults (-want +got):\n%s", diff)
		}
	})
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown key", "[server]\nprot = 1\n"},
		{"bad port", "[server]\nport = 70000\n"},
		{"bad backend", "[cache]\nbackend = \"memcached\"\n"},
		{"negative duration", "[sessions]\nmax_age = \"-1h\"\n"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := Load(writeFile(t, test.content)); !errors.Is(err, ErrInvalidSettings) {
				t.Errorf("Expected ErrInvalidSettings, got %v", err)
			}
		})
	}

	t.Run("bad duration", func(t *testing.T) {
		if _, err := Load(writeFile(t, "[cache]\nttl = \"soon\"\n")); err == nil {
			t.Error("Expected a parse error")
		}
	})
}

func TestLoad_ExampleFile(t *testing.T) {
	s, err := Load("../rodmaze.example.toml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(Default(), s); diff != "" {
		t.Errorf("example file drifted from the defaults (-want +got):\n%s", diff)
	}
}
