// Package settings loads the optional rodmaze.toml file. Command-line flags
// and RODMAZE_* environment variables override whatever the file sets; the
// file overrides the built-in defaults.
package settings

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultFile is read from the working directory when no path is given
const DefaultFile = "rodmaze.toml"

var ErrInvalidSettings = errors.New("invalid settings")

// Duration reads TOML strings such as "90s" or "24h"
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type Settings struct {
	Debug    bool            `toml:"debug"`
	Server   ServerSettings  `toml:"server"`
	Sessions SessionSettings `toml:"sessions"`
	Cache    CacheSettings   `toml:"cache"`
	Ngrok    NgrokSettings   `toml:"ngrok"`
}

type ServerSettings struct {
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
	ConfigDir string `toml:"config_dir"`
}

type SessionSettings struct {
	Dir             string   `toml:"dir"`
	MaxAge          Duration `toml:"max_age"`
	CleanupInterval Duration `toml:"cleanup_interval"`
}

type CacheSettings struct {
	// Backend is "none", "file" or "redis"
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	TTL           Duration `toml:"ttl"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
}

// NgrokSettings never holds the auth token; that comes from NGROK_AUTHTOKEN
type NgrokSettings struct {
	Enabled bool   `toml:"enabled"`
	Domain  string `toml:"domain"`
}

// Default returns the settings used when nothing else is configured
func Default() *Settings {
	return &Settings{
		Server: ServerSettings{
			Host:      "localhost",
			Port:      8080,
			ConfigDir: "configs",
		},
		Sessions: SessionSettings{
			Dir:             "sessions",
			MaxAge:          Duration{24 * time.Hour},
			CleanupInterval: Duration{time.Hour},
		},
		Cache: CacheSettings{
			Backend:   "file",
			Dir:       ".cache/rodmaze",
			TTL:       Duration{24 * time.Hour},
			RedisAddr: "localhost:6379",
		},
	}
}

// Load reads path over the defaults. An empty path reads DefaultFile if it
// exists; an explicit path must exist.
func Load(path string) (*Settings, error) {
	s := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	md, err := toml.DecodeFile(path, s)
	switch {
	case errors.Is(err, os.ErrNotExist) && !explicit:
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read settings %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown key %s in %s", ErrInvalidSettings, undecoded[0], path)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Validate checks values that would otherwise fail late at startup
func (s *Settings) Validate() error {
	if s.Server.Port < 0 || s.Server.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidSettings, s.Server.Port)
	}
	switch s.Cache.Backend {
	case "", "none", "file", "redis":
	default:
		return fmt.Errorf("%w: unknown cache backend %q", ErrInvalidSettings, s.Cache.Backend)
	}
	if s.Sessions.MaxAge.Duration < 0 || s.Sessions.CleanupInterval.Duration < 0 || s.Cache.TTL.Duration < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidSettings)
	}
	return nil
}

// Addr is the host:port the HTTP server listens on
func (s *Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Server.Host, s.Server.Port)
}
