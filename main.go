// Command rodmaze solves rod mazes and serves them for interactive play.
//
// Commands:
//
//	serve    HTTP server with the REST API, WebSocket updates and an /mcp endpoint
//	mcp      MCP stdio server; reuses a running API or starts an internal one
//	solve    print the minimum move count for a maze file, catalog id or stdin
//	version  print the version
//
// Settings come from flags, RODMAZE_* environment variables (a .env file is
// loaded first) and an optional rodmaze.toml, in that order of precedence.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/rodmaze/settings"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Rod Maze"
)

func main() {
	// .env values become defaults for the env sources; real env wins
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("Error loading .env file", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Error("rodmaze failed", "err", err)
		os.Exit(1)
	}
}

// app carries the resolved settings from the root Before hook to the commands
type app struct {
	settings *settings.Settings
}

func newApp() *cli.Command {
	a := &app{}

	return &cli.Command{
		Name:    "rodmaze",
		Usage:   "Shortest paths for a three-cell rod through a grid maze",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				Sources: cli.EnvVars("RODMAZE_DEBUG"),
			},
			&cli.StringFlag{
				Name:    "settings",
				Usage:   "TOML settings file (default: ./" + settings.DefaultFile + " if present)",
				Sources: cli.EnvVars("RODMAZE_SETTINGS"),
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Usage:   "directory containing maze JSON files",
				Value:   "configs",
				Sources: cli.EnvVars("RODMAZE_CONFIG_DIR", "CONFIG_DIR"),
			},
		},
		Before: a.before,
		Commands: []*cli.Command{
			a.serveCommand(),
			a.mcpCommand(),
			a.solveCommand(),
			{
				Name:  "version",
				Usage: "print the version",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Fprintf(cmd.Root().Writer, "%s v%s\n", AppName, Version)
					return nil
				},
			},
		},
	}
}

func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	s, err := settings.Load(cmd.String("settings"))
	if err != nil {
		return ctx, err
	}
	if cmd.IsSet("debug") {
		s.Debug = cmd.Bool("debug")
	}
	if cmd.IsSet("config-dir") {
		s.Server.ConfigDir = cmd.String("config-dir")
	}
	a.settings = s

	setupLogger(s.Debug)
	return ctx, nil
}

// setupLogger installs the default logger used by every package
func setupLogger(debug bool) {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	log.SetDefault(log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	}))
}

func (a *app) serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP server with REST API, WebSocket and MCP endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "HTTP server host", Sources: cli.EnvVars("RODMAZE_HOST")},
			&cli.IntFlag{Name: "port", Usage: "HTTP server port", Sources: cli.EnvVars("RODMAZE_PORT", "PORT")},
			&cli.StringFlag{Name: "sessions-dir", Usage: "directory for persisted sessions", Sources: cli.EnvVars("RODMAZE_SESSIONS_DIR")},
			&cli.DurationFlag{Name: "session-max-age", Usage: "evict sessions idle for longer than this", Sources: cli.EnvVars("RODMAZE_SESSION_MAX_AGE")},
			&cli.StringFlag{Name: "cache", Usage: "solve cache backend: none, file or redis", Sources: cli.EnvVars("RODMAZE_CACHE")},
			&cli.StringFlag{Name: "cache-dir", Usage: "directory for the file cache", Sources: cli.EnvVars("RODMAZE_CACHE_DIR")},
			&cli.StringFlag{Name: "redis-addr", Usage: "Redis address for the redis cache", Sources: cli.EnvVars("RODMAZE_REDIS_ADDR", "REDIS_ADDR")},
			&cli.BoolFlag{Name: "ngrok", Usage: "expose the server through an ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s := a.settings
			applyServeFlags(cmd, s)
			if err := s.Validate(); err != nil {
				return err
			}
			return runHTTPServer(ctx, s, cmd.String("ngrok-auth"))
		},
	}
}

// applyServeFlags copies explicitly set flags (or their env sources) over
// the file settings
func applyServeFlags(cmd *cli.Command, s *settings.Settings) {
	if cmd.IsSet("host") {
		s.Server.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		s.Server.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("sessions-dir") {
		s.Sessions.Dir = cmd.String("sessions-dir")
	}
	if cmd.IsSet("session-max-age") {
		s.Sessions.MaxAge.Duration = cmd.Duration("session-max-age")
	}
	if cmd.IsSet("cache") {
		s.Cache.Backend = cmd.String("cache")
	}
	if cmd.IsSet("cache-dir") {
		s.Cache.Dir = cmd.String("cache-dir")
	}
	if cmd.IsSet("redis-addr") {
		s.Cache.RedisAddr = cmd.String("redis-addr")
	}
	if cmd.IsSet("ngrok") {
		s.Ngrok.Enabled = cmd.Bool("ngrok")
	}
	if cmd.IsSet("ngrok-domain") {
		s.Ngrok.Domain = cmd.String("ngrok-domain")
	}
}

func (a *app) mcpCommand() *cli.Command {
	return &cli.Command{
		Name:    "mcp",
		Aliases: []string{"stdio-mcp", "mcp-stdio"},
		Usage:   "run an MCP stdio server backed by the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "REST API to reuse when it is reachable",
				Value:   "http://localhost:8080",
				Sources: cli.EnvVars("RODMAZE_API_URL"),
			},
			&cli.DurationFlag{
				Name:  "probe-timeout",
				Usage: "how long to wait for the external API health check",
				Value: 2 * time.Second,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runStdioMCP(ctx, a.settings, cmd.String("api-url"), cmd.Duration("probe-timeout"))
		},
	}
}
