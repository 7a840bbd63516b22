// Command autoplay plays a maze session through the REST API, moving the
// rod along a shortest route until it reaches the corner.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/rodmaze/game/engine"
)

var (
	errNoRoute   = errors.New("no route to the corner")
	errMoveLimit = errors.New("move limit reached")
	errRejected  = errors.New("move rejected by server")
)

type playOptions struct {
	ConfigID string
	Resume   string
	MaxMoves int
	Delay    time.Duration
}

// play opens or resumes a session, resets it and solves it. It returns the
// final state and the number of moves made.
func play(ctx context.Context, client *Client, opts playOptions) (*engine.GameState, int, error) {
	var err error

	if opts.Resume != "" {
		log.Info("Resuming session", "session", opts.Resume)
		if _, err = client.Resume(ctx, opts.Resume); err != nil {
			log.Warn("Failed to resume session, creating a new one", "err", err)
		}
	}
	if opts.Resume == "" || err != nil {
		if _, err := client.CreateSession(ctx, opts.ConfigID); err != nil {
			return nil, 0, err
		}
		log.Info("Session created", "session", client.SessionID())
	}

	state, err := client.Reset(ctx)
	if err != nil {
		return nil, 0, err
	}
	log.Info("Game reset", "maze", state.ConfigName, "size", fmt.Sprintf("%dx%d", state.Width, state.Height), "rod", state.Rod)

	planner, err := NewPlanner(state.Layout)
	if err != nil {
		return nil, 0, err
	}

	moves := 0
	for !state.Solved {
		if opts.MaxMoves > 0 && moves >= opts.MaxMoves {
			return state, moves, fmt.Errorf("%w: %d", errMoveLimit, opts.MaxMoves)
		}

		action, ok, err := planner.NextMove(ctx, state.Rod)
		if err != nil {
			return state, moves, err
		}
		if !ok {
			return state, moves, fmt.Errorf("%w from %s", errNoRoute, state.Rod)
		}

		result, err := client.Move(ctx, action)
		if err != nil {
			return state, moves, err
		}
		if !result.Success {
			return state, moves, fmt.Errorf("%w: %s", errRejected, result.Message)
		}

		state = result.GameState
		moves++
		log.Debug("Moved", "action", action.Name(), "rod", state.Rod, "remaining", result.MovesRemaining)

		if opts.Delay > 0 {
			select {
			case <-ctx.Done():
				return state, moves, ctx.Err()
			case <-time.After(opts.Delay):
			}
		}
	}

	return state, moves, nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "autoplay",
		Usage: "solve a maze session through the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "API server URL", Sources: cli.EnvVars("RODMAZE_API_URL")},
			&cli.StringFlag{Name: "config", Usage: "maze config id (default maze when empty)"},
			&cli.StringFlag{Name: "continue", Usage: "resume an existing session by ID"},
			&cli.StringFlag{Name: "session-file", Value: ".session", Usage: "remembers the session between runs, empty to disable"},
			&cli.IntFlag{Name: "max-moves", Value: 10000, Usage: "give up after this many moves"},
			&cli.DurationFlag{Name: "delay", Usage: "pause between moves"},
			&cli.BoolFlag{Name: "v", Usage: "log every move"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("v") {
				log.SetLevel(log.DebugLevel)
			}

			sessionFile := cmd.String("session-file")
			resume := cmd.String("continue")
			if resume == "" && sessionFile != "" {
				if data, err := os.ReadFile(sessionFile); err == nil {
					resume = string(bytes.TrimSpace(data))
				}
			}

			log.Info("Connecting to API server", "url", cmd.String("url"))
			client := NewClient(cmd.String("url"))

			state, moves, err := play(ctx, client, playOptions{
				ConfigID: cmd.String("config"),
				Resume:   resume,
				MaxMoves: int(cmd.Int("max-moves")),
				Delay:    cmd.Duration("delay"),
			})

			if sessionFile != "" && client.SessionID() != "" {
				if err := os.WriteFile(sessionFile, []byte(client.SessionID()), 0644); err != nil {
					log.Warn("Failed to save session ID", "err", err)
				}
			}
			if err != nil {
				return err
			}

			log.Info("🎉 Solved", "session", client.SessionID(), "moves", moves, "rod", state.Rod)
			fmt.Fprintln(cmd.Root().Writer, moves)
			return nil
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		log.Error("Autoplay failed", "err", err)
		os.Exit(1)
	}
}
