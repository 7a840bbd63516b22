package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/rodmaze/game/engine"
	"github.com/wricardo/mcp-training/rodmaze/game/service"
)

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(10)
	movesStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	failStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

func (a *app) solveCommand() *cli.Command {
	return &cli.Command{
		Name:      "solve",
		Usage:     "print the minimum number of moves, or -1 when the corner is unreachable",
		ArgsUsage: "<maze.json | config-id | ->",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "stats", Usage: "also print search statistics"},
			&cli.BoolFlag{Name: "json", Usage: "print the full report as JSON"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("solve takes exactly one argument: a maze file, a config id or - for stdin")
			}

			svc, err := newSolveServices(ctx, a.settings)
			if err != nil {
				return err
			}
			defer svc.Close()

			report, err := solveTarget(ctx, svc.maze, cmd.Args().First(), cmd.Root().Reader)
			if err != nil {
				return err
			}

			out := cmd.Root().Writer
			switch {
			case cmd.Bool("json"):
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			case cmd.Bool("stats"):
				fmt.Fprintln(out, formatReport(report))
			default:
				fmt.Fprintln(out, report.Moves)
			}
			return nil
		},
	}
}

// solveTarget resolves "-" (rows on stdin), a path to a maze JSON file, or a
// catalog id, in that order
func solveTarget(ctx context.Context, svc service.MazeService, target string, stdin io.Reader) (*service.SolveReport, error) {
	if target == "-" {
		rows, err := readRows(stdin)
		if err != nil {
			return nil, err
		}
		return svc.SolveLayout(ctx, rows)
	}

	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		maze, err := engine.LoadMazeConfig(target)
		if err != nil {
			return nil, err
		}
		report, err := svc.SolveLayout(ctx, maze.Layout)
		if err != nil {
			return nil, err
		}
		report.ConfigID = maze.Name
		return report, nil
	}

	return svc.Solve(ctx, target)
}

// readRows reads one maze row per line, ignoring blank lines and
// surrounding whitespace
func readRows(r io.Reader) ([]string, error) {
	var rows []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if row := strings.TrimSpace(scanner.Text()); row != "" {
			rows = append(rows, row)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return rows, nil
}

func formatReport(r *service.SolveReport) string {
	moves := movesStyle.Render(fmt.Sprint(r.Moves))
	if !r.Solvable {
		moves = failStyle.Render("-1 (unreachable)")
	}

	lines := []string{}
	if r.ConfigID != "" {
		lines = append(lines, labelStyle.Render("maze")+r.ConfigID)
	}
	lines = append(lines,
		labelStyle.Render("grid")+fmt.Sprintf("%dx%d", r.Width, r.Height),
		labelStyle.Render("moves")+moves,
		labelStyle.Render("states")+fmt.Sprint(r.StatesVisited),
		labelStyle.Render("levels")+fmt.Sprint(r.Levels),
	)
	if r.Cached {
		lines = append(lines, labelStyle.Render("cached")+"yes")
	} else {
		lines = append(lines, labelStyle.Render("took")+fmt.Sprintf("%dms", r.DurationMS))
	}
	return strings.Join(lines, "\n")
}
