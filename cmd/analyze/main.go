// Command analyze prints quick, human-readable heuristics about the mazes in
// a config directory. It summarizes dimensions, wall density, which final
// positions fit in the corner, and the breadth-first search profile.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/rodmaze/game/engine"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(16)
	goodStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	badStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Report is the analysis of one maze file
type Report struct {
	File          string
	Name          string
	Width         int
	Height        int
	Walls         int
	Density       float64
	StartFits     bool
	Goals         []engine.RodState
	LowerBound    int
	Moves         int
	StatesVisited int
	Levels        int
	PeakFrontier  int
	PeakLevel     int
}

// analyzeConfig loads one maze and profiles the search over it
func analyzeConfig(ctx context.Context, path string) (*Report, error) {
	config, err := engine.LoadMazeConfig(path)
	if err != nil {
		return nil, err
	}

	grid, err := engine.NewGrid(config.Layout)
	if err != nil {
		return nil, err
	}

	r := &Report{
		File:       filepath.Base(path),
		Name:       config.Name,
		Width:      grid.Width(),
		Height:     grid.Height(),
		Walls:      engine.CountWalls(grid),
		Density:    engine.WallDensity(grid),
		StartFits:  grid.Fits(engine.StartState),
		Goals:      engine.ReachableGoals(grid),
		LowerBound: engine.LowerBound(engine.StartState, grid.Width(), grid.Height()),
	}

	hook := func(level int, frontier []engine.RodState) {
		if len(frontier) > r.PeakFrontier {
			r.PeakFrontier = len(frontier)
			r.PeakLevel = level
		}
	}

	res, err := engine.Search(ctx, grid, engine.WithLevelHook(hook))
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", r.File, err)
	}
	r.Moves = res.Moves
	r.StatesVisited = res.StatesVisited
	r.Levels = res.Levels

	return r, nil
}

func (r *Report) String() string {
	var b strings.Builder
	line := func(key, value string) {
		b.WriteString(keyStyle.Render(key) + value + "\n")
	}

	line("Name:", r.Name)
	line("Grid Size:", fmt.Sprintf("%d x %d", r.Width, r.Height))
	line("Walls:", fmt.Sprintf("%d (%.1f%%)", r.Walls, r.Density*100))
	line("Lower Bound:", fmt.Sprint(r.LowerBound))

	if !r.StartFits {
		line("Start:", badStyle.Render("overlaps a wall, not playable in sessions"))
	}

	if len(r.Goals) == 0 {
		line("Final Positions:", badStyle.Render("none fit in the corner"))
	} else {
		goals := make([]string, len(r.Goals))
		for i, g := range r.Goals {
			goals[i] = g.String()
		}
		line("Final Positions:", strings.Join(goals, ", "))
	}

	line("States Explored:", fmt.Sprint(r.StatesVisited))
	line("Peak Frontier:", fmt.Sprintf("%d states at level %d", r.PeakFrontier, r.PeakLevel))

	if r.Moves == engine.NoSolution {
		line("Minimum Moves:", badStyle.Render("-1 (unreachable)"))
	} else {
		line("Minimum Moves:", goodStyle.Render(fmt.Sprint(r.Moves)))
		if slack := r.Moves - r.LowerBound; slack > 0 {
			line("Detour:", fmt.Sprintf("%d moves over the lower bound", slack))
		}
	}

	return b.String()
}

// mazeFiles resolves maze ids to files in dir, or lists every maze when
// none are given
func mazeFiles(dir string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		files, err := filepath.Glob(filepath.Join(dir, "*.json"))
		if err != nil {
			return nil, err
		}
		sort.Strings(files)
		return files, nil
	}

	files := make([]string, len(ids))
	for i, id := range ids {
		files[i] = filepath.Join(dir, strings.TrimSuffix(id, ".json")+".json")
	}
	return files, nil
}

// analyzeAll writes one report per file and returns how many failed to load
func analyzeAll(ctx context.Context, files []string, w io.Writer) int {
	failed := 0
	for _, file := range files {
		fmt.Fprintf(w, "\n%s\n", titleStyle.Render("Analyzing "+filepath.Base(file)))

		report, err := analyzeConfig(ctx, file)
		if err != nil {
			failed++
			fmt.Fprintln(w, badStyle.Render(fmt.Sprintf("Error: %v", err)))
			continue
		}
		fmt.Fprint(w, report)
	}
	return failed
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "print search heuristics for mazes",
		ArgsUsage: "[maze-id ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "directory of maze JSON files",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files, err := mazeFiles(cmd.String("config-dir"), cmd.Args().Slice())
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no mazes found in %s", cmd.String("config-dir"))
			}

			if failed := analyzeAll(ctx, files, cmd.Root().Writer); failed > 0 {
				return fmt.Errorf("%d of %d mazes could not be analyzed", failed, len(files))
			}
			return nil
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Error("Analysis failed", "err", err)
		os.Exit(1)
	}
}
