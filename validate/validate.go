// Command validate checks the maze JSON files in a config directory. It checks:
//   - JSON structure and required fields
//   - Grid consistency, size limits and difficulty values
//   - That the rod fits at the start position, so sessions can play it
//   - Solvability: whether the bottom-right corner can be reached at all
//
// Unsolvable mazes are reported as warnings, and as failures with --strict.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/rodmaze/game/engine"
)

var errInvalidConfigs = errors.New("some configurations have errors")

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	validStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// ValidationResult captures the outcome of validating a single file.
// Info is only filled in for files without errors.
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
	Info     []string
}

// Failed reports whether the file fails validation, counting warnings
// when strict is set
func (r ValidationResult) Failed(strict bool) bool {
	return !r.Valid || (strict && len(r.Warnings) > 0)
}

// validateConfig loads and validates a single maze file: structure first,
// then whether the rod fits at the start, then solvability.
func validateConfig(ctx context.Context, filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var config engine.MazeConfig
	if err := json.Unmarshal(data, &config); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	if err := engine.ValidateMazeConfig(&config); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	grid, err := engine.NewGrid(config.Layout)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	if !grid.Fits(engine.StartState) {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Start position %s overlaps a wall, sessions cannot play this maze", engine.StartState))
		return result
	}

	solvability := validateSolvability(ctx, grid)
	if !solvability.Valid {
		result.Valid = false
		result.Errors = append(result.Errors, solvability.Errors...)
		return result
	}
	result.Warnings = append(result.Warnings, solvability.Warnings...)

	result.Info = append(result.Info, fmt.Sprintf("✓ Name: %s", config.Name))
	result.Info = append(result.Info, fmt.Sprintf("✓ Grid: %dx%d", grid.Width(), grid.Height()))
	result.Info = append(result.Info, fmt.Sprintf("✓ Walls: %d (%.0f%%)", engine.CountWalls(grid), engine.WallDensity(grid)*100))
	result.Info = append(result.Info, solvability.Info...)

	return result
}

// validateSolvability checks the corner cells first, then runs the search
func validateSolvability(ctx context.Context, grid *engine.Grid) ValidationResult {
	result := ValidationResult{Valid: true}

	if len(engine.ReachableGoals(grid)) == 0 {
		result.Warnings = append(result.Warnings, "Unsolvable: no final position fits in the bottom-right corner")
		return result
	}

	res, err := engine.Search(ctx, grid)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Search failed: %v", err))
		return result
	}

	if !res.Solvable() {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Unsolvable: corner unreachable after exploring %d states", res.StatesVisited))
		return result
	}

	result.Info = append(result.Info, fmt.Sprintf("✓ Minimum moves: %d (%d states explored)", res.Moves, res.StatesVisited))
	return result
}

// validateDir validates every *.json file in dir and prints a report to w.
// It returns false when any file fails.
func validateDir(ctx context.Context, dir string, strict bool, w io.Writer) (bool, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return false, fmt.Errorf("failed to find config files: %w", err)
	}
	if len(files) == 0 {
		return false, fmt.Errorf("no *.json files in %s", dir)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(ctx, file)

		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), headerStyle.Render(result.File))

		if result.Failed(strict) {
			allValid = false
			fmt.Fprintln(w, errorStyle.Render("❌ INVALID"))
		} else {
			fmt.Fprintln(w, validStyle.Render("✅ VALID"))
		}
		for _, msg := range result.Errors {
			fmt.Fprintln(w, "  "+errorStyle.Render("❌ "+msg))
		}
		for _, msg := range result.Warnings {
			fmt.Fprintln(w, "  "+warnStyle.Render("⚠️  "+msg))
		}
		for _, msg := range result.Info {
			fmt.Fprintln(w, "  "+msg)
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, validStyle.Render("✅ All configurations are valid!"))
	} else {
		fmt.Fprintln(w, errorStyle.Render("❌ Some configurations have errors"))
	}
	return allValid, nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "check every maze file in a config directory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "../configs",
				Usage:   "directory of maze JSON files",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "treat unsolvable mazes as failures",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ok, err := validateDir(ctx, cmd.String("config-dir"), cmd.Bool("strict"), cmd.Root().Writer)
			if err != nil {
				return err
			}
			if !ok {
				return errInvalidConfigs
			}
			return nil
		},
	}
}

// main validates the config directory, exiting with non-zero status if any
// file is invalid.
func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Error("Validation failed", "err", err)
		os.Exit(1)
	}
}
