// Package engine provides the core search logic for the rod maze.
//
// A rigid rod three cells long lies on a rectangular grid whose walls are
// marked '#'. It starts centred one cell right of the top-left corner, lying
// along the top row, and must reach the bottom-right corner. Each move slides
// the rod one cell west, east, north or south, or rotates it a quarter turn
// about its centre.
//
// The engine package implements:
//   - RodState, the comparable value type for one search node
//   - Move generation from the wall pattern around the rod
//   - Level-by-level breadth-first search with a visited set
//   - Grid validation and maze configuration loading
//   - RodEngine, an interactive wrapper used by play sessions
//
// Usage:
//
//	moves, err := engine.Solve([]string{
//		".....",
//		".....",
//		".....",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	// moves == engine.NoSolution when the corner cannot be reached
//
// Search exposes the same driver with a context, a custom start state, a
// move limit and a per-level observer.
package engine
