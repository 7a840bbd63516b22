// Package service provides the business logic layer for the rod maze.
//
// The service package implements:
//   - Multi-session interactive play
//   - Solving catalog mazes and ad-hoc layouts, with cached reports
//   - Move processing with decision aids (possible moves, distance left)
//   - Paginated move history
//
// Core Interfaces:
//
// MazeService is the main interface used by every transport (REST, WebSocket
// and MCP). SessionManager stores sessions and ConfigManager reads the maze
// catalog; both are implemented in sibling packages and injected here.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	svc := service.NewMazeService(sessionMgr, configMgr,
//		service.WithCache(cache.NewNullCache(), service.DefaultSolveTTL))
//
//	report, err := svc.Solve(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(report.Moves)
//
// Errors:
//
// Failures carry one of the sentinel errors in this package (ErrSessionNotFound,
// ErrConfigNotFound, ErrInvalidConfig, ErrInvalidLayout, ErrInvalidAction) so
// callers can map them with errors.Is. An unsolvable maze is not an error: the
// report has Moves == -1.
package service
