// Package api exposes the maze service over HTTP.
//
// Endpoints:
//
// Solving:
//   - POST /api/solve - Solve a layout ({"layout": [...]}) or a catalog maze ({"config_id": "..."})
//   - GET /api/mazes/{name}/solve - Solve a catalog maze
//
// Catalog:
//   - GET /api/mazes - List mazes
//   - POST /api/mazes - Save a maze
//   - GET /api/mazes/{name} - Get one maze
//
// Sessions:
//   - POST /api/sessions - Create a session ({"config_id": "classic"})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Play:
//   - GET /api/sessions/{id}/state - Current game state
//   - POST /api/sessions/{id}/move - Apply an action ({"action": "south"})
//   - POST /api/sessions/{id}/reset - Put the rod back at the start
//   - GET /api/sessions/{id}/history - Paginated attempts (?page=&limit=&order=)
//
// Other:
//   - GET /api/health
//   - GET /ws?session={id} - WebSocket updates for one session
//
// Errors are returned as {"error": "..."}. Unknown sessions and mazes are 404,
// malformed layouts, actions and mazes are 400.
package api
