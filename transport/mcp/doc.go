// Package mcp exposes the maze over the Model Context Protocol.
//
// Client wraps an mcp-go server whose tools are thin proxies to the REST API,
// so the same server works over stdio and behind the HTTP /mcp endpoint:
//   - solve_maze: minimum moves for a layout or a catalog maze
//   - list_mazes: maze catalog
//   - create_session, move, reset_game, session_state, move_history: play
//   - rules: movement rules as text
//
// Results are plain text with the board drawn row by row, the rod shown as
// '=' or '|' and the goal cell as '*'.
package mcp
