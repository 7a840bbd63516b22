package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/rodmaze/game/engine"
	"github.com/wricardo/mcp-training/rodmaze/game/service"
)

// Version is reported to MCP clients
const Version = "1.0.0"

// Client is a thin MCP front end that proxies every tool to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates an MCP server whose tools call the REST API at baseURL
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Rod Maze",
		Version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Rod Maze - MCP Interface

A rod three cells long sits in a grid maze of open (.) and blocked (#) cells.
It starts horizontal in the top-left corner and must reach the bottom-right
corner. Each slide or rotation is one move.

AVAILABLE TOOLS:
- solve_maze: Shortest move count for a layout or a catalog maze (-1 when unreachable)
- list_mazes: Catalog of mazes
- create_session: Start an interactive session
- move: Apply one action (west/east/north/south/rotate) - requires intent explanation
- reset_game: Put the rod back at the start
- session_state: Current board, legal moves and moves remaining
- move_history: Past attempts
- rules: Full movement rules

NOTE: The 'intent' parameter on move serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func (c *Client) registerTools() {
	sessionID := map[string]any{
		"type":        "string",
		"description": "Session ID",
	}

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solve_maze",
		Description: "Compute the minimum number of moves to bring the rod from the start to the bottom-right corner. Returns -1 when the corner cannot be reached.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"layout": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Maze rows using '.' for open and '#' for blocked cells",
				},
				"config_id": map[string]any{
					"type":        "string",
					"description": "Catalog maze to solve instead of a layout",
				},
			},
		},
	}, c.handleSolveMaze)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_mazes",
		Description: "List the mazes in the catalog",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListMazes)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new play session with optional maze selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"config_id": map[string]any{
					"type":        "string",
					"description": "Catalog maze to play (optional, defaults to classic)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Slide or rotate the rod",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionID,
				"action": map[string]any{
					"type":        "string",
					"enum":        []string{"west", "east", "north", "south", "rotate"},
					"description": "Action to apply",
				},
				"intent": map[string]any{
					"type":        "string",
					"description": "Why this move gets the rod closer to the corner",
				},
				"reset": map[string]any{
					"type":        "boolean",
					"description": "Reset the rod to the start before moving",
				},
			},
			Required: []string{"session_id", "action", "intent"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Put the rod back at the start and clear the move count",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionID},
			Required:   []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "session_state",
		Description: "Show the board, the rod, the legal moves and the optimal moves remaining",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionID},
			Required:   []string{"session_id"},
		},
	}, c.handleSessionState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get paginated move history, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionID,
				"page": map[string]any{
					"type":        "number",
					"description": "Page number (default 1)",
				},
				"limit": map[string]any{
					"type":        "number",
					"description": "Entries per page (default 20)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "rules",
		Description: "Explain how the rod moves and what counts as solved",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleRules)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

func (c *Client) apiCall(ctx context.Context, method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func arguments(request mcp.CallToolRequest) map[string]any {
	args, _ := request.Params.Arguments.(map[string]any)
	if args == nil {
		return map[string]any{}
	}
	return args
}

func sessionPath(args map[string]any, suffix string) (string, error) {
	id, _ := args["session_id"].(string)
	if id == "" {
		return "", fmt.Errorf("session_id is required")
	}
	return "/api/sessions/" + url.PathEscape(id) + suffix, nil
}

// Tool handlers

func (c *Client) handleSolveMaze(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]any{}
	if raw, ok := args["layout"].([]any); ok && len(raw) > 0 {
		layout := make([]string, 0, len(raw))
		for _, row := range raw {
			s, ok := row.(string)
			if !ok {
				return mcp.NewToolResultError("layout rows must be strings"), nil
			}
			layout = append(layout, s)
		}
		body["layout"] = layout
	} else if id, _ := args["config_id"].(string); id != "" {
		body["config_id"] = id
	} else {
		return mcp.NewToolResultError("provide either layout or config_id"), nil
	}

	var report service.SolveReport
	if err := c.apiCall(ctx, "POST", "/api/solve", body, &report); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSolveReport(&report)), nil
}

func (c *Client) handleListMazes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/mazes", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Mazes:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n", config.Name, config.ConfigID)
		if config.Description != "" {
			fmt.Fprintf(&b, "  %s\n", config.Description)
		}
		fmt.Fprintf(&b, "  Grid: %dx%d", config.Width, config.Height)
		if config.Difficulty != "" {
			fmt.Fprintf(&b, ", Difficulty: %s", config.Difficulty)
		}
		b.WriteString("\n\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]string{}
	if id, _ := args["config_id"].(string); id != "" {
		body["config_id"] = id
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/move")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	action, _ := args["action"].(string)
	reset, _ := args["reset"].(bool)
	// intent is only for the caller's benefit

	body := map[string]any{
		"action": action,
		"reset":  reset,
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", path, body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/reset")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Message string           `json:"message"`
		State   engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(response.Message + "\n\n" + formatGameState(&response.State)), nil
}

func (c *Client) handleSessionState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", path, nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/history")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	query := url.Values{}
	if page, ok := args["page"].(float64); ok {
		query.Set("page", fmt.Sprint(int(page)))
	}
	if limit, ok := args["limit"].(float64); ok {
		query.Set("limit", fmt.Sprint(int(limit)))
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(rules), nil
}

const rules = `Rod Maze - Rules

BOARD:
• The maze is a rectangle of cells: '.' is open, '#' is blocked
• x grows to the right (columns), y grows downward (rows), both from 0

THE ROD:
• The rod covers three cells in a line, centred on its anchor (x,y)
• Horizontal: (x-1,y) (x,y) (x+1,y)
• Vertical: (x,y-1) (x,y) (x,y+1)
• It starts horizontal at (1,0), covering the three top-left cells

MOVES (each costs one move):
• west/east/north/south: slide one cell; every cell the rod lands on must be open and inside the grid
• rotate: turn 90 degrees about the anchor; the whole 3x3 block around the anchor must be open and inside the grid

GOAL:
• The rod's far end reaches the bottom-right cell:
  horizontal at (width-2, height-1) or vertical at (width-1, height-2)
• Some mazes cannot be solved; solve_maze reports -1 for them

TIPS:
• session_state shows the legal moves and how many moves an optimal player still needs
• Rotation needs a clear 3x3 area, so plan turns where the maze is open`

func formatSolveReport(report *service.SolveReport) string {
	var b strings.Builder
	if report.ConfigID != "" {
		fmt.Fprintf(&b, "Maze: %s\n", report.ConfigID)
	}
	fmt.Fprintf(&b, "Grid: %dx%d\n", report.Width, report.Height)
	if report.Solvable {
		fmt.Fprintf(&b, "Minimum moves: %d\n", report.Moves)
	} else {
		b.WriteString("Minimum moves: -1 (the corner cannot be reached)\n")
	}
	fmt.Fprintf(&b, "States explored: %d over %d levels", report.StatesVisited, report.Levels)
	if report.Cached {
		b.WriteString(" (cached)")
	}
	return b.String()
}

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nMaze: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Rod: %s | Moves: %d | Attempts: %d\n\n", state.Rod, state.Moves, state.TotalMoves)
	b.WriteString(renderBoard(state))

	if state.Solved {
		b.WriteString("\n🎉 SOLVED!")
	}
	if state.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s", state.Message)
	}
	return b.String()
}

// renderBoard draws the layout with the rod as '=' (horizontal) or '|'
// (vertical) and the goal cell as '*' when uncovered
func renderBoard(state *engine.GameState) string {
	if len(state.Layout) == 0 {
		return ""
	}

	rod := make(map[engine.Position]bool, len(state.RodCells))
	for _, p := range state.RodCells {
		rod[p] = true
	}
	mark := '='
	if state.Rod.Orientation == engine.Vertical {
		mark = '|'
	}

	var b strings.Builder
	for y, row := range state.Layout {
		for x, cell := range row {
			switch {
			case rod[engine.Position{X: x, Y: y}]:
				b.WriteRune(mark)
			case x == state.Width-1 && y == state.Height-1:
				b.WriteRune('*')
			default:
				b.WriteRune(cell)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Success {
		fmt.Fprintf(&b, "✓ %s: %s → %s\n", result.Action.Name(), result.From, result.To)
	} else {
		fmt.Fprintf(&b, "✗ %s blocked at %s\n", result.Action.Name(), result.From)
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	names := make([]string, len(result.PossibleMoves))
	for i, a := range result.PossibleMoves {
		names[i] = a.Name()
	}
	fmt.Fprintf(&b, "Legal moves: %s\n", strings.Join(names, ", "))
	if result.MovesRemaining >= 0 {
		fmt.Fprintf(&b, "Optimal moves remaining: %d\n", result.MovesRemaining)
	} else {
		b.WriteString("Optimal moves remaining: none (the corner is unreachable from here)\n")
	}

	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d, %d attempts):\n\n", history.Page, history.TotalPages, history.TotalMoves)
	for _, m := range history.Moves {
		status := "✓"
		if !m.Success {
			status = "✗"
		}
		fmt.Fprintf(&b, "#%d %s %s %s → %s\n", m.MoveNumber, status, m.Action, m.From, m.To)
	}
	if history.HasNext {
		fmt.Fprintf(&b, "\nMore history on page %d", history.Page+1)
	}
	return b.String()
}
