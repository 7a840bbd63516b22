package mcp

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wricardo/mcp-training/rodmaze/api"
	"github.com/wricardo/mcp-training/rodmaze/game/config"
	"github.com/wricardo/mcp-training/rodmaze/game/engine"
	"github.com/wricardo/mcp-training/rodmaze/game/service"
	"github.com/wricardo/mcp-training/rodmaze/game/session"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	configs, err := config.NewManager("../../configs")
	if err != nil {
		t.Fatalf("config.NewManager: %v", err)
	}
	svc := service.NewMazeService(session.NewManager(), configs)
	server := httptest.NewServer(api.NewServer(svc, nil))
	t.Cleanup(server.Close)

	return NewClient(server.URL)
}

func call(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("Expected content in result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("Expected text content, got %T", result.Content[0])
	}
	return text.Text
}

var sessionLine = regexp.MustCompile(`Session: ([0-9a-f]{4})`)

func createSession(t *testing.T, client *Client, configID string) string {
	t.Helper()
	result, err := client.handleCreateSession(context.Background(), call(map[string]any{"config_id": configID}))
	if err != nil {
		t.Fatalf("create_session: %v", err)
	}
	text := resultText(t, result)
	m := sessionLine.FindStringSubmatch(text)
	if m == nil {
		t.Fatalf("No session ID in %q", text)
	}
	return m[1]
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	if client.baseURL != "http://localhost:8080" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestToolsList(t *testing.T) {
	client := NewClient("http://localhost:0")
	ctx := context.Background()

	client.GetMCPServer().HandleMessage(ctx, []byte(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1"}}}`))
	resp := client.GetMCPServer().HandleMessage(ctx, []byte(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`))

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for _, name := range []string{"solve_maze", "list_mazes", "create_session", "move", "reset_game", "session_state", "move_history", "rules"} {
		if !strings.Contains(string(data), `"name":"`+name+`"`) {
			t.Errorf("Expected tool %s in tools/list", name)
		}
	}
}

func TestSolveMaze(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"layout", map[string]any{"layout": []any{"...", "...", "..."}}, "Minimum moves: 2"},
		{"catalog maze", map[string]any{"config_id": "classic"}, "Minimum moves: 14"},
		{"unsolvable", map[string]any{"config_id": "walled_corner"}, "Minimum moves: -1"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result, err := client.handleSolveMaze(ctx, call(test.args))
			if err != nil {
				t.Fatalf("solve_maze: %v", err)
			}
			if result.IsError {
				t.Fatalf("Unexpected tool error: %s", resultText(t, result))
			}
			if text := resultText(t, result); !strings.Contains(text, test.want) {
				t.Errorf("Expected %q in %q", test.want, text)
			}
		})
	}

	t.Run("missing arguments", func(t *testing.T) {
		result, _ := client.handleSolveMaze(ctx, call(map[string]any{}))
		if !result.IsError {
			t.Error("Expected a tool error")
		}
	})

	t.Run("bad layout", func(t *testing.T) {
		result, _ := client.handleSolveMaze(ctx, call(map[string]any{"layout": []any{"..", ".."}}))
		if !result.IsError {
			t.Error("Expected a tool error")
		}
	})

	t.Run("non-string rows", func(t *testing.T) {
		result, _ := client.handleSolveMaze(ctx, call(map[string]any{"layout": []any{"...", 7}}))
		if !result.IsError {
			t.Error("Expected a tool error")
		}
	})
}

func TestListMazes(t *testing.T) {
	client := newTestClient(t)

	result, err := client.handleListMazes(context.Background(), call(nil))
	if err != nil {
		t.Fatalf("list_mazes: %v", err)
	}
	text := resultText(t, result)
	for _, want := range []string{"config_id: classic", "Grid: 9x9", "config_id: rubble"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in %q", want, text)
		}
	}
}

func TestPlayThroughTools(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	id := createSession(t, client, "open_room")

	move := func(action string) string {
		t.Helper()
		result, err := client.handleMove(ctx, call(map[string]any{
			"session_id": id,
			"action":     action,
			"intent":     "head for the corner",
		}))
		if err != nil {
			t.Fatalf("move: %v", err)
		}
		if result.IsError {
			t.Fatalf("move %s: %s", action, resultText(t, result))
		}
		return resultText(t, result)
	}

	text := move("north")
	if !strings.Contains(text, "✗ north blocked") {
		t.Errorf("Expected a blocked move, got %q", text)
	}
	if !strings.Contains(text, "Optimal moves remaining: 6") {
		t.Errorf("Expected 6 moves remaining, got %q", text)
	}

	for _, action := range []string{"south", "south", "south", "south", "east"} {
		move(action)
	}
	text = move("east")
	if !strings.Contains(text, "SOLVED") {
		t.Errorf("Expected the maze to be solved, got %q", text)
	}

	state, _ := client.handleSessionState(ctx, call(map[string]any{"session_id": id}))
	board := resultText(t, state)
	if !strings.Contains(board, "..===\n") {
		t.Errorf("Expected the rod drawn on the bottom row, got %q", board)
	}

	history, _ := client.handleMoveHistory(ctx, call(map[string]any{"session_id": id, "limit": float64(3)}))
	if text := resultText(t, history); !strings.Contains(text, "7 attempts") || !strings.Contains(text, "More history on page 2") {
		t.Errorf("Unexpected history: %q", text)
	}

	reset, _ := client.handleReset(ctx, call(map[string]any{"session_id": id}))
	if text := resultText(t, reset); !strings.Contains(text, "Moves: 0") || !strings.Contains(text, "===..\n") {
		t.Errorf("Expected a fresh board after reset, got %q", text)
	}
}

func TestToolErrors(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	tests := []struct {
		name string
		run  func() (*mcp.CallToolResult, error)
	}{
		{"move without session", func() (*mcp.CallToolResult, error) {
			return client.handleMove(ctx, call(map[string]any{"action": "east"}))
		}},
		{"move on unknown session", func() (*mcp.CallToolResult, error) {
			return client.handleMove(ctx, call(map[string]any{"session_id": "zzzz", "action": "east"}))
		}},
		{"unknown action", func() (*mcp.CallToolResult, error) {
			id := createSession(t, client, "classic")
			return client.handleMove(ctx, call(map[string]any{"session_id": id, "action": "jump"}))
		}},
		{"unknown maze", func() (*mcp.CallToolResult, error) {
			return client.handleCreateSession(ctx, call(map[string]any{"config_id": "nope"}))
		}},
		{"state of unknown session", func() (*mcp.CallToolResult, error) {
			return client.handleSessionState(ctx, call(map[string]any{"session_id": "zzzz"}))
		}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result, err := test.run()
			if err != nil {
				t.Fatalf("Tool errors are reported in the result, got %v", err)
			}
			if !result.IsError {
				t.Errorf("Expected a tool error, got %q", resultText(t, result))
			}
		})
	}
}

func TestRules(t *testing.T) {
	result, err := NewClient("http://localhost:0").handleRules(context.Background(), call(nil))
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	if text := resultText(t, result); !strings.Contains(text, "3x3 block around the anchor") {
		t.Errorf("Unexpected rules text: %q", text)
	}
}

func TestRenderBoard(t *testing.T) {
	eng, err := engine.NewEngine(&engine.MazeConfig{Name: "t", Layout: []string{"....", "....", "...."}})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	want := "===.\n....\n...*\n"
	if got := renderBoard(eng.GetState()); got != want {
		t.Errorf("renderBoard =\n%s\nwant\n%s", got, want)
	}

	eng.Move(engine.South)
	eng.Move(engine.Rotate)
	want = ".|..\n.|..\n.|.*\n"
	if got := renderBoard(eng.GetState()); got != want {
		t.Errorf("renderBoard after rotation =\n%s\nwant\n%s", got, want)
	}
}
