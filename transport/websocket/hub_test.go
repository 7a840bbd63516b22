package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/mcp-training/rodmaze/game/engine"
)

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub()

	client1 := &Client{hub: hub, sessionID: "ab12", send: make(chan []byte, 1)}
	client2 := &Client{hub: hub, sessionID: "AB12", send: make(chan []byte, 1)}

	hub.registerClient(client1)
	hub.registerClient(client2)
	if got := len(hub.sessions["ab12"]); got != 2 {
		t.Fatalf("Expected 2 clients under one session, got %d", got)
	}

	hub.unregisterClient(client1)
	if _, ok := <-client1.send; ok {
		t.Error("Expected the send channel to be closed")
	}
	if got := len(hub.sessions["ab12"]); got != 1 {
		t.Errorf("Expected 1 client remaining, got %d", got)
	}

	hub.unregisterClient(client2)
	if _, exists := hub.sessions["ab12"]; exists {
		t.Error("Session should be removed after the last client leaves")
	}

	// Unregistering twice is harmless
	hub.unregisterClient(client2)
}

func TestHubBroadcastMessage(t *testing.T) {
	hub := NewHub()

	watcher := &Client{hub: hub, sessionID: "s1", send: make(chan []byte, 1)}
	other := &Client{hub: hub, sessionID: "s2", send: make(chan []byte, 1)}
	hub.registerClient(watcher)
	hub.registerClient(other)

	hub.broadcastMessage(&Message{SessionID: "S1", Event: EventReset})

	select {
	case data := <-watcher.send:
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if msg.Event != EventReset {
			t.Errorf("Expected event %q, got %q", EventReset, msg.Event)
		}
	default:
		t.Error("Expected the watcher to receive the message")
	}

	select {
	case <-other.send:
		t.Error("Client of another session should not receive the message")
	default:
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub()
	slow := &Client{hub: hub, sessionID: "s1", send: make(chan []byte)}
	hub.registerClient(slow)

	hub.broadcastMessage(&Message{SessionID: "s1", Event: EventStateUpdate})

	if _, exists := hub.sessions["s1"]; exists {
		t.Error("Expected the blocked client to be dropped")
	}
}

func dial(t *testing.T, hub *Hub, sessionID string) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?session=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, sessionID string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount(sessionID) != want {
		if time.Now().After(deadline) {
			t.Fatalf("Expected %d clients for %s, got %d", want, sessionID, hub.ClientCount(sessionID))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubEndToEnd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)

	conn := dial(t, hub, "a1b2")
	waitForClients(t, hub, "a1b2", 1)

	eng := engine.NewEngineWithDefaults()
	eng.Move(engine.South)
	hub.BroadcastToSession("a1b2", eng.GetState())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}

	if msg.SessionID != "a1b2" || msg.Event != EventStateUpdate {
		t.Errorf("Unexpected message header: %+v", msg)
	}
	if msg.GameState == nil || msg.GameState.Rod != engine.NewRodState(1, 1, engine.Horizontal) {
		t.Errorf("Unexpected game state: %+v", msg.GameState)
	}
}

func TestHubSolvedEvent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)

	conn := dial(t, hub, "c3d4")
	waitForClients(t, hub, "c3d4", 1)

	hub.BroadcastToSession("c3d4", &engine.GameState{Solved: true})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if msg.Event != EventSolved {
		t.Errorf("Expected event %q, got %q", EventSolved, msg.Event)
	}
}

func TestHubClientDisconnect(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)

	conn := dial(t, hub, "e5f6")
	waitForClients(t, hub, "e5f6", 1)

	conn.Close()
	waitForClients(t, hub, "e5f6", 0)
}

func TestHubShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)

	conn := dial(t, hub, "0a0b")
	waitForClients(t, hub, "0a0b", 1)

	cancel()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("Expected the connection to close on shutdown")
	}
	if got := hub.ClientCount("0a0b"); got != 0 {
		t.Errorf("Expected 0 clients after shutdown, got %d", got)
	}

	// Broadcasting after shutdown must not block
	hub.BroadcastEvent("0a0b", EventReset, nil)
}
