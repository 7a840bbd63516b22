// Package websocket pushes session updates to browsers and other watchers.
//
// A single Hub goroutine owns the client sets. Clients attach to one session
// through GET /ws?session=<id>; after every move or reset the API calls
// BroadcastToSession and each attached client receives a Message:
//
//	{"session_id": "a1b2", "event": "state_update", "game_state": {...}}
//
// Client input is read only to service pings and detect disconnects.
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
