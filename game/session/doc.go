// Package session manages interactive play sessions.
//
// Each session owns one engine.RodEngine on a catalog maze, identified by a
// short case-insensitive ID. Generated IDs are 4 hex characters from
// crypto/rand, retried on collision.
//
// Persistence is optional. With a FilePersistence every change is written to
// <sessions-dir>/<id>.json:
//
//	{
//	  "id": "3fa1",
//	  "config_name": "classic",
//	  "created_at": "...",
//	  "last_accessed_at": "...",
//	  "game_state": {"rod": {"x": 1, "y": 0, "orientation": "horizontal"}, ...}
//	}
//
// Sessions evicted from memory by CleanupExpiredSessions stay on disk and are
// loaded again by Get.
//
// Usage:
//
//	fp, _ := session.NewFilePersistence("sessions", configs)
//	manager := session.NewManagerWithPersistence(fp)
//	_ = manager.LoadPersistedSessions()
//
//	sess, err := manager.Create("", maze)
package session
