// Package session stores Stack Quest game sessions.
//
// Manager keeps live sessions in memory, keyed case-insensitively, and
// optionally mirrors them to a SessionPersistence backend. Two backends are
// provided: FilePersistence writes one JSON file per session and
// SQLitePersistence keeps one row per session in a SQLite database.
//
// A persisted session records the pack ID, the engine's SavedGame and the
// event history. Loading resolves the pack again through a
// service.PackManager, so a session whose pack has been removed cannot be
// restored.
//
// Usage:
//
//	packs, _ := config.NewManager("packs")
//	store, err := session.NewSQLitePersistence("data/sessions.db", packs)
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(store, logger)
//	if err := manager.LoadPersistedSessions(); err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err := manager.Create("", packs.GetDefault())
package session
