package session

import (
	"fmt"
	"time"

	"github.com/wricardo/stackquest/game/engine"
	"github.com/wricardo/stackquest/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData represents the JSON structure for persisted sessions
type PersistedSessionData struct {
	ID             string              `json:"id"`
	PackID         string              `json:"pack_id"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	Game           *engine.SavedGame   `json:"game"`
	History        []service.GameEvent `json:"history,omitempty"`
	HistoryDropped int                 `json:"history_dropped,omitempty"`
}

func encodeSession(sess *service.Session) *PersistedSessionData {
	data := &PersistedSessionData{
		ID:             sess.ID,
		PackID:         sess.Pack.ID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Game:           sess.Engine.Save(),
	}
	if sess.History != nil {
		data.History = sess.History.Events()
		data.HistoryDropped = sess.History.Dropped()
	}
	return data
}

// decodeSession rebuilds a live session, resolving its pack through packs.
func decodeSession(data *PersistedSessionData, packs service.PackManager) (*service.Session, error) {
	if data.Game == nil {
		return nil, fmt.Errorf("persisted session %s has no game", data.ID)
	}

	pack, err := packs.LoadPack(data.PackID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pack '%s': %w", data.PackID, err)
	}

	eng, err := engine.Restore(pack.Levels, pack.Rules, data.Game)
	if err != nil {
		return nil, fmt.Errorf("failed to restore game: %w", err)
	}

	history := service.NewEventLog(0)
	history.Restore(data.History, data.HistoryDropped)

	return &service.Session{
		ID:             data.ID,
		Engine:         eng,
		Pack:           pack,
		History:        history,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}
