package service

import (
	"time"

	"github.com/wricardo/stackquest/game/engine"
)

// MaxTicksPerMove bounds a single Move call.
const MaxTicksPerMove = 120

// Stop reason codes reported by Move.
const (
	StopCompleted = "completed"
	StopBlocked   = "blocked"
	StopDead      = "dead"
	StopAdvanced  = "level_advanced"
	StopCleared   = "cleared"
	StopQuit      = "quit"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string           `json:"id"`
	PackID         string           `json:"pack_id"`
	PackName       string           `json:"pack_name"`
	CreatedAt      time.Time        `json:"created_at"`
	LastAccessedAt time.Time        `json:"last_accessed_at"`
	Snapshot       *engine.Snapshot `json:"snapshot"`
}

// MoveRequest asks for one or more ticks of held input. The direction comes
// from Keys, then Direction, then the raw DX/DY vector.
type MoveRequest struct {
	Direction string   `json:"direction,omitempty"`
	Keys      []string `json:"keys,omitempty"`
	DX        float64  `json:"dx,omitempty"`
	DY        float64  `json:"dy,omitempty"`
	Ticks     int      `json:"ticks,omitempty"` // defaults to 1
	Reset     bool     `json:"reset,omitempty"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	TicksRequested int              `json:"ticks_requested"`
	TicksExecuted  int              `json:"ticks_executed"`
	Truncated      bool             `json:"truncated,omitempty"`
	Limit          int              `json:"limit,omitempty"`
	Direction      engine.Vector    `json:"direction"`
	Moved          bool             `json:"moved"`
	StartPosition  engine.Vector    `json:"start_position"`
	EndPosition    engine.Vector    `json:"end_position"`
	Events         []GameEvent      `json:"events"`
	StopReasonCode string           `json:"stop_reason_code"`
	StoppedReason  string           `json:"stopped_reason,omitempty"`
	Message        string           `json:"message"`
	Snapshot       *engine.Snapshot `json:"snapshot"`
}

// GameEvent is an engine event stamped with the tick and time it happened.
type GameEvent struct {
	engine.Event
	Tick      uint64    `json:"tick"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryOptions configures event history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated event history
type HistoryResponse struct {
	Events      []GameEvent `json:"events"`
	TotalEvents int         `json:"total_events"`
	Dropped     int         `json:"dropped"`
	Page        int         `json:"page"`
	PageSize    int         `json:"page_size"`
	TotalPages  int         `json:"total_pages"`
	HasNext     bool        `json:"has_next"`
	HasPrevious bool        `json:"has_previous"`
}

// PackInfo provides information about a level pack
type PackInfo struct {
	PackID      string  `json:"pack_id"` // The identifier to use for session creation
	Name        string  `json:"name"`    // Display name
	Description string  `json:"description"`
	Levels      int     `json:"levels"`
	Capacity    int     `json:"capacity"`
	Speed       float64 `json:"speed"`
	HalfSize    float64 `json:"half_size"`
	Source      string  `json:"source"` // "builtin" or "disk"
}
