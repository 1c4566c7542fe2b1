package service

import (
	"context"
	"time"

	"github.com/wricardo/stackquest/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, packID string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Move(ctx context.Context, sessionID string, req MoveRequest) (*MoveResult, error)
	SubmitDirection(ctx context.Context, sessionID string, dir engine.Vector) error
	Tick(ctx context.Context, sessionID string) (*MoveResult, error)
	RequestReset(ctx context.Context, sessionID string) error
	RequestQuit(ctx context.Context, sessionID string) error
	Reset(ctx context.Context, sessionID string) (*MoveResult, error)
	Quit(ctx context.Context, sessionID string) (*MoveResult, error)
	SetCapacity(ctx context.Context, sessionID string, capacity int) (*engine.Snapshot, error)

	// Game State
	GetSnapshot(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Packs
	ListPacks(ctx context.Context) ([]*PackInfo, error)
	LoadPack(ctx context.Context, packID string) (*engine.Pack, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, pack *engine.Pack) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, pack *engine.Pack) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// PackManager handles level pack loading
type PackManager interface {
	LoadPack(id string) (*engine.Pack, error)
	ListPacks() ([]*PackInfo, error)
	GetDefault() *engine.Pack
}

// Session represents an active game session
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Pack           *engine.Pack
	History        *EventLog
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
