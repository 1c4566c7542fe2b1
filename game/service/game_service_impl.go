package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/wricardo/stackquest/game/engine"
)

var (
	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidTicks     = errors.New("invalid tick count")
	ErrPackNotFound     = errors.New("pack not found")
	ErrSessionNotFound  = errors.New("session not found")
)

// gameServiceImpl implements the GameService interface. A single mutex
// serialises every engine mutation across sessions.
type gameServiceImpl struct {
	sessions SessionManager
	packs    PackManager
	logger   *log.Logger
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, packs PackManager, logger *log.Logger) GameService {
	if logger == nil {
		logger = log.Default()
	}
	return &gameServiceImpl{
		sessions: sessions,
		packs:    packs,
		logger:   logger,
	}
}

func sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		PackID:         sess.Pack.ID,
		PackName:       sess.Pack.Manifest.Name,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Snapshot:       sess.Engine.Snapshot(),
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, packID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pack *engine.Pack
	if packID != "" {
		var err error
		pack, err = s.packs.LoadPack(packID)
		if err != nil {
			if errors.Is(err, ErrPackNotFound) {
				return nil, fmt.Errorf("pack '%s' not found, available packs: %v: %w", packID, s.packIDs(), err)
			}
			return nil, fmt.Errorf("failed to load pack %s: %w", packID, err)
		}
	} else {
		pack = s.packs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", pack)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("session created", "session", sess.ID, "pack", pack.ID)
	return sessionInfo(sess), nil
}

func (s *gameServiceImpl) packIDs() []string {
	packs, err := s.packs.ListPacks()
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(packs))
	for _, p := range packs {
		ids = append(ids, p.PackID)
	}
	return ids
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.touch(sessionID)
	return sessionInfo(sess), nil
}

// ListSessions returns all active sessions, oldest first
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	s.logger.Info("session deleted", "session", sessionID)
	return nil
}

// ResolveDirection turns a MoveRequest into an input vector.
func ResolveDirection(req MoveRequest) (engine.Vector, error) {
	switch {
	case len(req.Keys) > 0:
		v, err := engine.DirectionFromKeys(req.Keys...)
		if err != nil {
			return engine.Vector{}, fmt.Errorf("%w: %v", ErrInvalidDirection, err)
		}
		return v, nil
	case req.Direction != "":
		v, err := engine.ParseDirection(req.Direction)
		if err != nil {
			return engine.Vector{}, fmt.Errorf("%w: %v", ErrInvalidDirection, err)
		}
		return v.Clamp(), nil
	default:
		return engine.Vector{X: req.DX, Y: req.DY}.Clamp(), nil
	}
}

// Move resolves up to req.Ticks ticks of the requested direction. It stops
// early when the player is blocked, dies, changes level or quits.
func (s *gameServiceImpl) Move(ctx context.Context, sessionID string, req MoveRequest) (*MoveResult, error) {
	dir, err := ResolveDirection(req)
	if err != nil {
		return nil, err
	}
	if req.Ticks < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTicks, req.Ticks)
	}
	if req.Ticks == 0 {
		req.Ticks = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.touch(sessionID)

	if req.Reset {
		sess.Engine.RequestReset()
	}

	result := &MoveResult{
		TicksRequested: req.Ticks,
		Direction:      dir,
		StartPosition:  sess.Engine.Snapshot().PlayerPosition,
		Events:         make([]GameEvent, 0),
	}
	ticks := req.Ticks
	if ticks > MaxTicksPerMove {
		result.Truncated = true
		result.Limit = MaxTicksPerMove
		ticks = MaxTicksPerMove
	}

	err = s.run(ctx, sess, dir, ticks, result)
	s.persist(sessionID, "move")
	if err != nil {
		return nil, err
	}
	return result, nil
}

// run resolves up to n ticks of dir into result.
func (s *gameServiceImpl) run(ctx context.Context, sess *Session, dir engine.Vector, n int, result *MoveResult) error {
	result.StopReasonCode = StopCompleted
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := sess.Engine.ResolveTick(dir)
		if err != nil {
			s.logger.Error("tick failed", "session", sess.ID, "err", err)
			return fmt.Errorf("tick failed: %w", err)
		}
		result.TicksExecuted++
		result.Moved = result.Moved || res.Moved
		result.Events = append(result.Events, s.record(sess, res)...)

		if code, reason := stopReason(sess.Engine.Snapshot(), res, dir); code != "" {
			result.StopReasonCode = code
			result.StoppedReason = reason
			break
		}
	}

	snap := sess.Engine.Snapshot()
	result.EndPosition = snap.PlayerPosition
	result.Message = snap.StatusMessage
	result.Snapshot = snap
	return nil
}

func stopReason(snap *engine.Snapshot, res *engine.TickResult, dir engine.Vector) (string, string) {
	switch {
	case snap.Quit:
		return StopQuit, "the game has quit"
	case snap.GameState == engine.Dead:
		return StopDead, snap.StatusMessage
	case snap.GameState == engine.Cleared:
		return StopCleared, snap.StatusMessage
	case res.Transition == engine.RequestAdvance:
		return StopAdvanced, snap.StatusMessage
	case !dir.IsZero() && !res.Moved:
		return StopBlocked, snap.StatusMessage
	}
	return "", ""
}

// record stamps tick events and appends them to the session history.
func (s *gameServiceImpl) record(sess *Session, res *engine.TickResult) []GameEvent {
	if len(res.Events) == 0 {
		return nil
	}
	now := time.Now()
	events := make([]GameEvent, len(res.Events))
	for i, ev := range res.Events {
		events[i] = GameEvent{Event: ev, Tick: res.Tick, Timestamp: now}
		s.logger.Debug("game event", "session", sess.ID, "tick", res.Tick, "kind", ev.Kind, "cell", ev.Cell)
	}
	sess.History.Append(events...)
	return events
}

// SubmitDirection sets the held direction used by Tick.
func (s *gameServiceImpl) SubmitDirection(ctx context.Context, sessionID string, dir engine.Vector) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return fmt.Errorf("session %s: %w", sessionID, err)
	}
	sess.Engine.SubmitDirection(dir)
	return nil
}

// Tick resolves a single tick with the held direction.
func (s *gameServiceImpl) Tick(ctx context.Context, sessionID string) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	dir := sess.Engine.Direction()
	result := &MoveResult{
		TicksRequested: 1,
		Direction:      dir,
		StartPosition:  sess.Engine.Snapshot().PlayerPosition,
		Events:         make([]GameEvent, 0),
	}
	if err := s.run(ctx, sess, dir, 1, result); err != nil {
		return nil, err
	}
	return result, nil
}

// RequestReset queues a reset for the next tick.
func (s *gameServiceImpl) RequestReset(ctx context.Context, sessionID string) error {
	return s.request(sessionID, (*engine.GameEngine).RequestReset)
}

// RequestQuit queues a quit for the next tick.
func (s *gameServiceImpl) RequestQuit(ctx context.Context, sessionID string) error {
	return s.request(sessionID, (*engine.GameEngine).RequestQuit)
}

func (s *gameServiceImpl) request(sessionID string, fn func(*engine.GameEngine)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return fmt.Errorf("session %s: %w", sessionID, err)
	}
	fn(sess.Engine)
	return nil
}

// Reset reloads the current level and resolves the tick that applies it.
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*MoveResult, error) {
	return s.applyNow(ctx, sessionID, "reset", (*engine.GameEngine).RequestReset)
}

// Quit stops the game and resolves the tick that applies it.
func (s *gameServiceImpl) Quit(ctx context.Context, sessionID string) (*MoveResult, error) {
	return s.applyNow(ctx, sessionID, "quit", (*engine.GameEngine).RequestQuit)
}

func (s *gameServiceImpl) applyNow(ctx context.Context, sessionID, op string, fn func(*engine.GameEngine)) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.touch(sessionID)

	fn(sess.Engine)
	result := &MoveResult{
		TicksRequested: 1,
		StartPosition:  sess.Engine.Snapshot().PlayerPosition,
		Events:         make([]GameEvent, 0),
	}
	err = s.run(ctx, sess, engine.Vector{}, 1, result)
	s.persist(sessionID, op)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetCapacity changes the backpack capacity of a running game.
func (s *gameServiceImpl) SetCapacity(ctx context.Context, sessionID string, capacity int) (*engine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	if err := sess.Engine.SetCapacity(capacity); err != nil {
		return nil, err
	}
	s.persist(sessionID, "set capacity")
	return sess.Engine.Snapshot(), nil
}

// GetSnapshot returns the last committed state of a session.
func (s *gameServiceImpl) GetSnapshot(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.touch(sessionID)
	return sess.Engine.Snapshot(), nil
}

// GetHistory returns paginated event history
func (s *gameServiceImpl) GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	history := sess.History.Events()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := min(start+opts.Limit, total)

	events := make([]GameEvent, 0, opts.Limit)
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			events = append(events, history[i])
		}
	} else if start < total {
		events = append(events, history[start:end]...)
	}

	return &HistoryResponse{
		Events:      events,
		TotalEvents: total,
		Dropped:     sess.History.Dropped(),
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListPacks returns available level packs
func (s *gameServiceImpl) ListPacks(ctx context.Context) ([]*PackInfo, error) {
	return s.packs.ListPacks()
}

// LoadPack loads a specific level pack
func (s *gameServiceImpl) LoadPack(ctx context.Context, packID string) (*engine.Pack, error) {
	return s.packs.LoadPack(packID)
}

func (s *gameServiceImpl) touch(sessionID string) {
	if err := s.sessions.UpdateLastAccessed(sessionID); err != nil {
		s.logger.Warn("failed to update last access", "session", sessionID, "err", err)
	}
}

// persist auto-saves a session after a mutation. Failures are logged only.
func (s *gameServiceImpl) persist(sessionID, op string) {
	if err := s.sessions.Save(sessionID); err != nil {
		s.logger.Warn("failed to persist session", "session", sessionID, "after", op, "err", err)
	}
}
