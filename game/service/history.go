package service

import "sync"

// DefaultHistoryLimit is the number of events kept per session.
const DefaultHistoryLimit = 1000

// EventLog is a bounded, append-only event history. Once full, the oldest
// events are dropped.
type EventLog struct {
	mu      sync.RWMutex
	events  []GameEvent
	limit   int
	dropped int
}

// NewEventLog creates a log holding at most limit events.
func NewEventLog(limit int) *EventLog {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &EventLog{limit: limit}
}

// Append records events in order.
func (l *EventLog) Append(events ...GameEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append(l.events, events...)
	if over := len(l.events) - l.limit; over > 0 {
		l.events = append(l.events[:0:0], l.events[over:]...)
		l.dropped += over
	}
}

// Events returns a copy of the retained events, oldest first.
func (l *EventLog) Events() []GameEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]GameEvent(nil), l.events...)
}

// Len is the number of retained events.
func (l *EventLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// Dropped is the number of events evicted so far.
func (l *EventLog) Dropped() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.dropped
}

// Restore replaces the log contents, keeping the newest events that fit.
func (l *EventLog) Restore(events []GameEvent, dropped int) {
	l.mu.Lock()
	l.events = nil
	l.dropped = dropped
	l.mu.Unlock()
	l.Append(events...)
}
