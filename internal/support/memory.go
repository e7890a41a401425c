package support

import (
	"context"
	"slices"
	"sync"
)

// MemoryKV is an in-memory KV. Safe for concurrent use.
type MemoryKV struct {
	mu    sync.RWMutex
	slots map[StorageKey][]byte
}

// NewMemoryKV returns an empty store; every slot starts absent.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{slots: make(map[StorageKey][]byte)}
}

// Get implements KV.
func (m *MemoryKV) Get(_ context.Context, key StorageKey) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.slots[key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(v), true, nil
}

// Put implements KV.
func (m *MemoryKV) Put(_ context.Context, key StorageKey, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[key] = slices.Clone(value)
	return nil
}

// EventLog is an in-memory Publisher that keeps events in deposit order.
type EventLog struct {
	mu     sync.Mutex
	events []Event
}

// NewEventLog returns an empty log.
func NewEventLog() *EventLog {
	return &EventLog{}
}

// Deposit implements Publisher.
func (l *EventLog) Deposit(_ context.Context, ev Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
	return nil
}

// Events returns a snapshot of the log.
func (l *EventLog) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.events)
}

// Len returns the number of deposited events.
func (l *EventLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}
