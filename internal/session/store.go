package session

import (
	"context"
	"sync"
)

// Store is the per-client state repository. Get returns an empty session for
// unknown identifiers; sessions are never explicitly destroyed by the
// service, expiry is the store's concern.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, id string, s *Session) error
}

// MemoryStore keeps sessions in-process. Used in tests and single-node
// development runs.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return cloneSession(s), nil
	}
	return New(), nil
}

func (m *MemoryStore) Put(ctx context.Context, id string, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = cloneSession(s)
	return nil
}

// cloneSession copies state so callers cannot mutate the stored value behind
// the store's back. Matches the isolation the Redis store gets from JSON
// round-tripping.
func cloneSession(s *Session) *Session {
	cp := &Session{
		History:           make([]Turn, len(s.History)),
		SystemInstruction: s.SystemInstruction,
		SystemSent:        s.SystemSent,
	}
	for i, t := range s.History {
		parts := make([]Part, len(t.Parts))
		copy(parts, t.Parts)
		cp.History[i] = Turn{Role: t.Role, Parts: parts}
	}
	return cp
}
