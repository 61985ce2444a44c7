package session

import (
	"sync"

	"github.com/hupe1980/sessionkit/core"
)

// InMemoryStore is a volatile SessionStore implementation storing sessions in
// a process local map. It is safe for concurrent access and suited for tests
// and single-process deployments.
//
// Unlike stores of immutable records, Get returns the live *core.Session
// handle: the rotation manager must observe and mutate the same instance the
// pipeline reports usage against, and Session is internally synchronized.
// Callers needing read isolation use Session.Clone or Session.Snapshot.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session
}

var _ core.SessionStore = (*InMemoryStore)(nil)

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*core.Session)}
}

// Create registers a new session on generation 1. It fails with
// core.ErrSessionExists if the id is already present; rotation state must
// never be silently reset by a duplicate open.
func (s *InMemoryStore) Create(id string, tokensBudget int) (*core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; ok {
		return nil, core.ErrSessionExists
	}
	sess := core.NewSession(id, tokensBudget)
	s.sessions[id] = sess
	return sess, nil
}

// Get returns the live session handle or core.ErrSessionNotFound.
func (s *InMemoryStore) Get(id string) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	return sess, nil
}

// Delete removes a session at conversation end. Deleting an unknown id is a
// no-op.
func (s *InMemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len returns the number of stored sessions.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
