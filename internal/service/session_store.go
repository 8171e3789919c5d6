package service

import (
	"sync"
	"time"

	"github.com/jmpinto/eventos-escuteiros/internal/domain"
)

// MemorySessionStore keeps live sessions in process memory. Sessions hold
// no durable state — losing them on restart only forces a new login.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	ttl      time.Duration
}

// NewMemorySessionStore creates a session store with the given lifetime.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*domain.Session),
		ttl:      ttl,
	}
}

// Put stores a session under its id.
func (s *MemorySessionStore) Put(session *domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = session
}

// Get returns the session for an id, treating expired sessions as absent.
func (s *MemorySessionStore) Get(id string) (*domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if time.Since(session.CreatedAt) > s.ttl {
		return nil, false
	}
	return session, true
}

// Delete removes a session in one step. Deleting the session clears every
// key it holds at once — there is no partial logout state.
func (s *MemorySessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
}
