// Package session provides UI-session scoped storage and the per-session user identity.
package session

import (
	"sync"

	"github.com/google/uuid"
)

// Well-known keys of the scoped storage.
const (
	KeyUserID       = "user_id"
	KeyRunnable     = "runnable"
	KeySystemPrompt = "system_prompt"
)

// Session is the storage scoped to one UI session.
type Session struct {
	mu     sync.Mutex
	values map[string]any
}

func New() *Session {
	return &Session{values: make(map[string]any)}
}

func (s *Session) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *Session) Set(key string, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = v
}

// String returns the value under key when it is a string.
func (s *Session) String(key string) string {
	v, _ := s.Get(key)
	str, _ := v.(string)
	return str
}

// UserID returns the session's user id, generating a random one on first use.
func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.values[KeyUserID].(string); ok && id != "" {
		return id
	}
	id := uuid.NewString()
	s.values[KeyUserID] = id
	return id
}

// Registry maps host-side session keys (chat ids) to sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[int64]*Session)}
}

// Start opens a fresh session for key, replacing any previous one.
func (r *Registry) Start(key int64) *Session {
	s := New()
	r.mu.Lock()
	r.sessions[key] = s
	r.mu.Unlock()
	return s
}

func (r *Registry) Get(key int64) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[key]
	return s, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
