package history

import (
	"sort"
	"strings"
	"sync"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool { return r == RoleUser || r == RoleAssistant }

// Turn is one message of a conversation. Turns are never modified after they are appended.
type Turn struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// FormatTurns renders turns as "<role>: <content>" lines in append order.
func FormatTurns(turns []Turn) string {
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		lines = append(lines, string(t.Role)+": "+t.Content)
	}
	return strings.Join(lines, "\n")
}

// Store maps user ids to their conversation history and mirrors the whole
// map to a snapshot file. A user id is present iff at least one turn was
// recorded for it since its last reset.
type Store struct {
	mu       sync.RWMutex
	sessions map[string][]Turn

	snapshot *Snapshot
	saveMu   sync.Mutex
}

// NewStore returns an empty store. snapshot may be nil for a memory-only store.
func NewStore(snapshot *Snapshot) *Store {
	return &Store{sessions: make(map[string][]Turn), snapshot: snapshot}
}

// Init replaces the in-memory state with the snapshot contents, if any.
func (s *Store) Init() error {
	if s.snapshot == nil {
		return nil
	}
	data, err := s.snapshot.Load()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.sessions = data
	s.mu.Unlock()
	return nil
}

func (s *Store) Append(userID string, t Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = append(s.sessions[userID], t)
}

// Get returns a copy of the user's history; nil when there is none.
func (s *Store) Get(userID string) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ts, ok := s.sessions[userID]
	if !ok {
		return nil
	}
	out := make([]Turn, len(ts))
	copy(out, ts)
	return out
}

func (s *Store) Has(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[userID]
	return ok
}

func (s *Store) Len(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions[userID])
}

// Reset removes the user entirely and reports whether anything was removed.
func (s *Store) Reset(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[userID]; !ok {
		return false
	}
	delete(s.sessions, userID)
	return true
}

// Users lists the known user ids in lexical order.
func (s *Store) Users() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s *Store) copyAll() map[string][]Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]Turn, len(s.sessions))
	for id, ts := range s.sessions {
		cp := make([]Turn, len(ts))
		copy(cp, ts)
		out[id] = cp
	}
	return out
}

// Save writes a full snapshot. Concurrent saves are serialized; the last one wins.
func (s *Store) Save() error {
	if s.snapshot == nil {
		return nil
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	return s.snapshot.Write(s.copyAll())
}

// Shutdown performs the final flush.
func (s *Store) Shutdown() error {
	return s.Save()
}
