package session

import "sync"

// Roles used in conversation turns.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Key identifies one conversation timeline: the same user in different chats
// (or different users in the same group chat) never share history.
type Key struct {
	UserID int64
	ChatID int64
}

// Turn is one message within a session, tagged by speaker role.
type Turn struct {
	Role    string
	Content string
}

// Store holds per-conversation message history in memory for the process
// lifetime. Histories are append-only during a session and grow without
// bound; that is an accepted limitation, not a feature.
type Store struct {
	mu        sync.Mutex
	histories map[Key][]Turn
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{histories: make(map[Key][]Turn)}
}

// Append adds a turn to the history for the given key, creating the session
// lazily on first use.
func (s *Store) Append(key Key, turn Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.histories[key] = append(s.histories[key], turn)
}

// History returns a copy of the ordered history for the given key.
func (s *Store) History(key Key) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := s.histories[key]
	out := make([]Turn, len(history))
	copy(out, history)
	return out
}

// Reset clears the history for the given key.
func (s *Store) Reset(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.histories[key] = nil
}
