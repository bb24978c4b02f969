package telegram

import "sync"

type sessionState int

const (
	stateIdle sessionState = iota
	stateAwaitingRejectReason
)

// session tracks a short conversational exchange with one chat, currently
// only the two-turn reject-reason capture.
type session struct {
	State   sessionState
	OrderID string
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[int64]session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[int64]session)}
}

func (s *sessionStore) get(chatID int64) session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[chatID]
}

func (s *sessionStore) set(chatID int64, sess session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[chatID] = sess
}

func (s *sessionStore) clear(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, chatID)
}
