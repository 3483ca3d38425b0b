package daemon

import (
	"sync"
	"time"

	"github.com/letmecheque/letmecheque/internal/model"

	"github.com/google/uuid"
)

// Session is one client's balance context. It is held in memory only and
// discarded on delete or after the idle TTL.
type Session struct {
	ID        string         `json:"session_id"`
	Balances  model.Balances `json:"balances"`
	CreatedAt time.Time      `json:"created_at"`
	LastSeen  time.Time      `json:"last_seen"`
}

// Sessions is a mutex-guarded registry keyed by session ID.
type Sessions struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	byID map[string]*Session
}

// NewSessions returns an empty registry whose sessions expire after ttl
// without use.
func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{ttl: ttl, now: time.Now, byID: make(map[string]*Session)}
}

// Create starts a session with zero balances.
func (s *Sessions) Create() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	sess := &Session{ID: uuid.NewString(), CreatedAt: now, LastSeen: now}
	s.byID[sess.ID] = sess
	return *sess
}

// Get returns a live session and refreshes its idle timer.
func (s *Sessions) Get(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.live(id)
	if !ok {
		return Session{}, false
	}
	sess.LastSeen = s.now()
	return *sess, true
}

// SetBalances replaces a session's balances.
func (s *Sessions) SetBalances(id string, b model.Balances) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.live(id)
	if !ok {
		return Session{}, false
	}
	sess.Balances = b
	sess.LastSeen = s.now()
	return *sess, true
}

// Delete ends a session. It reports whether the session existed.
func (s *Sessions) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.live(id)
	delete(s.byID, id)
	return ok
}

// Sweep drops expired sessions and returns how many were removed.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.byID {
		if s.expired(sess) {
			delete(s.byID, id)
			n++
		}
	}
	return n
}

// Len returns the number of tracked sessions, expired or not.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// live must be called with mu held.
func (s *Sessions) live(id string) (*Session, bool) {
	sess, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	if s.expired(sess) {
		delete(s.byID, id)
		return nil, false
	}
	return sess, true
}

func (s *Sessions) expired(sess *Session) bool {
	return s.now().Sub(sess.LastSeen) > s.ttl
}
