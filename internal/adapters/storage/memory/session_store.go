package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/pulsebot/internal/domain"
	"github.com/PabloGalante/pulsebot/internal/observability"
)

// SessionStore is the in-process registry of live feedback sessions.
//
// The store-level lock only guards the map structure (insert, lookup,
// remove, sweep); writes to an individual session's responses go through the
// session's own mutex.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*domain.Session

	maxSessions    int
	maxAge         time.Duration
	reminderOffset time.Duration
	now            func() time.Time
}

// NewSessionStore creates a store capped at maxSessions live sessions.
// Sessions older than maxAge are swept on every create, a backstop against
// lost timers. reminderOffset places each new session's reminder deadline.
func NewSessionStore(maxSessions int, maxAge, reminderOffset time.Duration) *SessionStore {
	return &SessionStore{
		sessions:       make(map[domain.SessionID]*domain.Session),
		maxSessions:    maxSessions,
		maxAge:         maxAge,
		reminderOffset: reminderOffset,
		now:            time.Now,
	}
}

// Create registers a fresh session in the collecting state. It sweeps stale
// entries first so that a crashed session never blocks new ones forever.
func (s *SessionStore) Create(
	owner domain.UserID,
	origin string,
	participants []domain.UserID,
	duration time.Duration,
) (*domain.Session, error) {
	if duration <= 0 {
		return nil, domain.ErrInvalidDuration
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now, s.maxAge)

	if s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		return nil, domain.ErrCapacityExceeded
	}

	id := domain.SessionID(uuid.NewString())
	sess := domain.NewSession(id, owner, origin, participants, now, duration, s.reminderOffset)
	s.sessions[id] = sess
	return sess, nil
}

// Get returns the session for id, or domain.ErrNotFound.
func (s *SessionStore) Get(id domain.SessionID) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return sess, nil
}

// Remove drops a session from the registry. Removing an unknown id is a
// no-op so that timer callbacks, sweeps and manual aborts can race freely.
func (s *SessionStore) Remove(id domain.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// SweepExpired removes every session whose window started more than maxAge
// ago, regardless of state, and returns how many were dropped.
func (s *SessionStore) SweepExpired(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(s.now(), maxAge)
}

// Count returns the number of live sessions.
func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionStore) sweepLocked(now time.Time, maxAge time.Duration) int {
	if maxAge <= 0 {
		return 0
	}
	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.WindowStart) > maxAge {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		observability.Logger().Info("swept expired sessions", "removed", removed)
	}
	return removed
}
