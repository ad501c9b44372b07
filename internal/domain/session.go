package domain

import (
	"sort"
	"sync"
	"time"
)

// Response is one participant's submission: a 1-3 sentiment rating plus two
// free-text answers.
type Response struct {
	Score        SentimentScore
	WentWell     string
	CouldImprove string
	SubmittedAt  time.Time
}

// Session represents one feedback round: a fixed roster of participants, a
// time window, and the responses collected so far.
//
// Identity, roster and window are immutable after construction. The response
// map and the state are guarded by a per-session mutex so that high-volume
// submissions to one session never block operations on another.
type Session struct {
	ID          SessionID
	OwnerRef    UserID
	OriginRef   string
	WindowStart time.Time
	WindowEnd   time.Time

	// ReminderAt is zero when the requested duration does not leave room
	// for the reminder offset.
	ReminderAt time.Time

	mu           sync.Mutex
	participants map[UserID]struct{}
	responses    map[UserID]Response
	state        SessionState
}

// SessionSnapshot is an immutable copy of a session's collected state, taken
// so that analysis and reporting never observe a half-written response.
type SessionSnapshot struct {
	ID           SessionID
	OwnerRef     UserID
	OriginRef    string
	Participants []UserID
	Responses    map[UserID]Response
	State        SessionState
	WindowStart  time.Time
	WindowEnd    time.Time
}

// NewSession builds a session in the collecting state. The roster is copied;
// later changes to the input slice do not affect the session.
func NewSession(
	id SessionID,
	owner UserID,
	origin string,
	participants []UserID,
	start time.Time,
	duration time.Duration,
	reminderOffset time.Duration,
) *Session {
	roster := make(map[UserID]struct{}, len(participants))
	for _, p := range participants {
		roster[p] = struct{}{}
	}

	s := &Session{
		ID:           id,
		OwnerRef:     owner,
		OriginRef:    origin,
		WindowStart:  start,
		WindowEnd:    start.Add(duration),
		participants: roster,
		responses:    make(map[UserID]Response),
		state:        StateCollecting,
	}
	if reminderOffset > 0 && duration > reminderOffset {
		s.ReminderAt = s.WindowEnd.Add(-reminderOffset)
	}
	return s
}

// Submit records a response for user. Resubmissions before the cutoff
// overwrite the previous entry (last write wins).
func (s *Session) Submit(user UserID, resp Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.participants[user]; !ok {
		return ErrNotAParticipant
	}
	if s.state != StateCollecting && s.state != StateReminding {
		return ErrSessionClosed
	}

	s.responses[user] = resp
	return nil
}

// Snapshot returns a copy of the session's mutable state.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Seal irreversibly closes the submission window and returns the final
// snapshot. Any Submit racing the seal either lands just before the flip or
// is rejected just after; no response is counted partially.
//
// The second return value is false when the session was already sealed or
// retired, which makes racing timer callbacks and aborts harmless.
func (s *Session) Seal() (SessionSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateSealed || s.state == StateRetired {
		return SessionSnapshot{}, false
	}
	s.state = StateSealed
	return s.snapshotLocked(), true
}

// BeginReminding moves a collecting session to the reminding state and
// returns the participants who have not responded yet. It reports false when
// the session already moved past collecting, so a late reminder timer is a
// no-op.
func (s *Session) BeginReminding() ([]UserID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCollecting {
		return nil, false
	}
	s.state = StateReminding
	return s.pendingLocked(), true
}

// Retire marks a sealed session as retired.
func (s *Session) Retire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSealed {
		s.state = StateRetired
	}
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Participants returns the roster in a stable order.
func (s *Session) Participants() []UserID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedUsers(s.participants)
}

// ResponseCount returns how many distinct participants have responded.
func (s *Session) ResponseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.responses)
}

func (s *Session) snapshotLocked() SessionSnapshot {
	responses := make(map[UserID]Response, len(s.responses))
	for u, r := range s.responses {
		responses[u] = r
	}
	return SessionSnapshot{
		ID:           s.ID,
		OwnerRef:     s.OwnerRef,
		OriginRef:    s.OriginRef,
		Participants: sortedUsers(s.participants),
		Responses:    responses,
		State:        s.state,
		WindowStart:  s.WindowStart,
		WindowEnd:    s.WindowEnd,
	}
}

func (s *Session) pendingLocked() []UserID {
	pending := make(map[UserID]struct{}, len(s.participants))
	for p := range s.participants {
		if _, ok := s.responses[p]; !ok {
			pending[p] = struct{}{}
		}
	}
	return sortedUsers(pending)
}

func sortedUsers(set map[UserID]struct{}) []UserID {
	out := make([]UserID, 0, len(set))
	for u := range set {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
