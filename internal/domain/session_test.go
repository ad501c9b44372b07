package domain_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/pulsebot/internal/domain"
)

func newTestSession(participants ...domain.UserID) *domain.Session {
	return domain.NewSession(
		"sess-1",
		"owner",
		"channel-1",
		participants,
		time.Now(),
		5*time.Minute,
		time.Minute,
	)
}

func TestNewSessionReminderPlacement(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	s := domain.NewSession("a", "o", "c", nil, start, 5*time.Minute, time.Minute)
	require.Equal(t, start.Add(4*time.Minute), s.ReminderAt)

	// Offset does not fit the window: reminder is skipped.
	s = domain.NewSession("b", "o", "c", nil, start, time.Minute, time.Minute)
	assert.True(t, s.ReminderAt.IsZero())

	s = domain.NewSession("c", "o", "c", nil, start, 30*time.Second, time.Minute)
	assert.True(t, s.ReminderAt.IsZero())
}

func TestSubmitValidation(t *testing.T) {
	s := newTestSession("alice", "bob")

	err := s.Submit("mallory", domain.Response{Score: domain.SentimentPositive})
	require.ErrorIs(t, err, domain.ErrNotAParticipant)

	require.NoError(t, s.Submit("alice", domain.Response{Score: domain.SentimentNeutral}))
	assert.Equal(t, 1, s.ResponseCount())
}

func TestSubmitLastWriteWins(t *testing.T) {
	s := newTestSession("alice")

	require.NoError(t, s.Submit("alice", domain.Response{Score: domain.SentimentNegative, WentWell: "first"}))
	require.NoError(t, s.Submit("alice", domain.Response{Score: domain.SentimentPositive, WentWell: "second"}))

	snap := s.Snapshot()
	require.Len(t, snap.Responses, 1)
	assert.Equal(t, "second", snap.Responses["alice"].WentWell)
	assert.Equal(t, domain.SentimentPositive, snap.Responses["alice"].Score)
}

func TestSealClosesSubmissions(t *testing.T) {
	s := newTestSession("alice", "bob")
	require.NoError(t, s.Submit("alice", domain.Response{Score: domain.SentimentNeutral}))

	snap, ok := s.Seal()
	require.True(t, ok)
	assert.Equal(t, domain.StateSealed, snap.State)
	require.Len(t, snap.Responses, 1)

	err := s.Submit("bob", domain.Response{Score: domain.SentimentPositive})
	require.ErrorIs(t, err, domain.ErrSessionClosed)

	// Sealing twice reports that the first seal already happened.
	_, ok = s.Seal()
	assert.False(t, ok)
}

func TestSnapshotIsolation(t *testing.T) {
	s := newTestSession("alice")
	require.NoError(t, s.Submit("alice", domain.Response{Score: domain.SentimentNeutral}))

	snap := s.Snapshot()
	snap.Responses["alice"] = domain.Response{Score: domain.SentimentNegative, WentWell: "tampered"}
	snap.Participants[0] = "intruder"

	fresh := s.Snapshot()
	assert.Equal(t, domain.SentimentNeutral, fresh.Responses["alice"].Score)
	assert.Equal(t, []domain.UserID{"alice"}, fresh.Participants)
}

func TestBeginReminding(t *testing.T) {
	s := newTestSession("alice", "bob", "carol")
	require.NoError(t, s.Submit("bob", domain.Response{Score: domain.SentimentPositive}))

	pending, ok := s.BeginReminding()
	require.True(t, ok)
	assert.Equal(t, []domain.UserID{"alice", "carol"}, pending)
	assert.Equal(t, domain.StateReminding, s.State())

	// Reminding still accepts submissions.
	require.NoError(t, s.Submit("alice", domain.Response{Score: domain.SentimentNeutral}))

	// A second reminder timer firing late is a no-op.
	_, ok = s.BeginReminding()
	assert.False(t, ok)
}

func TestConcurrentSubmitsNoLostUpdates(t *testing.T) {
	participants := make([]domain.UserID, 50)
	for i := range participants {
		participants[i] = domain.UserID(fmt.Sprintf("user-%02d", i))
	}
	s := domain.NewSession("sess", "o", "c", participants, time.Now(), time.Minute, 0)

	var wg sync.WaitGroup
	for _, p := range participants {
		wg.Add(1)
		go func(u domain.UserID) {
			defer wg.Done()
			_ = s.Submit(u, domain.Response{Score: domain.SentimentNeutral})
		}(p)
	}
	wg.Wait()

	assert.Equal(t, len(participants), s.ResponseCount())
}
