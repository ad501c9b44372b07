package domain

type SessionID string
type UserID string

// SessionState tracks where a session is in its lifecycle.
// Transitions only move forward: collecting -> reminding -> sealed -> retired.
type SessionState string

const (
	StateCollecting SessionState = "collecting"
	StateReminding  SessionState = "reminding"
	StateSealed     SessionState = "sealed"
	StateRetired    SessionState = "retired"
)

// SentimentScore is the participant's 1-3 rating.
type SentimentScore int

const (
	SentimentNegative SentimentScore = 1
	SentimentNeutral  SentimentScore = 2
	SentimentPositive SentimentScore = 3
)

// ValidScore reports whether s is one of the three accepted ratings.
func ValidScore(s SentimentScore) bool {
	return s >= SentimentNegative && s <= SentimentPositive
}
