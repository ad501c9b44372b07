package domain

import (
	"context"
	"time"
)

// LLMClient defines how analysis stages interact with a language model.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// AnalysisResult is what the analyzer produces from a sealed session's
// responses.
type AnalysisResult struct {
	AnonymizedQuotes []string
	Themes           []string
	Summary          string
}

// Analyzer turns a batch of responses into anonymized quotes, themes and a
// summary. Invoked once per session at finalize, under a bounded timeout.
type Analyzer interface {
	Analyze(ctx context.Context, responses []Response) (*AnalysisResult, error)
}

// Notifier is the delivery collaborator: solicitation and reminder messages
// to participants, and the final report to the session's origin.
// Solicit and Remind are fire-and-forget from the engine's point of view;
// failures are logged, not retried.
type Notifier interface {
	Solicit(ctx context.Context, user UserID, sessionID SessionID) error
	Remind(ctx context.Context, user UserID, sessionID SessionID) error
	DeliverReport(ctx context.Context, originRef string, report string) error
}

// SessionStore is the registry of live sessions.
type SessionStore interface {
	Create(owner UserID, origin string, participants []UserID, duration time.Duration) (*Session, error)
	Get(id SessionID) (*Session, error)
	Remove(id SessionID)
	SweepExpired(maxAge time.Duration) int
	Count() int
}
