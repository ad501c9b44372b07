package domain

import "errors"

var (
	// ErrInvalidDuration is returned when a session is requested with a
	// non-positive time window.
	ErrInvalidDuration = errors.New("session duration must be positive")

	// ErrNotAParticipant is returned when someone outside the roster tries
	// to submit a response.
	ErrNotAParticipant = errors.New("user is not a participant of this session")

	// ErrSessionClosed is returned for submissions after the cutoff.
	ErrSessionClosed = errors.New("session no longer accepts responses")

	// ErrCapacityExceeded is returned when the store is at its concurrent
	// session cap.
	ErrCapacityExceeded = errors.New("maximum concurrent session limit reached")

	// ErrNotFound is returned when a session id is unknown.
	ErrNotFound = errors.New("session not found")

	// ErrAnalysisUnavailable is returned by the analyzer when the language
	// model could not produce a usable result. The coordinator converts it
	// into a raw-data report instead of failing the session.
	ErrAnalysisUnavailable = errors.New("analysis unavailable")
)
