package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/PabloGalante/pulsebot/internal/app/feedback"
	"github.com/PabloGalante/pulsebot/internal/domain"
)

// Options tunes request handling.
type Options struct {
	// DefaultDuration is used when a create request omits duration_seconds.
	DefaultDuration time.Duration
}

type Server struct {
	svc  *feedback.Service
	opts Options
}

func NewServer(svc *feedback.Service, opts Options) http.Handler {
	s := &Server{svc: svc, opts: opts}
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealthz)

	// /sessions → create session (POST)
	mux.HandleFunc("/sessions", s.handleSessions)

	// /sessions/{id}           → GET: status, DELETE: abort
	// /sessions/{id}/responses → POST: submit feedback
	mux.HandleFunc("/sessions/", s.handleSessionWithID)

	return chainMiddlewares(mux, withLogging, withCORS)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type createSessionRequest struct {
	OwnerRef        string   `json:"owner_ref"`
	OriginRef       string   `json:"origin_ref"`
	Participants    []string `json:"participants"`
	DurationSeconds int      `json:"duration_seconds,omitempty"`
}

type createSessionResponse struct {
	Session sessionResponse `json:"session"`
}

type sessionResponse struct {
	ID           string    `json:"id"`
	OwnerRef     string    `json:"owner_ref"`
	OriginRef    string    `json:"origin_ref"`
	State        string    `json:"state"`
	Participants []string  `json:"participants"`
	WindowStart  time.Time `json:"window_start"`
	WindowEnd    time.Time `json:"window_end"`
}

type statusResponse struct {
	ID                string    `json:"id"`
	State             string    `json:"state"`
	TotalParticipants int       `json:"total_participants"`
	Responses         int       `json:"responses"`
	WindowStart       time.Time `json:"window_start"`
	WindowEnd         time.Time `json:"window_end"`
}

type submitResponseRequest struct {
	UserID       string `json:"user_id"`
	Score        int    `json:"score"`
	WentWell     string `json:"went_well,omitempty"`
	CouldImprove string `json:"could_improve,omitempty"`
}

// ─────────────────────────────────────────────
// Basic routing
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// /sessions
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateSession(w, r)
	default:
		methodNotAllowed(w)
	}
}

// /sessions/{id} or /sessions/{id}/responses
func (s *Server) handleSessionWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/sessions/")
	if path == "" {
		http.NotFound(w, r)
		return
	}

	parts := strings.Split(path, "/")
	id := parts[0]
	if id == "" {
		http.NotFound(w, r)
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			s.handleStatus(w, r, domain.SessionID(id))
		case http.MethodDelete:
			s.handleAbort(w, r, domain.SessionID(id))
		default:
			methodNotAllowed(w)
		}
		return
	}

	if len(parts) == 2 && parts[1] == "responses" {
		switch r.Method {
		case http.MethodPost:
			s.handleSubmitResponse(w, r, domain.SessionID(id))
		default:
			methodNotAllowed(w)
		}
		return
	}

	http.NotFound(w, r)
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	if req.OwnerRef == "" {
		badRequest(w, "owner_ref is required")
		return
	}
	if req.OriginRef == "" {
		badRequest(w, "origin_ref is required")
		return
	}
	if len(req.Participants) == 0 {
		badRequest(w, "participants must not be empty")
		return
	}

	duration := s.opts.DefaultDuration
	if req.DurationSeconds != 0 {
		duration = time.Duration(req.DurationSeconds) * time.Second
	}

	participants := make([]domain.UserID, 0, len(req.Participants))
	for _, p := range req.Participants {
		if p == "" {
			badRequest(w, "participants must not contain empty ids")
			return
		}
		participants = append(participants, domain.UserID(p))
	}

	out, err := s.svc.StartSession(r.Context(), feedback.StartSessionInput{
		OwnerRef:     domain.UserID(req.OwnerRef),
		OriginRef:    req.OriginRef,
		Participants: participants,
		Duration:     duration,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createSessionResponse{
		Session: toSessionResponse(out.Session),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	st, err := s.svc.Status(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		ID:                string(st.ID),
		State:             string(st.State),
		TotalParticipants: st.TotalParticipants,
		Responses:         st.Responses,
		WindowStart:       st.WindowStart,
		WindowEnd:         st.WindowEnd,
	})
}

func (s *Server) handleAbort(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	if err := s.svc.Abort(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSubmitResponse(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	var req submitResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	if req.UserID == "" {
		badRequest(w, "user_id is required")
		return
	}
	score := domain.SentimentScore(req.Score)
	if !domain.ValidScore(score) {
		badRequest(w, "score must be 1 (negative), 2 (neutral) or 3 (positive)")
		return
	}

	err := s.svc.SubmitResponse(r.Context(), feedback.SubmitResponseInput{
		SessionID:    id,
		UserID:       domain.UserID(req.UserID),
		Score:        score,
		WentWell:     req.WentWell,
		CouldImprove: req.CouldImprove,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "recorded"})
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

func toSessionResponse(sess *domain.Session) sessionResponse {
	participants := make([]string, 0, len(sess.Participants()))
	for _, p := range sess.Participants() {
		participants = append(participants, string(p))
	}

	return sessionResponse{
		ID:           string(sess.ID),
		OwnerRef:     string(sess.OwnerRef),
		OriginRef:    sess.OriginRef,
		State:        string(sess.State()),
		Participants: participants,
		WindowStart:  sess.WindowStart,
		WindowEnd:    sess.WindowEnd,
	}
}

// writeDomainError maps domain sentinels onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidDuration):
		badRequest(w, err.Error())
	case errors.Is(err, domain.ErrNotAParticipant):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
	case errors.Is(err, domain.ErrSessionClosed):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "session is no longer accepting responses"})
	case errors.Is(err, domain.ErrCapacityExceeded):
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "too many active sessions"})
	default:
		internalError(w, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func internalError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}
