package feedback

import (
	"context"
	"sync"
	"time"

	"github.com/PabloGalante/pulsebot/internal/app/report"
	"github.com/PabloGalante/pulsebot/internal/app/schedule"
	"github.com/PabloGalante/pulsebot/internal/domain"
	"github.com/PabloGalante/pulsebot/internal/observability"
)

const (
	defaultLowResponseThreshold = 0.3
	defaultAnalysisTimeout      = 30 * time.Second
)

// Config tunes the coordinator.
type Config struct {
	// LowResponseThreshold is the response fraction under which a report
	// is flagged low-confidence.
	LowResponseThreshold float64
	// AnalysisTimeout bounds the finalize path's call into the analyzer.
	AnalysisTimeout time.Duration
}

// Service coordinates the session lifecycle: create, collect, remind,
// finalize, retire. It owns the timers for each session and talks to the
// delivery and analysis collaborators through their ports.
type Service struct {
	store    domain.SessionStore
	timer    *schedule.Scheduler
	notifier domain.Notifier
	analyzer domain.Analyzer
	now      func() time.Time

	lowResponseThreshold float64
	analysisTimeout      time.Duration

	mu      sync.Mutex
	pending map[domain.SessionID][]*schedule.Handle
}

func NewService(
	store domain.SessionStore,
	timer *schedule.Scheduler,
	notifier domain.Notifier,
	analyzer domain.Analyzer,
	cfg Config,
) *Service {
	if cfg.LowResponseThreshold <= 0 {
		cfg.LowResponseThreshold = defaultLowResponseThreshold
	}
	if cfg.AnalysisTimeout <= 0 {
		cfg.AnalysisTimeout = defaultAnalysisTimeout
	}

	return &Service{
		store:                store,
		timer:                timer,
		notifier:             notifier,
		analyzer:             analyzer,
		now:                  time.Now,
		lowResponseThreshold: cfg.LowResponseThreshold,
		analysisTimeout:      cfg.AnalysisTimeout,
		pending:              make(map[domain.SessionID][]*schedule.Handle),
	}
}

type StartSessionInput struct {
	OwnerRef     domain.UserID
	OriginRef    string
	Participants []domain.UserID
	Duration     time.Duration
}

type StartSessionOutput struct {
	Session *domain.Session
}

// StartSession registers a session and schedules its reminder and cutoff.
// When the store rejects the request (capacity, duration) no timers are
// created and no participant is contacted.
func (s *Service) StartSession(ctx context.Context, in StartSessionInput) (*StartSessionOutput, error) {
	log := observability.LoggerFromContext(ctx).With(
		"owner_ref", in.OwnerRef,
		"participant_count", len(in.Participants),
	)
	log.Info("starting feedback session", "duration", in.Duration.String())

	sess, err := s.store.Create(in.OwnerRef, in.OriginRef, in.Participants, in.Duration)
	if err != nil {
		log.Error("failed to create session", "error", err)
		return nil, err
	}

	// Handles are registered before this function returns so that an abort
	// racing a very short window still finds them.
	s.mu.Lock()
	var handles []*schedule.Handle
	if !sess.ReminderAt.IsZero() {
		handles = append(handles, s.timer.ScheduleAt(sess.ReminderAt, func() {
			s.handleReminder(sess.ID)
		}))
	}
	handles = append(handles, s.timer.ScheduleAt(sess.WindowEnd, func() {
		s.handleCutoff(sess.ID)
	}))
	s.pending[sess.ID] = handles
	s.mu.Unlock()

	failures := 0
	for _, user := range sess.Participants() {
		if err := s.notifier.Solicit(ctx, user, sess.ID); err != nil {
			failures++
			log.Warn("failed to solicit participant", "participant", user, "error", err)
		}
	}

	log.Info("session started",
		"session_id", sess.ID,
		"window_end", sess.WindowEnd,
		"solicit_failures", failures)

	return &StartSessionOutput{Session: sess}, nil
}

type SubmitResponseInput struct {
	SessionID    domain.SessionID
	UserID       domain.UserID
	Score        domain.SentimentScore
	WentWell     string
	CouldImprove string
}

// SubmitResponse records one participant's feedback. Resubmitting before the
// cutoff overwrites the earlier entry.
func (s *Service) SubmitResponse(ctx context.Context, in SubmitResponseInput) error {
	log := observability.LoggerFromContext(ctx).With("session_id", in.SessionID)

	sess, err := s.store.Get(in.SessionID)
	if err != nil {
		return err
	}

	resp := domain.Response{
		Score:        in.Score,
		WentWell:     in.WentWell,
		CouldImprove: in.CouldImprove,
		SubmittedAt:  s.now(),
	}
	if err := sess.Submit(in.UserID, resp); err != nil {
		return err
	}

	// Only the count is logged; answers stay anonymous.
	log.Info("response recorded", "response_count", sess.ResponseCount())
	return nil
}

type StatusOutput struct {
	ID                domain.SessionID
	State             domain.SessionState
	TotalParticipants int
	Responses         int
	WindowStart       time.Time
	WindowEnd         time.Time
}

// Status reports a session's progress without exposing any response content.
func (s *Service) Status(ctx context.Context, id domain.SessionID) (*StatusOutput, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	snap := sess.Snapshot()
	return &StatusOutput{
		ID:                snap.ID,
		State:             snap.State,
		TotalParticipants: len(snap.Participants),
		Responses:         len(snap.Responses),
		WindowStart:       snap.WindowStart,
		WindowEnd:         snap.WindowEnd,
	}, nil
}

// Abort ends a session before its cutoff: pending timers are cancelled and
// the session is finalized immediately with whatever was collected, with the
// report annotated as cancelled early.
func (s *Service) Abort(ctx context.Context, id domain.SessionID) error {
	if _, err := s.store.Get(id); err != nil {
		return err
	}

	observability.LoggerFromContext(ctx).Info("aborting session", "session_id", id)
	s.cancelTimers(id)
	s.finalize(ctx, id, true)
	return nil
}

// handleReminder fires at windowEnd - reminderOffset. Best-effort: failures
// never block progression to cutoff.
func (s *Service) handleReminder(id domain.SessionID) {
	ctx := observability.WithSessionID(context.Background(), string(id))
	log := observability.LoggerFromContext(ctx)

	sess, err := s.store.Get(id)
	if err != nil {
		log.Debug("reminder skipped, session gone")
		return
	}

	pending, ok := sess.BeginReminding()
	if !ok {
		log.Debug("reminder skipped, session past collecting")
		return
	}

	failures := 0
	for _, user := range pending {
		if err := s.notifier.Remind(ctx, user, id); err != nil {
			failures++
			log.Warn("failed to send reminder", "participant", user, "error", err)
		}
	}
	log.Info("reminder sent", "pending_count", len(pending), "failures", failures)
}

// handleCutoff fires at windowEnd.
func (s *Service) handleCutoff(id domain.SessionID) {
	s.finalize(observability.WithSessionID(context.Background(), string(id)), id, false)
}

// finalize runs the Sealed -> Retired transition: seal first so the
// submission window closes atomically, then analyze under the timeout,
// deliver the report, and retire the session. Safe to call from the cutoff
// timer, an abort, or both.
func (s *Service) finalize(ctx context.Context, id domain.SessionID, cancelled bool) {
	log := observability.LoggerFromContext(ctx).With("session_id", id)

	sess, err := s.store.Get(id)
	if err != nil {
		// Already swept or finalized by a racing caller.
		log.Debug("finalize skipped, session gone")
		s.cancelTimers(id)
		return
	}

	snap, ok := sess.Seal()
	if !ok {
		log.Debug("finalize skipped, session already sealed")
		return
	}
	log.Info("session sealed", "responses", len(snap.Responses), "participants", len(snap.Participants))

	processed := report.Aggregate(snap, s.lowResponseThreshold)
	processed.CancelledEarly = cancelled

	if processed.Submitted == 0 {
		log.Info("no responses collected, skipping analysis")
	} else {
		actx, cancel := context.WithTimeout(ctx, s.analysisTimeout)
		res, err := s.analyzer.Analyze(actx, responsesOf(snap))
		cancel()
		if err != nil {
			log.Warn("analysis unavailable, falling back to raw report", "error", err)
			processed.Degraded = true
		} else {
			processed.Analysis = res
		}
	}

	text := report.Render(processed)
	if err := s.notifier.DeliverReport(ctx, snap.OriginRef, text); err != nil {
		log.Error("failed to deliver report", "origin_ref", snap.OriginRef, "error", err)
	}

	sess.Retire()
	s.store.Remove(id)
	s.cancelTimers(id)

	log.Info("session retired",
		"responses", processed.Submitted,
		"low_response", processed.LowResponse,
		"degraded", processed.Degraded,
		"cancelled_early", cancelled)
}

func (s *Service) cancelTimers(id domain.SessionID) {
	s.mu.Lock()
	handles := s.pending[id]
	delete(s.pending, id)
	s.mu.Unlock()

	for _, h := range handles {
		s.timer.Cancel(h)
	}
}

func responsesOf(snap domain.SessionSnapshot) []domain.Response {
	out := make([]domain.Response, 0, len(snap.Responses))
	for _, r := range snap.Responses {
		out = append(out, r)
	}
	return out
}
