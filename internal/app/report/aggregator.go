package report

import (
	"sort"
	"time"

	"github.com/PabloGalante/pulsebot/internal/domain"
)

// ProcessedFeedback is the normalized view of a sealed session, ready for
// rendering. It never references participant identities next to their
// answers.
type ProcessedFeedback struct {
	SessionID domain.SessionID
	Date      time.Time

	TotalParticipants int
	Submitted         int
	LowResponse       bool

	SentimentCounts map[domain.SentimentScore]int
	WentWell        []string
	CouldImprove    []string

	// Set by the coordinator during finalize.
	Analysis       *domain.AnalysisResult
	Degraded       bool
	CancelledEarly bool
}

// ResponseRate returns the fraction of the roster that responded (0-1).
func (p ProcessedFeedback) ResponseRate() float64 {
	if p.TotalParticipants == 0 {
		return 0
	}
	return float64(p.Submitted) / float64(p.TotalParticipants)
}

// Aggregate tallies a snapshot's responses. lowThreshold is the response
// fraction under which the report is flagged low-confidence.
func Aggregate(snap domain.SessionSnapshot, lowThreshold float64) ProcessedFeedback {
	p := ProcessedFeedback{
		SessionID:         snap.ID,
		Date:              time.Now().UTC(),
		TotalParticipants: len(snap.Participants),
		Submitted:         len(snap.Responses),
		SentimentCounts:   make(map[domain.SentimentScore]int),
	}

	// Order by submission time so bullets are stable and identities stay
	// out of the ordering.
	ordered := make([]domain.Response, 0, len(snap.Responses))
	for _, r := range snap.Responses {
		ordered = append(ordered, r)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SubmittedAt.Before(ordered[j].SubmittedAt)
	})

	for _, r := range ordered {
		p.SentimentCounts[r.Score]++
		if r.WentWell != "" {
			p.WentWell = append(p.WentWell, r.WentWell)
		}
		if r.CouldImprove != "" {
			p.CouldImprove = append(p.CouldImprove, r.CouldImprove)
		}
	}

	if p.TotalParticipants > 0 {
		p.LowResponse = p.ResponseRate() < lowThreshold
	}
	return p
}
