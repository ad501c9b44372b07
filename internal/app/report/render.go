package report

import (
	"fmt"
	"strings"

	"github.com/PabloGalante/pulsebot/internal/domain"
)

const (
	maxEmojiBar   = 20
	maxBulletsPer = 5
	maxComments   = 50
)

// Render produces the markdown report delivered to the session's origin.
func Render(p ProcessedFeedback) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*Feedback Report* — session `%s` (%s)\n\n", p.SessionID, p.Date.Format("2006-01-02"))

	fmt.Fprintf(&b, "*Participation:* %d of %d responded\n", p.Submitted, p.TotalParticipants)
	if p.CancelledEarly {
		b.WriteString("_Note: this session was cancelled early; the report covers responses collected so far._\n")
	}
	if p.Submitted == 0 {
		b.WriteString("\nNo responses were submitted before the window closed. Nothing to analyze this time.\n")
		return b.String()
	}
	if p.LowResponse {
		b.WriteString("_Warning: low response rate — treat this report as low-confidence._\n")
	}

	b.WriteString("\n*Sentiment:* ")
	b.WriteString(emojiBar(p.SentimentCounts, maxEmojiBar))
	fmt.Fprintf(&b, "  (%d positive / %d neutral / %d negative)\n",
		p.SentimentCounts[domain.SentimentPositive],
		p.SentimentCounts[domain.SentimentNeutral],
		p.SentimentCounts[domain.SentimentNegative])

	if p.Analysis != nil && len(p.Analysis.Themes) > 0 {
		b.WriteString("\n*Themes:*\n")
		for _, theme := range p.Analysis.Themes {
			fmt.Fprintf(&b, "• %s\n", theme)
		}
	}

	if p.Analysis != nil && p.Analysis.Summary != "" {
		b.WriteString("\n*Summary:*\n")
		b.WriteString(p.Analysis.Summary)
		b.WriteString("\n")
	}

	writeBullets(&b, "What went well", p.WentWell)
	writeBullets(&b, "What could improve", p.CouldImprove)

	if p.Analysis != nil && len(p.Analysis.AnonymizedQuotes) > 0 {
		b.WriteString("\n*Anonymized comments:*\n")
		quotes := p.Analysis.AnonymizedQuotes
		if len(quotes) > maxComments {
			quotes = quotes[:maxComments]
		}
		for _, q := range quotes {
			fmt.Fprintf(&b, "> %s\n", q)
		}
	}

	if p.Degraded {
		b.WriteString("\n_Note: the analysis service was unavailable; this report shows raw responses without anonymization or summary._\n")
	}

	return b.String()
}

func writeBullets(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	if len(items) > maxBulletsPer {
		items = items[:maxBulletsPer]
	}
	fmt.Fprintf(b, "\n*%s:*\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "• %s\n", item)
	}
}

// emojiBar scales sentiment counts into a bar of at most max emojis. A
// bucket with at least one vote always shows at least one emoji.
func emojiBar(counts map[domain.SentimentScore]int, max int) string {
	pos := counts[domain.SentimentPositive]
	neu := counts[domain.SentimentNeutral]
	neg := counts[domain.SentimentNegative]
	total := pos + neu + neg
	if total == 0 {
		total = 1
	}

	// Compress when over the cap, never stretch small counts.
	scale := 1.0
	if total > max {
		scale = float64(max) / float64(total)
	}
	return strings.Repeat("😊", scaled(pos, scale)) +
		strings.Repeat("😐", scaled(neu, scale)) +
		strings.Repeat("🙁", scaled(neg, scale))
}

func scaled(count int, scale float64) int {
	if count == 0 {
		return 0
	}
	n := int(float64(count)*scale + 0.5)
	if n < 1 {
		n = 1
	}
	return n
}
