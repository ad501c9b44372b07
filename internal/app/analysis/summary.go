package analysis

import (
	"context"
	"strings"

	"github.com/PabloGalante/pulsebot/internal/observability"
)

const summaryPrompt = `You are a helpful assistant tasked with summarizing team feedback. The quotes are already anonymized and the high-level themes extracted. Write a concise summary (at most 150 words, neutral tone) highlighting the overall sentiment, recurring themes, and key takeaways. Do not mention identities, quotes, or counts explicitly.`

// maxSummaryChars caps the summary so a single report message stays small.
const maxSummaryChars = 900

// generateSummary produces the report's summary paragraph. It retries once;
// a second failure is surfaced to the caller.
func (p *Pipeline) generateSummary(ctx context.Context, quotes, themes []string) (string, error) {
	var b strings.Builder
	b.WriteString(summaryPrompt)
	b.WriteString("\n\nThe high-level themes are:\n")
	if len(themes) == 0 {
		b.WriteString("(no explicit themes)\n")
	}
	for _, t := range themes {
		b.WriteString("- ")
		b.WriteString(t)
		b.WriteString("\n")
	}
	b.WriteString("\nHere are the anonymized quotes:\n")
	for _, q := range quotes {
		b.WriteString("\"")
		b.WriteString(q)
		b.WriteString("\"\n")
	}
	b.WriteString("\nPlease produce the summary paragraph.")

	var lastErr error
	for attempt := 1; attempt <= p.summaryAttempts; attempt++ {
		reply, err := p.llm.Generate(ctx, b.String())
		if err != nil {
			lastErr = err
			observability.LoggerFromContext(ctx).Warn("summary attempt failed",
				"attempt", attempt,
				"error", err)
			continue
		}

		summary := strings.TrimSpace(reply)
		if len(summary) > maxSummaryChars {
			summary = strings.TrimSpace(summary[:maxSummaryChars]) + "…"
		}
		return summary, nil
	}
	return "", lastErr
}
