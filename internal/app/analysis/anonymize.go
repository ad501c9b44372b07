package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/PabloGalante/pulsebot/internal/observability"
)

const anonymizePrompt = `You are a privacy specialist. Rewrite the quotes below so that no personal identifiers remain. Replace names, @mentions, emails, role or company names with neutral placeholders like "someone" or "a colleague". Keep the meaning and sentiment. Do not add commentary.
Respond ONLY with a minified JSON array of the rewritten quotes, in the same order as the input.

Quotes:
`

// anonymizeQuotes rewrites quotes in batches. A failed batch falls back to
// the original text marked [unredacted] so that reporting always proceeds.
func (p *Pipeline) anonymizeQuotes(ctx context.Context, quotes []string) []string {
	out := make([]string, 0, len(quotes))
	for start := 0; start < len(quotes); start += p.quoteBatchSize {
		end := start + p.quoteBatchSize
		if end > len(quotes) {
			end = len(quotes)
		}
		batch := quotes[start:end]

		rewritten, err := p.anonymizeBatch(ctx, batch)
		if err != nil {
			observability.LoggerFromContext(ctx).Warn("quote anonymization failed for batch",
				"batch_size", len(batch),
				"error", err)
			for _, q := range batch {
				out = append(out, "[unredacted] "+q)
			}
			continue
		}
		out = append(out, rewritten...)
	}
	return out
}

func (p *Pipeline) anonymizeBatch(ctx context.Context, batch []string) ([]string, error) {
	var b strings.Builder
	b.WriteString(anonymizePrompt)
	for _, q := range batch {
		b.WriteString("- ")
		b.WriteString(q)
		b.WriteString("\n")
	}

	reply, err := p.llm.Generate(ctx, b.String())
	if err != nil {
		return nil, err
	}

	rewritten, err := parseStringArray(reply)
	if err != nil {
		return nil, err
	}
	if len(rewritten) != len(batch) {
		return nil, fmt.Errorf("expected %d rewritten quotes, got %d", len(batch), len(rewritten))
	}
	return rewritten, nil
}
