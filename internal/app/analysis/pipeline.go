package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PabloGalante/pulsebot/internal/domain"
	"github.com/PabloGalante/pulsebot/internal/observability"
)

// Pipeline runs the analysis stages over a sealed session's responses in
// sequence: anonymize quotes, extract themes, generate a summary. Each stage
// talks to the language model through the domain.LLMClient port.
//
// Anonymization and theme extraction degrade gracefully; only a failed
// summary makes the whole analysis unavailable, at which point the
// coordinator falls back to a raw-data report.
type Pipeline struct {
	llm domain.LLMClient

	maxThemes       int
	quoteBatchSize  int
	summaryAttempts int
}

func NewPipeline(llm domain.LLMClient) *Pipeline {
	return &Pipeline{
		llm:             llm,
		maxThemes:       5,
		quoteBatchSize:  10,
		summaryAttempts: 2,
	}
}

// Analyze implements domain.Analyzer.
func (p *Pipeline) Analyze(ctx context.Context, responses []domain.Response) (*domain.AnalysisResult, error) {
	quotes := collectQuotes(responses)
	if len(quotes) == 0 {
		return &domain.AnalysisResult{}, nil
	}

	log := observability.LoggerFromContext(ctx)
	log.Info("analysis started", "quote_count", len(quotes))

	start := time.Now()
	anonymized := p.anonymizeQuotes(ctx, quotes)
	log.Info("stage done", "stage", "anonymize", "elapsed_ms", time.Since(start).Milliseconds())

	start = time.Now()
	themes, err := p.extractThemes(ctx, anonymized)
	if err != nil {
		log.Warn("theme extraction failed", "error", err)
		themes = nil
	}
	log.Info("stage done", "stage", "themes", "elapsed_ms", time.Since(start).Milliseconds())

	start = time.Now()
	summary, err := p.generateSummary(ctx, anonymized, themes)
	if err != nil {
		log.Error("summary generation failed", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrAnalysisUnavailable, err)
	}
	log.Info("stage done", "stage", "summary", "elapsed_ms", time.Since(start).Milliseconds())

	return &domain.AnalysisResult{
		AnonymizedQuotes: anonymized,
		Themes:           themes,
		Summary:          summary,
	}, nil
}

// collectQuotes flattens the free-text answers into standalone quote strings,
// ordered by submission time. Participant identities never enter the
// pipeline.
func collectQuotes(responses []domain.Response) []string {
	ordered := make([]domain.Response, len(responses))
	copy(ordered, responses)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SubmittedAt.Before(ordered[j].SubmittedAt)
	})

	var quotes []string
	for _, r := range ordered {
		if text := strings.TrimSpace(r.WentWell); text != "" {
			quotes = append(quotes, text)
		}
		if text := strings.TrimSpace(r.CouldImprove); text != "" {
			quotes = append(quotes, text)
		}
	}
	return quotes
}

// Model replies are asked to contain ONLY a minified JSON array, but models
// wrap them in prose often enough that we fish the first array out.
var jsonArrayRe = regexp.MustCompile(`\[[\s\S]*?\]`)

func parseStringArray(content string) ([]string, error) {
	raw := jsonArrayRe.FindString(content)
	if raw == "" {
		return nil, fmt.Errorf("model response did not contain a JSON array")
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("parsing JSON array from model response: %w", err)
	}
	return out, nil
}
