package analysis_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/pulsebot/internal/adapters/llm"
	"github.com/PabloGalante/pulsebot/internal/app/analysis"
	"github.com/PabloGalante/pulsebot/internal/domain"
)

func scriptedLLM(t *testing.T) *llm.MockLLM {
	t.Helper()
	mock := llm.NewMockLLM()
	mock.GenerateFunc = func(_ context.Context, prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "privacy specialist"):
			// Echo back one rewritten quote per input line.
			var quotes []string
			for _, line := range strings.Split(prompt, "\n") {
				if strings.HasPrefix(line, "- ") {
					quotes = append(quotes, "someone said: "+strings.TrimPrefix(line, "- "))
				}
			}
			out, err := json.Marshal(quotes)
			require.NoError(t, err)
			return string(out), nil
		case strings.Contains(prompt, "expert analyst"):
			return `["communication", "tooling"]`, nil
		default:
			return "The team is broadly positive with some tooling concerns.", nil
		}
	}
	return mock
}

func sampleResponses() []domain.Response {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return []domain.Response{
		{Score: domain.SentimentPositive, WentWell: "pairing with Bob worked", CouldImprove: "fewer meetings", SubmittedAt: base.Add(time.Minute)},
		{Score: domain.SentimentNeutral, WentWell: "release went fine", SubmittedAt: base},
	}
}

func TestAnalyzeHappyPath(t *testing.T) {
	p := analysis.NewPipeline(scriptedLLM(t))

	res, err := p.Analyze(context.Background(), sampleResponses())
	require.NoError(t, err)

	// Quotes flattened in submission order, anonymized by the first stage.
	require.Len(t, res.AnonymizedQuotes, 3)
	assert.Equal(t, "someone said: release went fine", res.AnonymizedQuotes[0])
	assert.Equal(t, "someone said: pairing with Bob worked", res.AnonymizedQuotes[1])

	assert.Equal(t, []string{"communication", "tooling"}, res.Themes)
	assert.NotEmpty(t, res.Summary)
}

func TestAnalyzeEmptyResponses(t *testing.T) {
	calls := 0
	mock := llm.NewMockLLM()
	mock.GenerateFunc = func(context.Context, string) (string, error) {
		calls++
		return "", nil
	}
	p := analysis.NewPipeline(mock)

	res, err := p.Analyze(context.Background(), []domain.Response{
		{Score: domain.SentimentNeutral, WentWell: "   "},
	})
	require.NoError(t, err)
	assert.Empty(t, res.AnonymizedQuotes)
	assert.Zero(t, calls, "no text means no model calls")
}

func TestAnalyzeDegradesWhenModelDown(t *testing.T) {
	mock := llm.NewMockLLM()
	mock.GenerateFunc = func(context.Context, string) (string, error) {
		return "", errors.New("model offline")
	}
	p := analysis.NewPipeline(mock)

	_, err := p.Analyze(context.Background(), sampleResponses())
	require.ErrorIs(t, err, domain.ErrAnalysisUnavailable)
}

func TestAnonymizationFallsBackToUnredacted(t *testing.T) {
	mock := llm.NewMockLLM()
	mock.GenerateFunc = func(_ context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "privacy specialist") {
			return "", errors.New("quota exceeded")
		}
		if strings.Contains(prompt, "expert analyst") {
			return `["themes"]`, nil
		}
		return "summary text", nil
	}
	p := analysis.NewPipeline(mock)

	res, err := p.Analyze(context.Background(), sampleResponses())
	require.NoError(t, err)
	require.NotEmpty(t, res.AnonymizedQuotes)
	for _, q := range res.AnonymizedQuotes {
		assert.True(t, strings.HasPrefix(q, "[unredacted] "), "quote %q", q)
	}
}

func TestAnalyzeSurvivesThemeFailure(t *testing.T) {
	mock := llm.NewMockLLM()
	mock.GenerateFunc = func(_ context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "expert analyst") {
			return "not json at all", nil
		}
		if strings.Contains(prompt, "privacy specialist") {
			return `["a", "b", "c"]`, nil
		}
		return "summary text", nil
	}
	p := analysis.NewPipeline(mock)

	res, err := p.Analyze(context.Background(), sampleResponses())
	require.NoError(t, err)
	assert.Empty(t, res.Themes)
	assert.Equal(t, "summary text", res.Summary)
}

func TestSummaryRetriesOnce(t *testing.T) {
	summaryCalls := 0
	mock := llm.NewMockLLM()
	mock.GenerateFunc = func(_ context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "summarizing team feedback") {
			summaryCalls++
			if summaryCalls == 1 {
				return "", errors.New("transient")
			}
			return "second attempt summary", nil
		}
		return `["a", "b", "c"]`, nil
	}
	p := analysis.NewPipeline(mock)

	res, err := p.Analyze(context.Background(), sampleResponses())
	require.NoError(t, err)
	assert.Equal(t, 2, summaryCalls)
	assert.Equal(t, "second attempt summary", res.Summary)
}
