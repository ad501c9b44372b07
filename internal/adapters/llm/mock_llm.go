package llm

import "context"

// MockLLM is a canned domain.LLMClient for local mode and tests. Tests can
// script it through GenerateFunc.
type MockLLM struct {
	GenerateFunc func(ctx context.Context, prompt string) (string, error)
}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	// Parseable by every analysis stage: a JSON array for the structured
	// stages, plain-enough text for the summary.
	return `["feedback received"]`, nil
}
