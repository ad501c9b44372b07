package analysis

import (
	"context"
	"fmt"
	"strings"
)

const themesPrompt = `You are an expert analyst. Given a set of feedback sentences, identify up to %d overarching themes expressed. Themes must be short noun phrases.
Respond ONLY with a minified JSON array of theme strings (e.g. ["communication", "work-life balance"]). Do not include any other text.

Feedback:
`

// extractThemes asks the model for up to maxThemes high-level themes.
func (p *Pipeline) extractThemes(ctx context.Context, quotes []string) ([]string, error) {
	if len(quotes) == 0 {
		return nil, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, themesPrompt, p.maxThemes)
	for _, q := range quotes {
		b.WriteString("- ")
		b.WriteString(q)
		b.WriteString("\n")
	}

	reply, err := p.llm.Generate(ctx, b.String())
	if err != nil {
		return nil, err
	}

	themes, err := parseStringArray(reply)
	if err != nil {
		return nil, err
	}
	if len(themes) > p.maxThemes {
		themes = themes[:p.maxThemes]
	}
	return themes, nil
}
