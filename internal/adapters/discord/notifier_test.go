package discord

import (
	"strings"
	"testing"
)

func TestNormalizeBotToken(t *testing.T) {
	if got := normalizeBotToken("abc123"); got != "Bot abc123" {
		t.Fatalf("expected Bot prefix, got %q", got)
	}
	if got := normalizeBotToken("  Bot abc123  "); got != "Bot abc123" {
		t.Fatalf("expected existing prefix kept, got %q", got)
	}
	if got := normalizeBotToken("bot abc123"); got != "bot abc123" {
		t.Fatalf("lowercase prefix should be kept as-is, got %q", got)
	}
}

func TestSplitMessageShort(t *testing.T) {
	chunks := splitMessage("hello", 1900)
	if len(chunks) != 1 || chunks[0] != "hello" {
		t.Fatalf("expected single chunk, got %v", chunks)
	}
}

func TestSplitMessagePrefersLineBoundaries(t *testing.T) {
	lines := make([]string, 0, 40)
	for i := 0; i < 40; i++ {
		lines = append(lines, strings.Repeat("x", 10))
	}
	text := strings.Join(lines, "\n")

	chunks := splitMessage(text, 50)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 50 {
			t.Fatalf("chunk %d exceeds limit: %d chars", i, len(c))
		}
		for _, line := range strings.Split(c, "\n") {
			if line != strings.Repeat("x", 10) {
				t.Fatalf("chunk %d broke a line: %q", i, line)
			}
		}
	}

	if got := strings.Join(chunks, "\n"); got != text {
		t.Fatalf("chunks do not reassemble the original text")
	}
}

func TestSplitMessageOversizedLine(t *testing.T) {
	text := strings.Repeat("y", 120)
	chunks := splitMessage(text, 50)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if strings.Join(chunks, "") != text {
		t.Fatalf("hard-split chunks do not reassemble the line")
	}
}
