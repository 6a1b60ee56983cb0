package telegram

import (
	"strings"
	"testing"
)

func TestSplitMessageShort(t *testing.T) {
	parts := SplitMessage("hello")
	if len(parts) != 1 || parts[0] != "hello" {
		t.Fatalf("SplitMessage() = %v", parts)
	}
}

func TestSplitMessageByLines(t *testing.T) {
	line := strings.Repeat("a", 1000)
	text := strings.Join([]string{line, line, line, line, line}, "\n")

	parts := SplitMessage(text)
	if len(parts) != 2 {
		t.Fatalf("got %d parts, want 2", len(parts))
	}
	for i, p := range parts {
		if len(p) > MaxMessageLength {
			t.Errorf("part %d is %d bytes", i, len(p))
		}
	}
	if got := strings.Join(parts, "\n"); got != text {
		t.Error("rejoined parts differ from input")
	}
}

func TestSplitMessageLongLine(t *testing.T) {
	word := strings.Repeat("b", 99)
	words := make([]string, 100)
	for i := range words {
		words[i] = word
	}
	text := strings.Join(words, " ")

	parts := SplitMessage(text)
	if len(parts) < 3 {
		t.Fatalf("got %d parts, want at least 3", len(parts))
	}
	for i, p := range parts {
		if len(p) > MaxMessageLength {
			t.Errorf("part %d is %d bytes", i, len(p))
		}
		if strings.HasPrefix(p, " ") || strings.HasSuffix(p, " ") {
			t.Errorf("part %d has untrimmed spaces", i)
		}
	}
}
