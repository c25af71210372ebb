package tui

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestWrapTextKeepsRunesIntact(t *testing.T) {
	// Multibyte runes sitting across the wrap boundary must never be
	// split into invalid UTF-8.
	text := strings.Repeat("日本語テキスト", 10)
	for width := 1; width <= 12; width++ {
		for _, line := range wrapText(text, width) {
			if !utf8.ValidString(line) {
				t.Fatalf("width %d produced invalid UTF-8: %q", width, line)
			}
		}
	}
}

func TestWrapTextBreaksAtWordBoundaries(t *testing.T) {
	lines := wrapText("the quick brown fox jumps", 11)
	want := []string{"the quick", "brown fox", "jumps"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %q", len(want), len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestWrapTextHardBreaksLongWords(t *testing.T) {
	for _, line := range wrapText("supercalifragilisticexpialidocious", 8) {
		if utf8.RuneCountInString(line) > 8 {
			t.Errorf("line exceeds width: %q", line)
		}
	}

	// Zero width is a no-op passthrough
	if got := wrapText("unchanged", 0); len(got) != 1 || got[0] != "unchanged" {
		t.Errorf("expected passthrough at width 0, got %q", got)
	}
}
