package ui

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestFitToWidthTruncatesOnRuneBoundaries(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("löschen übrig ", 10)
	got := fitToWidth(long, 20)

	if !utf8.ValidString(got) {
		t.Fatalf("truncation split a rune, got %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 20 {
		t.Fatalf("rune width = %d, want 20 (%q)", n, got)
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("truncated line missing ellipsis, got %q", got)
	}
}

func TestFitToWidthPadsShortLines(t *testing.T) {
	t.Parallel()

	got := fitToWidth("päd", 20)

	if n := utf8.RuneCountInString(got); n != 20 {
		t.Fatalf("rune width = %d, want 20 (%q)", n, got)
	}
	if !strings.HasPrefix(got, "päd ") {
		t.Fatalf("padding corrupted the line, got %q", got)
	}
}
