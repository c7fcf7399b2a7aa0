package store

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestPreviewQueryShortQueriesPassThrough(t *testing.T) {
	query := "what is the refund policy?"
	if got := previewQuery(query); got != query {
		t.Fatalf("expected %q, got %q", query, got)
	}

	exact := strings.Repeat("a", 100)
	if got := previewQuery(exact); got != exact {
		t.Fatalf("expected 100-rune query untouched, got %q", got)
	}
}

func TestPreviewQueryTruncatesOnRuneBoundary(t *testing.T) {
	// 98 ASCII runes followed by three 3-byte runes. A byte-based slice
	// at 100 would cut the second one mid-sequence.
	query := strings.Repeat("a", 98) + "日本語"

	got := previewQuery(query)
	if !utf8.ValidString(got) {
		t.Fatalf("preview is not valid UTF-8: %q", got)
	}
	want := strings.Repeat("a", 98) + "日本..."
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
