package rag_test

import (
	"testing"

	"github.com/docmind/rag-assistant/rag"
)

func TestFormatForChatEmpty(t *testing.T) {
	if got := rag.FormatForChat(""); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestFormatForChatPlainTextUnchanged(t *testing.T) {
	input := "First line.\nSecond line."
	if got := rag.FormatForChat(input); got != input {
		t.Fatalf("plain text should pass through, got %q", got)
	}
}

func TestFormatForChatStripsHeaders(t *testing.T) {
	got := rag.FormatForChat("## Summary\nThe answer is 42.")
	want := "Summary\nThe answer is 42."
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFormatForChatDropsEmptyHeaders(t *testing.T) {
	got := rag.FormatForChat("###\nContent here.")
	if got != "Content here." {
		t.Fatalf("expected empty header dropped, got %q", got)
	}
}

func TestFormatForChatRemovesEmphasis(t *testing.T) {
	got := rag.FormatForChat("This is **bold** and *italic* text.")
	want := "This is bold and italic text."
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFormatForChatNormalizesBullets(t *testing.T) {
	got := rag.FormatForChat("- item\n* other")
	want := "• item\n• other"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFormatForChatCollapsesBlankLines(t *testing.T) {
	got := rag.FormatForChat("First.\n\n\n\nSecond.")
	want := "First.\n\nSecond."
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFormatForChatEmptyBoldEdgeCase(t *testing.T) {
	// "** " is a degenerate marker; it must degrade gracefully, not panic.
	got := rag.FormatForChat("** ")
	if got != "" {
		t.Fatalf("expected degenerate marker to reduce to nothing, got %q", got)
	}
}
