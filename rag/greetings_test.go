package rag_test

import (
	"testing"

	"github.com/docmind/rag-assistant/rag"
)

func TestIsGreeting(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"hi", true},
		{"  Hi  ", true},
		{"HELLO", true},
		{"good morning", true},
		{"Thank You", true},
		{"okay", true},
		{"", false},
		{"   ", false},
		{"hi there, what is the refund policy?", false},
		{"hello world", false},
	}

	for _, tc := range cases {
		if got := rag.IsGreeting(tc.input); got != tc.want {
			t.Errorf("IsGreeting(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestGreetingResponseFixed(t *testing.T) {
	if got := rag.GreetingResponse(); got != "Hello! How can I help you?" {
		t.Fatalf("unexpected greeting response: %q", got)
	}
}
