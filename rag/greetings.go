package rag

import "strings"

// greetings are short phrases answered with a canned reply before any
// retrieval work happens. This is a cost optimization at the conversational
// edge, not part of the grounding contract.
var greetings = map[string]struct{}{
	"hi":             {},
	"hello":          {},
	"hey":            {},
	"good morning":   {},
	"good afternoon": {},
	"good evening":   {},
	"thanks":         {},
	"thank you":      {},
	"ok":             {},
	"okay":           {},
}

// IsGreeting reports whether text is a common greeting or short polite
// phrase, ignoring case and surrounding whitespace.
func IsGreeting(text string) bool {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return false
	}
	_, ok := greetings[normalized]
	return ok
}

// GreetingResponse is the fixed reply for greetings.
func GreetingResponse() string {
	return "Hello! How can I help you?"
}
