package events_test

import (
	"testing"

	"github.com/docmind/rag-assistant/events"
)

func TestReaderGroupsBySession(t *testing.T) {
	dir := t.TempDir()

	engine, err := events.NewLogger(dir, "rag_engine", 0)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	sessions, err := events.NewLogger(dir, "session_manager", 0)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	sessions.Event("new_session", events.Fields{"session_id": "s-1"})
	engine.Event("user_question_received", events.Fields{"session_id": "s-1"})
	engine.Event("rag_search_started", events.Fields{"session_id": "s-1"})
	engine.Event("user_question_received", events.Fields{"session_id": "s-2"})

	reader := events.NewReader(dir)

	summaries, err := reader.Sessions()
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(summaries))
	}

	counts := map[string]int{}
	for _, summary := range summaries {
		counts[summary.SessionID] = summary.EventCount
		if summary.StartTime == "" || summary.LastActivity == "" {
			t.Fatalf("missing timestamps in summary: %+v", summary)
		}
	}
	if counts["s-1"] != 3 {
		t.Fatalf("expected 3 events for s-1, got %d", counts["s-1"])
	}
	if counts["s-2"] != 1 {
		t.Fatalf("expected 1 event for s-2, got %d", counts["s-2"])
	}

	timeline, err := reader.Session("s-1")
	if err != nil {
		t.Fatalf("session timeline: %v", err)
	}
	if len(timeline) != 3 {
		t.Fatalf("expected 3 timeline entries, got %d", len(timeline))
	}
	seen := map[string]bool{}
	for _, entry := range timeline {
		name, _ := entry["event"].(string)
		seen[name] = true
	}
	for _, want := range []string{"new_session", "user_question_received", "rag_search_started"} {
		if !seen[want] {
			t.Fatalf("timeline missing %s: %v", want, timeline)
		}
	}
}

func TestReaderMissingDirectory(t *testing.T) {
	reader := events.NewReader("does/not/exist")

	entries, err := reader.All()
	if err != nil {
		t.Fatalf("missing log directory must yield no entries, not an error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}
