package events

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Entry is one decoded event line from any component file.
type Entry map[string]any

// SessionSummary describes one session's footprint in the event trail.
type SessionSummary struct {
	SessionID    string `json:"session_id"`
	StartTime    string `json:"start_time"`
	LastActivity string `json:"last_activity"`
	EventCount   int    `json:"event_count"`
}

// Reader reconstructs timelines from the per-component .jsonl files.
type Reader struct {
	dir string
}

func NewReader(dir string) *Reader {
	return &Reader{dir: dir}
}

// All returns every event across all component files, ordered by timestamp.
// Unparseable lines are skipped; a missing log directory yields no entries.
func (r *Reader) All() ([]Entry, error) {
	files, err := filepath.Glob(filepath.Join(r.dir, "*.jsonl"))
	if err != nil {
		return nil, fmt.Errorf("list log files: %w", err)
	}

	entries := make([]Entry, 0)
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("open log file: %w", err)
		}

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			var entry Entry
			if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}
		scanErr := scanner.Err()
		f.Close()
		if scanErr != nil {
			return nil, fmt.Errorf("read log file %s: %w", path, scanErr)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return timestampOf(entries[i]) < timestampOf(entries[j])
	})

	return entries, nil
}

// Sessions groups the trail by session_id, newest activity first.
func (r *Reader) Sessions() ([]SessionSummary, error) {
	entries, err := r.All()
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*SessionSummary)
	order := make([]string, 0)
	for _, entry := range entries {
		sid := sessionIDOf(entry)
		if sid == "" {
			continue
		}
		ts := timestampOf(entry)
		summary, ok := byID[sid]
		if !ok {
			byID[sid] = &SessionSummary{
				SessionID:    sid,
				StartTime:    ts,
				LastActivity: ts,
				EventCount:   1,
			}
			order = append(order, sid)
			continue
		}
		summary.LastActivity = ts
		summary.EventCount++
	}

	summaries := make([]SessionSummary, 0, len(order))
	for _, sid := range order {
		summaries = append(summaries, *byID[sid])
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].LastActivity > summaries[j].LastActivity
	})

	return summaries, nil
}

// Session returns every event logged under the given session id, in
// timestamp order.
func (r *Reader) Session(sessionID string) ([]Entry, error) {
	entries, err := r.All()
	if err != nil {
		return nil, err
	}

	matched := make([]Entry, 0)
	for _, entry := range entries {
		if sessionIDOf(entry) == sessionID {
			matched = append(matched, entry)
		}
	}
	return matched, nil
}

func timestampOf(entry Entry) string {
	ts, _ := entry["timestamp"].(string)
	return ts
}

func sessionIDOf(entry Entry) string {
	sid, _ := entry["session_id"].(string)
	return strings.TrimSpace(sid)
}
