// Package events provides the append-only structured event trail. Every
// pipeline stage records what it did as one JSON line in a per-component
// .jsonl file; consumers reconstruct per-session timelines from those files.
package events

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Fields carries the event-specific payload beyond timestamp/component/event.
type Fields map[string]any

// Sink is the capability the pipeline depends on: something that durably
// records an event. The file logger is the production implementation; tests
// substitute an in-memory sink.
type Sink interface {
	Event(name string, fields Fields)
}

// Logger appends structured events for a single component to
// <dir>/<component>.jsonl. Appends are serialized with a mutex and each
// append opens, writes and closes the file, so concurrent sessions never
// interleave within a line.
type Logger struct {
	component string
	path      string
	tz        *time.Location

	mu sync.Mutex
}

// NewLogger creates the log directory if needed and returns a logger for the
// given component. utcOffsetMinutes fixes the timestamp zone; 0 means UTC.
func NewLogger(dir, component string, utcOffsetMinutes int) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	name := fmt.Sprintf("UTC%+03d:%02d", utcOffsetMinutes/60, abs(utcOffsetMinutes%60))
	return &Logger{
		component: component,
		path:      filepath.Join(dir, component+".jsonl"),
		tz:        time.FixedZone(name, utcOffsetMinutes*60),
	}, nil
}

// Event appends one structured record. Logging is a sink: failures are
// reported on stderr but never fail the operation being logged.
func (l *Logger) Event(name string, fields Fields) {
	payload := make(map[string]any, len(fields)+3)
	for k, v := range fields {
		payload[k] = v
	}
	payload["timestamp"] = l.timestamp()
	payload["component"] = l.component
	payload["event"] = name

	line, err := json.Marshal(payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "events: marshal %s: %v\n", name, err)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "events: open %s: %v\n", l.path, err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "events: append %s: %v\n", l.path, err)
	}
}

// timestamp formats the current time as ISO-8601 with millisecond precision
// in the logger's fixed-offset zone.
func (l *Logger) timestamp() string {
	return time.Now().In(l.tz).Format("2006-01-02T15:04:05.000-07:00")
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

var _ Sink = (*Logger)(nil)
