// Package session implements the session id policy. Sessions carry no
// server-side state; the id only correlates event log entries and lets a
// client imply continuity.
package session

import (
	"strings"

	"github.com/google/uuid"

	"github.com/docmind/rag-assistant/events"
)

type Manager struct {
	log events.Sink
}

func NewManager(sink events.Sink) *Manager {
	return &Manager{log: sink}
}

// SessionID reuses the provided id unless the caller forces a new session or
// supplied none, in which case a fresh random id is generated and logged.
func (m *Manager) SessionID(provided string, forceNew bool) string {
	provided = strings.TrimSpace(provided)
	if forceNew || provided == "" {
		id := uuid.NewString()
		m.log.Event("new_session", events.Fields{
			"session_id": id,
		})
		return id
	}
	return provided
}
