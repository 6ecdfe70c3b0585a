package domain

import (
	"time"

	"github.com/ernie/minictrl/internal/csgolog"
)

// EventUnrecognized is the event type for quarantined lines
const EventUnrecognized = "unrecognized"

// Event represents a real-time event for WebSocket broadcast and NATS
type Event struct {
	ID        string    `json:"id,omitempty"`
	Type      string    `json:"event"`
	Server    string    `json:"server"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// UnrecognizedLine is the payload of an EventUnrecognized event
type UnrecognizedLine struct {
	Line string `json:"line"`
}

// NewEvent wraps a decoded log entry. The timestamp is the entry's own log
// time interpreted in loc (UTC when nil).
func NewEvent(server string, entry csgolog.LogEntry, loc *time.Location) Event {
	return Event{
		Type:      string(entry.Kind()),
		Server:    server,
		Timestamp: entry.Prefix().Time(loc),
		Data:      entry,
	}
}

// NewUnrecognizedEvent wraps a line no grammar rule matched
func NewUnrecognizedEvent(server, line string, at time.Time) Event {
	return Event{
		Type:      EventUnrecognized,
		Server:    server,
		Timestamp: at,
		Data:      UnrecognizedLine{Line: line},
	}
}
