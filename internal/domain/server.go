package domain

import "time"

// Server represents a game server whose log is ingested
type Server struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	LogPath     string     `json:"log_path"`
	CreatedAt   time.Time  `json:"created_at"`
	LastEventAt *time.Time `json:"last_event_at,omitempty"`
}

// QuarantinedLine is a stored line that no grammar rule matched
type QuarantinedLine struct {
	ID         int64     `json:"id"`
	Server     string    `json:"server"`
	Line       string    `json:"line"`
	IngestedAt time.Time `json:"ingested_at"`
}

// ServerSummary counts stored events for one server
type ServerSummary struct {
	Server       string         `json:"server"`
	Total        int            `json:"total"`
	ByKind       map[string]int `json:"by_kind"`
	Unrecognized int            `json:"unrecognized"`
}
