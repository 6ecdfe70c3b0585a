package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ernie/minictrl/internal/csgolog"
	"github.com/ernie/minictrl/internal/domain"
)

var (
	// ErrServerNotFound is returned for queries naming an unknown server
	ErrServerNotFound = errors.New("server not found")
	// ErrPayloadNotFound is returned when an event has no raw payload
	ErrPayloadNotFound = errors.New("payload not found")
)

// formatTimestamp converts time.Time to SQLite-compatible UTC ISO8601 string
// The Z suffix ensures the Go sqlite driver parses it back as UTC
func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

//go:embed schema.sql
var schema string

// Store provides database access
type Store struct {
	db *sql.DB
}

// New creates a new Store with the given database path
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting pragmas: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// --- Server methods ---

// UpsertServer creates or updates a server by name and fills in its ID
func (s *Store) UpsertServer(ctx context.Context, srv *domain.Server) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO servers (name, log_path)
		VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET
			log_path = excluded.log_path
	`, srv.Name, srv.LogPath)
	if err != nil {
		return fmt.Errorf("upserting server %s: %w", srv.Name, err)
	}

	// Always query for the ID (LastInsertId unreliable with ON CONFLICT)
	return s.db.QueryRowContext(ctx, "SELECT id FROM servers WHERE name = ?", srv.Name).Scan(&srv.ID)
}

// GetServers returns all servers
func (s *Store) GetServers(ctx context.Context) ([]domain.Server, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, log_path, last_event_at, created_at FROM servers ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	servers := []domain.Server{}
	for rows.Next() {
		var srv domain.Server
		var logPath sql.NullString
		var lastEventAt sql.NullTime
		if err := rows.Scan(&srv.ID, &srv.Name, &logPath, &lastEventAt, &srv.CreatedAt); err != nil {
			return nil, err
		}
		srv.LogPath = scanNullString(logPath)
		srv.LastEventAt = scanNullTime(lastEventAt)
		servers = append(servers, srv)
	}
	return servers, rows.Err()
}

// GetServerByName returns a server by name
func (s *Store) GetServerByName(ctx context.Context, name string) (*domain.Server, error) {
	var srv domain.Server
	var logPath sql.NullString
	var lastEventAt sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, log_path, last_event_at, created_at FROM servers WHERE name = ?
	`, name).Scan(&srv.ID, &srv.Name, &logPath, &lastEventAt, &srv.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServerNotFound
	}
	if err != nil {
		return nil, err
	}
	srv.LogPath = scanNullString(logPath)
	srv.LastEventAt = scanNullTime(lastEventAt)
	return &srv, nil
}

func (s *Store) serverID(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM servers WHERE name = ?", name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrServerNotFound
	}
	return id, err
}

// --- Event methods ---

// InsertEvent stores an event for its server, assigning an ID when empty.
// The server must already exist.
func (s *Store) InsertEvent(ctx context.Context, ev *domain.Event) error {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		return fmt.Errorf("encoding event data: %w", err)
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var serverID int64
	err = tx.QueryRowContext(ctx, "SELECT id FROM servers WHERE name = ?", ev.Server).Scan(&serverID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrServerNotFound
	}
	if err != nil {
		return err
	}

	logged := formatTimestamp(ev.Timestamp)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO events (id, server_id, kind, logged_at, ingested_at, data)
		VALUES (?, ?, ?, ?, ?, ?)
	`, ev.ID, serverID, ev.Type, logged, formatTimestamp(time.Now()), string(data)); err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}

	// JSON encoding replaces invalid UTF-8, so get5 payloads are also kept as bytes
	if g5, ok := ev.Data.(csgolog.Get5Event); ok {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO event_payloads (event_id, payload) VALUES (?, ?)
		`, ev.ID, []byte(g5.JSON)); err != nil {
			return fmt.Errorf("inserting event payload: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE servers SET last_event_at = ? WHERE id = ?
	`, logged, serverID); err != nil {
		return fmt.Errorf("updating server: %w", err)
	}

	return tx.Commit()
}

// GetRecentEvents returns the newest events for a server, newest first.
// An empty kind matches every kind. Data is returned as raw JSON.
func (s *Store) GetRecentEvents(ctx context.Context, server, kind string, limit int) ([]domain.Event, error) {
	serverID, err := s.serverID(ctx, server)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, kind, logged_at, data FROM events WHERE server_id = ?`
	args := []any{serverID}
	if kind != "" {
		query += ` AND kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY seq DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		ev := domain.Event{Server: server}
		var data string
		if err := rows.Scan(&ev.ID, &ev.Type, &ev.Timestamp, &data); err != nil {
			return nil, err
		}
		ev.Timestamp = ev.Timestamp.UTC()
		ev.Data = json.RawMessage(data)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// GetEventPayload returns the raw payload stored with an event, byte for byte
func (s *Store) GetEventPayload(ctx context.Context, eventID string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM event_payloads WHERE event_id = ?
	`, eventID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPayloadNotFound
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// CountEventsByKind returns the number of stored events per kind for a server
func (s *Store) CountEventsByKind(ctx context.Context, server string) (map[string]int, error) {
	serverID, err := s.serverID(ctx, server)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, COUNT(*) FROM events WHERE server_id = ? GROUP BY kind
	`, serverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}

// GetServerSummary returns event counts and the quarantine size for a server
func (s *Store) GetServerSummary(ctx context.Context, server string) (*domain.ServerSummary, error) {
	counts, err := s.CountEventsByKind(ctx, server)
	if err != nil {
		return nil, err
	}

	summary := &domain.ServerSummary{Server: server, ByKind: counts}
	for _, n := range counts {
		summary.Total += n
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM unrecognized_lines u
		JOIN servers s ON s.id = u.server_id
		WHERE s.name = ?
	`, server).Scan(&summary.Unrecognized)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// --- Quarantine methods ---

// InsertUnrecognized quarantines a line no grammar rule matched
func (s *Store) InsertUnrecognized(ctx context.Context, server, line string, at time.Time) error {
	serverID, err := s.serverID(ctx, server)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO unrecognized_lines (server_id, line, ingested_at) VALUES (?, ?, ?)
	`, serverID, line, formatTimestamp(at))
	if err != nil {
		return fmt.Errorf("inserting unrecognized line: %w", err)
	}
	return nil
}

// GetUnrecognizedLines returns the newest quarantined lines for a server
func (s *Store) GetUnrecognizedLines(ctx context.Context, server string, limit int) ([]domain.QuarantinedLine, error) {
	serverID, err := s.serverID(ctx, server)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, line, ingested_at FROM unrecognized_lines
		WHERE server_id = ?
		ORDER BY id DESC LIMIT ?
	`, serverID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := []domain.QuarantinedLine{}
	for rows.Next() {
		q := domain.QuarantinedLine{Server: server}
		if err := rows.Scan(&q.ID, &q.Line, &q.IngestedAt); err != nil {
			return nil, err
		}
		q.IngestedAt = q.IngestedAt.UTC()
		lines = append(lines, q)
	}
	return lines, rows.Err()
}
