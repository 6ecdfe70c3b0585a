package collector

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ernie/minictrl/internal/config"
	"github.com/ernie/minictrl/internal/csgolog"
	"github.com/ernie/minictrl/internal/domain"
	"github.com/ernie/minictrl/internal/logging"
	"github.com/ernie/minictrl/internal/metrics"
)

// EventStore persists ingest output
type EventStore interface {
	UpsertServer(ctx context.Context, srv *domain.Server) error
	InsertEvent(ctx context.Context, ev *domain.Event) error
	InsertUnrecognized(ctx context.Context, server, line string, at time.Time) error
}

// EventPublisher forwards events to live consumers
type EventPublisher interface {
	Publish(ctx context.Context, ev domain.Event) error
}

// Manager follows the log of every configured server
type Manager struct {
	servers   []config.CSGOServer
	store     EventStore
	publisher EventPublisher
	metrics   *metrics.Ingest
	events    chan domain.Event
	logger    zerolog.Logger

	mu      sync.Mutex
	running map[string]bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup // track goroutine completion for graceful shutdown
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithPublisher publishes every stored event
func WithPublisher(p EventPublisher) ManagerOption {
	return func(m *Manager) {
		m.publisher = p
	}
}

// WithMetrics records ingest counters
func WithMetrics(im *metrics.Ingest) ManagerOption {
	return func(m *Manager) {
		m.metrics = im
	}
}

// NewManager creates a manager for the given servers
func NewManager(servers []config.CSGOServer, store EventStore, opts ...ManagerOption) *Manager {
	m := &Manager{
		servers: servers,
		store:   store,
		events:  make(chan domain.Event, 100),
		logger:  logging.Component("manager"),
		running: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Events returns the event channel for WebSocket broadcasting
func (m *Manager) Events() <-chan domain.Event {
	return m.events
}

// Start registers every server and begins following its log. A server whose
// log cannot be opened is logged and skipped.
func (m *Manager) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	for _, srv := range m.servers {
		if err := m.store.UpsertServer(ctx, &domain.Server{Name: srv.Name, LogPath: srv.LogPath}); err != nil {
			cancel()
			return err
		}

		tailer := NewTailer(srv.LogPath, srv.FromStart)
		if err := tailer.Open(); err != nil {
			m.logger.Warn().Err(err).Str("server", srv.Name).Msg("Failed to start log tailer")
			continue
		}

		m.setRunning(srv.Name, true)
		m.wg.Add(1)
		go m.follow(ctx, srv.Name, tailer)
	}

	m.logger.Info().Int("servers", len(m.servers)).Msg("Startup complete")
	return nil
}

// Stop cancels every log follower and waits for them to exit
func (m *Manager) Stop() {
	m.logger.Info().Msg("Stopping...")
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	m.logger.Info().Msg("Shutdown complete")
}

// Running reports whether the log of the named server is being followed
func (m *Manager) Running(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running[name]
}

func (m *Manager) setRunning(name string, running bool) {
	m.mu.Lock()
	m.running[name] = running
	m.mu.Unlock()
}

// follow ingests one server's log until ctx is done or the tailer fails
func (m *Manager) follow(ctx context.Context, name string, tailer *Tailer) {
	defer m.wg.Done()
	defer tailer.Close()
	defer m.setRunning(name, false)

	m.metrics.ServerStarted()
	defer m.metrics.ServerStopped()

	logger := m.logger.With().Str("server", name).Logger()
	logger.Info().Msg("Following log")

	stats, err := Ingest(ctx, name, tailer, m, WithIngestMetrics(m.metrics))
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("Log follower stopped")
	}
	logger.Info().
		Int("lines", stats.Lines).
		Int("entries", stats.Entries).
		Int("unrecognized", stats.Unrecognized).
		Msg("Log follower finished")
}

// HandleEntry stores, publishes and broadcasts one decoded entry
func (m *Manager) HandleEntry(ctx context.Context, server string, entry csgolog.LogEntry) error {
	ev := domain.NewEvent(server, entry, nil)
	if err := m.store.InsertEvent(ctx, &ev); err != nil {
		return err
	}
	m.emitEvent(ev)

	if m.publisher != nil {
		return m.publisher.Publish(ctx, ev)
	}
	return nil
}

// HandleUnrecognized quarantines a line and broadcasts it
func (m *Manager) HandleUnrecognized(ctx context.Context, server, line string) error {
	now := time.Now().UTC()
	if err := m.store.InsertUnrecognized(ctx, server, line, now); err != nil {
		return err
	}
	m.emitEvent(domain.NewUnrecognizedEvent(server, line, now))
	return nil
}

// emitEvent sends an event to the event channel
func (m *Manager) emitEvent(event domain.Event) {
	select {
	case m.events <- event:
	default:
		// Channel full, drop event
	}
}
