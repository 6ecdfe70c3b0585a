// Package publish sends decoded log events to NATS subjects
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/ernie/minictrl/internal/csgolog"
	"github.com/ernie/minictrl/internal/domain"
	"github.com/ernie/minictrl/internal/logging"
)

// Get5Token is the subject token carrying raw get5 payloads
const Get5Token = "get5"

// DefaultFlushTimeout bounds Flush when ctx carries no deadline
const DefaultFlushTimeout = 5 * time.Second

// Publisher publishes events as JSON on <prefix>.<server>.<kind>
type Publisher struct {
	nc     *nats.Conn
	prefix string
	logger zerolog.Logger
}

// Connect dials NATS and returns a publisher using subject prefix
func Connect(url, prefix string, opts ...nats.Option) (*Publisher, error) {
	logger := logging.Component("publish")

	opts = append([]nats.Option{
		nats.Name("minictrl"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}, opts...)

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	logger.Info().Str("url", nc.ConnectedUrl()).Msg("Connected to NATS")

	return &Publisher{nc: nc, prefix: prefix, logger: logger}, nil
}

// Subject returns the subject an event of kind on server is published to
func (p *Publisher) Subject(server, kind string) string {
	return p.prefix + "." + subjectToken(server) + "." + subjectToken(kind)
}

// Publish sends ev as JSON. get5 events additionally carry their payload
// unchanged on the server's get5 subject.
func (p *Publisher) Publish(ctx context.Context, ev domain.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	if err := p.nc.Publish(p.Subject(ev.Server, ev.Type), data); err != nil {
		return fmt.Errorf("publishing event: %w", err)
	}

	if g5, ok := ev.Data.(csgolog.Get5Event); ok {
		if err := p.nc.Publish(p.Subject(ev.Server, Get5Token), []byte(g5.JSON)); err != nil {
			return fmt.Errorf("publishing get5 payload: %w", err)
		}
	}
	return nil
}

// Flush waits for the server to acknowledge everything published so far.
// A ctx without a deadline is bounded by DefaultFlushTimeout.
func (p *Publisher) Flush(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultFlushTimeout)
		defer cancel()
	}
	return p.nc.FlushWithContext(ctx)
}

// Close drains and closes the connection
func (p *Publisher) Close() error {
	return p.nc.Drain()
}

// subjectToken makes s safe to use as a single subject token
func subjectToken(s string) string {
	if s == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\r', '\n':
			return '_'
		}
		return r
	}, s)
}

// StartEmbedded runs an in-process NATS server on the loopback interface.
// A port of -1 picks a random free port.
func StartEmbedded(port int) (*server.Server, error) {
	srv, err := server.NewServer(&server.Options{
		Host:   "127.0.0.1",
		Port:   port,
		NoSigs: true,
		NoLog:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedded NATS server: %w", err)
	}

	go srv.Start()

	if !srv.ReadyForConnections(10 * time.Second) {
		srv.Shutdown()
		return nil, fmt.Errorf("embedded NATS server not ready for connections")
	}
	return srv, nil
}
