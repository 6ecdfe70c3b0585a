package collector

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ernie/minictrl/internal/csgolog"
	"github.com/ernie/minictrl/internal/logging"
	"github.com/ernie/minictrl/internal/metrics"
)

// Handler receives the output of an ingest loop
type Handler interface {
	HandleEntry(ctx context.Context, server string, entry csgolog.LogEntry) error
	HandleUnrecognized(ctx context.Context, server, line string) error
}

// HandlerFuncs adapts plain functions to Handler; nil fields are skipped
type HandlerFuncs struct {
	Entry        func(ctx context.Context, server string, entry csgolog.LogEntry) error
	Unrecognized func(ctx context.Context, server, line string) error
}

func (h HandlerFuncs) HandleEntry(ctx context.Context, server string, entry csgolog.LogEntry) error {
	if h.Entry == nil {
		return nil
	}
	return h.Entry(ctx, server, entry)
}

func (h HandlerFuncs) HandleUnrecognized(ctx context.Context, server, line string) error {
	if h.Unrecognized == nil {
		return nil
	}
	return h.Unrecognized(ctx, server, line)
}

// IngestStats summarizes one ingest run
type IngestStats struct {
	Lines         int                  `json:"lines"`
	Entries       int                  `json:"entries"`
	ByKind        map[csgolog.Kind]int `json:"by_kind"`
	Unrecognized  int                  `json:"unrecognized"`
	Ambiguous     int                  `json:"ambiguous"`
	HandlerErrors int                  `json:"handler_errors"`
}

// IngestOption configures Ingest
type IngestOption func(*ingestOptions)

type ingestOptions struct {
	metrics *metrics.Ingest
}

// WithIngestMetrics records counters while ingesting
func WithIngestMetrics(m *metrics.Ingest) IngestOption {
	return func(o *ingestOptions) {
		o.metrics = m
	}
}

// Ingest drives src through a line processor until the source ends, ctx is
// cancelled, or the source fails. Unrecognized lines go to the handler's
// quarantine; ambiguous lines are logged and skipped. A handler error is
// logged and does not stop the loop.
//
// Reaching io.EOF is a clean finish and returns a nil error.
func Ingest(ctx context.Context, server string, src csgolog.LineSource, h Handler, opts ...IngestOption) (IngestStats, error) {
	var o ingestOptions
	for _, opt := range opts {
		opt(&o)
	}

	logger := logging.Component("ingest").With().Str("server", server).Logger()
	stats := IngestStats{ByKind: make(map[csgolog.Kind]int)}

	counted := csgolog.LineSourceFunc(func(ctx context.Context) (string, error) {
		line, err := src.NextLine(ctx)
		if err == nil {
			stats.Lines++
			o.metrics.RecordLine(server)
		}
		return line, err
	})

	proc := csgolog.NewProcessor(counted)

	for {
		entry, err := proc.Next(ctx)

		var lineErr *csgolog.LineError
		switch {
		case err == nil:
			stats.Entries++
			stats.ByKind[entry.Kind()]++
			o.metrics.RecordEntry(server, string(entry.Kind()))
			if cvars, ok := entry.(csgolog.ServerCvars); ok {
				o.metrics.RecordCvars(server, len(cvars.Cvars))
			}
			if err := h.HandleEntry(ctx, server, entry); err != nil {
				stats.HandlerErrors++
				o.metrics.RecordError(server, metrics.ErrorHandler)
				logger.Error().Err(err).Str("kind", string(entry.Kind())).Msg("Error handling log entry")
			}

		case errors.Is(err, csgolog.ErrUnrecognized):
			stats.Unrecognized++
			o.metrics.RecordError(server, metrics.ErrorUnrecognized)
			errors.As(err, &lineErr)
			logger.Debug().Str("line", lineErr.Line).Msg("Unrecognized log line")
			if err := h.HandleUnrecognized(ctx, server, lineErr.Line); err != nil {
				stats.HandlerErrors++
				o.metrics.RecordError(server, metrics.ErrorHandler)
				logger.Error().Err(err).Msg("Error quarantining log line")
			}

		case errors.Is(err, csgolog.ErrAmbiguous):
			stats.Ambiguous++
			o.metrics.RecordError(server, metrics.ErrorAmbiguous)
			errors.As(err, &lineErr)
			kinds := make([]string, len(lineErr.Candidates))
			for i, k := range lineErr.Candidates {
				kinds[i] = string(k)
			}
			logger.Error().Strs("candidates", kinds).Str("line", lineErr.Line).Msg("Ambiguous log line skipped")

		case errors.Is(err, io.EOF):
			return stats, nil

		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return stats, err

		default:
			o.metrics.RecordError(server, metrics.ErrorReader)
			return stats, fmt.Errorf("ingesting %s: %w", server, err)
		}
	}
}
