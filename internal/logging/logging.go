// Package logging configures the process-wide zerolog logger
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// Config holds logging settings
type Config struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json, console or auto
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

// Init replaces the global logger according to cfg
func Init(cfg Config) error {
	return InitWriter(cfg, os.Stderr)
}

// InitWriter is Init with an explicit output
func InitWriter(cfg Config, out io.Writer) error {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		var err error
		level, err = zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return fmt.Errorf("parsing log level: %w", err)
		}
	}

	var w io.Writer
	switch cfg.Format {
	case "json":
		w = out
	case "console":
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	case "", "auto":
		w = out
		if isTerminal(out) {
			w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
		}
	default:
		return fmt.Errorf("unknown log format %q", cfg.Format)
	}

	log.Logger = zerolog.New(w).Level(level).With().Timestamp().Logger()
	return nil
}

// Component returns a child of the global logger tagged with a component name
func Component(name string) zerolog.Logger {
	return log.Logger.With().Str("component", name).Logger()
}

// isTerminal reports whether w is an interactive terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
