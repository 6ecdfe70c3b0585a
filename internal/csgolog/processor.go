package csgolog

import (
	"context"
	"errors"
)

// LineSource produces log lines in file order, without line endings.
// A source signals its end with an error such as io.EOF.
type LineSource interface {
	NextLine(ctx context.Context) (string, error)
}

// LineSourceFunc adapts a function to LineSource
type LineSourceFunc func(ctx context.Context) (string, error)

func (f LineSourceFunc) NextLine(ctx context.Context) (string, error) {
	return f(ctx)
}

type dumpState int

const (
	stateIdle dumpState = iota
	stateBuffering
)

// Processor drives lines from a LineSource through a Grammar.
// It is not safe for concurrent use; run one Processor per log stream.
type Processor struct {
	grammar *Grammar
	src     LineSource

	state   dumpState
	started LogPrefix
	cvars   []Cvar
}

// ProcessorOption configures a Processor
type ProcessorOption func(*Processor)

// WithGrammar replaces the default grammar
func WithGrammar(g *Grammar) ProcessorOption {
	return func(p *Processor) {
		p.grammar = g
	}
}

// NewProcessor creates a processor reading from src
func NewProcessor(src LineSource, opts ...ProcessorOption) *Processor {
	p := &Processor{src: src}
	for _, opt := range opts {
		opt(p)
	}
	if p.grammar == nil {
		p.grammar = Default()
	}
	return p
}

// Buffering reports whether the processor is inside a cvar dump
func (p *Processor) Buffering() bool {
	return p.state == stateBuffering
}

// Next returns the next entry or the error for the next line.
//
// Lines of a cvar dump are consumed without being returned; the dump is
// returned as one ServerCvars entry when its end marker is read. Dump lines
// seen without a preceding start marker are dropped.
//
// Errors are *ReaderError when the source fails and *LineError when a line
// cannot be classified. Both leave the processor usable.
func (p *Processor) Next(ctx context.Context) (LogEntry, error) {
	for {
		line, err := p.src.NextLine(ctx)
		if err != nil {
			return nil, &ReaderError{Err: err}
		}

		entry, err := p.grammar.Parse(line)
		if err != nil {
			return nil, err
		}

		if out, ok := p.step(entry); ok {
			return out, nil
		}
	}
}

// step feeds one decoded entry through the cvar dump state machine and
// reports whether something should be returned to the caller.
func (p *Processor) step(entry LogEntry) (LogEntry, bool) {
	switch e := entry.(type) {
	case ServerCvarsStart:
		// A second start abandons any partial dump
		p.state = stateBuffering
		p.started = e.LogPrefix
		p.cvars = nil
		return nil, false

	case ServerCvarDump:
		if p.state == stateBuffering {
			p.cvars = append(p.cvars, e.Cvar)
		}
		return nil, false

	case ServerCvarsEnd:
		if p.state != stateBuffering {
			return nil, false
		}
		out := ServerCvars{LogPrefix: e.LogPrefix, Started: p.started, Cvars: p.cvars}
		if out.Cvars == nil {
			out.Cvars = []Cvar{}
		}
		p.state = stateIdle
		p.started = LogPrefix{}
		p.cvars = nil
		return out, true
	}

	return entry, true
}

// IsLineError reports whether err is a per-line classification failure that
// a caller may skip.
func IsLineError(err error) bool {
	var le *LineError
	return errors.As(err, &le)
}
