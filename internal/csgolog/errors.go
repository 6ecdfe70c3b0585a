package csgolog

import (
	"errors"
	"fmt"
	"strings"
)

// Recoverable per-line failures. Use errors.Is to classify.
var (
	ErrUnrecognized = errors.New("unrecognized log line")
	ErrAmbiguous    = errors.New("ambiguous log line")
	// ErrMalformed is reserved for lines that are recognized but structurally
	// invalid. No grammar entry produces it today.
	ErrMalformed = errors.New("malformed log line")
)

// LineError is a classification failure for one line
type LineError struct {
	Err        error // ErrUnrecognized or ErrAmbiguous
	Line       string
	Candidates []Kind // kinds that matched, for ErrAmbiguous
}

func (e *LineError) Error() string {
	if len(e.Candidates) > 0 {
		names := make([]string, len(e.Candidates))
		for i, k := range e.Candidates {
			names[i] = string(k)
		}
		return fmt.Sprintf("%v (%s): %s", e.Err, strings.Join(names, ", "), e.Line)
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Line)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// ReaderError wraps a failure of the line source
type ReaderError struct {
	Err error
}

func (e *ReaderError) Error() string {
	return fmt.Sprintf("reading line: %v", e.Err)
}

func (e *ReaderError) Unwrap() error {
	return e.Err
}

// InternalError reports that the grammar table and the decoder disagree.
// It is only ever raised with panic and never returned as an error value;
// it means a bug in this package, not bad input.
type InternalError struct {
	Kind   Kind
	Field  string
	Detail string
}

func (e *InternalError) String() string {
	if e.Field == "" {
		return fmt.Sprintf("csgolog: internal error in %s: %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("csgolog: internal error in %s field %q: %s", e.Kind, e.Field, e.Detail)
}

func fault(kind Kind, field, format string, args ...any) {
	panic(&InternalError{Kind: kind, Field: field, Detail: fmt.Sprintf(format, args...)})
}
