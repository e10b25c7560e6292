package driver

import (
	"errors"
	"fmt"

	"gramlint/internal/source"
)

// ErrCancelled is returned when a check is cancelled or times out. The
// context error is wrapped alongside it.
var ErrCancelled = errors.New("check cancelled")

func cancelled(err error) error {
	if errors.Is(err, ErrCancelled) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrCancelled, err)
}

// AnalysisError describes a sentence that could not be analyzed. Such a
// sentence contributes no matches; the rest of the document is still checked.
type AnalysisError struct {
	Sentence int
	Span     source.Span
	// Source is set when the failing sentence belongs to the bitext source.
	Source bool
	Err    error
}

func (e *AnalysisError) Error() string {
	which := "sentence"
	if e.Source {
		which = "source sentence"
	}
	return fmt.Sprintf("%s %d [%d:%d]: %v", which, e.Sentence, e.Span.Start, e.Span.End, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }
