package interpreter

import (
	"errors"
	"fmt"

	"cilisp/interpreter-go/pkg/diagnostics"
)

var (
	// ErrNilNode signals a missing node where the tree guarantees one.
	ErrNilNode = errors.New("nil ast node passed into eval")
	// ErrDepthExceeded signals that nesting went past the configured limit.
	ErrDepthExceeded = errors.New("maximum evaluation depth exceeded")
)

// FatalError marks an invariant violation; the session cannot continue.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	if e.Err == nil {
		return "fatal"
	}
	return e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

func fatalf(format string, args ...any) error {
	return &FatalError{Err: fmt.Errorf(format, args...)}
}

// IsFatal reports whether err must end the session.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}

// DepthError is returned when evaluation nests deeper than the limit. It is
// recoverable: the current top-level expression is abandoned, the session
// goes on.
type DepthError struct {
	Limit    int
	Location diagnostics.Location
}

func (e *DepthError) Error() string {
	if location := diagnostics.FormatLocation(e.Location); location != "" {
		return fmt.Sprintf("%s (limit %d) at %s", ErrDepthExceeded.Error(), e.Limit, location)
	}
	return fmt.Sprintf("%s (limit %d)", ErrDepthExceeded.Error(), e.Limit)
}

func (e *DepthError) Unwrap() error {
	return ErrDepthExceeded
}
