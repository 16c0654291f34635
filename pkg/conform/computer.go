// Package conform decides whether one type reference conforms to another
// and computes the common supertype (join) of a list of type references.
//
// A Computer holds no per-call state; every computation allocates its own
// accumulators, so a single Computer may be shared between goroutines.
package conform

import (
	"fmt"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/vito/typejoin/pkg/typeref"
)

type Type = typeref.Type

// Computer is the entry point for conformance and join computations.
type Computer struct {
	// Logger receives debug output. slog.Default() is used when nil.
	Logger *slog.Logger
}

// New returns a Computer logging to slog.Default().
func New() *Computer {
	return &Computer{}
}

func (c *Computer) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// InvariantError reports broken internal bookkeeping. It indicates a bug,
// not bad input.
type InvariantError struct {
	Reason string
}

func (e InvariantError) Error() string {
	return "internal invariant violated: " + e.Reason
}

func invariant(format string, args ...any) error {
	return errors.WithStack(InvariantError{Reason: fmt.Sprintf(format, args...)})
}

func invalidArgument(format string, args ...any) error {
	return errors.WithStack(typeref.InvalidArgumentError{Reason: fmt.Sprintf(format, args...)})
}
