package nadcon

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ctessum/geom"
)

// Error kinds. Every error returned by this package is an *Error whose Kind
// is one of these, so callers can branch with errors.Is.
var (
	ErrGridFileOpen            = errors.New("grid file open failed")
	ErrGridHeaderMismatch      = errors.New("grid headers disagree")
	ErrGridRead                = errors.New("grid read failed")
	ErrNoActiveRegions         = errors.New("no grid regions available")
	ErrConfigMissing           = errors.New("data directory not configured")
	ErrPointOutOfBounds        = errors.New("point out of bounds")
	ErrIterationNonConvergence = errors.New("maximum iterations exceeded")
	ErrUnsupportedDirection    = errors.New("unsupported conversion direction")
	ErrClosed                  = errors.New("context is shut down")
)

// Error describes a failure in the datum-shift engine along with whatever
// diagnostic context was known when it happened.
type Error struct {
	Op         string     // Operation, e.g. "open", "read", "forward", "inverse"
	Kind       error      // One of the Err* kinds
	Region     string     // Region display name, if any
	Path       string     // Grid file path, if any
	Point      geom.Point // Offending coordinate (or the current trial for inverse)
	HasPoint   bool       // Whether Point is meaningful
	Iterations int        // Iterations performed, for ErrIterationNonConvergence
	Err        error      // Underlying cause
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("nadcon: ")
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.Error())
	if e.Region != "" {
		fmt.Fprintf(&b, " (region %s)", e.Region)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " (file %s)", e.Path)
	}
	if e.HasPoint {
		// Latitude first, as MRT diagnostics print it.
		fmt.Fprintf(&b, " at point %7.3f,%8.3f", e.Point.Y, e.Point.X)
	}
	if e.Iterations > 0 {
		fmt.Fprintf(&b, " after %d iterations", e.Iterations)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Is reports whether target is the kind of e.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func pointError(op string, kind error, p geom.Point) *Error {
	return &Error{Op: op, Kind: kind, Point: p, HasPoint: true}
}
