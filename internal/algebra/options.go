package algebra

import (
	"slices"
	"sync/atomic"

	"github.com/go-logr/logr"
)

// Unmatched is the policy for coordinates present on one operand only.
type Unmatched int

const (
	// UnmatchedError fails the operation.
	UnmatchedError Unmatched = iota
	// UnmatchedKeep retains the rows; the other operand contributes nothing.
	UnmatchedKeep
	// UnmatchedDrop removes the rows.
	UnmatchedDrop
)

// String returns the policy name.
func (u Unmatched) String() string {
	switch u {
	case UnmatchedKeep:
		return "keep"
	case UnmatchedDrop:
		return "drop"
	default:
		return "error"
	}
}

// Options controls how an operand is reconciled against another.
type Options struct {
	Unmatched   Unmatched
	AllowedDims []string // dimensions this operand may be broadcast over
}

// Allows reports whether dim may be broadcast.
func (o Options) Allows(dim string) bool {
	return slices.Contains(o.AllowedDims, dim)
}

// WithAllowed returns a copy with dims added to AllowedDims.
func (o Options) WithAllowed(dims ...string) Options {
	allowed := slices.Clone(o.AllowedDims)
	for _, d := range dims {
		if !slices.Contains(allowed, d) {
			allowed = append(allowed, d)
		}
	}
	o.AllowedDims = allowed
	return o
}

// Operand pairs a term table with its combine options.
type Operand struct {
	Terms   *Terms
	Options Options
}

var logger atomic.Pointer[logr.Logger]

func init() {
	SetLogger(logr.Discard())
}

// SetLogger sets the logger engine events are reported to. V(1) carries
// broadcasts and unmatched-row handling, V(2) per-operation row counts.
func SetLogger(l logr.Logger) {
	logger.Store(&l)
}

func log() logr.Logger {
	return *logger.Load()
}
