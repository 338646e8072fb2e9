// Package linframe is a symbolic algebra engine for linear optimization
// models. Expressions, variables and constraints are stored as sparse term
// tables keyed by named dimensions and combined with bulk table operations.
//
// This package is the sole public API for the library.
package linframe

import (
	"log/slog"
	"os"
	"sync"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/go-logr/logr"

	"github.com/paveg/linframe/internal/algebra"
	"github.com/paveg/linframe/internal/config"
	"github.com/paveg/linframe/internal/errors"
	"github.com/paveg/linframe/internal/monitoring"
)

// Reserved column names of a term table.
const (
	CoefKey = algebra.CoefKey
	VarKey  = algebra.VarKey
)

// ConstTerm is the variable id that marks the constant term.
const ConstTerm = algebra.ConstTerm

// EngineError is the error type returned by every operation.
type EngineError = errors.EngineError

// Error kinds, for use with errors.Is.
var (
	ErrStructural        = errors.ErrStructural
	ErrDimensionMismatch = errors.ErrDimensionMismatch
	ErrUnmatched         = errors.ErrUnmatched
	ErrIllegalBroadcast  = errors.ErrIllegalBroadcast
	ErrNonlinear         = errors.ErrNonlinear
	ErrDomain            = errors.ErrDomain
)

// Config holds library-wide settings.
type Config = config.Config

//nolint:gochecknoglobals // Go allocator shared by every table
var arrowMem memory.Allocator = memory.NewGoAllocator()

var (
	logMu          sync.Mutex
	verboseLogging bool
)

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return config.NewConfig()
}

// GetConfig returns the active configuration.
func GetConfig() Config {
	return config.GetGlobalConfig()
}

// SetConfig validates and installs c. Verbose logging installs a text
// logger on stderr; metrics collection enables the global collector.
func SetConfig(c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	config.SetGlobalConfig(c)

	logMu.Lock()
	switch {
	case c.VerboseLogging && !verboseLogging:
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.Level(-2)})
		algebra.SetLogger(logr.FromSlogHandler(handler))
		verboseLogging = true
	case !c.VerboseLogging && verboseLogging:
		algebra.SetLogger(logr.Discard())
		verboseLogging = false
	}
	logMu.Unlock()

	if c.MetricsCollection {
		monitoring.EnableGlobalMonitoring()
	} else {
		monitoring.DisableGlobalMonitoring()
	}
	return nil
}

// LoadConfig reads a JSON or YAML file over the defaults, applies LINFRAME_*
// environment variables and installs the result.
func LoadConfig(path string) (Config, error) {
	c, err := config.Load(path)
	if err != nil {
		return Config{}, err
	}
	return c, SetConfig(c)
}

// SetLogger sets the logger engine events are reported to. Broadcasts and
// unmatched-row handling log at V(1), operation row counts at V(2).
func SetLogger(l logr.Logger) {
	logMu.Lock()
	defer logMu.Unlock()
	verboseLogging = false
	algebra.SetLogger(l)
}

// MetricsSummary aggregates the recorded operations.
type MetricsSummary = monitoring.MetricsSummary

// GetMetrics returns the metrics recorded since collection was enabled.
func GetMetrics() MetricsSummary {
	return monitoring.GetGlobalSummary()
}

// defaultOptions are the combine options of a freshly built entity.
func defaultOptions() algebra.Options {
	if config.GetGlobalConfig().DefaultUnmatched == config.UnmatchedKeep {
		return algebra.Options{Unmatched: algebra.UnmatchedKeep}
	}
	return algebra.Options{}
}

// record runs fn under the global metrics collector.
func record(op string, fn func() (*algebra.Terms, error)) (*algebra.Terms, error) {
	var out *algebra.Terms
	err := monitoring.RecordGlobalOperation(op, func() (int, error) {
		var err error
		if out, err = fn(); err != nil {
			return 0, err
		}
		return out.NumTerms(), nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
