// Package errors provides the error type shared by every algebra operation.
// EngineError carries the failing operation, a category (Kind), the dimensions
// involved and, where one exists, the remedy the caller can apply.
package errors

import (
	"fmt"
	"strings"
)

// Kind classifies engine failures.
type Kind int

const (
	// KindInternal marks invariant violations inside the engine itself.
	KindInternal Kind = iota
	// KindStructural marks malformed inputs: reserved names, duplicate rows,
	// mismatched column lengths or types.
	KindStructural
	// KindDimensionMismatch marks operands whose dimension sets differ
	// without the missing dimensions being allowed.
	KindDimensionMismatch
	// KindUnmatched marks coordinates present on one side only while that
	// side's policy is ERROR.
	KindUnmatched
	// KindIllegalBroadcast marks a broadcast whose target coordinates are not
	// all covered by the broadcast side.
	KindIllegalBroadcast
	// KindNonlinear marks a product of two variable-bearing expressions.
	KindNonlinear
	// KindDomain marks arguments outside an operation's domain.
	KindDomain
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindStructural:
		return "structural"
	case KindDimensionMismatch:
		return "dimension mismatch"
	case KindUnmatched:
		return "unmatched"
	case KindIllegalBroadcast:
		return "illegal broadcast"
	case KindNonlinear:
		return "nonlinear"
	case KindDomain:
		return "domain"
	default:
		return "internal"
	}
}

// EngineError is returned by all engine operations.
type EngineError struct {
	Op      string   // Operation name (e.g., "Add", "SumOver", "Within")
	Kind    Kind     // Failure category
	Dims    []string // Dimensions involved, if any
	Message string   // Human-readable description
	Hint    string   // Remedy the caller can apply, if any
	Cause   error    // Underlying cause
}

// Error implements the error interface
func (e *EngineError) Error() string {
	var b strings.Builder
	if len(e.Dims) > 0 {
		fmt.Fprintf(&b, "%s operation failed on dimensions %s: %s", e.Op, FormatDims(e.Dims), e.Message)
	} else {
		fmt.Fprintf(&b, "%s operation failed: %s", e.Op, e.Message)
	}
	if e.Hint != "" {
		b.WriteString(". Hint: ")
		b.WriteString(e.Hint)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying cause for error wrapping support
func (e *EngineError) Unwrap() error {
	return e.Cause
}

// Is reports whether target describes e. Kind sentinels (no Op set) match
// every error of that kind.
func (e *EngineError) Is(target error) bool {
	t, ok := target.(*EngineError)
	if !ok {
		return false
	}
	if t.Op == "" && t.Message == "" {
		return e.Kind == t.Kind
	}
	return e.Op == t.Op && e.Kind == t.Kind && e.Message == t.Message
}

// FormatDims renders a dimension list as [a, b].
func FormatDims(dims []string) string {
	return "[" + strings.Join(dims, ", ") + "]"
}

// Kind sentinels for errors.Is.
var (
	ErrInternal          = &EngineError{Kind: KindInternal}
	ErrStructural        = &EngineError{Kind: KindStructural}
	ErrDimensionMismatch = &EngineError{Kind: KindDimensionMismatch}
	ErrUnmatched         = &EngineError{Kind: KindUnmatched}
	ErrIllegalBroadcast  = &EngineError{Kind: KindIllegalBroadcast}
	ErrNonlinear         = &EngineError{Kind: KindNonlinear}
	ErrDomain            = &EngineError{Kind: KindDomain}
)

// NewStructuralError creates an error for malformed tables or sources
func NewStructuralError(op, message string) *EngineError {
	return &EngineError{Op: op, Kind: KindStructural, Message: message}
}

// NewColumnNotFoundError creates an error for operations on non-existent columns
func NewColumnNotFoundError(op, column string) *EngineError {
	return &EngineError{
		Op:      op,
		Kind:    KindStructural,
		Dims:    []string{column},
		Message: "column does not exist",
	}
}

// NewUnsupportedTypeError creates an error for unsupported column types
func NewUnsupportedTypeError(op, column, typeName string) *EngineError {
	e := &EngineError{
		Op:      op,
		Kind:    KindStructural,
		Message: fmt.Sprintf("unsupported type: %s", typeName),
	}
	if column != "" {
		e.Dims = []string{column}
	}
	return e
}

// NewDimensionMismatchError reports dimensions present on one operand only.
func NewDimensionMismatchError(op string, missing []string) *EngineError {
	return &EngineError{
		Op:      op,
		Kind:    KindDimensionMismatch,
		Dims:    missing,
		Message: "dataframe has missing dimensions",
		Hint:    "if this is intentional, use AddDim to allow broadcasting over them",
	}
}

// NewUnmatchedError reports coordinates present on one side only.
func NewUnmatchedError(op string, dims []string, sample string) *EngineError {
	return &EngineError{
		Op:      op,
		Kind:    KindUnmatched,
		Dims:    dims,
		Message: fmt.Sprintf("unmatched values: %s", sample),
		Hint:    "use KeepUnmatched or DropUnmatched to choose how they are combined",
	}
}

// NewIllegalBroadcastError reports a broadcast that leaves target rows uncovered.
func NewIllegalBroadcastError(op string, dims []string, sample string) *EngineError {
	return &EngineError{
		Op:      op,
		Kind:    KindIllegalBroadcast,
		Dims:    dims,
		Message: fmt.Sprintf("cannot add dimension since it contains unmatched values: %s", sample),
		Hint:    "use DropUnmatched to discard them",
	}
}

// NewNonlinearError reports a product of two variable-bearing expressions.
func NewNonlinearError(op string) *EngineError {
	return &EngineError{
		Op:      op,
		Kind:    KindNonlinear,
		Message: "cannot multiply two expressions that both contain variables",
	}
}

// NewDomainError creates an error for arguments outside an operation's domain
func NewDomainError(op, message string, dims ...string) *EngineError {
	return &EngineError{Op: op, Kind: KindDomain, Dims: dims, Message: message}
}

// NewInternalError creates an error for internal operation failures
func NewInternalError(op string, cause error) *EngineError {
	return &EngineError{
		Op:      op,
		Kind:    KindInternal,
		Message: "internal error occurred",
		Cause:   cause,
	}
}
