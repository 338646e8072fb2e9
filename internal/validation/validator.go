// Package validation provides reusable input checks for model elements:
// dimension lists, element names, columns and variable bounds.
package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/paveg/linframe/internal/algebra"
	"github.com/paveg/linframe/internal/errors"
)

// ColumnProvider interface for types that provide column information
type ColumnProvider interface {
	HasColumn(name string) bool
	Columns() []string
}

// ColumnValidator validates column existence
type ColumnValidator struct {
	df      ColumnProvider
	columns []string
	op      string
}

// NewColumnValidator creates a validator for column operations
func NewColumnValidator(df ColumnProvider, op string, columns ...string) *ColumnValidator {
	return &ColumnValidator{df: df, columns: columns, op: op}
}

// Validate checks if all columns exist
func (v *ColumnValidator) Validate() error {
	for _, column := range v.columns {
		if !v.df.HasColumn(column) {
			return errors.NewColumnNotFoundError(v.op, column)
		}
	}
	return nil
}

// DimsValidator checks that dimension names are unique and not reserved.
type DimsValidator struct {
	dims []string
	op   string
}

// NewDimsValidator creates a validator for a dimension list
func NewDimsValidator(op string, dims ...string) *DimsValidator {
	return &DimsValidator{dims: dims, op: op}
}

// Validate checks uniqueness and reserved names
func (v *DimsValidator) Validate() error {
	seen := make(map[string]bool, len(v.dims))
	for _, d := range v.dims {
		if algebra.IsReserved(d) {
			return errors.NewStructuralError(v.op, fmt.Sprintf("column name %q is reserved", d))
		}
		if seen[d] {
			return errors.NewStructuralError(v.op, "coordinates must have unique column names")
		}
		seen[d] = true
	}
	return nil
}

// NameValidator checks a model element name.
type NameValidator struct {
	name string
	op   string
}

// NewNameValidator creates a validator for element names
func NewNameValidator(name, op string) *NameValidator {
	return &NameValidator{name: name, op: op}
}

// Validate rejects empty names and names with brackets, which would clash
// with rendered coordinates.
func (v *NameValidator) Validate() error {
	if strings.TrimSpace(v.name) == "" {
		return errors.NewStructuralError(v.op, "name must not be empty")
	}
	if strings.ContainsAny(v.name, "[]:") {
		return errors.NewStructuralError(v.op, fmt.Sprintf("name %q must not contain '[', ']' or ':'", v.name))
	}
	return nil
}

// BoundsValidator checks that a lower bound does not exceed an upper bound.
type BoundsValidator struct {
	lower, upper float64
	op           string
}

// NewBoundsValidator creates a validator for variable bounds
func NewBoundsValidator(lower, upper float64, op string) *BoundsValidator {
	return &BoundsValidator{lower: lower, upper: upper, op: op}
}

// Validate checks the bound order
func (v *BoundsValidator) Validate() error {
	if math.IsNaN(v.lower) || math.IsNaN(v.upper) {
		return errors.NewDomainError(v.op, "bounds must not be NaN")
	}
	if v.lower > v.upper {
		return errors.NewDomainError(v.op, fmt.Sprintf("lower bound %g exceeds upper bound %g", v.lower, v.upper))
	}
	return nil
}

// ValidateColumns is a convenience function for column validation
func ValidateColumns(df ColumnProvider, op string, columns ...string) error {
	return NewColumnValidator(df, op, columns...).Validate()
}

// ValidateDims is a convenience function for dimension list validation
func ValidateDims(op string, dims ...string) error {
	return NewDimsValidator(op, dims...).Validate()
}

// ValidateName is a convenience function for name validation
func ValidateName(name, op string) error {
	return NewNameValidator(name, op).Validate()
}

// ValidateBounds is a convenience function for bounds validation
func ValidateBounds(lower, upper float64, op string) error {
	return NewBoundsValidator(lower, upper, op).Validate()
}
