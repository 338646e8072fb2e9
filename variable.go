package linframe

import (
	"math"
	"strconv"

	"github.com/paveg/linframe/internal/algebra"
	"github.com/paveg/linframe/internal/dataframe"
	"github.com/paveg/linframe/internal/render"
	"github.com/paveg/linframe/internal/series"
	"github.com/paveg/linframe/internal/validation"
)

// VType is the domain of a variable.
type VType string

// Variable types.
const (
	Continuous VType = "continuous"
	Integer    VType = "integer"
	Binary     VType = "binary"
)

// VariableOption configures NewVariable.
type VariableOption func(*variableConfig)

type variableConfig struct {
	over         []Source
	lower, upper float64
	vtype        VType
}

// Over indexes the variable by the cartesian product of sources. Without
// it the variable is a single dimensionless variable.
func Over(sources ...Source) VariableOption {
	return func(c *variableConfig) {
		c.over = append(c.over, sources...)
	}
}

// Bounds sets both bounds.
func Bounds(lower, upper float64) VariableOption {
	return func(c *variableConfig) {
		c.lower, c.upper = lower, upper
	}
}

// LowerBound sets the lower bound.
func LowerBound(lower float64) VariableOption {
	return func(c *variableConfig) {
		c.lower = lower
	}
}

// UpperBound sets the upper bound.
func UpperBound(upper float64) VariableOption {
	return func(c *variableConfig) {
		c.upper = upper
	}
}

// Type sets the variable type. Binary variables have bounds [0, 1].
func Type(vt VType) VariableOption {
	return func(c *variableConfig) {
		c.vtype = vt
	}
}

// Variable is one decision variable per coordinate of its index set. Its
// expression form has coefficient 1 and a fresh id on every row.
type Variable struct {
	*Expression
	name         string
	lower, upper float64
	vtype        VType
}

// NewVariable allocates one variable per coordinate from alloc.
func NewVariable(alloc *Allocator, opts ...VariableOption) (*Variable, error) {
	cfg := variableConfig{lower: math.Inf(-1), upper: math.Inf(1), vtype: Continuous}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.vtype == Binary {
		cfg.lower, cfg.upper = 0, 1
	}
	if err := validation.ValidateBounds(cfg.lower, cfg.upper, "NewVariable"); err != nil {
		return nil, err
	}

	coords := dataframe.Blank(arrowMem, 1)
	if len(cfg.over) > 0 {
		var err error
		if coords, err = coordinates(cfg.over); err != nil {
			return nil, err
		}
	}

	n := coords.Len()
	first, err := alloc.Reserve(n)
	if err != nil {
		return nil, err
	}
	ids := make([]uint32, n)
	for i := range ids {
		ids[i] = first + uint32(i)
	}

	df, err := coords.WithColumns(
		series.Repeat(CoefKey, 1.0, n, arrowMem),
		series.New(VarKey, ids, arrowMem),
	)
	if err != nil {
		return nil, err
	}
	terms, err := algebra.NewTerms(df)
	if err != nil {
		return nil, err
	}

	return &Variable{
		Expression: &Expression{terms: terms, opts: defaultOptions()},
		lower:      cfg.lower,
		upper:      cfg.upper,
		vtype:      cfg.vtype,
	}, nil
}

func (v *Variable) with(e *Expression) *Variable {
	out := *v
	out.Expression = e
	return &out
}

// Name returns the name given by a Model, or "".
func (v *Variable) Name() string {
	return v.name
}

// Lower returns the lower bound.
func (v *Variable) Lower() float64 {
	return v.lower
}

// Upper returns the upper bound.
func (v *Variable) Upper() float64 {
	return v.upper
}

// VType returns the variable type.
func (v *Variable) VType() VType {
	return v.vtype
}

// IDs returns the variable ids in coordinate order.
func (v *Variable) IDs() []uint32 {
	return v.terms.Vars().Values()
}

// KeepUnmatched returns a copy whose coordinates missing from the other
// operand are kept when combined.
func (v *Variable) KeepUnmatched() *Variable {
	return v.with(v.Expression.KeepUnmatched())
}

// DropUnmatched returns a copy whose coordinates missing from the other
// operand are dropped when combined.
func (v *Variable) DropUnmatched() *Variable {
	return v.with(v.Expression.DropUnmatched())
}

// AddDim returns a copy that may be broadcast over dims.
func (v *Variable) AddDim(dims ...string) *Variable {
	return v.with(v.Expression.AddDim(dims...))
}

// Next returns an expression where every coordinate holds the variable at
// the next sorted value of dim. The last value has no successor and is
// dropped, unless wrapAround connects it to the first.
func (v *Variable) Next(dim string, wrapAround bool) (*Expression, error) {
	t, err := record("Next", func() (*algebra.Terms, error) {
		return algebra.Shift(v.terms, dim, wrapAround)
	})
	if err != nil {
		return nil, err
	}
	return v.derive(t), nil
}

// String returns a header followed by the first coordinates.
func (v *Variable) String() string {
	var fields []render.Field
	if v.name != "" {
		fields = append(fields, render.Field{Key: "name", Value: v.name})
	}
	fields = append(fields,
		render.Field{Key: "lb", Value: formatBound(v.lower)},
		render.Field{Key: "ub", Value: formatBound(v.upper)},
		render.Field{Key: "size", Value: strconv.Itoa(v.Len())},
		shapeField(v.terms.Dims(), v.Shape()),
	)
	lines, err := v.Lines(defaultFormat())
	return describe(render.Header("Variable", fields...), lines, err)
}

func formatBound(b float64) string {
	switch {
	case math.IsInf(b, -1):
		return "-inf"
	case math.IsInf(b, 1):
		return "inf"
	}
	return strconv.FormatFloat(b, 'g', -1, 64)
}
