// Package algebra implements the linear-expression engine: term tables,
// dimension reconciliation, arithmetic, reductions and set filtering.
//
// Every function is a pure transformation from input tables to a new table.
// Row order follows the documented maintain-order rules: concatenation
// appends, group-bys keep first appearance, joins are left-major.
package algebra

import (
	"fmt"
	"slices"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/paveg/linframe/internal/dataframe"
	"github.com/paveg/linframe/internal/errors"
	"github.com/paveg/linframe/internal/series"
)

// Reserved column names.
const (
	CoefKey = "__coeff"
	VarKey  = "__variable_id"
)

// ConstTerm is the variable id of the constant term.
const ConstTerm uint32 = 0

// reservedPrefix marks internal columns, including the temporaries that
// arithmetic adds next to CoefKey and VarKey.
const reservedPrefix = "__"

// IsReserved reports whether name cannot be used as a dimension.
func IsReserved(name string) bool {
	return name == "index" || strings.HasPrefix(name, reservedPrefix)
}

// Terms is a validated term table: dimension columns followed by the
// coefficient and variable-id columns, unique on (dimensions, variable id).
type Terms struct {
	df   *dataframe.DataFrame
	dims []string
}

// NewTerms validates df as a term table.
func NewTerms(df *dataframe.DataFrame) (*Terms, error) {
	coef, ok := df.Column(CoefKey)
	if !ok {
		return nil, errors.NewStructuralError("NewTerms", fmt.Sprintf("missing column '%s'", CoefKey))
	}
	if _, isFloat := coef.(*series.Series[float64]); !isFloat {
		return nil, errors.NewUnsupportedTypeError("NewTerms", CoefKey, coef.DataType().String())
	}
	vars, ok := df.Column(VarKey)
	if !ok {
		return nil, errors.NewStructuralError("NewTerms", fmt.Sprintf("missing column '%s'", VarKey))
	}
	if _, isID := vars.(*series.Series[uint32]); !isID {
		return nil, errors.NewUnsupportedTypeError("NewTerms", VarKey, vars.DataType().String())
	}
	if coef.NullN() > 0 || vars.NullN() > 0 {
		return nil, errors.NewStructuralError("NewTerms", "coefficients and variable ids must not be null")
	}

	t, err := canonical(df)
	if err != nil {
		return nil, err
	}
	for _, d := range t.dims {
		if IsReserved(d) {
			return nil, errors.NewStructuralError("NewTerms",
				fmt.Sprintf("'%s' is a reserved name and cannot be a dimension", d))
		}
	}

	dups, err := df.DuplicateRows(append(slices.Clone(t.dims), VarKey)...)
	if err != nil {
		return nil, err
	}
	if len(dups) > 0 {
		return nil, &errors.EngineError{
			Op:      "NewTerms",
			Kind:    errors.KindStructural,
			Dims:    t.dims,
			Message: fmt.Sprintf("%d duplicate (dimensions, variable) rows, first: %s", len(dups), sampleRows(df, dups, t.dims)),
		}
	}
	return t, nil
}

// canonical orders columns as dims..., coef, var. Inputs produced inside the
// package already satisfy the term-table invariants; a missing reserved
// column is an internal error.
func canonical(df *dataframe.DataFrame) (*Terms, error) {
	var dims []string
	for _, name := range df.Columns() {
		if name != CoefKey && name != VarKey {
			dims = append(dims, name)
		}
	}
	ordered, err := df.Select(append(slices.Clone(dims), CoefKey, VarKey)...)
	if err != nil {
		return nil, errors.NewInternalError("canonical", err)
	}
	return &Terms{df: ordered, dims: dims}, nil
}

// Constant returns a dimensionless table holding the single constant k.
func Constant(mem memory.Allocator, k float64) *Terms {
	df, _ := dataframe.New(mem,
		series.New(CoefKey, []float64{k}, mem),
		series.New(VarKey, []uint32{ConstTerm}, mem),
	)
	return &Terms{df: df}
}

// Frame returns the underlying table.
func (t *Terms) Frame() *dataframe.DataFrame {
	return t.df
}

// Dims returns the dimension names in column order.
func (t *Terms) Dims() []string {
	return slices.Clone(t.dims)
}

// NumTerms returns the number of rows.
func (t *Terms) NumTerms() int {
	return t.df.Len()
}

// Coordinates returns the distinct dimension rows in first-appearance order.
// A dimensionless table has one coordinate.
func (t *Terms) Coordinates() *dataframe.DataFrame {
	if len(t.dims) == 0 {
		return dataframe.Blank(t.df.Allocator(), 1)
	}
	coords, err := t.df.Unique(t.dims...)
	if err != nil {
		panic(err)
	}
	return coords
}

// Shape maps each dimension to its number of distinct values.
func (t *Terms) Shape() map[string]int {
	shape := make(map[string]int, len(t.dims))
	for _, d := range t.dims {
		u, err := t.df.Unique(d)
		if err != nil {
			panic(err)
		}
		shape[d] = u.Len()
	}
	return shape
}

// Coefs returns the coefficient column.
func (t *Terms) Coefs() *series.Series[float64] {
	col, _ := t.df.Column(CoefKey)
	return col.(*series.Series[float64])
}

// Vars returns the variable-id column.
func (t *Terms) Vars() *series.Series[uint32] {
	col, _ := t.df.Column(VarKey)
	return col.(*series.Series[uint32])
}

// HasVariables reports whether any row refers to a non-constant variable.
func (t *Terms) HasVariables() bool {
	return slices.ContainsFunc(t.Vars().Values(), func(id uint32) bool { return id != ConstTerm })
}

func (t *Terms) filterVars(keep func(uint32) bool) *Terms {
	ids := t.Vars().Values()
	mask := make([]bool, len(ids))
	for i, id := range ids {
		mask[i] = keep(id)
	}
	return &Terms{df: t.df.Filter(mask), dims: t.dims}
}

// VariableTerms returns the rows referring to variables.
func (t *Terms) VariableTerms() *Terms {
	return t.filterVars(func(id uint32) bool { return id != ConstTerm })
}

// ConstantTerms returns one constant row per coordinate, 0 where the
// coordinate has no constant term. Existing constant rows keep their order
// and the zero rows for the remaining coordinates follow them.
func (t *Terms) ConstantTerms() *Terms {
	filled, err := withConstRows(t)
	if err != nil {
		panic(err)
	}
	return filled.filterVars(func(id uint32) bool { return id == ConstTerm })
}

// withCoefs replaces the coefficient column.
func (t *Terms) withCoefs(coefs []float64) *Terms {
	df, err := t.df.WithColumns(series.New(CoefKey, coefs, t.df.Allocator()))
	if err != nil {
		panic(err)
	}
	return &Terms{df: df, dims: t.dims}
}

func sampleRows(df *dataframe.DataFrame, rows []int, dims []string) string {
	const maxSample = 5
	cols := make([]series.ISeries, 0, len(dims))
	for _, d := range dims {
		if col, ok := df.Column(d); ok {
			cols = append(cols, col)
		}
	}
	out := "["
	for i, row := range rows {
		if i == maxSample {
			out += fmt.Sprintf(", ... %d more", len(rows)-maxSample)
			break
		}
		if i > 0 {
			out += ", "
		}
		out += "{"
		for j, col := range cols {
			if j > 0 {
				out += ", "
			}
			out += fmt.Sprintf("%s: %v", col.Name(), col.Any(row))
		}
		out += "}"
	}
	return out + "]"
}

func difference(a, b []string) []string {
	var out []string
	for _, x := range a {
		if !slices.Contains(b, x) {
			out = append(out, x)
		}
	}
	return out
}

func intersection(a, b []string) []string {
	var out []string
	for _, x := range a {
		if slices.Contains(b, x) {
			out = append(out, x)
		}
	}
	return out
}

func sameSet(a, b []string) bool {
	return len(a) == len(b) && len(difference(a, b)) == 0
}
