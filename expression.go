package linframe

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/paveg/linframe/internal/algebra"
	"github.com/paveg/linframe/internal/dataframe"
	"github.com/paveg/linframe/internal/errors"
	lfio "github.com/paveg/linframe/internal/io"
	"github.com/paveg/linframe/internal/render"
	"github.com/paveg/linframe/internal/series"
)

// Expressionable is anything with a canonical Expression form: sets,
// expressions, variables, constraints and scalars.
type Expressionable interface {
	ToExpression() *Expression
}

// Scalar is a numeric constant. Adding a Scalar folds it into the constant
// term of every coordinate; multiplying by one scales every coefficient.
type Scalar float64

// ToExpression returns the dimensionless constant expression.
func (s Scalar) ToExpression() *Expression {
	return &Expression{terms: algebra.Constant(arrowMem, float64(s)), opts: defaultOptions()}
}

// Expression is a linear expression per coordinate: a term table of
// (dimensions, coefficient, variable id) rows, unique on (dimensions,
// variable id), plus the options used when it is combined with another
// operand. Expressions are immutable; every operation returns a new one.
type Expression struct {
	terms *algebra.Terms
	opts  algebra.Options
	namer VarNamer
}

// NewExpression builds an expression from a source that carries CoefKey and
// VarKey columns; every other column is a dimension.
func NewExpression(src Source) (*Expression, error) {
	df, err := src.frame(arrowMem)
	if err != nil {
		return nil, err
	}
	if df, err = normalizeTermColumns(df); err != nil {
		return nil, err
	}
	terms, err := algebra.NewTerms(df)
	if err != nil {
		return nil, err
	}
	return &Expression{terms: terms, opts: defaultOptions()}, nil
}

// Param builds a constant expression from a table whose last column holds
// the values and whose other columns are dimensions. Rows with a null or NaN
// value are dropped.
func Param(src Source) (*Expression, error) {
	df, err := src.frame(arrowMem)
	if err != nil {
		return nil, err
	}
	cols := df.Columns()
	if len(cols) == 0 {
		return nil, errors.NewStructuralError("Param", "source has no columns")
	}
	valueName := cols[len(cols)-1]
	valueCol, _ := df.Column(valueName)
	values, err := floatValues("Param", valueCol)
	if err != nil {
		return nil, err
	}

	keep := make([]bool, len(values))
	for i, v := range values {
		keep[i] = !valueCol.IsNull(i) && !math.IsNaN(v)
	}
	filtered := df.Drop(valueName).Filter(keep)
	kept := make([]float64, 0, filtered.Len())
	for i, v := range values {
		if keep[i] {
			kept = append(kept, v)
		}
	}

	withTerms, err := filtered.WithColumns(
		series.New(CoefKey, kept, arrowMem),
		series.Repeat(VarKey, ConstTerm, len(kept), arrowMem),
	)
	if err != nil {
		return nil, err
	}
	terms, err := algebra.NewTerms(withTerms)
	if err != nil {
		return nil, err
	}
	return &Expression{terms: terms, opts: defaultOptions()}, nil
}

// floatValues reads a numeric column as float64.
func floatValues(op string, col series.ISeries) ([]float64, error) {
	switch c := col.(type) {
	case *series.Series[float64]:
		return c.Values(), nil
	case *series.Series[int64]:
		ints := c.Values()
		out := make([]float64, len(ints))
		for i, v := range ints {
			out[i] = float64(v)
		}
		return out, nil
	}
	return nil, errors.NewUnsupportedTypeError(op, col.Name(), col.DataType().String())
}

// normalizeTermColumns casts integer coefficient and id columns to float64
// and uint32.
func normalizeTermColumns(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	var replaced []series.ISeries
	if coef, ok := df.Column(CoefKey); ok {
		if _, isFloat := coef.(*series.Series[float64]); !isFloat {
			values, err := floatValues("NewExpression", coef)
			if err != nil {
				return nil, err
			}
			replaced = append(replaced, series.New(CoefKey, values, arrowMem))
		}
	}
	if ids, ok := df.Column(VarKey); ok {
		if ints, isInt := ids.(*series.Series[int64]); isInt {
			values := make([]uint32, ints.Len())
			for i, v := range ints.Values() {
				if v < 0 || v > math.MaxUint32 {
					return nil, errors.NewStructuralError("NewExpression",
						fmt.Sprintf("variable id %d out of range", v))
				}
				values[i] = uint32(v)
			}
			replaced = append(replaced, series.New(VarKey, values, arrowMem))
		}
	}
	if len(replaced) == 0 {
		return df, nil
	}
	return df.WithColumns(replaced...)
}

// ToExpression returns e.
func (e *Expression) ToExpression() *Expression {
	return e
}

// derive wraps t with e's options and names.
func (e *Expression) derive(t *algebra.Terms) *Expression {
	return &Expression{terms: t, opts: e.opts, namer: e.namer}
}

// combined wraps the result of a binary operation: options reset to the
// defaults, names come from whichever operand has them.
func combined(t *algebra.Terms, a, b *Expression) *Expression {
	namer := a.namer
	if namer == nil {
		namer = b.namer
	}
	return &Expression{terms: t, opts: defaultOptions(), namer: namer}
}

func (e *Expression) operand() algebra.Operand {
	return algebra.Operand{Terms: e.terms, Options: e.opts}
}

// KeepUnmatched returns a copy whose coordinates missing from the other
// operand are kept when combined.
func (e *Expression) KeepUnmatched() *Expression {
	out := e.derive(e.terms)
	out.opts.Unmatched = algebra.UnmatchedKeep
	return out
}

// DropUnmatched returns a copy whose coordinates missing from the other
// operand are dropped when combined.
func (e *Expression) DropUnmatched() *Expression {
	out := e.derive(e.terms)
	out.opts.Unmatched = algebra.UnmatchedDrop
	return out
}

// AddDim returns a copy that may be broadcast over dims when combined with
// an operand that has them.
func (e *Expression) AddDim(dims ...string) *Expression {
	out := e.derive(e.terms)
	out.opts = e.opts.WithAllowed(dims...)
	return out
}

// Add returns e + other.
func (e *Expression) Add(other Expressionable) (*Expression, error) {
	if k, ok := other.(Scalar); ok {
		return e.AddConstant(float64(k))
	}
	o := other.ToExpression()
	t, err := record("Add", func() (*algebra.Terms, error) {
		return algebra.Add("Add", e.operand(), o.operand())
	})
	if err != nil {
		return nil, err
	}
	return combined(t, e, o), nil
}

// Sub returns e - other.
func (e *Expression) Sub(other Expressionable) (*Expression, error) {
	if k, ok := other.(Scalar); ok {
		return e.AddConstant(-float64(k))
	}
	return e.Add(other.ToExpression().Neg())
}

// Mul returns e * other. At most one of the operands may contain variables.
func (e *Expression) Mul(other Expressionable) (*Expression, error) {
	if k, ok := other.(Scalar); ok {
		return e.Scale(float64(k)), nil
	}
	o := other.ToExpression()
	t, err := record("Mul", func() (*algebra.Terms, error) {
		return algebra.Multiply("Mul", e.terms, o.terms)
	})
	if err != nil {
		return nil, err
	}
	return combined(t, e, o), nil
}

// Scale multiplies every coefficient by k.
func (e *Expression) Scale(k float64) *Expression {
	return e.derive(algebra.Scale(e.terms, k))
}

// Neg returns -e.
func (e *Expression) Neg() *Expression {
	return e.Scale(-1)
}

// AddConstant adds k to the constant term of every coordinate.
func (e *Expression) AddConstant(k float64) (*Expression, error) {
	t, err := record("AddConstant", func() (*algebra.Terms, error) {
		return algebra.AddConstant(e.terms, k)
	})
	if err != nil {
		return nil, err
	}
	return e.derive(t), nil
}

// Sum sums over the given dimensions, or over all of them when none are
// given.
func (e *Expression) Sum(over ...string) (*Expression, error) {
	if len(over) == 0 {
		over = e.terms.Dims()
	}
	t, err := record("Sum", func() (*algebra.Terms, error) {
		return algebra.SumOver(e.terms, over)
	})
	if err != nil {
		return nil, err
	}
	return combined(t, e, e), nil
}

// SumBy keeps the given dimensions and sums over the others.
func (e *Expression) SumBy(by ...string) (*Expression, error) {
	t, err := record("SumBy", func() (*algebra.Terms, error) {
		return algebra.SumBy(e.terms, by)
	})
	if err != nil {
		return nil, err
	}
	return combined(t, e, e), nil
}

// RollingSum sums each coordinate with the window-1 coordinates before it
// along over, grouped by the other dimensions. The first coordinates of a
// group get partial sums.
func (e *Expression) RollingSum(over string, window int) (*Expression, error) {
	t, err := record("RollingSum", func() (*algebra.Terms, error) {
		return algebra.RollingSum(e.terms, over, window)
	})
	if err != nil {
		return nil, err
	}
	return combined(t, e, e), nil
}

// Within keeps the coordinates whose values on the dimensions shared with
// set appear in set.
func (e *Expression) Within(set Expressionable) (*Expression, error) {
	coords, err := From(set).frame(arrowMem)
	if err != nil {
		return nil, err
	}
	t, err := record("Within", func() (*algebra.Terms, error) {
		return algebra.WithinTerms(e.terms, coords)
	})
	if err != nil {
		return nil, err
	}
	return e.derive(t), nil
}

// Filter keeps the rows equal to every value in eq. Keys must be
// dimensions.
func (e *Expression) Filter(eq map[string]any) (*Expression, error) {
	t, err := record("Filter", func() (*algebra.Terms, error) {
		return algebra.FilterTerms(e.terms, eq)
	})
	if err != nil {
		return nil, err
	}
	return e.derive(t), nil
}

// LessEqual builds the constraint e <= other.
func (e *Expression) LessEqual(other Expressionable) (*Constraint, error) {
	return e.compare(other, SenseLE)
}

// GreaterEqual builds the constraint e >= other.
func (e *Expression) GreaterEqual(other Expressionable) (*Constraint, error) {
	return e.compare(other, SenseGE)
}

// Equal builds the constraint e = other.
func (e *Expression) Equal(other Expressionable) (*Constraint, error) {
	return e.compare(other, SenseEQ)
}

func (e *Expression) compare(other Expressionable, sense Sense) (*Constraint, error) {
	lhs, err := e.Sub(other)
	if err != nil {
		return nil, err
	}
	return &Constraint{Expression: lhs, sense: sense}, nil
}

// Dimensions returns the dimension names, or nil for a dimensionless
// expression.
func (e *Expression) Dimensions() []string {
	dims := e.terms.Dims()
	if len(dims) == 0 {
		return nil
	}
	return dims
}

// Shape maps each dimension to its number of distinct values.
func (e *Expression) Shape() map[string]int {
	return e.terms.Shape()
}

// Len returns the number of coordinates.
func (e *Expression) Len() int {
	if len(e.terms.Dims()) == 0 {
		return 1
	}
	return e.terms.Coordinates().Len()
}

// NumTerms returns the number of rows of the term table.
func (e *Expression) NumTerms() int {
	return e.terms.NumTerms()
}

// ConstantTerms returns one constant row per coordinate, 0 where a
// coordinate has none.
func (e *Expression) ConstantTerms() *Expression {
	return e.derive(e.terms.ConstantTerms())
}

// VariableTerms returns the rows that refer to variables.
func (e *Expression) VariableTerms() *Expression {
	return e.derive(e.terms.VariableTerms())
}

// Columns returns the term table's column names: dimensions, CoefKey,
// VarKey.
func (e *Expression) Columns() []string {
	return e.terms.Frame().Columns()
}

// Rows materializes the term table in Columns order.
func (e *Expression) Rows() [][]any {
	return e.terms.Frame().Rows()
}

// Lines renders one line per coordinate.
func (e *Expression) Lines(opts FormatOptions) ([]string, error) {
	return render.Lines(e.terms, opts.render("", e.namer))
}

// Table renders the term table as a boxed table.
func (e *Expression) Table(opts FormatOptions) string {
	return render.Table(e.terms, opts.render("", e.namer))
}

func (e *Expression) header(kind string, fields ...render.Field) string {
	fields = append(fields,
		render.Field{Key: "size", Value: strconv.Itoa(e.Len())},
		shapeField(e.terms.Dims(), e.Shape()),
		render.Field{Key: "terms", Value: strconv.Itoa(e.NumTerms())},
	)
	return render.Header(kind, fields...)
}

// String returns a header followed by the first lines of the expression.
func (e *Expression) String() string {
	lines, err := e.Lines(defaultFormat())
	return describe(e.header("Expression"), lines, err)
}

// WriteParquet writes the term table as Parquet. NewExpression on the
// result of ReadParquet restores the expression.
func (e *Expression) WriteParquet(w io.Writer) error {
	return lfio.NewParquetWriter(w, lfio.DefaultParquetOptions()).Write(e.terms.Frame())
}

// Sum sums e over the given dimensions, or over all of them when none are
// given.
func Sum(e Expressionable, over ...string) (*Expression, error) {
	return e.ToExpression().Sum(over...)
}

// SumBy sums e over every dimension except by.
func SumBy(e Expressionable, by ...string) (*Expression, error) {
	return e.ToExpression().SumBy(by...)
}

// SumList adds expressions that share one dimension set with a single
// concatenation, skipping coordinate reconciliation. Coefficients of the
// same variable at the same coordinate are summed.
func SumList(es ...Expressionable) (*Expression, error) {
	if len(es) == 0 {
		return nil, errors.NewDomainError("SumList", "at least one expression is required")
	}
	exprs := make([]*Expression, len(es))
	terms := make([]*algebra.Terms, len(es))
	for i, x := range es {
		exprs[i] = x.ToExpression()
		terms[i] = exprs[i].terms
	}
	t, err := record("SumList", func() (*algebra.Terms, error) {
		return algebra.SumList(terms)
	})
	if err != nil {
		return nil, err
	}
	out := combined(t, exprs[0], exprs[0])
	for _, x := range exprs {
		if out.namer == nil {
			out.namer = x.namer
		}
	}
	return out, nil
}
