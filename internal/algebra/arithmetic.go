package algebra

import (
	"slices"

	"github.com/paveg/linframe/internal/dataframe"
	"github.com/paveg/linframe/internal/errors"
	"github.com/paveg/linframe/internal/series"
)

const multiplierKey = CoefKey + "_right"

// Add sums two operands term by term after aligning them. Coefficients of
// the same variable at the same coordinate are added.
func Add(op string, a, b Operand) (*Terms, error) {
	at, bt, err := Align(op, a, b)
	if err != nil {
		return nil, err
	}
	combined, err := at.df.Concat(bt.df)
	if err != nil {
		return nil, err
	}
	summed, err := combined.GroupSum(append(slices.Clone(at.dims), VarKey), CoefKey)
	if err != nil {
		return nil, err
	}

	log().V(2).Info("add", "op", op, "left", a.Terms.NumTerms(), "right", b.Terms.NumTerms(), "result", summed.Len())
	return canonical(summed)
}

// AddConstant adds k to the constant term of every coordinate, creating the
// constant row where a coordinate has none.
func AddConstant(t *Terms, k float64) (*Terms, error) {
	filled, err := withConstRows(t)
	if err != nil {
		return nil, err
	}
	coefs := filled.Coefs().Values()
	for i, id := range filled.Vars().Values() {
		if id == ConstTerm {
			coefs[i] += k
		}
	}
	return filled.withCoefs(coefs), nil
}

// withConstRows appends a zero constant row for every coordinate lacking one.
func withConstRows(t *Terms) (*Terms, error) {
	mem := t.df.Allocator()

	if len(t.dims) == 0 {
		if slices.Contains(t.Vars().Values(), ConstTerm) {
			return t, nil
		}
		combined, err := t.df.Concat(Constant(mem, 0).df)
		if err != nil {
			return nil, err
		}
		return &Terms{df: combined}, nil
	}

	consts := t.filterVars(func(id uint32) bool { return id == ConstTerm })
	coords := t.Coordinates()
	mask, err := coords.MatchMask(consts.df, t.dims)
	if err != nil {
		return nil, err
	}
	missing := coords.Filter(invert(mask))
	if missing.Len() == 0 {
		return t, nil
	}

	extra, err := missing.WithColumns(
		series.Repeat(CoefKey, 0.0, missing.Len(), mem),
		series.Repeat(VarKey, ConstTerm, missing.Len(), mem),
	)
	if err != nil {
		return nil, err
	}
	combined, err := t.df.Concat(extra)
	if err != nil {
		return nil, err
	}
	return &Terms{df: combined, dims: t.dims}, nil
}

func invert(mask []bool) []bool {
	out := make([]bool, len(mask))
	for i, v := range mask {
		out[i] = !v
	}
	return out
}

// Scale multiplies every coefficient by k. Rows are kept even when k is 0.
func Scale(t *Terms, k float64) *Terms {
	coefs := t.Coefs().Values()
	for i := range coefs {
		coefs[i] *= k
	}
	return t.withCoefs(coefs)
}

// Multiply forms the product of two operands, at most one of which may
// contain variables. The constant side becomes a coefficient table joined on
// the shared dimensions, or crossed with the other side when none are
// shared.
func Multiply(op string, a, b *Terms) (*Terms, error) {
	aVars, bVars := a.HasVariables(), b.HasVariables()
	if aVars && bVars {
		return nil, errors.NewNonlinearError(op)
	}
	self, other := a, b
	if bVars {
		self, other = b, a
	}

	multiplier := other.df.Drop(VarKey)
	common := intersection(self.dims, other.dims)
	how := dataframe.InnerJoin
	if len(common) == 0 {
		how = dataframe.CrossJoin
	}
	joined, err := self.df.Join(multiplier, common, how)
	if err != nil {
		return nil, err
	}

	factors, _ := joined.Column(multiplierKey)
	coefs := make([]float64, joined.Len())
	base, _ := joined.Column(CoefKey)
	for i := range coefs {
		coefs[i] = base.Any(i).(float64) * factors.Any(i).(float64)
	}
	product, err := joined.Drop(multiplierKey).WithColumns(series.New(CoefKey, coefs, joined.Allocator()))
	if err != nil {
		return nil, err
	}

	log().V(2).Info("multiply", "op", op, "left", a.NumTerms(), "right", b.NumTerms(), "result", product.Len())
	return canonical(product)
}
