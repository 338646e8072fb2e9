package linframe

import (
	"strconv"

	"github.com/paveg/linframe/internal/algebra"
	"github.com/paveg/linframe/internal/dataframe"
	"github.com/paveg/linframe/internal/errors"
	"github.com/paveg/linframe/internal/render"
	"github.com/paveg/linframe/internal/series"
)

// Set is an index domain: distinct rows over one or more dimensions.
type Set struct {
	df   *dataframe.DataFrame
	opts algebra.Options
}

// NewSet builds the cartesian product of sources, the first source varying
// slowest. Column names must be distinct across sources and no row may
// repeat.
func NewSet(sources ...Source) (*Set, error) {
	if len(sources) == 0 {
		return nil, errors.NewDomainError("Set", "at least one source is required")
	}
	df, err := coordinates(sources)
	if err != nil {
		return nil, err
	}
	return &Set{df: df, opts: defaultOptions()}, nil
}

// ToExpression returns the constant expression with coefficient 1 at every
// coordinate.
func (s *Set) ToExpression() *Expression {
	n := s.df.Len()
	df, err := s.df.WithColumns(
		series.Repeat(CoefKey, 1.0, n, arrowMem),
		series.Repeat(VarKey, ConstTerm, n, arrowMem),
	)
	if err != nil {
		panic(err) // set columns are never reserved
	}
	terms, err := algebra.NewTerms(df)
	if err != nil {
		panic(err) // set rows are unique
	}
	return &Expression{terms: terms, opts: s.opts}
}

func (s *Set) with(df *dataframe.DataFrame) *Set {
	return &Set{df: df, opts: s.opts}
}

// KeepUnmatched returns a copy whose coordinates missing from the other
// operand are kept when combined.
func (s *Set) KeepUnmatched() *Set {
	out := s.with(s.df)
	out.opts.Unmatched = algebra.UnmatchedKeep
	return out
}

// DropUnmatched returns a copy whose coordinates missing from the other
// operand are dropped when combined.
func (s *Set) DropUnmatched() *Set {
	out := s.with(s.df)
	out.opts.Unmatched = algebra.UnmatchedDrop
	return out
}

// AddDim returns a copy that may be broadcast over dims.
func (s *Set) AddDim(dims ...string) *Set {
	out := s.with(s.df)
	out.opts = s.opts.WithAllowed(dims...)
	return out
}

// Mul returns the cartesian product of s and other, which must not share
// dimensions.
func (s *Set) Mul(other *Set) (*Set, error) {
	df, err := algebra.CrossProduct(arrowMem, s.df, other.df)
	if err != nil {
		return nil, err
	}
	return &Set{df: df, opts: defaultOptions()}, nil
}

// Filter keeps the rows equal to every value in eq.
func (s *Set) Filter(eq map[string]any) (*Set, error) {
	df, err := algebra.Filter(s.df, s.df.Columns(), eq)
	if err != nil {
		return nil, err
	}
	return s.with(df), nil
}

// Within keeps the rows whose values on the dimensions shared with set
// appear in set.
func (s *Set) Within(set Expressionable) (*Set, error) {
	coords, err := From(set).frame(arrowMem)
	if err != nil {
		return nil, err
	}
	df, err := algebra.Within(s.df, s.df.Columns(), coords)
	if err != nil {
		return nil, err
	}
	return s.with(df), nil
}

// Dimensions returns the dimension names.
func (s *Set) Dimensions() []string {
	return s.df.Columns()
}

// Shape maps each dimension to its number of distinct values.
func (s *Set) Shape() map[string]int {
	shape := make(map[string]int, s.df.Width())
	for _, d := range s.df.Columns() {
		u, err := s.df.Unique(d)
		if err != nil {
			panic(err)
		}
		shape[d] = u.Len()
	}
	return shape
}

// Len returns the number of rows.
func (s *Set) Len() int {
	return s.df.Len()
}

// Rows materializes the set in Dimensions order.
func (s *Set) Rows() [][]any {
	return s.df.Rows()
}

// String returns a header followed by the first rows.
func (s *Set) String() string {
	header := render.Header("Set",
		render.Field{Key: "size", Value: strconv.Itoa(s.Len())},
		shapeField(s.Dimensions(), s.Shape()),
	)
	lines, err := s.ToExpression().Lines(defaultFormat())
	return describe(header, lines, err)
}
