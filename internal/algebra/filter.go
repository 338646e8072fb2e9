package algebra

import (
	"fmt"
	"slices"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/paveg/linframe/internal/dataframe"
	"github.com/paveg/linframe/internal/errors"
)

// CrossProduct builds a set from coordinate sources: each source is a table
// of dimension columns, sources are combined by cartesian product with the
// leftmost source varying slowest. Column names must be distinct across
// sources and not reserved, and no row may repeat.
func CrossProduct(mem memory.Allocator, sources ...*dataframe.DataFrame) (*dataframe.DataFrame, error) {
	if len(sources) == 0 {
		return dataframe.Blank(mem, 0), nil
	}

	var names []string
	for _, src := range sources {
		for _, name := range src.Columns() {
			if IsReserved(name) {
				return nil, errors.NewStructuralError("Set",
					fmt.Sprintf("'%s' is a reserved name and cannot be a dimension", name))
			}
			if slices.Contains(names, name) {
				return nil, &errors.EngineError{
					Op:      "Set",
					Kind:    errors.KindStructural,
					Dims:    []string{name},
					Message: "coordinates must have unique column names",
				}
			}
			names = append(names, name)
		}
	}

	out := sources[0]
	for _, src := range sources[1:] {
		var err error
		if out, err = out.Join(src, nil, dataframe.CrossJoin); err != nil {
			return nil, err
		}
	}

	dups, err := out.DuplicateRows(names...)
	if err != nil {
		return nil, err
	}
	if len(dups) > 0 {
		return nil, &errors.EngineError{
			Op:      "Set",
			Kind:    errors.KindStructural,
			Dims:    names,
			Message: fmt.Sprintf("set contains duplicate rows: %s", sampleRows(out, dups, names)),
		}
	}
	return out, nil
}

// Within keeps the rows of df (with dimensions dims) whose values on the
// dimensions shared with set appear in set.
func Within(df *dataframe.DataFrame, dims []string, set *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	setDims := set.Columns()
	if len(dims) == 0 || len(setDims) == 0 {
		return nil, errors.NewDomainError("Within", "both operands must have dimensions")
	}
	common := intersection(dims, setDims)
	if len(common) == 0 {
		return nil, errors.NewDomainError("Within",
			fmt.Sprintf("no dimensions in common with %s", errors.FormatDims(setDims)), dims...)
	}

	distinct, err := set.Unique(common...)
	if err != nil {
		return nil, err
	}
	mask, err := df.MatchMask(distinct, common)
	if err != nil {
		return nil, err
	}
	out := df.Filter(mask)

	log().V(2).Info("within", "on", common, "rows", df.Len(), "result", out.Len())
	return out, nil
}

// Filter keeps the rows of df equal to every value in eq. Every key must be
// one of dims.
func Filter(df *dataframe.DataFrame, dims []string, eq map[string]any) (*dataframe.DataFrame, error) {
	for key := range eq {
		if !slices.Contains(dims, key) {
			return nil, errors.NewDomainError("Filter",
				fmt.Sprintf("not a dimension; dimensions are %s", errors.FormatDims(dims)), key)
		}
	}
	return df.FilterEqual(eq)
}

// WithinTerms is Within on a term table.
func WithinTerms(t *Terms, set *dataframe.DataFrame) (*Terms, error) {
	df, err := Within(t.df, t.dims, set)
	if err != nil {
		return nil, err
	}
	return &Terms{df: df, dims: t.dims}, nil
}

// FilterTerms is Filter on a term table.
func FilterTerms(t *Terms, eq map[string]any) (*Terms, error) {
	df, err := Filter(t.df, t.dims, eq)
	if err != nil {
		return nil, err
	}
	return &Terms{df: df, dims: t.dims}, nil
}

// Shift gives every coordinate the terms found at the next sorted value of
// dim. Terms at the first value are dropped, or moved to the last value when
// wrap is set.
func Shift(t *Terms, dim string, wrap bool) (*Terms, error) {
	if !slices.Contains(t.dims, dim) {
		return nil, errors.NewDomainError("Shift",
			fmt.Sprintf("dimension not present in expression with dimensions %s", errors.FormatDims(t.dims)), dim)
	}

	values, err := t.df.Unique(dim)
	if err != nil {
		return nil, err
	}
	sorted, err := values.SortBy(dim)
	if err != nil {
		return nil, err
	}
	sortedCol, _ := sorted.Column(dim)
	n := sorted.Len()

	position := make(map[string]int, n)
	for i := range n {
		position[string(sortedCol.AppendKey(nil, i))] = i
	}

	col, _ := t.df.Column(dim)
	var keep []int
	var target []int
	for row := range t.df.Len() {
		p := position[string(col.AppendKey(nil, row))]
		switch {
		case p > 0:
			keep = append(keep, row)
			target = append(target, p-1)
		case wrap:
			keep = append(keep, row)
			target = append(target, n-1)
		}
	}

	shifted, err := t.df.Take(keep).WithColumns(sortedCol.Take(target, t.df.Allocator()).Rename(dim))
	if err != nil {
		return nil, err
	}
	return &Terms{df: shifted, dims: t.dims}, nil
}
