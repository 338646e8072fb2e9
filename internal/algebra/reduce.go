package algebra

import (
	"fmt"
	"slices"
	"sort"

	"github.com/paveg/linframe/internal/dataframe"
	"github.com/paveg/linframe/internal/errors"
	"github.com/paveg/linframe/internal/series"
)

// SumOver removes the given dimensions by summing coefficients per
// (remaining dimensions, variable id). An empty list returns t unchanged.
func SumOver(t *Terms, over []string) (*Terms, error) {
	if len(t.dims) == 0 {
		return nil, errors.NewDomainError("SumOver", "cannot sum over dimensions of an expression with no dimensions")
	}
	if unknown := difference(over, t.dims); len(unknown) > 0 {
		return nil, errors.NewDomainError("SumOver",
			fmt.Sprintf("dimensions not present in expression with dimensions %s", errors.FormatDims(t.dims)),
			unknown...)
	}
	if len(over) == 0 {
		return t, nil
	}

	keys := append(difference(t.dims, over), VarKey)
	summed, err := t.df.GroupSum(keys, CoefKey)
	if err != nil {
		return nil, err
	}

	log().V(2).Info("sum over", "dims", over, "terms", t.NumTerms(), "result", summed.Len())
	return canonical(summed)
}

// SumBy keeps only the given dimensions, summing over all others.
func SumBy(t *Terms, by []string) (*Terms, error) {
	if len(t.dims) == 0 {
		return nil, errors.NewDomainError("SumBy", "cannot sum by dimensions of an expression with no dimensions")
	}
	if unknown := difference(by, t.dims); len(unknown) > 0 {
		return nil, errors.NewDomainError("SumBy",
			fmt.Sprintf("dimensions not present in expression with dimensions %s", errors.FormatDims(t.dims)),
			unknown...)
	}
	return SumOver(t, difference(t.dims, by))
}

// SumList adds tables that share one dimension set in a single
// concatenation and group-by, without coordinate reconciliation.
func SumList(ts []*Terms) (*Terms, error) {
	if len(ts) == 0 {
		return nil, errors.NewDomainError("SumList", "at least one expression is required")
	}
	first := ts[0]
	others := make([]*dataframe.DataFrame, 0, len(ts)-1)
	for _, t := range ts[1:] {
		if !sameSet(first.dims, t.dims) {
			diff := append(difference(first.dims, t.dims), difference(t.dims, first.dims)...)
			return nil, &errors.EngineError{
				Op:      "SumList",
				Kind:    errors.KindDimensionMismatch,
				Dims:    diff,
				Message: fmt.Sprintf("incompatible dimensions %s and %s", errors.FormatDims(first.dims), errors.FormatDims(t.dims)),
			}
		}
		others = append(others, t.df)
	}
	if len(others) == 0 {
		return first, nil
	}

	combined, err := first.df.Concat(others...)
	if err != nil {
		return nil, err
	}
	summed, err := combined.GroupSum(append(slices.Clone(first.dims), VarKey), CoefKey)
	if err != nil {
		return nil, err
	}

	log().V(2).Info("sum list", "inputs", len(ts), "result", summed.Len())
	return canonical(summed)
}

// RollingSum replaces each coordinate's terms by the sum of the terms at the
// window trailing positions of over (the current one included), within each
// group of the remaining dimensions. Positions are the sorted distinct
// values of over in the group; early windows are partial.
func RollingSum(t *Terms, over string, window int) (*Terms, error) {
	if window < 1 {
		return nil, errors.NewDomainError("RollingSum", fmt.Sprintf("window must be at least 1, got %d", window))
	}
	if len(t.dims) == 0 {
		return nil, errors.NewDomainError("RollingSum", "cannot compute a rolling sum of an expression with no dimensions")
	}
	if !slices.Contains(t.dims, over) {
		return nil, errors.NewDomainError("RollingSum",
			fmt.Sprintf("dimension not present in expression with dimensions %s", errors.FormatDims(t.dims)), over)
	}

	groups, err := t.df.Partition(difference(t.dims, []string{over})...)
	if err != nil {
		return nil, err
	}
	overCol, _ := t.df.Column(over)
	ids := t.Vars().Values()
	coefs := t.Coefs().Values()

	var (
		outRows  []int
		outVars  []uint32
		outCoefs []float64
	)
	for _, rows := range groups {
		positions := ordinalPositions(overCol, rows)
		for p := range positions {
			lo := max(0, p-window+1)
			sums := make(map[uint32]float64)
			var order []uint32
			for _, pos := range positions[lo : p+1] {
				for _, row := range pos {
					id := ids[row]
					if _, seen := sums[id]; !seen {
						order = append(order, id)
					}
					sums[id] += coefs[row]
				}
			}
			for _, id := range order {
				outRows = append(outRows, positions[p][0])
				outVars = append(outVars, id)
				outCoefs = append(outCoefs, sums[id])
			}
		}
	}

	coords, err := t.df.Select(t.dims...)
	if err != nil {
		return nil, err
	}
	mem := t.df.Allocator()
	rolled, err := coords.Take(outRows).WithColumns(
		series.New(CoefKey, outCoefs, mem),
		series.New(VarKey, outVars, mem),
	)
	if err != nil {
		return nil, err
	}

	log().V(2).Info("rolling sum", "over", over, "window", window, "terms", t.NumTerms(), "result", rolled.Len())
	return &Terms{df: rolled, dims: t.dims}, nil
}

// ordinalPositions groups rows by their value of col, positions ordered by
// value. Rows keep their original order within a position.
func ordinalPositions(col series.ISeries, rows []int) [][]int {
	sorted := slices.Clone(rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return col.Compare(sorted[i], sorted[j]) < 0
	})

	var positions [][]int
	for i, row := range sorted {
		if i == 0 || col.Compare(sorted[i-1], row) != 0 {
			positions = append(positions, nil)
		}
		positions[len(positions)-1] = append(positions[len(positions)-1], row)
	}
	return positions
}
