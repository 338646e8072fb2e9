package dataframe

import (
	"fmt"

	"github.com/paveg/linframe/internal/errors"
	"github.com/paveg/linframe/internal/series"
)

// Partition groups row positions by the named columns, groups in order of
// first appearance and rows in their original order.
func (df *DataFrame) Partition(names ...string) ([][]int, error) {
	idx, err := df.index("Partition", names)
	if err != nil {
		return nil, err
	}
	groups := make([][]int, len(idx.groups))
	for i, g := range idx.groups {
		groups[i] = g.rows
	}
	return groups, nil
}

// Unique returns the distinct rows over the named columns, in order of
// first appearance.
func (df *DataFrame) Unique(names ...string) (*DataFrame, error) {
	selected, err := df.Select(names...)
	if err != nil {
		return nil, err
	}
	groups, err := selected.Partition(names...)
	if err != nil {
		return nil, err
	}
	if len(groups) == df.rows {
		return selected, nil
	}
	first := make([]int, len(groups))
	for i, g := range groups {
		first[i] = g[0]
	}
	return selected.Take(first), nil
}

// DuplicateRows returns the positions of rows whose values over the named
// columns already appeared on an earlier row.
func (df *DataFrame) DuplicateRows(names ...string) ([]int, error) {
	groups, err := df.Partition(names...)
	if err != nil {
		return nil, err
	}
	var dups []int
	for _, g := range groups {
		dups = append(dups, g[1:]...)
	}
	return dups, nil
}

// GroupSum sums the float64 column value over groups of keys. The result
// holds the key columns followed by value, groups in first-appearance order.
func (df *DataFrame) GroupSum(keys []string, value string) (*DataFrame, error) {
	col, ok := df.columns[value]
	if !ok {
		return nil, errors.NewColumnNotFoundError("GroupSum", value)
	}
	typed, ok := col.(*series.Series[float64])
	if !ok {
		return nil, errors.NewUnsupportedTypeError("GroupSum", value, col.DataType().String())
	}

	groups, err := df.Partition(keys...)
	if err != nil {
		return nil, err
	}

	first := make([]int, len(groups))
	sums := make([]float64, len(groups))
	for i, g := range groups {
		first[i] = g[0]
		for _, row := range g {
			sums[i] += typed.Value(row)
		}
	}

	keyFrame, err := df.Select(keys...)
	if err != nil {
		return nil, err
	}
	return keyFrame.Take(first).WithColumns(series.New(value, sums, df.mem))
}

// MatchMask reports, per row, whether the row's values over on appear in
// other. Both frames must carry every column in on with equal types.
func (df *DataFrame) MatchMask(other *DataFrame, on []string) ([]bool, error) {
	leftCols, rightCols, err := joinColumns("MatchMask", df, other, on)
	if err != nil {
		return nil, err
	}

	mask := make([]bool, df.rows)
	if len(on) == 0 {
		for i := range mask {
			mask[i] = other.rows > 0
		}
		return mask, nil
	}

	idx := newHashIndex(other.rows)
	for row, key := range encodeKeys(rightCols, other.rows) {
		idx.put(key, row)
	}
	for row, key := range encodeKeys(leftCols, df.rows) {
		_, mask[row] = idx.get(key)
	}
	return mask, nil
}

func joinColumns(op string, left, right *DataFrame, on []string) ([]series.ISeries, []series.ISeries, error) {
	leftCols, err := left.lookup(op, on)
	if err != nil {
		return nil, nil, err
	}
	rightCols, err := right.lookup(op, on)
	if err != nil {
		return nil, nil, err
	}
	for i := range on {
		if !sameType(leftCols[i], rightCols[i]) {
			return nil, nil, errors.NewStructuralError(op,
				fmt.Sprintf("column '%s' has type %s on the left and %s on the right",
					on[i], leftCols[i].DataType(), rightCols[i].DataType()))
		}
	}
	return leftCols, rightCols, nil
}

func sameType(a, b series.ISeries) bool {
	return a.DataType().ID() == b.DataType().ID()
}
