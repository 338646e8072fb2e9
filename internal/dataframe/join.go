package dataframe

import (
	"github.com/paveg/linframe/internal/series"
)

// JoinType represents the type of join operation
type JoinType int

const (
	// InnerJoin keeps row pairs that match on every key.
	InnerJoin JoinType = iota
	// LeftJoin additionally keeps unmatched left rows, with nulls on the right.
	LeftJoin
	// FullOuterJoin additionally appends unmatched right rows; key columns
	// are coalesced.
	FullOuterJoin
	// CrossJoin pairs every left row with every right row.
	CrossJoin
)

// rightSuffix is appended to right non-key columns that collide with a left column.
const rightSuffix = "_right"

// Join combines df with right on the named key columns. Rows come out
// left-major: each left row followed by its matches in right order. An empty
// key list degrades to a cross join.
func (df *DataFrame) Join(right *DataFrame, on []string, how JoinType) (*DataFrame, error) {
	leftCols, rightCols, err := joinColumns("Join", df, right, on)
	if err != nil {
		return nil, err
	}

	var leftIdx, rightIdx []int
	if how == CrossJoin || len(on) == 0 {
		leftIdx, rightIdx = crossIndices(df.rows, right.rows)
		how = CrossJoin
	} else {
		leftIdx, rightIdx = hashJoinIndices(leftCols, df.rows, rightCols, right.rows, how)
	}
	return df.buildJoinResult(right, on, leftIdx, rightIdx, how)
}

func crossIndices(leftRows, rightRows int) ([]int, []int) {
	leftIdx := make([]int, 0, leftRows*rightRows)
	rightIdx := make([]int, 0, leftRows*rightRows)
	for i := range leftRows {
		for j := range rightRows {
			leftIdx = append(leftIdx, i)
			rightIdx = append(rightIdx, j)
		}
	}
	return leftIdx, rightIdx
}

func hashJoinIndices(
	leftCols []series.ISeries, leftRows int, rightCols []series.ISeries, rightRows int, how JoinType,
) ([]int, []int) {
	idx := newHashIndex(rightRows)
	for row, key := range encodeKeys(rightCols, rightRows) {
		idx.put(key, row)
	}

	var leftIdx, rightIdx []int
	matched := make([]bool, rightRows)
	for i, key := range encodeKeys(leftCols, leftRows) {
		rows, ok := idx.get(key)
		if !ok {
			if how != InnerJoin {
				leftIdx = append(leftIdx, i)
				rightIdx = append(rightIdx, -1)
			}
			continue
		}
		for _, j := range rows {
			leftIdx = append(leftIdx, i)
			rightIdx = append(rightIdx, j)
			matched[j] = true
		}
	}

	if how == FullOuterJoin {
		for j, ok := range matched {
			if !ok {
				leftIdx = append(leftIdx, -1)
				rightIdx = append(rightIdx, j)
			}
		}
	}
	return leftIdx, rightIdx
}

func (df *DataFrame) buildJoinResult(
	right *DataFrame, on []string, leftIdx, rightIdx []int, how JoinType,
) (*DataFrame, error) {
	keys := make(map[string]bool, len(on))
	for _, k := range on {
		keys[k] = true
	}

	cols := make([]series.ISeries, 0, df.Width()+right.Width())
	for _, name := range df.order {
		col := df.columns[name].Take(leftIdx, df.mem)
		if keys[name] && how == FullOuterJoin {
			var err error
			col, err = series.Coalesce(col, right.columns[name].Take(rightIdx, df.mem), df.mem)
			if err != nil {
				return nil, err
			}
		}
		cols = append(cols, col)
	}
	for _, name := range right.order {
		if keys[name] {
			continue
		}
		col := right.columns[name].Take(rightIdx, df.mem)
		if _, clash := df.columns[name]; clash {
			col = col.Rename(name + rightSuffix)
		}
		cols = append(cols, col)
	}

	return df.derive(cols, len(leftIdx)), nil
}
