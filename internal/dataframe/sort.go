package dataframe

import (
	"sort"
)

// SortIndices returns row positions ordered by the named columns
// (lexicographically, ascending, nulls first). The sort is stable.
func (df *DataFrame) SortIndices(names ...string) ([]int, error) {
	cols, err := df.lookup("Sort", names)
	if err != nil {
		return nil, err
	}
	indices := make([]int, df.rows)
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		for _, col := range cols {
			if c := col.Compare(indices[a], indices[b]); c != 0 {
				return c < 0
			}
		}
		return false
	})
	return indices, nil
}

// SortBy returns the rows ordered by the named columns.
func (df *DataFrame) SortBy(names ...string) (*DataFrame, error) {
	indices, err := df.SortIndices(names...)
	if err != nil {
		return nil, err
	}
	return df.Take(indices), nil
}
