// Package dataframe provides the ordered, immutable column tables that back
// term tables and sets.
//
// Every operation returns a new DataFrame that shares unchanged columns with
// its input. Row order is significant: joins are left-major, group-bys and
// distinct keep first-appearance order, concatenation appends.
package dataframe

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/paveg/linframe/internal/errors"
	"github.com/paveg/linframe/internal/series"
)

// DataFrame represents a collection of equally long, uniquely named series
type DataFrame struct {
	columns map[string]series.ISeries
	order   []string
	rows    int
	mem     memory.Allocator
}

// New creates a DataFrame from series, which must have equal lengths and
// distinct names.
func New(mem memory.Allocator, cols ...series.ISeries) (*DataFrame, error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	df := &DataFrame{
		columns: make(map[string]series.ISeries, len(cols)),
		order:   make([]string, 0, len(cols)),
		mem:     mem,
	}
	for i, col := range cols {
		if _, dup := df.columns[col.Name()]; dup {
			return nil, errors.NewStructuralError("New",
				fmt.Sprintf("duplicate column name '%s'", col.Name()))
		}
		if i == 0 {
			df.rows = col.Len()
		} else if col.Len() != df.rows {
			return nil, errors.NewStructuralError("New",
				fmt.Sprintf("column '%s' has %d rows, expected %d", col.Name(), col.Len(), df.rows))
		}
		df.columns[col.Name()] = col
		df.order = append(df.order, col.Name())
	}
	return df, nil
}

// Blank creates a DataFrame with n rows and no columns. A one-row blank
// frame is the single coordinate of a dimensionless table.
func Blank(mem memory.Allocator, n int) *DataFrame {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	return &DataFrame{columns: map[string]series.ISeries{}, rows: n, mem: mem}
}

func (df *DataFrame) derive(cols []series.ISeries, rows int) *DataFrame {
	out := &DataFrame{
		columns: make(map[string]series.ISeries, len(cols)),
		order:   make([]string, 0, len(cols)),
		rows:    rows,
		mem:     df.mem,
	}
	for _, col := range cols {
		out.columns[col.Name()] = col
		out.order = append(out.order, col.Name())
	}
	return out
}

// Allocator returns the allocator new columns are built with.
func (df *DataFrame) Allocator() memory.Allocator {
	return df.mem
}

// Len returns the number of rows
func (df *DataFrame) Len() int {
	return df.rows
}

// Width returns the number of columns
func (df *DataFrame) Width() int {
	return len(df.order)
}

// Columns returns the column names in order
func (df *DataFrame) Columns() []string {
	return append([]string(nil), df.order...)
}

// Column returns the named series
func (df *DataFrame) Column(name string) (series.ISeries, bool) {
	s, ok := df.columns[name]
	return s, ok
}

// HasColumn checks if a column exists
func (df *DataFrame) HasColumn(name string) bool {
	_, exists := df.columns[name]
	return exists
}

func (df *DataFrame) lookup(op string, names []string) ([]series.ISeries, error) {
	cols := make([]series.ISeries, len(names))
	for i, name := range names {
		col, ok := df.columns[name]
		if !ok {
			return nil, errors.NewColumnNotFoundError(op, name)
		}
		cols[i] = col
	}
	return cols, nil
}

// Select returns the named columns in the given order
func (df *DataFrame) Select(names ...string) (*DataFrame, error) {
	cols, err := df.lookup("Select", names)
	if err != nil {
		return nil, err
	}
	return df.derive(cols, df.rows), nil
}

// Drop returns a new DataFrame without the specified columns; unknown
// names are ignored.
func (df *DataFrame) Drop(names ...string) *DataFrame {
	dropSet := make(map[string]bool, len(names))
	for _, name := range names {
		dropSet[name] = true
	}
	cols := make([]series.ISeries, 0, len(df.order))
	for _, name := range df.order {
		if !dropSet[name] {
			cols = append(cols, df.columns[name])
		}
	}
	return df.derive(cols, df.rows)
}

// Rename renames columns by the old -> new mapping.
func (df *DataFrame) Rename(mapping map[string]string) (*DataFrame, error) {
	cols := make([]series.ISeries, 0, len(df.order))
	seen := make(map[string]bool, len(df.order))
	for _, name := range df.order {
		col := df.columns[name]
		if to, ok := mapping[name]; ok {
			col = col.Rename(to)
		}
		if seen[col.Name()] {
			return nil, errors.NewStructuralError("Rename",
				fmt.Sprintf("duplicate column name '%s'", col.Name()))
		}
		seen[col.Name()] = true
		cols = append(cols, col)
	}
	return df.derive(cols, df.rows), nil
}

// WithColumns replaces same-named columns in place and appends new ones.
func (df *DataFrame) WithColumns(cols ...series.ISeries) (*DataFrame, error) {
	out := make([]series.ISeries, 0, len(df.order)+len(cols))
	replaced := make(map[string]series.ISeries, len(cols))
	for _, col := range cols {
		if col.Len() != df.rows {
			return nil, errors.NewStructuralError("WithColumns",
				fmt.Sprintf("column '%s' has %d rows, expected %d", col.Name(), col.Len(), df.rows))
		}
		replaced[col.Name()] = col
	}
	for _, name := range df.order {
		if col, ok := replaced[name]; ok {
			out = append(out, col)
			delete(replaced, name)
			continue
		}
		out = append(out, df.columns[name])
	}
	for _, col := range cols {
		if _, pending := replaced[col.Name()]; pending {
			out = append(out, col)
		}
	}
	return df.derive(out, df.rows), nil
}

// Take gathers rows by position; a negative position yields a null row.
func (df *DataFrame) Take(indices []int) *DataFrame {
	cols := make([]series.ISeries, len(df.order))
	for i, name := range df.order {
		cols[i] = df.columns[name].Take(indices, df.mem)
	}
	return df.derive(cols, len(indices))
}

// Filter keeps the rows where mask is true.
func (df *DataFrame) Filter(mask []bool) *DataFrame {
	indices := make([]int, 0, len(mask))
	for i, keep := range mask {
		if keep {
			indices = append(indices, i)
		}
	}
	if len(indices) == df.rows {
		return df
	}
	return df.Take(indices)
}

// Head returns the first n rows.
func (df *DataFrame) Head(n int) *DataFrame {
	if n >= df.rows {
		return df
	}
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return df.Take(indices)
}

// FilterEqual keeps rows equal to every literal in values. Literals are cast
// to the column type first.
func (df *DataFrame) FilterEqual(values map[string]any) (*DataFrame, error) {
	type cond struct {
		col series.ISeries
		lit any
	}
	conds := make([]cond, 0, len(values))
	for _, name := range sortedKeys(values) {
		col, ok := df.columns[name]
		if !ok {
			return nil, errors.NewColumnNotFoundError("Filter", name)
		}
		lit, err := col.Cast(values[name])
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond{col: col, lit: lit})
	}

	mask := make([]bool, df.rows)
	for i := range mask {
		mask[i] = true
		for _, c := range conds {
			if c.col.Any(i) != c.lit {
				mask[i] = false
				break
			}
		}
	}
	return df.Filter(mask), nil
}

// Concat stacks frames with identical column sets under df's column order.
func (df *DataFrame) Concat(others ...*DataFrame) (*DataFrame, error) {
	if len(others) == 0 {
		return df, nil
	}
	rows := df.rows
	for _, other := range others {
		if !df.sameColumnSet(other) {
			return nil, errors.NewStructuralError("Concat",
				fmt.Sprintf("column sets differ: [%s] vs [%s]",
					strings.Join(df.order, ", "), strings.Join(other.order, ", ")))
		}
		rows += other.rows
	}

	cols := make([]series.ISeries, len(df.order))
	for i, name := range df.order {
		parts := make([]series.ISeries, 0, len(others)+1)
		parts = append(parts, df.columns[name])
		for _, other := range others {
			parts = append(parts, other.columns[name])
		}
		col, err := series.Concat(name, parts, df.mem)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}
	return df.derive(cols, rows), nil
}

func (df *DataFrame) sameColumnSet(other *DataFrame) bool {
	if len(df.order) != len(other.order) {
		return false
	}
	for _, name := range df.order {
		if _, ok := other.columns[name]; !ok {
			return false
		}
	}
	return true
}

// Row returns the values of row i in column order; nulls are nil.
func (df *DataFrame) Row(i int) []any {
	row := make([]any, len(df.order))
	for j, name := range df.order {
		row[j] = df.columns[name].Any(i)
	}
	return row
}

// Rows materializes every row.
func (df *DataFrame) Rows() [][]any {
	rows := make([][]any, df.rows)
	for i := range rows {
		rows[i] = df.Row(i)
	}
	return rows
}

// String returns a string representation of the DataFrame
func (df *DataFrame) String() string {
	if len(df.columns) == 0 {
		return fmt.Sprintf("DataFrame[%dx0]", df.rows)
	}

	parts := []string{fmt.Sprintf("DataFrame[%dx%d]", df.Len(), df.Width())}
	for _, name := range df.order {
		parts = append(parts, fmt.Sprintf("  %s: %s", name, df.columns[name].DataType().String()))
	}
	return strings.Join(parts, "\n")
}
