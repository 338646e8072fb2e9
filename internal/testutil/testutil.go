// Package testutil provides shared test helpers: allocator setup, small
// fixture frames and row-level assertions on dataframes.
package testutil

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/linframe/internal/dataframe"
	"github.com/paveg/linframe/internal/series"
)

// TestMemoryContext provides a memory allocator for tests.
type TestMemoryContext struct {
	Allocator memory.Allocator
}

// SetupMemoryTest creates a memory allocator for tests.
//
// Example usage:
//
//	mem := testutil.SetupMemoryTest(t)
//	df := testutil.NewFrame(t, mem.Allocator, series.New("day", days, mem.Allocator))
func SetupMemoryTest(tb testing.TB) *TestMemoryContext {
	tb.Helper()
	return &TestMemoryContext{Allocator: memory.NewGoAllocator()}
}

// NewFrame builds a dataframe and fails the test on error.
func NewFrame(tb testing.TB, mem memory.Allocator, cols ...series.ISeries) *dataframe.DataFrame {
	tb.Helper()
	df, err := dataframe.New(mem, cols...)
	require.NoError(tb, err)
	return df
}

// DietData holds the fixture tables of the diet model.
type DietData struct {
	Foods         *dataframe.DataFrame // food, cost
	Nutrients     *dataframe.DataFrame // category, min, max
	FoodNutrients *dataframe.DataFrame // food, category, amount
}

// CreateDietData creates a small diet problem: three foods, two nutrient
// categories and the amount of each nutrient per food.
func CreateDietData(tb testing.TB, mem memory.Allocator) DietData {
	tb.Helper()
	foods := []string{"bread", "milk", "rice"}
	categories := []string{"protein", "calories"}

	var fnFood, fnCat []string
	var amounts []float64
	table := map[string][]float64{
		"bread": {4, 65},
		"milk":  {8, 120},
		"rice":  {3, 200},
	}
	for _, f := range foods {
		for j, c := range categories {
			fnFood = append(fnFood, f)
			fnCat = append(fnCat, c)
			amounts = append(amounts, table[f][j])
		}
	}

	return DietData{
		Foods: NewFrame(tb, mem,
			series.New("food", foods, mem),
			series.New("cost", []float64{2, 3.5, 1.5}, mem),
		),
		Nutrients: NewFrame(tb, mem,
			series.New("category", categories, mem),
			series.New("min", []float64{20, 500}, mem),
			series.New("max", []float64{80, 2500}, mem),
		),
		FoodNutrients: NewFrame(tb, mem,
			series.New("food", fnFood, mem),
			series.New("category", fnCat, mem),
			series.New("amount", amounts, mem),
		),
	}
}

// AssertRows checks that the named columns of df hold want, row by row.
func AssertRows(tb testing.TB, df *dataframe.DataFrame, columns []string, want [][]any) {
	tb.Helper()
	require.NotNil(tb, df, "DataFrame should not be nil")
	selected, err := df.Select(columns...)
	require.NoError(tb, err)
	assert.Equal(tb, want, selected.Rows())
}

// AssertRowsUnordered checks that the named columns of df hold the same
// multiset of rows as want.
func AssertRowsUnordered(tb testing.TB, df *dataframe.DataFrame, columns []string, want [][]any) {
	tb.Helper()
	require.NotNil(tb, df, "DataFrame should not be nil")
	selected, err := df.Select(columns...)
	require.NoError(tb, err)
	assert.Equal(tb, rowKeys(want), rowKeys(selected.Rows()))
}

// AssertDataFrameHasColumns verifies that a DataFrame has exactly the expected columns.
func AssertDataFrameHasColumns(tb testing.TB, df *dataframe.DataFrame, expectedColumns []string) {
	tb.Helper()
	require.NotNil(tb, df, "DataFrame should not be nil")
	assert.Equal(tb, expectedColumns, df.Columns())
}

func rowKeys(rows [][]any) []string {
	keys := make([]string, len(rows))
	for i, row := range rows {
		parts := make([]string, len(row))
		for j, v := range row {
			parts[j] = fmt.Sprintf("%T:%v", v, v)
		}
		keys[i] = strings.Join(parts, "|")
	}
	slices.Sort(keys)
	return keys
}
