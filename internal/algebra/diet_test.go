package algebra

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/paveg/linframe/internal/dataframe"
	"github.com/paveg/linframe/internal/series"
	"github.com/paveg/linframe/internal/testutil"
)

// param turns value into the coefficient column of a constant table.
func param(t *testing.T, df *dataframe.DataFrame, keys []string, value string) *Terms {
	t.Helper()
	selected, err := df.Select(append(keys, value)...)
	require.NoError(t, err)
	renamed, err := selected.Rename(map[string]string{value: CoefKey})
	require.NoError(t, err)
	withVar, err := renamed.WithColumns(series.Repeat(VarKey, ConstTerm, renamed.Len(), renamed.Allocator()))
	require.NoError(t, err)
	tt, err := NewTerms(withVar)
	require.NoError(t, err)
	return tt
}

func TestDietIntake(t *testing.T) {
	mem := testutil.SetupMemoryTest(t).Allocator
	data := testutil.CreateDietData(t, mem)

	buy := variable(t, "food", []string{"bread", "milk", "rice"}, 1)
	amount := param(t, data.FoodNutrients, []string{"food", "category"}, "amount")

	perFood, err := Multiply("Mul", buy, amount)
	require.NoError(t, err)
	testutil.AssertRowsUnordered(t, perFood.Frame(), []string{"food", "category", CoefKey}, [][]any{
		{"bread", "protein", 4.0}, {"bread", "calories", 65.0},
		{"milk", "protein", 8.0}, {"milk", "calories", 120.0},
		{"rice", "protein", 3.0}, {"rice", "calories", 200.0},
	})

	intake, err := SumOver(perFood, []string{"food"})
	require.NoError(t, err)
	testutil.AssertDataFrameHasColumns(t, intake.Frame(), []string{"category", CoefKey, VarKey})
	testutil.AssertRowsUnordered(t, intake.Frame(), intake.Frame().Columns(), [][]any{
		{"protein", 4.0, uint32(1)}, {"protein", 8.0, uint32(2)}, {"protein", 3.0, uint32(3)},
		{"calories", 65.0, uint32(1)}, {"calories", 120.0, uint32(2)}, {"calories", 200.0, uint32(3)},
	})

	lower := param(t, data.Nutrients, []string{"category"}, "min")
	slack, err := Add("Sub", operand(intake), operand(Scale(lower, -1)))
	require.NoError(t, err)
	testutil.AssertRows(t, slack.ConstantTerms().Frame(), []string{"category", CoefKey}, [][]any{
		{"protein", -20.0},
		{"calories", -500.0},
	})
	require.Equal(t, intake.NumTerms(), slack.VariableTerms().NumTerms())
}
