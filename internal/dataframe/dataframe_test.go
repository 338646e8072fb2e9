package dataframe

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/linframe/internal/config"
	"github.com/paveg/linframe/internal/errors"
	"github.com/paveg/linframe/internal/series"
)

func mustNew(t *testing.T, cols ...series.ISeries) *DataFrame {
	t.Helper()
	df, err := New(memory.NewGoAllocator(), cols...)
	require.NoError(t, err)
	return df
}

func TestNew(t *testing.T) {
	mem := memory.NewGoAllocator()

	df := mustNew(t,
		series.New("t", []int64{1, 2}, mem),
		series.New("c", []float64{1.5, 2.5}, mem),
	)
	assert.Equal(t, 2, df.Len())
	assert.Equal(t, 2, df.Width())
	assert.Equal(t, []string{"t", "c"}, df.Columns())
	assert.True(t, df.HasColumn("c"))
	assert.Equal(t, []any{int64(2), 2.5}, df.Row(1))

	_, err := New(mem, series.New("t", []int64{1}, mem), series.New("t", []int64{2}, mem))
	assert.ErrorIs(t, err, errors.ErrStructural)

	_, err = New(mem, series.New("a", []int64{1}, mem), series.New("b", []int64{1, 2}, mem))
	assert.ErrorIs(t, err, errors.ErrStructural)

	blank := Blank(mem, 1)
	assert.Equal(t, 1, blank.Len())
	assert.Equal(t, 0, blank.Width())
}

func TestSelectDropRename(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := mustNew(t,
		series.New("a", []int64{1}, mem),
		series.New("b", []string{"x"}, mem),
		series.New("c", []bool{true}, mem),
	)

	sel, err := df.Select("c", "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, sel.Columns())

	_, err = df.Select("zzz")
	assert.ErrorIs(t, err, errors.ErrStructural)

	assert.Equal(t, []string{"a", "c"}, df.Drop("b", "missing").Columns())

	renamed, err := df.Rename(map[string]string{"b": "label"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "label", "c"}, renamed.Columns())

	_, err = df.Rename(map[string]string{"b": "a"})
	assert.Error(t, err)
}

func TestWithColumns(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := mustNew(t, series.New("a", []int64{1, 2}, mem), series.New("v", []float64{1, 2}, mem))

	out, err := df.WithColumns(series.New("v", []float64{5, 6}, mem), series.New("w", []bool{true, false}, mem))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "v", "w"}, out.Columns())
	assert.Equal(t, []any{int64(1), 5.0, true}, out.Row(0))

	_, err = df.WithColumns(series.New("z", []int64{1}, mem))
	assert.Error(t, err)
}

func TestTakeFilterHead(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := mustNew(t, series.New("a", []int64{10, 20, 30}, mem))

	assert.Equal(t, [][]any{{int64(30)}, {nil}}, df.Take([]int{2, -1}).Rows())
	assert.Equal(t, [][]any{{int64(10)}, {int64(30)}}, df.Filter([]bool{true, false, true}).Rows())
	assert.Equal(t, 2, df.Head(2).Len())
	assert.Same(t, df, df.Head(5))
}

func TestFilterEqual(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := mustNew(t,
		series.New("t", []int64{1, 2, 1}, mem),
		series.New("k", []string{"a", "a", "b"}, mem),
	)

	out, err := df.FilterEqual(map[string]any{"t": 1})
	require.NoError(t, err)
	assert.Equal(t, [][]any{{int64(1), "a"}, {int64(1), "b"}}, out.Rows())

	out, err = df.FilterEqual(map[string]any{"t": 1, "k": "b"})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Len())

	_, err = df.FilterEqual(map[string]any{"missing": 1})
	assert.Error(t, err)

	_, err = df.FilterEqual(map[string]any{"k": 3})
	assert.Error(t, err)
}

func TestConcat(t *testing.T) {
	mem := memory.NewGoAllocator()
	a := mustNew(t, series.New("x", []int64{1}, mem), series.New("y", []string{"p"}, mem))
	b := mustNew(t, series.New("y", []string{"q"}, mem), series.New("x", []int64{2}, mem))

	out, err := a.Concat(b)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{int64(1), "p"}, {int64(2), "q"}}, out.Rows())

	c := mustNew(t, series.New("x", []int64{3}, mem))
	_, err = a.Concat(c)
	assert.ErrorIs(t, err, errors.ErrStructural)
}

func TestUniqueAndDuplicates(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := mustNew(t,
		series.New("a", []int64{2, 1, 2, 3, 1}, mem),
		series.New("b", []string{"x", "y", "x", "z", "q"}, mem),
	)

	u, err := df.Unique("a")
	require.NoError(t, err)
	assert.Equal(t, [][]any{{int64(2)}, {int64(1)}, {int64(3)}}, u.Rows())

	dups, err := df.DuplicateRows("a", "b")
	require.NoError(t, err)
	assert.Equal(t, []int{2}, dups)

	parts, err := df.Partition("a")
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 2}, {1, 4}, {3}}, parts)

	none, err := df.Unique()
	require.NoError(t, err)
	assert.Equal(t, 1, none.Len())
}

func TestGroupSum(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := mustNew(t,
		series.New("t", []int64{1, 2, 1}, mem),
		series.New("v", []uint32{0, 0, 0}, mem),
		series.New("c", []float64{1, 2, 3}, mem),
	)

	out, err := df.GroupSum([]string{"t", "v"}, "c")
	require.NoError(t, err)
	assert.Equal(t, [][]any{{int64(1), uint32(0), 4.0}, {int64(2), uint32(0), 2.0}}, out.Rows())

	_, err = df.GroupSum([]string{"c"}, "t")
	assert.Error(t, err)
}

func TestJoin(t *testing.T) {
	mem := memory.NewGoAllocator()
	left := mustNew(t,
		series.New("k", []string{"a", "b", "c"}, mem),
		series.New("v", []float64{1, 2, 3}, mem),
	)
	right := mustNew(t,
		series.New("k", []string{"b", "a", "a", "d"}, mem),
		series.New("v", []float64{10, 20, 30, 40}, mem),
	)

	t.Run("inner", func(t *testing.T) {
		out, err := left.Join(right, []string{"k"}, InnerJoin)
		require.NoError(t, err)
		assert.Equal(t, []string{"k", "v", "v_right"}, out.Columns())
		assert.Equal(t, [][]any{
			{"a", 1.0, 20.0},
			{"a", 1.0, 30.0},
			{"b", 2.0, 10.0},
		}, out.Rows())
	})

	t.Run("left", func(t *testing.T) {
		out, err := left.Join(right, []string{"k"}, LeftJoin)
		require.NoError(t, err)
		assert.Equal(t, 4, out.Len())
		assert.Equal(t, []any{"c", 3.0, nil}, out.Row(3))
	})

	t.Run("outer coalesces keys", func(t *testing.T) {
		out, err := left.Join(right, []string{"k"}, FullOuterJoin)
		require.NoError(t, err)
		assert.Equal(t, 5, out.Len())
		assert.Equal(t, []any{"d", nil, 40.0}, out.Row(4))
	})

	t.Run("cross", func(t *testing.T) {
		other := mustNew(t, series.New("t", []int64{1, 2}, mem))
		out, err := left.Join(other, nil, CrossJoin)
		require.NoError(t, err)
		assert.Equal(t, 6, out.Len())
		assert.Equal(t, []any{"a", 1.0, int64(2)}, out.Row(1))
	})

	t.Run("type mismatch", func(t *testing.T) {
		other := mustNew(t, series.New("k", []int64{1}, mem))
		_, err := left.Join(other, []string{"k"}, InnerJoin)
		assert.ErrorIs(t, err, errors.ErrStructural)
	})
}

func TestMatchMask(t *testing.T) {
	mem := memory.NewGoAllocator()
	left := mustNew(t, series.New("t", []int64{1, 2, 3}, mem))
	right := mustNew(t, series.New("t", []int64{3, 1}, mem))

	mask, err := left.MatchMask(right, []string{"t"})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, mask)
}

func TestSortBy(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := mustNew(t,
		series.New("g", []string{"b", "a", "b", "a"}, mem),
		series.New("t", []int64{2, 9, 1, 3}, mem),
	)

	out, err := df.SortBy("g", "t")
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"a", int64(3)}, {"a", int64(9)}, {"b", int64(1)}, {"b", int64(2)}}, out.Rows())
}

func TestParallelKeyEncoding(t *testing.T) {
	original := config.GetGlobalConfig()
	defer config.SetGlobalConfig(original)

	cfg := config.NewConfig()
	cfg.ParallelThreshold = 4
	cfg.ChunkSize = 3
	cfg.WorkerPoolSize = 2
	config.SetGlobalConfig(cfg)

	mem := memory.NewGoAllocator()
	values := make([]int64, 100)
	for i := range values {
		values[i] = int64(i % 7)
	}
	df := mustNew(t, series.New("k", values, mem))

	u, err := df.Unique("k")
	require.NoError(t, err)
	require.Equal(t, 7, u.Len())
	for i := range 7 {
		assert.Equal(t, int64(i), u.Row(i)[0])
	}
}
