package series

import (
	"math"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/linframe/internal/errors"
)

func TestNewSeries(t *testing.T) {
	mem := memory.NewGoAllocator()

	t.Run("string series", func(t *testing.T) {
		s := New("names", []string{"alice", "bob"}, mem)
		assert.Equal(t, "names", s.Name())
		assert.Equal(t, 2, s.Len())
		assert.Equal(t, []string{"alice", "bob"}, s.Values())
		assert.Equal(t, arrow.BinaryTypes.String, s.DataType())
	})

	t.Run("uint32 series", func(t *testing.T) {
		s := New("__variable_id", []uint32{0, 4, 7}, mem)
		assert.Equal(t, uint32(4), s.Value(1))
		assert.Equal(t, arrow.PrimitiveTypes.Uint32, s.DataType())
	})

	t.Run("nullable series", func(t *testing.T) {
		s := NewNullable("v", []float64{1, 0, 3}, []bool{true, false, true}, mem)
		assert.True(t, s.IsNull(1))
		assert.Nil(t, s.Any(1))
		assert.Equal(t, 3.0, s.Any(2))
		assert.Equal(t, 1, s.NullN())
	})

	t.Run("repeat", func(t *testing.T) {
		s := Repeat("c", 2.5, 3, mem)
		assert.Equal(t, []float64{2.5, 2.5, 2.5}, s.Values())
	})
}

func TestTake(t *testing.T) {
	mem := memory.NewGoAllocator()
	s := New("x", []int64{10, 20, 30}, mem)

	taken := s.Take([]int{2, -1, 0}, mem)
	assert.Equal(t, "x", taken.Name())
	assert.Equal(t, int64(30), taken.Any(0))
	assert.True(t, taken.IsNull(1))
	assert.Equal(t, int64(10), taken.Any(2))
}

func TestConcatAndCoalesce(t *testing.T) {
	mem := memory.NewGoAllocator()

	joined, err := Concat("x", []ISeries{
		New("a", []string{"p"}, mem),
		New("b", []string{"q", "r"}, mem),
	}, mem)
	require.NoError(t, err)
	assert.Equal(t, []string{"p", "q", "r"}, joined.(*Series[string]).Values())

	_, err = Concat("x", []ISeries{New("a", []string{"p"}, mem), New("b", []int64{1}, mem)}, mem)
	assert.Error(t, err)

	left := NewNullable("k", []int64{1, 0, 0}, []bool{true, false, false}, mem)
	right := NewNullable("k", []int64{0, 2, 0}, []bool{false, true, false}, mem)
	merged, err := Coalesce(left, right, mem)
	require.NoError(t, err)
	assert.Equal(t, int64(1), merged.Any(0))
	assert.Equal(t, int64(2), merged.Any(1))
	assert.Nil(t, merged.Any(2))
}

func TestCompare(t *testing.T) {
	mem := memory.NewGoAllocator()

	tests := []struct {
		name string
		s    ISeries
		want []int
	}{
		{"int64", New("x", []int64{3, 1, 3}, mem), []int{1, 0, -1}},
		{"string", New("x", []string{"b", "a", "c"}, mem), []int{1, -1, -1}},
		{"bool", New("x", []bool{true, false, true}, mem), []int{1, 0, -1}},
		{"nulls first", NewNullable("x", []float64{0, 1, 2}, []bool{false, true, true}, mem), []int{-1, -1, -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want[0], tt.s.Compare(0, 1))
			assert.Equal(t, tt.want[1], tt.s.Compare(0, 2))
			assert.Equal(t, tt.want[2], tt.s.Compare(1, 2))
		})
	}
}

func TestAppendKey(t *testing.T) {
	mem := memory.NewGoAllocator()

	ints := New("x", []int64{1, 1, 2}, mem)
	assert.Equal(t, ints.AppendKey(nil, 0), ints.AppendKey(nil, 1))
	assert.NotEqual(t, ints.AppendKey(nil, 0), ints.AppendKey(nil, 2))

	floats := New("x", []float64{0, math.Copysign(0, -1)}, mem)
	assert.Equal(t, floats.AppendKey(nil, 0), floats.AppendKey(nil, 1))

	// Type tags keep "1" and 1 apart.
	strs := New("x", []string{"1"}, mem)
	assert.NotEqual(t, strs.AppendKey(nil, 0), ints.AppendKey(nil, 0))
}

func TestCast(t *testing.T) {
	mem := memory.NewGoAllocator()

	v, err := New("x", []float64{1}, mem).Cast(2)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	v, err = New("x", []int64{1}, mem).Cast(int32(5))
	require.NoError(t, err)
	assert.Equal(t, int64(5), v)

	v, err = New("x", []uint32{1}, mem).Cast(3)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), v)

	_, err = New("x", []string{"a"}, mem).Cast(1)
	assert.Error(t, err)
}

func TestFromArray(t *testing.T) {
	mem := memory.NewGoAllocator()

	b := array.NewInt32Builder(mem)
	b.AppendValues([]int32{1, 2}, nil)
	b.AppendNull()
	arr := b.NewArray()
	b.Release()

	s, err := FromArray("n", arr, mem)
	require.NoError(t, err)
	assert.Equal(t, arrow.PrimitiveTypes.Int64, s.DataType())
	assert.Equal(t, int64(2), s.Any(1))
	assert.Nil(t, s.Any(2))

	fb := array.NewFloat32Builder(mem)
	fb.AppendValues([]float32{1.5}, nil)
	farr := fb.NewArray()
	fb.Release()
	f, err := FromArray("f", farr, mem)
	require.NoError(t, err)
	assert.Equal(t, 1.5, f.Any(0))

	db := array.NewDate32Builder(mem)
	db.Append(arrow.Date32(1))
	_, err = FromArray("d", db.NewArray(), mem)
	db.Release()
	assert.Error(t, err)
}

func TestFromSlice(t *testing.T) {
	mem := memory.NewGoAllocator()

	tests := []struct {
		name   string
		values any
		want   []any
	}{
		{"ints widen", []int{1, 2}, []any{int64(1), int64(2)}},
		{"float32 widen", []float32{0.5}, []any{0.5}},
		{"any with nil", []any{"a", nil}, []any{"a", nil}},
		{"mixed numbers", []any{1, 2.5}, []any{1.0, 2.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := FromSlice("c", tt.values, mem)
			require.NoError(t, err)
			got := make([]any, s.Len())
			for i := range got {
				got[i] = s.Any(i)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := FromSlice("c", []any{nil}, mem)
	assert.Error(t, err)
	_, err = FromSlice("c", []any{"a", 1}, mem)
	assert.Error(t, err)
	_, err = FromSlice("c", []complex64{1}, mem)
	assert.Error(t, err)
}

func TestUnsignedRange(t *testing.T) {
	mem := memory.NewGoAllocator()

	s, err := FromSlice("id", []uint64{0, math.MaxInt64}, mem)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), s.Any(1))

	tests := []struct {
		name   string
		values any
	}{
		{"uint64 slice", []uint64{1, math.MaxUint64}},
		{"uint slice", []uint{math.MaxInt64 + 1}},
		{"any slice", []any{uint64(math.MaxUint64)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromSlice("id", tt.values, mem)
			require.ErrorIs(t, err, errors.ErrDomain)
			assert.ErrorContains(t, err, "exceeds the int64 range")
		})
	}

	t.Run("arrow uint64", func(t *testing.T) {
		b := array.NewUint64Builder(mem)
		b.AppendValues([]uint64{7, math.MaxUint64}, nil)
		arr := b.NewArray()
		b.Release()
		_, err := FromArray("id", arr, mem)
		require.ErrorIs(t, err, errors.ErrDomain)

		nb := array.NewUint64Builder(mem)
		nb.Append(7)
		nb.AppendNull()
		narr := nb.NewArray()
		nb.Release()
		widened, err := FromArray("id", narr, mem)
		require.NoError(t, err)
		assert.Equal(t, int64(7), widened.Any(0))
		assert.Nil(t, widened.Any(1))
	})

	_, err = NormalizeLiteral(uint64(math.MaxUint64))
	require.ErrorIs(t, err, errors.ErrDomain)
}
