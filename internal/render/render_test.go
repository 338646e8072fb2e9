package render

import (
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/linframe/internal/algebra"
	"github.com/paveg/linframe/internal/dataframe"
	"github.com/paveg/linframe/internal/series"
)

type names map[uint32]string

func (n names) VarName(id uint32) string { return n[id] }

func buildTerms(t *testing.T, dims map[string][]string, coefs []float64, ids []uint32) *algebra.Terms {
	t.Helper()
	mem := memory.NewGoAllocator()
	var cols []series.ISeries
	for _, name := range []string{"y", "t"} {
		if values, ok := dims[name]; ok {
			cols = append(cols, series.New(name, values, mem))
		}
	}
	cols = append(cols, series.New(algebra.CoefKey, coefs, mem), series.New(algebra.VarKey, ids, mem))
	df, err := dataframe.New(mem, cols...)
	require.NoError(t, err)
	terms, err := algebra.NewTerms(df)
	require.NoError(t, err)
	return terms
}

func TestFormatCoef(t *testing.T) {
	tests := []struct {
		c         float64
		dropOnes  bool
		precision int
		want      string
	}{
		{2, true, 0, "+2"},
		{2.5, true, 0, "+2.5"},
		{-4, true, 0, "-4"},
		{1, true, 0, "+"},
		{-1, true, 0, "-"},
		{1, false, 0, "+1"},
		{-1, false, 0, "-1"},
		{0, true, 0, "+0"},
		{1.0 / 3, true, 3, "+0.333"},
		{-0.125, false, 0, "-0.125"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, FormatCoef(tc.c, tc.dropOnes, tc.precision), "%v", tc.c)
	}
}

func TestLines(t *testing.T) {
	terms := buildTerms(t,
		map[string][]string{"y": {"a", "b", "a", "b"}},
		[]float64{2, 1, 1, -3},
		[]uint32{1, 2, 0, 0},
	)

	lines, err := Lines(terms, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"[a]: 2 x1 +1", "[b]: x2 -3"}, lines)

	lines, err = Lines(terms, Options{Name: "e", MaxRows: 1, Namer: names{1: "buy[a]"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"e[a]: 2 buy[a] +1"}, lines)

	scalar := buildTerms(t, nil, []float64{4, 2, 4}, []uint32{0, 1, 5})
	lines, err = Lines(scalar, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"4  +2 x1 +4 x5"}, lines)

	lines, err = Lines(scalar, Options{Name: "obj", MaxLineLen: 6})
	require.NoError(t, err)
	assert.Equal(t, []string{"obj: 4  +2 ..."}, lines)
}

func TestConstraintLines(t *testing.T) {
	terms := buildTerms(t,
		map[string][]string{"y": {"a", "a", "a", "b"}, "t": {"1", "1", "1", "2"}},
		[]float64{1, -3, 5, 2},
		[]uint32{1, 2, 0, 0},
	)

	lines, err := ConstraintLines(terms, "<=", Options{Name: "c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c[a,1]: x1 -3 x2 <= -5", "c[b,2]: 0 <= -2"}, lines)

	lines, err = ConstraintLines(buildTerms(t, nil, []float64{1}, []uint32{3}), "=", Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"x3 = 0"}, lines)
}

func TestHeaderAndShape(t *testing.T) {
	got := Header("Expression",
		Field{Key: "size", Value: "2"},
		Field{Key: "dimensions", Value: Shape([]string{"y", "t"}, map[string]int{"y": 2, "t": 3})},
		Field{Key: "terms", Value: "4"},
	)
	assert.Equal(t, "<Expression size=2 dimensions={y: 2, t: 3} terms=4>", got)
	assert.Equal(t, "{}", Shape(nil, nil))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "null", FormatValue(nil))
	assert.Equal(t, "06:00", FormatValue("06:00"))
	assert.Equal(t, "42", FormatValue(int64(42)))
	assert.Equal(t, "0.5", FormatValue(0.5))
	assert.Equal(t, "true", FormatValue(true))
}

func TestTable(t *testing.T) {
	terms := buildTerms(t,
		map[string][]string{"y": {"a", "b", "c"}},
		[]float64{1.5, 1, 2},
		[]uint32{1, 2, 0},
	)

	out := Table(terms, Options{})
	for _, want := range []string{"y", "coefficient", "variable", "+1.5", "x1", "x2"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "more terms")

	out = Table(terms, Options{MaxRows: 2})
	assert.Contains(t, out, "1 more terms")
	assert.False(t, strings.Contains(out, "│ c "), out)
}
