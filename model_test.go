package linframe_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/linframe"
)

// smallModel builds a model exercising every LP section.
func smallModel(t *testing.T) *linframe.Model {
	t.Helper()
	m := linframe.NewModel("small")

	x := must(m.NewVariable("x", linframe.Bounds(0, 10)))(t)
	y := must(m.NewVariable("y",
		linframe.Over(linframe.Index("t", []string{"a", "b"})),
		linframe.Type(linframe.Integer),
		linframe.LowerBound(0),
	))(t)
	z := must(m.NewVariable("on off", linframe.Type(linframe.Binary)))(t)

	total := must(y.Sum())(t)
	capacity := must(must(x.Add(total))(t).LessEqual(linframe.Scalar(8)))(t)
	must(m.AddConstraint("cap", capacity))(t)

	link := must(y.GreaterEqual(z.AddDim("t")))(t)
	must(m.AddConstraint("link", link))(t)

	require.NoError(t, m.Maximize(must(must(x.Mul(linframe.Scalar(2)))(t).Add(total))(t)))
	return m
}

func TestModel(t *testing.T) {
	m := smallModel(t)
	assert.Equal(t, "Model 'small' (3 vars, 2 constrs, 1 obj)", m.String())
	assert.Equal(t, 4, m.Allocator().Issued())

	y, ok := m.Variable("y")
	require.True(t, ok)
	assert.Equal(t, "y", y.Name())
	assert.Equal(t, "y[b]", m.VarName(3))
	assert.Equal(t, "on off", m.VarName(4))
	assert.Equal(t, "x99", m.VarName(99))

	link, ok := m.Constraint("link")
	require.True(t, ok)
	assert.Equal(t, []string{"link[a]: y[a] - on off >= 0", "link[b]: y[b] - on off >= 0"},
		must(link.Lines(linframe.FormatOptions{}))(t))
	assert.Equal(t, "<Constraint name=link sense='>=' size=2 dimensions={t: 2} terms=4>\nlink[a]: y[a] - on off >= 0\nlink[b]: y[b] - on off >= 0",
		link.String())

	obj := m.Objective()
	require.NotNil(t, obj)
	assert.Equal(t, linframe.Maximize, obj.Sense())
	assert.Equal(t, []string{"maximize: 2 x + y[a] + y[b]"}, must(obj.Lines(linframe.FormatOptions{}))(t))

	_, ok = m.Variable("missing")
	assert.False(t, ok)
	assert.Len(t, m.Variables(), 3)
	assert.Len(t, m.Constraints(), 2)
}

func TestModelErrors(t *testing.T) {
	m := linframe.NewModel("errors")
	x := must(m.NewVariable("x", linframe.Over(linframe.Index("i", []int{1, 2}))))(t)

	_, err := m.NewVariable("x")
	require.ErrorIs(t, err, linframe.ErrStructural)
	assert.Contains(t, err.Error(), "cannot create x since it was already created")

	_, err = m.AddVariable("again", x)
	require.ErrorIs(t, err, linframe.ErrStructural)

	for _, name := range []string{"", "  ", "bad[name]", "a:b"} {
		_, err = m.NewVariable(name)
		require.ErrorIs(t, err, linframe.ErrStructural, "name %q", name)
	}
	assert.Equal(t, 3, m.Allocator().Issued())

	c := must(x.LessEqual(linframe.Scalar(1)))(t)
	must(m.AddConstraint("c", c))(t)
	_, err = m.AddConstraint("x", c)
	require.ErrorIs(t, err, linframe.ErrStructural)

	err = m.Minimize(x)
	require.ErrorIs(t, err, linframe.ErrDomain)
	assert.Nil(t, m.Objective())

	require.NoError(t, m.Minimize(must(x.Sum())(t)))
	err = m.Maximize(must(x.Sum())(t))
	require.ErrorIs(t, err, linframe.ErrStructural)

	_, err = linframe.NewObjective(linframe.Scalar(1), "sideways")
	require.ErrorIs(t, err, linframe.ErrDomain)
}

func TestModelNamesOutsideModel(t *testing.T) {
	m := linframe.NewModel("names")
	x := must(m.NewVariable("x", linframe.Over(linframe.Index("i", []int{1, 2}))))(t)
	free := must(linframe.NewVariable(m.Allocator(), linframe.Over(linframe.Index("i", []int{1, 2}))))(t)

	sum := must(free.Add(x))(t)
	assert.Equal(t, []string{"[1]: x3 + x[1]", "[2]: x4 + x[2]"}, must(sum.Lines(linframe.FormatOptions{}))(t))

	lines := must(sum.Lines(linframe.FormatOptions{Namer: linframe.NewModel("other")}))(t)
	assert.Equal(t, "[1]: x3 + x1", lines[0])
}

func TestWriteLP(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, smallModel(t).WriteLP(&buf))

	want := "\\ small\n" +
		"maximize\n" +
		"obj: 2 x + y[a] + y[b]\n" +
		"\ns.t.\n" +
		"cap: x + y[a] + y[b] <= 8\n" +
		"link[a]: y[a] - on_off >= 0\n" +
		"link[b]: y[b] - on_off >= 0\n" +
		"\nbounds\n" +
		"0 <= x <= 10\n" +
		"y[a] >= 0\n" +
		"y[b] >= 0\n" +
		"\ngeneral\n" +
		"y[a]\n" +
		"y[b]\n" +
		"\nbinary\n" +
		"on_off\n" +
		"\nend\n"
	assert.Equal(t, want, buf.String())

	t.Run("empty model", func(t *testing.T) {
		var buf bytes.Buffer
		m := linframe.NewModel("empty")
		must(m.NewVariable("free"))(t)
		require.NoError(t, m.WriteLP(&buf))
		assert.Equal(t, "\\ empty\nminimize\nobj: 0\n\ns.t.\n\nbounds\nfree free\n\nend\n", buf.String())
	})

	t.Run("spaces in names and coordinates", func(t *testing.T) {
		var buf bytes.Buffer
		m := linframe.NewModel("cities")
		x := must(m.NewVariable("x", linframe.Over(linframe.Index("city", []string{"New York", "Boston"}))))(t)
		must(m.AddConstraint("city cap", must(x.LessEqual(linframe.Scalar(1)))(t)))(t)
		require.NoError(t, m.WriteLP(&buf))

		want := "\\ cities\n" +
			"minimize\n" +
			"obj: 0\n" +
			"\ns.t.\n" +
			"city_cap[New_York]: x[New_York] <= 1\n" +
			"city_cap[Boston]: x[Boston] <= 1\n" +
			"\nbounds\n" +
			"x[New_York] free\n" +
			"x[Boston] free\n" +
			"\nend\n"
		assert.Equal(t, want, buf.String())
	})
}
