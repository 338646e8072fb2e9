package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/linframe"
	"github.com/paveg/linframe/internal/config"
)

const dietData = "testdata/diet"

func resetGlobalConfig(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		require.NoError(t, linframe.SetConfig(linframe.DefaultConfig()))
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c, err := LoadConfig("", nil)
		require.NoError(t, err)
		assert.Equal(t, config.NewConfig(), c)
	})

	t.Run("file, env and flags in order", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "linframe.yaml")
		require.NoError(t, os.WriteFile(path, []byte("max_rows: 5\nmax_line_len: 40\nfloat_precision: 4\n"), 0o600))
		t.Setenv("LINFRAME_MAX_LINE_LEN", "60")
		t.Setenv("LINFRAME_DEFAULT_UNMATCHED", "keep")

		flags := NewRootCmd().PersistentFlags()
		require.NoError(t, flags.Set("float-precision", "6"))
		require.NoError(t, flags.Set("metrics", "true"))

		c, err := LoadConfig(path, flags)
		require.NoError(t, err)
		assert.Equal(t, 5, c.MaxRows)
		assert.Equal(t, 60, c.MaxLineLen)
		assert.Equal(t, 6, c.FloatPrecision)
		assert.Equal(t, config.UnmatchedKeep, c.DefaultUnmatched)
		assert.True(t, c.MetricsCollection)
		assert.Equal(t, config.DefaultParallelThreshold, c.ParallelThreshold)
	})

	t.Run("invalid values", func(t *testing.T) {
		t.Setenv("LINFRAME_DEFAULT_UNMATCHED", "sometimes")
		_, err := LoadConfig("", nil)
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), nil)
		require.Error(t, err)
	})
}

func TestBuildDiet(t *testing.T) {
	m, err := BuildDiet(dietData)
	require.NoError(t, err)
	assert.Equal(t, "Model 'diet' (1 vars, 2 constrs, 1 obj)", m.String())

	tests := []struct {
		name string
		want []string
	}{
		{"min_nutrients", []string{
			"min_nutrients[protein]: 4 Buy[bread] +8 Buy[milk] +3 Buy[rice] >= 20",
			"min_nutrients[calories]: 65 Buy[bread] +120 Buy[milk] +200 Buy[rice] >= 500",
		}},
		{"max_nutrients", []string{
			"max_nutrients[protein]: 4 Buy[bread] +8 Buy[milk] +3 Buy[rice] <= 80",
			"max_nutrients[calories]: 65 Buy[bread] +120 Buy[milk] +200 Buy[rice] <= 2500",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := m.Constraint(tt.name)
			require.True(t, ok)
			lines, err := c.Lines(linframe.FormatOptions{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, lines)
		})
	}

	lines, err := m.Objective().Lines(linframe.FormatOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"minimize: 2 Buy[bread] +3.5 Buy[milk] +1.5 Buy[rice]"}, lines)

	_, err = BuildDiet(t.TempDir())
	require.Error(t, err)
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	resetGlobalConfig(t)
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestDietCommand(t *testing.T) {
	lpPath := filepath.Join(t.TempDir(), "diet.lp")
	out := run(t, "diet", "--data", dietData, "--lp", lpPath)

	assert.Contains(t, out, "Model 'diet' (1 vars, 2 constrs, 1 obj)")
	assert.Contains(t, out, "<Constraint name=min_nutrients sense='>=' size=2 dimensions={category: 2} terms=8>")
	assert.Contains(t, out, "<Objective sense=minimize size=1 dimensions={} terms=3>")
	assert.Contains(t, out, "wrote LP file")

	lp, err := os.ReadFile(lpPath)
	require.NoError(t, err)
	assert.Contains(t, string(lp), "minimize\nobj: 2 Buy[bread] +3.5 Buy[milk] +1.5 Buy[rice]\n")
	assert.Contains(t, string(lp), "\nbounds\nBuy[bread] >= 0\nBuy[milk] >= 0\nBuy[rice] >= 0\n")

	t.Run("metrics", func(t *testing.T) {
		out := run(t, "diet", "--data", dietData, "--metrics")
		assert.Contains(t, out, "Operation")
		assert.Contains(t, out, "Mul")
		assert.Contains(t, out, "Total")
	})
}

func TestVersionAndConfigCommands(t *testing.T) {
	out := run(t, "version")
	assert.Contains(t, out, "linframe")
	assert.Contains(t, out, "Version:")
	assert.Equal(t, "linframe/dev\n", run(t, "version", "--short"))
	assert.Equal(t, "linframe/dev\n", run(t, "--version"))

	out = run(t, "config", "--max-rows", "3")
	assert.Contains(t, out, "max_rows: 3")
	assert.Contains(t, out, "default_unmatched: error")

	out = run(t, "config", "--max-rows", "0", "--max-line-len", "0")
	assert.Contains(t, out, "max_rows: 0")
	assert.Contains(t, out, "max_line_len: 0")
}
