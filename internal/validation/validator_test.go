package validation_test

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lferrors "github.com/paveg/linframe/internal/errors"
	"github.com/paveg/linframe/internal/validation"
)

type mockColumns []string

func (m mockColumns) HasColumn(name string) bool { return slices.Contains(m, name) }
func (m mockColumns) Columns() []string          { return m }

func TestColumnValidator(t *testing.T) {
	cols := mockColumns{"day", "food"}

	require.NoError(t, validation.ValidateColumns(cols, "Filter", "day"))

	err := validation.ValidateColumns(cols, "Filter", "day", "hour")
	require.Error(t, err)
	var engineErr *lferrors.EngineError
	require.ErrorAs(t, err, &engineErr)
	assert.Equal(t, "Filter", engineErr.Op)
	assert.Equal(t, []string{"hour"}, engineErr.Dims)
	assert.ErrorIs(t, err, lferrors.ErrStructural)
}

func TestDimsValidator(t *testing.T) {
	tests := []struct {
		name    string
		dims    []string
		wantErr string
	}{
		{"valid", []string{"day", "food"}, ""},
		{"empty", nil, ""},
		{"duplicate", []string{"day", "day"}, "unique column names"},
		{"reserved coeff", []string{"__coeff"}, "reserved"},
		{"reserved index", []string{"day", "index"}, "reserved"},
		{"reserved prefix", []string{"day", "__coeff_right"}, "reserved"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.ValidateDims("Set", tt.dims...)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.ErrorIs(t, err, lferrors.ErrStructural)
		})
	}
}

func TestNameValidator(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"buy", true},
		{"min nutrients", true},
		{"", false},
		{"   ", false},
		{"buy[a]", false},
		{"c:1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.ValidateName(tt.name, "NewVariable")
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, lferrors.ErrStructural)
			}
		})
	}
}

func TestBoundsValidator(t *testing.T) {
	require.NoError(t, validation.ValidateBounds(0, 1, "NewVariable"))
	require.NoError(t, validation.ValidateBounds(math.Inf(-1), math.Inf(1), "NewVariable"))
	require.NoError(t, validation.ValidateBounds(3, 3, "NewVariable"))

	err := validation.ValidateBounds(2, 1, "NewVariable")
	require.ErrorIs(t, err, lferrors.ErrDomain)
	assert.Contains(t, err.Error(), "lower bound 2 exceeds upper bound 1")

	assert.ErrorIs(t, validation.ValidateBounds(math.NaN(), 1, "NewVariable"), lferrors.ErrDomain)
}
