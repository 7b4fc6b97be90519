package units

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in       string
		decimals int
		want     string
	}{
		{"5", 18, "5000000000000000000"},
		{"4.5", 18, "4500000000000000000"},
		{"0.5", 18, "500000000000000000"},
		{"0", 18, "0"},
		{"100", 0, "100"},
		{"1.25", 2, "125"},
		{" 7 ", 3, "7000"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in, tt.decimals)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Dec())
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		decimals int
		wantErr  error
	}{
		{"garbage", "abc", 18, ErrInvalidAmount},
		{"negative", "-1", 18, ErrNegativeAmount},
		{"too precise", "1.001", 2, ErrTooPrecise},
		{"overflow", "1e80", 0, ErrOverflow},
		{"bad decimals", "1", -1, ErrInvalidDecimals},
		{"huge decimals", "1", 78, ErrInvalidDecimals},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.in, tt.decimals)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "5", Format(uint256.MustFromDecimal("5000000000000000000"), 18))
	assert.Equal(t, "4.5", Format(uint256.MustFromDecimal("4500000000000000000"), 18))
	assert.Equal(t, "22.5", Format(uint256.MustFromDecimal("22500000000000000000"), 18))
	assert.Equal(t, "0.000000000000000001", Format(uint256.NewInt(1), 18))
	assert.Equal(t, "0", Format(nil, 18))
	assert.Equal(t, "42", Format(uint256.NewInt(42), 0))
}

func TestParseRaw(t *testing.T) {
	v, err := ParseRaw("22500000000000000000")
	require.NoError(t, err)
	assert.Equal(t, "22500000000000000000", v.Dec())

	_, err = ParseRaw("1.5")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}
