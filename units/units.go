// Package units converts between whole-token decimal amounts ("4.5") and the
// smallest-unit integers the ledger stores.
package units

import (
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// DefaultDecimals matches the 18-decimal convention of common fungible tokens.
const DefaultDecimals = 18

// MaxDecimals bounds the decimals setting; 10^77 is the largest power of ten
// representable in 256 bits.
const MaxDecimals = 77

var (
	// ErrInvalidAmount indicates the amount text is not a decimal number.
	ErrInvalidAmount = errors.New("units: invalid amount")

	// ErrNegativeAmount indicates a negative amount was supplied.
	ErrNegativeAmount = errors.New("units: amount must not be negative")

	// ErrTooPrecise indicates the amount has more fractional digits than decimals allows.
	ErrTooPrecise = errors.New("units: amount has too many fractional digits")

	// ErrOverflow indicates the amount does not fit in 256 bits.
	ErrOverflow = errors.New("units: amount overflows 256 bits")

	// ErrInvalidDecimals indicates decimals is outside [0, MaxDecimals].
	ErrInvalidDecimals = errors.New("units: invalid decimals")
)

// Parse converts a whole-token amount into smallest units.
// Parse("5", 18) == 5×10^18.
func Parse(s string, decimals int) (*uint256.Int, error) {
	if decimals < 0 || decimals > MaxDecimals {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDecimals, decimals)
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: %q", ErrNegativeAmount, s)
	}
	shifted := d.Shift(int32(decimals))
	if !shifted.IsInteger() {
		return nil, fmt.Errorf("%w: %q with %d decimals", ErrTooPrecise, s, decimals)
	}
	v, overflow := uint256.FromBig(shifted.BigInt())
	if overflow {
		return nil, fmt.Errorf("%w: %q", ErrOverflow, s)
	}
	return v, nil
}

// Format renders a smallest-unit amount as whole tokens without trailing zeros.
func Format(v *uint256.Int, decimals int) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v.ToBig(), -int32(decimals)).String()
}

// ParseRaw parses a base-10 smallest-unit integer.
func ParseRaw(s string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidAmount, s, err)
	}
	return v, nil
}
