package ledger

import (
	"fmt"

	"github.com/holiman/uint256"
)

// MaxFeePercent is the largest platform fee, in whole percent.
const MaxFeePercent = 100

var hundred = uint256.NewInt(100)

// ValidateFeePercent checks that pct is a whole percent in [0, 100].
func ValidateFeePercent(pct int) error {
	if pct < 0 || pct > MaxFeePercent {
		return fmt.Errorf("%w: got %d", ErrInvalidFeePercent, pct)
	}
	return nil
}

// SplitFee divides an entry price into the platform fee and the pool share.
// The fee is floor(price * pct / 100) computed with a 512-bit intermediate,
// so Fee + PoolShare == price for every representable price.
func SplitFee(price *uint256.Int, pct int) (FeeSplit, error) {
	if err := ValidateFeePercent(pct); err != nil {
		return FeeSplit{}, err
	}
	if price == nil || price.IsZero() {
		return FeeSplit{}, ErrInvalidPrice
	}
	fee, overflow := new(uint256.Int).MulDivOverflow(price, uint256.NewInt(uint64(pct)), hundred)
	if overflow {
		// unreachable: pct <= 100 keeps the quotient at or below price
		return FeeSplit{}, fmt.Errorf("%w: fee of %s", ErrOverflow, price.Dec())
	}
	return FeeSplit{
		Fee:       fee,
		PoolShare: new(uint256.Int).Sub(price, fee),
	}, nil
}
