package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/bitfsorg/quizledger/account"
)

// SplitPool divides pool evenly across n winners. The indivisible remainder
// is returned separately and belongs to the platform.
func SplitPool(pool *uint256.Int, n int) (share, remainder *uint256.Int, err error) {
	if n <= 0 {
		return nil, nil, ErrEmptyWinnerList
	}
	if pool == nil {
		pool = new(uint256.Int)
	}
	count := uint256.NewInt(uint64(n))
	share = new(uint256.Int).Div(pool, count)
	remainder = new(uint256.Int).Mod(pool, count)
	return share, remainder, nil
}

// addChecked returns a + b or ErrOverflow.
func addChecked(a, b *uint256.Int, what string) (*uint256.Int, error) {
	sum, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, fmt.Errorf("%w: %s", ErrOverflow, what)
	}
	return sum, nil
}

// SetWinners finalizes quiz id: the pool is split evenly across winners, each
// listed account is credited one share, and the remainder moves to the fee
// balance. An account listed more than once is credited once per listing.
// Only the owner may call it, and only once per quiz.
func (l *Ledger) SetWinners(ctx context.Context, caller account.Address, id QuizID, winners []account.Address) (*Payout, error) {
	var payout *Payout
	err := l.run(ctx, "set_winners", func(_ context.Context, f *frame) error {
		if err := f.requireOwner(caller); err != nil {
			return err
		}
		q, err := f.loadQuiz(id)
		if err != nil {
			return err
		}
		if q.WinnersSet {
			return ErrAlreadyFinalized
		}
		if len(winners) == 0 {
			return ErrEmptyWinnerList
		}
		for i, w := range winners {
			if w.IsZero() {
				return fmt.Errorf("%w: winner %d", ErrZeroAddress, i)
			}
			if w == l.escrow {
				return fmt.Errorf("%w: winner %d", ErrEscrowAccount, i)
			}
		}

		share, remainder, err := SplitPool(q.PoolBalance, len(winners))
		if err != nil {
			return err
		}
		for _, w := range winners {
			key := memberKey(id, w)
			rec, err := f.loadWinner(key)
			switch {
			case errors.Is(err, ErrNotAWinner):
				rec = &WinnerRecord{WinShare: new(uint256.Int), Redeemable: new(uint256.Int)}
			case err != nil:
				return err
			}
			// Cannot overflow: the shares sum to at most the pool.
			rec.WinShare = new(uint256.Int).Add(rec.WinShare, share)
			rec.Redeemable = new(uint256.Int).Add(rec.Redeemable, share)
			f.saveWinner(key, rec)
		}

		fee, err := addChecked(q.FeeBalance, remainder, "fee balance")
		if err != nil {
			return err
		}
		q.FeeBalance = fee
		q.PoolBalance = new(uint256.Int)
		q.Share = share
		q.WinnerCount = uint64(len(winners))
		q.WinnersSet = true
		if err := f.saveQuiz(q); err != nil {
			return err
		}

		f.log.Info("winners set", "quiz", id, "winners", len(winners), "share", share.Dec(), "remainder", remainder.Dec())
		payout = &Payout{Share: share.Clone(), Remainder: remainder.Clone(), Winners: len(winners)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payout, nil
}
