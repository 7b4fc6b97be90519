package ledger

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/holiman/uint256"
)

// Audit checks value conservation for quiz id: the fee balance, the pool
// and every winner's redeemable balance must add up to what was collected
// from subscribers minus what has been paid out.
func (l *Ledger) Audit(ctx context.Context, id QuizID) error {
	return l.view(ctx, func(f *frame) error {
		q, err := f.loadQuiz(id)
		if err != nil {
			return err
		}
		winners, err := f.winners(id)
		if err != nil {
			return err
		}
		return checkConservation(q, winners)
	})
}

// AuditAll runs Audit over every quiz and returns the first violation.
func (l *Ledger) AuditAll(ctx context.Context) error {
	return l.view(ctx, func(f *frame) error {
		return f.scan(bucketQuizzes, nil, func(k, v []byte) error {
			if len(k) != 8 {
				return fmt.Errorf("%w: quiz key is %d bytes", ErrCorruptRecord, len(k))
			}
			id := QuizID(binary.BigEndian.Uint64(k))
			q, err := decodeQuiz(id, v)
			if err != nil {
				return err
			}
			winners, err := f.winners(id)
			if err != nil {
				return err
			}
			return checkConservation(q, winners)
		})
	})
}

func checkConservation(q *Quiz, winners []Winner) error {
	held, underflow := new(uint256.Int).SubOverflow(q.Collected, q.PaidOut)
	if underflow {
		return fmt.Errorf("%w: quiz %d paid out %s of %s collected", ErrConservationViolation, q.ID, q.PaidOut.Dec(), q.Collected.Dec())
	}

	owed, err := addChecked(q.FeeBalance, q.PoolBalance, "owed")
	if err != nil {
		return err
	}
	for _, w := range winners {
		if w.Redeemable.Gt(w.WinShare) {
			return fmt.Errorf("%w: quiz %d winner %s redeemable %s exceeds share %s",
				ErrConservationViolation, q.ID, w.Account, w.Redeemable.Dec(), w.WinShare.Dec())
		}
		if owed, err = addChecked(owed, w.Redeemable, "owed"); err != nil {
			return err
		}
	}
	if !owed.Eq(held) {
		return fmt.Errorf("%w: quiz %d owes %s but holds %s", ErrConservationViolation, q.ID, owed.Dec(), held.Dec())
	}
	return nil
}

// Liabilities returns what the ledger owes across every quiz denominated in
// tokenRef: fee balances, undistributed pools and unredeemed winnings.
func (l *Ledger) Liabilities(ctx context.Context, tokenRef string) (*uint256.Int, error) {
	total := new(uint256.Int)
	err := l.view(ctx, func(f *frame) error {
		return f.scan(bucketQuizzes, nil, func(k, v []byte) error {
			if len(k) != 8 {
				return fmt.Errorf("%w: quiz key is %d bytes", ErrCorruptRecord, len(k))
			}
			id := QuizID(binary.BigEndian.Uint64(k))
			q, err := decodeQuiz(id, v)
			if err != nil {
				return err
			}
			if q.Token != tokenRef {
				return nil
			}
			winners, err := f.winners(id)
			if err != nil {
				return err
			}
			if total, err = addChecked(total, q.FeeBalance, "liabilities"); err != nil {
				return err
			}
			if total, err = addChecked(total, q.PoolBalance, "liabilities"); err != nil {
				return err
			}
			for _, w := range winners {
				if total, err = addChecked(total, w.Redeemable, "liabilities"); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return total, nil
}

// AuditEscrow checks that the escrow account's tokenRef balance covers the
// ledger's liabilities in that token. It returns both figures.
func (l *Ledger) AuditEscrow(ctx context.Context, tokenRef string) (held, owed *uint256.Int, err error) {
	owed, err = l.Liabilities(ctx, tokenRef)
	if err != nil {
		return nil, nil, err
	}
	tok, err := l.resolveToken(tokenRef)
	if err != nil {
		return nil, nil, err
	}
	held, err = tok.BalanceOf(ctx, l.escrow)
	if err != nil {
		return nil, nil, fmt.Errorf("ledger: escrow balance: %w", err)
	}
	if held.Lt(owed) {
		return held, owed, fmt.Errorf("%w: escrow holds %s %s but owes %s", ErrConservationViolation, held.Dec(), tokenRef, owed.Dec())
	}
	return held, owed, nil
}
