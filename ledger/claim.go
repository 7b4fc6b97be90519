package ledger

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/bitfsorg/quizledger/account"
)

// Redeem pays caller's outstanding share of quiz id and returns the amount
// sent. A winner with nothing left to redeem gets 0 and no transfer.
func (l *Ledger) Redeem(ctx context.Context, id QuizID, caller account.Address) (*uint256.Int, error) {
	var paid *uint256.Int
	err := l.run(ctx, "redeem", func(ctx context.Context, f *frame) error {
		q, err := f.loadQuiz(id)
		if err != nil {
			return err
		}
		key := memberKey(id, caller)
		rec, err := f.loadWinner(key)
		if err != nil {
			return err
		}
		if rec.Redeemable.IsZero() {
			paid = new(uint256.Int)
			return nil
		}

		amount := rec.Redeemable
		rec.Redeemable = new(uint256.Int)
		f.saveWinner(key, rec)
		if err := l.payOut(ctx, f, q, caller, amount); err != nil {
			return err
		}
		f.log.Info("share redeemed", "quiz", id, "winner", caller, "amount", amount.Dec())
		paid = amount.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paid, nil
}

// Withdraw pays the accrued fee balance of quiz id to the owner and returns
// the amount sent. Only the owner may call it.
func (l *Ledger) Withdraw(ctx context.Context, id QuizID, caller account.Address) (*uint256.Int, error) {
	var paid *uint256.Int
	err := l.run(ctx, "withdraw", func(ctx context.Context, f *frame) error {
		if err := f.requireOwner(caller); err != nil {
			return err
		}
		q, err := f.loadQuiz(id)
		if err != nil {
			return err
		}
		if q.FeeBalance.IsZero() {
			paid = new(uint256.Int)
			return nil
		}

		amount := q.FeeBalance
		q.FeeBalance = new(uint256.Int)
		if err := l.payOut(ctx, f, q, caller, amount); err != nil {
			return err
		}
		f.log.Info("fees withdrawn", "quiz", id, "owner", caller, "amount", amount.Dec())
		paid = amount.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paid, nil
}

// payOut records amount as paid and then sends it from escrow to to. The
// balance it was drawn from must already be zeroed in f. The transfer is the
// last step, so a reentrant call sees the drained balance.
func (l *Ledger) payOut(ctx context.Context, f *frame, q *Quiz, to account.Address, amount *uint256.Int) error {
	paidOut, err := addChecked(q.PaidOut, amount, "paid out")
	if err != nil {
		return err
	}
	q.PaidOut = paidOut
	if err := f.saveQuiz(q); err != nil {
		return err
	}
	tok, err := l.resolveToken(q.Token)
	if err != nil {
		return err
	}
	if err := tok.Transfer(ctx, l.escrow, to, amount); err != nil {
		return fmt.Errorf("%w: send %s to %s: %w", ErrTransferFailed, amount.Dec(), to, err)
	}
	return nil
}
