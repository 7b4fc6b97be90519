package ledger

import (
	"context"
	"fmt"

	"github.com/bitfsorg/quizledger/account"
)

// Subscribe enrolls acct in quiz id. The entry price is pulled from acct into
// escrow with the token's TransferFrom, so acct must have approved the escrow
// account beforehand. The fee split is credited to the quiz only after the
// pull succeeds; if the pull fails nothing changes.
func (l *Ledger) Subscribe(ctx context.Context, id QuizID, acct account.Address) (FeeSplit, error) {
	var split FeeSplit
	err := l.run(ctx, "subscribe", func(ctx context.Context, f *frame) error {
		if acct.IsZero() {
			return fmt.Errorf("%w: subscriber", ErrZeroAddress)
		}
		if acct == l.escrow {
			return fmt.Errorf("%w: subscriber", ErrEscrowAccount)
		}
		q, err := f.loadQuiz(id)
		if err != nil {
			return err
		}
		if q.WinnersSet {
			return ErrAlreadyFinalized
		}
		key := memberKey(id, acct)
		seen, err := f.subscribed(key)
		if err != nil {
			return err
		}
		if seen {
			return ErrDuplicateSubscription
		}
		split, err = SplitFee(q.Price, l.feePercent)
		if err != nil {
			return err
		}
		if err := credit(q.Clone(), split); err != nil {
			return err
		}
		tok, err := l.resolveToken(q.Token)
		if err != nil {
			return err
		}

		// The subscription mark is the only state a reentrant call can see
		// during the pull; it blocks a second entry without crediting funds.
		price := q.Price
		f.put(bucketSubscriptions, key, subscribedValue)
		if err := tok.TransferFrom(ctx, l.escrow, acct, l.escrow, price); err != nil {
			return fmt.Errorf("%w: pull %s from %s: %w", ErrTransferFailed, price.Dec(), acct, err)
		}

		// Reload: a reentrant call may have changed the quiz during the pull.
		// If the entry can no longer be credited the funds go back.
		q, err = f.loadQuiz(id)
		if err == nil && q.WinnersSet {
			err = ErrAlreadyFinalized
		}
		if err == nil {
			err = credit(q, split)
		}
		if err != nil {
			if rerr := tok.Transfer(ctx, l.escrow, acct, price); rerr != nil {
				f.log.Crit("refund failed", "quiz", id, "account", acct, "amount", price.Dec(), "err", rerr)
			}
			return err
		}
		if err := f.saveQuiz(q); err != nil {
			return err
		}
		f.log.Info("subscribed", "quiz", id, "account", acct, "fee", split.Fee.Dec(), "pool_share", split.PoolShare.Dec())
		return nil
	})
	if err != nil {
		return FeeSplit{}, err
	}
	return split, nil
}

// credit applies one entry's fee split to q.
func credit(q *Quiz, split FeeSplit) error {
	fee, err := addChecked(q.FeeBalance, split.Fee, "fee balance")
	if err != nil {
		return err
	}
	pool, err := addChecked(q.PoolBalance, split.PoolShare, "pool balance")
	if err != nil {
		return err
	}
	collected, err := addChecked(q.Collected, q.Price, "collected")
	if err != nil {
		return err
	}
	q.FeeBalance, q.PoolBalance, q.Collected = fee, pool, collected
	q.Subscribers++
	return nil
}

// IsSubscribed reports whether acct has paid into quiz id.
func (l *Ledger) IsSubscribed(ctx context.Context, id QuizID, acct account.Address) (bool, error) {
	var ok bool
	err := l.view(ctx, func(f *frame) error {
		if _, err := f.loadQuiz(id); err != nil {
			return err
		}
		var err error
		ok, err = f.subscribed(memberKey(id, acct))
		return err
	})
	return ok, err
}
