package ledger

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/bitfsorg/quizledger/account"
)

// Quiz returns a copy of quiz id.
func (l *Ledger) Quiz(ctx context.Context, id QuizID) (*Quiz, error) {
	var q *Quiz
	err := l.view(ctx, func(f *frame) error {
		var err error
		q, err = f.loadQuiz(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// QuizPrice returns the entry price of quiz id.
func (l *Ledger) QuizPrice(ctx context.Context, id QuizID) (*uint256.Int, error) {
	q, err := l.Quiz(ctx, id)
	if err != nil {
		return nil, err
	}
	return q.Price, nil
}

// QuizToken returns the token reference of quiz id.
func (l *Ledger) QuizToken(ctx context.Context, id QuizID) (string, error) {
	q, err := l.Quiz(ctx, id)
	if err != nil {
		return "", err
	}
	return q.Token, nil
}

// PoolBalance returns the undistributed pool of quiz id.
func (l *Ledger) PoolBalance(ctx context.Context, id QuizID) (*uint256.Int, error) {
	q, err := l.Quiz(ctx, id)
	if err != nil {
		return nil, err
	}
	return q.PoolBalance, nil
}

// FeeBalance returns the owner fee balance of quiz id.
func (l *Ledger) FeeBalance(ctx context.Context, id QuizID) (*uint256.Int, error) {
	q, err := l.Quiz(ctx, id)
	if err != nil {
		return nil, err
	}
	return q.FeeBalance, nil
}

// WinnersSet reports whether quiz id has been finalized.
func (l *Ledger) WinnersSet(ctx context.Context, id QuizID) (bool, error) {
	q, err := l.Quiz(ctx, id)
	if err != nil {
		return false, err
	}
	return q.WinnersSet, nil
}

// OwnerBalance returns the fee balance summed over every quiz. Quizzes
// denominated in different tokens are added together; callers that mix
// tokens should use FeeBalance per quiz.
func (l *Ledger) OwnerBalance(ctx context.Context) (*uint256.Int, error) {
	total := new(uint256.Int)
	err := l.eachQuiz(ctx, func(q *Quiz) error {
		var err error
		total, err = addChecked(total, q.FeeBalance, "owner balance")
		return err
	})
	if err != nil {
		return nil, err
	}
	return total, nil
}

// WinBalance returns the share acct was awarded in quiz id, zero for an
// account that did not win.
func (l *Ledger) WinBalance(ctx context.Context, id QuizID, acct account.Address) (*uint256.Int, error) {
	rec, err := l.winnerRecord(ctx, id, acct)
	if err != nil {
		return nil, err
	}
	return rec.WinShare, nil
}

// RedeemableBalance returns what acct can still redeem from quiz id, zero
// for an account that did not win.
func (l *Ledger) RedeemableBalance(ctx context.Context, id QuizID, acct account.Address) (*uint256.Int, error) {
	rec, err := l.winnerRecord(ctx, id, acct)
	if err != nil {
		return nil, err
	}
	return rec.Redeemable, nil
}

func (l *Ledger) winnerRecord(ctx context.Context, id QuizID, acct account.Address) (*WinnerRecord, error) {
	var rec *WinnerRecord
	err := l.view(ctx, func(f *frame) error {
		if _, err := f.loadQuiz(id); err != nil {
			return err
		}
		var err error
		rec, err = f.loadWinner(memberKey(id, acct))
		if errors.Is(err, ErrNotAWinner) {
			rec = &WinnerRecord{WinShare: new(uint256.Int), Redeemable: new(uint256.Int)}
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Quizzes returns every quiz in ascending id order.
func (l *Ledger) Quizzes(ctx context.Context) ([]*Quiz, error) {
	var out []*Quiz
	err := l.eachQuiz(ctx, func(q *Quiz) error {
		out = append(out, q)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (l *Ledger) eachQuiz(ctx context.Context, fn func(q *Quiz) error) error {
	return l.view(ctx, func(f *frame) error {
		return f.scan(bucketQuizzes, nil, func(k, v []byte) error {
			if len(k) != 8 {
				return fmt.Errorf("%w: quiz key is %d bytes", ErrCorruptRecord, len(k))
			}
			q, err := decodeQuiz(QuizID(binary.BigEndian.Uint64(k)), v)
			if err != nil {
				return err
			}
			return fn(q)
		})
	})
}

// Winners returns the winner records of quiz id ordered by account.
func (l *Ledger) Winners(ctx context.Context, id QuizID) ([]Winner, error) {
	var out []Winner
	err := l.view(ctx, func(f *frame) error {
		if _, err := f.loadQuiz(id); err != nil {
			return err
		}
		var err error
		out, err = f.winners(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Subscribers returns the accounts subscribed to quiz id ordered by account.
func (l *Ledger) Subscribers(ctx context.Context, id QuizID) ([]account.Address, error) {
	var out []account.Address
	err := l.view(ctx, func(f *frame) error {
		if _, err := f.loadQuiz(id); err != nil {
			return err
		}
		return f.scan(bucketSubscriptions, quizKey(id), func(k, _ []byte) error {
			a, err := memberAddress(k)
			if err != nil {
				return err
			}
			out = append(out, a)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (f *frame) winners(id QuizID) ([]Winner, error) {
	var out []Winner
	err := f.scan(bucketWinners, quizKey(id), func(k, v []byte) error {
		a, err := memberAddress(k)
		if err != nil {
			return err
		}
		rec, err := decodeWinner(v)
		if err != nil {
			return err
		}
		out = append(out, Winner{Account: a, WinnerRecord: *rec})
		return nil
	})
	return out, err
}
