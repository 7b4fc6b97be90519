package ledger

import (
	"context"
	"errors"

	"github.com/holiman/uint256"

	"github.com/bitfsorg/quizledger/account"
)

// CreateQuiz registers quiz id with an entry price denominated in the token
// named tokenRef. Only the owner may create quizzes.
func (l *Ledger) CreateQuiz(ctx context.Context, caller account.Address, id QuizID, price *uint256.Int, tokenRef string) (*Quiz, error) {
	var created *Quiz
	err := l.run(ctx, "create_quiz", func(_ context.Context, f *frame) error {
		if err := f.requireOwner(caller); err != nil {
			return err
		}
		if price == nil || price.IsZero() {
			return ErrInvalidPrice
		}
		_, err := f.loadQuiz(id)
		switch {
		case err == nil:
			return ErrDuplicateQuiz
		case !errors.Is(err, ErrQuizNotFound):
			return err
		}
		if _, err := l.resolveToken(tokenRef); err != nil {
			return err
		}

		q := newQuiz(id, price, tokenRef)
		if err := f.saveQuiz(q); err != nil {
			return err
		}
		f.log.Info("quiz created", "quiz", id, "price", price.Dec(), "token", tokenRef)
		created = q.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
