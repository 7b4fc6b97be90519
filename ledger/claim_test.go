package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/quizledger/account"
)

// finalizedQuiz returns a fixture with quiz 1 priced 100 units, alice and bob
// subscribed at a 10% fee and alice as sole winner (share 180, fee 20).
func finalizedQuiz(t *testing.T) *fixture {
	t.Helper()
	fx := newFixture(t, 10)
	fx.createQuiz(t, 1, uint256.NewInt(100))
	subscribeAll(t, fx, 1, uint256.NewInt(100), alice, bob)
	_, err := fx.ledger.SetWinners(context.Background(), owner, 1, []account.Address{alice})
	require.NoError(t, err)
	return fx
}

func TestRedeem(t *testing.T) {
	ctx := context.Background()
	fx := finalizedQuiz(t)

	amount, err := fx.ledger.Redeem(ctx, 1, alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(180), amount.Uint64())
	assert.Equal(t, uint64(180), fx.balance(t, alice).Uint64())

	red, err := fx.ledger.RedeemableBalance(ctx, 1, alice)
	require.NoError(t, err)
	assert.True(t, red.IsZero())
	win, err := fx.ledger.WinBalance(ctx, 1, alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(180), win.Uint64(), "win share is kept for audit")

	// Second claim is a harmless no-op.
	amount, err = fx.ledger.Redeem(ctx, 1, alice)
	require.NoError(t, err)
	assert.True(t, amount.IsZero())
	assert.Equal(t, uint64(180), fx.balance(t, alice).Uint64())

	q := fx.quiz(t, 1)
	assert.Equal(t, uint64(180), q.PaidOut.Uint64())
	require.NoError(t, fx.ledger.Audit(ctx, 1))
}

func TestRedeem_Errors(t *testing.T) {
	ctx := context.Background()
	fx := finalizedQuiz(t)

	_, err := fx.ledger.Redeem(ctx, 9, alice)
	assert.ErrorIs(t, err, ErrQuizNotFound)

	_, err = fx.ledger.Redeem(ctx, 1, bob)
	assert.ErrorIs(t, err, ErrNotAWinner)

	fx.createQuiz(t, 2, uint256.NewInt(1))
	_, err = fx.ledger.Redeem(ctx, 2, alice)
	assert.ErrorIs(t, err, ErrNotAWinner, "no winners set yet")
}

func TestRedeem_TransferFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	fx := finalizedQuiz(t)
	fx.tok.TransferFn = func(context.Context, account.Address, account.Address, *uint256.Int) error {
		return errors.New("recipient frozen")
	}

	_, err := fx.ledger.Redeem(ctx, 1, alice)
	assert.ErrorIs(t, err, ErrTransferFailed)

	red, err := fx.ledger.RedeemableBalance(ctx, 1, alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(180), red.Uint64(), "zeroing is rolled back with the failed transfer")
	assert.True(t, fx.quiz(t, 1).PaidOut.IsZero())
	require.NoError(t, fx.ledger.Audit(ctx, 1))

	fx.tok.TransferFn = nil
	amount, err := fx.ledger.Redeem(ctx, 1, alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(180), amount.Uint64())
}

func TestWithdraw(t *testing.T) {
	ctx := context.Background()
	fx := finalizedQuiz(t)

	_, err := fx.ledger.Withdraw(ctx, 1, alice)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = fx.ledger.Withdraw(ctx, 9, owner)
	assert.ErrorIs(t, err, ErrQuizNotFound)

	amount, err := fx.ledger.Withdraw(ctx, 1, owner)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), amount.Uint64())
	assert.Equal(t, uint64(20), fx.balance(t, owner).Uint64())

	fee, err := fx.ledger.FeeBalance(ctx, 1)
	require.NoError(t, err)
	assert.True(t, fee.IsZero())

	amount, err = fx.ledger.Withdraw(ctx, 1, owner)
	require.NoError(t, err)
	assert.True(t, amount.IsZero())
	assert.Equal(t, uint64(20), fx.balance(t, owner).Uint64())
	require.NoError(t, fx.ledger.Audit(ctx, 1))
}

func TestWithdraw_BeforeWinners(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, 25)
	fx.createQuiz(t, 1, uint256.NewInt(100))
	subscribeAll(t, fx, 1, uint256.NewInt(100), alice)

	amount, err := fx.ledger.Withdraw(ctx, 1, owner)
	require.NoError(t, err)
	assert.Equal(t, uint64(25), amount.Uint64())
	pool, err := fx.ledger.PoolBalance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(75), pool.Uint64(), "pool is untouched by withdraw")
	require.NoError(t, fx.ledger.Audit(ctx, 1))
}

func TestWithdraw_TransferFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	fx := finalizedQuiz(t)
	fx.tok.TransferFn = func(context.Context, account.Address, account.Address, *uint256.Int) error {
		return errors.New("declined")
	}

	_, err := fx.ledger.Withdraw(ctx, 1, owner)
	assert.ErrorIs(t, err, ErrTransferFailed)
	fee, err := fx.ledger.FeeBalance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), fee.Uint64())
}

func TestOwnerBalance(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, 10)
	fx.createQuiz(t, 1, uint256.NewInt(100))
	fx.createQuiz(t, 2, uint256.NewInt(50))
	subscribeAll(t, fx, 1, uint256.NewInt(100), alice, bob)
	subscribeAll(t, fx, 2, uint256.NewInt(50), carol)

	total, err := fx.ledger.OwnerBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(25), total.Uint64())

	_, err = fx.ledger.Withdraw(ctx, 1, owner)
	require.NoError(t, err)
	total, err = fx.ledger.OwnerBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), total.Uint64())
}
