package ledger

import (
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/quizledger/account"
)

// subscribeAll funds and subscribes every player to quiz id.
func subscribeAll(t *testing.T, fx *fixture, id QuizID, price *uint256.Int, players ...account.Address) {
	t.Helper()
	for _, p := range players {
		fx.fund(t, p, price)
		_, err := fx.ledger.Subscribe(context.Background(), id, p)
		require.NoError(t, err)
	}
}

func TestSetWinners_SplitWithRemainder(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, 0)
	fx.createQuiz(t, 1, uint256.NewInt(50))
	subscribeAll(t, fx, 1, uint256.NewInt(50), alice, bob) // pool 100

	payout, err := fx.ledger.SetWinners(ctx, owner, 1, []account.Address{alice, bob, carol})
	require.NoError(t, err)
	assert.Equal(t, uint64(33), payout.Share.Uint64())
	assert.Equal(t, uint64(1), payout.Remainder.Uint64())

	q := fx.quiz(t, 1)
	assert.True(t, q.PoolBalance.IsZero(), "pool is fully consumed")
	assert.Equal(t, uint64(1), q.FeeBalance.Uint64(), "remainder goes to the fee balance")
	assert.Equal(t, uint64(33), q.Share.Uint64())
	assert.Equal(t, uint64(3), q.WinnerCount)
	assert.True(t, q.WinnersSet)

	for _, w := range []account.Address{alice, bob, carol} {
		win, err := fx.ledger.WinBalance(ctx, 1, w)
		require.NoError(t, err)
		assert.Equal(t, uint64(33), win.Uint64())
		red, err := fx.ledger.RedeemableBalance(ctx, 1, w)
		require.NoError(t, err)
		assert.Equal(t, uint64(33), red.Uint64())
	}

	// Non-winners read as zero.
	win, err := fx.ledger.WinBalance(ctx, 1, dave)
	require.NoError(t, err)
	assert.True(t, win.IsZero())

	require.NoError(t, fx.ledger.Audit(ctx, 1))
}

func TestSetWinners_FeeIncreaseIsExactRemainder(t *testing.T) {
	ctx := context.Background()
	for n := 1; n <= 7; n++ {
		fx := newFixture(t, 10)
		fx.createQuiz(t, 1, dec("1000000000000000001"))
		subscribeAll(t, fx, 1, dec("1000000000000000001"), alice, bob, carol)

		before := fx.quiz(t, 1)
		winners := make([]account.Address, n)
		for i := range winners {
			winners[i] = account.FromSeed(byte(0x40 + i))
		}
		payout, err := fx.ledger.SetWinners(ctx, owner, 1, winners)
		require.NoError(t, err)

		after := fx.quiz(t, 1)
		wantShare, wantRem, err := SplitPool(before.PoolBalance, n)
		require.NoError(t, err)
		assertAmount(t, wantShare, payout.Share)
		assertAmount(t, new(uint256.Int).Add(before.FeeBalance, wantRem), after.FeeBalance, "n=%d", n)

		rebuilt := new(uint256.Int).Mul(payout.Share, uint256.NewInt(uint64(n)))
		rebuilt.Add(rebuilt, payout.Remainder)
		assertAmount(t, before.PoolBalance, rebuilt)
		assert.True(t, payout.Remainder.Lt(uint256.NewInt(uint64(n))))
		require.NoError(t, fx.ledger.Audit(ctx, 1))
	}
}

func TestSetWinners_DuplicateAddressesEachGetAShare(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, 0)
	fx.createQuiz(t, 1, uint256.NewInt(30))
	subscribeAll(t, fx, 1, uint256.NewInt(30), alice, bob, carol) // pool 90

	payout, err := fx.ledger.SetWinners(ctx, owner, 1, []account.Address{alice, bob, alice})
	require.NoError(t, err)
	assert.Equal(t, uint64(30), payout.Share.Uint64())
	assert.Equal(t, 3, payout.Winners)

	win, err := fx.ledger.WinBalance(ctx, 1, alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(60), win.Uint64())

	winners, err := fx.ledger.Winners(ctx, 1)
	require.NoError(t, err)
	require.Len(t, winners, 2)
	require.NoError(t, fx.ledger.Audit(ctx, 1))

	amount, err := fx.ledger.Redeem(ctx, 1, alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(60), amount.Uint64())
}

func TestSetWinners_EmptyPool(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, 10)
	fx.createQuiz(t, 1, wei(1))

	payout, err := fx.ledger.SetWinners(ctx, owner, 1, []account.Address{alice})
	require.NoError(t, err)
	assert.True(t, payout.Share.IsZero())

	amount, err := fx.ledger.Redeem(ctx, 1, alice)
	require.NoError(t, err)
	assert.True(t, amount.IsZero())
}

func TestSetWinners_Errors(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, 10)
	fx.createQuiz(t, 1, wei(1))
	subscribeAll(t, fx, 1, wei(1), alice)

	_, err := fx.ledger.SetWinners(ctx, owner, 9, []account.Address{alice})
	assert.ErrorIs(t, err, ErrQuizNotFound)

	_, err = fx.ledger.SetWinners(ctx, alice, 1, []account.Address{alice})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = fx.ledger.SetWinners(ctx, owner, 1, nil)
	assert.ErrorIs(t, err, ErrEmptyWinnerList)

	_, err = fx.ledger.SetWinners(ctx, owner, 1, []account.Address{alice, account.Zero})
	assert.ErrorIs(t, err, ErrZeroAddress)

	// None of the rejected calls touched the quiz.
	q := fx.quiz(t, 1)
	assert.False(t, q.WinnersSet)
	assertAmount(t, dec("900000000000000000"), q.PoolBalance)
	winners, err := fx.ledger.Winners(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, winners)

	_, err = fx.ledger.SetWinners(ctx, owner, 1, []account.Address{alice})
	require.NoError(t, err)
	_, err = fx.ledger.SetWinners(ctx, owner, 1, []account.Address{bob})
	assert.ErrorIs(t, err, ErrAlreadyFinalized)

	win, err := fx.ledger.WinBalance(ctx, 1, bob)
	require.NoError(t, err)
	assert.True(t, win.IsZero(), "second setWinners must not credit anyone")
}
