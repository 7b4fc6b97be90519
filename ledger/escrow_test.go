package ledger

import (
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/quizledger/account"
	"github.com/bitfsorg/quizledger/storage"
	"github.com/bitfsorg/quizledger/token"
)

// assertEscrowCovered checks the escrow's token holdings against what the
// ledger owes and expects them to be equal.
func assertEscrowCovered(t *testing.T, fx *fixture) {
	t.Helper()
	held, owed, err := fx.ledger.AuditEscrow(context.Background(), tokenName)
	require.NoError(t, err)
	assertAmount(t, owed, held, "escrow holdings must equal liabilities")
	assertAmount(t, fx.balance(t, escrow), held)
}

// ---------------------------------------------------------------------------
// Escrow cannot take part
// ---------------------------------------------------------------------------

func TestNew_OwnerIsEscrow(t *testing.T) {
	reg, err := token.NewRegistry()
	require.NoError(t, err)

	_, err = New(storage.NewMemStore(), Options{Owner: escrow, Escrow: escrow, FeePercent: 10, Tokens: reg})
	assert.ErrorIs(t, err, ErrEscrowAccount)

	// A stored owner that is now configured as escrow is rejected on reopen.
	s := storage.NewMemStore()
	_, err = New(s, Options{Owner: alice, Escrow: escrow, FeePercent: 10, Tokens: reg})
	require.NoError(t, err)
	_, err = New(s, Options{Owner: owner, Escrow: alice, FeePercent: 10, Tokens: reg})
	assert.ErrorIs(t, err, ErrEscrowAccount)
}

func TestTransferOwnership_ToEscrow(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, 10)

	assert.ErrorIs(t, fx.ledger.TransferOwnership(ctx, owner, escrow), ErrEscrowAccount)
	got, err := fx.ledger.Owner(ctx)
	require.NoError(t, err)
	assert.Equal(t, owner, got)
}

func TestSubscribe_EscrowRejected(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, 10)
	fx.createQuiz(t, 1, uint256.NewInt(100))
	subscribeAll(t, fx, 1, uint256.NewInt(100), bob)
	assertEscrowCovered(t, fx)

	// Escrow approving itself must not turn a self-transfer into pool value.
	require.NoError(t, fx.base.Approve(ctx, escrow, escrow, uint256.NewInt(100)))
	_, err := fx.ledger.Subscribe(ctx, 1, escrow)
	assert.ErrorIs(t, err, ErrEscrowAccount)

	q := fx.quiz(t, 1)
	assert.Equal(t, uint64(100), q.Collected.Uint64())
	assert.Equal(t, uint64(90), q.PoolBalance.Uint64())
	assert.Equal(t, uint64(1), q.Subscribers)
	ok, err := fx.ledger.IsSubscribed(ctx, 1, escrow)
	require.NoError(t, err)
	assert.False(t, ok)
	assertEscrowCovered(t, fx)

	_, err = fx.ledger.SetWinners(ctx, owner, 1, []account.Address{bob})
	require.NoError(t, err)
	amount, err := fx.ledger.Redeem(ctx, 1, bob)
	require.NoError(t, err)
	assert.Equal(t, uint64(90), amount.Uint64())
	assertEscrowCovered(t, fx)
}

func TestSetWinners_EscrowRejected(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, 10)
	fx.createQuiz(t, 1, uint256.NewInt(100))
	subscribeAll(t, fx, 1, uint256.NewInt(100), alice, bob)

	_, err := fx.ledger.SetWinners(ctx, owner, 1, []account.Address{alice, escrow})
	assert.ErrorIs(t, err, ErrEscrowAccount)

	set, err := fx.ledger.WinnersSet(ctx, 1)
	require.NoError(t, err)
	assert.False(t, set, "rejected call leaves the quiz open")
	assert.Equal(t, uint64(180), fx.quiz(t, 1).PoolBalance.Uint64())
}

// ---------------------------------------------------------------------------
// Escrow holdings
// ---------------------------------------------------------------------------

func TestAuditEscrow_TracksLifecycle(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, 10)
	fx.createQuiz(t, 1, uint256.NewInt(100))
	fx.createQuiz(t, 2, uint256.NewInt(30))
	assertEscrowCovered(t, fx)

	subscribeAll(t, fx, 1, uint256.NewInt(100), alice, bob)
	subscribeAll(t, fx, 2, uint256.NewInt(30), carol, dave, erin)
	assertEscrowCovered(t, fx)

	owed, err := fx.ledger.Liabilities(ctx, tokenName)
	require.NoError(t, err)
	assert.Equal(t, uint64(290), owed.Uint64())

	_, err = fx.ledger.SetWinners(ctx, owner, 1, []account.Address{alice, carol})
	require.NoError(t, err)
	_, err = fx.ledger.SetWinners(ctx, owner, 2, []account.Address{dave, dave, erin, bob})
	require.NoError(t, err)
	assertEscrowCovered(t, fx)

	for _, claim := range []struct {
		id QuizID
		w  account.Address
	}{{1, alice}, {2, dave}, {2, bob}} {
		_, err := fx.ledger.Redeem(ctx, claim.id, claim.w)
		require.NoError(t, err)
		assertEscrowCovered(t, fx)
	}
	_, err = fx.ledger.Withdraw(ctx, 1, owner)
	require.NoError(t, err)
	assertEscrowCovered(t, fx)

	other, err := fx.ledger.Liabilities(ctx, "OTHER")
	require.NoError(t, err)
	assert.True(t, other.IsZero())
}

func TestAuditEscrow_DetectsShortfall(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, 10)
	fx.createQuiz(t, 1, uint256.NewInt(100))
	subscribeAll(t, fx, 1, uint256.NewInt(100), alice)

	// Funds leave escrow behind the ledger's back.
	require.NoError(t, fx.base.Transfer(ctx, escrow, stranger, uint256.NewInt(40)))

	require.NoError(t, fx.ledger.Audit(ctx, 1), "ledger records alone still balance")
	held, owed, err := fx.ledger.AuditEscrow(ctx, tokenName)
	assert.ErrorIs(t, err, ErrConservationViolation)
	assert.Equal(t, uint64(60), held.Uint64())
	assert.Equal(t, uint64(100), owed.Uint64())

	_, _, err = fx.ledger.AuditEscrow(ctx, "OTHER")
	assert.ErrorIs(t, err, ErrUnknownToken)
}
