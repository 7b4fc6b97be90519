package token

import (
	"context"
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/quizledger/account"
	"github.com/bitfsorg/quizledger/storage"
)

var (
	alice = account.FromSeed(0xA1)
	bob   = account.FromSeed(0xB0)
	quiz  = account.FromSeed(0xE5)
)

func newToken(t *testing.T) *StoreToken {
	t.Helper()
	tok, err := NewStoreToken(storage.NewMemStore(), "CRV")
	require.NoError(t, err)
	return tok
}

func balance(t *testing.T, tok Token, a account.Address) uint64 {
	t.Helper()
	b, err := tok.BalanceOf(context.Background(), a)
	require.NoError(t, err)
	return b.Uint64()
}

// ---------------------------------------------------------------------------
// StoreToken
// ---------------------------------------------------------------------------

func TestStoreToken_Mint(t *testing.T) {
	ctx := context.Background()
	tok := newToken(t)

	require.NoError(t, tok.Mint(ctx, alice, uint256.NewInt(100)))
	require.NoError(t, tok.Mint(ctx, bob, uint256.NewInt(50)))

	assert.Equal(t, uint64(100), balance(t, tok, alice))
	assert.Equal(t, uint64(50), balance(t, tok, bob))
	supply, err := tok.TotalSupply(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(150), supply.Uint64())

	assert.ErrorIs(t, tok.Mint(ctx, account.Zero, uint256.NewInt(1)), ErrZeroAddress)
	assert.ErrorIs(t, tok.Mint(ctx, alice, nil), ErrNilAmount)
}

func TestStoreToken_MintOverflow(t *testing.T) {
	ctx := context.Background()
	tok := newToken(t)
	top := new(uint256.Int).SetAllOne()

	require.NoError(t, tok.Mint(ctx, alice, top))
	assert.ErrorIs(t, tok.Mint(ctx, bob, uint256.NewInt(1)), ErrSupplyOverflow)
	assert.Equal(t, uint64(0), balance(t, tok, bob))
}

func TestStoreToken_Transfer(t *testing.T) {
	ctx := context.Background()
	tok := newToken(t)
	require.NoError(t, tok.Mint(ctx, alice, uint256.NewInt(10)))

	require.NoError(t, tok.Transfer(ctx, alice, bob, uint256.NewInt(4)))
	assert.Equal(t, uint64(6), balance(t, tok, alice))
	assert.Equal(t, uint64(4), balance(t, tok, bob))

	err := tok.Transfer(ctx, alice, bob, uint256.NewInt(7))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, uint64(6), balance(t, tok, alice))

	assert.ErrorIs(t, tok.Transfer(ctx, alice, account.Zero, uint256.NewInt(1)), ErrZeroAddress)
}

func TestStoreToken_TransferToSelf(t *testing.T) {
	ctx := context.Background()
	tok := newToken(t)
	require.NoError(t, tok.Mint(ctx, alice, uint256.NewInt(10)))

	require.NoError(t, tok.Transfer(ctx, alice, alice, uint256.NewInt(10)))
	assert.Equal(t, uint64(10), balance(t, tok, alice))
}

func TestStoreToken_TransferFrom(t *testing.T) {
	ctx := context.Background()
	tok := newToken(t)
	require.NoError(t, tok.Mint(ctx, alice, uint256.NewInt(10)))

	err := tok.TransferFrom(ctx, quiz, alice, quiz, uint256.NewInt(5))
	assert.ErrorIs(t, err, ErrInsufficientAllowance)

	require.NoError(t, tok.Approve(ctx, alice, quiz, uint256.NewInt(5)))
	require.NoError(t, tok.TransferFrom(ctx, quiz, alice, quiz, uint256.NewInt(5)))
	assert.Equal(t, uint64(5), balance(t, tok, alice))
	assert.Equal(t, uint64(5), balance(t, tok, quiz))

	left, err := tok.Allowance(ctx, alice, quiz)
	require.NoError(t, err)
	assert.True(t, left.IsZero())

	err = tok.TransferFrom(ctx, quiz, alice, quiz, uint256.NewInt(1))
	assert.ErrorIs(t, err, ErrInsufficientAllowance)
}

func TestStoreToken_TransferFromInsufficientBalanceKeepsAllowance(t *testing.T) {
	ctx := context.Background()
	tok := newToken(t)
	require.NoError(t, tok.Mint(ctx, alice, uint256.NewInt(3)))
	require.NoError(t, tok.Approve(ctx, alice, quiz, uint256.NewInt(5)))

	err := tok.TransferFrom(ctx, quiz, alice, quiz, uint256.NewInt(5))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	left, err := tok.Allowance(ctx, alice, quiz)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), left.Uint64())
}

func TestStoreToken_SharedStoreIsolation(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemStore()
	a, err := NewStoreToken(s, "AAA")
	require.NoError(t, err)
	b, err := NewStoreToken(s, "BBB")
	require.NoError(t, err)

	require.NoError(t, a.Mint(ctx, alice, uint256.NewInt(9)))
	assert.Equal(t, uint64(9), balance(t, a, alice))
	assert.Equal(t, uint64(0), balance(t, b, alice))
}

func TestNewStoreToken_InvalidName(t *testing.T) {
	for _, name := range []string{"", "a/b", "with space"} {
		_, err := NewStoreToken(storage.NewMemStore(), name)
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}
}

// ---------------------------------------------------------------------------
// Registry and MockToken
// ---------------------------------------------------------------------------

func TestRegistry(t *testing.T) {
	tok := newToken(t)
	r, err := NewRegistry(tok)
	require.NoError(t, err)

	got, err := r.Resolve("CRV")
	require.NoError(t, err)
	assert.Same(t, tok, got)

	_, err = r.Resolve("USD")
	assert.ErrorIs(t, err, ErrUnknownToken)

	assert.ErrorIs(t, r.Register(tok), ErrDuplicateToken)
	assert.Equal(t, []string{"CRV"}, r.Names())
}

func TestMockToken_FallsThroughToBase(t *testing.T) {
	ctx := context.Background()
	base := newToken(t)
	require.NoError(t, base.Mint(ctx, alice, uint256.NewInt(10)))

	declined := errors.New("declined")
	m := &MockToken{
		Base: base,
		TransferFn: func(context.Context, account.Address, account.Address, *uint256.Int) error {
			return declined
		},
	}

	assert.Equal(t, "CRV", m.Name())
	assert.ErrorIs(t, m.Transfer(ctx, alice, bob, uint256.NewInt(1)), declined)
	require.NoError(t, m.Approve(ctx, alice, bob, uint256.NewInt(2)))
	require.NoError(t, m.TransferFrom(ctx, bob, alice, bob, uint256.NewInt(2)))
	assert.Equal(t, uint64(8), balance(t, m, alice))
}
