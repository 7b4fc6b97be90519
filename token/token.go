// Package token defines the fungible-token collaborator the ledger escrows
// funds with, a registry of named tokens, and a reference token persisted in a
// storage.Store.
package token

import (
	"context"

	"github.com/holiman/uint256"

	"github.com/bitfsorg/quizledger/account"
)

// Token is the capability set the ledger consumes. There is no ambient
// caller: the account whose funds move, or the spender using an allowance,
// is always explicit. A declined transfer is a non-nil error and moves
// nothing.
type Token interface {
	// Name returns the registry name of the token.
	Name() string

	// BalanceOf returns the balance held by owner.
	BalanceOf(ctx context.Context, owner account.Address) (*uint256.Int, error)

	// Transfer moves amount from from to to.
	Transfer(ctx context.Context, from, to account.Address, amount *uint256.Int) error

	// TransferFrom moves amount from from to to, consuming spender's allowance.
	TransferFrom(ctx context.Context, spender, from, to account.Address, amount *uint256.Int) error

	// Approve sets the allowance spender may draw from owner.
	Approve(ctx context.Context, owner, spender account.Address, amount *uint256.Int) error
}
