package token

import (
	"context"

	"github.com/holiman/uint256"

	"github.com/bitfsorg/quizledger/account"
)

// MockToken is a test double for Token. A nil function field falls through
// to Base, so tests override only the calls they need to intercept.
type MockToken struct {
	Base Token

	NameValue      string
	BalanceOfFn    func(ctx context.Context, owner account.Address) (*uint256.Int, error)
	TransferFn     func(ctx context.Context, from, to account.Address, amount *uint256.Int) error
	TransferFromFn func(ctx context.Context, spender, from, to account.Address, amount *uint256.Int) error
	ApproveFn      func(ctx context.Context, owner, spender account.Address, amount *uint256.Int) error
}

var _ Token = (*MockToken)(nil)

func (m *MockToken) Name() string {
	if m.NameValue != "" {
		return m.NameValue
	}
	return m.Base.Name()
}
func (m *MockToken) BalanceOf(ctx context.Context, owner account.Address) (*uint256.Int, error) {
	if m.BalanceOfFn != nil {
		return m.BalanceOfFn(ctx, owner)
	}
	return m.Base.BalanceOf(ctx, owner)
}
func (m *MockToken) Transfer(ctx context.Context, from, to account.Address, amount *uint256.Int) error {
	if m.TransferFn != nil {
		return m.TransferFn(ctx, from, to, amount)
	}
	return m.Base.Transfer(ctx, from, to, amount)
}
func (m *MockToken) TransferFrom(ctx context.Context, spender, from, to account.Address, amount *uint256.Int) error {
	if m.TransferFromFn != nil {
		return m.TransferFromFn(ctx, spender, from, to, amount)
	}
	return m.Base.TransferFrom(ctx, spender, from, to, amount)
}
func (m *MockToken) Approve(ctx context.Context, owner, spender account.Address, amount *uint256.Int) error {
	if m.ApproveFn != nil {
		return m.ApproveFn(ctx, owner, spender, amount)
	}
	return m.Base.Approve(ctx, owner, spender, amount)
}
