package token

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/holiman/uint256"
	"github.com/inconshreveable/log15"

	"github.com/bitfsorg/quizledger/account"
	"github.com/bitfsorg/quizledger/storage"
)

var tlog = log15.New("module", "token")

var supplyKey = []byte("supply")

// StoreToken is a reference fungible token whose balances, allowances and
// total supply live in a storage.Store. Each call commits one batch.
type StoreToken struct {
	name  string
	store storage.Store
	mu    sync.Mutex

	balances   string
	allowances string
	meta       string
}

// Compile-time interface check.
var _ Token = (*StoreToken)(nil)

// NewStoreToken opens the token called name inside s.
func NewStoreToken(s storage.Store, name string) (*StoreToken, error) {
	if name == "" || strings.ContainsAny(name, "/ \t\n") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	prefix := "token/" + name + "/"
	return &StoreToken{
		name:       name,
		store:      s,
		balances:   prefix + "balances",
		allowances: prefix + "allowances",
		meta:       prefix + "meta",
	}, nil
}

// Name returns the token name.
func (t *StoreToken) Name() string { return t.name }

func allowanceKey(owner, spender account.Address) []byte {
	k := make([]byte, 0, 2*account.AddressSize)
	k = append(k, owner[:]...)
	return append(k, spender[:]...)
}

func (t *StoreToken) load(bucket string, key []byte) (*uint256.Int, error) {
	v, err := t.store.Get(bucket, key)
	if errors.Is(err, storage.ErrNotFound) {
		return new(uint256.Int), nil
	}
	if err != nil {
		return nil, err
	}
	if len(v) != 32 {
		return nil, fmt.Errorf("%w: %d bytes", ErrCorruptBalance, len(v))
	}
	return new(uint256.Int).SetBytes32(v), nil
}

func put(b *storage.Batch, bucket string, key []byte, v *uint256.Int) {
	enc := v.Bytes32()
	b.Put(bucket, key, enc[:])
}

// BalanceOf returns owner's balance.
func (t *StoreToken) BalanceOf(_ context.Context, owner account.Address) (*uint256.Int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.load(t.balances, owner[:])
}

// Allowance returns what spender may still draw from owner.
func (t *StoreToken) Allowance(_ context.Context, owner, spender account.Address) (*uint256.Int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.load(t.allowances, allowanceKey(owner, spender))
}

// TotalSupply returns the amount minted so far.
func (t *StoreToken) TotalSupply(_ context.Context) (*uint256.Int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.load(t.meta, supplyKey)
}

// Mint creates amount new tokens owned by to.
func (t *StoreToken) Mint(_ context.Context, to account.Address, amount *uint256.Int) error {
	if amount == nil {
		return ErrNilAmount
	}
	if to.IsZero() {
		return fmt.Errorf("%w: mint to zero address", ErrZeroAddress)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	supply, err := t.load(t.meta, supplyKey)
	if err != nil {
		return err
	}
	newSupply, overflow := new(uint256.Int).AddOverflow(supply, amount)
	if overflow {
		return ErrSupplyOverflow
	}
	bal, err := t.load(t.balances, to[:])
	if err != nil {
		return err
	}
	// Balance <= supply, so this cannot overflow once the supply check passed.
	bal.Add(bal, amount)

	b := storage.NewBatch()
	put(b, t.meta, supplyKey, newSupply)
	put(b, t.balances, to[:], bal)
	if err := t.store.Write(b); err != nil {
		return err
	}
	tlog.Debug("mint", "token", t.name, "to", to, "amount", amount.Dec())
	return nil
}

// Approve sets spender's allowance over owner's balance.
func (t *StoreToken) Approve(_ context.Context, owner, spender account.Address, amount *uint256.Int) error {
	if amount == nil {
		return ErrNilAmount
	}
	if owner.IsZero() || spender.IsZero() {
		return fmt.Errorf("%w: approve", ErrZeroAddress)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	b := storage.NewBatch()
	put(b, t.allowances, allowanceKey(owner, spender), amount)
	if err := t.store.Write(b); err != nil {
		return err
	}
	tlog.Debug("approve", "token", t.name, "owner", owner, "spender", spender, "amount", amount.Dec())
	return nil
}

// Transfer moves amount from from to to.
func (t *StoreToken) Transfer(_ context.Context, from, to account.Address, amount *uint256.Int) error {
	if amount == nil {
		return ErrNilAmount
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	b := storage.NewBatch()
	if err := t.move(b, from, to, amount); err != nil {
		return err
	}
	return t.store.Write(b)
}

// TransferFrom moves amount from from to to on spender's allowance.
func (t *StoreToken) TransferFrom(_ context.Context, spender, from, to account.Address, amount *uint256.Int) error {
	if amount == nil {
		return ErrNilAmount
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	akey := allowanceKey(from, spender)
	allowance, err := t.load(t.allowances, akey)
	if err != nil {
		return err
	}
	if allowance.Lt(amount) {
		return fmt.Errorf("%w: allowance %s, need %s", ErrInsufficientAllowance, allowance.Dec(), amount.Dec())
	}

	b := storage.NewBatch()
	if err := t.move(b, from, to, amount); err != nil {
		return err
	}
	put(b, t.allowances, akey, new(uint256.Int).Sub(allowance, amount))
	return t.store.Write(b)
}

// move queues the balance updates of a transfer into b. Caller holds t.mu.
func (t *StoreToken) move(b *storage.Batch, from, to account.Address, amount *uint256.Int) error {
	if from.IsZero() || to.IsZero() {
		return fmt.Errorf("%w: transfer", ErrZeroAddress)
	}
	fromBal, err := t.load(t.balances, from[:])
	if err != nil {
		return err
	}
	if fromBal.Lt(amount) {
		return fmt.Errorf("%w: have %s, need %s", ErrInsufficientBalance, fromBal.Dec(), amount.Dec())
	}
	if from == to {
		return nil
	}
	toBal, err := t.load(t.balances, to[:])
	if err != nil {
		return err
	}
	put(b, t.balances, from[:], new(uint256.Int).Sub(fromBal, amount))
	put(b, t.balances, to[:], new(uint256.Int).Add(toBal, amount))
	tlog.Debug("transfer", "token", t.name, "from", from, "to", to, "amount", amount.Dec())
	return nil
}
