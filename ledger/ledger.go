// Package ledger implements a pay-to-enter quiz escrow: quizzes are created
// by the owner, subscribers pay an entry price in a fungible token, a
// platform fee is skimmed on every entry, and the remaining pool is split
// evenly across the winners once they are announced. Winners redeem and the
// owner withdraws fees independently.
//
// Every mutating operation runs as one atomic unit over a storage.Store.
// Token transfers may call back into the ledger; such reentrant calls must
// pass the context they were handed so they join the running operation. A
// callback on the same goroutine that drops that context gets ErrReentrant.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/inconshreveable/log15"

	"github.com/bitfsorg/quizledger/account"
	"github.com/bitfsorg/quizledger/storage"
	"github.com/bitfsorg/quizledger/token"
)

var llog = log15.New("module", "ledger")

// TokenResolver maps the token reference stored on a quiz to a live token.
// *token.Registry satisfies it.
type TokenResolver interface {
	Resolve(name string) (token.Token, error)
}

// Options configures a Ledger.
type Options struct {
	// Owner is the privileged identity. It is persisted on first open;
	// later opens keep the stored owner.
	Owner account.Address
	// Escrow is the custody account that holds subscriber funds.
	Escrow account.Address
	// FeePercent is the platform fee in whole percent, 0 to 100.
	FeePercent int
	// Tokens resolves quiz token references.
	Tokens TokenResolver
}

// Ledger is the quiz escrow. It is safe for concurrent use.
type Ledger struct {
	mu         sync.RWMutex
	holder     atomic.Uint64 // goroutine running the current operation, 0 if none
	store      storage.Store
	escrow     account.Address
	feePercent int
	tokens     TokenResolver
}

// New opens a ledger over s.
func New(s storage.Store, opts Options) (*Ledger, error) {
	if s == nil {
		return nil, errors.New("ledger: nil store")
	}
	if opts.Tokens == nil {
		return nil, fmt.Errorf("%w: no token resolver", ErrUnknownToken)
	}
	if err := ValidateFeePercent(opts.FeePercent); err != nil {
		return nil, err
	}
	if opts.Escrow.IsZero() {
		return nil, fmt.Errorf("%w: escrow", ErrZeroAddress)
	}

	l := &Ledger{
		store:      s,
		escrow:     opts.Escrow,
		feePercent: opts.FeePercent,
		tokens:     opts.Tokens,
	}

	stored, err := s.Get(bucketMeta, metaOwner)
	switch {
	case err == nil:
		if len(stored) != account.AddressSize {
			return nil, fmt.Errorf("%w: owner is %d bytes", ErrCorruptRecord, len(stored))
		}
		if account.Address(stored) == opts.Escrow {
			return nil, fmt.Errorf("%w: stored owner is the escrow", ErrEscrowAccount)
		}
	case errors.Is(err, storage.ErrNotFound):
		if opts.Owner.IsZero() {
			return nil, fmt.Errorf("%w: owner", ErrZeroAddress)
		}
		if opts.Owner == opts.Escrow {
			return nil, fmt.Errorf("%w: owner", ErrEscrowAccount)
		}
		b := storage.NewBatch()
		b.Put(bucketMeta, metaOwner, opts.Owner.Bytes())
		if err := s.Write(b); err != nil {
			return nil, fmt.Errorf("ledger: persist owner: %w", err)
		}
		llog.Info("ledger initialised", "owner", opts.Owner, "escrow", opts.Escrow, "fee_percent", opts.FeePercent)
	default:
		return nil, fmt.Errorf("ledger: load owner: %w", err)
	}
	return l, nil
}

// FeePercent returns the configured platform fee percentage.
func (l *Ledger) FeePercent() int { return l.feePercent }

// Escrow returns the custody account.
func (l *Ledger) Escrow() account.Address { return l.escrow }

// Owner returns the current owner.
func (l *Ledger) Owner(ctx context.Context) (account.Address, error) {
	var owner account.Address
	err := l.view(ctx, func(f *frame) error {
		var err error
		owner, err = f.owner()
		return err
	})
	return owner, err
}

// TransferOwnership hands the owner role to newOwner. Only the current
// owner may call it.
func (l *Ledger) TransferOwnership(ctx context.Context, caller, newOwner account.Address) error {
	return l.run(ctx, "transfer_ownership", func(_ context.Context, f *frame) error {
		if err := f.requireOwner(caller); err != nil {
			return err
		}
		if newOwner.IsZero() {
			return fmt.Errorf("%w: new owner", ErrZeroAddress)
		}
		if newOwner == l.escrow {
			return fmt.Errorf("%w: new owner", ErrEscrowAccount)
		}
		f.put(bucketMeta, metaOwner, newOwner[:])
		f.log.Info("ownership transferred", "from", caller, "to", newOwner)
		return nil
	})
}

// ---------------------------------------------------------------------------
// Operation scaffolding
// ---------------------------------------------------------------------------

// run executes fn as one atomic operation. A call made from inside a running
// operation (a token callback) executes in a child frame of that operation;
// its writes join the parent's and commit or vanish with it.
func (l *Ledger) run(ctx context.Context, name string, fn func(ctx context.Context, f *frame) error) error {
	if parent := l.frameFrom(ctx); parent != nil {
		f := newFrame(l.store, parent)
		f.log = parent.log.New("nested", name)
		if err := fn(l.withFrame(ctx, f), f); err != nil {
			f.log.Debug("nested operation rejected", "err", err)
			return err
		}
		f.mergeInto(parent)
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	gid := goid()
	if gid != 0 && l.holder.Load() == gid {
		return fmt.Errorf("%w: %s", ErrReentrant, name)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.holder.Store(gid)
	defer l.holder.Store(0)

	f := newFrame(l.store, nil)
	f.log = llog.New("op", name, "id", uuid.NewString())
	if err := fn(l.withFrame(ctx, f), f); err != nil {
		f.log.Debug("operation rolled back", "err", err)
		return err
	}
	b := f.batch()
	if b.Len() == 0 {
		return nil
	}
	if err := l.store.Write(b); err != nil {
		// Token transfers made by fn have already happened.
		f.log.Crit("state commit failed", "ops", b.Len(), "err", err)
		return fmt.Errorf("ledger: commit %s: %w", name, err)
	}
	return nil
}

// view runs a read-only fn against the state visible to ctx.
func (l *Ledger) view(ctx context.Context, fn func(f *frame) error) error {
	if parent := l.frameFrom(ctx); parent != nil {
		return fn(parent)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if gid := goid(); gid != 0 && l.holder.Load() == gid {
		return ErrReentrant
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return fn(newFrame(l.store, nil))
}

func (f *frame) owner() (account.Address, error) {
	var owner account.Address
	data, err := f.get(bucketMeta, metaOwner)
	if err != nil {
		return owner, fmt.Errorf("ledger: load owner: %w", err)
	}
	if len(data) != account.AddressSize {
		return owner, fmt.Errorf("%w: owner is %d bytes", ErrCorruptRecord, len(data))
	}
	copy(owner[:], data)
	return owner, nil
}

func (f *frame) requireOwner(caller account.Address) error {
	owner, err := f.owner()
	if err != nil {
		return err
	}
	if caller != owner {
		return fmt.Errorf("%w: %s", ErrUnauthorized, caller)
	}
	return nil
}

// resolveToken returns the token a quiz is denominated in.
func (l *Ledger) resolveToken(ref string) (token.Token, error) {
	t, err := l.tokens.Resolve(ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrUnknownToken, ref, err)
	}
	return t, nil
}
