package wallet

import (
	"fmt"
	"strings"

	bip32 "github.com/bsv-blockchain/go-sdk/compat/bip32"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	chaincfg "github.com/bsv-blockchain/go-sdk/transaction/chaincfg"

	"github.com/bitfsorg/quizledger/account"
)

const (
	// BIP44 path constants.
	PurposeBIP44 = 44
	CoinTypeBSV  = 236

	// MaxIndex is the largest non-hardened child index.
	MaxIndex = 1<<31 - 1

	// Hardened is the BIP32 hardened offset.
	Hardened = 0x80000000
)

// Role selects the BIP44 account a key is derived under.
type Role uint32

// Key roles.
const (
	RoleOwner Role = iota
	RoleEscrow
	RoleParticipant
)

var roleNames = []string{"owner", "escrow", "participant"}

func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return fmt.Sprintf("role(%d)", uint32(r))
}

// ParseRole maps a role name to its Role.
func ParseRole(s string) (Role, error) {
	for i, name := range roleNames {
		if strings.EqualFold(s, name) {
			return Role(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

// Wallet derives ledger accounts from a BIP39 seed.
type Wallet struct {
	masterKey *bip32.ExtendedKey
	network   account.Network
}

// KeyPair is a derived key with its ledger account.
type KeyPair struct {
	PrivateKey *ec.PrivateKey
	PublicKey  *ec.PublicKey
	Account    account.Address
	Path       string
}

// NewWallet creates a Wallet from a BIP39 seed.
func NewWallet(seed []byte, net account.Network) (*Wallet, error) {
	if len(seed) == 0 {
		return nil, ErrInvalidSeed
	}
	params := &chaincfg.TestNet
	if net.Mainnet {
		params = &chaincfg.MainNet
	}
	masterKey, err := bip32.NewMaster(seed, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDerivationFailed, err)
	}
	return &Wallet{masterKey: masterKey, network: net}, nil
}

// Network returns the network addresses are encoded for.
func (w *Wallet) Network() account.Network { return w.network }

// Derive returns the key at m/44'/236'/role'/0/index.
func (w *Wallet) Derive(role Role, index uint32) (*KeyPair, error) {
	if int(role) >= len(roleNames) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRole, uint32(role))
	}
	if index > MaxIndex {
		return nil, ErrIndexOutOfRange
	}

	key := w.masterKey
	steps := []struct {
		child uint32
		what  string
	}{
		{PurposeBIP44 + Hardened, "purpose"},
		{CoinTypeBSV + Hardened, "coin type"},
		{uint32(role) + Hardened, "role"},
		{0, "chain"},
		{index, "index"},
	}
	for _, s := range steps {
		next, err := key.Child(s.child)
		if err != nil {
			return nil, fmt.Errorf("%w: %s derivation: %w", ErrDerivationFailed, s.what, err)
		}
		key = next
	}

	priv, err := key.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("%w: extract private key: %w", ErrDerivationFailed, err)
	}
	pub := priv.PubKey()
	addr, err := account.FromPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDerivationFailed, err)
	}
	return &KeyPair{
		PrivateKey: priv,
		PublicKey:  pub,
		Account:    addr,
		Path:       fmt.Sprintf("m/44'/%d'/%d'/0/%d", CoinTypeBSV, uint32(role), index),
	}, nil
}

// Owner returns the first owner key.
func (w *Wallet) Owner() (*KeyPair, error) { return w.Derive(RoleOwner, 0) }

// Escrow returns the first escrow key.
func (w *Wallet) Escrow() (*KeyPair, error) { return w.Derive(RoleEscrow, 0) }

// Participant returns participant key i.
func (w *Wallet) Participant(i uint32) (*KeyPair, error) { return w.Derive(RoleParticipant, i) }
