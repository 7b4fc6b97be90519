// Package account defines the 20-byte account identity used by the ledger and
// token packages, and its base58check P2PKH text form.
package account

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/script"
)

// AddressSize is the length of an account identity (HASH160 of a public key).
const AddressSize = 20

// Address identifies a participant, the platform owner or an escrow account.
type Address [AddressSize]byte

// Zero is the unset address. It never owns funds or privileges.
var Zero Address

// Network selects the address version byte used for the text form.
type Network struct {
	Name    string
	Mainnet bool
}

// Predefined networks.
var (
	MainNet = Network{Name: "mainnet", Mainnet: true}
	TestNet = Network{Name: "testnet", Mainnet: false}
)

// GetNetwork returns a predefined network by name.
func GetNetwork(name string) (Network, error) {
	switch name {
	case MainNet.Name:
		return MainNet, nil
	case TestNet.Name:
		return TestNet, nil
	}
	return Network{}, fmt.Errorf("%w: %q", ErrInvalidNetwork, name)
}

// IsZero reports whether a is the zero address.
func (a Address) IsZero() bool { return a == Zero }

// Bytes returns a copy of the raw 20 bytes.
func (a Address) Bytes() []byte { return bytes.Clone(a[:]) }

// Compare orders addresses bytewise.
func (a Address) Compare(b Address) int { return bytes.Compare(a[:], b[:]) }

// Encode returns the base58check P2PKH form of a on the given network.
func (a Address) Encode(net Network) string {
	addr, err := script.NewAddressFromPublicKeyHash(a[:], net.Mainnet)
	if err != nil {
		// A 20-byte hash always encodes; fall back to hex rather than panic.
		return hex.EncodeToString(a[:])
	}
	return addr.AddressString
}

// String returns the mainnet text form.
func (a Address) String() string { return a.Encode(MainNet) }

// Parse decodes a base58check P2PKH address (either network) or a 40-char
// hex string into an Address.
func Parse(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, fmt.Errorf("%w: empty", ErrInvalidAddress)
	}
	if raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x")); err == nil && len(raw) == AddressSize {
		var a Address
		copy(a[:], raw)
		return a, nil
	}
	addr, err := script.NewAddressFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("%w: %q: %w", ErrInvalidAddress, s, err)
	}
	pkh := []byte(addr.PublicKeyHash)
	if len(pkh) != AddressSize {
		return Zero, fmt.Errorf("%w: %q: hash is %d bytes", ErrInvalidAddress, s, len(pkh))
	}
	var a Address
	copy(a[:], pkh)
	return a, nil
}

// MustParse is Parse for constants and tests; it panics on error.
func MustParse(s string) Address {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// ParseList parses a whitespace or comma separated list of addresses.
func ParseList(s string) ([]Address, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	out := make([]Address, 0, len(fields))
	for _, f := range fields {
		a, err := Parse(f)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// FromPublicKey derives the account identity of a secp256k1 public key.
func FromPublicKey(pub *ec.PublicKey) (Address, error) {
	if pub == nil {
		return Zero, ErrNilKey
	}
	addr, err := script.NewAddressFromPublicKey(pub, true)
	if err != nil {
		return Zero, fmt.Errorf("account: address from pubkey: %w", err)
	}
	var a Address
	copy(a[:], []byte(addr.PublicKeyHash))
	return a, nil
}

// FromSeed builds a deterministic address from a single repeated byte.
// Used for fixtures and well-known local accounts.
func FromSeed(seed byte) Address {
	var a Address
	for i := range a {
		a[i] = seed
	}
	return a
}
