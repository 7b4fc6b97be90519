package account

import "errors"

var (
	// ErrInvalidAddress indicates the address text is not a valid P2PKH address.
	ErrInvalidAddress = errors.New("account: invalid address")

	// ErrInvalidNetwork indicates the network name is not recognized.
	ErrInvalidNetwork = errors.New("account: invalid network (must be \"mainnet\" or \"testnet\")")

	// ErrNilKey indicates a nil public key was supplied.
	ErrNilKey = errors.New("account: nil public key")
)
