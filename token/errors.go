package token

import "errors"

var (
	// ErrInsufficientBalance indicates the sender holds less than the amount.
	ErrInsufficientBalance = errors.New("token: insufficient balance")

	// ErrInsufficientAllowance indicates the spender's allowance is below the amount.
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")

	// ErrZeroAddress indicates a transfer to or from the zero address.
	ErrZeroAddress = errors.New("token: zero address")

	// ErrNilAmount indicates a nil amount was supplied.
	ErrNilAmount = errors.New("token: nil amount")

	// ErrSupplyOverflow indicates minting would overflow the total supply.
	ErrSupplyOverflow = errors.New("token: total supply overflow")

	// ErrUnknownToken indicates the registry has no token under that name.
	ErrUnknownToken = errors.New("token: unknown token")

	// ErrDuplicateToken indicates a token is already registered under that name.
	ErrDuplicateToken = errors.New("token: token already registered")

	// ErrInvalidName indicates an empty or malformed token name.
	ErrInvalidName = errors.New("token: invalid token name")

	// ErrCorruptBalance indicates a stored balance is not 32 bytes.
	ErrCorruptBalance = errors.New("token: corrupt balance record")
)
