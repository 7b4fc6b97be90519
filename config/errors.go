// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import "errors"

var (
	// ErrInvalidNetwork indicates the network name is not recognized.
	ErrInvalidNetwork = errors.New("config: invalid network (must be \"mainnet\" or \"testnet\")")

	// ErrInvalidBackend indicates the storage backend name is not recognized.
	ErrInvalidBackend = errors.New("config: invalid storage backend")

	// ErrMissingDSN indicates a networked backend was chosen without a DSN.
	ErrMissingDSN = errors.New("config: backend requires a dsn")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("config: invalid log level (must be \"debug\", \"info\", \"warn\", \"error\", or \"crit\")")

	// ErrEmptyDataDir indicates the data directory path is empty.
	ErrEmptyDataDir = errors.New("config: data directory must not be empty")

	// ErrInvalidFeePercent indicates a platform fee outside [0, 100].
	ErrInvalidFeePercent = errors.New("config: fee_percent must be between 0 and 100")

	// ErrInvalidDecimals indicates a token decimals setting out of range.
	ErrInvalidDecimals = errors.New("config: invalid decimals")

	// ErrInvalidOwner indicates the owner address does not parse.
	ErrInvalidOwner = errors.New("config: invalid owner address")

	// ErrInvalidEscrow indicates the escrow address does not parse or equals the owner.
	ErrInvalidEscrow = errors.New("config: invalid escrow address")

	// ErrInvalidTokenName indicates an empty or malformed token name.
	ErrInvalidTokenName = errors.New("config: invalid token name")

	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("config: configuration file not found")

	// ErrInvalidConfigFile indicates the config file is not valid TOML.
	ErrInvalidConfigFile = errors.New("config: invalid configuration file")
)
