// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bitfsorg/quizledger/account"
	"github.com/bitfsorg/quizledger/storage"
	"github.com/bitfsorg/quizledger/units"
)

// validLogLevels lists the accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
	"crit":  true,
}

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid. Owner and
// Escrow may be empty; when set they must parse.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	if _, err := account.GetNetwork(cfg.Network); err != nil {
		return ErrInvalidNetwork
	}

	if !slices.Contains(storage.Backends, cfg.Backend) {
		return fmt.Errorf("%w: %q", ErrInvalidBackend, cfg.Backend)
	}
	if (cfg.Backend == storage.BackendPostgres || cfg.Backend == storage.BackendRedis) && cfg.DSN == "" {
		return fmt.Errorf("%w: %s", ErrMissingDSN, cfg.Backend)
	}

	if cfg.FeePercent < 0 || cfg.FeePercent > 100 {
		return fmt.Errorf("%w: got %d", ErrInvalidFeePercent, cfg.FeePercent)
	}

	if cfg.Decimals < 0 || cfg.Decimals > units.MaxDecimals {
		return fmt.Errorf("%w: got %d", ErrInvalidDecimals, cfg.Decimals)
	}

	owner, err := validateAddr(cfg.Owner)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOwner, err)
	}
	escrow, err := validateAddr(cfg.Escrow)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEscrow, err)
	}
	if !owner.IsZero() && owner == escrow {
		return fmt.Errorf("%w: escrow must differ from owner", ErrInvalidEscrow)
	}

	for _, name := range cfg.Tokens {
		if name == "" || strings.ContainsAny(name, "/ \t\n") {
			return fmt.Errorf("%w: %q", ErrInvalidTokenName, name)
		}
	}

	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return ErrInvalidLogLevel
	}

	return nil
}

// validateAddr checks that a non-empty addr is a usable account address.
// An empty addr yields the zero address and no error.
func validateAddr(addr string) (account.Address, error) {
	if addr == "" {
		return account.Zero, nil
	}
	a, err := account.Parse(addr)
	if err != nil {
		return account.Zero, err
	}
	if a.IsZero() {
		return account.Zero, fmt.Errorf("%w: zero address", account.ErrInvalidAddress)
	}
	return a, nil
}
