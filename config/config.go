// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config loads, saves and validates the quizledger configuration
// file, a TOML document kept in the data directory.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/bitfsorg/quizledger/storage"
	"github.com/bitfsorg/quizledger/units"
)

// DefaultTokenName is the reference token registered by a fresh install.
const DefaultTokenName = "QZT"

// Config holds the settings of one ledger installation.
type Config struct {
	DataDir    string   `toml:"datadir"`
	Backend    string   `toml:"backend"`
	DSN        string   `toml:"dsn"`
	Network    string   `toml:"network"`
	Owner      string   `toml:"owner"`
	Escrow     string   `toml:"escrow"`
	FeePercent int      `toml:"fee_percent"`
	Decimals   int      `toml:"decimals"`
	Tokens     []string `toml:"tokens"`
	LogLevel   string   `toml:"loglevel"`
	LogFile    string   `toml:"logfile"`
}

// DefaultDataDir returns ~/.quizledger, or .quizledger in the working
// directory when the home directory cannot be determined.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".quizledger"
	}
	return filepath.Join(home, ".quizledger")
}

// DefaultConfig returns a configuration with sensible defaults. Owner and
// Escrow are left empty; `quizledger init` fills them in.
func DefaultConfig() Config {
	return Config{
		DataDir:    DefaultDataDir(),
		Backend:    storage.BackendBolt,
		Network:    "mainnet",
		FeePercent: 10,
		Decimals:   units.DefaultDecimals,
		Tokens:     []string{DefaultTokenName},
		LogLevel:   "info",
	}
}

// ConfigPath returns the config file location inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config.toml")
}

// LoadConfig reads the file at path over DefaultConfig. Keys missing from
// the file keep their defaults; unknown keys are ignored.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfigFile, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path, creating parent directories as needed.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("# QuizLedger Configuration\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0600)
}
