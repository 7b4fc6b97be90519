package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/spf13/cobra"

	"github.com/bitfsorg/quizledger/account"
	"github.com/bitfsorg/quizledger/config"
	"github.com/bitfsorg/quizledger/storage"
)

// InitCmd writes config.toml and records the ledger owner.
func InitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the configuration and ledger in the data directory",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}
	addInitFlags(cmd)
	return cmd
}

func addInitFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	cmd.Flags().String("owner", "", "platform owner address")
	cmd.Flags().String("escrow", "", "escrow custody address")
	cmd.Flags().Bool("from-wallet", false, "take owner and escrow from the keystore")
	cmd.Flags().String("password", os.Getenv(envPassword), "keystore password (with --from-wallet)")
	cmd.Flags().Int("fee", def.FeePercent, "platform fee percent (0-100)")
	cmd.Flags().String("backend", def.Backend, "storage backend (bolt, leveldb, sqlite, postgres, redis, memory)")
	cmd.Flags().String("dsn", "", "postgres or redis connection string")
	cmd.Flags().String("network", def.Network, "address network (mainnet, testnet)")
	cmd.Flags().StringSlice("token", def.Tokens, "token names to register")
	cmd.Flags().Int("decimals", def.Decimals, "token decimals used for amount flags")
	cmd.Flags().Bool("force", false, "overwrite an existing configuration")
}

func runInit(cmd *cobra.Command, _ []string) error {
	dataDir, _ := cmd.Flags().GetString("datadir")
	force, _ := cmd.Flags().GetBool("force")
	path := config.ConfigPath(dataDir)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	var err error
	cfg := config.DefaultConfig()
	cfg.DataDir = dataDir
	cfg.Owner, _ = cmd.Flags().GetString("owner")
	cfg.Escrow, _ = cmd.Flags().GetString("escrow")
	if fromWallet, _ := cmd.Flags().GetBool("from-wallet"); fromWallet {
		if cfg.Owner, cfg.Escrow, err = walletRoles(cmd); err != nil {
			return err
		}
	}
	if cfg.Owner == "" || cfg.Escrow == "" {
		return errors.New("--owner and --escrow are required (or use --from-wallet)")
	}
	cfg.FeePercent, _ = cmd.Flags().GetInt("fee")
	cfg.Backend, _ = cmd.Flags().GetString("backend")
	cfg.DSN, _ = cmd.Flags().GetString("dsn")
	cfg.Network, _ = cmd.Flags().GetString("network")
	cfg.Tokens, _ = cmd.Flags().GetStringSlice("token")
	cfg.Decimals, _ = cmd.Flags().GetInt("decimals")
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}
	if cfg.Backend == storage.BackendMemory {
		return fmt.Errorf("backend %q does not persist between commands", cfg.Backend)
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	if err := config.SaveConfig(path, cfg); err != nil {
		return err
	}

	// Opening the ledger persists the owner.
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()
	owner, err := e.ledger.Owner(cmd.Context())
	if err != nil {
		return err
	}
	e.printf("config:  %s\n", path)
	e.printf("backend: %s\n", cfg.Backend)
	e.printf("owner:   %s\n", e.addr(owner))
	e.printf("escrow:  %s\n", e.addr(e.ledger.Escrow()))
	e.printf("fee:     %d%%\n", e.ledger.FeePercent())
	return nil
}

// walletRoles returns the keystore's owner and escrow accounts in hex.
func walletRoles(cmd *cobra.Command) (owner, escrow string, err error) {
	w, err := openWallet(cmd)
	if err != nil {
		return "", "", err
	}
	o, err := w.Owner()
	if err != nil {
		return "", "", err
	}
	e, err := w.Escrow()
	if err != nil {
		return "", "", err
	}
	return hex.EncodeToString(o.Account[:]), hex.EncodeToString(e.Account[:]), nil
}

// KeygenCmd creates a fresh secp256k1 key and prints its account address.
func KeygenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an account key pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			testnet, _ := cmd.Flags().GetBool("testnet")
			net := account.MainNet
			if testnet {
				net = account.TestNet
			}

			priv, err := ec.NewPrivateKey()
			if err != nil {
				return fmt.Errorf("generate key: %w", err)
			}
			addr, err := account.FromPublicKey(priv.PubKey())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "address:     %s\n", addr.Encode(net))
			fmt.Fprintf(out, "hex:         %s\n", hex.EncodeToString(addr[:]))
			fmt.Fprintf(out, "private key: %s\n", hex.EncodeToString(priv.Serialize()))
			return nil
		},
	}
	cmd.Flags().Bool("testnet", false, "encode the address for testnet")
	return cmd
}
