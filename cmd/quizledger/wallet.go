package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/quizledger/account"
	"github.com/bitfsorg/quizledger/wallet"
)

const envPassword = "QUIZLEDGER_PASSWORD"

var errNoPassword = errors.New("no password: pass --password or set " + envPassword)

// WalletCmd manages the encrypted HD keystore in the data directory.
func WalletCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Manage the HD keystore for owner, escrow and participant accounts",
	}
	cmd.PersistentFlags().String("password", os.Getenv(envPassword), "keystore password")
	cmd.PersistentFlags().String("passphrase", "", "optional BIP39 passphrase")
	cmd.PersistentFlags().Bool("testnet", false, "encode addresses for testnet")

	newCmd := &cobra.Command{
		Use:   "new",
		Short: "Generate a mnemonic and write the keystore",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			words, _ := cmd.Flags().GetInt("words")
			bits := wallet.Mnemonic12Words
			switch words {
			case 12:
			case 24:
				bits = wallet.Mnemonic24Words
			default:
				return fmt.Errorf("--words must be 12 or 24, got %d", words)
			}
			mnemonic, err := wallet.GenerateMnemonic(bits)
			if err != nil {
				return err
			}
			if err := saveWallet(cmd, mnemonic); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "mnemonic: %s\n", mnemonic)
			return printRoles(cmd)
		},
	}
	newCmd.Flags().Int("words", 12, "mnemonic length (12 or 24)")

	restoreCmd := &cobra.Command{
		Use:   "restore <mnemonic words...>",
		Short: "Write the keystore from an existing mnemonic",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := saveWallet(cmd, strings.Join(args, " ")); err != nil {
				return err
			}
			return printRoles(cmd)
		},
	}

	addressCmd := &cobra.Command{
		Use:   "address",
		Short: "Show a derived account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			roleName, _ := cmd.Flags().GetString("role")
			index, _ := cmd.Flags().GetUint32("index")
			showKey, _ := cmd.Flags().GetBool("show-key")
			role, err := wallet.ParseRole(roleName)
			if err != nil {
				return err
			}
			w, err := openWallet(cmd)
			if err != nil {
				return err
			}
			kp, err := w.Derive(role, index)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "path:    %s\n", kp.Path)
			fmt.Fprintf(out, "address: %s\n", kp.Account.Encode(w.Network()))
			fmt.Fprintf(out, "hex:     %s\n", hex.EncodeToString(kp.Account[:]))
			if showKey {
				fmt.Fprintf(out, "private key: %s\n", hex.EncodeToString(kp.PrivateKey.Serialize()))
			}
			return nil
		},
	}
	addressCmd.Flags().String("role", wallet.RoleParticipant.String(), "key role (owner, escrow, participant)")
	addressCmd.Flags().Uint32("index", 0, "address index")
	addressCmd.Flags().Bool("show-key", false, "also print the private key")

	cmd.AddCommand(newCmd, restoreCmd, addressCmd)
	return cmd
}

func walletPassword(cmd *cobra.Command) (string, error) {
	pw, _ := cmd.Flags().GetString("password")
	if pw == "" {
		return "", errNoPassword
	}
	return pw, nil
}

func walletNetwork(cmd *cobra.Command) account.Network {
	if testnet, _ := cmd.Flags().GetBool("testnet"); testnet {
		return account.TestNet
	}
	return account.MainNet
}

func saveWallet(cmd *cobra.Command, mnemonic string) error {
	pw, err := walletPassword(cmd)
	if err != nil {
		return err
	}
	passphrase, _ := cmd.Flags().GetString("passphrase")
	seed, err := wallet.SeedFromMnemonic(mnemonic, passphrase)
	if err != nil {
		return err
	}
	dataDir, _ := cmd.Flags().GetString("datadir")
	return wallet.SaveKeystore(wallet.KeystorePath(dataDir), seed, pw)
}

// openWallet decrypts the keystore in the data directory.
func openWallet(cmd *cobra.Command) (*wallet.Wallet, error) {
	pw, err := walletPassword(cmd)
	if err != nil {
		return nil, err
	}
	dataDir, _ := cmd.Flags().GetString("datadir")
	seed, err := wallet.LoadKeystore(wallet.KeystorePath(dataDir), pw)
	if err != nil {
		return nil, err
	}
	return wallet.NewWallet(seed, walletNetwork(cmd))
}

func printRoles(cmd *cobra.Command) error {
	w, err := openWallet(cmd)
	if err != nil {
		return err
	}
	owner, err := w.Owner()
	if err != nil {
		return err
	}
	escrow, err := w.Escrow()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	dataDir, _ := cmd.Flags().GetString("datadir")
	fmt.Fprintf(out, "keystore: %s\n", wallet.KeystorePath(dataDir))
	fmt.Fprintf(out, "owner:    %s\n", owner.Account.Encode(w.Network()))
	fmt.Fprintf(out, "escrow:   %s\n", escrow.Account.Encode(w.Network()))
	return nil
}
