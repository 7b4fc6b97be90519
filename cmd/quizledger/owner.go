package main

import (
	"github.com/spf13/cobra"

	"github.com/bitfsorg/quizledger/account"
)

// OwnerCmd groups owner queries and ownership transfer.
func OwnerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "owner",
		Short: "Platform owner operations",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.AddCommand(
		OwnerShowCmd(),
		OwnerBalanceCmd(),
		OwnerTransferCmd(),
	)
	return cmd
}

// OwnerShowCmd prints the owner, escrow and fee percent.
func OwnerShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the owner, escrow and fee percent",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, _ []string, e *env) error {
			owner, err := e.ledger.Owner(cmd.Context())
			if err != nil {
				return err
			}
			e.printf("owner:  %s\n", e.addr(owner))
			e.printf("escrow: %s\n", e.addr(e.ledger.Escrow()))
			e.printf("fee:    %d%%\n", e.ledger.FeePercent())
			return nil
		}),
	}
}

// OwnerBalanceCmd prints the withdrawable fees across all quizzes.
func OwnerBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show withdrawable platform fees",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, _ []string, e *env) error {
			total, err := e.ledger.OwnerBalance(cmd.Context())
			if err != nil {
				return err
			}
			e.printf("fees: %s\n", e.format(total))
			return nil
		}),
	}
}

// OwnerTransferCmd hands ownership to another account.
func OwnerTransferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <address>",
		Short: "Transfer ownership (owner)",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			caller, err := e.caller(cmd)
			if err != nil {
				return err
			}
			to, err := account.Parse(args[0])
			if err != nil {
				return err
			}
			if err := e.ledger.TransferOwnership(cmd.Context(), caller, to); err != nil {
				return err
			}
			e.printf("ownership transferred to %s\n", e.addr(to))
			return nil
		}),
	}
}
