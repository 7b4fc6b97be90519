package main

import (
	"github.com/spf13/cobra"

	"github.com/bitfsorg/quizledger/account"
)

// TokenCmd groups the reference token commands.
func TokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Reference token operations",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.PersistentFlags().String("token", "", "token name (default: first configured token)")
	cmd.AddCommand(
		TokenMintCmd(),
		TokenApproveCmd(),
		TokenBalanceCmd(),
		TokenListCmd(),
	)
	return cmd
}

// TokenMintCmd credits new supply to an account of the local token.
func TokenMintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mint <address> <amount>",
		Short: "Mint tokens to an address",
		Args:  cobra.ExactArgs(2),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			name, _ := cmd.Flags().GetString("token")
			tok, err := e.token(name)
			if err != nil {
				return err
			}
			to, err := account.Parse(args[0])
			if err != nil {
				return err
			}
			amount, err := e.amount(args[1])
			if err != nil {
				return err
			}
			if err := tok.Mint(cmd.Context(), to, amount); err != nil {
				return err
			}
			e.printf("minted %s %s to %s\n", e.format(amount), tok.Name(), e.addr(to))
			return nil
		}),
	}
	return cmd
}

// TokenApproveCmd lets the escrow pull entry fees from the caller.
func TokenApproveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approve <amount>",
		Short: "Approve the escrow (or --spender) to spend the caller's tokens",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			name, _ := cmd.Flags().GetString("token")
			tok, err := e.token(name)
			if err != nil {
				return err
			}
			from, err := e.caller(cmd)
			if err != nil {
				return err
			}
			spender := e.ledger.Escrow()
			if s, _ := cmd.Flags().GetString("spender"); s != "" {
				if spender, err = account.Parse(s); err != nil {
					return err
				}
			}
			amount, err := e.amount(args[0])
			if err != nil {
				return err
			}
			if err := tok.Approve(cmd.Context(), from, spender, amount); err != nil {
				return err
			}
			e.printf("approved %s to spend %s %s of %s\n", e.addr(spender), e.format(amount), tok.Name(), e.addr(from))
			return nil
		}),
	}
	cmd.Flags().String("spender", "", "spender address (default: escrow)")
	return cmd
}

// TokenBalanceCmd prints an account's balance and its escrow allowance.
func TokenBalanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance [address]",
		Short: "Show a token balance (default: --from)",
		Args:  cobra.MaximumNArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			name, _ := cmd.Flags().GetString("token")
			tok, err := e.token(name)
			if err != nil {
				return err
			}
			var who account.Address
			if len(args) == 1 {
				who, err = account.Parse(args[0])
			} else {
				who, err = e.caller(cmd)
			}
			if err != nil {
				return err
			}
			bal, err := tok.BalanceOf(cmd.Context(), who)
			if err != nil {
				return err
			}
			allowance, err := tok.Allowance(cmd.Context(), who, e.ledger.Escrow())
			if err != nil {
				return err
			}
			e.printf("address:   %s\n", e.addr(who))
			e.printf("balance:   %s %s\n", e.format(bal), tok.Name())
			e.printf("allowance: %s %s\n", e.format(allowance), tok.Name())
			return nil
		}),
	}
	return cmd
}

// TokenListCmd prints the registered tokens with their supply and the
// escrow's holdings.
func TokenListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered tokens",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, _ []string, e *env) error {
			for _, name := range e.reg.Names() {
				tok, err := e.token(name)
				if err != nil {
					return err
				}
				supply, err := tok.TotalSupply(cmd.Context())
				if err != nil {
					return err
				}
				held, err := tok.BalanceOf(cmd.Context(), e.ledger.Escrow())
				if err != nil {
					return err
				}
				e.printf("%s\tsupply %s\tescrow %s\n", name, e.format(supply), e.format(held))
			}
			return nil
		}),
	}
}
