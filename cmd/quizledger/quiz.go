package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/quizledger/account"
)

// QuizCmd groups the quiz lifecycle commands.
func QuizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Quiz management",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.AddCommand(
		QuizCreateCmd(),
		QuizShowCmd(),
		QuizListCmd(),
		QuizSubscribeCmd(),
		QuizSetWinnersCmd(),
		QuizRedeemCmd(),
		QuizWithdrawCmd(),
		QuizWinnersCmd(),
		QuizAuditCmd(),
	)
	return cmd
}

// QuizCreateCmd registers a quiz. Owner only.
func QuizCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <id> <price>",
		Short: "Create a quiz with an entry price",
		Args:  cobra.ExactArgs(2),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			caller, err := e.caller(cmd)
			if err != nil {
				return err
			}
			id, err := parseQuizID(args[0])
			if err != nil {
				return err
			}
			price, err := e.amount(args[1])
			if err != nil {
				return err
			}
			name, _ := cmd.Flags().GetString("token")
			tok, err := e.token(name)
			if err != nil {
				return err
			}
			q, err := e.ledger.CreateQuiz(cmd.Context(), caller, id, price, tok.Name())
			if err != nil {
				return err
			}
			e.printf("created quiz %d: price %s %s\n", q.ID, e.format(q.Price), q.Token)
			return nil
		}),
	}
	cmd.Flags().String("token", "", "token the price is denominated in (default: first configured token)")
	return cmd
}

// QuizShowCmd prints one quiz record.
func QuizShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a quiz",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			id, err := parseQuizID(args[0])
			if err != nil {
				return err
			}
			q, err := e.ledger.Quiz(cmd.Context(), id)
			if err != nil {
				return err
			}
			e.printf("id:          %d\n", q.ID)
			e.printf("token:       %s\n", q.Token)
			e.printf("price:       %s\n", e.format(q.Price))
			e.printf("subscribers: %d\n", q.Subscribers)
			e.printf("pool:        %s\n", e.format(q.PoolBalance))
			e.printf("fees:        %s\n", e.format(q.FeeBalance))
			e.printf("collected:   %s\n", e.format(q.Collected))
			e.printf("paid out:    %s\n", e.format(q.PaidOut))
			e.printf("finalized:   %t\n", q.WinnersSet)
			if q.WinnersSet {
				e.printf("winners:     %d\n", q.WinnerCount)
				e.printf("share:       %s\n", e.format(q.Share))
			}
			return nil
		}),
	}
}

// QuizListCmd prints every quiz, one per line.
func QuizListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List quizzes",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, _ []string, e *env) error {
			qs, err := e.ledger.Quizzes(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTOKEN\tPRICE\tSUBSCRIBERS\tPOOL\tFEES\tFINALIZED")
			for _, q := range qs {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\t%t\n",
					q.ID, q.Token, e.format(q.Price), q.Subscribers, e.format(q.PoolBalance), e.format(q.FeeBalance), q.WinnersSet)
			}
			return w.Flush()
		}),
	}
}

// QuizSubscribeCmd pays the entry price for the caller.
func QuizSubscribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subscribe <id>",
		Short: "Subscribe the caller to a quiz (approve the escrow first)",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			caller, err := e.caller(cmd)
			if err != nil {
				return err
			}
			id, err := parseQuizID(args[0])
			if err != nil {
				return err
			}
			split, err := e.ledger.Subscribe(cmd.Context(), id, caller)
			if err != nil {
				return err
			}
			e.printf("subscribed %s to quiz %d: fee %s, pool %s\n",
				e.addr(caller), id, e.format(split.Fee), e.format(split.PoolShare))
			return nil
		}),
	}
}

// QuizSetWinnersCmd finalizes a quiz. Owner only.
func QuizSetWinnersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-winners <id> <address>...",
		Short: "Split the pool across the winners",
		Args:  cobra.MinimumNArgs(2),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			caller, err := e.caller(cmd)
			if err != nil {
				return err
			}
			id, err := parseQuizID(args[0])
			if err != nil {
				return err
			}
			winners, err := account.ParseList(strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			payout, err := e.ledger.SetWinners(cmd.Context(), caller, id, winners)
			if err != nil {
				return err
			}
			e.printf("quiz %d finalized: %d winners, share %s, remainder %s to fees\n",
				id, payout.Winners, e.format(payout.Share), e.format(payout.Remainder))
			return nil
		}),
	}
}

// QuizRedeemCmd pays the caller's winnings.
func QuizRedeemCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "redeem <id>",
		Short: "Redeem the caller's winnings",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			caller, err := e.caller(cmd)
			if err != nil {
				return err
			}
			id, err := parseQuizID(args[0])
			if err != nil {
				return err
			}
			amount, err := e.ledger.Redeem(cmd.Context(), id, caller)
			if err != nil {
				return err
			}
			e.printf("redeemed %s from quiz %d\n", e.format(amount), id)
			return nil
		}),
	}
}

// QuizWithdrawCmd pays accrued fees to the owner.
func QuizWithdrawCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw <id>",
		Short: "Withdraw a quiz's platform fees (owner)",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			caller, err := e.caller(cmd)
			if err != nil {
				return err
			}
			id, err := parseQuizID(args[0])
			if err != nil {
				return err
			}
			amount, err := e.ledger.Withdraw(cmd.Context(), id, caller)
			if err != nil {
				return err
			}
			e.printf("withdrew %s from quiz %d\n", e.format(amount), id)
			return nil
		}),
	}
}

// QuizWinnersCmd lists winner records.
func QuizWinnersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "winners <id>",
		Short: "List a quiz's winners",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			id, err := parseQuizID(args[0])
			if err != nil {
				return err
			}
			winners, err := e.ledger.Winners(cmd.Context(), id)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ADDRESS\tSHARE\tREDEEMABLE")
			for _, win := range winners {
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.addr(win.Account), e.format(win.WinShare), e.format(win.Redeemable))
			}
			return w.Flush()
		}),
	}
}

// QuizAuditCmd checks value conservation for one quiz or all of them.
func QuizAuditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit [id]",
		Short: "Verify that balances match escrowed funds",
		Args:  cobra.MaximumNArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			if len(args) == 0 {
				if err := e.ledger.AuditAll(cmd.Context()); err != nil {
					return err
				}
				for _, name := range e.reg.Names() {
					held, owed, err := e.ledger.AuditEscrow(cmd.Context(), name)
					if err != nil {
						return err
					}
					e.printf("%s: escrow holds %s, owes %s\n", name, e.format(held), e.format(owed))
				}
				e.printf("all quizzes balanced\n")
				return nil
			}
			id, err := parseQuizID(args[0])
			if err != nil {
				return err
			}
			if err := e.ledger.Audit(cmd.Context(), id); err != nil {
				return err
			}
			e.printf("quiz %d balanced\n", id)
			return nil
		}),
	}
}

