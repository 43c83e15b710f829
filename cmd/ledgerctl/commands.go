package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/boddenberg/netbank-bfa-go/internal/domain"
)

func (a *app) loginCmd() *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the bearer token used for ledger calls",
		Long:  "Store the bearer token used for ledger calls. Without --token the token is read from stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if token == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("no token given")
				}
				token = line
			}
			if err := a.tokens.Save(token); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed in.")
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "bearer token")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			a.tokens.Clear(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		},
	}
}

func (a *app) meCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := a.accounts.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Welcome, %s\n", user.DisplayName())
			if user.Email != "" {
				fmt.Fprintf(out, "Email: %s\n", user.Email)
			}
			return nil
		},
	}
}

func (a *app) accountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"ls"},
		Short:   "List accounts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			accounts, err := load(cmd, a.accounts.List)
			if err != nil {
				return err
			}
			renderAccounts(cmd.OutOrStdout(), accounts)
			return nil
		},
	}
}

func (a *app) createAccountCmd() *cobra.Command {
	var req domain.CreateAccountRequest
	var accountType string
	cmd := &cobra.Command{
		Use:   "create-account",
		Short: "Open a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req.AccountType = domain.AccountType(accountType)
			acct, err := a.accounts.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account created: %s (%s)\n", acct.AccountNumber, acct.DisplayName())
			return nil
		},
	}
	cmd.Flags().StringVar(&accountType, "type", "SAVINGS", "SAVINGS, CURRENT, FIXED_DEPOSIT or RECURRING_DEPOSIT")
	cmd.Flags().StringVar(&req.AccountName, "name", "", "optional account name")
	return cmd
}

func (a *app) dashboardCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show balances and the most recent transactions across accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dash, err := load(cmd, func(ctx context.Context) (*domain.Dashboard, error) {
				return a.accounts.Overview(ctx, limit)
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			renderAccounts(out, dash.Accounts)
			renderSummary(out, dash.Summary)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Recent transactions")
			renderTransactions(out, dash.Feed.Transactions)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "number of transactions (defaults to --feed-limit)")
	return cmd
}

func (a *app) transactionsCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:     "transactions ACCOUNT",
		Aliases: []string{"tx"},
		Short:   "List one account's transactions, optionally within a date range",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account := args[0]

			op := func(ctx context.Context) ([]domain.TaggedTransaction, error) {
				return a.accounts.Transactions(ctx, account)
			}
			if from != "" || to != "" {
				start, err := parseDay("from", from)
				if err != nil {
					return err
				}
				end, err := parseDay("to", to)
				if err != nil {
					return err
				}
				op = func(ctx context.Context) ([]domain.TaggedTransaction, error) {
					return a.accounts.History(ctx, account, start, end)
				}
			}

			txs, err := load(cmd, op)
			if err != nil {
				return err
			}
			renderTransactions(cmd.OutOrStdout(), txs)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "end date (YYYY-MM-DD)")
	return cmd
}

func (a *app) depositCmd() *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "deposit ACCOUNT AMOUNT",
		Short: "Deposit money into an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tx, err := a.deposits.Submit(cmd.Context(), domain.DepositInput{
				AccountNumber: args[0],
				Amount:        args[1],
				Description:   description,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deposit successful! New transaction: %s (%s)\n", tx.ID, tx.Amount.StringFixed(2))
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "optional description")
	return cmd
}

func (a *app) transferCmd() *cobra.Command {
	var in domain.TransferInput
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer money to an own account or an external one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			receipt, err := a.transfers.Submit(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Transfer successful! Transaction ID: %s\n", receipt.TransactionID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.FromAccountNumber, "from", "", "source account")
	f.StringVar(&in.ToAccountNumber, "to", "", "destination account")
	f.StringVar(&in.ExternalAccountNumber, "external", "", "external destination account, used when --to is empty")
	f.StringVar(&in.IFSCCode, "ifsc", "", "routing code of the external account")
	f.StringVar(&in.Amount, "amount", "", "amount to transfer")
	f.StringVar(&in.Description, "description", "", "optional description")
	return cmd
}

func parseDay(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	ts, err := domain.ParseTimestamp(raw)
	if err != nil {
		return time.Time{}, &domain.ErrValidation{Field: field, Message: "invalid date: " + raw}
	}
	return ts.Time, nil
}
