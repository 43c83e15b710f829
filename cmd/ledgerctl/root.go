package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/boddenberg/netbank-bfa-go/internal/domain"
	"github.com/boddenberg/netbank-bfa-go/internal/infra/client"
	"github.com/boddenberg/netbank-bfa-go/internal/infra/observability"
	"github.com/boddenberg/netbank-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/netbank-bfa-go/internal/service"
)

// app carries the services every subcommand runs against.
type app struct {
	ledgerURL string
	tokenFile string
	timeout   time.Duration
	logLevel  string
	feedLimit int

	tokens    *fileTokens
	accounts  *service.AccountsService
	transfers *service.TransferSubmitter
	deposits  *service.DepositSubmitter
	logger    *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Inspect accounts and move money through the ledger API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.init(cmd.ErrOrStderr())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.ledgerURL, "ledger-url", envOr("LEDGER_API_URL", "http://localhost:8080"), "ledger API base URL")
	flags.StringVar(&a.tokenFile, "token-file", envOr("LEDGERCTL_TOKEN_FILE", defaultTokenFile()), "file holding the bearer token")
	flags.DurationVar(&a.timeout, "timeout", 10*time.Second, "HTTP timeout for ledger calls")
	flags.StringVar(&a.logLevel, "log-level", "error", "log level (debug, info, warn, error)")
	flags.IntVar(&a.feedLimit, "feed-limit", service.DefaultFeedLimit, "transactions shown on the dashboard")

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.meCmd(),
		a.accountsCmd(),
		a.createAccountCmd(),
		a.dashboardCmd(),
		a.transactionsCmd(),
		a.depositCmd(),
		a.transferCmd(),
	)

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w\nsee '%s --help'", err, cmd.CommandPath())
	})
	return root
}

// execute runs root and prints a failure once, without usage noise.
func execute(root *cobra.Command) error {
	err := root.Execute()
	if err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "error:", describe(err))
	}
	return err
}

func (a *app) init(stderr io.Writer) {
	a.logger = observability.NewLogger(a.logLevel)
	a.tokens = &fileTokens{path: a.tokenFile}

	metrics := observability.NewMetrics()
	breakerCfg := resilience.DefaultBreakerConfig()
	breakerCfg.IsFailure = client.IsBreakerFailure

	ledger := client.NewLedgerClient(
		&http.Client{Timeout: a.timeout},
		client.Config{BaseURL: strings.TrimRight(a.ledgerURL, "/")},
		a.tokens,
		printNavigator{out: stderr},
		resilience.NewCircuitBreaker("ledger-api", breakerCfg, a.logger),
		metrics,
		a.logger,
	)

	feed := service.NewFeedAggregator(ledger.WithoutSessionExpiry(), metrics, a.logger)
	a.accounts = service.NewAccountsService(ledger, feed, a.feedLimit, metrics, a.logger)
	a.transfers = service.NewTransferSubmitter(ledger, metrics, a.logger)
	a.deposits = service.NewDepositSubmitter(ledger, metrics, a.logger)
}

// load runs op once and, while it keeps failing with a recoverable error,
// offers the user another attempt.
func load[T any](cmd *cobra.Command, op func(ctx context.Context) (T, error)) (T, error) {
	retry := resilience.NewRetryableOperation(op)
	in := bufio.NewReader(cmd.InOrStdin())

	for {
		v, err := retry.Run(cmd.Context())
		if !retry.CanRetry() || !retryable(retry.LastErr()) {
			return v, err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Failed to load (attempt %d): %s\nRetry? [y/N] ", retry.Attempts(), describe(retry.LastErr()))
		answer, _ := in.ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			return v, err
		}
	}
}

func retryable(err error) bool {
	var (
		network   *domain.ErrNetwork
		server    *domain.ErrServer
		malformed *domain.ErrMalformedResponse
	)
	return errors.As(err, &network) || errors.As(err, &server) || errors.As(err, &malformed)
}

// describe turns a domain error into the line shown to the user.
func describe(err error) string {
	var (
		unauthenticated *domain.ErrUnauthenticated
		expired         *domain.ErrAuthExpired
		rejected        *domain.ErrTransferRejected
		server          *domain.ErrServer
		network         *domain.ErrNetwork
	)
	switch {
	case errors.As(err, &unauthenticated):
		return "not signed in; run `ledgerctl login`"
	case errors.As(err, &expired):
		return "session expired"
	case errors.As(err, &rejected):
		return rejected.Error()
	case errors.As(err, &server):
		if server.Message != "" {
			return server.Message
		}
		return fmt.Sprintf("ledger request failed (%d)", server.Status)
	case errors.As(err, &network):
		return "ledger service unavailable"
	default:
		return err.Error()
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
