// Package service provides the business logic layer (use cases).
// AccountsService builds the dashboard and account views on top of the
// ledger; the submitters validate forms before anything reaches it.
package service

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/netbank-bfa-go/internal/domain"
	"github.com/boddenberg/netbank-bfa-go/internal/infra/observability"
	"github.com/boddenberg/netbank-bfa-go/internal/port"
)

var accountsTracer = otel.Tracer("service/accounts")

// AccountsService orchestrates read views and account creation via the ledger.
type AccountsService struct {
	ledger    port.LedgerGateway
	feed      *FeedAggregator
	feedLimit int
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewAccountsService creates a new accounts service. feedLimit is used when a
// caller asks for the dashboard without a limit.
func NewAccountsService(ledger port.LedgerGateway, feed *FeedAggregator, feedLimit int, metrics *observability.Metrics, logger *zap.Logger) *AccountsService {
	if feedLimit <= 0 {
		feedLimit = DefaultFeedLimit
	}
	return &AccountsService{ledger: ledger, feed: feed, feedLimit: feedLimit, metrics: metrics, logger: logger}
}

// Overview loads the accounts, their balance summary and the merged recent feed.
// Only the account list can fail the view; a missing history only shrinks the feed.
func (s *AccountsService) Overview(ctx context.Context, limit int) (*domain.Dashboard, error) {
	ctx, span := accountsTracer.Start(ctx, "AccountsService.Overview")
	defer span.End()

	accounts, err := s.ledger.GetAccounts(ctx)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("accounts.count", len(accounts)))

	if limit <= 0 {
		limit = s.feedLimit
	}
	feed := s.feed.Aggregate(ctx, accounts, limit)
	if feed.FailedAccounts > 0 {
		s.logger.Info("dashboard served with partial feed",
			zap.Int("failed_accounts", feed.FailedAccounts),
			zap.Int("accounts", len(accounts)),
		)
	}

	return &domain.Dashboard{
		Accounts: accounts,
		Summary:  SummarizeAccounts(accounts),
		Feed:     feed,
	}, nil
}

// List returns the signed-in user's accounts.
func (s *AccountsService) List(ctx context.Context) ([]domain.Account, error) {
	ctx, span := accountsTracer.Start(ctx, "AccountsService.List")
	defer span.End()

	return s.ledger.GetAccounts(ctx)
}

// Create opens a new account of a known type.
func (s *AccountsService) Create(ctx context.Context, req domain.CreateAccountRequest) (*domain.Account, error) {
	ctx, span := accountsTracer.Start(ctx, "AccountsService.Create")
	defer span.End()

	req.AccountType = domain.AccountType(strings.ToUpper(strings.TrimSpace(string(req.AccountType))))
	req.AccountName = strings.TrimSpace(req.AccountName)
	if !req.AccountType.Valid() {
		return nil, &domain.ErrValidation{Field: "accountType", Message: "Please select an account type"}
	}

	acct, err := s.ledger.CreateAccount(ctx, &req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("account created",
		zap.String("account_number", acct.AccountNumber),
		zap.String("account_type", string(acct.AccountType)),
	)
	return acct, nil
}

// Transactions returns one account's history tagged with that account, in ledger order.
func (s *AccountsService) Transactions(ctx context.Context, accountNumber string) ([]domain.TaggedTransaction, error) {
	ctx, span := accountsTracer.Start(ctx, "AccountsService.Transactions")
	defer span.End()

	accountNumber = strings.TrimSpace(accountNumber)
	if accountNumber == "" {
		return nil, &domain.ErrValidation{Field: "accountNumber", Message: "Please select an account"}
	}

	txs, err := s.ledger.GetTransactions(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	return tag(txs, accountNumber), nil
}

// History returns one account's transactions between from and to.
func (s *AccountsService) History(ctx context.Context, accountNumber string, from, to time.Time) ([]domain.TaggedTransaction, error) {
	ctx, span := accountsTracer.Start(ctx, "AccountsService.History")
	defer span.End()

	accountNumber = strings.TrimSpace(accountNumber)
	switch {
	case accountNumber == "":
		return nil, &domain.ErrValidation{Field: "accountNumber", Message: "Please select an account"}
	case from.IsZero() || to.IsZero():
		return nil, &domain.ErrValidation{Field: "dateRange", Message: "Please select both start and end dates"}
	case from.After(to):
		return nil, &domain.ErrValidation{Field: "dateRange", Message: "start date must not be after end date"}
	}

	txs, err := s.ledger.GetTransactionHistory(ctx, accountNumber, from, to)
	if err != nil {
		return nil, err
	}
	return tag(txs, accountNumber), nil
}

// CurrentUser returns the profile behind the session's credential.
func (s *AccountsService) CurrentUser(ctx context.Context) (*domain.User, error) {
	ctx, span := accountsTracer.Start(ctx, "AccountsService.CurrentUser")
	defer span.End()

	return s.ledger.GetCurrentUser(ctx)
}

func tag(txs []domain.Transaction, accountNumber string) []domain.TaggedTransaction {
	out := make([]domain.TaggedTransaction, len(txs))
	for i, tx := range txs {
		out[i] = domain.TaggedTransaction{Transaction: tx, OriginatingAccountNumber: accountNumber}
	}
	return out
}
