package service

import (
	"context"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/netbank-bfa-go/internal/domain"
	"github.com/boddenberg/netbank-bfa-go/internal/infra/observability"
	"github.com/boddenberg/netbank-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/netbank-bfa-go/internal/port"
)

// DefaultFeedLimit is the feed length used when the caller does not ask for one.
const DefaultFeedLimit = 10

var feedTracer = otel.Tracer("service/feed")

// FeedAggregator merges the recent activity of several accounts into one feed.
type FeedAggregator struct {
	fetcher port.TransactionsFetcher
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewFeedAggregator creates a new FeedAggregator. The fetcher should not expire
// the session on a 401: a single account's rejection only drops that account.
func NewFeedAggregator(fetcher port.TransactionsFetcher, metrics *observability.Metrics, logger *zap.Logger) *FeedAggregator {
	return &FeedAggregator{fetcher: fetcher, metrics: metrics, logger: logger}
}

// Aggregate fetches every account's history concurrently, tags each record with
// the account it came from, and returns the newest limit records. It never fails:
// an account whose fetch fails contributes nothing.
func (a *FeedAggregator) Aggregate(ctx context.Context, accounts []domain.Account, limit int) domain.Feed {
	ctx, span := feedTracer.Start(ctx, "FeedAggregator.Aggregate")
	defer span.End()
	span.SetAttributes(attribute.Int("feed.accounts", len(accounts)))

	if limit <= 0 {
		limit = DefaultFeedLimit
	}

	results := resilience.SettleAll(ctx, len(accounts), func(ctx context.Context, i int) ([]domain.Transaction, error) {
		return a.fetcher.GetTransactions(ctx, accounts[i].AccountNumber)
	})

	merged := make([]domain.TaggedTransaction, 0)
	failed := 0
	for i, r := range results {
		acct := accounts[i].AccountNumber
		if r.Err != nil {
			failed++
			kind := domain.ErrorKind(r.Err)
			a.metrics.IncrFeedAccountFailure(kind)
			a.logger.Warn("account history unavailable, leaving it out of the feed",
				zap.String("account_number", acct),
				zap.String("kind", kind),
				zap.Error(r.Err),
			)
			continue
		}
		for _, tx := range r.Value {
			merged = append(merged, domain.TaggedTransaction{
				Transaction:              tx,
				OriginatingAccountNumber: acct,
			})
		}
	}

	slices.SortStableFunc(merged, func(x, y domain.TaggedTransaction) int {
		return newestFirst(x.TransactionDate, y.TransactionDate)
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}

	span.SetAttributes(
		attribute.Int("feed.failed_accounts", failed),
		attribute.Int("feed.size", len(merged)),
	)

	return domain.Feed{Transactions: merged, FailedAccounts: failed}
}

// newestFirst orders later dates first; undated records go last.
func newestFirst(x, y domain.Timestamp) int {
	switch {
	case x.Valid && y.Valid:
		return y.Time.Compare(x.Time)
	case x.Valid:
		return -1
	case y.Valid:
		return 1
	default:
		return 0
	}
}
