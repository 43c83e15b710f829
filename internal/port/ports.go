// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"time"

	"github.com/boddenberg/netbank-bfa-go/internal/domain"

	"github.com/shopspring/decimal"
)

// TokenProvider holds the bearer credential for the current user.
type TokenProvider interface {
	// Token returns the credential, or false when none is held.
	Token(ctx context.Context) (string, bool)
	// Clear forgets the credential.
	Clear(ctx context.Context)
}

// Navigator redirects the user to another view.
type Navigator interface {
	GoTo(ctx context.Context, path string)
}

// AccountsFetcher lists the signed-in user's accounts.
type AccountsFetcher interface {
	GetAccounts(ctx context.Context) ([]domain.Account, error)
}

// TransactionsFetcher retrieves one account's transaction history.
type TransactionsFetcher interface {
	GetTransactions(ctx context.Context, accountNumber string) ([]domain.Transaction, error)
}

// TransferPoster submits a validated transfer.
type TransferPoster interface {
	PostTransfer(ctx context.Context, req *domain.TransferRequest) (*domain.TransferReceipt, error)
}

// DepositPoster submits a deposit.
type DepositPoster interface {
	PostDeposit(ctx context.Context, accountNumber string, amount decimal.Decimal, description string) (*domain.Transaction, error)
}

// LedgerGateway is every ledger operation the BFA uses.
type LedgerGateway interface {
	AccountsFetcher
	TransactionsFetcher
	TransferPoster
	DepositPoster

	GetTransactionHistory(ctx context.Context, accountNumber string, from, to time.Time) ([]domain.Transaction, error)
	CreateAccount(ctx context.Context, req *domain.CreateAccountRequest) (*domain.Account, error)
	GetCurrentUser(ctx context.Context) (*domain.User, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	SetWithTTL(key string, value T, ttl time.Duration)
	Delete(key string)
}
