package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/boddenberg/netbank-bfa-go/internal/domain"
	"github.com/boddenberg/netbank-bfa-go/internal/infra/observability"
	"github.com/boddenberg/netbank-bfa-go/internal/port"
)

// DepositSubmitter validates and posts deposits.
type DepositSubmitter struct {
	poster  port.DepositPoster
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewDepositSubmitter creates a new DepositSubmitter.
func NewDepositSubmitter(poster port.DepositPoster, metrics *observability.Metrics, logger *zap.Logger) *DepositSubmitter {
	return &DepositSubmitter{poster: poster, metrics: metrics, logger: logger}
}

// Submit posts a deposit. Bad input fails with *domain.ErrValidation before any
// request; ledger errors are returned unchanged.
func (s *DepositSubmitter) Submit(ctx context.Context, in domain.DepositInput) (*domain.Transaction, error) {
	ctx, span := transferTracer.Start(ctx, "DepositSubmitter.Submit")
	defer span.End()

	account := strings.TrimSpace(in.AccountNumber)
	if account == "" {
		return nil, &domain.ErrValidation{Field: "accountNumber", Message: "account number is required"}
	}
	amount, err := domain.ParseAmount("amount", in.Amount)
	if err != nil || !amount.IsPositive() {
		return nil, &domain.ErrValidation{Field: "amount", Message: "Please enter a valid amount"}
	}

	tx, err := s.poster.PostDeposit(ctx, account, amount, strings.TrimSpace(in.Description))
	s.metrics.IncrDeposit(domain.ErrorKind(err))
	if err != nil {
		return nil, err
	}

	s.logger.Info("deposit submitted",
		zap.String("account_number", account),
		zap.String("amount", amount.String()),
	)
	return tx, nil
}
