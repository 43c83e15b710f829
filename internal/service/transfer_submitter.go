package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/netbank-bfa-go/internal/domain"
	"github.com/boddenberg/netbank-bfa-go/internal/infra/observability"
	"github.com/boddenberg/netbank-bfa-go/internal/port"
)

var transferTracer = otel.Tracer("service/transfer")

// TransferSubmitter validates a transfer form and hands it to the ledger.
// It does not refresh balances afterwards; callers reload the dashboard.
type TransferSubmitter struct {
	poster  port.TransferPoster
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewTransferSubmitter creates a new TransferSubmitter.
func NewTransferSubmitter(poster port.TransferPoster, metrics *observability.Metrics, logger *zap.Logger) *TransferSubmitter {
	return &TransferSubmitter{poster: poster, metrics: metrics, logger: logger}
}

// Submit validates in and posts it. A rejected form never reaches the network.
// Ledger errors are returned unchanged.
func (s *TransferSubmitter) Submit(ctx context.Context, in domain.TransferInput) (*domain.TransferReceipt, error) {
	ctx, span := transferTracer.Start(ctx, "TransferSubmitter.Submit")
	defer span.End()

	req, err := ValidateTransfer(in)
	if err != nil {
		var rejected *domain.ErrTransferRejected
		if errors.As(err, &rejected) {
			s.metrics.IncrTransferRejected(rejected.Reason)
			span.SetAttributes(attribute.String("transfer.rejected", string(rejected.Reason)))
			s.logger.Info("transfer rejected", zap.String("reason", string(rejected.Reason)))
		}
		return nil, err
	}

	receipt, err := s.poster.PostTransfer(ctx, req)
	s.metrics.IncrTransfer(domain.ErrorKind(err))
	if err != nil {
		s.logger.Warn("transfer failed",
			zap.String("from", req.FromAccountNumber),
			zap.String("kind", domain.ErrorKind(err)),
			zap.Error(err),
		)
		return nil, err
	}

	span.SetAttributes(attribute.String("transfer.id", receipt.TransactionID))
	s.logger.Info("transfer submitted",
		zap.String("from", req.FromAccountNumber),
		zap.String("to", req.ToAccountNumber),
		zap.String("amount", req.Amount.String()),
		zap.String("transaction_id", receipt.TransactionID),
	)
	return receipt, nil
}
