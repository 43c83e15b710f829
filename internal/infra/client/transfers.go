package client

import (
	"context"
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/boddenberg/netbank-bfa-go/internal/domain"
)

// NoTransactionID is reported when the ledger acknowledges a transfer without an id.
const NoTransactionID = "N/A"

type transferPayload struct {
	FromAccountNumber string      `json:"fromAccountNumber"`
	ToAccountNumber   string      `json:"toAccountNumber"`
	Amount            json.Number `json:"amount"`
	Description       *string     `json:"description"`
	IFSCCode          *string     `json:"ifscCode"`
}

// PostTransfer submits a validated transfer.
// Any 2xx counts as accepted, even when the body carries no usable id.
func (c *LedgerClient) PostTransfer(ctx context.Context, req *domain.TransferRequest) (*domain.TransferReceipt, error) {
	const op = "post_transfer"

	raw, err := c.do(ctx, request{
		op:     op,
		method: http.MethodPost,
		path:   "/api/transactions/transfer",
		payload: transferPayload{
			FromAccountNumber: req.FromAccountNumber,
			ToAccountNumber:   req.ToAccountNumber,
			Amount:            json.Number(req.Amount.String()),
			Description:       req.Description,
			IFSCCode:          req.IFSCCode,
		},
		attrs: []attribute.KeyValue{
			attribute.String("transfer.from", req.FromAccountNumber),
			attribute.String("transfer.to", req.ToAccountNumber),
		},
	})
	if err != nil {
		return nil, err
	}

	receipt := &domain.TransferReceipt{TransactionID: NoTransactionID}
	tx, err := decodeObject[domain.Transaction](op, raw)
	if err != nil {
		c.logger.Debug("transfer accepted without a readable body")
		return receipt, nil
	}

	receipt.Transaction = tx
	switch {
	case tx.ID != "":
		receipt.TransactionID = string(tx.ID)
	case tx.TransactionID != "":
		receipt.TransactionID = tx.TransactionID
	}
	return receipt, nil
}
