package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/boddenberg/netbank-bfa-go/internal/domain"
)

// historyTimeLayout matches what browsers send: millisecond precision, UTC "Z".
const historyTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// GetTransactions fetches one account's transaction history.
func (c *LedgerClient) GetTransactions(ctx context.Context, accountNumber string) ([]domain.Transaction, error) {
	const op = "get_transactions"

	raw, err := c.do(ctx, request{
		op:     op,
		method: http.MethodGet,
		path:   "/api/transactions/" + url.PathEscape(accountNumber),
		attrs:  []attribute.KeyValue{attribute.String("account.number", accountNumber)},
	})
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Transaction](op, raw)
}

// GetTransactionHistory fetches one account's transactions between from and to.
func (c *LedgerClient) GetTransactionHistory(ctx context.Context, accountNumber string, from, to time.Time) ([]domain.Transaction, error) {
	const op = "get_transaction_history"

	q := url.Values{}
	q.Set("startDate", from.UTC().Format(historyTimeLayout))
	q.Set("endDate", to.UTC().Format(historyTimeLayout))

	raw, err := c.do(ctx, request{
		op:     op,
		method: http.MethodGet,
		path:   "/api/transactions/" + url.PathEscape(accountNumber) + "/history",
		query:  q,
		attrs:  []attribute.KeyValue{attribute.String("account.number", accountNumber)},
	})
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Transaction](op, raw)
}

type depositPayload struct {
	AccountNumber string      `json:"accountNumber"`
	Amount        json.Number `json:"amount"`
	Description   *string     `json:"description"`
}

// PostDeposit credits amount to accountNumber.
func (c *LedgerClient) PostDeposit(ctx context.Context, accountNumber string, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	const op = "post_deposit"

	payload := depositPayload{
		AccountNumber: accountNumber,
		Amount:        json.Number(amount.String()),
	}
	if description != "" {
		payload.Description = &description
	}

	raw, err := c.do(ctx, request{
		op:      op,
		method:  http.MethodPost,
		path:    "/api/transactions/deposit",
		payload: payload,
		attrs:   []attribute.KeyValue{attribute.String("account.number", accountNumber)},
	})
	if err != nil {
		return nil, err
	}
	return decodeObject[domain.Transaction](op, raw)
}
