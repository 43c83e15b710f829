package client

import (
	"context"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel/attribute"

	"github.com/boddenberg/netbank-bfa-go/internal/domain"
)

// GetAccounts lists the signed-in user's accounts.
func (c *LedgerClient) GetAccounts(ctx context.Context) ([]domain.Account, error) {
	const op = "get_accounts"

	raw, err := c.do(ctx, request{op: op, method: http.MethodGet, path: "/api/accounts"})
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Account](op, raw)
}

// CreateAccount opens a new account. The ledger takes the fields as query parameters.
func (c *LedgerClient) CreateAccount(ctx context.Context, req *domain.CreateAccountRequest) (*domain.Account, error) {
	const op = "create_account"

	q := url.Values{}
	q.Set("accountType", string(req.AccountType))
	if req.AccountName != "" {
		q.Set("accountName", req.AccountName)
	}

	raw, err := c.do(ctx, request{
		op:     op,
		method: http.MethodPost,
		path:   "/api/accounts",
		query:  q,
		attrs:  []attribute.KeyValue{attribute.String("account.type", string(req.AccountType))},
	})
	if err != nil {
		return nil, err
	}
	return decodeObject[domain.Account](op, raw)
}
