package client

import (
	"context"
	"net/http"

	"github.com/boddenberg/netbank-bfa-go/internal/domain"
)

// GetCurrentUser fetches the profile behind the current credential.
func (c *LedgerClient) GetCurrentUser(ctx context.Context) (*domain.User, error) {
	const op = "get_current_user"

	raw, err := c.do(ctx, request{op: op, method: http.MethodGet, path: "/api/auth/me"})
	if err != nil {
		return nil, err
	}
	return decodeObject[domain.User](op, raw)
}
