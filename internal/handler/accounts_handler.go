package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"

	"github.com/boddenberg/netbank-bfa-go/internal/domain"
	"github.com/boddenberg/netbank-bfa-go/internal/service"
)

// ============================================================
// Accounts Handlers
// ============================================================

func currentUserHandler(svc *service.AccountsService, errs *errorMapper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/me")
		defer span.End()

		user, err := svc.CurrentUser(ctx)
		if err != nil {
			errs.handle(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, userView{
			Username:    user.Username,
			Email:       user.Email,
			FirstName:   user.FirstName,
			LastName:    user.LastName,
			DisplayName: user.DisplayName(),
		})
	}
}

func dashboardHandler(svc *service.AccountsService, errs *errorMapper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/dashboard")
		defer span.End()

		dash, err := svc.Overview(ctx, parseLimit(r))
		if err != nil {
			errs.handle(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, dashboardView{
			Accounts: newAccountViews(dash.Accounts),
			Summary: summaryView{
				TotalBalance: dash.Summary.TotalBalance,
				AccountCount: dash.Summary.AccountCount,
			},
			RecentTransactions: newTransactionViews(dash.Feed.Transactions),
		})
	}
}

func listAccountsHandler(svc *service.AccountsService, errs *errorMapper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/accounts")
		defer span.End()

		accounts, err := svc.List(ctx)
		if err != nil {
			errs.handle(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newAccountViews(accounts))
	}
}

func createAccountHandler(svc *service.AccountsService, errs *errorMapper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/accounts")
		defer span.End()

		var req domain.CreateAccountRequest
		if err := decodeBody(r, &req); err != nil {
			errs.handle(w, r, err)
			return
		}

		acct, err := svc.Create(ctx, req)
		if err != nil {
			errs.handle(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, newAccountView(*acct))
	}
}

func accountTransactionsHandler(svc *service.AccountsService, errs *errorMapper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/accounts/{accountNumber}/transactions")
		defer span.End()

		accountNumber := chi.URLParam(r, "accountNumber")
		span.SetAttributes(attribute.String("account.number", accountNumber))

		txs, err := svc.Transactions(ctx, accountNumber)
		if err != nil {
			errs.handle(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newTransactionViews(txs))
	}
}

func accountHistoryHandler(svc *service.AccountsService, errs *errorMapper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/accounts/{accountNumber}/transactions/history")
		defer span.End()

		accountNumber := chi.URLParam(r, "accountNumber")
		span.SetAttributes(attribute.String("account.number", accountNumber))

		from, err := parseDateParam(r, "startDate")
		if err != nil {
			errs.handle(w, r, err)
			return
		}
		to, err := parseDateParam(r, "endDate")
		if err != nil {
			errs.handle(w, r, err)
			return
		}

		txs, err := svc.History(ctx, accountNumber, from.Time, to.Time)
		if err != nil {
			errs.handle(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newTransactionViews(txs))
	}
}

// parseDateParam reads an optional date query parameter. Absent yields the zero time.
func parseDateParam(r *http.Request, name string) (domain.Timestamp, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return domain.Timestamp{}, nil
	}
	ts, err := domain.ParseTimestamp(raw)
	if err != nil {
		return domain.Timestamp{}, &domain.ErrValidation{Field: name, Message: "invalid date: " + raw}
	}
	return ts, nil
}
