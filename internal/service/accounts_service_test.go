package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/boddenberg/netbank-bfa-go/internal/domain"
	"github.com/boddenberg/netbank-bfa-go/internal/infra/observability"
	"github.com/boddenberg/netbank-bfa-go/internal/service"
)

func newAccountsService(ledger *mockLedger, feedLimit int) *service.AccountsService {
	metrics := observability.NewMetrics()
	feed := service.NewFeedAggregator(ledger, metrics, zap.NewNop())
	return service.NewAccountsService(ledger, feed, feedLimit, metrics, zap.NewNop())
}

func TestOverview_Success(t *testing.T) {
	ledger := &mockLedger{
		accounts: []domain.Account{
			{AccountNumber: "A1", Balance: domain.NewNumeric("100.5")},
			{AccountNumber: "A2", Balance: domain.NewNumeric("bad")},
		},
		histories: map[string]historyResult{
			"A1": {txs: []domain.Transaction{tx("1", day(1)), tx("2", day(3))}},
			"A2": {err: &domain.ErrServer{Status: 500}},
		},
	}

	dash, err := newAccountsService(ledger, 0).Overview(context.Background(), 0)
	require.NoError(t, err)

	assert.Len(t, dash.Accounts, 2)
	assert.True(t, decimal.RequireFromString("100.5").Equal(dash.Summary.TotalBalance))
	assert.Equal(t, 2, dash.Summary.AccountCount)
	assert.Equal(t, []string{"2", "1"}, ids(dash.Feed.Transactions))
	assert.Equal(t, 1, dash.Feed.FailedAccounts)
}

func TestOverview_UsesConfiguredLimit(t *testing.T) {
	ledger := &mockLedger{
		accounts: accountsOf("A1"),
		histories: map[string]historyResult{
			"A1": {txs: []domain.Transaction{tx("1", day(1)), tx("2", day(2)), tx("3", day(3))}},
		},
	}
	svc := newAccountsService(ledger, 2)

	dash, err := svc.Overview(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "2"}, ids(dash.Feed.Transactions))

	dash, err = svc.Overview(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, ids(dash.Feed.Transactions))
}

func TestOverview_AccountListFailureFailsTheView(t *testing.T) {
	expired := &domain.ErrAuthExpired{}
	ledger := &mockLedger{accountsErr: expired}

	dash, err := newAccountsService(ledger, 0).Overview(context.Background(), 0)

	assert.Nil(t, dash)
	assert.Same(t, expired, err)
	assert.Empty(t, ledger.requested, "no history is fetched without an account list")
}

func TestCreate(t *testing.T) {
	ledger := &mockLedger{}
	svc := newAccountsService(ledger, 0)

	acct, err := svc.Create(context.Background(), domain.CreateAccountRequest{AccountType: " savings ", AccountName: "  Rainy Day "})
	require.NoError(t, err)

	assert.Equal(t, "NEW1", acct.AccountNumber)
	assert.Equal(t, domain.AccountSavings, ledger.created.AccountType)
	assert.Equal(t, "Rainy Day", ledger.created.AccountName)
}

func TestCreate_UnknownType(t *testing.T) {
	ledger := &mockLedger{}

	_, err := newAccountsService(ledger, 0).Create(context.Background(), domain.CreateAccountRequest{AccountType: "CRYPTO"})

	var validation *domain.ErrValidation
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "accountType", validation.Field)
	assert.Nil(t, ledger.created)
}

func TestTransactions_TagsAndKeepsLedgerOrder(t *testing.T) {
	ledger := &mockLedger{histories: map[string]historyResult{
		"A1": {txs: []domain.Transaction{tx("old", day(1)), tx("new", day(9))}},
	}}

	txs, err := newAccountsService(ledger, 0).Transactions(context.Background(), " A1 ")
	require.NoError(t, err)

	assert.Equal(t, []string{"old", "new"}, ids(txs))
	for _, tt := range txs {
		assert.Equal(t, "A1", tt.OriginatingAccountNumber)
	}
}

func TestHistory_Validation(t *testing.T) {
	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := newAccountsService(&mockLedger{}, 0)

	tests := []struct {
		name     string
		account  string
		from, to time.Time
		field    string
	}{
		{"missing account", "", to, from, "accountNumber"},
		{"missing dates", "A1", time.Time{}, to, "dateRange"},
		{"inverted range", "A1", from, to, "dateRange"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.History(context.Background(), tt.account, tt.from, tt.to)

			var validation *domain.ErrValidation
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tt.field, validation.Field)
		})
	}
}

func TestHistory_PassesRange(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	ledger := &mockLedger{histories: map[string]historyResult{
		"A1": {txs: []domain.Transaction{tx("1", day(1))}},
	}}

	txs, err := newAccountsService(ledger, 0).History(context.Background(), "A1", from, to)
	require.NoError(t, err)

	assert.Len(t, txs, 1)
	assert.Equal(t, from, ledger.historyFrom)
	assert.Equal(t, to, ledger.historyTo)
}

func TestDepositSubmitter(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		ledger := &mockLedger{}
		sub := service.NewDepositSubmitter(ledger, observability.NewMetrics(), zap.NewNop())

		got, err := sub.Submit(context.Background(), domain.DepositInput{AccountNumber: " A1 ", Amount: "500"})
		require.NoError(t, err)

		assert.Equal(t, domain.TransactionDeposit, got.TransactionType)
		assert.Equal(t, "A1", ledger.depositAccount)
		assert.True(t, decimal.NewFromInt(500).Equal(ledger.depositAmount))
	})

	for name, in := range map[string]domain.DepositInput{
		"missing account": {Amount: "10"},
		"bad amount":      {AccountNumber: "A1", Amount: "lots"},
		"zero amount":     {AccountNumber: "A1", Amount: "0"},
	} {
		t.Run(name, func(t *testing.T) {
			ledger := &mockLedger{}
			sub := service.NewDepositSubmitter(ledger, observability.NewMetrics(), zap.NewNop())

			_, err := sub.Submit(context.Background(), in)

			var validation *domain.ErrValidation
			assert.ErrorAs(t, err, &validation)
			assert.Zero(t, ledger.depositCall.Load())
		})
	}
}
