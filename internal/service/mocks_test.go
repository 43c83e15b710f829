package service_test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/boddenberg/netbank-bfa-go/internal/domain"
)

// --- Mocks ---

type historyResult struct {
	txs   []domain.Transaction
	err   error
	delay time.Duration
	panic bool
}

type mockLedger struct {
	accounts    []domain.Account
	accountsErr error

	mu        sync.Mutex
	histories map[string]historyResult
	requested []string

	historyFrom, historyTo time.Time

	created    *domain.CreateAccountRequest
	createdErr error

	transfer     *domain.TransferRequest
	transferErr  error
	transferCall atomic.Int32

	depositAccount string
	depositAmount  decimal.Decimal
	depositErr     error
	depositCall    atomic.Int32

	user *domain.User
}

func (m *mockLedger) GetAccounts(context.Context) ([]domain.Account, error) {
	return m.accounts, m.accountsErr
}

func (m *mockLedger) GetTransactions(ctx context.Context, accountNumber string) ([]domain.Transaction, error) {
	m.mu.Lock()
	m.requested = append(m.requested, accountNumber)
	r := m.histories[accountNumber]
	m.mu.Unlock()

	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	if r.panic {
		panic("fetcher exploded")
	}
	if r.err != nil {
		return nil, r.err
	}
	// Hand out a copy so aggregation cannot alias the fixture.
	out := make([]domain.Transaction, len(r.txs))
	copy(out, r.txs)
	return out, nil
}

func (m *mockLedger) GetTransactionHistory(ctx context.Context, accountNumber string, from, to time.Time) ([]domain.Transaction, error) {
	m.historyFrom, m.historyTo = from, to
	return m.GetTransactions(ctx, accountNumber)
}

func (m *mockLedger) CreateAccount(_ context.Context, req *domain.CreateAccountRequest) (*domain.Account, error) {
	m.created = req
	if m.createdErr != nil {
		return nil, m.createdErr
	}
	return &domain.Account{AccountNumber: "NEW1", AccountType: req.AccountType, AccountName: req.AccountName}, nil
}

func (m *mockLedger) PostTransfer(_ context.Context, req *domain.TransferRequest) (*domain.TransferReceipt, error) {
	m.transferCall.Add(1)
	m.transfer = req
	if m.transferErr != nil {
		return nil, m.transferErr
	}
	return &domain.TransferReceipt{TransactionID: "TXN42"}, nil
}

func (m *mockLedger) PostDeposit(_ context.Context, accountNumber string, amount decimal.Decimal, _ string) (*domain.Transaction, error) {
	m.depositCall.Add(1)
	m.depositAccount = accountNumber
	m.depositAmount = amount
	if m.depositErr != nil {
		return nil, m.depositErr
	}
	return &domain.Transaction{ID: "9", TransactionType: domain.TransactionDeposit, Amount: amount}, nil
}

func (m *mockLedger) GetCurrentUser(context.Context) (*domain.User, error) {
	return m.user, nil
}

// --- Fixtures ---

func day(d int) domain.Timestamp {
	return domain.At(time.Date(2024, time.March, d, 12, 0, 0, 0, time.UTC))
}

func tx(id string, date domain.Timestamp) domain.Transaction {
	return domain.Transaction{
		ID:              domain.Identifier(id),
		TransactionType: domain.TransactionTransfer,
		Amount:          decimal.NewFromInt(1),
		TransactionDate: date,
	}
}

func accountsOf(numbers ...string) []domain.Account {
	out := make([]domain.Account, len(numbers))
	for i, n := range numbers {
		out[i] = domain.Account{AccountNumber: n, AccountType: domain.AccountSavings}
	}
	return out
}

func ids(txs []domain.TaggedTransaction) []string {
	out := make([]string, len(txs))
	for i, t := range txs {
		out[i] = string(t.ID)
	}
	return out
}
