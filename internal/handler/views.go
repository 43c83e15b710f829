package handler

import (
	"github.com/shopspring/decimal"

	"github.com/boddenberg/netbank-bfa-go/internal/domain"
)

// ============================================================
// JSON views rendered to the browser
// ============================================================

type accountView struct {
	AccountNumber    string             `json:"accountNumber"`
	AccountType      domain.AccountType `json:"accountType"`
	AccountTypeLabel string             `json:"accountTypeLabel"`
	DisplayName      string             `json:"displayName"`
	Balance          decimal.Decimal    `json:"balance"`
	IFSCCode         string             `json:"ifscCode,omitempty"`
	CreatedAt        domain.Timestamp   `json:"createdAt"`
}

func newAccountView(a domain.Account) accountView {
	return accountView{
		AccountNumber:    a.AccountNumber,
		AccountType:      a.AccountType,
		AccountTypeLabel: a.AccountType.Label(),
		DisplayName:      a.DisplayName(),
		Balance:          a.Balance.OrZero(),
		IFSCCode:         a.IFSCCode,
		CreatedAt:        a.CreatedAt,
	}
}

func newAccountViews(accounts []domain.Account) []accountView {
	out := make([]accountView, len(accounts))
	for i, a := range accounts {
		out[i] = newAccountView(a)
	}
	return out
}

type summaryView struct {
	TotalBalance decimal.Decimal `json:"totalBalance"`
	AccountCount int             `json:"accountCount"`
}

type transactionView struct {
	ID                    domain.Identifier        `json:"id"`
	TransactionID         string                   `json:"transactionId,omitempty"`
	TransactionType       domain.TransactionType   `json:"transactionType"`
	FromAccountNumber     string                   `json:"fromAccountNumber,omitempty"`
	ToAccountNumber       string                   `json:"toAccountNumber,omitempty"`
	ExternalAccountNumber string                   `json:"externalAccountNumber,omitempty"`
	Amount                decimal.Decimal          `json:"amount"`
	SignedAmount          string                   `json:"signedAmount"`
	Direction             domain.Direction         `json:"direction"`
	Label                 string                   `json:"label,omitempty"`
	Status                domain.TransactionStatus `json:"status"`
	TransactionDate       domain.Timestamp         `json:"transactionDate"`
	Description           string                   `json:"description,omitempty"`
	ReferenceNumber       string                   `json:"referenceNumber,omitempty"`
	AccountNumber         string                   `json:"accountNumber"`
}

func newTransactionView(t domain.TaggedTransaction) transactionView {
	d := t.Direction()
	return transactionView{
		ID:                    t.ID,
		TransactionID:         t.TransactionID,
		TransactionType:       t.TransactionType,
		FromAccountNumber:     t.FromAccountNumber,
		ToAccountNumber:       t.ToAccountNumber,
		ExternalAccountNumber: t.ExternalAccountNumber,
		Amount:                t.Amount,
		SignedAmount:          d.Sign() + t.Amount.Abs().StringFixed(2),
		Direction:             d,
		Label:                 domain.DirectionLabel(t.Transaction, d),
		Status:                t.Status,
		TransactionDate:       t.TransactionDate,
		Description:           t.Description,
		ReferenceNumber:       t.ReferenceNumber,
		AccountNumber:         t.OriginatingAccountNumber,
	}
}

func newTransactionViews(txs []domain.TaggedTransaction) []transactionView {
	out := make([]transactionView, len(txs))
	for i, t := range txs {
		out[i] = newTransactionView(t)
	}
	return out
}

type dashboardView struct {
	Accounts           []accountView     `json:"accounts"`
	Summary            summaryView       `json:"summary"`
	RecentTransactions []transactionView `json:"recentTransactions"`
}

type userView struct {
	Username    string `json:"username"`
	Email       string `json:"email,omitempty"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	DisplayName string `json:"displayName"`
}

type transferResponse struct {
	TransactionID string `json:"transactionId"`
	Message       string `json:"message"`
}
