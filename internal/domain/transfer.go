package domain

import "github.com/shopspring/decimal"

// ============================================================
// Transfers & deposits
// ============================================================

// TransferInput is the raw transfer form as typed by the user.
type TransferInput struct {
	FromAccountNumber     string `json:"fromAccountNumber"`
	ToAccountNumber       string `json:"toAccountNumber"`
	ExternalAccountNumber string `json:"externalAccountNumber"`
	Amount                string `json:"amount"`
	Description           string `json:"description"`
	IFSCCode              string `json:"ifscCode"`
}

// TransferRequest is a validated transfer, ready to submit.
type TransferRequest struct {
	FromAccountNumber string
	ToAccountNumber   string
	Amount            decimal.Decimal
	Description       *string
	IFSCCode          *string
}

// TransferReceipt is the ledger's acknowledgement of a transfer.
type TransferReceipt struct {
	TransactionID string       `json:"transactionId"`
	Transaction   *Transaction `json:"transaction,omitempty"`
}

// DepositInput is the raw deposit form.
type DepositInput struct {
	AccountNumber string `json:"accountNumber"`
	Amount        string `json:"amount"`
	Description   string `json:"description"`
}
