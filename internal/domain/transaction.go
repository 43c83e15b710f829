package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ============================================================
// Transactions
// ============================================================

// TransactionType is the ledger's classification of a movement.
type TransactionType string

const (
	TransactionDeposit     TransactionType = "DEPOSIT"
	TransactionWithdrawal  TransactionType = "WITHDRAWAL"
	TransactionTransfer    TransactionType = "TRANSFER"
	TransactionBillPayment TransactionType = "BILL_PAYMENT"
	TransactionRecharge    TransactionType = "RECHARGE"
	TransactionInterest    TransactionType = "INTEREST"
)

// TransactionStatus is the settlement state of a transaction.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusFailed    TransactionStatus = "FAILED"
	StatusUnknown   TransactionStatus = "UNKNOWN"
)

// NormalizeStatus maps anything outside the known set to StatusUnknown.
func NormalizeStatus(s string) TransactionStatus {
	switch st := TransactionStatus(s); st {
	case StatusPending, StatusCompleted, StatusFailed:
		return st
	}
	return StatusUnknown
}

func (s *TransactionStatus) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		*s = StatusUnknown
		return nil
	}
	*s = NormalizeStatus(str)
	return nil
}

// Transaction is a read-only snapshot of one ledger movement.
type Transaction struct {
	ID                    Identifier        `json:"id"`
	TransactionID         string            `json:"transactionId,omitempty"`
	TransactionType       TransactionType   `json:"transactionType"`
	FromAccountNumber     string            `json:"fromAccountNumber,omitempty"`
	ToAccountNumber       string            `json:"toAccountNumber,omitempty"`
	ExternalAccountNumber string            `json:"externalAccountNumber,omitempty"`
	Amount                decimal.Decimal   `json:"amount"`
	Status                TransactionStatus `json:"status"`
	TransactionDate       Timestamp         `json:"transactionDate"`
	Description           string            `json:"description,omitempty"`
	ReferenceNumber       string            `json:"referenceNumber,omitempty"`
	Remarks               string            `json:"remarks,omitempty"`
}

// UnmarshalJSON reads amount leniently: a record whose amount is missing or not
// a number decodes with a zero amount instead of failing the whole history.
func (t *Transaction) UnmarshalJSON(b []byte) error {
	type plain Transaction
	var wire struct {
		plain
		Amount Numeric `json:"amount"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	*t = Transaction(wire.plain)
	t.Amount = wire.Amount.OrZero()
	return nil
}

// Direction is the sense of a transaction relative to one account.
type Direction int

const (
	DirectionNeutral Direction = iota
	DirectionCredit
	DirectionDebit
)

func (d Direction) String() string {
	switch d {
	case DirectionCredit:
		return "credit"
	case DirectionDebit:
		return "debit"
	default:
		return "neutral"
	}
}

// Sign is the prefix shown in front of the amount.
func (d Direction) Sign() string {
	switch d {
	case DirectionCredit:
		return "+"
	case DirectionDebit:
		return "-"
	default:
		return ""
	}
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Classify derives the direction of tx as seen from accountNumber's history.
// An empty account number never matches.
func Classify(tx Transaction, accountNumber string) Direction {
	switch tx.TransactionType {
	case TransactionDeposit:
		return DirectionCredit
	case TransactionWithdrawal:
		return DirectionDebit
	}

	if accountNumber == "" {
		return DirectionNeutral
	}
	switch accountNumber {
	case tx.FromAccountNumber:
		return DirectionDebit
	case tx.ToAccountNumber, tx.ExternalAccountNumber:
		return DirectionCredit
	}
	return DirectionNeutral
}

// DirectionLabel is the verb shown next to a classified transaction.
func DirectionLabel(tx Transaction, d Direction) string {
	switch {
	case tx.TransactionType == TransactionDeposit:
		return "Received"
	case tx.TransactionType == TransactionWithdrawal:
		return "Withdrawn"
	case d == DirectionDebit:
		return "Transferred"
	case d == DirectionCredit:
		return "Received"
	default:
		return ""
	}
}

// TaggedTransaction is a transaction annotated with the account whose history it came from.
// The tag is never sent back to the ledger.
type TaggedTransaction struct {
	Transaction
	OriginatingAccountNumber string `json:"-"`
}

// Direction classifies the transaction relative to its originating account.
func (t TaggedTransaction) Direction() Direction {
	return Classify(t.Transaction, t.OriginatingAccountNumber)
}

// Feed is the merged, ordered, bounded transaction list across accounts.
type Feed struct {
	Transactions []TaggedTransaction `json:"transactions"`
	// FailedAccounts counts per-account histories that could not be fetched.
	FailedAccounts int `json:"-"`
}
