package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ============================================================
// Accounts
// ============================================================

// AccountType is the product type of an account.
type AccountType string

const (
	AccountSavings          AccountType = "SAVINGS"
	AccountCurrent          AccountType = "CURRENT"
	AccountFixedDeposit     AccountType = "FIXED_DEPOSIT"
	AccountRecurringDeposit AccountType = "RECURRING_DEPOSIT"
)

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountSavings, AccountCurrent, AccountFixedDeposit, AccountRecurringDeposit:
		return true
	}
	return false
}

// Label is the human form of the type: the first underscore becomes a space.
func (t AccountType) Label() string {
	if t == "" {
		return "Unknown"
	}
	return strings.Replace(string(t), "_", " ", 1)
}

// Account is a read-only snapshot of a ledger account.
type Account struct {
	AccountNumber string      `json:"accountNumber"`
	AccountType   AccountType `json:"accountType"`
	AccountName   string      `json:"accountName,omitempty"`
	Balance       Numeric     `json:"balance"`
	IFSCCode      string      `json:"ifscCode,omitempty"`
	CreatedAt     Timestamp   `json:"createdAt"`
	LastUpdated   Timestamp   `json:"lastUpdated"`
}

// DisplayName returns the account name, or a label derived from the type.
func (a Account) DisplayName() string {
	if a.AccountName != "" {
		return a.AccountName
	}
	return a.AccountType.Label() + " Account"
}

// AccountSummary is the balance total across a user's accounts.
type AccountSummary struct {
	TotalBalance decimal.Decimal `json:"totalBalance"`
	AccountCount int             `json:"accountCount"`
}

// CreateAccountRequest opens a new account for the signed-in user.
type CreateAccountRequest struct {
	AccountType AccountType `json:"accountType"`
	AccountName string      `json:"accountName,omitempty"`
}

// User is the signed-in ledger user.
type User struct {
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// DisplayName returns the first name, falling back to the username.
func (u User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return u.Username
	}
	return "User"
}

// Dashboard is everything the landing view renders in one call.
type Dashboard struct {
	Accounts []Account      `json:"accounts"`
	Summary  AccountSummary `json:"summary"`
	Feed     Feed           `json:"feed"`
}
