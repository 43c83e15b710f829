package service

import (
	"github.com/shopspring/decimal"

	"github.com/boddenberg/netbank-bfa-go/internal/domain"
)

// SummarizeAccounts totals the balances of accounts. A missing or non-numeric
// balance counts as zero; the account is still counted.
func SummarizeAccounts(accounts []domain.Account) domain.AccountSummary {
	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.Balance.OrZero())
	}
	return domain.AccountSummary{
		TotalBalance: total,
		AccountCount: len(accounts),
	}
}
