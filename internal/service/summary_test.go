package service_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/boddenberg/netbank-bfa-go/internal/domain"
	"github.com/boddenberg/netbank-bfa-go/internal/service"
)

func TestSummarizeAccounts(t *testing.T) {
	tests := []struct {
		name      string
		balances  []string
		wantTotal string
	}{
		{"numeric and garbage", []string{"100.5", "bad"}, "100.5"},
		{"missing balance", []string{"", "20"}, "20"},
		{"exact decimals", []string{"0.1", "0.2"}, "0.3"},
		{"negative", []string{"-50", "75.25"}, "25.25"},
		{"no accounts", nil, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := make([]domain.Account, len(tt.balances))
			for i, b := range tt.balances {
				accounts[i] = domain.Account{AccountNumber: "A", Balance: domain.NewNumeric(b)}
			}

			got := service.SummarizeAccounts(accounts)

			assert.True(t, decimal.RequireFromString(tt.wantTotal).Equal(got.TotalBalance),
				"total: want %s, got %s", tt.wantTotal, got.TotalBalance)
			assert.Equal(t, len(tt.balances), got.AccountCount)
		})
	}
}
