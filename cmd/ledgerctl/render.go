package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/boddenberg/netbank-bfa-go/internal/domain"
)

const dateLayout = "2006-01-02 15:04"

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func renderAccounts(out io.Writer, accounts []domain.Account) {
	if len(accounts) == 0 {
		fmt.Fprintln(out, "No accounts.")
		return
	}
	tw := newTable(out)
	fmt.Fprintln(tw, "ACCOUNT\tTYPE\tNAME\tBALANCE")
	for _, a := range accounts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.AccountNumber, a.AccountType.Label(), a.DisplayName(), a.Balance.OrZero().StringFixed(2))
	}
	tw.Flush()
}

func renderSummary(out io.Writer, s domain.AccountSummary) {
	fmt.Fprintf(out, "Total balance: %s across %d account(s)\n", s.TotalBalance.StringFixed(2), s.AccountCount)
}

func renderTransactions(out io.Writer, txs []domain.TaggedTransaction) {
	if len(txs) == 0 {
		fmt.Fprintln(out, "No transactions.")
		return
	}
	tw := newTable(out)
	fmt.Fprintln(tw, "DATE\tID\tTYPE\tDETAIL\tAMOUNT\tACCOUNT\tSTATUS")
	for _, t := range txs {
		d := t.Direction()
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			formatDate(t.TransactionDate),
			t.ID,
			t.TransactionType,
			domain.DirectionLabel(t.Transaction, d),
			d.Sign()+t.Amount.Abs().StringFixed(2),
			t.OriginatingAccountNumber,
			t.Status,
		)
	}
	tw.Flush()
}

func formatDate(ts domain.Timestamp) string {
	if !ts.Valid {
		return "-"
	}
	return ts.Time.Format(dateLayout)
}
