package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/boddenberg/netbank-bfa-go/internal/domain"
	"github.com/boddenberg/netbank-bfa-go/internal/infra/observability"
	"github.com/boddenberg/netbank-bfa-go/internal/service"
)

func TestValidateTransfer_Rejections(t *testing.T) {
	tests := []struct {
		name string
		in   domain.TransferInput
		want domain.RejectionReason
	}{
		{
			name: "missing source wins over everything",
			in:   domain.TransferInput{Amount: "-1"},
			want: domain.RejectMissingSource,
		},
		{
			name: "blank source",
			in:   domain.TransferInput{FromAccountNumber: "   ", ToAccountNumber: "A2", Amount: "10"},
			want: domain.RejectMissingSource,
		},
		{
			name: "missing destination regardless of amount",
			in:   domain.TransferInput{FromAccountNumber: "A1", Amount: "50"},
			want: domain.RejectMissingDestination,
		},
		{
			name: "missing destination with bad amount",
			in:   domain.TransferInput{FromAccountNumber: "A1", Amount: "abc"},
			want: domain.RejectMissingDestination,
		},
		{
			name: "self transfer",
			in:   domain.TransferInput{FromAccountNumber: "A1", ToAccountNumber: "A1", Amount: "10"},
			want: domain.RejectSelfTransfer,
		},
		{
			name: "self transfer through external field",
			in:   domain.TransferInput{FromAccountNumber: "A1", ExternalAccountNumber: " A1 ", Amount: "10", IFSCCode: "X"},
			want: domain.RejectSelfTransfer,
		},
		{
			name: "self transfer before amount",
			in:   domain.TransferInput{FromAccountNumber: "A1", ToAccountNumber: "A1", Amount: "zero"},
			want: domain.RejectSelfTransfer,
		},
		{
			name: "non-numeric amount",
			in:   domain.TransferInput{FromAccountNumber: "A1", ToAccountNumber: "A2", Amount: "ten"},
			want: domain.RejectInvalidAmount,
		},
		{
			name: "empty amount",
			in:   domain.TransferInput{FromAccountNumber: "A1", ToAccountNumber: "A2", Amount: ""},
			want: domain.RejectInvalidAmount,
		},
		{
			name: "zero amount",
			in:   domain.TransferInput{FromAccountNumber: "A1", ToAccountNumber: "A2", Amount: "0"},
			want: domain.RejectInvalidAmount,
		},
		{
			name: "negative amount",
			in:   domain.TransferInput{FromAccountNumber: "A1", ToAccountNumber: "A2", Amount: "-5"},
			want: domain.RejectInvalidAmount,
		},
		{
			name: "invalid amount before routing code",
			in:   domain.TransferInput{FromAccountNumber: "A1", ExternalAccountNumber: "EXT1", Amount: "x"},
			want: domain.RejectInvalidAmount,
		},
		{
			name: "external without routing code",
			in:   domain.TransferInput{FromAccountNumber: "A1", ExternalAccountNumber: "EXT1", IFSCCode: "", Amount: "10"},
			want: domain.RejectMissingRoutingCode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := service.ValidateTransfer(tt.in)

			assert.Nil(t, req)
			var rejected *domain.ErrTransferRejected
			require.ErrorAs(t, err, &rejected)
			assert.Equal(t, tt.want, rejected.Reason)
		})
	}
}

func TestValidateTransfer_Internal(t *testing.T) {
	req, err := service.ValidateTransfer(domain.TransferInput{
		FromAccountNumber:     " A1 ",
		ToAccountNumber:       "A2",
		ExternalAccountNumber: "IGNORED",
		Amount:                " 250.50 ",
	})
	require.NoError(t, err)

	assert.Equal(t, "A1", req.FromAccountNumber)
	assert.Equal(t, "A2", req.ToAccountNumber, "an internal selection wins over the external field")
	assert.True(t, decimal.RequireFromString("250.5").Equal(req.Amount))
	assert.Nil(t, req.Description)
	assert.Nil(t, req.IFSCCode, "internal transfers do not need a routing code")
}

func TestValidateTransfer_External(t *testing.T) {
	req, err := service.ValidateTransfer(domain.TransferInput{
		FromAccountNumber:     "A1",
		ExternalAccountNumber: "EXT1",
		Amount:                "10",
		IFSCCode:              "BANK0009999",
		Description:           "rent",
	})
	require.NoError(t, err)

	assert.Equal(t, "EXT1", req.ToAccountNumber)
	require.NotNil(t, req.IFSCCode)
	assert.Equal(t, "BANK0009999", *req.IFSCCode)
	require.NotNil(t, req.Description)
	assert.Equal(t, "rent", *req.Description)
}

func newSubmitter(ledger *mockLedger) (*service.TransferSubmitter, *observability.Metrics) {
	metrics := observability.NewMetrics()
	return service.NewTransferSubmitter(ledger, metrics, zap.NewNop()), metrics
}

func TestSubmit_RejectionNeverReachesLedger(t *testing.T) {
	ledger := &mockLedger{}
	sub, metrics := newSubmitter(ledger)

	_, err := sub.Submit(context.Background(), domain.TransferInput{FromAccountNumber: "A1", ToAccountNumber: "A1", Amount: "10"})

	var rejected *domain.ErrTransferRejected
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, domain.RejectSelfTransfer, rejected.Reason)
	assert.Zero(t, ledger.transferCall.Load())
	assert.EqualValues(t, 1, metrics.GetLedgerSnapshot().TransfersRejected)
}

func TestSubmit_Success(t *testing.T) {
	ledger := &mockLedger{}
	sub, metrics := newSubmitter(ledger)

	receipt, err := sub.Submit(context.Background(), domain.TransferInput{FromAccountNumber: "A1", ToAccountNumber: "A2", Amount: "10"})
	require.NoError(t, err)

	assert.Equal(t, "TXN42", receipt.TransactionID)
	assert.EqualValues(t, 1, ledger.transferCall.Load())
	assert.Equal(t, "A2", ledger.transfer.ToAccountNumber)
	assert.EqualValues(t, 1, metrics.GetLedgerSnapshot().TransfersSubmitted)
}

func TestSubmit_LedgerErrorsPassThroughUnchanged(t *testing.T) {
	failures := []error{
		&domain.ErrAuthExpired{},
		&domain.ErrNetwork{Op: "post_transfer", Err: errors.New("timeout")},
		&domain.ErrServer{Status: 400, Message: "Insufficient balance"},
		&domain.ErrUnauthenticated{},
	}

	for _, failure := range failures {
		t.Run(domain.ErrorKind(failure), func(t *testing.T) {
			ledger := &mockLedger{transferErr: failure}
			sub, _ := newSubmitter(ledger)

			receipt, err := sub.Submit(context.Background(), domain.TransferInput{FromAccountNumber: "A1", ToAccountNumber: "A2", Amount: "10"})

			assert.Nil(t, receipt)
			assert.Same(t, failure, err)
			assert.EqualValues(t, 1, ledger.transferCall.Load(), "no automatic retry")
		})
	}
}
