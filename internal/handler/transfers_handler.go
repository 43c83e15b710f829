package handler

import (
	"net/http"

	"github.com/boddenberg/netbank-bfa-go/internal/domain"
	"github.com/boddenberg/netbank-bfa-go/internal/service"
)

// ============================================================
// Money Movement Handlers
// ============================================================

// transferBody accepts the amount as a JSON string or number.
type transferBody struct {
	FromAccountNumber     string         `json:"fromAccountNumber"`
	ToAccountNumber       string         `json:"toAccountNumber"`
	ExternalAccountNumber string         `json:"externalAccountNumber"`
	Amount                domain.Numeric `json:"amount"`
	Description           string         `json:"description"`
	IFSCCode              string         `json:"ifscCode"`
}

type depositBody struct {
	AccountNumber string         `json:"accountNumber"`
	Amount        domain.Numeric `json:"amount"`
	Description   string         `json:"description"`
}

func transferHandler(svc *service.TransferSubmitter, errs *errorMapper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/transfers")
		defer span.End()

		var body transferBody
		if err := decodeBody(r, &body); err != nil {
			errs.handle(w, r, err)
			return
		}

		receipt, err := svc.Submit(ctx, domain.TransferInput{
			FromAccountNumber:     body.FromAccountNumber,
			ToAccountNumber:       body.ToAccountNumber,
			ExternalAccountNumber: body.ExternalAccountNumber,
			Amount:                body.Amount.Raw(),
			Description:           body.Description,
			IFSCCode:              body.IFSCCode,
		})
		if err != nil {
			errs.handle(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, transferResponse{
			TransactionID: receipt.TransactionID,
			Message:       "Transfer successful! Transaction ID: " + receipt.TransactionID,
		})
	}
}

func depositHandler(svc *service.DepositSubmitter, errs *errorMapper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/deposits")
		defer span.End()

		var body depositBody
		if err := decodeBody(r, &body); err != nil {
			errs.handle(w, r, err)
			return
		}

		tx, err := svc.Submit(ctx, domain.DepositInput{
			AccountNumber: body.AccountNumber,
			Amount:        body.Amount.Raw(),
			Description:   body.Description,
		})
		if err != nil {
			errs.handle(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, newTransactionView(domain.TaggedTransaction{
			Transaction:              *tx,
			OriginatingAccountNumber: body.AccountNumber,
		}))
	}
}
