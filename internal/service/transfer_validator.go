package service

import (
	"strings"

	"github.com/boddenberg/netbank-bfa-go/internal/domain"
)

// ValidateTransfer checks the transfer form and resolves its destination.
// Rules run in a fixed order and only the first failure is reported, as a
// *domain.ErrTransferRejected.
func ValidateTransfer(in domain.TransferInput) (*domain.TransferRequest, error) {
	from := strings.TrimSpace(in.FromAccountNumber)
	to := strings.TrimSpace(in.ToAccountNumber)
	external := strings.TrimSpace(in.ExternalAccountNumber)
	description := strings.TrimSpace(in.Description)
	ifsc := strings.TrimSpace(in.IFSCCode)

	if from == "" {
		return nil, reject(domain.RejectMissingSource)
	}

	destination, isExternal := to, false
	if destination == "" {
		destination, isExternal = external, true
	}
	if destination == "" {
		return nil, reject(domain.RejectMissingDestination)
	}

	if from == destination {
		return nil, reject(domain.RejectSelfTransfer)
	}

	amount, err := domain.ParseAmount("amount", in.Amount)
	if err != nil || !amount.IsPositive() {
		return nil, reject(domain.RejectInvalidAmount)
	}

	if isExternal && ifsc == "" {
		return nil, reject(domain.RejectMissingRoutingCode)
	}

	return &domain.TransferRequest{
		FromAccountNumber: from,
		ToAccountNumber:   destination,
		Amount:            amount,
		Description:       optional(description),
		IFSCCode:          optional(ifsc),
	}, nil
}

func reject(reason domain.RejectionReason) error {
	return &domain.ErrTransferRejected{Reason: reason}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
