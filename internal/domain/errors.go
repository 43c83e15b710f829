package domain

import (
	"errors"
	"fmt"
)

// Error types for consistent error handling across the BFA.

// ErrUnauthenticated indicates no credential is held locally, so no request was sent.
type ErrUnauthenticated struct{}

func (e *ErrUnauthenticated) Error() string {
	return "unauthenticated: no credential available"
}

// ErrAuthExpired indicates the ledger rejected the credential (HTTP 401).
type ErrAuthExpired struct{}

func (e *ErrAuthExpired) Error() string {
	return "session expired: ledger rejected the credential"
}

// ErrNetwork indicates the ledger call produced no response.
type ErrNetwork struct {
	Op  string
	Err error
}

func (e *ErrNetwork) Error() string {
	return fmt.Sprintf("network error [%s]: %v", e.Op, e.Err)
}

func (e *ErrNetwork) Unwrap() error {
	return e.Err
}

// ErrServer indicates a non-2xx, non-401 answer from the ledger.
type ErrServer struct {
	Status  int
	Message string
}

func (e *ErrServer) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("ledger returned status %d", e.Status)
	}
	return fmt.Sprintf("ledger returned status %d: %s", e.Status, e.Message)
}

// ErrMalformedResponse indicates a 2xx body that could not be decoded into the expected shape.
type ErrMalformedResponse struct {
	Op  string
	Err error
}

func (e *ErrMalformedResponse) Error() string {
	return fmt.Sprintf("malformed ledger response [%s]: %v", e.Op, e.Err)
}

func (e *ErrMalformedResponse) Unwrap() error {
	return e.Err
}

// ErrParse indicates a numeric or date field that could not be parsed.
type ErrParse struct {
	Field string
	Input string
}

func (e *ErrParse) Error() string {
	return fmt.Sprintf("cannot parse %s: %q", e.Field, e.Input)
}

// RejectionReason identifies the first transfer rule that failed.
type RejectionReason string

const (
	RejectMissingSource      RejectionReason = "MISSING_SOURCE"
	RejectMissingDestination RejectionReason = "MISSING_DESTINATION"
	RejectSelfTransfer       RejectionReason = "SELF_TRANSFER"
	RejectInvalidAmount      RejectionReason = "INVALID_AMOUNT"
	RejectMissingRoutingCode RejectionReason = "MISSING_ROUTING_CODE"
)

var rejectionMessages = map[RejectionReason]string{
	RejectMissingSource:      "Please select a from account",
	RejectMissingDestination: "Please select a to account from the dropdown or enter an external account number",
	RejectSelfTransfer:       "Cannot transfer to the same account",
	RejectInvalidAmount:      "Please enter a valid amount",
	RejectMissingRoutingCode: "IFSC code is required for external transfers",
}

// ErrTransferRejected is a transfer that failed local validation and never reached the ledger.
type ErrTransferRejected struct {
	Reason RejectionReason
}

func (e *ErrTransferRejected) Error() string {
	if msg, ok := rejectionMessages[e.Reason]; ok {
		return msg
	}
	return string(e.Reason)
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrorKind returns a short, stable label for err, used for metrics and logs.
func ErrorKind(err error) string {
	var (
		unauthenticated *ErrUnauthenticated
		expired         *ErrAuthExpired
		network         *ErrNetwork
		server          *ErrServer
		malformed       *ErrMalformedResponse
		rejected        *ErrTransferRejected
		validation      *ErrValidation
	)

	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &unauthenticated):
		return "unauthenticated"
	case errors.As(err, &expired):
		return "auth_expired"
	case errors.As(err, &network):
		return "network"
	case errors.As(err, &server):
		return "server"
	case errors.As(err, &malformed):
		return "malformed"
	case errors.As(err, &rejected):
		return "rejected"
	case errors.As(err, &validation):
		return "validation"
	default:
		return "error"
	}
}
