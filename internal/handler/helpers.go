package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/boddenberg/netbank-bfa-go/internal/domain"
	"github.com/boddenberg/netbank-bfa-go/internal/session"
)

// ============================================================
// Shared helper functions
// ============================================================

type errorResponse struct {
	Error    string `json:"error"`
	Reason   string `json:"reason,omitempty"`
	Field    string `json:"field,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// decodeBody decodes a JSON request body into v.
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &domain.ErrValidation{Field: "body", Message: "invalid request body"}
	}
	return nil
}

// parseLimit reads ?limit=, returning 0 (service default) when absent or invalid.
func parseLimit(r *http.Request) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			return n
		}
	}
	return 0
}

// errorMapper maps domain errors to HTTP responses.
type errorMapper struct {
	loginPath string
	logger    *zap.Logger
}

func (m *errorMapper) handle(w http.ResponseWriter, r *http.Request, err error) {
	var (
		unauthenticated *domain.ErrUnauthenticated
		expired         *domain.ErrAuthExpired
		rejected        *domain.ErrTransferRejected
		validation      *domain.ErrValidation
		server          *domain.ErrServer
		network         *domain.ErrNetwork
		malformed       *domain.ErrMalformedResponse
	)

	switch {
	case errors.As(err, &unauthenticated), errors.As(err, &expired):
		redirect := m.loginPath
		if s := session.FromContext(r.Context()); s != nil && s.Redirect() != "" {
			redirect = s.Redirect()
		}
		m.logger.Debug("not signed in", zap.String("kind", domain.ErrorKind(err)))
		w.Header().Set("Location", redirect)
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error(), Redirect: redirect})
	case errors.As(err, &rejected):
		m.logger.Debug("transfer rejected", zap.String("reason", string(rejected.Reason)))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Reason: string(rejected.Reason)})
	case errors.As(err, &validation):
		m.logger.Debug("validation error", zap.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: validation.Message, Reason: "VALIDATION", Field: validation.Field})
	case errors.As(err, &server):
		m.logger.Warn("ledger error", zap.Int("status", server.Status), zap.String("message", server.Message))
		msg := server.Message
		if msg == "" {
			msg = "ledger request failed"
		}
		writeError(w, http.StatusBadGateway, msg)
	case errors.As(err, &network):
		m.logger.Error("ledger unreachable", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "ledger service unavailable")
	case errors.As(err, &malformed):
		m.logger.Error("malformed ledger response", zap.Error(err))
		writeError(w, http.StatusBadGateway, "unexpected response from ledger")
	default:
		m.logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
