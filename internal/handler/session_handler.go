package handler

import (
	"net/http"

	"github.com/boddenberg/netbank-bfa-go/internal/session"
)

// ============================================================
// Session Handlers
// ============================================================

func createSessionHandler(mgr *session.Manager, errs *errorMapper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/session")
		defer span.End()

		var req struct {
			Token string `json:"token"`
		}
		if err := decodeBody(r, &req); err != nil {
			errs.handle(w, r, err)
			return
		}

		id, ttl, err := mgr.Begin(ctx, req.Token)
		if err != nil {
			errs.handle(w, r, err)
			return
		}

		mgr.SetCookie(w, id, ttl)
		writeJSON(w, http.StatusCreated, map[string]any{
			"expiresIn": int(ttl.Seconds()),
		})
	}
}

func deleteSessionHandler(mgr *session.Manager, errs *errorMapper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/session")
		defer span.End()

		if err := mgr.End(ctx); err != nil {
			errs.handle(w, r, err)
			return
		}
		mgr.ExpireCookie(w)
		w.WriteHeader(http.StatusNoContent)
	}
}
