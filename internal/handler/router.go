package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/boddenberg/netbank-bfa-go/internal/domain"
	"github.com/boddenberg/netbank-bfa-go/internal/infra/observability"
	"github.com/boddenberg/netbank-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/netbank-bfa-go/internal/service"
	"github.com/boddenberg/netbank-bfa-go/internal/session"
)

var tracer = otel.Tracer("handler")

// BreakerReporter exposes the ledger circuit breaker state.
type BreakerReporter interface {
	BreakerState() gobreaker.State
}

// Pinger is a dependency checked for readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies wires the services behind the HTTP API.
type Dependencies struct {
	Accounts  *service.AccountsService
	Transfers *service.TransferSubmitter
	Deposits  *service.DepositSubmitter
	Sessions  *session.Manager
	Bulkhead  *resilience.Bulkhead

	// Ledger reports the breaker state on /healthz.
	Ledger BreakerReporter
	// SessionStore is pinged by /readyz when it supports it.
	SessionStore session.Store
	// LoginPath is sent to callers that have no credential.
	LoginPath string
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(deps Dependencies, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	if deps.LoginPath == "" {
		deps.LoginPath = "/login"
	}
	errs := &errorMapper{loginPath: deps.LoginPath, logger: logger}

	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(deps.Ledger))
	r.Get("/readyz", readyzHandler(deps.SessionStore, logger))
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		r.Get("/metrics/ledger", ledgerMetricsHandler(metrics))

		if deps.Sessions == nil {
			return
		}

		r.Group(func(r chi.Router) {
			if deps.Bulkhead != nil {
				r.Use(BulkheadMiddleware(deps.Bulkhead, metrics, logger))
			}
			r.Use(deps.Sessions.Middleware)
			r.Use(RequestCounterMiddleware(metrics))

			// Session
			r.Post("/session", createSessionHandler(deps.Sessions, errs))
			r.Delete("/session", deleteSessionHandler(deps.Sessions, errs))

			// Accounts & dashboard
			r.Get("/me", currentUserHandler(deps.Accounts, errs))
			r.Get("/dashboard", dashboardHandler(deps.Accounts, errs))
			r.Get("/accounts", listAccountsHandler(deps.Accounts, errs))
			r.Post("/accounts", createAccountHandler(deps.Accounts, errs))
			r.Get("/accounts/{accountNumber}/transactions", accountTransactionsHandler(deps.Accounts, errs))
			r.Get("/accounts/{accountNumber}/transactions/history", accountHistoryHandler(deps.Accounts, errs))

			// Money movement
			r.Post("/deposits", depositHandler(deps.Deposits, errs))
			r.Post("/transfers", transferHandler(deps.Transfers, errs))
		})
	})

	return r
}

// ============================================================
// Operational handlers
// ============================================================

func healthzHandler(ledger BreakerReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "bfa-api", Status: "healthy", LastChecked: now},
		}

		if ledger != nil {
			state := ledger.BreakerState()
			status := "healthy"
			switch state {
			case gobreaker.StateOpen:
				status = "unhealthy"
			case gobreaker.StateHalfOpen:
				status = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name:        "ledger",
				Status:      status,
				Detail:      "circuit " + state.String(),
				LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler(store session.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p, ok := store.(Pinger); ok {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				logger.Warn("session store not ready", zap.Error(err))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func ledgerMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetLedgerSnapshot())
	}
}
