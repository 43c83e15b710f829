package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/boddenberg/netbank-bfa-go/internal/infra/observability"
	"github.com/boddenberg/netbank-bfa-go/internal/infra/resilience"
)

// BulkheadMiddleware caps the number of API requests served at once.
// A request that gives up while waiting gets a 503.
func BulkheadMiddleware(bh *resilience.Bulkhead, metrics *observability.Metrics, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := bh.Acquire(r.Context()); err != nil {
				logger.Warn("bulkhead: request abandoned while waiting for a slot",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				writeError(w, http.StatusServiceUnavailable, "server busy")
				return
			}
			defer bh.Release()

			metrics.InFlight().Inc()
			defer metrics.InFlight().Dec()

			next.ServeHTTP(w, r)
		})
	}
}

// RequestCounterMiddleware counts API responses by status code.
func RequestCounterMiddleware(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				metrics.IncrRequest(strconv.Itoa(status))
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
