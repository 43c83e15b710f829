package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/boddenberg/netbank-bfa-go/internal/domain"
	"github.com/boddenberg/netbank-bfa-go/internal/handler"
	"github.com/boddenberg/netbank-bfa-go/internal/infra/observability"
)

type fixedBreaker gobreaker.State

func (b fixedBreaker) BreakerState() gobreaker.State { return gobreaker.State(b) }

func TestHealthz(t *testing.T) {
	router := handler.NewRouter(handler.Dependencies{}, observability.NewMetrics(), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHealthz_ReportsLedgerBreaker(t *testing.T) {
	tests := []struct {
		state gobreaker.State
		want  string
	}{
		{gobreaker.StateClosed, "healthy"},
		{gobreaker.StateHalfOpen, "degraded"},
		{gobreaker.StateOpen, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			router := handler.NewRouter(handler.Dependencies{Ledger: fixedBreaker(tt.state)}, observability.NewMetrics(), zap.NewNop())

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			var health domain.HealthStatus
			if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if health.Status != tt.want {
				t.Errorf("expected status %q, got %q", tt.want, health.Status)
			}
			if len(health.Services) != 2 || health.Services[1].Name != "ledger" {
				t.Errorf("expected a ledger entry, got %+v", health.Services)
			}
		})
	}
}

func TestReadyz(t *testing.T) {
	router := handler.NewRouter(handler.Dependencies{}, observability.NewMetrics(), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestPing(t *testing.T) {
	router := handler.NewRouter(handler.Dependencies{}, observability.NewMetrics(), zap.NewNop())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	router := handler.NewRouter(handler.Dependencies{}, observability.NewMetrics(), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestLedgerMetrics(t *testing.T) {
	metrics := observability.NewMetrics()
	metrics.IncrTransfer("ok")
	router := handler.NewRouter(handler.Dependencies{}, metrics, zap.NewNop())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/metrics/ledger", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var snap domain.LedgerMetrics
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.TransfersSubmitted != 1 {
		t.Errorf("expected 1 transfer, got %d", snap.TransfersSubmitted)
	}
}
