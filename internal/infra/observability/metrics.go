package observability

import (
	"time"

	"github.com/boddenberg/netbank-bfa-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the BFA.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	ledgerDuration   *prometheus.HistogramVec
	ledgerCalls      *prometheus.CounterVec
	feedFailures     *prometheus.CounterVec
	transfersTotal   *prometheus.CounterVec
	transferRejects  *prometheus.CounterVec
	depositsTotal    *prometheus.CounterVec
	sessionLookups   *prometheus.CounterVec
	requestsTotal    *prometheus.CounterVec
	requestsInFlight prometheus.Gauge
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		ledgerDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bfa_ledger_call_duration_seconds",
				Help:    "Duration of ledger API calls by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		ledgerCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_ledger_calls_total",
				Help: "Total ledger API calls by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		feedFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_feed_account_failures_total",
				Help: "Per-account history fetches dropped from the feed, by error kind.",
			},
			[]string{"kind"},
		),
		transfersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_transfers_total",
				Help: "Transfers by outcome.",
			},
			[]string{"outcome"},
		),
		transferRejects: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_transfer_rejections_total",
				Help: "Transfers rejected before submission, by reason.",
			},
			[]string{"reason"},
		),
		depositsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_deposits_total",
				Help: "Deposits by outcome.",
			},
			[]string{"outcome"},
		),
		sessionLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_session_lookups_total",
				Help: "Session store lookups by result.",
			},
			[]string{"result"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_requests_total",
				Help: "Total inbound requests processed.",
			},
			[]string{"status"},
		),
		requestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "bfa_requests_in_flight",
				Help: "Inbound requests holding a bulkhead slot.",
			},
		),
	}
}

// ObserveLedgerCall records the duration and outcome of one ledger call.
func (m *Metrics) ObserveLedgerCall(operation string, d time.Duration, err error) {
	m.ledgerDuration.WithLabelValues(operation).Observe(d.Seconds())
	m.ledgerCalls.WithLabelValues(operation, domain.ErrorKind(err)).Inc()
}

// IncrFeedAccountFailure counts an account whose history was left out of the feed.
func (m *Metrics) IncrFeedAccountFailure(kind string) {
	m.feedFailures.WithLabelValues(kind).Inc()
}

// IncrTransfer counts a submitted transfer by outcome.
func (m *Metrics) IncrTransfer(outcome string) {
	m.transfersTotal.WithLabelValues(outcome).Inc()
}

// IncrTransferRejected counts a transfer stopped by local validation.
func (m *Metrics) IncrTransferRejected(reason domain.RejectionReason) {
	m.transferRejects.WithLabelValues(string(reason)).Inc()
}

// IncrDeposit counts a deposit by outcome.
func (m *Metrics) IncrDeposit(outcome string) {
	m.depositsTotal.WithLabelValues(outcome).Inc()
}

// IncrSessionLookup counts a session store lookup ("hit" or "miss").
func (m *Metrics) IncrSessionLookup(result string) {
	m.sessionLookups.WithLabelValues(result).Inc()
}

// IncrRequest increments the request counter with a status label.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// InFlight returns the gauge of requests currently holding a bulkhead slot.
func (m *Metrics) InFlight() prometheus.Gauge {
	return m.requestsInFlight
}

// GetLedgerSnapshot returns a snapshot of ledger-related metrics suitable for the
// GET /v1/metrics/ledger endpoint.
func (m *Metrics) GetLedgerSnapshot() *domain.LedgerMetrics {
	// Prometheus counters expose cumulative values.
	calls := sumCounters(m.ledgerCalls, nil)
	okCalls := sumCounters(m.ledgerCalls, map[string]string{"outcome": "ok"})
	hits := sumCounters(m.sessionLookups, map[string]string{"result": "hit"})
	misses := sumCounters(m.sessionLookups, map[string]string{"result": "miss"})

	errorRate := float64(0)
	hitRate := float64(0)
	if calls > 0 {
		errorRate = (calls - okCalls) / calls
	}
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	return &domain.LedgerMetrics{
		LedgerCalls:          int64(calls),
		LedgerErrorRate:      errorRate,
		FeedAccountFailures:  int64(sumCounters(m.feedFailures, nil)),
		TransfersSubmitted:   int64(sumCounters(m.transfersTotal, map[string]string{"outcome": "ok"})),
		TransfersRejected:    int64(sumCounters(m.transferRejects, nil)),
		SessionLookupHitRate: hitRate,
		Period:               "all_time",
	}
}

// sumCounters adds up every series of cv whose labels include all of match.
func sumCounters(cv *prometheus.CounterVec, match map[string]string) float64 {
	ch := make(chan prometheus.Metric)
	go func() {
		cv.Collect(ch)
		close(ch)
	}()

	var total float64
	for metric := range ch {
		m := &dto.Metric{}
		if err := metric.Write(m); err != nil {
			continue
		}
		if !labelsMatch(m.GetLabel(), match) {
			continue
		}
		total += m.GetCounter().GetValue()
	}
	return total
}

func labelsMatch(pairs []*dto.LabelPair, match map[string]string) bool {
	for name, want := range match {
		found := false
		for _, p := range pairs {
			if p.GetName() == name && p.GetValue() == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
