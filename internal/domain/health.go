package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	Detail      string `json:"detail,omitempty"`
	LastChecked string `json:"lastChecked"`
}

// LedgerMetrics is returned by GET /v1/metrics/ledger.
type LedgerMetrics struct {
	LedgerCalls          int64   `json:"ledgerCalls"`
	LedgerErrorRate      float64 `json:"ledgerErrorRate"`
	FeedAccountFailures  int64   `json:"feedAccountFailures"`
	TransfersSubmitted   int64   `json:"transfersSubmitted"`
	TransfersRejected    int64   `json:"transfersRejected"`
	SessionLookupHitRate float64 `json:"sessionLookupHitRate"`
	Period               string  `json:"period"`
}
