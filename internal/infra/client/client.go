// Package client talks to the ledger REST API on behalf of the signed-in user.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"

	"github.com/boddenberg/netbank-bfa-go/internal/domain"
	"github.com/boddenberg/netbank-bfa-go/internal/infra/observability"
	"github.com/boddenberg/netbank-bfa-go/internal/port"
)

var tracer = otel.Tracer("client")

// DefaultLoginPath is where the user is sent when the ledger rejects the credential.
const DefaultLoginPath = "/login"

// Config holds ledger client settings.
type Config struct {
	BaseURL   string
	LoginPath string
}

// LedgerClient calls the ledger API with the current bearer credential.
// Every call goes through the circuit breaker; none is retried.
type LedgerClient struct {
	httpClient *http.Client
	baseURL    string
	loginPath  string
	tokens     port.TokenProvider
	navigator  port.Navigator
	cb         *gobreaker.CircuitBreaker
	metrics    *observability.Metrics
	logger     *zap.Logger

	// expireSession clears the credential and redirects on a 401.
	expireSession bool
}

// NewLedgerClient creates a new LedgerClient.
func NewLedgerClient(
	httpClient *http.Client,
	cfg Config,
	tokens port.TokenProvider,
	navigator port.Navigator,
	cb *gobreaker.CircuitBreaker,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *LedgerClient {
	loginPath := cfg.LoginPath
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	return &LedgerClient{
		httpClient:    httpClient,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		loginPath:     loginPath,
		tokens:        tokens,
		navigator:     navigator,
		cb:            cb,
		metrics:       metrics,
		logger:        logger,
		expireSession: true,
	}
}

// WithoutSessionExpiry returns a copy that reports a 401 as *domain.ErrAuthExpired
// but leaves the credential and the current view alone.
func (c *LedgerClient) WithoutSessionExpiry() *LedgerClient {
	cp := *c
	cp.expireSession = false
	return &cp
}

// BreakerState reports the ledger circuit breaker state for health checks.
func (c *LedgerClient) BreakerState() gobreaker.State {
	return c.cb.State()
}

// IsBreakerFailure reports whether err should count against the circuit breaker:
// only missing responses and 5xx answers do.
func IsBreakerFailure(err error) bool {
	var (
		network *domain.ErrNetwork
		server  *domain.ErrServer
	)
	switch {
	case errors.As(err, &network):
		return true
	case errors.As(err, &server):
		return server.Status >= http.StatusInternalServerError
	default:
		return false
	}
}

// request describes one ledger call.
type request struct {
	op      string
	method  string
	path    string
	query   url.Values
	payload any
	attrs   []attribute.KeyValue
}

// do runs req with tracing, metrics and 401 handling, returning the raw 2xx body.
func (c *LedgerClient) do(ctx context.Context, req request) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "LedgerClient."+req.op)
	defer span.End()
	span.SetAttributes(req.attrs...)

	start := time.Now()
	body, err := c.execute(ctx, req)
	elapsed := time.Since(start)
	c.metrics.ObserveLedgerCall(req.op, elapsed, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, domain.ErrorKind(err))
		c.logger.Warn("ledger call failed",
			zap.String("operation", req.op),
			zap.String("kind", domain.ErrorKind(err)),
			zap.Duration("latency", elapsed),
			zap.Error(err),
		)
		return nil, err
	}

	c.logger.Debug("ledger call",
		zap.String("operation", req.op),
		zap.Duration("latency", elapsed),
	)
	return body, nil
}

func (c *LedgerClient) execute(ctx context.Context, req request) ([]byte, error) {
	token, ok := c.tokens.Token(ctx)
	if !ok || token == "" {
		return nil, &domain.ErrUnauthenticated{}
	}

	result, err := c.cb.Execute(func() (any, error) {
		return c.roundTrip(ctx, req, token)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &domain.ErrNetwork{Op: req.op, Err: err}
		}

		var expired *domain.ErrAuthExpired
		if errors.As(err, &expired) && c.expireSession {
			c.tokens.Clear(ctx)
			if c.navigator != nil {
				c.navigator.GoTo(ctx, c.loginPath)
			}
		}
		return nil, err
	}

	return result.([]byte), nil
}

// roundTrip performs one HTTP exchange. Any failure before a response arrives,
// building the request included, is an *domain.ErrNetwork.
func (c *LedgerClient) roundTrip(ctx context.Context, req request, token string) ([]byte, error) {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.payload != nil {
		raw, err := json.Marshal(req.payload)
		if err != nil {
			return nil, &domain.ErrNetwork{Op: req.op, Err: fmt.Errorf("encoding payload: %w", err)}
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, &domain.ErrNetwork{Op: req.op, Err: fmt.Errorf("building request: %w", err)}
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Accept", "application/json")
	if req.payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &domain.ErrNetwork{Op: req.op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.ErrNetwork{Op: req.op, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, &domain.ErrAuthExpired{}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &domain.ErrServer{Status: resp.StatusCode, Message: errorMessage(raw)}
	}
	return raw, nil
}

// errorMessage extracts the ledger's "error" field, else "message", else the raw text.
func errorMessage(raw []byte) string {
	var body struct {
		Error   any `json:"error"`
		Message any `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if s, ok := body.Error.(string); ok && s != "" {
			return s
		}
		if s, ok := body.Message.(string); ok && s != "" {
			return s
		}
	}
	return strings.TrimSpace(string(raw))
}

// decodeList decodes a body that must be a JSON array.
func decodeList[T any](op string, raw []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &domain.ErrMalformedResponse{Op: op, Err: errors.New("expected a JSON array")}
	}

	var items []T
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, &domain.ErrMalformedResponse{Op: op, Err: err}
	}
	return items, nil
}

// decodeObject decodes a body that must be a JSON object.
func decodeObject[T any](op string, raw []byte) (*T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &domain.ErrMalformedResponse{Op: op, Err: errors.New("expected a JSON object")}
	}

	var v T
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return nil, &domain.ErrMalformedResponse{Op: op, Err: err}
	}
	return &v, nil
}
