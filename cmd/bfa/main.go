package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/boddenberg/netbank-bfa-go/internal/config"
	"github.com/boddenberg/netbank-bfa-go/internal/handler"
	"github.com/boddenberg/netbank-bfa-go/internal/infra/cache"
	"github.com/boddenberg/netbank-bfa-go/internal/infra/client"
	"github.com/boddenberg/netbank-bfa-go/internal/infra/observability"
	"github.com/boddenberg/netbank-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/netbank-bfa-go/internal/service"
	"github.com/boddenberg/netbank-bfa-go/internal/session"
)

const (
	serviceName = "netbank-bfa"
	version     = "1.0.0"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("ledger_api_url", cfg.LedgerAPIURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Int("feed_limit", cfg.FeedLimit),
		zap.String("session_backend", cfg.SessionBackend),
		zap.Duration("session_ttl", cfg.SessionTTL),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(context.Background(), cfg.TracingEndpoint(), serviceName, version)
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Sessions ---
	store, closeStore := newSessionStore(cfg, logger)
	defer closeStore()

	sessions := session.NewManager(store, session.Config{
		TTL:          cfg.SessionTTL,
		SecureCookie: cfg.SecureCookie,
	}, metrics, logger)

	// --- Resilience ---
	breakerCfg := resilience.BreakerConfig{
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		IsFailure:   client.IsBreakerFailure,
	}
	cb := resilience.NewCircuitBreaker("ledger-api", breakerCfg, logger)
	bulkhead := resilience.NewBulkhead(cfg.MaxConcurrency)

	// --- Ledger client ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	ledger := client.NewLedgerClient(
		httpClient,
		client.Config{BaseURL: cfg.LedgerAPIURL, LoginPath: cfg.LoginPath},
		sessions,
		session.Navigator{},
		cb,
		metrics,
		logger,
	)

	// --- Services ---
	// Per-account history failures never end the session.
	feed := service.NewFeedAggregator(ledger.WithoutSessionExpiry(), metrics, logger)
	accountsSvc := service.NewAccountsService(ledger, feed, cfg.FeedLimit, metrics, logger)
	transferSvc := service.NewTransferSubmitter(ledger, metrics, logger)
	depositSvc := service.NewDepositSubmitter(ledger, metrics, logger)

	// --- Router ---
	router := handler.NewRouter(handler.Dependencies{
		Accounts:     accountsSvc,
		Transfers:    transferSvc,
		Deposits:     depositSvc,
		Sessions:     sessions,
		Bulkhead:     bulkhead,
		Ledger:       ledger,
		SessionStore: store,
		LoginPath:    cfg.LoginPath,
	}, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

func newSessionStore(cfg *config.Config, logger *zap.Logger) (session.Store, func()) {
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store := session.NewRedisStore(rdb)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			logger.Warn("redis not reachable at startup", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}

		logger.Info("using redis session store", zap.String("addr", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
		return store, func() { _ = rdb.Close() }
	default:
		if cfg.SessionBackend != config.SessionBackendMemory {
			logger.Warn("unknown session backend, falling back to memory", zap.String("backend", cfg.SessionBackend))
		}
		logger.Info("using in-memory session store")
		records := cache.New[session.Record](cfg.SessionTTL)
		return session.NewMemoryStore(records), records.Close
	}
}
