package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/swisscoin/internal/auth"
	"github.com/mmynk/swisscoin/internal/balance"
	"github.com/mmynk/swisscoin/internal/billing"
	"github.com/mmynk/swisscoin/internal/cache"
	"github.com/mmynk/swisscoin/internal/config"
	"github.com/mmynk/swisscoin/internal/metrics"
	"github.com/mmynk/swisscoin/internal/middleware"
	"github.com/mmynk/swisscoin/internal/reconcile"
	"github.com/mmynk/swisscoin/internal/service"
	"github.com/mmynk/swisscoin/internal/storage"
	"github.com/mmynk/swisscoin/internal/storage/memory"
	"github.com/mmynk/swisscoin/internal/storage/sqlite"
	"github.com/mmynk/swisscoin/pkg/api/apiconnect"
	"github.com/mmynk/swisscoin/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.SetupWithLevel(logging.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	store, err := openStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	balanceCache := openCache(ctx, cfg, m)
	if closer, ok := balanceCache.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	balances := balance.NewService(store, balanceCache, m)
	reconciler := reconcile.New(store,
		reconcile.WithOverpayment(cfg.AllowOverpayment),
		reconcile.WithMetrics(m),
	)
	biller := billing.New(store, cfg.BillingInterval, m)
	go biller.Run(ctx)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiresIn)
	authenticator := auth.NewPasswordAuthenticator(store)

	interceptors := connect.WithInterceptors(
		m.Interceptor(),
		middleware.RequireAuth(jwtManager,
			apiconnect.AuthServiceRegisterProcedure,
			apiconnect.AuthServiceLoginProcedure,
		),
		middleware.LoggingInterceptor(),
	)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(
		service.NewAuthService(authenticator, jwtManager, store, slog.Default()), interceptors))
	mux.Handle(apiconnect.NewLedgerServiceHandler(
		service.NewLedgerService(store, balances, reconciler), interceptors))
	mux.Handle(apiconnect.NewGroupServiceHandler(
		service.NewGroupService(store), interceptors))
	mux.Handle(apiconnect.NewSubscriptionServiceHandler(
		service.NewSubscriptionService(store, biller, balances), interceptors))
	mux.Handle("/metrics", metrics.Handler(reg))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	handler := h2c.NewHandler(loggingMiddleware(corsMiddleware(mux)), &http2.Server{})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", srv.Addr, "url", fmt.Sprintf("http://localhost:%s", cfg.Port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore opens the SQLite database at path, or an in-process store for
// ":memory:".
func openStore(path string) (storage.Store, error) {
	if path == ":memory:" {
		slog.Warn("Using in-memory storage; data is lost on exit")
		return memory.New(), nil
	}
	store, err := sqlite.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	slog.Info("Storage initialized", "database", path)
	return store, nil
}

// openCache connects the balance cache, falling back to no caching when
// Redis is not configured or not reachable.
func openCache(ctx context.Context, cfg *config.Config, m *metrics.Metrics) cache.BalanceCache {
	if cfg.RedisURL == "" {
		slog.Info("Balance cache disabled")
		return cache.Noop{}
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	c, err := cache.NewRedis(pingCtx, cfg.RedisURL, cfg.BalanceCacheTTL, m)
	if err != nil {
		slog.Warn("Redis unavailable, balance cache disabled", "error", err)
		return cache.Noop{}
	}
	slog.Info("Balance cache connected", "ttl", cfg.BalanceCacheTTL)
	return c
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
