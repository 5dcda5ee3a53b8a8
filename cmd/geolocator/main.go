package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/geolocator/internal/config"
	dbRedis "github.com/kailas-cloud/geolocator/internal/db/redis"
	logpkg "github.com/kailas-cloud/geolocator/internal/logger"
	"github.com/kailas-cloud/geolocator/internal/metrics"
	quotarepo "github.com/kailas-cloud/geolocator/internal/repository/quota"
	"github.com/kailas-cloud/geolocator/internal/repository/searchcache"
	chiTransport "github.com/kailas-cloud/geolocator/internal/transport/chi"
	"github.com/kailas-cloud/geolocator/internal/transport/youtube"
	"github.com/kailas-cloud/geolocator/internal/usecase/coordinator"
	healthuc "github.com/kailas-cloud/geolocator/internal/usecase/health"
	"github.com/kailas-cloud/geolocator/internal/usecase/projector"
	quotauc "github.com/kailas-cloud/geolocator/internal/usecase/quota"
	searchuc "github.com/kailas-cloud/geolocator/internal/usecase/search"
	"github.com/kailas-cloud/geolocator/internal/usecase/session"
	usageuc "github.com/kailas-cloud/geolocator/internal/usecase/usage"
	"github.com/kailas-cloud/geolocator/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting geolocator API server",
		zap.String("version", version.String()),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	// Quota tracker, persisted when a counter store is configured.
	tracker := quotauc.NewTracker(
		youtube.Provider, cfg.Quota.DailyUnitLimit, quotauc.Action(cfg.Quota.Action), logger,
	)

	var store *dbRedis.Store
	var pinger healthuc.DBPinger
	if cfg.Database.Enabled() {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to database")

		tracker.WithStore(ctx, quotarepo.New(store, quotarepo.DefaultTTL))
		pinger = store
	} else {
		logger.Info("No database configured, quota counters are in-memory only")
	}

	// Executor chain: YouTube client -> Instrumented (quota + metrics) -> Cached (outermost, hits are free)
	ytOpts := []youtube.Option{youtube.WithRateLimit(cfg.YouTube.RateLimitRPS, cfg.YouTube.RateBurst)}
	if cfg.YouTube.BaseURL != "" {
		ytOpts = append(ytOpts, youtube.WithBaseURL(cfg.YouTube.BaseURL))
	}
	client := youtube.NewClient(cfg.YouTube.APIKey, ytOpts...)
	var executor coordinator.Executor = searchuc.NewInstrumentedExecutor(
		client, youtube.Provider, cfg.Quota.CostPerSearch, tracker, logger,
	)
	if store != nil && cfg.Database.CacheTTLSec > 0 {
		ttl := time.Duration(cfg.Database.CacheTTLSec) * time.Second
		executor = searchcache.New(executor, store, ttl, metrics.SearchCacheTotal, logger)
		logger.Info("Search response cache enabled", zap.Duration("ttl", ttl))
	}
	proj := projector.New(cfg.Search.Capacity, cfg.YouTube.Thumbnail)
	searchCfg := cfg.SearchDefaults()

	sessions := session.NewRegistry(func() *coordinator.Coordinator {
		return coordinator.New(searchCfg, executor, proj, youtube.Provider, logger)
	}, cfg.Search.MaxSessions, logger)
	idle := time.Duration(cfg.Search.SessionIdleSec) * time.Second
	sessions.WithIdleTimeout(idle)

	// Quota is only reported when a limit exists.
	var quotaReporter healthuc.QuotaReporter
	if cfg.Quota.DailyUnitLimit > 0 {
		quotaReporter = tracker
	}
	healthSvc := healthuc.New(pinger, quotaReporter)

	usageSvc := usageuc.New(tracker, youtube.Provider, cfg.Quota.CostPerSearch)

	server := chiTransport.NewServer(sessions, healthSvc, usageSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sessions.Run(gctx, idle/4)
		return nil
	})
	g.Go(func() error {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("session_id", chi.URLParam(r, "id")),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
