package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shoprec/internal/config"
	dbRedis "github.com/kailas-cloud/shoprec/internal/db/redis"
	"github.com/kailas-cloud/shoprec/internal/db/sqlstore"
	"github.com/kailas-cloud/shoprec/internal/domain"
	logpkg "github.com/kailas-cloud/shoprec/internal/logger"
	"github.com/kailas-cloud/shoprec/internal/metrics"
	"github.com/kailas-cloud/shoprec/internal/repository/catalog"
	"github.com/kailas-cloud/shoprec/internal/repository/reccache"
	chiTransport "github.com/kailas-cloud/shoprec/internal/transport/chi"
	healthuc "github.com/kailas-cloud/shoprec/internal/usecase/health"
	"github.com/kailas-cloud/shoprec/internal/usecase/recommend"
	"github.com/kailas-cloud/shoprec/internal/version"
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

	logger.Info("Starting shoprec API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
	)

	store, err := sqlstore.Open(sqlstore.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetimeSec) * time.Second,
	})
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	if cfg.Database.Migrate {
		v, err := store.Migrate()
		if err != nil {
			logger.Fatal("Failed to apply migrations", zap.Error(err))
		}
		logger.Info("Schema up to date", zap.Uint("version", v))
	}

	// Register recommendation metrics explicitly (no init())
	metrics.RegisterRecommendMetrics()

	// Build recommender chain: service -> cache -> instrumented
	repo := catalog.New(store)
	svc := recommend.New(repo, repo, cfg.RecommendDomain(), logger)

	// Pass nil interface (not typed nil pointer!) when the breaker is disabled.
	var breakerState healthuc.BreakerStater
	if !cfg.Breaker.Disabled {
		breaker := recommend.NewBreaker(recommend.BreakerConfig{
			FailureThreshold: uint32(cfg.Breaker.FailureThreshold), //nolint:gosec // validated positive
			OpenTimeout:      time.Duration(cfg.Breaker.OpenTimeoutSec) * time.Second,
			MaxHalfOpen:      uint32(cfg.Breaker.MaxHalfOpen), //nolint:gosec // validated positive
		}, logger)
		svc = svc.WithBreaker(breaker)
		breakerState = breaker
	}

	var rec domain.Recommender = svc
	var cachePinger healthuc.Pinger
	if cfg.Cache.Enabled {
		cache, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer cache.Close()

		if err := cache.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		logger.Info("Connected to cache", zap.Strings("addrs", cfg.Cache.Addrs))

		rec = reccache.New(rec, cache, cfg.CacheTTL(), cfg.Cache.KeyPrefix, metrics.RecommendationCacheTotal, logger)
		cachePinger = cache
	}

	// Instrumented is outermost so cache hits are counted as served results
	rec = recommend.NewInstrumentedRecommender(rec, logger)

	// Health service
	healthSvc := healthuc.New(store, cachePinger, breakerState)

	// Create chi server
	server := chiTransport.NewServer(rec, healthSvc, cfg.Recommend.DefaultLimit, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	r.NotFound(jsonStatus(http.StatusNotFound, "not_found", "route not found"))
	r.MethodNotAllowed(jsonStatus(http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed"))
	server.Handler(chiTransport.ChiServerOptions{BaseRouter: r})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonStatus answers with a fixed JSON error body.
func jsonStatus(status int, code, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"code":    code,
			"message": message,
		})
	}
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
					jsonStatus(http.StatusInternalServerError, "internal_error", "internal error")(w, r)
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

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.String("recommendation_source", ww.Header().Get("X-Recommendation-Source")),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
