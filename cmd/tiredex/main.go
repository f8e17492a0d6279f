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
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/treadline/tiredex/internal/config"
	"github.com/treadline/tiredex/internal/db"
	dbRedis "github.com/treadline/tiredex/internal/db/redis"
	logpkg "github.com/treadline/tiredex/internal/logger"
	"github.com/treadline/tiredex/internal/metrics"
	catalogrepo "github.com/treadline/tiredex/internal/repository/catalog"
	"github.com/treadline/tiredex/internal/repository/rankcache"
	chiTransport "github.com/treadline/tiredex/internal/transport/chi"
	openaiRank "github.com/treadline/tiredex/internal/transport/openai"
	healthuc "github.com/treadline/tiredex/internal/usecase/health"
	searchuc "github.com/treadline/tiredex/internal/usecase/search"
	"github.com/treadline/tiredex/internal/version"
)

func main() {
	// Local overrides from .env, ignored when the file is absent
	_ = godotenv.Load()

	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting tiredex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("catalog_path", cfg.Catalog.Path),
		zap.String("ranking_model", cfg.Ranking.Model),
		zap.Bool("ranking_key_configured", cfg.Ranking.APIKey != ""),
	)

	if cfg.Ranking.APIKey == "" {
		logger.Warn("Ranking API key not configured, all searches will use deterministic order")
	}

	// Register ranking metrics explicitly (no init())
	metrics.RegisterRankingMetrics()

	// Catalog repository
	catRepo := catalogrepo.New(cfg.Catalog.Path)
	if cfg.Catalog.Cache {
		catRepo = catRepo.WithCache()
	}

	// Base LLM ranker
	baseRanker := openaiRank.NewRanker(&openaiRank.Config{
		APIKey:      cfg.Ranking.APIKey,
		BaseURL:     cfg.Ranking.BaseURL,
		Model:       cfg.Ranking.Model,
		Temperature: cfg.Ranking.Temperature,
		Timeout:     time.Duration(cfg.Ranking.TimeoutSec) * time.Second,
		Provider:    "openai",
		Logger:      logger,
	})

	// Optional cache store. Without database.addrs the ranker runs uncached.
	var ranker searchuc.Ranker = baseRanker
	var store db.Store
	if len(cfg.Database.Addrs) > 0 {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		ctx := context.Background()
		if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache store not ready", zap.Error(err))
		}
		logger.Info("Connected to cache store", zap.Strings("addrs", cfg.Database.Addrs))

		ranker = rankcache.New(
			baseRanker, store,
			time.Duration(cfg.Ranking.Cache.TTLSec)*time.Second,
			metrics.RankingCacheTotal, logger,
		)
	}

	// Use case services
	searchSvc := searchuc.New(catRepo, ranker).WithMaxResults(cfg.Ranking.MaxResults)
	healthSvc := healthuc.New(catRepo, baseRanker)

	// Chi server
	server := chiTransport.NewServer(searchSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

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

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
