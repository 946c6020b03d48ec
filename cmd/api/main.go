// Package main is the entry point for the feed API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/yusefzzz/connectly-spark-82/internal/api"
	"github.com/yusefzzz/connectly-spark-82/internal/auth"
	"github.com/yusefzzz/connectly-spark-82/internal/config"
	"github.com/yusefzzz/connectly-spark-82/internal/db"
	"github.com/yusefzzz/connectly-spark-82/internal/event"
	"github.com/yusefzzz/connectly-spark-82/internal/feed"
	"github.com/yusefzzz/connectly-spark-82/internal/health"
	"github.com/yusefzzz/connectly-spark-82/internal/middleware"
	"github.com/yusefzzz/connectly-spark-82/internal/notification"
	"github.com/yusefzzz/connectly-spark-82/internal/profile"
	"github.com/yusefzzz/connectly-spark-82/internal/tracing"
)

const serviceName = "connectly-feed-api"

func main() {
	configPath := flag.String("config", "", "path to an optional YAML config file")
	help := flag.Bool("help", false, "display help message")
	flag.Parse()

	if *help {
		fmt.Println("Connectly Feed API Server")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, errs := config.Load(*configPath)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, "config:", err)
		}
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "config", cfg.LogSummary())

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	tracerProvider, err := tracing.NewProvider(tracing.Config{
		ServiceName:  serviceName,
		Enabled:      cfg.TracingEnabled,
		Environment:  cfg.Env,
		ExporterType: cfg.TracingExporter,
		OTLPEndpoint: cfg.TracingOTLPEndpoint,
		SamplingRate: cfg.TracingSamplingRate,
		InsecureMode: cfg.TracingInsecure,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			logger.Error("tracer shutdown", "error", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	httpMetrics := middleware.NewMetrics()
	if err := httpMetrics.Register(registry); err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}
	feedMetrics := feed.NewMetrics()
	if err := feedMetrics.Register(registry); err != nil {
		return fmt.Errorf("register feed metrics: %w", err)
	}

	// Storage. Postgres when configured, in-memory otherwise.
	var (
		events        event.Repository
		likes         event.LikeRepository
		attendance    event.AttendanceRepository
		profiles      profile.Repository
		follows       profile.FollowRepository
		notifications notification.Repository
		gateway       feed.Gateway
		checkers      = make(map[string]health.Checker)
	)
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer conn.Close()

		events = event.NewPostgresRepository(conn)
		likes = event.NewPostgresLikeRepository(conn)
		attendance = event.NewPostgresAttendanceRepository(conn)
		profiles = profile.NewPostgresRepository(conn)
		follows = profile.NewPostgresFollowRepository(conn)
		notifications = notification.NewPostgresRepository(conn)
		gateway = feed.NewPostgresGateway(conn, logger)
		checkers["database"] = health.NewDBChecker(conn)
		logger.Info("using postgres storage")
	} else {
		events = event.NewInMemoryRepository()
		likes = event.NewInMemoryLikeRepository()
		attendance = event.NewInMemoryAttendanceRepository()
		profiles = profile.NewInMemoryRepository()
		follows = profile.NewInMemoryFollowRepository()
		notifications = notification.NewInMemoryRepository()
		gateway = feed.NewRepositoryGateway(events, likes, attendance, follows)
		logger.Warn("DATABASE_URL not set, using in-memory storage")
	}

	// Rate limit store. Redis when configured, in-process otherwise.
	var limitStore middleware.RateLimitStore
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		defer client.Close()
		limitStore = middleware.NewRedisRateLimitStore(client, logger, httpMetrics)
		checkers["redis"] = health.NewRedisChecker(client)
		logger.Info("using redis rate limiting")
	} else {
		store := middleware.NewInMemoryRateLimitStore()
		go func() {
			ticker := time.NewTicker(time.Minute)
			defer ticker.Stop()
			for range ticker.C {
				store.Cleanup()
			}
		}()
		limitStore = store
		logger.Warn("REDIS_URL not set, using in-process rate limiting")
	}

	weights, err := feed.LoadCalibration(cfg.FeedCalibrationPath)
	if err != nil {
		logger.Warn("feed calibration unavailable, using default weights", "error", err)
	}
	feedService := feed.NewService(gateway,
		feed.WithWeights(weights),
		feed.WithMetrics(feedMetrics),
	)

	var jwtService *auth.Service
	if cfg.JWTSecretPrevious != "" {
		jwtService = auth.NewServiceWithRotation(cfg.JWTSecret, cfg.JWTSecretPrevious)
	} else {
		jwtService = auth.NewService(cfg.JWTSecret)
	}

	mux := api.NewRouter(&api.Handlers{
		Feed:          api.NewFeedHandlers(feedService),
		Events:        api.NewEventHandlers(events, likes, attendance),
		Engagement:    api.NewEngagementHandlers(events, likes, attendance, notifications),
		Profiles:      api.NewProfileHandlers(profiles, follows),
		Notifications: api.NewNotificationHandlers(notifications),
		Health:        api.NewHealthHandlers(checkers),
	})
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	limitConfig := middleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimitRequests,
		WindowDuration:    time.Duration(cfg.RateLimitWindowSeconds) * time.Second,
	}
	if err := limitConfig.Validate(); err != nil {
		return fmt.Errorf("rate limit config: %w", err)
	}

	// Middleware chain, outermost first.
	var handler http.Handler = mux
	handler = middleware.RateLimiter(limitStore, limitConfig, middleware.UserKeyFunc())(handler)
	handler = middleware.Authenticate(jwtService)(handler)
	handler = middleware.CORS(middleware.DefaultCORSConfig(cfg.AllowedOrigins()))(handler)
	handler = middleware.HTTPMetrics(httpMetrics)(handler)
	handler = middleware.Logging(logger)(handler)
	if cfg.TracingEnabled {
		handler = middleware.Tracing(serviceName)(handler)
	}
	handler = middleware.RequestID(handler)

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "port", cfg.Port, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
