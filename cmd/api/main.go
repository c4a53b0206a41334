// Package main is the entry point for the API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/teknoblog/teknoblog/internal/api"
	"github.com/teknoblog/teknoblog/internal/auth"
	"github.com/teknoblog/teknoblog/internal/comment"
	"github.com/teknoblog/teknoblog/internal/config"
	"github.com/teknoblog/teknoblog/internal/feed"
	"github.com/teknoblog/teknoblog/internal/follow"
	"github.com/teknoblog/teknoblog/internal/health"
	"github.com/teknoblog/teknoblog/internal/middleware"
	"github.com/teknoblog/teknoblog/internal/notification"
	"github.com/teknoblog/teknoblog/internal/profile"
	"github.com/teknoblog/teknoblog/internal/ranking"
	"github.com/teknoblog/teknoblog/internal/store"
	"github.com/teknoblog/teknoblog/internal/tracing"
)

const serviceName = "teknoblog-api"

func main() {
	configPath := flag.String("config", "", "path to an optional YAML config file")
	help := flag.Bool("help", false, "display help message")
	flag.Parse()

	if *help {
		fmt.Println("Teknoblog API Server")
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
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		}
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "config", cfg.LogSummary())

	// Distributed tracing (no-op provider when disabled)
	tracerProvider, err := tracing.NewProvider(tracing.Config{
		ServiceName:  serviceName,
		Enabled:      cfg.TracingEnabled,
		Environment:  cfg.Env,
		OTLPEndpoint: cfg.TracingEndpoint,
		SamplingRate: cfg.TracingSampleRate,
		InsecureMode: !cfg.IsProduction(),
	})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			logger.Error("tracing shutdown error", "error", err)
		}
	}()

	// MongoDB
	connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Error("failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	if err := mongoClient.Ping(connectCtx, readpref.Primary()); err != nil {
		logger.Error("failed to ping MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect error", "error", err)
		}
	}()
	db := mongoClient.Database(cfg.MongoDatabase)
	logger.Info("connected to MongoDB", "database", cfg.MongoDatabase)

	// Repositories
	contentStore := store.NewMongoStore(db)
	commentRepo := comment.NewMongoRepository(db)
	profileStore := profile.NewMongoStore(db)
	followRepo := follow.NewMongoRepository(db)
	notificationRepo := notification.NewMongoRepository(db)

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelIndex()
	if err := contentStore.EnsureIndexes(indexCtx); err != nil {
		logger.Error("failed to create post indexes", "error", err)
		os.Exit(1)
	}
	if err := commentRepo.EnsureIndexes(indexCtx); err != nil {
		logger.Error("failed to create comment indexes", "error", err)
		os.Exit(1)
	}
	if err := followRepo.EnsureIndexes(indexCtx); err != nil {
		logger.Error("failed to create follow indexes", "error", err)
		os.Exit(1)
	}
	if err := notificationRepo.EnsureIndexes(indexCtx); err != nil {
		logger.Error("failed to create notification indexes", "error", err)
		os.Exit(1)
	}

	// Redis is optional; without it the profile cache and shared rate
	// limiting degrade to in-process equivalents.
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error("Redis close error", "error", err)
			}
		}()
		logger.Info("Redis configured", "addr", cfg.RedisAddr)
	} else {
		logger.Info("Redis not configured, using in-memory fallbacks")
	}

	// Metrics
	registry := prometheus.NewRegistry()
	rankingMetrics := ranking.NewMetrics()
	if err := rankingMetrics.Register(registry); err != nil {
		logger.Error("failed to register ranking metrics", "error", err)
		os.Exit(1)
	}
	httpMetrics := middleware.NewMetrics()
	if err := httpMetrics.Register(registry); err != nil {
		logger.Error("failed to register HTTP metrics", "error", err)
		os.Exit(1)
	}

	// Domain services
	resolver := profile.NewResolver(profileStore, redisClient)
	engine := ranking.NewEngine(contentStore, rankingMetrics)
	feeds := feed.NewService(engine, contentStore, resolver, followRepo)
	notifications := notification.NewService(notificationRepo)
	jwtService := auth.NewJWTServiceWithRotation(cfg.JWTSecret, cfg.JWTPreviousSecret)

	// Health checkers
	healthConfig := api.HealthHandlersConfig{
		DBChecker: health.NewMongoChecker(mongoClient),
	}
	if redisClient != nil {
		healthConfig.CacheChecker = health.NewRedisChecker(redisClient)
	}

	mux := api.NewRouter(api.RouterConfig{
		Feeds:         api.NewFeedHandlers(feeds),
		Posts:         api.NewPostHandlers(contentStore, commentRepo, notifications, resolver),
		Follows:       api.NewFollowHandlers(followRepo, notifications, resolver),
		Users:         api.NewUserHandlers(profileStore),
		Notifications: api.NewNotificationHandlers(notifications),
		Health:        api.NewHealthHandlers(healthConfig),
		Auth:          auth.Middleware(jwtService),
		Metrics:       promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	// Rate limiting: Redis-backed when available so limits are shared
	// across replicas.
	var rateLimitStore middleware.RateLimitStore
	if redisClient != nil {
		rateLimitStore = middleware.NewRedisRateLimitStore(redisClient, httpMetrics)
	} else {
		rateLimitStore = middleware.NewInMemoryRateLimitStore()
	}
	rateLimitConfig := middleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimitPerMinute,
		WindowDuration:    time.Minute,
	}

	// Middleware chain, outermost first:
	// RequestID -> Logging -> Tracing -> CORS -> HTTPMetrics -> RateLimiter
	var handler http.Handler = mux
	handler = middleware.RateLimiter(rateLimitStore, rateLimitConfig, middleware.UserKeyFunc())(handler)
	handler = middleware.HTTPMetrics(httpMetrics)(handler)
	handler = middleware.CORS(middleware.CORSConfig{AllowedOrigins: cfg.CORSAllowedOrigins})(handler)
	if cfg.TracingEnabled {
		handler = middleware.Tracing(serviceName)(handler)
	}
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RequestID(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "port", cfg.Port, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Create context with timeout for shutdown
	ctx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
