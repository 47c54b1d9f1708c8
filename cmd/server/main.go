package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/emberwatch/emberwatch/configs"
	"github.com/emberwatch/emberwatch/internal/application/services"
	"github.com/emberwatch/emberwatch/internal/core/ports"
	"github.com/emberwatch/emberwatch/internal/infrastructure/db"
	"github.com/emberwatch/emberwatch/internal/infrastructure/health"
	"github.com/emberwatch/emberwatch/internal/infrastructure/httpserver"
	"github.com/emberwatch/emberwatch/internal/infrastructure/llm"
	"github.com/emberwatch/emberwatch/internal/infrastructure/redis"
	"github.com/emberwatch/emberwatch/internal/infrastructure/repositories"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := configs.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Setup logger
	logger := logrus.New()
	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}

	logger.Info("Starting Emberwatch suggest service...")

	// Initialize database (apply pool settings from config)
	database, err := db.Connect(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	logger.Info("Connected to database successfully")

	// Initialize Redis client
	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	logger.Info("Connected to Redis successfully")

	// Run migrations
	if err := database.Migrate("./migrations"); err != nil {
		logger.Warn("Failed to run migrations:", err)
	}

	// Caches: one client, separate namespaces for suggestions and flags
	suggestionCache := redis.NewRedisCache(redisClient, "suggest")
	flagCache := redis.NewRedisCache(redisClient, "appcache")

	// Repositories
	eventStore := repositories.NewEventRepository(database, logger)
	baseFlagRepo := repositories.NewFeatureFlagRepository(database)
	flagRepo := repositories.NewCachingFeatureFlagRepository(baseFlagRepo, flagCache, 30*time.Minute)
	rateLimitRepo := repositories.NewRateLimitRedisRepository(redisClient)

	// Services
	featureService := services.NewFeatureFlagService(flagRepo, logger)
	policyResolver := services.NewStaticPolicyResolver(cfg.AI.Policy)

	rateLimiter := services.NewRateLimiterService(rateLimitRepo, &services.RateLimiterConfig{
		RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
		Window:            cfg.RateLimit.Window,
		KeyPrefix:         cfg.RateLimit.KeyPrefix,
	}, logger)

	chatClient := llm.NewClient(&llm.ClientConfig{
		APIKey:      cfg.AI.APIKey,
		BaseURL:     cfg.AI.BaseURL,
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		Timeout:     cfg.AI.Timeout,
	})
	suggestionService := services.NewSuggestionService(suggestionCache, chatClient, cfg.AI.SuggestionTTL, logger)

	hcSlice := []ports.HealthChecker{health.NewDBHealthChecker(database), health.NewRedisHealthChecker(redisClient)}

	// Create server configuration
	serverConfig := &httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		TLSCertFile:  cfg.Server.TLSCertFile,
		TLSKeyFile:   cfg.Server.TLSKeyFile,
		AIEnabled:    cfg.AI.APIKey != "",
	}

	deps := httpserver.ServerDeps{
		EventStore:         eventStore,
		FeatureFlagService: featureService,
		SuggestionService:  suggestionService,
		PolicyResolver:     policyResolver,
		RateLimiter:        rateLimiter,
		HealthCheckers:     hcSlice,
	}

	server := httpserver.NewServer(serverConfig, cfg.Auth.JWTSecret, logger, deps)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	logger.Infof("Server started on %s:%s", cfg.Server.Host, cfg.Server.Port)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
