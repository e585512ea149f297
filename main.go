package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ms-users/internal/config"
	"ms-users/internal/database"
	"ms-users/internal/kafka"
	"ms-users/internal/logger"
	"ms-users/internal/server"
	"ms-users/internal/users/cache"
	user_db "ms-users/internal/users/db"
	users "ms-users/internal/users/service"
	"ms-users/internal/users/user_api"
	"ms-users/internal/web"
)

func main() {
	envErr := config.LoadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logger.NewLogger(cfg.Log.Dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	logger.Info("APP", "Starting User Service initialization")
	if envErr != nil {
		logger.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		logger.Info("CONFIG", "Loaded environment variables from .env file")
	}

	ctx := context.Background()

	bunDB, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	store := &user_db.DB{Bun: bunDB}
	if err := store.CreateSchema(ctx); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Failed to create users table: %v", err))
	}
	logger.LogDatabase("CREATE", "users", "Schema ready")

	// Interface values stay nil when a backend is disabled.
	var userCache users.UserCache
	if cfg.Redis.Enabled() {
		redisClient, err := cache.Connect(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Warn("REDIS", fmt.Sprintf("Cache disabled: %v", err))
		} else {
			defer redisClient.Close()
			userCache = cache.NewRedisCache(redisClient, cfg.Redis.CacheTTL)
		}
	} else {
		logger.Info("REDIS", "REDIS_ADDR not set, user cache disabled")
	}

	var publisher users.EventPublisher
	if cfg.Kafka.Enabled {
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, cfg.Kafka.Topics.All()); err != nil {
			logger.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			for _, topic := range cfg.Kafka.Topics.All() {
				logger.LogKafka("ENSURE", topic, "topic ready")
			}
		}
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics, cfg.Kafka.PublishTimeout)
		defer producer.Close()
		publisher = producer
		logger.Info("KAFKA", "Kafka producer initialized successfully")
	} else {
		logger.Info("KAFKA", "KAFKA_ENABLED is false, user events disabled")
	}

	userService := users.NewUserService(store, userCache, publisher, logger)
	userHandler := user_api.NewHandler(userService, logger)
	pageHandler := web.NewHandler(cfg.Server.APIURL)

	logger.Info("HTTP", "Setting up router and middleware")
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server.NewRouter(userHandler, pageHandler, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP", fmt.Sprintf("🚀 Server running on port %s", cfg.Server.Port))
		logger.Info("HTTP", fmt.Sprintf("API URL: %s", cfg.Server.APIURL))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	logger.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		logger.Info("HTTP", "✅ User Service shutdown complete")
	}
}
