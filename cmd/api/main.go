package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/wanderbay/wanderbay-api/internal/config"
	"github.com/wanderbay/wanderbay-api/internal/connect"
	"github.com/wanderbay/wanderbay-api/internal/container"
	"github.com/wanderbay/wanderbay-api/internal/queue"
	"github.com/wanderbay/wanderbay-api/internal/routes"
)

func main() {
	// Load environment variables
	_ = godotenv.Load(".env.local")

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg)
	logger.Info("Starting Wanderbay API server", "environment", cfg.Environment)

	cld, err := connect.CloudinaryCredentials()
	if err != nil {
		logger.Error("Failed to connect to Cloudinary", "error", err)
		os.Exit(1)
	}
	connect.Cld = cld

	mongoClient, err := connect.MongoDBConnect()
	if err != nil {
		logger.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to MongoDB successfully")

	rdb, err := connect.RedisConnect(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	if rdb != nil {
		logger.Info("Connected to Redis successfully")
	}

	// Initialize dependency container
	appContainer := container.NewContainer(cfg, logger, cld, mongoClient)

	// Secondary-effect pipeline context, cancelled on shutdown.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	ensureIndexes(workerCtx, appContainer, logger)

	amqpConn, err := connect.RabbitMQConnect(cfg.AMQPURL)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to RabbitMQ successfully")

	publisher, err := queue.NewPublisher(amqpConn)
	if err != nil {
		logger.Error("Failed to open publisher channel", "error", err)
		os.Exit(1)
	}
	dispatcher := queue.NewDispatcher(appContainer.Repo, publisher, logger)
	go dispatcher.Run(workerCtx)
	go queue.StartOutboxConsumer(workerCtx, cfg.AMQPURL, appContainer.Repo, appContainer.Executor, logger)

	router := routes.SetupRoutes(cfg, appContainer, rdb)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")
	workerCancel()

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	if err := publisher.Close(); err != nil {
		logger.Error("Error closing publisher channel", "error", err)
	}
	if err := amqpConn.Close(); err != nil {
		logger.Error("Error closing RabbitMQ connection", "error", err)
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Error("Error closing Redis connection", "error", err)
		}
	}
	if err := connect.MongoDBDisconnect(); err != nil {
		logger.Error("Error disconnecting from MongoDB", "error", err)
	}

	logger.Info("Server exited")
}

func ensureIndexes(ctx context.Context, cn *container.Container, logger *slog.Logger) {
	indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for name, ensure := range map[string]func(context.Context) error{
		"users":      cn.Repo.EnsureUserIndexes,
		"bookings":   cn.Repo.EnsureBookingIndexes,
		"hotels":     cn.Repo.EnsureHotelIndexes,
		"packages":   cn.Repo.EnsurePackageIndexes,
		"categories": cn.Repo.EnsureCategoryIndexes,
		"coupons":    cn.Repo.EnsureCouponIndexes,
		"outbox":     cn.Repo.EnsureOutboxIndexes,
	} {
		if err := ensure(indexCtx); err != nil {
			logger.Error("Failed to ensure indexes", "collection", name, "error", err)
		}
	}
}

func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	if cfg.IsProduction() {
		// JSON logging for production
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	} else {
		// Human-readable logging for development
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}

	return slog.New(handler)
}
