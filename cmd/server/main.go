// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/toolhatch-backend/internal/config"
	"github.com/javajoker/toolhatch-backend/internal/database"
	"github.com/javajoker/toolhatch-backend/internal/events"
	"github.com/javajoker/toolhatch-backend/internal/gateway"
	"github.com/javajoker/toolhatch-backend/internal/reviews"
	"github.com/javajoker/toolhatch-backend/internal/router"
	"github.com/javajoker/toolhatch-backend/internal/search"
	"github.com/javajoker/toolhatch-backend/internal/services"
	"github.com/javajoker/toolhatch-backend/internal/utils"
)

func main() {
	logger := logrus.StandardLogger()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	configureLogger(logger, cfg)

	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize database
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer database.Close(db)

	// Run database migrations
	if err := database.RunMigrations(db); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}

	if cfg.SeedData {
		if err := database.SeedInitialData(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logger.WithError(err).Fatal("Failed to seed database")
		}
	}

	publisher := newPublisher(logger, cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close event publisher")
		}
	}()

	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize storage")
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	app := router.Initialize(router.Dependencies{
		DB:        db,
		Config:    cfg,
		Logger:    logger,
		Publisher: publisher,
		Indexer:   newIndexer(logger, cfg),
		Gateway: gateway.NewClient(gateway.Options{
			BaseURL:      cfg.Payment.NOWPaymentsBaseURL,
			APIKey:       cfg.Payment.NOWPaymentsAPIKey,
			Timeout:      time.Duration(cfg.Payment.RequestTimeout) * time.Second,
			MaxRedirects: cfg.Payment.MaxRedirects,
		}),
		Notifier: services.NewNotificationService(cfg),
		Linker:   storageService,
		Reviews:  reviews.NewPool(nil),
	})

	if cfg.Elasticsearch.URL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := app.Products.ReindexAll(ctx); err != nil {
			logger.WithError(err).Warn("Initial product reindex failed; search falls back to the database")
		}
		cancel()
	}

	app.Start()

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      app.Engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
	app.Close()

	logger.Info("Server exited")
}

func configureLogger(logger *logrus.Logger, cfg *config.Config) {
	if cfg.Environment == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
}

func newPublisher(logger *logrus.Logger, cfg *config.Config) events.Publisher {
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Info("No Kafka brokers configured, order events go to the log")
		return events.NewLogPublisher(logger)
	}
	logger.WithField("brokers", cfg.Kafka.Brokers).Info("Publishing order events to Kafka")
	return events.NewKafkaPublisher(cfg.Kafka.Brokers)
}

// newIndexer returns nil unless the search cluster is configured and reachable.
func newIndexer(logger *logrus.Logger, cfg *config.Config) services.ProductIndexer {
	if cfg.Elasticsearch.URL == "" {
		return nil
	}

	index, err := search.NewProductIndex(search.Options{
		Addresses: []string{cfg.Elasticsearch.URL},
		Username:  cfg.Elasticsearch.Username,
		Password:  cfg.Elasticsearch.Password,
		Index:     cfg.Elasticsearch.ProductIndex,
	})
	if err != nil {
		logger.WithError(err).Warn("Product search index disabled")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := index.Ping(ctx); err != nil {
		logger.WithError(err).Warn("Elasticsearch unreachable, product search uses the database")
		return nil
	}
	return index
}
