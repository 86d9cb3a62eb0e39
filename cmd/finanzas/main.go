package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/JSBS07/gestor-finanzas/internal/amqp"
	"github.com/JSBS07/gestor-finanzas/internal/auth"
	"github.com/JSBS07/gestor-finanzas/internal/config"
	apphttp "github.com/JSBS07/gestor-finanzas/internal/http"
	"github.com/JSBS07/gestor-finanzas/internal/log"
	"github.com/JSBS07/gestor-finanzas/internal/metrics"
	"github.com/JSBS07/gestor-finanzas/internal/services"
	"github.com/JSBS07/gestor-finanzas/internal/storage"
)

func main() {
	// Load .env for local development; in containers the environment is set directly.
	_ = godotenv.Load()

	cfg := config.Load()

	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: log.ComponentApp,
	})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open SQLite repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	creds := auth.NewManager()

	if cfg.SeedDemoData {
		if err := repo.Seed(context.Background(), creds); err != nil {
			logger.Error("Failed to seed demo data", log.FieldError, err)
			os.Exit(1)
		}
	}

	var events services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without event publishing", log.FieldError, err)
		} else {
			defer client.Close()
			events = client
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled, activity events will not be published")
	}

	m := metrics.New()

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Activities: services.NewActivityService(repo, events, m),
		Accounts:   services.NewAccountService(repo, creds),
		Aggregator: services.NewAggregator(repo, m),
		Tokens:     auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL),
		Metrics:    m,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting finanzas server", "port", cfg.Port, "db", cfg.SQLiteDBPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
