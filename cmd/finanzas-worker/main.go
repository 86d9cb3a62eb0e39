package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/JSBS07/gestor-finanzas/internal/amqp"
	"github.com/JSBS07/gestor-finanzas/internal/config"
	"github.com/JSBS07/gestor-finanzas/internal/log"
	"github.com/JSBS07/gestor-finanzas/internal/metrics"
	"github.com/JSBS07/gestor-finanzas/internal/storage"
	"github.com/JSBS07/gestor-finanzas/internal/worker"
)

func main() {
	// Load .env for local development; in containers the environment is set directly.
	_ = godotenv.Load()

	cfg := config.Load()

	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: log.ComponentWorker,
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

	m := metrics.New()
	w := worker.NewStatementWorker(repo, cfg.ExportDir, m)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	// Periodic full rebuild keeps statements fresh even when events are lost.
	g.Go(func() error {
		return w.Run(ctx, cfg.RebuildInterval)
	})

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, running on the rebuild timer only", log.FieldError, err)
		} else {
			defer client.Close()
			logger.Info("Consuming activity events", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
			g.Go(func() error {
				return client.ConsumeActivityEvents(ctx, func(event *amqp.ActivityEvent) error {
					return w.HandleEvent(ctx, event)
				})
			})
		}
	} else {
		logger.Info("AMQP disabled, rebuilding statements on the timer only")
	}

	logger.Info("Statement worker started",
		"export_dir", cfg.ExportDir,
		"rebuild_interval", cfg.RebuildInterval)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
