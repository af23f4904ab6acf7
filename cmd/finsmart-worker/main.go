// The finsmart archive worker: drains archived expenses from SQLite to the
// configured archive target, driven by AMQP messages plus a periodic sweep.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finsmart/internal/amqp"
	"finsmart/internal/backend"
	"finsmart/internal/cli"
	"finsmart/internal/log"
	"finsmart/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("starting finsmart-worker",
		log.FieldOperation, log.OpStartup,
		log.FieldBackend, cfg.DataBackend)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	factory := backend.NewFactory(logger)
	target, err := factory.CreateArchiveTarget(ctx, backend.FromAppConfig(cfg))
	if err != nil {
		logger.Error("failed to initialize archive target", log.FieldError, err)
		os.Exit(1)
	}

	w := worker.NewArchiveWorker(repo, target, cfg.SyncBatchSize, logger)

	// Recover anything that accumulated while the worker was down.
	if err := w.StartupCatchUp(ctx); err != nil {
		logger.Error("startup catch-up failed", log.FieldError, err)
	}

	// AMQP consumption is optional: without a broker the periodic sweep
	// still drains the archive.
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("failed to connect to AMQP, continuing with sweep only",
				log.FieldError, err)
		} else {
			defer client.Close()
			go func() {
				if err := client.ConsumeArchive(ctx, func(msg *amqp.ArchiveMessage) error {
					return w.HandleArchiveMessage(ctx, msg)
				}); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("message consumption failed", log.FieldError, err)
					cancel()
				}
			}()
		}
	}

	ticker := time.NewTicker(cfg.SyncInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := w.ProcessPending(ctx); err != nil {
					logger.Error("periodic sweep failed", log.FieldError, err)
				}
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
	}

	cancel()
	// Give in-flight deliveries a moment to finish.
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped", log.FieldOperation, log.OpShutdown)
}
