// The finsmart server: per-session expense ledgers with budgets,
// projections, a weekly planner, and a write-behind archive.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finsmart/internal/backend"
	"finsmart/internal/cli"
	apphttp "finsmart/internal/http"
	"finsmart/internal/log"
	"finsmart/internal/session"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	factory := backend.NewFactory(logger)
	be, err := factory.CreateBackend(ctx, backend.FromAppConfig(cfg))
	if err != nil {
		logger.Error("failed to initialize backend", log.FieldError, err)
		os.Exit(1)
	}
	defer func() {
		if err := be.Cleanup(); err != nil {
			logger.Error("backend cleanup failed", log.FieldError, err)
		}
	}()

	sessions := session.NewManager(cfg.SessionTTL, logger)
	sessions.StartCleanup(cfg.SessionCleanupInterval)
	defer sessions.Stop()

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:     ":" + cfg.Port,
		Sessions: sessions,
		Service:  be.Service,
		CacheTTL: cfg.CacheTTL,
		Logger:   logger,
	})
	if err != nil {
		logger.Error("failed to initialize server", log.FieldError, err)
		os.Exit(1)
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("starting finsmart server",
		"port", cfg.Port,
		log.FieldBackend, cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", log.FieldError, err)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("server stopped", log.FieldOperation, log.OpShutdown)
}
