package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/VladKovDev/cryptocart/pkg/logger"
	"go.uber.org/zap"
)

// gracefulShutdown waits for a signal, context cancellation or a server
// failure, then stops the server and waits for it within timeout.
func gracefulShutdown(ctx context.Context, cancel context.CancelFunc, logger logger.Logger, serverErr <-chan error, timeout time.Duration) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		logger.Info("context cancelled, starting shutdown")
	case sig := <-sigChan:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			logger.Error("server stopped", zap.Error(err))
		}
		return err
	}

	cancel()

	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, stop := context.WithTimeout(context.Background(), timeout)
	defer stop()

	select {
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timeout exceeded")
		return shutdownCtx.Err()
	case err := <-serverErr:
		if err != nil {
			return err
		}
		logger.Info("shutdown completed successfully")
		return nil
	}
}
