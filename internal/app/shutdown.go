package app

import (
	"context"
	"os"

	"go.uber.org/zap"
)

// awaitShutdown blocks until a signal arrives on quit, cancels the background
// loop and waits for it to return, so deferred Close calls never race a
// message that is still being handled.
func awaitShutdown(quit <-chan os.Signal, cancel context.CancelFunc, done <-chan struct{}, logger *zap.Logger) {
	select {
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case <-done:
		logger.Warn("background loop exited before a shutdown signal")
	}
	cancel()
	<-done
	logger.Info("shutdown complete")
}
