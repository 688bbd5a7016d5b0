package observability

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// ShutdownFunc releases one resource during shutdown.
type ShutdownFunc func(context.Context) error

const shutdownTimeout = 30 * time.Second

// GracefulShutdown blocks until SIGINT or SIGTERM, drains the HTTP
// server, then runs the shutdown funcs in order. Everything shares one
// timeout; whatever has not finished when it expires is abandoned.
func GracefulShutdown(logger *Logger, server *http.Server, shutdownFuncs ...ShutdownFunc) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	logger.Infof("Received signal %s, starting graceful shutdown", sig)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error

	if server != nil {
		logger.Info("Shutting down HTTP server")
		if err := server.Shutdown(ctx); err != nil {
			logger.WithError(err).Error("HTTP server shutdown error")
			errs = append(errs, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	for i, fn := range shutdownFuncs {
		if err := fn(ctx); err != nil {
			logger.WithError(err).Errorf("Shutdown function %d failed", i)
			errs = append(errs, err)
		}
		if ctx.Err() != nil {
			logger.Warn("Shutdown timeout reached, abandoning remaining cleanup")
			errs = append(errs, ctx.Err())
			break
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown completed with %d errors", len(errs))
	}
	logger.Info("Graceful shutdown complete")
	return nil
}
