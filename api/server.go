package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/shopperssay/backend/pkg/config"
	"github.com/shopperssay/backend/pkg/logger"
)

const shutdownGrace = 15 * time.Second

// NewServer wraps the router in an http.Server with sane timeouts.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}
}

// Serve blocks until the context is cancelled or the listener fails, then
// drains in-flight requests before returning.
func Serve(ctx context.Context, cfg *config.Config, logg *logger.Logger, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if logg != nil {
		logg.Info(logg.WithField(shutdownCtx, "env", cfg.App.Env), "draining api server")
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
