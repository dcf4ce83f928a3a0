package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"

	"superstore-analytics/internal/config"
)

// Per-hook budget inside the overall shutdown window.
const hookTimeout = 10 * time.Second

// GracefulServer wraps the HTTP server with signal handling and named
// shutdown hooks, so the dataset services can report or persist state as the
// process exits.
type GracefulServer struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config

	mu    sync.Mutex
	hooks []shutdownHook
}

type shutdownHook struct {
	name string
	fn   func(ctx context.Context) error
}

func NewGracefulServer(httpServer *http.Server, logger *slog.Logger, cfg *config.Config) *GracefulServer {
	return &GracefulServer{
		httpServer: httpServer,
		logger:     logger,
		cfg:        cfg,
	}
}

// OnShutdown registers a named hook executed during graceful shutdown. Hooks
// run concurrently with the HTTP drain, each under its own timeout.
func (gs *GracefulServer) OnShutdown(name string, fn func(ctx context.Context) error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.hooks = append(gs.hooks, shutdownHook{name: name, fn: fn})
}

func (gs *GracefulServer) ListenAndServe() error {
	serverErrors := make(chan error, 1)

	go func() {
		gs.logger.Info("starting server",
			"addr", gs.httpServer.Addr,
			"read_timeout", gs.cfg.Server.ReadTimeout,
			"write_timeout", gs.cfg.Server.WriteTimeout,
		)
		serverErrors <- gs.httpServer.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil

	case sig := <-shutdown:
		gs.logger.Info("shutdown signal received", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), gs.cfg.Server.ShutdownTimeout)
		defer cancel()

		return gs.drain(ctx)
	}
}

// drain stops the HTTP server and runs the registered hooks, collecting every
// failure instead of stopping at the first one.
func (gs *GracefulServer) drain(ctx context.Context) error {
	gs.logger.Info("starting graceful shutdown", "timeout", gs.cfg.Server.ShutdownTimeout)

	gs.mu.Lock()
	hooks := slices.Clone(gs.hooks)
	gs.mu.Unlock()

	results := make(chan error, len(hooks)+1)
	var wg sync.WaitGroup

	for _, hook := range hooks {
		wg.Add(1)
		go func(h shutdownHook) {
			defer wg.Done()

			hookCtx, cancel := context.WithTimeout(ctx, hookTimeout)
			defer cancel()

			if err := h.fn(hookCtx); err != nil {
				gs.logger.Error("shutdown hook failed", "hook", h.name, "error", err)
				results <- fmt.Errorf("shutdown hook %s: %w", h.name, err)
				return
			}
			gs.logger.Debug("shutdown hook completed", "hook", h.name)
		}(hook)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := gs.httpServer.Shutdown(ctx); err != nil {
			gs.logger.Error("HTTP server shutdown failed", "error", err)
			results <- fmt.Errorf("http shutdown: %w", err)
			return
		}
		gs.logger.Info("HTTP server stopped")
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		close(results)
		var errs []error
		for err := range results {
			errs = append(errs, err)
		}
		if len(errs) > 0 {
			return errors.Join(errs...)
		}
		gs.logger.Info("graceful shutdown completed")
		return nil

	case <-ctx.Done():
		gs.logger.Warn("shutdown timeout exceeded, forcing exit")
		return ctx.Err()
	}
}
