package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"superstore-analytics/internal/config"
)

func newTestGracefulServer() *GracefulServer {
	cfg := &config.Config{
		Server: config.ServerConfig{ShutdownTimeout: time.Second},
	}
	return NewGracefulServer(&http.Server{}, slog.New(slog.DiscardHandler), cfg)
}

func TestGracefulServer_RunsHooks(t *testing.T) {
	gs := newTestGracefulServer()

	var ran atomic.Int32
	gs.OnShutdown("first", func(ctx context.Context) error {
		ran.Add(1)
		return nil
	})
	gs.OnShutdown("second", func(ctx context.Context) error {
		ran.Add(1)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := gs.drain(ctx); err != nil {
		t.Fatalf("drain() failed: %v", err)
	}
	if got := ran.Load(); got != 2 {
		t.Errorf("expected 2 hooks to run, got %d", got)
	}
}

func TestGracefulServer_CollectsHookErrors(t *testing.T) {
	gs := newTestGracefulServer()

	hookErr := errors.New("cache flush failed")
	gs.OnShutdown("cache", func(ctx context.Context) error {
		return hookErr
	})
	gs.OnShutdown("stats", func(ctx context.Context) error {
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := gs.drain(ctx)
	if err == nil {
		t.Fatal("expected hook error from drain()")
	}
	if !errors.Is(err, hookErr) {
		t.Errorf("drain() error should wrap the hook failure, got %v", err)
	}
	if !strings.Contains(err.Error(), "cache") {
		t.Errorf("drain() error should name the failed hook, got %v", err)
	}
}

func TestGracefulServer_Timeout(t *testing.T) {
	gs := newTestGracefulServer()

	gs.OnShutdown("slow", func(ctx context.Context) error {
		time.Sleep(200 * time.Millisecond)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	if err := gs.drain(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline error from drain(), got %v", err)
	}
}

func TestGracefulServer_NoHooks(t *testing.T) {
	gs := newTestGracefulServer()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := gs.drain(ctx); err != nil {
		t.Errorf("drain() without hooks should succeed, got %v", err)
	}
}
