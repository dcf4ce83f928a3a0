package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"superstore-analytics/internal/config"
	"superstore-analytics/internal/middleware"
	"superstore-analytics/internal/observability"
	"superstore-analytics/internal/server"
	"superstore-analytics/internal/services"
	"superstore-analytics/internal/ui/templates"
)

const (
	renderTimeout  = 10 * time.Second
	csvLoadTimeout = 30 * time.Second
	cacheMaxAge    = "public, max-age=300"
)

func handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	w.Header().Set("Cache-Control", cacheMaxAge)
	if err := templates.Dashboard().Render(ctx, w); err != nil {
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"addr", cfg.Address(),
		"data_dir", cfg.Data.Dir,
	)

	insights := services.NewInsights()
	ctx, cancel := context.WithTimeout(context.Background(), csvLoadTimeout)
	defer cancel()

	start := time.Now()
	if err := insights.LoadSalesCSV(ctx, cfg.SalesPath()); err != nil {
		logger.Error("failed to load sales data", "error", err)
		os.Exit(1)
	}
	if err := insights.LoadReferenceCSVs(cfg.FinancialPath(), cfg.OperationsPath(), cfg.CustomersPath()); err != nil {
		logger.Error("failed to load reference data", "error", err)
		os.Exit(1)
	}
	logger.Info("datasets loaded", "duration", time.Since(start))

	templateHandlers := &server.TemplateHandlers{
		Dashboard: handleDashboard,
	}

	srv := server.NewServer(insights, logger, templateHandlers)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	handler := middlewareChain(srv)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.OnShutdown("insights", func(ctx context.Context) error {
		stats := insights.Stats()
		logger.Info("insights service stopped",
			"sales_records", stats["sales_records"],
			"operations_records", stats["operations_records"],
			"financial_records", stats["financial_records"],
			"customer_records", stats["customer_records"],
			"last_loaded", stats["last_loaded"],
		)
		return nil
	})

	logger.Info("starting graceful server")
	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
