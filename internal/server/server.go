package server

import (
	"log/slog"
	"net/http"

	"superstore-analytics/internal/handlers"
	"superstore-analytics/internal/services"
)

type Server struct {
	insights    *services.Insights
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(insights *services.Insights, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		insights:    insights,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(insights, logger),
		sseHandlers: handlers.NewSSEHandlers(insights, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	s.mux.HandleFunc("GET /{$}", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API
	s.mux.HandleFunc("GET /api/kpis", s.apiHandlers.HandleKPIs)
	s.mux.HandleFunc("GET /api/monthly-trend", s.apiHandlers.HandleMonthlyTrend)
	s.mux.HandleFunc("GET /api/category-split", s.apiHandlers.HandleCategorySplit)
	s.mux.HandleFunc("GET /api/region-performance", s.apiHandlers.HandleRegionPerformance)
	s.mux.HandleFunc("GET /api/segment-analysis", s.apiHandlers.HandleSegmentAnalysis)
	s.mux.HandleFunc("GET /api/top-products", s.apiHandlers.HandleTopProducts)
	s.mux.HandleFunc("GET /api/subcategories", s.apiHandlers.HandleSubCategories)
	s.mux.HandleFunc("GET /api/states", s.apiHandlers.HandleStates)
	s.mux.HandleFunc("GET /api/scenario", s.apiHandlers.HandleScenario)
	s.mux.HandleFunc("GET /api/financial-overview", s.apiHandlers.HandleFinancialOverview)
	s.mux.HandleFunc("GET /api/operations-overview", s.apiHandlers.HandleOperationsOverview)
	s.mux.HandleFunc("GET /api/customer-overview", s.apiHandlers.HandleCustomerOverview)

	// Datastar SSE endpoints driving the dashboard panels
	s.mux.HandleFunc("GET /sse/kpis", s.sseHandlers.HandleKPIs)
	s.mux.HandleFunc("GET /sse/monthly-trend", s.sseHandlers.HandleMonthlyTrend)
	s.mux.HandleFunc("GET /sse/category-split", s.sseHandlers.HandleCategorySplit)
	s.mux.HandleFunc("GET /sse/regions", s.sseHandlers.HandleRegions)
	s.mux.HandleFunc("GET /sse/segments", s.sseHandlers.HandleSegments)
	s.mux.HandleFunc("GET /sse/top-products", s.sseHandlers.HandleTopProducts)
	s.mux.HandleFunc("GET /sse/scenario", s.sseHandlers.HandleScenario)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
