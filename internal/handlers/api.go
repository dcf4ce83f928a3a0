package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"superstore-analytics/internal/errors"
	"superstore-analytics/internal/models"
	"superstore-analytics/internal/observability"
	"superstore-analytics/internal/services"
)

const (
	defaultTopProducts = 10
	maxTopProducts     = 50
	cacheControl       = "public, max-age=300"
	dateLayout         = "2006-01-02"
)

type APIHandlers struct {
	insights *services.Insights
	logger   *slog.Logger
}

func NewAPIHandlers(insights *services.Insights, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{insights: insights, logger: logger}
}

// filterFromQuery builds a sales filter from the query string: from, to,
// region, category, and repeated segment parameters.
func filterFromQuery(r *http.Request) (services.Filter, error) {
	q := r.URL.Query()
	var f services.Filter

	if v := q.Get("from"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return f, errors.BadRequest("invalid 'from' date, expected YYYY-MM-DD")
		}
		f.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return f, errors.BadRequest("invalid 'to' date, expected YYYY-MM-DD")
		}
		f.To = t
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return f, errors.BadRequest("'to' date precedes 'from' date")
	}

	f.Region = q.Get("region")
	f.Category = q.Get("category")
	f.Segments = q["segment"]
	return f, nil
}

func (h *APIHandlers) withFilter(w http.ResponseWriter, r *http.Request, respond func(services.Filter)) {
	f, err := filterFromQuery(r)
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}
	respond(f)
}

func (h *APIHandlers) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	h.withFilter(w, r, func(f services.Filter) {
		errors.WriteSuccessWithHeaders(w, h.insights.Summary(f), map[string]string{"Cache-Control": cacheControl})
	})
}

func (h *APIHandlers) HandleMonthlyTrend(w http.ResponseWriter, r *http.Request) {
	h.withFilter(w, r, func(f services.Filter) {
		errors.WriteSuccessWithHeaders(w, h.insights.MonthlyTrend(f), map[string]string{"Cache-Control": cacheControl})
	})
}

func (h *APIHandlers) HandleCategorySplit(w http.ResponseWriter, r *http.Request) {
	h.withFilter(w, r, func(f services.Filter) {
		errors.WriteSuccessWithHeaders(w, h.insights.CategorySplit(f), map[string]string{"Cache-Control": cacheControl})
	})
}

func (h *APIHandlers) HandleRegionPerformance(w http.ResponseWriter, r *http.Request) {
	h.withFilter(w, r, func(f services.Filter) {
		errors.WriteSuccessWithHeaders(w, h.insights.RegionPerformance(f), map[string]string{"Cache-Control": cacheControl})
	})
}

func (h *APIHandlers) HandleSegmentAnalysis(w http.ResponseWriter, r *http.Request) {
	h.withFilter(w, r, func(f services.Filter) {
		errors.WriteSuccessWithHeaders(w, h.insights.SegmentAnalysis(f), map[string]string{"Cache-Control": cacheControl})
	})
}

func (h *APIHandlers) HandleTopProducts(w http.ResponseWriter, r *http.Request) {
	limit := defaultTopProducts
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxTopProducts {
			errors.WriteError(w, h.logger, errors.BadRequest("limit must be an integer between 1 and 50"),
				observability.GetRequestID(r.Context()))
			return
		}
		limit = n
	}
	h.withFilter(w, r, func(f services.Filter) {
		errors.WriteSuccessWithHeaders(w, h.insights.TopProducts(f, limit), map[string]string{"Cache-Control": cacheControl})
	})
}

func (h *APIHandlers) HandleSubCategories(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		errors.WriteError(w, h.logger, errors.Validation("'category' parameter is required"),
			observability.GetRequestID(r.Context()))
		return
	}
	h.withFilter(w, r, func(f services.Filter) {
		errors.WriteSuccess(w, h.insights.SubCategories(f, category))
	})
}

func (h *APIHandlers) HandleStates(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")
	if region == "" {
		errors.WriteError(w, h.logger, errors.Validation("'region' parameter is required"),
			observability.GetRequestID(r.Context()))
		return
	}
	h.withFilter(w, r, func(f services.Filter) {
		errors.WriteSuccess(w, h.insights.States(f, region))
	})
}

func (h *APIHandlers) HandleScenario(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	in, err := scenarioFromQuery(r)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	h.withFilter(w, r, func(f services.Filter) {
		result, err := h.insights.Scenario(f, in)
		if err != nil {
			errors.WriteError(w, h.logger, errors.Wrap(err, errors.CodeValidation, err.Error()), requestID)
			return
		}
		errors.WriteSuccess(w, result)
	})
}

func scenarioFromQuery(r *http.Request) (models.ScenarioInput, error) {
	var in models.ScenarioInput
	for _, p := range []struct {
		key string
		dst *float64
	}{
		{"price", &in.PriceChangePct},
		{"volume", &in.VolumeChangePct},
		{"cost", &in.CostChangePct},
	} {
		v := r.URL.Query().Get(p.key)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return in, errors.BadRequest("'" + p.key + "' must be a number")
		}
		*p.dst = f
	}
	return in, nil
}

func (h *APIHandlers) HandleFinancialOverview(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.insights.FinancialOverview(), map[string]string{"Cache-Control": cacheControl})
}

func (h *APIHandlers) HandleOperationsOverview(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.insights.OperationsByShift(), map[string]string{"Cache-Control": cacheControl})
}

func (h *APIHandlers) HandleCustomerOverview(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.insights.CustomerSummary(), map[string]string{"Cache-Control": cacheControl})
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	})
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.insights.Stats())
}
