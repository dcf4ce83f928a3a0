package handlers

import (
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/starfederation/datastar-go/datastar"

	"superstore-analytics/internal/models"
	"superstore-analytics/internal/services"
)

const maxTableRows = 20

var kpiTemplate = template.Must(template.New("kpis").Parse(`
<div id="kpi-row" class="kpi-row">
<div class="kpi-card"><span class="kpi-label">Total Sales</span><strong>${{printf "%.0f" .TotalSales}}</strong></div>
<div class="kpi-card"><span class="kpi-label">Total Profit</span><strong>${{printf "%.0f" .TotalProfit}}</strong><span class="kpi-delta">{{printf "%.1f" .ProfitMargin}}% margin</span></div>
<div class="kpi-card"><span class="kpi-label">Orders</span><strong>{{.OrderCount}}</strong></div>
<div class="kpi-card"><span class="kpi-label">Avg Order Value</span><strong>${{printf "%.2f" .AvgOrderValue}}</strong></div>
</div>`))

var monthlyTableTemplate = template.Must(template.New("monthlyTable").Parse(`
<div id="monthly-content">
<table class="modern-table">
<thead><tr><th>Month</th><th>Sales</th><th>Profit</th></tr></thead>
<tbody>
{{range .}}<tr>
<td>{{.Month}}</td>
<td><strong>${{printf "%.2f" .Sales}}</strong></td>
<td>${{printf "%.2f" .Profit}}</td>
</tr>{{end}}
</tbody>
</table>
</div>`))

var categoryTableTemplate = template.Must(template.New("categoryTable").Parse(`
<div id="category-content">
<table class="modern-table">
<thead><tr><th>Category</th><th>Sales</th><th>Share</th></tr></thead>
<tbody>
{{range .}}<tr>
<td><span class="category-badge">{{.Category}}</span></td>
<td><strong>${{printf "%.2f" .Sales}}</strong></td>
<td>{{printf "%.1f" .Share}}%</td>
</tr>{{end}}
</tbody>
</table>
</div>`))

var regionTableTemplate = template.Must(template.New("regionTable").Parse(`
<div id="regions-content">
<table class="modern-table">
<thead><tr><th>Region</th><th>Sales</th><th>Profit</th><th>Margin</th></tr></thead>
<tbody>
{{range .}}<tr>
<td>{{.Region}}</td>
<td><strong>${{printf "%.2f" .Sales}}</strong></td>
<td>${{printf "%.2f" .Profit}}</td>
<td>{{printf "%.1f" .ProfitMargin}}%</td>
</tr>{{end}}
</tbody>
</table>
</div>`))

var segmentTableTemplate = template.Must(template.New("segmentTable").Parse(`
<div id="segments-content">
<table class="modern-table">
<thead><tr><th>Segment</th><th>Sales</th><th>Profit</th><th>Orders</th></tr></thead>
<tbody>
{{range .}}<tr>
<td><span class="category-badge">{{.Segment}}</span></td>
<td><strong>${{printf "%.2f" .Sales}}</strong></td>
<td>${{printf "%.2f" .Profit}}</td>
<td>{{.Orders}}</td>
</tr>{{end}}
</tbody>
</table>
</div>`))

var productTableTemplate = template.Must(template.New("productTable").Parse(`
<div id="products-content">
<table class="modern-table">
<thead><tr><th>Product</th><th>Sales</th><th>Orders</th></tr></thead>
<tbody>
{{range .}}<tr>
<td>{{.ProductName}}</td>
<td><strong>${{printf "%.2f" .Sales}}</strong></td>
<td>{{.Orders}}</td>
</tr>{{end}}
</tbody>
</table>
</div>`))

var scenarioTemplate = template.Must(template.New("scenario").Parse(`
<div id="scenario-content" class="kpi-row">
<div class="kpi-card"><span class="kpi-label">Projected Sales</span><strong>${{printf "%.0f" .ProjectedSales}}</strong><span class="kpi-delta">{{printf "%+.0f" .SalesDelta}}</span></div>
<div class="kpi-card"><span class="kpi-label">Projected Profit</span><strong>${{printf "%.0f" .ProjectedProfit}}</strong><span class="kpi-delta">{{printf "%+.0f" .ProfitDelta}}</span></div>
<div class="kpi-card"><span class="kpi-label">Projected Margin</span><strong>{{printf "%.1f" .ProjectedMargin}}%</strong><span class="kpi-delta">{{printf "%+.1f" .MarginDeltaPoint}} pts</span></div>
</div>`))

// dashboardSignals mirrors the datastar signals declared on the page.
type dashboardSignals struct {
	From         string   `json:"from"`
	To           string   `json:"to"`
	Region       string   `json:"region"`
	Category     string   `json:"category"`
	Segments     []string `json:"segments"`
	PriceChange  float64  `json:"priceChange"`
	VolumeChange float64  `json:"volumeChange"`
	CostChange   float64  `json:"costChange"`
}

type SSEHandlers struct {
	insights *services.Insights
	logger   *slog.Logger
}

func NewSSEHandlers(insights *services.Insights, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{insights: insights, logger: logger}
}

// readSignals pulls the current dashboard state out of the request. A request
// without signals falls back to the unfiltered view.
func (h *SSEHandlers) readSignals(r *http.Request) dashboardSignals {
	var signals dashboardSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		h.logger.Debug("no dashboard signals on request", "error", err)
	}
	return signals
}

func (s dashboardSignals) filter() services.Filter {
	f := services.Filter{
		Region:   s.Region,
		Category: s.Category,
		Segments: s.Segments,
	}
	if t, err := time.Parse(dateLayout, s.From); err == nil {
		f.From = t
	}
	if t, err := time.Parse(dateLayout, s.To); err == nil {
		f.To = t
	}
	return f
}

func (s dashboardSignals) scenario() models.ScenarioInput {
	return models.ScenarioInput{
		PriceChangePct:  s.PriceChange,
		VolumeChangePct: s.VolumeChange,
		CostChangePct:   s.CostChange,
	}
}

func renderTemplate(tmpl *template.Template, data any) (string, error) {
	var buf strings.Builder
	err := tmpl.Execute(&buf, data)
	return buf.String(), err
}

func flush(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	summary := h.insights.Summary(h.readSignals(r).filter())
	html, err := renderTemplate(kpiTemplate, summary)
	if err != nil {
		h.logger.Error("render kpi row", "error", err)
		return
	}
	sse.PatchElements(html)
	flush(w)
}

func (h *SSEHandlers) HandleMonthlyTrend(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	data := h.insights.MonthlyTrend(h.readSignals(r).filter())
	html, err := renderTemplate(monthlyTableTemplate, data)
	if err != nil {
		h.logger.Error("render monthly table", "error", err)
		return
	}
	sse.PatchElements(html)
	flush(w)
}

func (h *SSEHandlers) HandleCategorySplit(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	data := h.insights.CategorySplit(h.readSignals(r).filter())
	html, err := renderTemplate(categoryTableTemplate, data)
	if err != nil {
		h.logger.Error("render category table", "error", err)
		return
	}
	sse.PatchElements(html)
	flush(w)
}

func (h *SSEHandlers) HandleRegions(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	data := h.insights.RegionPerformance(h.readSignals(r).filter())
	html, err := renderTemplate(regionTableTemplate, data)
	if err != nil {
		h.logger.Error("render region table", "error", err)
		return
	}
	sse.PatchElements(html)
	flush(w)
}

func (h *SSEHandlers) HandleSegments(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	data := h.insights.SegmentAnalysis(h.readSignals(r).filter())
	html, err := renderTemplate(segmentTableTemplate, data)
	if err != nil {
		h.logger.Error("render segment table", "error", err)
		return
	}
	sse.PatchElements(html)
	flush(w)
}

func (h *SSEHandlers) HandleTopProducts(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	data := h.insights.TopProducts(h.readSignals(r).filter(), maxTableRows)
	html, err := renderTemplate(productTableTemplate, data)
	if err != nil {
		h.logger.Error("render product table", "error", err)
		return
	}
	sse.PatchElements(html)
	flush(w)
}

func (h *SSEHandlers) HandleScenario(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	signals := h.readSignals(r)
	result, err := h.insights.Scenario(signals.filter(), signals.scenario())
	if err != nil {
		sse.PatchElements(`<div id="scenario-content" class="error">` + template.HTMLEscapeString(err.Error()) + `</div>`)
		flush(w)
		return
	}

	html, err := renderTemplate(scenarioTemplate, result)
	if err != nil {
		h.logger.Error("render scenario panel", "error", err)
		return
	}
	sse.PatchElements(html)
	flush(w)
}

// HandleRefreshAll re-patches every panel in one SSE response.
func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	signals := h.readSignals(r)
	f := signals.filter()

	for _, part := range []struct {
		tmpl *template.Template
		data any
	}{
		{kpiTemplate, h.insights.Summary(f)},
		{monthlyTableTemplate, h.insights.MonthlyTrend(f)},
		{categoryTableTemplate, h.insights.CategorySplit(f)},
		{regionTableTemplate, h.insights.RegionPerformance(f)},
		{segmentTableTemplate, h.insights.SegmentAnalysis(f)},
		{productTableTemplate, h.insights.TopProducts(f, maxTableRows)},
	} {
		html, err := renderTemplate(part.tmpl, part.data)
		if err != nil {
			h.logger.Error("render panel", "error", err)
			return
		}
		sse.PatchElements(html)
	}
	flush(w)
}
