// Package templates holds the dashboard page as a templ component.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Dashboard renders the single-page analytics dashboard. Panels load and
// refresh through the datastar SSE endpoints; filters and scenario sliders
// live in datastar signals declared on the body.
func Dashboard() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, dashboardPage)
		return err
	})
}

const dashboardPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Superstore Analytics Dashboard</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"></script>
<style>
body { font-family: -apple-system, 'Segoe UI', sans-serif; margin: 0; background: #f4f6f8; color: #212529; }
header { background: #1f2d3d; color: #fff; padding: 16px 24px; }
header h1 { margin: 0; font-size: 20px; }
.layout { display: grid; grid-template-columns: 260px 1fr; gap: 16px; padding: 16px; }
.sidebar { background: #fff; border: 1px solid #dee2e6; border-radius: 8px; padding: 16px; align-self: start; }
.sidebar label { display: block; font-size: 13px; font-weight: 600; margin: 12px 0 4px; }
.sidebar input, .sidebar select { width: 100%; padding: 6px; border: 1px solid #ced4da; border-radius: 4px; }
.panels { display: grid; gap: 16px; }
.panel { background: #fff; border: 1px solid #dee2e6; border-radius: 8px; padding: 16px; }
.panel h2 { margin-top: 0; font-size: 16px; }
.kpi-row { display: grid; grid-template-columns: repeat(auto-fit, minmax(160px, 1fr)); gap: 12px; }
.kpi-card { background: #f8f9fa; border: 1px solid #dee2e6; border-radius: 8px; padding: 16px; display: flex; flex-direction: column; }
.kpi-label { font-size: 13px; color: #495057; font-weight: 600; }
.kpi-card strong { font-size: 26px; }
.kpi-delta { font-size: 12px; color: #6c757d; }
.modern-table { width: 100%; border-collapse: collapse; font-size: 14px; }
.modern-table th, .modern-table td { text-align: left; padding: 8px; border-bottom: 1px solid #e9ecef; }
.category-badge { background: #e7f1ff; border-radius: 10px; padding: 2px 8px; font-size: 12px; }
.error { color: #c0392b; }
button { background: #3498db; color: #fff; border: 0; border-radius: 4px; padding: 8px 12px; margin-top: 16px; cursor: pointer; width: 100%; }
</style>
</head>
<body data-signals="{from:'',to:'',region:'',category:'',segments:[],priceChange:0,volumeChange:0,costChange:0}">
<header><h1>Superstore Analytics Dashboard</h1></header>
<div class="layout">
<aside class="sidebar">
<h2>Filters</h2>
<label for="from">From</label>
<input id="from" type="date" data-bind-from>
<label for="to">To</label>
<input id="to" type="date" data-bind-to>
<label for="region">Region</label>
<select id="region" data-bind-region>
<option value="">All regions</option>
<option>East</option><option>West</option><option>Central</option><option>South</option>
</select>
<label for="category">Category</label>
<select id="category" data-bind-category>
<option value="">All categories</option>
<option>Technology</option><option>Furniture</option><option>Office Supplies</option>
</select>
<label for="segments">Segments</label>
<select id="segments" multiple data-bind-segments>
<option>Consumer</option><option>Corporate</option><option>Home Office</option>
</select>
<button data-on-click="@get('/sse/refresh-all')">Apply filters</button>
<h2>What-If Scenario</h2>
<label for="price">Price change: <span data-text="$priceChange + '%'"></span></label>
<input id="price" type="range" min="-50" max="50" step="5" data-bind-priceChange>
<label for="volume">Volume change: <span data-text="$volumeChange + '%'"></span></label>
<input id="volume" type="range" min="-50" max="50" step="5" data-bind-volumeChange>
<label for="cost">Cost change: <span data-text="$costChange + '%'"></span></label>
<input id="cost" type="range" min="-30" max="30" step="5" data-bind-costChange>
<button data-on-click="@get('/sse/scenario')">Run scenario</button>
</aside>
<main class="panels">
<section class="panel">
<h2>Key Metrics</h2>
<div id="kpi-row" data-on-load="@get('/sse/kpis')">Loading…</div>
</section>
<section class="panel">
<h2>Sales &amp; Profit Trend</h2>
<div id="monthly-content" data-on-load="@get('/sse/monthly-trend')">Loading…</div>
</section>
<section class="panel">
<h2>Category Split</h2>
<div id="category-content" data-on-load="@get('/sse/category-split')">Loading…</div>
</section>
<section class="panel">
<h2>Regional Performance</h2>
<div id="regions-content" data-on-load="@get('/sse/regions')">Loading…</div>
</section>
<section class="panel">
<h2>Segment Analysis</h2>
<div id="segments-content" data-on-load="@get('/sse/segments')">Loading…</div>
</section>
<section class="panel">
<h2>Top Products</h2>
<div id="products-content" data-on-load="@get('/sse/top-products')">Loading…</div>
</section>
<section class="panel">
<h2>Scenario Results</h2>
<div id="scenario-content">Run a scenario to see projections.</div>
</section>
</main>
</div>
</body>
</html>`
