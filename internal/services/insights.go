package services

import (
	"bufio"
	"context"
	"encoding/gob"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"superstore-analytics/internal/dataset"
	"superstore-analytics/internal/models"
)

const (
	batchSize    = 10000
	maxWorkers   = 8
	cacheVersion = "v1"
	cacheDir     = ".cache"
	dateLayout   = "2006-01-02"
	monthLayout  = "2006-01"
)

// Scenario slider bounds, matching the dashboard controls.
const (
	maxPriceChangePct  = 50
	maxVolumeChangePct = 50
	maxCostChangePct   = 30
)

// Filter narrows the sales dataset before aggregation. Zero-value fields
// impose no restriction; dimensions are AND-combined.
type Filter struct {
	From     time.Time
	To       time.Time
	Region   string
	Category string
	Segments []string
}

func (f Filter) matches(r models.SalesRecord) bool {
	if !f.From.IsZero() && r.OrderDate.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && r.OrderDate.After(f.To) {
		return false
	}
	if f.Region != "" && !strings.EqualFold(f.Region, r.Region) {
		return false
	}
	if f.Category != "" && !strings.EqualFold(f.Category, r.Category) {
		return false
	}
	if len(f.Segments) > 0 {
		found := false
		for _, s := range f.Segments {
			if strings.EqualFold(s, r.Segment) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Insights answers the dashboard's aggregate queries over the four datasets.
// Sales aggregations are computed per query against the current filter; the
// datasets are small enough that a single pass is cheap.
type Insights struct {
	sales      atomic.Pointer[[]models.SalesRecord]
	financial  atomic.Pointer[[]models.FinancialRecord]
	operations atomic.Pointer[[]models.OperationsRecord]
	customers  atomic.Pointer[[]models.CustomerRecord]

	salesPath  string
	lastLoaded atomic.Int64
	logger     *slog.Logger
}

func NewInsights() *Insights {
	ins := &Insights{logger: slog.Default()}
	ins.sales.Store(&[]models.SalesRecord{})
	ins.financial.Store(&[]models.FinancialRecord{})
	ins.operations.Store(&[]models.OperationsRecord{})
	ins.customers.Store(&[]models.CustomerRecord{})
	return ins
}

// SetSales replaces the sales dataset, bypassing CSV loading. Used by tests
// and by callers that generate in-process.
func (s *Insights) SetSales(rows []models.SalesRecord) {
	s.sales.Store(&rows)
	s.lastLoaded.Store(time.Now().UnixNano())
}

// SetReferenceData replaces the financial, operations and customer datasets.
func (s *Insights) SetReferenceData(fin []models.FinancialRecord, ops []models.OperationsRecord, cust []models.CustomerRecord) {
	s.financial.Store(&fin)
	s.operations.Store(&ops)
	s.customers.Store(&cust)
}

// LoadSalesCSV stream-parses the sales file in concurrent batches, consulting
// a gob cache of the parsed rows keyed by path.
func (s *Insights) LoadSalesCSV(ctx context.Context, path string) error {
	s.salesPath = path

	if cached, err := s.loadCache(path); err == nil {
		if info, err := os.Stat(path); err == nil && info.ModTime().Before(cached.LoadedAt) {
			s.SetSales(cached.Rows)
			s.logger.Info("sales loaded from cache", "records", len(cached.Rows))
			return nil
		}
	}

	start := time.Now()
	rows, err := s.streamSalesCSV(ctx, path)
	if err != nil {
		return fmt.Errorf("process sales csv: %w", err)
	}
	s.SetSales(rows)

	if err := s.saveCache(path, rows); err != nil {
		s.logger.Warn("failed to save sales cache", "error", err)
	}

	s.logger.Info("sales csv processed",
		"records", len(rows),
		"duration", time.Since(start),
	)
	return nil
}

// LoadReferenceCSVs parses the financial, operations and customer files with
// the typed dataset readers.
func (s *Insights) LoadReferenceCSVs(financialPath, operationsPath, customersPath string) error {
	fin, err := dataset.ReadFinancial(financialPath)
	if err != nil {
		return fmt.Errorf("load financial: %w", err)
	}
	ops, err := dataset.ReadOperations(operationsPath)
	if err != nil {
		return fmt.Errorf("load operations: %w", err)
	}
	cust, err := dataset.ReadCustomers(customersPath)
	if err != nil {
		return fmt.Errorf("load customers: %w", err)
	}
	s.SetReferenceData(fin, ops, cust)
	s.logger.Info("reference datasets loaded",
		"financial", len(fin), "operations", len(ops), "customers", len(cust))
	return nil
}

func (s *Insights) streamSalesCSV(ctx context.Context, path string) ([]models.SalesRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), 10*1024*1024)

	if !scanner.Scan() {
		return nil, fmt.Errorf("empty file")
	}

	var rows []models.SalesRecord
	batch := make([]string, 0, batchSize)

	flush := func() error {
		parsed, err := parseSalesBatch(ctx, batch)
		if err != nil {
			return err
		}
		rows = append(rows, parsed...)
		batch = batch[:0]
		return nil
	}

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		batch = append(batch, scanner.Text())
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan error: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no valid records found")
	}
	return rows, nil
}

// parseSalesBatch parses one batch concurrently, preserving input order.
// Malformed lines are dropped.
func parseSalesBatch(ctx context.Context, batch []string) ([]models.SalesRecord, error) {
	parsed := make([]models.SalesRecord, len(batch))
	valid := make([]bool, len(batch))

	var wg errgroup.Group
	wg.SetLimit(maxWorkers)

	for i, line := range batch {
		wg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			rec, err := parseSalesRow(strings.Split(line, ","))
			if err != nil {
				return nil
			}
			parsed[i] = rec
			valid[i] = true
			return nil
		})
	}
	if err := wg.Wait(); err != nil {
		return nil, err
	}

	out := make([]models.SalesRecord, 0, len(batch))
	for i := range parsed {
		if valid[i] {
			out = append(out, parsed[i])
		}
	}
	return out, nil
}

func parseSalesRow(fields []string) (models.SalesRecord, error) {
	if len(fields) < 14 {
		return models.SalesRecord{}, fmt.Errorf("insufficient columns")
	}

	orderDate, err := time.Parse(dateLayout, strings.TrimSpace(fields[1]))
	if err != nil {
		return models.SalesRecord{}, err
	}
	shipDate, err := time.Parse(dateLayout, strings.TrimSpace(fields[2]))
	if err != nil {
		return models.SalesRecord{}, err
	}
	sales, err := decimal.NewFromString(strings.TrimSpace(fields[6]))
	if err != nil {
		return models.SalesRecord{}, err
	}
	quantity, err := strconv.Atoi(strings.TrimSpace(fields[7]))
	if err != nil {
		return models.SalesRecord{}, err
	}
	discount, err := decimal.NewFromString(strings.TrimSpace(fields[8]))
	if err != nil {
		return models.SalesRecord{}, err
	}
	profit, err := decimal.NewFromString(strings.TrimSpace(fields[9]))
	if err != nil {
		return models.SalesRecord{}, err
	}

	return models.SalesRecord{
		OrderID:     strings.TrimSpace(fields[0]),
		OrderDate:   orderDate,
		ShipDate:    shipDate,
		Category:    strings.TrimSpace(fields[3]),
		SubCategory: strings.TrimSpace(fields[4]),
		ProductName: strings.TrimSpace(fields[5]),
		Sales:       sales,
		Quantity:    quantity,
		Discount:    discount,
		Profit:      profit,
		Region:      strings.TrimSpace(fields[10]),
		Segment:     strings.TrimSpace(fields[11]),
		CustomerID:  strings.TrimSpace(fields[12]),
		State:       strings.TrimSpace(fields[13]),
	}, nil
}

// Summary computes the KPI row for the filtered sales view.
func (s *Insights) Summary(f Filter) models.KPISummary {
	var totalSales, totalProfit float64
	orders := 0

	for _, r := range *s.sales.Load() {
		if !f.matches(r) {
			continue
		}
		totalSales += r.Sales.InexactFloat64()
		totalProfit += r.Profit.InexactFloat64()
		orders++
	}

	out := models.KPISummary{
		TotalSales:  totalSales,
		TotalProfit: totalProfit,
		OrderCount:  orders,
	}
	if orders > 0 {
		out.AvgOrderValue = totalSales / float64(orders)
	}
	if totalSales > 0 {
		out.ProfitMargin = totalProfit / totalSales * 100
	}
	return out
}

// MonthlyTrend returns sales and profit per calendar month, chronological.
func (s *Insights) MonthlyTrend(f Filter) []models.MonthlyPerformance {
	type agg struct{ sales, profit float64 }
	groups := make(map[string]*agg)

	for _, r := range *s.sales.Load() {
		if !f.matches(r) {
			continue
		}
		key := r.OrderDate.Format(monthLayout)
		g, ok := groups[key]
		if !ok {
			g = &agg{}
			groups[key] = g
		}
		g.sales += r.Sales.InexactFloat64()
		g.profit += r.Profit.InexactFloat64()
	}

	out := make([]models.MonthlyPerformance, 0, len(groups))
	for month, g := range groups {
		out = append(out, models.MonthlyPerformance{Month: month, Sales: g.sales, Profit: g.profit})
	}
	slices.SortFunc(out, func(a, b models.MonthlyPerformance) int {
		return strings.Compare(a.Month, b.Month)
	})
	return out
}

// CategorySplit returns each category's share of filtered sales.
func (s *Insights) CategorySplit(f Filter) []models.CategoryShare {
	groups := make(map[string]float64)
	var total float64

	for _, r := range *s.sales.Load() {
		if !f.matches(r) {
			continue
		}
		v := r.Sales.InexactFloat64()
		groups[r.Category] += v
		total += v
	}

	out := make([]models.CategoryShare, 0, len(groups))
	for category, sales := range groups {
		share := 0.0
		if total > 0 {
			share = sales / total * 100
		}
		out = append(out, models.CategoryShare{Category: category, Sales: sales, Share: share})
	}
	sortBySalesDesc(out, func(c models.CategoryShare) float64 { return c.Sales })
	return out
}

// RegionPerformance returns sales, profit and margin per region.
func (s *Insights) RegionPerformance(f Filter) []models.RegionPerformance {
	type agg struct{ sales, profit float64 }
	groups := make(map[string]*agg)

	for _, r := range *s.sales.Load() {
		if !f.matches(r) {
			continue
		}
		g, ok := groups[r.Region]
		if !ok {
			g = &agg{}
			groups[r.Region] = g
		}
		g.sales += r.Sales.InexactFloat64()
		g.profit += r.Profit.InexactFloat64()
	}

	out := make([]models.RegionPerformance, 0, len(groups))
	for region, g := range groups {
		margin := 0.0
		if g.sales > 0 {
			margin = g.profit / g.sales * 100
		}
		out = append(out, models.RegionPerformance{
			Region: region, Sales: g.sales, Profit: g.profit, ProfitMargin: margin,
		})
	}
	sortBySalesDesc(out, func(r models.RegionPerformance) float64 { return r.Sales })
	return out
}

// SegmentAnalysis returns sales, profit and order counts per segment.
func (s *Insights) SegmentAnalysis(f Filter) []models.SegmentPerformance {
	type agg struct {
		sales, profit float64
		orders        int
	}
	groups := make(map[string]*agg)

	for _, r := range *s.sales.Load() {
		if !f.matches(r) {
			continue
		}
		g, ok := groups[r.Segment]
		if !ok {
			g = &agg{}
			groups[r.Segment] = g
		}
		g.sales += r.Sales.InexactFloat64()
		g.profit += r.Profit.InexactFloat64()
		g.orders++
	}

	out := make([]models.SegmentPerformance, 0, len(groups))
	for segment, g := range groups {
		out = append(out, models.SegmentPerformance{
			Segment: segment, Sales: g.sales, Profit: g.profit, Orders: g.orders,
		})
	}
	sortBySalesDesc(out, func(s models.SegmentPerformance) float64 { return s.Sales })
	return out
}

// TopProducts returns the highest-grossing products in the filtered view.
func (s *Insights) TopProducts(f Filter, limit int) []models.ProductSales {
	type agg struct {
		sales  float64
		orders int
	}
	groups := make(map[string]*agg)

	for _, r := range *s.sales.Load() {
		if !f.matches(r) {
			continue
		}
		g, ok := groups[r.ProductName]
		if !ok {
			g = &agg{}
			groups[r.ProductName] = g
		}
		g.sales += r.Sales.InexactFloat64()
		g.orders++
	}

	out := make([]models.ProductSales, 0, len(groups))
	for name, g := range groups {
		out = append(out, models.ProductSales{ProductName: name, Sales: g.sales, Orders: g.orders})
	}
	sortBySalesDesc(out, func(p models.ProductSales) float64 { return p.Sales })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SubCategories is the category drill-down: breakdown of one category into
// its sub-categories.
func (s *Insights) SubCategories(f Filter, category string) []models.SubCategoryBreakdown {
	f.Category = category

	type agg struct {
		sales, profit float64
		quantity      int
	}
	groups := make(map[string]*agg)

	for _, r := range *s.sales.Load() {
		if !f.matches(r) {
			continue
		}
		g, ok := groups[r.SubCategory]
		if !ok {
			g = &agg{}
			groups[r.SubCategory] = g
		}
		g.sales += r.Sales.InexactFloat64()
		g.profit += r.Profit.InexactFloat64()
		g.quantity += r.Quantity
	}

	out := make([]models.SubCategoryBreakdown, 0, len(groups))
	for name, g := range groups {
		out = append(out, models.SubCategoryBreakdown{
			SubCategory: name, Sales: g.sales, Profit: g.profit, Quantity: g.quantity,
		})
	}
	sortBySalesDesc(out, func(sc models.SubCategoryBreakdown) float64 { return sc.Sales })
	return out
}

// States is the region drill-down: sales per state inside one region.
func (s *Insights) States(f Filter, region string) []models.StateSales {
	f.Region = region

	groups := make(map[string]float64)
	for _, r := range *s.sales.Load() {
		if !f.matches(r) {
			continue
		}
		groups[r.State] += r.Sales.InexactFloat64()
	}

	out := make([]models.StateSales, 0, len(groups))
	for state, sales := range groups {
		out = append(out, models.StateSales{State: state, Sales: sales})
	}
	sortBySalesDesc(out, func(st models.StateSales) float64 { return st.Sales })
	return out
}

// Scenario rescales the filtered totals by the what-if multipliers:
// sales scale with price and volume, costs with cost and volume.
func (s *Insights) Scenario(f Filter, in models.ScenarioInput) (models.ScenarioResult, error) {
	if in.PriceChangePct < -maxPriceChangePct || in.PriceChangePct > maxPriceChangePct {
		return models.ScenarioResult{}, fmt.Errorf("price change must be within ±%d%%, got %.0f", maxPriceChangePct, in.PriceChangePct)
	}
	if in.VolumeChangePct < -maxVolumeChangePct || in.VolumeChangePct > maxVolumeChangePct {
		return models.ScenarioResult{}, fmt.Errorf("volume change must be within ±%d%%, got %.0f", maxVolumeChangePct, in.VolumeChangePct)
	}
	if in.CostChangePct < -maxCostChangePct || in.CostChangePct > maxCostChangePct {
		return models.ScenarioResult{}, fmt.Errorf("cost change must be within ±%d%%, got %.0f", maxCostChangePct, in.CostChangePct)
	}

	base := s.Summary(f)
	baseCost := base.TotalSales - base.TotalProfit

	priceMult := 1 + in.PriceChangePct/100
	volumeMult := 1 + in.VolumeChangePct/100
	costMult := 1 + in.CostChangePct/100

	projSales := base.TotalSales * priceMult * volumeMult
	projCost := baseCost * costMult * volumeMult
	projProfit := projSales - projCost

	out := models.ScenarioResult{
		BaseSales:       base.TotalSales,
		BaseProfit:      base.TotalProfit,
		ProjectedSales:  projSales,
		ProjectedProfit: projProfit,
		SalesDelta:      projSales - base.TotalSales,
		ProfitDelta:     projProfit - base.TotalProfit,
	}
	if base.TotalSales > 0 {
		out.BaseMargin = base.TotalProfit / base.TotalSales * 100
	}
	if projSales > 0 {
		out.ProjectedMargin = projProfit / projSales * 100
	}
	out.MarginDeltaPoint = out.ProjectedMargin - out.BaseMargin
	return out, nil
}

// FinancialOverview maps the P&L series for the revenue-vs-budget panel.
func (s *Insights) FinancialOverview() []models.FinancialMonth {
	rows := *s.financial.Load()
	out := make([]models.FinancialMonth, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.FinancialMonth{
			Month:         r.Month.Format(monthLayout),
			Revenue:       r.Revenue.InexactFloat64(),
			BudgetRevenue: r.BudgetRevenue.InexactFloat64(),
			NetProfit:     r.NetProfit.InexactFloat64(),
			CashFlow:      r.CashFlow.InexactFloat64(),
		})
	}
	return out
}

// OperationsByShift averages the production metrics per shift, in the fixed
// shift order.
func (s *Insights) OperationsByShift() []models.ShiftSummary {
	type agg struct {
		defectRate, downtime, efficiency float64
		units, rows                      int
	}
	groups := make(map[string]*agg)
	var order []string

	for _, r := range *s.operations.Load() {
		g, ok := groups[r.Shift]
		if !ok {
			g = &agg{}
			groups[r.Shift] = g
			order = append(order, r.Shift)
		}
		g.defectRate += r.DefectRate
		g.downtime += float64(r.DowntimeMinutes)
		g.efficiency += r.Efficiency
		g.units += r.UnitsProduced
		g.rows++
	}

	out := make([]models.ShiftSummary, 0, len(order))
	for _, shift := range order {
		g := groups[shift]
		n := float64(g.rows)
		out = append(out, models.ShiftSummary{
			Shift:           shift,
			AvgDefectRate:   g.defectRate / n,
			AvgDowntimeMins: g.downtime / n,
			AvgEfficiency:   g.efficiency / n,
			TotalUnits:      g.units,
		})
	}
	return out
}

// CustomerSummary reports churn and value-segment structure.
func (s *Insights) CustomerSummary() models.CustomerOverview {
	rows := *s.customers.Load()
	out := models.CustomerOverview{
		Customers:        len(rows),
		SegmentCounts:    make(map[string]int),
		SatisfactionDist: make(map[int]int),
	}

	churned := 0
	var ltv float64
	for _, r := range rows {
		if r.Churned == 1 {
			churned++
		}
		ltv += r.LifetimeValue.InexactFloat64()
		out.SegmentCounts[r.Segment]++
		out.SatisfactionDist[r.SatisfactionScore]++
	}
	if len(rows) > 0 {
		out.ChurnRate = float64(churned) / float64(len(rows)) * 100
		out.AvgLifetimeValue = ltv / float64(len(rows))
	}
	return out
}

// Stats exposes dataset sizes for the admin endpoint.
func (s *Insights) Stats() map[string]any {
	return map[string]any{
		"sales_records":      len(*s.sales.Load()),
		"financial_records":  len(*s.financial.Load()),
		"operations_records": len(*s.operations.Load()),
		"customer_records":   len(*s.customers.Load()),
		"last_loaded":        time.Unix(0, s.lastLoaded.Load()).UTC(),
	}
}

func sortBySalesDesc[T any](items []T, key func(T) float64) {
	slices.SortFunc(items, func(a, b T) int {
		switch {
		case key(a) > key(b):
			return -1
		case key(a) < key(b):
			return 1
		default:
			return 0
		}
	})
}

// Sales cache

type salesCache struct {
	Version  string
	Rows     []models.SalesRecord
	LoadedAt time.Time
}

func cacheFilename(csvPath string) string {
	return fmt.Sprintf("%s/%s_%s.gob", cacheDir, strings.ReplaceAll(csvPath, "/", "_"), cacheVersion)
}

func (s *Insights) saveCache(csvPath string, rows []models.SalesRecord) error {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return err
	}
	file, err := os.Create(cacheFilename(csvPath))
	if err != nil {
		return err
	}
	defer file.Close()

	return gob.NewEncoder(file).Encode(salesCache{
		Version:  cacheVersion,
		Rows:     rows,
		LoadedAt: time.Now(),
	})
}

func (s *Insights) loadCache(csvPath string) (*salesCache, error) {
	file, err := os.Open(cacheFilename(csvPath))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var cached salesCache
	if err := gob.NewDecoder(file).Decode(&cached); err != nil {
		return nil, err
	}
	if cached.Version != cacheVersion {
		return nil, fmt.Errorf("stale cache version %q", cached.Version)
	}
	return &cached, nil
}
