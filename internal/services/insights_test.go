package services

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"superstore-analytics/internal/models"
)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testSales() []models.SalesRecord {
	return []models.SalesRecord{
		{
			OrderID: "ORD-1000", OrderDate: time.Date(2022, 1, 10, 0, 0, 0, 0, time.UTC),
			Category: "Technology", SubCategory: "Phones", ProductName: "Phones 101",
			Sales: money("1000.00"), Profit: money("200.00"), Quantity: 2,
			Region: "East", Segment: "Consumer", State: "New York",
		},
		{
			OrderID: "ORD-1001", OrderDate: time.Date(2022, 2, 5, 0, 0, 0, 0, time.UTC),
			Category: "Technology", SubCategory: "Computers", ProductName: "Computers 250",
			Sales: money("2000.00"), Profit: money("500.00"), Quantity: 1,
			Region: "West", Segment: "Corporate", State: "California",
		},
		{
			OrderID: "ORD-1002", OrderDate: time.Date(2022, 2, 20, 0, 0, 0, 0, time.UTC),
			Category: "Furniture", SubCategory: "Chairs", ProductName: "Chairs 330",
			Sales: money("500.00"), Profit: money("50.00"), Quantity: 4,
			Region: "East", Segment: "Consumer", State: "Florida",
		},
		{
			OrderID: "ORD-1003", OrderDate: time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC),
			Category: "Office Supplies", SubCategory: "Paper", ProductName: "Paper 512",
			Sales: money("100.00"), Profit: money("25.00"), Quantity: 10,
			Region: "Central", Segment: "Home Office", State: "Illinois",
		},
	}
}

func newTestInsights() *Insights {
	ins := NewInsights()
	ins.SetSales(testSales())
	return ins
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestInsights_Summary(t *testing.T) {
	ins := newTestInsights()
	got := ins.Summary(Filter{})

	if got.OrderCount != 4 {
		t.Errorf("OrderCount = %d, want 4", got.OrderCount)
	}
	if !almostEqual(got.TotalSales, 3600) {
		t.Errorf("TotalSales = %f, want 3600", got.TotalSales)
	}
	if !almostEqual(got.TotalProfit, 775) {
		t.Errorf("TotalProfit = %f, want 775", got.TotalProfit)
	}
	if !almostEqual(got.AvgOrderValue, 900) {
		t.Errorf("AvgOrderValue = %f, want 900", got.AvgOrderValue)
	}
	if !almostEqual(got.ProfitMargin, 775.0/3600*100) {
		t.Errorf("ProfitMargin = %f", got.ProfitMargin)
	}
}

func TestInsights_Summary_Filtered(t *testing.T) {
	ins := newTestInsights()

	tests := []struct {
		name       string
		filter     Filter
		wantOrders int
		wantSales  float64
	}{
		{
			name:       "by region",
			filter:     Filter{Region: "East"},
			wantOrders: 2,
			wantSales:  1500,
		},
		{
			name:       "region case insensitive",
			filter:     Filter{Region: "east"},
			wantOrders: 2,
			wantSales:  1500,
		},
		{
			name:       "by category",
			filter:     Filter{Category: "Technology"},
			wantOrders: 2,
			wantSales:  3000,
		},
		{
			name:       "by date range",
			filter:     Filter{From: time.Date(2022, 2, 1, 0, 0, 0, 0, time.UTC), To: time.Date(2022, 2, 28, 0, 0, 0, 0, time.UTC)},
			wantOrders: 2,
			wantSales:  2500,
		},
		{
			name:       "by segments",
			filter:     Filter{Segments: []string{"Consumer", "Home Office"}},
			wantOrders: 3,
			wantSales:  1600,
		},
		{
			name:       "combined dimensions",
			filter:     Filter{Region: "East", Category: "Furniture"},
			wantOrders: 1,
			wantSales:  500,
		},
		{
			name:       "no match",
			filter:     Filter{Region: "South"},
			wantOrders: 0,
			wantSales:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ins.Summary(tt.filter)
			if got.OrderCount != tt.wantOrders {
				t.Errorf("OrderCount = %d, want %d", got.OrderCount, tt.wantOrders)
			}
			if !almostEqual(got.TotalSales, tt.wantSales) {
				t.Errorf("TotalSales = %f, want %f", got.TotalSales, tt.wantSales)
			}
		})
	}
}

func TestInsights_MonthlyTrend(t *testing.T) {
	ins := newTestInsights()
	got := ins.MonthlyTrend(Filter{})

	if len(got) != 3 {
		t.Fatalf("expected 3 months, got %d", len(got))
	}
	wantMonths := []string{"2022-01", "2022-02", "2022-03"}
	for i, m := range got {
		if m.Month != wantMonths[i] {
			t.Errorf("month %d = %q, want %q", i, m.Month, wantMonths[i])
		}
	}
	if !almostEqual(got[1].Sales, 2500) {
		t.Errorf("February sales = %f, want 2500", got[1].Sales)
	}
}

func TestInsights_CategorySplit(t *testing.T) {
	ins := newTestInsights()
	got := ins.CategorySplit(Filter{})

	if len(got) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(got))
	}
	if got[0].Category != "Technology" {
		t.Errorf("top category = %q, want Technology", got[0].Category)
	}

	var totalShare float64
	for _, c := range got {
		totalShare += c.Share
	}
	if !almostEqual(totalShare, 100) {
		t.Errorf("shares sum to %f, want 100", totalShare)
	}
}

func TestInsights_RegionPerformance(t *testing.T) {
	ins := newTestInsights()
	got := ins.RegionPerformance(Filter{})

	if len(got) != 3 {
		t.Fatalf("expected 3 regions, got %d", len(got))
	}
	// Sorted by sales descending: West 2000, East 1500, Central 100.
	if got[0].Region != "West" || got[1].Region != "East" || got[2].Region != "Central" {
		t.Errorf("unexpected region order: %v, %v, %v", got[0].Region, got[1].Region, got[2].Region)
	}
	if !almostEqual(got[0].ProfitMargin, 25) {
		t.Errorf("West margin = %f, want 25", got[0].ProfitMargin)
	}
}

func TestInsights_SegmentAnalysis(t *testing.T) {
	ins := newTestInsights()
	got := ins.SegmentAnalysis(Filter{})

	if len(got) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(got))
	}
	for _, s := range got {
		if s.Segment == "Consumer" {
			if s.Orders != 2 || !almostEqual(s.Sales, 1500) {
				t.Errorf("Consumer = %+v, want 2 orders and 1500 sales", s)
			}
		}
	}
}

func TestInsights_TopProducts(t *testing.T) {
	ins := newTestInsights()

	got := ins.TopProducts(Filter{}, 2)
	if len(got) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(got))
	}
	if got[0].ProductName != "Computers 250" {
		t.Errorf("top product = %q, want Computers 250", got[0].ProductName)
	}
	if got[0].Sales < got[1].Sales {
		t.Error("products should be sorted by sales descending")
	}
}

func TestInsights_SubCategories(t *testing.T) {
	ins := newTestInsights()

	got := ins.SubCategories(Filter{}, "Technology")
	if len(got) != 2 {
		t.Fatalf("expected 2 subcategories, got %d", len(got))
	}
	if got[0].SubCategory != "Computers" {
		t.Errorf("top subcategory = %q, want Computers", got[0].SubCategory)
	}

	if got := ins.SubCategories(Filter{}, "Nonexistent"); len(got) != 0 {
		t.Errorf("unknown category should yield no rows, got %d", len(got))
	}
}

func TestInsights_States(t *testing.T) {
	ins := newTestInsights()

	got := ins.States(Filter{}, "East")
	if len(got) != 2 {
		t.Fatalf("expected 2 states, got %d", len(got))
	}
	if got[0].State != "New York" || !almostEqual(got[0].Sales, 1000) {
		t.Errorf("top state = %+v, want New York with 1000", got[0])
	}
}

func TestInsights_Scenario(t *testing.T) {
	ins := newTestInsights()

	// Base: sales 3600, profit 775, cost 2825.
	got, err := ins.Scenario(Filter{}, models.ScenarioInput{
		PriceChangePct: 10, VolumeChangePct: 20, CostChangePct: -5,
	})
	if err != nil {
		t.Fatal(err)
	}

	wantSales := 3600 * 1.10 * 1.20
	wantCost := 2825 * 0.95 * 1.20
	wantProfit := wantSales - wantCost

	if !almostEqual(got.ProjectedSales, wantSales) {
		t.Errorf("ProjectedSales = %f, want %f", got.ProjectedSales, wantSales)
	}
	if !almostEqual(got.ProjectedProfit, wantProfit) {
		t.Errorf("ProjectedProfit = %f, want %f", got.ProjectedProfit, wantProfit)
	}
	if !almostEqual(got.SalesDelta, wantSales-3600) {
		t.Errorf("SalesDelta = %f", got.SalesDelta)
	}
	if !almostEqual(got.MarginDeltaPoint, got.ProjectedMargin-got.BaseMargin) {
		t.Errorf("MarginDeltaPoint = %f", got.MarginDeltaPoint)
	}
}

func TestInsights_Scenario_Bounds(t *testing.T) {
	ins := newTestInsights()

	tests := []struct {
		name string
		in   models.ScenarioInput
	}{
		{name: "price too high", in: models.ScenarioInput{PriceChangePct: 51}},
		{name: "price too low", in: models.ScenarioInput{PriceChangePct: -51}},
		{name: "volume too high", in: models.ScenarioInput{VolumeChangePct: 50.5}},
		{name: "cost too high", in: models.ScenarioInput{CostChangePct: 31}},
		{name: "cost too low", in: models.ScenarioInput{CostChangePct: -31}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ins.Scenario(Filter{}, tt.in); err == nil {
				t.Error("expected bounds error")
			}
		})
	}

	// Boundary values are allowed.
	if _, err := ins.Scenario(Filter{}, models.ScenarioInput{PriceChangePct: 50, VolumeChangePct: -50, CostChangePct: 30}); err != nil {
		t.Errorf("boundary values should be accepted, got %v", err)
	}
}

func TestInsights_OperationsByShift(t *testing.T) {
	ins := NewInsights()
	ins.SetReferenceData(nil, []models.OperationsRecord{
		{Shift: "Morning", UnitsProduced: 1000, DefectRate: 0.02, DowntimeMinutes: 30, Efficiency: 0.90},
		{Shift: "Morning", UnitsProduced: 1200, DefectRate: 0.04, DowntimeMinutes: 10, Efficiency: 0.80},
		{Shift: "Night", UnitsProduced: 800, DefectRate: 0.01, DowntimeMinutes: 60, Efficiency: 0.95},
	}, nil)

	got := ins.OperationsByShift()
	if len(got) != 2 {
		t.Fatalf("expected 2 shifts, got %d", len(got))
	}
	// First-seen order is preserved.
	if got[0].Shift != "Morning" || got[1].Shift != "Night" {
		t.Errorf("unexpected shift order: %q, %q", got[0].Shift, got[1].Shift)
	}
	if got[0].TotalUnits != 2200 {
		t.Errorf("Morning TotalUnits = %d, want 2200", got[0].TotalUnits)
	}
	if !almostEqual(got[0].AvgDefectRate, 0.03) {
		t.Errorf("Morning AvgDefectRate = %f, want 0.03", got[0].AvgDefectRate)
	}
	if !almostEqual(got[0].AvgDowntimeMins, 20) {
		t.Errorf("Morning AvgDowntimeMins = %f, want 20", got[0].AvgDowntimeMins)
	}
}

func TestInsights_CustomerSummary(t *testing.T) {
	ins := NewInsights()
	ins.SetReferenceData(nil, nil, []models.CustomerRecord{
		{CustomerID: "CUST-1", Churned: 1, LifetimeValue: money("1000"), Segment: "High Value", SatisfactionScore: 5},
		{CustomerID: "CUST-2", Churned: 0, LifetimeValue: money("500"), Segment: "Low Value", SatisfactionScore: 3},
		{CustomerID: "CUST-3", Churned: 0, LifetimeValue: money("300"), Segment: "Low Value", SatisfactionScore: 3},
	})

	got := ins.CustomerSummary()
	if got.Customers != 3 {
		t.Errorf("Customers = %d, want 3", got.Customers)
	}
	if !almostEqual(got.ChurnRate, 100.0/3) {
		t.Errorf("ChurnRate = %f, want %f", got.ChurnRate, 100.0/3)
	}
	if !almostEqual(got.AvgLifetimeValue, 600) {
		t.Errorf("AvgLifetimeValue = %f, want 600", got.AvgLifetimeValue)
	}
	if got.SegmentCounts["Low Value"] != 2 {
		t.Errorf("Low Value count = %d, want 2", got.SegmentCounts["Low Value"])
	}
	if got.SatisfactionDist[3] != 2 {
		t.Errorf("satisfaction 3 count = %d, want 2", got.SatisfactionDist[3])
	}
}

func TestInsights_EmptyData(t *testing.T) {
	ins := NewInsights()

	if got := ins.Summary(Filter{}); got.OrderCount != 0 || got.AvgOrderValue != 0 || got.ProfitMargin != 0 {
		t.Errorf("empty summary = %+v", got)
	}
	if got := ins.MonthlyTrend(Filter{}); len(got) != 0 {
		t.Errorf("MonthlyTrend should be empty, got %d", len(got))
	}
	if got := ins.TopProducts(Filter{}, 10); len(got) != 0 {
		t.Errorf("TopProducts should be empty, got %d", len(got))
	}
	if got := ins.CustomerSummary(); got.Customers != 0 || got.ChurnRate != 0 {
		t.Errorf("empty customer summary = %+v", got)
	}
}

func TestInsights_LoadSalesCSV(t *testing.T) {
	t.Chdir(t.TempDir())

	csvContent := `Order_ID,Order_Date,Ship_Date,Category,Sub_Category,Product_Name,Sales,Quantity,Discount,Profit,Region,Segment,Customer_ID,State
ORD-1000,2022-01-10,2022-01-12,Technology,Phones,Phones 101,1000.00,2,0.1,200.00,East,Consumer,CUST-1,New York
ORD-1001,2022-02-05,2022-02-08,Furniture,Chairs,Chairs 330,500.00,4,0,50.00,West,Corporate,CUST-2,California`

	path := filepath.Join(t.TempDir(), "sales.csv")
	if err := os.WriteFile(path, []byte(csvContent), 0o644); err != nil {
		t.Fatal(err)
	}

	ins := NewInsights()
	if err := ins.LoadSalesCSV(context.Background(), path); err != nil {
		t.Fatalf("LoadSalesCSV() error: %v", err)
	}

	got := ins.Summary(Filter{})
	if got.OrderCount != 2 {
		t.Errorf("OrderCount = %d, want 2", got.OrderCount)
	}
	if !almostEqual(got.TotalSales, 1500) {
		t.Errorf("TotalSales = %f, want 1500", got.TotalSales)
	}

	// Second load hits the gob cache and must yield the same view.
	ins2 := NewInsights()
	if err := ins2.LoadSalesCSV(context.Background(), path); err != nil {
		t.Fatalf("cached LoadSalesCSV() error: %v", err)
	}
	if got := ins2.Summary(Filter{}); got.OrderCount != 2 {
		t.Errorf("cached OrderCount = %d, want 2", got.OrderCount)
	}
}

func TestInsights_LoadSalesCSV_SkipsMalformedRows(t *testing.T) {
	t.Chdir(t.TempDir())

	csvContent := `Order_ID,Order_Date,Ship_Date,Category,Sub_Category,Product_Name,Sales,Quantity,Discount,Profit,Region,Segment,Customer_ID,State
ORD-1000,2022-01-10,2022-01-12,Technology,Phones,Phones 101,1000.00,2,0.1,200.00,East,Consumer,CUST-1,New York
ORD-1001,not-a-date,2022-02-08,Furniture,Chairs,Chairs 330,500.00,4,0,50.00,West,Corporate,CUST-2,California
short,row`

	path := filepath.Join(t.TempDir(), "sales.csv")
	if err := os.WriteFile(path, []byte(csvContent), 0o644); err != nil {
		t.Fatal(err)
	}

	ins := NewInsights()
	if err := ins.LoadSalesCSV(context.Background(), path); err != nil {
		t.Fatalf("LoadSalesCSV() error: %v", err)
	}
	if got := ins.Summary(Filter{}); got.OrderCount != 1 {
		t.Errorf("OrderCount = %d, want 1 valid row", got.OrderCount)
	}
}

func TestInsights_LoadSalesCSV_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	ins := NewInsights()
	if err := ins.LoadSalesCSV(context.Background(), "does-not-exist.csv"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestInsights_ConcurrentAccess(t *testing.T) {
	ins := newTestInsights()

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- true }()

			_ = ins.Summary(Filter{})
			_ = ins.MonthlyTrend(Filter{})
			_ = ins.TopProducts(Filter{}, 10)
			ins.SetSales(testSales())
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}

func BenchmarkInsights_Summary(b *testing.B) {
	ins := NewInsights()
	rows := make([]models.SalesRecord, 0, 10000)
	for i := 0; i < 10000; i++ {
		rows = append(rows, testSales()[i%4])
	}
	ins.SetSales(rows)

	b.ResetTimer()
	for b.Loop() {
		_ = ins.Summary(Filter{Region: "East"})
	}
}
