package models

// Aggregate shapes served by the dashboard API and SSE endpoints.

type KPISummary struct {
	TotalSales    float64 `json:"total_sales"`
	TotalProfit   float64 `json:"total_profit"`
	OrderCount    int     `json:"order_count"`
	AvgOrderValue float64 `json:"avg_order_value"`
	ProfitMargin  float64 `json:"profit_margin"`
}

type MonthlyPerformance struct {
	Month  string  `json:"month"`
	Sales  float64 `json:"sales"`
	Profit float64 `json:"profit"`
}

type CategoryShare struct {
	Category string  `json:"category"`
	Sales    float64 `json:"sales"`
	Share    float64 `json:"share"`
}

type RegionPerformance struct {
	Region       string  `json:"region"`
	Sales        float64 `json:"sales"`
	Profit       float64 `json:"profit"`
	ProfitMargin float64 `json:"profit_margin"`
}

type SegmentPerformance struct {
	Segment string  `json:"segment"`
	Sales   float64 `json:"sales"`
	Profit  float64 `json:"profit"`
	Orders  int     `json:"orders"`
}

type ProductSales struct {
	ProductName string  `json:"product_name"`
	Sales       float64 `json:"sales"`
	Orders      int     `json:"orders"`
}

type SubCategoryBreakdown struct {
	SubCategory string  `json:"sub_category"`
	Sales       float64 `json:"sales"`
	Profit      float64 `json:"profit"`
	Quantity    int     `json:"quantity"`
}

type StateSales struct {
	State string  `json:"state"`
	Sales float64 `json:"sales"`
}

// ScenarioInput carries the what-if multipliers as whole percentages.
type ScenarioInput struct {
	PriceChangePct  float64 `json:"price_change_pct"`
	VolumeChangePct float64 `json:"volume_change_pct"`
	CostChangePct   float64 `json:"cost_change_pct"`
}

type ScenarioResult struct {
	BaseSales        float64 `json:"base_sales"`
	BaseProfit       float64 `json:"base_profit"`
	BaseMargin       float64 `json:"base_margin"`
	ProjectedSales   float64 `json:"projected_sales"`
	ProjectedProfit  float64 `json:"projected_profit"`
	ProjectedMargin  float64 `json:"projected_margin"`
	SalesDelta       float64 `json:"sales_delta"`
	ProfitDelta      float64 `json:"profit_delta"`
	MarginDeltaPoint float64 `json:"margin_delta_point"`
}

type FinancialMonth struct {
	Month         string  `json:"month"`
	Revenue       float64 `json:"revenue"`
	BudgetRevenue float64 `json:"budget_revenue"`
	NetProfit     float64 `json:"net_profit"`
	CashFlow      float64 `json:"cash_flow"`
}

type ShiftSummary struct {
	Shift           string  `json:"shift"`
	AvgDefectRate   float64 `json:"avg_defect_rate"`
	AvgDowntimeMins float64 `json:"avg_downtime_mins"`
	AvgEfficiency   float64 `json:"avg_efficiency"`
	TotalUnits      int     `json:"total_units"`
}

type CustomerOverview struct {
	Customers        int            `json:"customers"`
	ChurnRate        float64        `json:"churn_rate"`
	AvgLifetimeValue float64        `json:"avg_lifetime_value"`
	SegmentCounts    map[string]int `json:"segment_counts"`
	SatisfactionDist map[int]int    `json:"satisfaction_dist"`
}
