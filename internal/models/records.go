package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesRecord is one order line in the superstore sales dataset.
// Sales and Profit are derived: Sales = price * quantity * (1 - discount),
// Profit = Sales * margin, both rounded to cents.
type SalesRecord struct {
	OrderID     string          `json:"order_id"`
	OrderDate   time.Time       `json:"order_date"`
	ShipDate    time.Time       `json:"ship_date"`
	Category    string          `json:"category"`
	SubCategory string          `json:"sub_category"`
	ProductName string          `json:"product_name"`
	Sales       decimal.Decimal `json:"sales"`
	Quantity    int             `json:"quantity"`
	Discount    decimal.Decimal `json:"discount"`
	Profit      decimal.Decimal `json:"profit"`
	Region      string          `json:"region"`
	Segment     string          `json:"segment"`
	CustomerID  string          `json:"customer_id"`
	State       string          `json:"state"`
}

// OperationsRecord is one production shift on one calendar day.
// DefectRate = Defects / UnitsProduced rounded to 4 decimals.
type OperationsRecord struct {
	Date            time.Time `json:"date"`
	Shift           string    `json:"shift"`
	UnitsProduced   int       `json:"units_produced"`
	Defects         int       `json:"defects"`
	DefectRate      float64   `json:"defect_rate"`
	DowntimeMinutes int       `json:"downtime_minutes"`
	Efficiency      float64   `json:"efficiency"`
	EnergyUsed      int       `json:"energy_used"`
	LaborHours      int       `json:"labor_hours"`
}

// FinancialRecord is one calendar month of the P&L series.
// GrossProfit and NetProfit are derived from the stored rounded components.
type FinancialRecord struct {
	Month             time.Time       `json:"month"`
	Revenue           decimal.Decimal `json:"revenue"`
	COGS              decimal.Decimal `json:"cogs"`
	OperatingExpenses decimal.Decimal `json:"operating_expenses"`
	GrossProfit       decimal.Decimal `json:"gross_profit"`
	NetProfit         decimal.Decimal `json:"net_profit"`
	BudgetRevenue     decimal.Decimal `json:"budget_revenue"`
	CashFlow          decimal.Decimal `json:"cash_flow"`
}

// CustomerRecord is one synthetic customer.
// Churned is 1 exactly when DaysSinceLastPurchase > 180.
type CustomerRecord struct {
	CustomerID            string          `json:"customer_id"`
	SignupDate            time.Time       `json:"signup_date"`
	TotalPurchases        int             `json:"total_purchases"`
	AvgOrderValue         decimal.Decimal `json:"avg_order_value"`
	LifetimeValue         decimal.Decimal `json:"lifetime_value"`
	DaysSinceLastPurchase int             `json:"days_since_last_purchase"`
	Churned               int             `json:"churned"`
	SatisfactionScore     int             `json:"satisfaction_score"`
	SupportTickets        int             `json:"support_tickets"`
	Segment               string          `json:"segment"`
}
