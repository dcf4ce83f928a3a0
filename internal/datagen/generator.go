// Package datagen produces the four synthetic business datasets consumed by
// the dashboard: sales orders, production shifts, a monthly P&L series, and
// customer analytics. All draws come from a single seeded PRNG, so one seed
// maps to exactly one set of datasets.
package datagen

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"superstore-analytics/internal/models"
)

const (
	churnThresholdDays = 180
	baseMonthlyRevenue = 500000
)

// Generator owns the random source for one generation run. It is not safe
// for concurrent use; create one per run.
type Generator struct {
	rng *rand.Rand
}

// New returns a Generator whose entire output is determined by seed.
func New(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed))}
}

// Sales generates n order rows. Order dates fall uniformly inside a fixed
// 3-year window and ship dates trail them by 1-7 days.
func (g *Generator) Sales(n int) ([]models.SalesRecord, error) {
	if n < 0 {
		return nil, fmt.Errorf("sales row count must be non-negative, got %d", n)
	}

	records := make([]models.SalesRecord, 0, n)
	for i := 0; i < n; i++ {
		orderDate := salesWindowStart.AddDate(0, 0, g.intBetween(0, salesWindowDays))
		shipDate := orderDate.AddDate(0, 0, g.intBetween(1, 7))

		category := pick(g.rng, categories)
		subCategory := pick(g.rng, subCategories[category])
		bounds := priceRanges[category]

		price := g.floatBetween(bounds[0], bounds[1])
		quantity := g.intBetween(1, 10)
		discount := decimal.NewFromFloat(pick(g.rng, discountLevels))

		sales := decimal.NewFromFloat(price).
			Mul(decimal.NewFromInt(int64(quantity))).
			Mul(decimal.NewFromInt(1).Sub(discount)).
			Round(2)
		profit := sales.Mul(decimal.NewFromFloat(g.floatBetween(0.05, 0.35))).Round(2)

		records = append(records, models.SalesRecord{
			OrderID:     fmt.Sprintf("ORD-%d", 1000+i),
			OrderDate:   orderDate,
			ShipDate:    shipDate,
			Category:    category,
			SubCategory: subCategory,
			ProductName: fmt.Sprintf("%s %d", subCategory, g.intBetween(100, 999)),
			Sales:       sales,
			Quantity:    quantity,
			Discount:    discount,
			Profit:      profit,
			Region:      pick(g.rng, regions),
			Segment:     pick(g.rng, segments),
			CustomerID:  fmt.Sprintf("CUST-%d", g.intBetween(1000, 9999)),
			State:       pick(g.rng, states),
		})
	}
	return records, nil
}

// Operations generates one row per (calendar day, shift) across the fixed
// 2-year production span. Row count is always days * 3.
func (g *Generator) Operations() []models.OperationsRecord {
	days := int(operationsEnd.Sub(operationsStart).Hours()/24) + 1
	records := make([]models.OperationsRecord, 0, days*len(shifts))

	for day := 0; day < days; day++ {
		date := operationsStart.AddDate(0, 0, day)
		for _, shift := range shifts {
			units := g.intBetween(800, 1200)
			defects := int(float64(units) * g.floatBetween(0.01, 0.05))

			records = append(records, models.OperationsRecord{
				Date:            date,
				Shift:           shift,
				UnitsProduced:   units,
				Defects:         defects,
				DefectRate:      roundTo(float64(defects)/float64(units), 4),
				DowntimeMinutes: g.intBetween(0, 120),
				Efficiency:      roundTo(g.floatBetween(0.75, 0.98), 3),
				EnergyUsed:      g.intBetween(500, 800),
				LaborHours:      g.intBetween(150, 200),
			})
		}
	}
	return records
}

// Financial generates the monthly P&L series in ascending month order.
// Revenue follows a compounding trend modulated by a 12-month sinusoid plus
// uniform noise; cost lines are fractions of revenue redrawn per month.
func (g *Generator) Financial() []models.FinancialRecord {
	records := make([]models.FinancialRecord, 0, financialMonths)

	for i := 0; i < financialMonths; i++ {
		month := financialStart.AddDate(0, i, 0)

		trend := baseMonthlyRevenue * (1 + 0.015*float64(i))
		seasonal := trend * (1 + 0.1*math.Sin(2*math.Pi*float64(i)/12))
		revenueRaw := seasonal + g.floatBetween(-20000, 30000)

		revenue := decimal.NewFromFloat(revenueRaw).Round(2)
		cogs := decimal.NewFromFloat(revenueRaw * g.floatBetween(0.55, 0.65)).Round(2)
		opex := decimal.NewFromFloat(revenueRaw * g.floatBetween(0.20, 0.30)).Round(2)

		// Derived lines come from the stored rounded components, so the
		// identities hold exactly in the serialized output.
		gross := revenue.Sub(cogs)
		net := revenue.Sub(cogs).Sub(opex)

		records = append(records, models.FinancialRecord{
			Month:             month,
			Revenue:           revenue,
			COGS:              cogs,
			OperatingExpenses: opex,
			GrossProfit:       gross,
			NetProfit:         net,
			BudgetRevenue:     revenue.Mul(decimal.NewFromFloat(g.floatBetween(0.9, 1.1))).Round(2),
			CashFlow:          net.Mul(decimal.NewFromFloat(g.floatBetween(0.8, 1.2))).Round(2),
		})
	}
	return records
}

// Customers generates n customer rows. The churn flag is fully determined by
// the days-since-last-purchase draw.
func (g *Generator) Customers(n int) ([]models.CustomerRecord, error) {
	if n < 0 {
		return nil, fmt.Errorf("customer row count must be non-negative, got %d", n)
	}

	records := make([]models.CustomerRecord, 0, n)
	for i := 0; i < n; i++ {
		purchases := g.intBetween(1, 50)
		avgOrder := decimal.NewFromFloat(g.floatBetween(50, 500)).Round(2)
		daysSinceLast := g.intBetween(0, 365)

		churned := 0
		if daysSinceLast > churnThresholdDays {
			churned = 1
		}

		records = append(records, models.CustomerRecord{
			CustomerID:            fmt.Sprintf("CUST-%d", 1000+i),
			SignupDate:            signupWindowStart.AddDate(0, 0, g.intBetween(0, signupWindowDays)),
			TotalPurchases:        purchases,
			AvgOrderValue:         avgOrder,
			LifetimeValue:         avgOrder.Mul(decimal.NewFromInt(int64(purchases))).Round(2),
			DaysSinceLastPurchase: daysSinceLast,
			Churned:               churned,
			SatisfactionScore:     g.intBetween(1, 5),
			SupportTickets:        g.intBetween(0, 10),
			Segment:               pick(g.rng, valueSegments),
		})
	}
	return records, nil
}

// OperationsSpan reports the production calendar range, used by callers that
// need the expected row count.
func OperationsSpan() (start, end time.Time) {
	return operationsStart, operationsEnd
}

func (g *Generator) intBetween(lo, hi int) int {
	return lo + g.rng.IntN(hi-lo+1)
}

func (g *Generator) floatBetween(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow10(places)
	return math.Round(v*scale) / scale
}
