// Package dataset serializes the generated datasets to the flat CSV files
// the dashboard and the external chart scripts consume, and parses them back
// into typed records.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"superstore-analytics/internal/models"
)

const dateLayout = "2006-01-02"

// Default file names, matching what the downstream scripts expect.
const (
	SalesFile      = "superstore_sales.csv"
	OperationsFile = "operations_data.csv"
	FinancialFile  = "financial_data.csv"
	CustomersFile  = "customer_data.csv"
)

var (
	salesColumns = []string{
		"Order_ID", "Order_Date", "Ship_Date", "Category", "Sub_Category",
		"Product_Name", "Sales", "Quantity", "Discount", "Profit",
		"Region", "Segment", "Customer_ID", "State",
	}
	operationsColumns = []string{
		"Date", "Shift", "Units_Produced", "Defects", "Defect_Rate",
		"Downtime_Minutes", "Efficiency", "Energy_Used", "Labor_Hours",
	}
	financialColumns = []string{
		"Month", "Revenue", "COGS", "Operating_Expenses", "Gross_Profit",
		"Net_Profit", "Budget_Revenue", "Cash_Flow",
	}
	customerColumns = []string{
		"Customer_ID", "Signup_Date", "Total_Purchases", "Avg_Order_Value",
		"Lifetime_Value", "Days_Since_Last_Purchase", "Churned",
		"Satisfaction_Score", "Support_Tickets", "Segment",
	}
)

// WriteSales writes the sales dataset to path, overwriting any existing file.
// The header row is written even for an empty dataset.
func WriteSales(path string, rows []models.SalesRecord) error {
	return writeCSV(path, salesColumns, len(rows), func(i int) []string {
		r := rows[i]
		return []string{
			r.OrderID,
			r.OrderDate.Format(dateLayout),
			r.ShipDate.Format(dateLayout),
			r.Category,
			r.SubCategory,
			r.ProductName,
			r.Sales.StringFixed(2),
			strconv.Itoa(r.Quantity),
			r.Discount.String(),
			r.Profit.StringFixed(2),
			r.Region,
			r.Segment,
			r.CustomerID,
			r.State,
		}
	})
}

// WriteOperations writes the production dataset to path.
func WriteOperations(path string, rows []models.OperationsRecord) error {
	return writeCSV(path, operationsColumns, len(rows), func(i int) []string {
		r := rows[i]
		return []string{
			r.Date.Format(dateLayout),
			r.Shift,
			strconv.Itoa(r.UnitsProduced),
			strconv.Itoa(r.Defects),
			strconv.FormatFloat(r.DefectRate, 'f', 4, 64),
			strconv.Itoa(r.DowntimeMinutes),
			strconv.FormatFloat(r.Efficiency, 'f', 3, 64),
			strconv.Itoa(r.EnergyUsed),
			strconv.Itoa(r.LaborHours),
		}
	})
}

// WriteFinancial writes the monthly P&L dataset to path.
func WriteFinancial(path string, rows []models.FinancialRecord) error {
	return writeCSV(path, financialColumns, len(rows), func(i int) []string {
		r := rows[i]
		return []string{
			r.Month.Format(dateLayout),
			r.Revenue.StringFixed(2),
			r.COGS.StringFixed(2),
			r.OperatingExpenses.StringFixed(2),
			r.GrossProfit.StringFixed(2),
			r.NetProfit.StringFixed(2),
			r.BudgetRevenue.StringFixed(2),
			r.CashFlow.StringFixed(2),
		}
	})
}

// WriteCustomers writes the customer dataset to path.
func WriteCustomers(path string, rows []models.CustomerRecord) error {
	return writeCSV(path, customerColumns, len(rows), func(i int) []string {
		r := rows[i]
		return []string{
			r.CustomerID,
			r.SignupDate.Format(dateLayout),
			strconv.Itoa(r.TotalPurchases),
			r.AvgOrderValue.StringFixed(2),
			r.LifetimeValue.StringFixed(2),
			strconv.Itoa(r.DaysSinceLastPurchase),
			strconv.Itoa(r.Churned),
			strconv.Itoa(r.SatisfactionScore),
			strconv.Itoa(r.SupportTickets),
			r.Segment,
		}
	})
}

// writeCSV owns the file handle for the duration of the write. There is no
// partial-write cleanup; callers wanting atomic replacement should write to
// a temp path and rename.
func writeCSV(path string, header []string, n int, row func(int) []string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := 0; i < n; i++ {
		if err := w.Write(row(i)); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}
