package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"superstore-analytics/internal/models"
)

// ReadSales parses a sales CSV produced by WriteSales.
func ReadSales(path string) ([]models.SalesRecord, error) {
	var records []models.SalesRecord
	err := readCSV(path, salesColumns, func(row []string) error {
		orderDate, err := time.Parse(dateLayout, row[1])
		if err != nil {
			return fmt.Errorf("order date: %w", err)
		}
		shipDate, err := time.Parse(dateLayout, row[2])
		if err != nil {
			return fmt.Errorf("ship date: %w", err)
		}
		sales, err := decimal.NewFromString(row[6])
		if err != nil {
			return fmt.Errorf("sales: %w", err)
		}
		quantity, err := strconv.Atoi(row[7])
		if err != nil {
			return fmt.Errorf("quantity: %w", err)
		}
		discount, err := decimal.NewFromString(row[8])
		if err != nil {
			return fmt.Errorf("discount: %w", err)
		}
		profit, err := decimal.NewFromString(row[9])
		if err != nil {
			return fmt.Errorf("profit: %w", err)
		}

		records = append(records, models.SalesRecord{
			OrderID:     row[0],
			OrderDate:   orderDate,
			ShipDate:    shipDate,
			Category:    row[3],
			SubCategory: row[4],
			ProductName: row[5],
			Sales:       sales,
			Quantity:    quantity,
			Discount:    discount,
			Profit:      profit,
			Region:      row[10],
			Segment:     row[11],
			CustomerID:  row[12],
			State:       row[13],
		})
		return nil
	})
	return records, err
}

// ReadOperations parses an operations CSV produced by WriteOperations.
func ReadOperations(path string) ([]models.OperationsRecord, error) {
	var records []models.OperationsRecord
	err := readCSV(path, operationsColumns, func(row []string) error {
		date, err := time.Parse(dateLayout, row[0])
		if err != nil {
			return fmt.Errorf("date: %w", err)
		}
		ints := make([]int, 0, 6)
		for _, idx := range []int{2, 3, 5, 7, 8} {
			v, err := strconv.Atoi(row[idx])
			if err != nil {
				return fmt.Errorf("column %d: %w", idx, err)
			}
			ints = append(ints, v)
		}
		defectRate, err := strconv.ParseFloat(row[4], 64)
		if err != nil {
			return fmt.Errorf("defect rate: %w", err)
		}
		efficiency, err := strconv.ParseFloat(row[6], 64)
		if err != nil {
			return fmt.Errorf("efficiency: %w", err)
		}

		records = append(records, models.OperationsRecord{
			Date:            date,
			Shift:           row[1],
			UnitsProduced:   ints[0],
			Defects:         ints[1],
			DefectRate:      defectRate,
			DowntimeMinutes: ints[2],
			Efficiency:      efficiency,
			EnergyUsed:      ints[3],
			LaborHours:      ints[4],
		})
		return nil
	})
	return records, err
}

// ReadFinancial parses a financial CSV produced by WriteFinancial.
func ReadFinancial(path string) ([]models.FinancialRecord, error) {
	var records []models.FinancialRecord
	err := readCSV(path, financialColumns, func(row []string) error {
		month, err := time.Parse(dateLayout, row[0])
		if err != nil {
			return fmt.Errorf("month: %w", err)
		}
		money := make([]decimal.Decimal, 7)
		for i := 0; i < 7; i++ {
			money[i], err = decimal.NewFromString(row[i+1])
			if err != nil {
				return fmt.Errorf("column %s: %w", financialColumns[i+1], err)
			}
		}

		records = append(records, models.FinancialRecord{
			Month:             month,
			Revenue:           money[0],
			COGS:              money[1],
			OperatingExpenses: money[2],
			GrossProfit:       money[3],
			NetProfit:         money[4],
			BudgetRevenue:     money[5],
			CashFlow:          money[6],
		})
		return nil
	})
	return records, err
}

// ReadCustomers parses a customer CSV produced by WriteCustomers.
func ReadCustomers(path string) ([]models.CustomerRecord, error) {
	var records []models.CustomerRecord
	err := readCSV(path, customerColumns, func(row []string) error {
		signup, err := time.Parse(dateLayout, row[1])
		if err != nil {
			return fmt.Errorf("signup date: %w", err)
		}
		avgOrder, err := decimal.NewFromString(row[3])
		if err != nil {
			return fmt.Errorf("avg order value: %w", err)
		}
		lifetime, err := decimal.NewFromString(row[4])
		if err != nil {
			return fmt.Errorf("lifetime value: %w", err)
		}
		ints := make([]int, 0, 5)
		for _, idx := range []int{2, 5, 6, 7, 8} {
			v, err := strconv.Atoi(row[idx])
			if err != nil {
				return fmt.Errorf("column %d: %w", idx, err)
			}
			ints = append(ints, v)
		}

		records = append(records, models.CustomerRecord{
			CustomerID:            row[0],
			SignupDate:            signup,
			TotalPurchases:        ints[0],
			AvgOrderValue:         avgOrder,
			LifetimeValue:         lifetime,
			DaysSinceLastPurchase: ints[1],
			Churned:               ints[2],
			SatisfactionScore:     ints[3],
			SupportTickets:        ints[4],
			Segment:               row[9],
		})
		return nil
	})
	return records, err
}

func readCSV(path string, header []string, parse func(row []string) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(header)

	got, err := r.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if !slices.Equal(got, header) {
		return fmt.Errorf("unexpected header %v, want %v", got, header)
	}

	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read line %d: %w", line, err)
		}
		if err := parse(row); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
}
