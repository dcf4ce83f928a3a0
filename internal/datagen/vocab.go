package datagen

import "time"

// Fixed reference vocabularies shared by every generation run.

var categories = []string{"Technology", "Furniture", "Office Supplies"}

var subCategories = map[string][]string{
	"Technology":      {"Phones", "Computers", "Accessories", "Copiers"},
	"Furniture":       {"Chairs", "Tables", "Bookcases", "Furnishings"},
	"Office Supplies": {"Paper", "Binders", "Art", "Storage", "Labels"},
}

// Unit price bounds per category.
var priceRanges = map[string][2]float64{
	"Technology":      {50, 2000},
	"Furniture":       {100, 1500},
	"Office Supplies": {5, 300},
}

var regions = []string{"East", "West", "Central", "South"}

var segments = []string{"Consumer", "Corporate", "Home Office"}

var states = []string{
	"California", "Texas", "New York", "Florida",
	"Illinois", "Pennsylvania", "Ohio", "Georgia",
}

var discountLevels = []float64{0, 0.10, 0.15, 0.20, 0.25}

var shifts = []string{"Morning", "Evening", "Night"}

var valueSegments = []string{"High Value", "Medium Value", "Low Value"}

// Calendar spans for the four datasets.
var (
	salesWindowStart = time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	salesWindowDays  = 1095

	operationsStart = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	operationsEnd   = time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	financialStart  = time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	financialMonths = 36

	signupWindowStart = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	signupWindowDays  = 1460
)
