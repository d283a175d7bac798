package entities

import (
	"github.com/shopspring/decimal"
)

// NewProjectWindowDays is how recent a PO date must be to count as new
const NewProjectWindowDays = 15

// AllSegments disables the DS filter on dashboard queries
const AllSegments = "all"

// MonthlyTotals holds one value per calendar month, index 0 = January
type MonthlyTotals [12]decimal.Decimal

// Add accumulates v into month m (1-12)
func (m *MonthlyTotals) Add(month int, v decimal.Decimal) {
	m[month-1] = m[month-1].Add(v)
}

// Get returns the total for month m (1-12)
func (m *MonthlyTotals) Get(month int) decimal.Decimal {
	return m[month-1]
}

// Sum totals all months
func (m *MonthlyTotals) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, v := range m {
		total = total.Add(v)
	}
	return total
}

// DashboardMetrics summarises the portfolio for a segment
type DashboardMetrics struct {
	TotalRemaining         decimal.Decimal
	MonthlyForecast        MonthlyTotals
	MonthlyInvoiced        MonthlyTotals
	CompletedThisYearCount int
	ActiveCount            int
	NewProjectsCount       int
	FilterApplied          string
	Year                   int
}

// NormalizeSegment maps "" and "all" to no filter
func NormalizeSegment(segment string) string {
	if segment == AllSegments {
		return ""
	}
	return segment
}
