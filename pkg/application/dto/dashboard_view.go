package dto

import (
	"strconv"

	"github.com/vsinha/cmrp/pkg/domain/entities"
)

// MonthlyValues is keyed by month number "1" to "12"
type MonthlyValues map[string]float64

func newMonthlyValues(totals entities.MonthlyTotals) MonthlyValues {
	out := make(MonthlyValues, len(totals))
	for m := 1; m <= 12; m++ {
		out[strconv.Itoa(m)] = totals.Get(m).InexactFloat64()
	}
	return out
}

// DashboardView is the dashboard payload
type DashboardView struct {
	TotalRemaining           float64       `json:"total_remaining"`
	MonthlyActualInvoiced    MonthlyValues `json:"monthly_actual_invoiced"`
	MonthlyTotalForecast     MonthlyValues `json:"monthly_total_forecast"`
	CompletedThisYearCount   int           `json:"completed_this_year_count"`
	TotalActiveProjectsCount int           `json:"total_active_projects_count"`
	NewProjectsCount         int           `json:"new_projects_count"`
	FilterApplied            *string       `json:"filter_applied"`
}

// NewDashboardView converts metrics for the API
func NewDashboardView(m *entities.DashboardMetrics) DashboardView {
	v := DashboardView{
		TotalRemaining:           m.TotalRemaining.InexactFloat64(),
		MonthlyActualInvoiced:    newMonthlyValues(m.MonthlyInvoiced),
		MonthlyTotalForecast:     newMonthlyValues(m.MonthlyForecast),
		CompletedThisYearCount:   m.CompletedThisYearCount,
		TotalActiveProjectsCount: m.ActiveCount,
		NewProjectsCount:         m.NewProjectsCount,
	}
	if m.FilterApplied != "" {
		filter := m.FilterApplied
		v.FilterApplied = &filter
	}
	return v
}

// UserProfile is the logged-in user as returned by the API
type UserProfile struct {
	UserID   int64         `json:"user_id"`
	Username string        `json:"username"`
	Role     entities.Role `json:"role"`
}
