package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/vsinha/cmrp/pkg/application/dto"
	"github.com/vsinha/cmrp/pkg/domain/entities"
)

// DashboardService computes portfolio metrics
type DashboardService struct {
	deps Deps
}

// NewDashboardService creates a dashboard service
func NewDashboardService(deps Deps) *DashboardService {
	return &DashboardService{deps: deps}
}

// Metrics computes the dashboard for a business segment. An empty segment
// or "all" covers every project.
func (s *DashboardService) Metrics(ctx context.Context, segment string) (*entities.DashboardMetrics, error) {
	segment = entities.NormalizeSegment(strings.TrimSpace(segment))
	today := s.deps.today()
	metrics := &entities.DashboardMetrics{FilterApplied: segment, Year: today.Year()}

	projects, err := s.deps.Repos.Projects.ListBySegment(ctx, segment)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	newSince := today.AddDays(-entities.NewProjectWindowDays)
	for _, p := range projects {
		if p.IsActive() {
			metrics.ActiveCount++
			if p.RemainingAmount.Valid {
				metrics.TotalRemaining = metrics.TotalRemaining.Add(p.RemainingAmount.Decimal)
			}
		}
		if !p.DateCompleted.IsZero() && p.DateCompleted.Year() == today.Year() {
			metrics.CompletedThisYearCount++
		}
		if !p.PODate.IsZero() && !p.PODate.Before(newSince) {
			metrics.NewProjectsCount++
		}
	}

	entries, err := s.deps.Repos.Forecasts.ListForYear(ctx, today.Year(), segment)
	if err != nil {
		return nil, fmt.Errorf("failed to list forecast entries: %w", err)
	}
	for _, e := range entries {
		if e.Date.IsZero() {
			continue
		}
		month := int(e.Date.Month())
		amount := e.AmountFor(e.ProjectAmount)
		metrics.MonthlyForecast.Add(month, amount)
		if e.Completed {
			metrics.MonthlyInvoiced.Add(month, amount)
		}
	}
	return metrics, nil
}

// View computes the metrics in their API shape
func (s *DashboardService) View(ctx context.Context, segment string) (*dto.DashboardView, error) {
	metrics, err := s.Metrics(ctx, segment)
	if err != nil {
		return nil, err
	}
	view := dto.NewDashboardView(metrics)
	return &view, nil
}
