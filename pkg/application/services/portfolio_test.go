package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/vsinha/cmrp/pkg/config"
	testhelpers "github.com/vsinha/cmrp/pkg/infrastructure/testing"
)

func newPortfolioServices(t *testing.T) *Services {
	t.Helper()
	store := testhelpers.BuildPortfolioTestData()
	return New(Deps{
		Repos:  memoryRepositories(store),
		Limits: config.DefaultConfig().Limits,
		Logger: zaptest.NewLogger(t),
		Now:    func() time.Time { return testhelpers.PortfolioDate.Time().Add(10 * time.Hour) },
	})
}

func TestPortfolio_Lists(t *testing.T) {
	svc := newPortfolioServices(t)
	ctx := context.Background()

	active, err := svc.Projects.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "T-100", active[0].ProjectNo, "larger remaining amount sorts first")
	assert.Equal(t, "Poles delivered", active[0].LatestUpdate)

	completed, err := svc.Projects.ListCompleted(ctx)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, "T-300", completed[0].ProjectNo)
}

func TestPortfolio_DashboardBySegment(t *testing.T) {
	svc := newPortfolioServices(t)
	ctx := context.Background()

	tests := []struct {
		segment   string
		active    int
		completed int
		newCount  int
		remaining float64
		july      float64
		august    float64
	}{
		{segment: "", active: 2, completed: 1, newCount: 1, remaining: 1300, july: 300, august: 200},
		{segment: "all", active: 2, completed: 1, newCount: 1, remaining: 1300, july: 300, august: 200},
		{segment: "Transmission", active: 1, completed: 1, newCount: 1, remaining: 800, july: 300},
		{segment: "Distribution", active: 1, remaining: 500, august: 200},
	}

	for _, tt := range tests {
		t.Run("segment="+tt.segment, func(t *testing.T) {
			view, err := svc.Dashboard.View(ctx, tt.segment)
			require.NoError(t, err)
			assert.Equal(t, tt.active, view.TotalActiveProjectsCount)
			assert.Equal(t, tt.completed, view.CompletedThisYearCount)
			assert.Equal(t, tt.newCount, view.NewProjectsCount)
			assert.InDelta(t, tt.remaining, view.TotalRemaining, 0.001)
			assert.InDelta(t, tt.july, view.MonthlyTotalForecast["7"], 0.001)
			assert.InDelta(t, tt.august, view.MonthlyTotalForecast["8"], 0.001)
		})
	}
}

func TestPortfolio_GanttNestsChildren(t *testing.T) {
	svc := newPortfolioServices(t)
	ctx := context.Background()

	active, err := svc.Projects.ListActive(ctx)
	require.NoError(t, err)

	chart, err := svc.Tasks.Gantt(ctx, active[0].ID)
	require.NoError(t, err)
	require.Len(t, chart.Bars, 2)
	assert.Equal(t, "Civil works", chart.Bars[0].Name)
	assert.Equal(t, 0, chart.Bars[0].Depth)
	assert.Equal(t, "Foundations", chart.Bars[1].Name)
	assert.Equal(t, 1, chart.Bars[1].Depth)
	assert.Equal(t, "2024-06-03", chart.Start.String())
	assert.Equal(t, "2024-06-28", chart.End.String())
}

func TestRandomProjectsImport(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	rows := make([]any, 0, 5)
	for i := 0; i < 5; i++ {
		p := testhelpers.RandomProject()
		rows = append(rows, map[string]any{
			"Project #":    p.ProjectNo,
			"Project Name": p.Name,
			"Client":       p.Client,
			"Amount":       p.Amount.Decimal.String(),
		})
	}
	res, err := h.svc.Projects.ImportRows(ctx, rows, SourceBulk)
	require.NoError(t, err)
	assert.Equal(t, 5, res.InsertedCount+res.UpdatedCount)
	assert.Empty(t, res.Errors)
}
