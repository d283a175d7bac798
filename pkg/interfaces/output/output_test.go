package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vsinha/cmrp/pkg/application/dto"
	"github.com/vsinha/cmrp/pkg/domain/entities"
)

func sampleSchedule() *dto.GanttChart {
	start := entities.NewDate(2024, time.June, 1)
	return &dto.GanttChart{
		ProjectID:   1,
		ProjectNo:   "P-1",
		ProjectName: "Substation <North>",
		Start:       start,
		End:         start.AddDays(20),
		Bars: []dto.GanttBar{
			{TaskID: 1, Name: "Survey", Start: start, End: start.AddDays(5), ActualStart: start, ActualEnd: start.AddDays(6)},
			{TaskID: 2, Name: "Poles", Depth: 1, Start: start.AddDays(6), End: start.AddDays(20)},
		},
	}
}

func TestGenerateSVG(t *testing.T) {
	schedule := sampleSchedule()
	gc := NewGanttChart(schedule)
	if gc.Height != 2*gc.RowHeight+gc.MarginTop+gc.MarginBottom {
		t.Errorf("unexpected chart height %d", gc.Height)
	}

	svg := gc.GenerateSVG(schedule)
	for _, want := range []string{"<svg", "Survey", "Poles", "Planned", "Actual", "Substation &lt;North&gt; (P-1) Schedule"} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
	if strings.Contains(svg, "<North>") {
		t.Error("project name was not escaped")
	}
}

func TestGenerateSVG_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, &dto.GanttChart{ProjectName: "Idle"}); err != nil {
		t.Fatalf("WriteSVG: %v", err)
	}
	if !strings.Contains(buf.String(), "No tasks for Idle") {
		t.Errorf("unexpected empty chart: %s", buf.String())
	}
}

func sampleDashboard() *dto.DashboardView {
	segment := "Transmission"
	return &dto.DashboardView{
		TotalRemaining:           1234.5,
		MonthlyTotalForecast:     dto.MonthlyValues{"1": 100, "6": 250.5},
		MonthlyActualInvoiced:    dto.MonthlyValues{"2": 75},
		TotalActiveProjectsCount: 3,
		FilterApplied:            &segment,
	}
}

func TestGenerateDashboard(t *testing.T) {
	tests := []struct {
		name   string
		format string
		check  func(t *testing.T, out string)
	}{
		{"text", "text", func(t *testing.T, out string) {
			if !strings.Contains(out, "Dashboard Summary (Transmission)") || !strings.Contains(out, "Jun    250.50") {
				t.Errorf("unexpected text output:\n%s", out)
			}
		}},
		{"json", "json", func(t *testing.T, out string) {
			var v dto.DashboardView
			if err := json.Unmarshal([]byte(out), &v); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if v.TotalActiveProjectsCount != 3 {
				t.Errorf("active count = %d", v.TotalActiveProjectsCount)
			}
		}},
		{"csv", "csv", func(t *testing.T, out string) {
			lines := strings.Split(strings.TrimSpace(out), "\n")
			if len(lines) != 13 || lines[0] != "month,forecast,invoiced" || lines[2] != "2,0.00,75.00" {
				t.Errorf("unexpected CSV output:\n%s", out)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := GenerateDashboard(sampleDashboard(), Config{Format: tt.format, Out: &buf}); err != nil {
				t.Fatalf("GenerateDashboard: %v", err)
			}
			tt.check(t, buf.String())
		})
	}
}

func TestGenerateDashboard_OutputDir(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	if err := GenerateDashboard(sampleDashboard(), Config{Format: "csv", OutputDir: dir, Verbose: true, Out: &buf}); err != nil {
		t.Fatalf("GenerateDashboard: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "dashboard_monthly.csv")); err != nil {
		t.Errorf("CSV file not written: %v", err)
	}
	if !strings.Contains(buf.String(), "Dashboard saved to:") {
		t.Errorf("missing verbose notice: %s", buf.String())
	}

	if err := GenerateDashboard(sampleDashboard(), Config{Format: "yaml", Out: &buf}); err == nil {
		t.Error("expected error for unknown format")
	}
}
