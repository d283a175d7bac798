package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vsinha/cmrp/pkg/application/dto"
)

// Config holds configuration for report generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	Out       io.Writer
}

func (c Config) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// GenerateDashboard writes dashboard metrics in the configured format
func GenerateDashboard(view *dto.DashboardView, config Config) error {
	switch config.Format {
	case "", "text":
		return generateTextOutput(view, config)
	case "json":
		return generateJSONOutput(view, config)
	case "csv":
		return generateCSVOutput(view, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

func segmentLabel(view *dto.DashboardView) string {
	if view.FilterApplied == nil {
		return "All segments"
	}
	return *view.FilterApplied
}

func generateTextOutput(view *dto.DashboardView, config Config) error {
	w := config.out()
	fmt.Fprintf(w, "Dashboard Summary (%s)\n", segmentLabel(view))
	fmt.Fprintf(w, "=========================\n\n")

	fmt.Fprintf(w, "Active Projects:      %d\n", view.TotalActiveProjectsCount)
	fmt.Fprintf(w, "New Projects:         %d\n", view.NewProjectsCount)
	fmt.Fprintf(w, "Completed This Year:  %d\n", view.CompletedThisYearCount)
	fmt.Fprintf(w, "Total Remaining:      %.2f\n\n", view.TotalRemaining)

	fmt.Fprintf(w, "%-6s %-15s %-15s\n", "Month", "Forecast", "Invoiced")
	fmt.Fprintf(w, "%-6s %-15s %-15s\n", "------", "---------------", "---------------")
	for m := 1; m <= 12; m++ {
		key := strconv.Itoa(m)
		fmt.Fprintf(w, "%-6s %-15.2f %-15.2f\n",
			time.Month(m).String()[:3], view.MonthlyTotalForecast[key], view.MonthlyActualInvoiced[key])
	}
	fmt.Fprintln(w)
	return nil
}

func generateJSONOutput(view *dto.DashboardView, config Config) error {
	jsonData, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		fmt.Fprintln(config.out(), string(jsonData))
		return nil
	}
	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	filename := filepath.Join(config.OutputDir, "dashboard.json")
	if err := os.WriteFile(filename, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	if config.Verbose {
		fmt.Fprintf(config.out(), "Dashboard saved to: %s\n", filename)
	}
	return nil
}

func generateCSVOutput(view *dto.DashboardView, config Config) error {
	if config.OutputDir == "" {
		return writeMonthlyCSV(config.out(), view)
	}
	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	filename := filepath.Join(config.OutputDir, "dashboard_monthly.csv")
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer f.Close()
	if err := writeMonthlyCSV(f, view); err != nil {
		return fmt.Errorf("failed to write monthly CSV: %w", err)
	}
	if config.Verbose {
		fmt.Fprintf(config.out(), "Dashboard saved to: %s\n", filename)
	}
	return nil
}

func writeMonthlyCSV(w io.Writer, view *dto.DashboardView) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"month", "forecast", "invoiced"}); err != nil {
		return err
	}
	for m := 1; m <= 12; m++ {
		key := strconv.Itoa(m)
		row := []string{
			key,
			strconv.FormatFloat(view.MonthlyTotalForecast[key], 'f', 2, 64),
			strconv.FormatFloat(view.MonthlyActualInvoiced[key], 'f', 2, 64),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
