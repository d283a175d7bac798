package commands

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vsinha/cmrp/pkg/application/dto"
	"github.com/vsinha/cmrp/pkg/application/services"
	"github.com/vsinha/cmrp/pkg/domain/entities"
	"github.com/vsinha/cmrp/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/cmrp/pkg/interfaces/output"
)

func newImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <projects.csv>",
		Short: "Upsert projects from a CSV file, keyed on project number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := csv.NewLoader().LoadProjects(args[0])
			if err != nil {
				return err
			}
			rows := make([]any, len(records))
			for i, rec := range records {
				rows[i] = map[string]any(rec)
			}

			rt, err := a.runtime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			result, err := rt.Services.Projects.ImportRows(cmd.Context(), rows, services.SourceCSV)
			if err != nil {
				return err
			}
			printImportResult(cmd.OutOrStdout(), result)
			return nil
		},
	}
}

func printImportResult(w io.Writer, result *dto.ImportResult) {
	fmt.Fprintln(w, result.Message)
	for _, msg := range result.Errors {
		fmt.Fprintf(w, "  - %s\n", msg)
	}
}

func newExportCommand(a *app) *cobra.Command {
	var (
		completed bool
		outPath   string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write projects as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.runtime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			w, closeOut, err := openOutput(cmd, outPath)
			if err != nil {
				return err
			}
			defer closeOut()
			return rt.Services.Projects.ExportCSV(cmd.Context(), w, completed)
		},
	}
	cmd.Flags().BoolVar(&completed, "completed", false, "export completed projects instead of open ones")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newReportCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print reports",
	}

	var (
		segment string
		config  output.Config
	)
	dashboard := &cobra.Command{
		Use:   "dashboard",
		Short: "Print dashboard metrics and the monthly forecast",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.runtime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			view, err := rt.Services.Dashboard.View(cmd.Context(), segment)
			if err != nil {
				return err
			}
			config.Verbose = a.opts.Verbose
			config.Out = cmd.OutOrStdout()
			return output.GenerateDashboard(view, config)
		},
	}
	dashboard.Flags().StringVar(&segment, "segment", "", "restrict to one business segment")
	dashboard.Flags().StringVarP(&config.Format, "format", "f", "text", "output format: text, json, csv")
	dashboard.Flags().StringVar(&config.OutputDir, "output-dir", "", "also write the report into this directory")

	cmd.AddCommand(dashboard)
	return cmd
}

func newGanttCommand(a *app) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "gantt <project-id>",
		Short: "Render a project's task schedule as SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid project id %q", args[0])
			}

			rt, err := a.runtime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			chart, err := rt.Services.Tasks.Gantt(cmd.Context(), entities.ProjectID(id))
			if err != nil {
				return err
			}
			w, closeOut, err := openOutput(cmd, outPath)
			if err != nil {
				return err
			}
			defer closeOut()
			return output.WriteSVG(w, chart)
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")
	return cmd
}

// openOutput returns stdout or the named file
func openOutput(cmd *cobra.Command, path string) (io.Writer, func(), error) {
	if path == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}
