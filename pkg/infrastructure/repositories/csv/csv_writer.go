package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/vsinha/cmrp/pkg/domain/entities"
)

// ExportHeader is the column order of project exports
var ExportHeader = []string{
	"DS", "Year", "Project #", "Client", "Project Name", "Amount", "Status (%)",
	"Remaining Amount", "Running Weeks", "PO Date", "PO No.", "Date Completed",
	"PIC", "Address", "Latest Update",
}

// ProjectRecord is a project with the derived columns of an export row
type ProjectRecord struct {
	Project      *entities.Project
	RunningWeeks *int
	LatestUpdate string
}

// WriteProjects writes a header row followed by one row per project
func WriteProjects(w io.Writer, records []ProjectRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ExportHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i, rec := range records {
		if err := writer.Write(projectRow(rec)); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i+2, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func projectRow(rec ProjectRecord) []string {
	p := rec.Project
	return []string{
		p.DS,
		optionalInt(p.Year),
		p.ProjectNo,
		p.Client,
		p.Name,
		p.Amount.String(),
		strconv.FormatFloat(p.Status, 'f', -1, 64),
		p.RemainingAmount.String(),
		optionalInt(rec.RunningWeeks),
		p.PODate.String(),
		p.PONo,
		p.DateCompleted.String(),
		p.PIC,
		p.Address,
		rec.LatestUpdate,
	}
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
