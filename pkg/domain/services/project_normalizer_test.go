package services

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		header   string
		expected string
	}{
		{"Project #", "project_no"},
		{"  PROJECT NAME ", "project_name"},
		{"Status (%)", "status"},
		{"DS", "bs"},
		{"Business Segment", "bs"},
		{"PO No.", "po_no"},
		{"Date Completed", "date_completed"},
		{"Remaining Amount", "remaining_amount"},
		{"(Weird)  Header.", "weird_header"},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			if got := NormalizeHeader(tt.header); got != tt.expected {
				t.Errorf("NormalizeHeader(%q) = %q, want %q", tt.header, got, tt.expected)
			}
		})
	}
}

func TestProjectRowNormalizer_Normalize(t *testing.T) {
	n := NewProjectRowNormalizer()

	row, err := n.Normalize(map[string]any{
		"Project #":      "P-100",
		"Project Name":   " Plant Upgrade ",
		"Amount":         "10,000",
		"Status (%)":     "40%",
		"DS":             "ENG",
		"Year":           "2024",
		"PO Date":        "1/15/2024",
		"Date Completed": "",
		"PIC":            "Ana",
	}, 2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	p := row.Project
	if p.ProjectNo != "P-100" || p.Name != "Plant Upgrade" || p.DS != "ENG" || p.PIC != "Ana" {
		t.Errorf("Unexpected identity fields: %+v", p)
	}
	if p.Year == nil || *p.Year != 2024 {
		t.Errorf("Expected year 2024, got %v", p.Year)
	}
	if p.Status != 40 {
		t.Errorf("Expected status 40, got %v", p.Status)
	}
	if p.RemainingAmount.String() != "6000" {
		t.Errorf("Expected remaining 6000, got %s", p.RemainingAmount)
	}
	if p.PODate.String() != "2024-01-15" {
		t.Errorf("Expected PO date 2024-01-15, got %s", p.PODate)
	}
	if row.Warning != "" {
		t.Errorf("Expected no warning, got %q", row.Warning)
	}
}

func TestProjectRowNormalizer_Skips(t *testing.T) {
	n := NewProjectRowNormalizer()

	_, err := n.Normalize(map[string]any{"Project #": "X-1", "Project Name": "  "}, 7)
	var skipped *RowSkipped
	if !errors.As(err, &skipped) {
		t.Fatalf("Expected RowSkipped, got %v", err)
	}
	if skipped.Message != "Row 7: Missing or empty 'Project Name'." {
		t.Errorf("Unexpected message %q", skipped.Message)
	}
}

func TestProjectRowNormalizer_Warnings(t *testing.T) {
	n := NewProjectRowNormalizer()

	row, err := n.Normalize(map[string]any{
		"project_name":   "Depot",
		"status":         "done-ish",
		"po_date":        "yesterday",
		"date_completed": "2024/01/01",
		"project_no":     "#n/a",
	}, 3)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if row.Project.Status != 0 {
		t.Errorf("Expected status default 0, got %v", row.Project.Status)
	}
	if row.Project.ProjectNo != "" {
		t.Errorf("Expected placeholder project number to be dropped, got %q", row.Project.ProjectNo)
	}
	for _, want := range []string{
		"Row 3 ('Depot'): Invalid 'Status' value 'done-ish'.",
		"Invalid PO Date format 'yesterday'.",
		"Invalid Date Completed format '2024/01/01'.",
	} {
		if !strings.Contains(row.Warning, want) {
			t.Errorf("Expected warning to contain %q, got %q", want, row.Warning)
		}
	}
	if !row.Project.PODate.IsZero() || !row.Project.DateCompleted.IsZero() {
		t.Errorf("Expected invalid dates to be dropped")
	}
}

func TestProjectRowNormalizer_NumericJSONValues(t *testing.T) {
	n := NewProjectRowNormalizer()

	row, err := n.Normalize(map[string]any{
		"project_no":   float64(1042),
		"project_name": "Line Extension",
		"amount":       float64(2500),
		"status":       float64(120),
	}, 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if row.Project.ProjectNo != "1042" {
		t.Errorf("Expected project number 1042, got %q", row.Project.ProjectNo)
	}
	if row.Project.Status != 100 {
		t.Errorf("Expected status clamped to 100, got %v", row.Project.Status)
	}
	if !row.Project.RemainingAmount.Decimal.IsZero() {
		t.Errorf("Expected zero remaining, got %s", row.Project.RemainingAmount)
	}
}
