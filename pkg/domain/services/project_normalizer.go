package services

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/vsinha/cmrp/pkg/domain/entities"
)

// headerAliases maps lower-cased spreadsheet headers to project fields
var headerAliases = map[string]string{
	"project #":        "project_no",
	"project#":         "project_no",
	"project_#":        "project_no",
	"project no":       "project_no",
	"project_no.":      "project_no",
	"project name":     "project_name",
	"client":           "client",
	"amount":           "amount",
	"status (%)":       "status",
	"status(%)":        "status",
	"status_%":         "status",
	"status":           "status",
	"po date":          "po_date",
	"po no.":           "po_no",
	"po no":            "po_no",
	"po_no.":           "po_no",
	"date completed":   "date_completed",
	"pic":              "pic",
	"address":          "address",
	"ds":               "bs",
	"bs":               "bs",
	"business segment": "bs",
	"year":             "year",
}

var (
	headerSymbols    = regexp.MustCompile(`[\s()#%.]+`)
	repeatedUnderbar = regexp.MustCompile(`_+`)
)

var missingProjectNos = map[string]bool{"#N/A": true, "N/A": true, "NULL": true, "NONE": true}

// RowSkipped reports a row that cannot be imported
type RowSkipped struct {
	Message string
}

func (e *RowSkipped) Error() string {
	return e.Message
}

// NormalizedRow is a project ready to be upserted plus any non-fatal warning
type NormalizedRow struct {
	Project *entities.Project
	Warning string
}

// ProjectRowNormalizer turns loosely formatted spreadsheet or JSON rows into
// projects
type ProjectRowNormalizer struct{}

// NewProjectRowNormalizer creates a new normalizer
func NewProjectRowNormalizer() *ProjectRowNormalizer {
	return &ProjectRowNormalizer{}
}

// NormalizeHeader maps a raw column header to a field key
func NormalizeHeader(header string) string {
	key := strings.ToLower(strings.TrimSpace(header))
	if key == "" {
		return ""
	}
	if mapped, ok := headerAliases[key]; ok {
		return mapped
	}
	key = headerSymbols.ReplaceAllString(key, "_")
	key = repeatedUnderbar.ReplaceAllString(key, "_")
	return strings.Trim(key, "_")
}

// Normalize converts one raw row. A *RowSkipped error means the row must
// not be written.
func (n *ProjectRowNormalizer) Normalize(raw map[string]any, rowNum int) (*NormalizedRow, error) {
	fields := make(map[string]any, len(raw))
	for k, v := range raw {
		if key := NormalizeHeader(k); key != "" {
			fields[key] = v
		}
	}

	name := text(fields["project_name"])
	if name == "" {
		return nil, &RowSkipped{Message: fmt.Sprintf("Row %d: Missing or empty 'Project Name'.", rowNum)}
	}

	p := &entities.Project{
		Name:      name,
		ProjectNo: normalizeProjectNo(fields["project_no"]),
		DS:        text(fields["bs"]),
		Client:    text(fields["client"]),
		PONo:      text(fields["po_no"]),
		PIC:       text(fields["pic"]),
		Address:   text(fields["address"]),
	}
	if year, ok := entities.ParseLooseInt(fields["year"]); ok {
		p.Year = &year
	}

	var warnings []string

	rawStatus := fields["status"]
	status, ok := entities.ParseLooseFloat(rawStatus)
	if !ok {
		if !entities.IsBlank(rawStatus) {
			warnings = append(warnings, fmt.Sprintf(
				"Row %d ('%s'): Invalid 'Status' value '%v'. Using DB default 0.0.", rowNum, name, rawStatus))
		}
		status = 0
	}

	if amount, ok := entities.ParseLooseDecimal(fields["amount"]); ok {
		p.Amount = entities.NewAmount(amount)
	}
	p.SetStatus(status)

	var dateProblems []string
	if d, problem := parseOptionalDate(fields["po_date"], "PO Date"); problem != "" {
		dateProblems = append(dateProblems, problem)
	} else {
		p.PODate = d
	}
	if d, problem := parseOptionalDate(fields["date_completed"], "Date Completed"); problem != "" {
		dateProblems = append(dateProblems, problem)
	} else {
		p.DateCompleted = d
	}
	if len(dateProblems) > 0 {
		msg := strings.Join(dateProblems, " ")
		if len(warnings) == 0 {
			msg = fmt.Sprintf("Row %d ('%s'): %s", rowNum, name, msg)
		}
		warnings = append(warnings, msg)
	}

	return &NormalizedRow{Project: p, Warning: strings.Join(warnings, " ")}, nil
}

func parseOptionalDate(v any, label string) (entities.Date, string) {
	if entities.IsBlank(v) {
		return entities.Date{}, ""
	}
	s := fmt.Sprint(v)
	d, ok := entities.ParseFlexibleDate(s)
	if !ok {
		return entities.Date{}, fmt.Sprintf("Invalid %s format '%s'.", label, s)
	}
	return d, ""
}

func normalizeProjectNo(v any) string {
	var s string
	switch n := v.(type) {
	case nil:
		return ""
	case float64:
		s = strconv.FormatInt(int64(math.Trunc(n)), 10)
	case int:
		s = strconv.Itoa(n)
	case int64:
		s = strconv.FormatInt(n, 10)
	default:
		s = strings.TrimSpace(fmt.Sprint(v))
	}
	if missingProjectNos[strings.ToUpper(s)] {
		return ""
	}
	return s
}

func text(v any) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
