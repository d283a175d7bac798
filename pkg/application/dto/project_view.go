package dto

import (
	"time"

	"github.com/vsinha/cmrp/pkg/domain/entities"
)

// TimestampLayout renders stored timestamps the way the dashboard expects
const TimestampLayout = "2006-01-02 15:04:05"

// FormatTimestamp renders t in UTC using TimestampLayout
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func optionalTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatTimestamp(*t)
	return &s
}

// UpdateView is a project update as returned by the API
type UpdateView struct {
	ProjectID           entities.ProjectID `json:"project_id"`
	UpdateID            entities.UpdateID  `json:"update_id"`
	UpdateText          string             `json:"update_text"`
	IsCompleted         bool               `json:"is_completed"`
	Timestamp           string             `json:"timestamp"`
	CompletionTimestamp *string            `json:"completion_timestamp"`
	DueDate             entities.Date      `json:"due_date"`
}

// NewUpdateView converts an update for the API
func NewUpdateView(u *entities.ProjectUpdate) UpdateView {
	return UpdateView{
		ProjectID:           u.ProjectID,
		UpdateID:            u.ID,
		UpdateText:          u.Text,
		IsCompleted:         u.Completed,
		Timestamp:           FormatTimestamp(u.CreatedAt),
		CompletionTimestamp: optionalTimestamp(u.CompletedAt),
		DueDate:             u.DueDate,
	}
}

// UpdateLogView is one line of the global updates log
type UpdateLogView struct {
	UpdateID            entities.UpdateID  `json:"update_id"`
	ProjectID           entities.ProjectID `json:"project_id"`
	UpdateText          string             `json:"update_text"`
	IsCompleted         bool               `json:"is_completed"`
	CreationTimestamp   string             `json:"creation_timestamp"`
	CompletionTimestamp *string            `json:"completion_timestamp"`
	DueDate             entities.Date      `json:"due_date"`
	ProjectNo           string             `json:"project_no"`
	ProjectName         string             `json:"project_name"`
}

// NewUpdateLogView converts a log entry for the API
func NewUpdateLogView(e *entities.UpdateLogEntry) UpdateLogView {
	return UpdateLogView{
		UpdateID:            e.ID,
		ProjectID:           e.ProjectID,
		UpdateText:          e.Text,
		IsCompleted:         e.Completed,
		CreationTimestamp:   FormatTimestamp(e.CreatedAt),
		CompletionTimestamp: optionalTimestamp(e.CompletedAt),
		DueDate:             e.DueDate,
		ProjectNo:           e.ProjectNo,
		ProjectName:         e.ProjectName,
	}
}

// ToggleUpdateResult reports the new completion state of an update
type ToggleUpdateResult struct {
	Message             string            `json:"message"`
	UpdateID            entities.UpdateID `json:"update_id"`
	IsCompleted         bool              `json:"is_completed"`
	CompletionTimestamp *string           `json:"completion_timestamp"`
}

// ProjectView is a project row enriched with its updates and derived values
type ProjectView struct {
	ID                entities.ProjectID `json:"id"`
	DS                string             `json:"ds"`
	Year              *int               `json:"year"`
	ProjectNo         string             `json:"project_no"`
	Client            string             `json:"client"`
	ProjectName       string             `json:"project_name"`
	Amount            entities.Amount    `json:"amount"`
	Status            float64            `json:"status"`
	RemainingAmount   entities.Amount    `json:"remaining_amount"`
	PODate            entities.Date      `json:"po_date"`
	PONo              string             `json:"po_no"`
	DateCompleted     entities.Date      `json:"date_completed"`
	PIC               string             `json:"pic"`
	Address           string             `json:"address"`
	Updates           []UpdateView       `json:"updates"`
	LatestUpdate      string             `json:"latest_update"`
	HasForecasts      bool               `json:"has_forecasts"`
	TotalRunningWeeks *int               `json:"total_running_weeks"`
}

// NewProjectView builds the view. updates must be ordered newest first.
func NewProjectView(p *entities.Project, updates []*entities.ProjectUpdate, hasForecasts bool, today entities.Date) ProjectView {
	v := ProjectView{
		ID:                p.ID,
		DS:                p.DS,
		Year:              p.Year,
		ProjectNo:         p.ProjectNo,
		Client:            p.Client,
		ProjectName:       p.Name,
		Amount:            p.Amount,
		Status:            p.Status,
		RemainingAmount:   p.RemainingAmount,
		PODate:            p.PODate,
		PONo:              p.PONo,
		DateCompleted:     p.DateCompleted,
		PIC:               p.PIC,
		Address:           p.Address,
		Updates:           make([]UpdateView, 0, len(updates)),
		HasForecasts:      hasForecasts,
		TotalRunningWeeks: p.RunningWeeks(today),
	}
	for _, u := range updates {
		v.Updates = append(v.Updates, NewUpdateView(u))
	}
	if len(updates) > 0 {
		v.LatestUpdate = updates[0].Text
	}
	return v
}

// ProjectUpdateResult is the outcome of a partial project edit
type ProjectUpdateResult struct {
	Message        string       `json:"message"`
	UpdatedFields  []string     `json:"updatedFields,omitempty"`
	UpdatedProject *ProjectView `json:"updatedProject,omitempty"`
}

// ImportResult summarises a CSV or JSON bulk upsert
type ImportResult struct {
	Message       string   `json:"message"`
	InsertedCount int      `json:"inserted_count"`
	UpdatedCount  int      `json:"updated_count"`
	SkippedCount  int      `json:"skipped_count"`
	Errors        []string `json:"errors"`
}

// HasWarnings reports whether any row produced a message
func (r *ImportResult) HasWarnings() bool {
	return len(r.Errors) > 0
}
