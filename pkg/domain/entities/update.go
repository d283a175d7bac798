package entities

import (
	"fmt"
	"strings"
	"time"
)

// UpdateID identifies a project update
type UpdateID int64

// ProjectUpdate is a dated note against a project that can be ticked off
type ProjectUpdate struct {
	ID          UpdateID
	ProjectID   ProjectID
	Text        string
	Completed   bool
	CreatedAt   time.Time
	CompletedAt *time.Time
	DueDate     Date
}

// NewProjectUpdate creates a validated update
func NewProjectUpdate(projectID ProjectID, text string, due Date) (*ProjectUpdate, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("update text cannot be empty")
	}
	return &ProjectUpdate{ProjectID: projectID, Text: text, DueDate: due}, nil
}

// Toggle flips completion and stamps or clears the completion time
func (u *ProjectUpdate) Toggle(now time.Time) {
	u.Completed = !u.Completed
	if u.Completed {
		ts := now
		u.CompletedAt = &ts
	} else {
		u.CompletedAt = nil
	}
}

// UpdateLogEntry is an update joined with its project's identification
type UpdateLogEntry struct {
	ProjectUpdate
	ProjectNo   string
	ProjectName string
}
