package entities

import (
	"fmt"
	"strings"
)

// TaskID identifies a project task
type TaskID int64

// Task is a schedulable unit of work within a project
type Task struct {
	ID            TaskID
	ProjectID     ProjectID
	Name          string
	StartDate     Date
	EndDate       Date
	PlannedWeight float64
	ActualStart   Date
	ActualEnd     Date
	AssignedTo    string
	ParentID      *TaskID
}

// NewTask creates a validated task
func NewTask(projectID ProjectID, name string) (*Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("task name cannot be empty")
	}
	return &Task{ProjectID: projectID, Name: name}, nil
}

// IsRoot reports whether the task has no parent
func (t *Task) IsRoot() bool {
	return t.ParentID == nil
}
