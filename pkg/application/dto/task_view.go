package dto

import (
	"github.com/vsinha/cmrp/pkg/domain/entities"
)

// TaskView is a project task as returned by the API
type TaskView struct {
	TaskID        entities.TaskID    `json:"task_id"`
	ProjectID     entities.ProjectID `json:"project_id"`
	TaskName      string             `json:"task_name"`
	StartDate     entities.Date      `json:"start_date"`
	EndDate       entities.Date      `json:"end_date"`
	PlannedWeight float64            `json:"planned_weight"`
	ActualStart   entities.Date      `json:"actual_start"`
	ActualEnd     entities.Date      `json:"actual_end"`
	AssignedTo    *string            `json:"assigned_to"`
	ParentTaskID  *entities.TaskID   `json:"parent_task_id"`
}

// NewTaskView converts a task for the API
func NewTaskView(t *entities.Task) TaskView {
	v := TaskView{
		TaskID:        t.ID,
		ProjectID:     t.ProjectID,
		TaskName:      t.Name,
		StartDate:     t.StartDate,
		EndDate:       t.EndDate,
		PlannedWeight: t.PlannedWeight,
		ActualStart:   t.ActualStart,
		ActualEnd:     t.ActualEnd,
		ParentTaskID:  t.ParentID,
	}
	if t.AssignedTo != "" {
		assignee := t.AssignedTo
		v.AssignedTo = &assignee
	}
	return v
}

// GanttBar is one row of a project schedule chart
type GanttBar struct {
	TaskID      entities.TaskID
	Name        string
	Depth       int
	Start       entities.Date
	End         entities.Date
	ActualStart entities.Date
	ActualEnd   entities.Date
	Weight      float64
	AssignedTo  string
}

// GanttChart is the schedule of a single project
type GanttChart struct {
	ProjectID   entities.ProjectID
	ProjectNo   string
	ProjectName string
	Start       entities.Date
	End         entities.Date
	Bars        []GanttBar
}
