package services

import (
	"context"
	"fmt"
	"math"

	"github.com/vsinha/cmrp/pkg/application/dto"
	"github.com/vsinha/cmrp/pkg/domain/entities"
	"github.com/vsinha/cmrp/pkg/infrastructure/events"
)

var taskDateFields = []string{"start_date", "end_date", "actual_start", "actual_end"}

// TaskService manages the work breakdown of a project
type TaskService struct {
	deps Deps
}

// NewTaskService creates a task service
func NewTaskService(deps Deps) *TaskService {
	return &TaskService{deps: deps}
}

// List returns a project's tasks, root tasks first
func (s *TaskService) List(ctx context.Context, projectID entities.ProjectID) ([]dto.TaskView, error) {
	if _, err := s.deps.Repos.Projects.Get(ctx, projectID); err != nil {
		return nil, orNotFound(err, "Project not found")
	}
	tasks, err := s.deps.Repos.Tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	views := make([]dto.TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, dto.NewTaskView(t))
	}
	return views, nil
}

// Add creates a task. Dates must be strict YYYY-MM-DD.
func (s *TaskService) Add(ctx context.Context, projectID entities.ProjectID, input map[string]any) (*dto.TaskView, error) {
	task, err := entities.NewTask(projectID, text(input["task_name"]))
	if err != nil {
		return nil, invalid("Missing or empty 'task_name'")
	}

	err = s.deps.Repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.deps.Repos.Projects.Get(ctx, projectID); err != nil {
			return orNotFound(err, "Project not found")
		}

		if w, ok := entities.ParseLooseFloat(input["planned_weight"]); ok {
			task.PlannedWeight = w
		}
		task.AssignedTo = text(input["assigned_to"])
		for _, field := range taskDateFields {
			value := input[field]
			if entities.IsBlank(value) {
				continue
			}
			d, ok := strictDate(value)
			if !ok {
				return invalid("Invalid %s format: '%v'. Use YYYY-MM-DD.", field, value)
			}
			setTaskDate(task, field, d)
		}

		if raw, ok := input["parent_task_id"]; ok && raw != nil {
			parentID, ok := entities.ParseLooseInt(raw)
			if !ok {
				return invalid("Invalid 'parent_task_id': '%v'.", raw)
			}
			if err := s.checkParent(ctx, entities.TaskID(parentID), projectID); err != nil {
				return err
			}
			pid := entities.TaskID(parentID)
			task.ParentID = &pid
		}
		return s.deps.Repos.Tasks.Create(ctx, task)
	})
	if err != nil {
		return nil, err
	}

	s.changed(task, "created")
	view := dto.NewTaskView(task)
	return &view, nil
}

// TaskUpdateResult is the outcome of a partial task edit. Task is nil when
// nothing was changed.
type TaskUpdateResult struct {
	Message string
	Task    *dto.TaskView
}

// Update applies a partial edit to a task
func (s *TaskService) Update(ctx context.Context, id entities.TaskID, input map[string]any) (*TaskUpdateResult, error) {
	if len(input) == 0 {
		return nil, invalid("Missing JSON data")
	}

	var (
		task    *entities.Task
		changed bool
	)
	err := s.deps.Repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		task, err = s.deps.Repos.Tasks.Get(ctx, id)
		if err != nil {
			return orNotFound(err, "Task not found")
		}

		var problems []string
		fail := func(format string, args ...any) {
			problems = append(problems, fmt.Sprintf(format, args...))
		}

		if v, ok := input["task_name"]; ok {
			if name := text(v); name == "" {
				fail("Task name cannot be empty.")
			} else {
				task.Name = name
				changed = true
			}
		}
		for _, field := range taskDateFields[:2] {
			if s.applyTaskDate(task, input, field, fail) {
				changed = true
			}
		}
		if v, ok := input["planned_weight"]; ok {
			if w, ok := entities.ParseLooseFloat(v); !ok {
				fail("Invalid planned_weight: '%v'.", v)
			} else {
				task.PlannedWeight = math.Max(0, w)
				changed = true
			}
		}
		for _, field := range taskDateFields[2:] {
			if s.applyTaskDate(task, input, field, fail) {
				changed = true
			}
		}
		if v, ok := input["assigned_to"]; ok {
			task.AssignedTo = text(v)
			changed = true
		}
		if v, ok := input["parent_task_id"]; ok {
			switch parentID, valid := entities.ParseLooseInt(v); {
			case entities.IsBlank(v):
				task.ParentID = nil
				changed = true
			case !valid:
				fail("Invalid parent_task_id: '%v'.", v)
			case entities.TaskID(parentID) == id:
				fail("Task cannot be its own parent.")
			default:
				if err := s.checkParent(ctx, entities.TaskID(parentID), task.ProjectID); err != nil {
					fail("%s", err.Error())
					break
				}
				pid := entities.TaskID(parentID)
				task.ParentID = &pid
				changed = true
			}
		}

		if len(problems) > 0 {
			return &ValidationError{Message: "Validation failed.", Details: problems}
		}
		if !changed {
			return nil
		}
		return s.deps.Repos.Tasks.Update(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return &TaskUpdateResult{Message: "No valid fields provided for update."}, nil
	}

	s.changed(task, "updated")
	view := dto.NewTaskView(task)
	return &TaskUpdateResult{Message: "Task updated successfully.", Task: &view}, nil
}

func (s *TaskService) applyTaskDate(task *entities.Task, input map[string]any, field string, fail func(string, ...any)) bool {
	v, ok := input[field]
	if !ok {
		return false
	}
	if entities.IsBlank(v) {
		setTaskDate(task, field, entities.Date{})
		return true
	}
	d, ok := strictDate(v)
	if !ok {
		fail("Invalid date format for '%s': '%v'. Use YYYY-MM-DD or empty.", field, v)
		return false
	}
	setTaskDate(task, field, d)
	return true
}

// Delete removes a task; its children become root tasks
func (s *TaskService) Delete(ctx context.Context, id entities.TaskID) error {
	task, err := s.deps.Repos.Tasks.Get(ctx, id)
	if err != nil {
		return orNotFound(err, "Task not found")
	}
	if err := s.deps.Repos.Tasks.Delete(ctx, id); err != nil {
		return orNotFound(err, "Task not found")
	}
	s.changed(task, "deleted")
	return nil
}

func (s *TaskService) checkParent(ctx context.Context, parentID entities.TaskID, projectID entities.ProjectID) error {
	parent, err := s.deps.Repos.Tasks.Get(ctx, parentID)
	if err != nil || parent.ProjectID != projectID {
		return invalid("Parent task ID %d not found in project %d.", parentID, projectID)
	}
	return nil
}

func (s *TaskService) changed(task *entities.Task, action string) {
	s.deps.publish(events.TaskChangedEvent, fmt.Sprintf("task-%d", task.ID), events.TaskChanged{
		TaskID:    int64(task.ID),
		ProjectID: int64(task.ProjectID),
		Action:    action,
	})
}

// Gantt lays out a project's tasks for the schedule chart. Children follow
// their parent and are indented one level.
func (s *TaskService) Gantt(ctx context.Context, projectID entities.ProjectID) (*dto.GanttChart, error) {
	project, err := s.deps.Repos.Projects.Get(ctx, projectID)
	if err != nil {
		return nil, orNotFound(err, "Project not found")
	}
	tasks, err := s.deps.Repos.Tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	chart := &dto.GanttChart{
		ProjectID:   project.ID,
		ProjectNo:   project.ProjectNo,
		ProjectName: project.Name,
	}

	children := make(map[entities.TaskID][]*entities.Task)
	known := make(map[entities.TaskID]bool, len(tasks))
	for _, t := range tasks {
		known[t.ID] = true
	}
	var roots []*entities.Task
	for _, t := range tasks {
		if t.IsRoot() || !known[*t.ParentID] {
			roots = append(roots, t)
			continue
		}
		children[*t.ParentID] = append(children[*t.ParentID], t)
	}

	visited := make(map[entities.TaskID]bool, len(tasks))
	var walk func(t *entities.Task, depth int)
	walk = func(t *entities.Task, depth int) {
		if visited[t.ID] {
			return
		}
		visited[t.ID] = true
		chart.Bars = append(chart.Bars, dto.GanttBar{
			TaskID:      t.ID,
			Name:        t.Name,
			Depth:       depth,
			Start:       t.StartDate,
			End:         t.EndDate,
			ActualStart: t.ActualStart,
			ActualEnd:   t.ActualEnd,
			Weight:      t.PlannedWeight,
			AssignedTo:  t.AssignedTo,
		})
		for _, d := range []entities.Date{t.StartDate, t.EndDate, t.ActualStart, t.ActualEnd} {
			widenRange(chart, d)
		}
		for _, c := range children[t.ID] {
			walk(c, depth+1)
		}
	}
	for _, r := range roots {
		walk(r, 0)
	}
	// parent cycles leave tasks unreachable from any root
	for _, t := range tasks {
		walk(t, 0)
	}

	if chart.Start.IsZero() {
		chart.Start = s.deps.today()
		chart.End = chart.Start
	}
	return chart, nil
}

func widenRange(chart *dto.GanttChart, d entities.Date) {
	if d.IsZero() {
		return
	}
	if chart.Start.IsZero() || d.Before(chart.Start) {
		chart.Start = d
	}
	if chart.End.IsZero() || d.After(chart.End) {
		chart.End = d
	}
}

func strictDate(v any) (entities.Date, bool) {
	s := text(v)
	if !entities.IsISODate(s) {
		return entities.Date{}, false
	}
	return entities.ParseFlexibleDate(s)
}

func setTaskDate(t *entities.Task, field string, d entities.Date) {
	switch field {
	case "start_date":
		t.StartDate = d
	case "end_date":
		t.EndDate = d
	case "actual_start":
		t.ActualStart = d
	case "actual_end":
		t.ActualEnd = d
	}
}
