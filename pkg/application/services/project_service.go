package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/vsinha/cmrp/pkg/application/dto"
	"github.com/vsinha/cmrp/pkg/domain/entities"
	"github.com/vsinha/cmrp/pkg/domain/repositories"
	"github.com/vsinha/cmrp/pkg/infrastructure/events"
	"github.com/vsinha/cmrp/pkg/infrastructure/repositories/csv"
)

// ProjectService serves the project table, partial edits and exports
type ProjectService struct {
	deps Deps
}

// NewProjectService creates a project service
func NewProjectService(deps Deps) *ProjectService {
	return &ProjectService{deps: deps}
}

// ListActive returns open projects with their updates
func (s *ProjectService) ListActive(ctx context.Context) ([]dto.ProjectView, error) {
	projects, err := s.deps.Repos.Projects.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active projects: %w", err)
	}
	return s.views(ctx, projects)
}

// ListCompleted returns finished projects with their updates
func (s *ProjectService) ListCompleted(ctx context.Context) ([]dto.ProjectView, error) {
	projects, err := s.deps.Repos.Projects.ListCompleted(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed projects: %w", err)
	}
	return s.views(ctx, projects)
}

func (s *ProjectService) views(ctx context.Context, projects []*entities.Project) ([]dto.ProjectView, error) {
	ids := make([]entities.ProjectID, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}
	updates, err := s.deps.Repos.Updates.ListByProjects(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load project updates: %w", err)
	}
	forecasted, err := s.deps.Repos.Forecasts.ProjectIDsWithForecasts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load forecast flags: %w", err)
	}

	today := s.deps.today()
	views := make([]dto.ProjectView, 0, len(projects))
	for _, p := range projects {
		views = append(views, dto.NewProjectView(p, updates[p.ID], forecasted[p.ID], today))
	}
	return views, nil
}

// Details returns the identification fields of a project
func (s *ProjectService) Details(ctx context.Context, id entities.ProjectID) (*entities.ProjectDetails, error) {
	p, err := s.deps.Repos.Projects.Get(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Project not found")
	}
	return &entities.ProjectDetails{ID: p.ID, ProjectNo: p.ProjectNo, ProjectName: p.Name, PONo: p.PONo}, nil
}

// Delete removes a project together with its updates, forecasts and tasks
func (s *ProjectService) Delete(ctx context.Context, id entities.ProjectID) error {
	if err := s.deps.Repos.Projects.Delete(ctx, id); err != nil {
		return orNotFound(err, "Project not found.")
	}
	s.deps.publish(events.ProjectDeletedEvent, projectStream(id), events.ProjectDeleted{ProjectID: int64(id)})
	return nil
}

// editableFields lists the fields UpdateFields accepts, in processing order
var editableFields = []string{
	"client", "status", "po_date", "po_no", "date_completed", "pic",
	"address", "amount", "project_name", "year", "ds",
}

// UpdateFields applies a partial edit. Keys that are not editable are
// ignored. Every present key is validated before anything is written.
func (s *ProjectService) UpdateFields(ctx context.Context, id entities.ProjectID, input map[string]any) (*dto.ProjectUpdateResult, error) {
	if len(input) == 0 {
		return nil, invalid("Request body must contain JSON data.")
	}

	var (
		edits      []func(*entities.Project)
		updated    []string
		problems   []string
		moneyTouch bool
		setSegment func(*entities.Project)
	)
	for _, field := range editableFields {
		value, ok := input[field]
		if !ok {
			continue
		}
		edit, problem := projectFieldEdit(field, value)
		if problem != "" {
			problems = append(problems, problem)
			continue
		}
		if field == "ds" {
			setSegment = edit
			continue
		}
		edits = append(edits, edit)
		updated = append(updated, field)
		if field == "amount" || field == "status" {
			moneyTouch = true
		}
	}
	if setSegment != nil {
		edits = append(edits, setSegment)
		updated = append(updated, "BS")
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Message: "Validation failed", Details: problems}
	}
	if len(edits) == 0 {
		return &dto.ProjectUpdateResult{Message: "No valid fields provided for update."}, nil
	}

	p, err := s.deps.Repos.Projects.Get(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Project not found.")
	}
	for _, edit := range edits {
		edit(p)
	}
	if moneyTouch {
		p.Recalculate()
		updated = append(updated, "remaining_amount")
	}

	if err := s.deps.Repos.Projects.Update(ctx, p); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return nil, &ConflictError{Message: fmt.Sprintf("Update failed. Project Number '%s' already exists.", p.ProjectNo)}
		}
		return nil, orNotFound(err, "Project not found.")
	}

	views, err := s.views(ctx, []*entities.Project{p})
	if err != nil {
		return nil, err
	}
	s.deps.publish(events.ProjectUpdatedEvent, projectStream(id), events.ProjectUpdated{
		ProjectID:     int64(id),
		UpdatedFields: updated,
	})
	return &dto.ProjectUpdateResult{
		Message:        "Project updated successfully.",
		UpdatedFields:  updated,
		UpdatedProject: &views[0],
	}, nil
}

// projectFieldEdit validates one incoming value and returns the mutation
// it implies, or a problem description
func projectFieldEdit(field string, value any) (func(*entities.Project), string) {
	switch field {
	case "status":
		if entities.IsBlank(value) {
			return func(p *entities.Project) { p.Status = 0 }, ""
		}
		status, ok := entities.ParseLooseFloat(value)
		if !ok || status < 0 || status > 100 {
			return nil, fmt.Sprintf("Invalid 'status': '%v'. Must be 0-100 or empty.", value)
		}
		return func(p *entities.Project) { p.Status = status }, ""

	case "amount":
		if entities.IsBlank(value) {
			return func(p *entities.Project) { p.Amount = entities.NoAmount() }, ""
		}
		amount, ok := entities.ParseLooseDecimal(value)
		if !ok {
			return nil, fmt.Sprintf("Invalid 'amount': '%v'. Must be number or empty.", value)
		}
		return func(p *entities.Project) { p.Amount = entities.NewAmount(amount) }, ""

	case "year":
		if entities.IsBlank(value) {
			return func(p *entities.Project) { p.Year = nil }, ""
		}
		year, ok := entities.ParseLooseInt(value)
		if !ok {
			return nil, fmt.Sprintf("Invalid value for 'year': '%v'. Expected integer or empty.", value)
		}
		return func(p *entities.Project) { p.Year = &year }, ""

	case "po_date", "date_completed":
		var d entities.Date
		if !entities.IsBlank(value) {
			parsed, ok := entities.ParseFlexibleDate(fmt.Sprint(value))
			if !ok {
				return nil, fmt.Sprintf("Invalid date format for '%s': '%v'. Use YYYY-MM-DD or MM/DD/YYYY or empty.", field, value)
			}
			d = parsed
		}
		if field == "po_date" {
			return func(p *entities.Project) { p.PODate = d }, ""
		}
		return func(p *entities.Project) { p.DateCompleted = d }, ""

	case "project_name":
		name := text(value)
		if name == "" {
			return nil, "Project Name cannot be empty."
		}
		return func(p *entities.Project) { p.Name = name }, ""
	}

	s := text(value)
	switch field {
	case "client":
		return func(p *entities.Project) { p.Client = s }, ""
	case "po_no":
		return func(p *entities.Project) { p.PONo = s }, ""
	case "pic":
		return func(p *entities.Project) { p.PIC = s }, ""
	case "address":
		return func(p *entities.Project) { p.Address = s }, ""
	case "ds":
		return func(p *entities.Project) { p.DS = s }, ""
	}
	return nil, fmt.Sprintf("Internal error: Unknown validation type for field '%s'.", field)
}

// ExportCSV writes projects as CSV. completed selects finished projects
// instead of open ones.
func (s *ProjectService) ExportCSV(ctx context.Context, w io.Writer, completed bool) error {
	var (
		projects []*entities.Project
		err      error
	)
	if completed {
		projects, err = s.deps.Repos.Projects.ListCompleted(ctx)
	} else {
		projects, err = s.deps.Repos.Projects.ListActive(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}
	views, err := s.views(ctx, projects)
	if err != nil {
		return err
	}

	records := make([]csv.ProjectRecord, len(projects))
	for i, p := range projects {
		records[i] = csv.ProjectRecord{
			Project:      p,
			RunningWeeks: views[i].TotalRunningWeeks,
			LatestUpdate: views[i].LatestUpdate,
		}
	}
	if err := csv.WriteProjects(w, records); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	s.deps.logger().Debug("projects exported", zap.Int("count", len(records)), zap.Bool("completed", completed))
	return nil
}

func projectStream(id entities.ProjectID) string {
	return fmt.Sprintf("project-%d", id)
}

func text(v any) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
