package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/vsinha/cmrp/pkg/application/dto"
	"github.com/vsinha/cmrp/pkg/domain/entities"
	"github.com/vsinha/cmrp/pkg/infrastructure/events"
)

// percentEpsilon is the smallest status movement worth persisting
const percentEpsilon = 1e-9

var forecastRequiredFields = []string{"project_id", "forecast_input_type", "forecast_input_value", "forecast_date"}

// ForecastService manages planned invoices and their effect on project status
type ForecastService struct {
	deps Deps
}

// NewForecastService creates a forecast service
func NewForecastService(deps Deps) *ForecastService {
	return &ForecastService{deps: deps}
}

// List returns every entry joined with its project
func (s *ForecastService) List(ctx context.Context) ([]dto.ForecastEntryView, error) {
	entries, err := s.deps.Repos.Forecasts.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list forecast entries: %w", err)
	}
	views := make([]dto.ForecastEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, dto.NewForecastEntryView(e))
	}
	return views, nil
}

// Add validates and stores a forecast entry
func (s *ForecastService) Add(ctx context.Context, input map[string]any) (*dto.ForecastEntryView, error) {
	var entry *entities.ForecastEntry
	err := s.deps.Repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		count, err := s.deps.Repos.Forecasts.Count(ctx)
		if err != nil {
			return fmt.Errorf("failed to count forecast entries: %w", err)
		}
		if limit := s.deps.Limits.ForecastLimit; count >= limit {
			return &LimitError{Message: fmt.Sprintf("Maximum forecast limit (%d) reached.", limit)}
		}

		entry, err = parseForecastInput(input)
		if err != nil {
			return err
		}
		if _, err := s.deps.Repos.Projects.Get(ctx, entry.ProjectID); err != nil {
			return orNotFound(err, "Project ID %d not found.", entry.ProjectID)
		}
		return s.deps.Repos.Forecasts.Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	view, err := s.deps.Repos.Forecasts.Get(ctx, entry.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load forecast entry: %w", err)
	}
	s.deps.publish(events.ForecastAddedEvent, forecastStream(entry.ID), events.ForecastChanged{
		EntryID:   int64(entry.ID),
		ProjectID: int64(entry.ProjectID),
	})
	out := dto.NewForecastEntryView(view)
	return &out, nil
}

func parseForecastInput(input map[string]any) (*entities.ForecastEntry, error) {
	var missing []string
	for _, field := range forecastRequiredFields {
		if _, ok := input[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, invalid("Missing required fields: %s", strings.Join(missing, ", "))
	}

	projectID, ok := wholeNumber(input["project_id"])
	if !ok {
		return nil, invalid("Invalid 'project_id'.")
	}
	rawType, _ := input["forecast_input_type"].(string)
	inputType, deductionType, err := entities.ParseInputType(rawType)
	if err != nil {
		return nil, invalid("Invalid 'forecast_input_type'.")
	}
	value, ok := entities.ParseLooseFloat(input["forecast_input_value"])
	if !ok {
		return nil, invalid("Invalid 'forecast_input_value'.")
	}
	deduction := truthy(input["is_deduction"]) || deductionType
	if deduction && value < 0 {
		value = math.Abs(value)
	}
	date, ok := entities.ParseFlexibleDate(text(input["forecast_date"]))
	if !ok {
		return nil, invalid("Invalid 'forecast_date' format: '%v'.", input["forecast_date"])
	}

	return &entities.ForecastEntry{
		ProjectID: entities.ProjectID(projectID),
		Date:      date,
		InputType: inputType,
		Value:     value,
		Deduction: deduction,
	}, nil
}

// Delete removes a forecast entry
func (s *ForecastService) Delete(ctx context.Context, id entities.ForecastID) error {
	entry, err := s.deps.Repos.Forecasts.Get(ctx, id)
	if err != nil {
		return orNotFound(err, "Forecast entry not found.")
	}
	if err := s.deps.Repos.Forecasts.Delete(ctx, id); err != nil {
		return orNotFound(err, "Forecast entry not found.")
	}
	s.deps.publish(events.ForecastDeletedEvent, forecastStream(id), events.ForecastChanged{
		EntryID:   int64(id),
		ProjectID: int64(entry.ProjectID),
	})
	return nil
}

// ToggleCompletion flips an entry's completion flag. Completing a regular
// entry advances the project status by its percentage and reopening it
// takes the percentage back. Deductions never move the status.
func (s *ForecastService) ToggleCompletion(ctx context.Context, id entities.ForecastID) (*dto.ForecastToggleResult, error) {
	var (
		projectID     entities.ProjectID
		completed     bool
		statusChanged bool
		newStatus     float64
	)
	err := s.deps.Repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		entry, err := s.deps.Repos.Forecasts.Get(ctx, id)
		if err != nil {
			return orNotFound(err, "Forecast entry not found.")
		}
		projectID = entry.ProjectID
		completed = !entry.Completed
		if err := s.deps.Repos.Forecasts.SetCompleted(ctx, id, completed); err != nil {
			return fmt.Errorf("failed to update forecast entry: %w", err)
		}

		pct := entry.PercentFor(entry.ProjectAmount)
		if entry.Deduction || math.Abs(pct) <= percentEpsilon {
			return nil
		}
		if !completed {
			pct = -pct
		}
		project, err := s.deps.Repos.Projects.Get(ctx, projectID)
		if err != nil {
			return fmt.Errorf("failed to load project %d: %w", projectID, err)
		}
		candidate := entities.ClampPercent(project.Status + pct)
		if math.Abs(candidate-project.Status) <= percentEpsilon {
			return nil
		}
		project.SetStatus(candidate)
		if err := s.deps.Repos.Projects.Update(ctx, project); err != nil {
			return fmt.Errorf("failed to update project %d: %w", projectID, err)
		}
		statusChanged = true
		newStatus = project.Status
		return nil
	})
	if err != nil {
		return nil, err
	}

	view, err := s.deps.Repos.Forecasts.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load forecast entry: %w", err)
	}

	state := "Incomplete"
	if completed {
		state = "Complete"
	}
	message := fmt.Sprintf("Forecast entry marked %s.", state)
	changed := events.ForecastChanged{EntryID: int64(id), ProjectID: int64(projectID), Completed: completed}
	if statusChanged {
		message += fmt.Sprintf(" Project %d status updated.", projectID)
		changed.ProjectStatus = &newStatus
		s.deps.logger().Debug("project status moved by forecast",
			zap.Int64("project_id", int64(projectID)),
			zap.Float64("status", newStatus))
	}
	s.deps.publish(events.ForecastToggledEvent, forecastStream(id), changed)

	return &dto.ForecastToggleResult{
		Message:       message,
		UpdatedEntry:  dto.NewForecastEntryView(view),
		StatusChanged: statusChanged,
	}, nil
}

func forecastStream(id entities.ForecastID) string {
	return fmt.Sprintf("forecast-%d", id)
}

// wholeNumber accepts JSON numbers without a fractional part
func wholeNumber(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

func truthy(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case string:
		return b != ""
	case float64:
		return b != 0
	case int:
		return b != 0
	}
	return true
}
