package services

import (
	"context"
	"fmt"

	"github.com/vsinha/cmrp/pkg/application/dto"
	"github.com/vsinha/cmrp/pkg/domain/entities"
	"github.com/vsinha/cmrp/pkg/infrastructure/events"
)

// UpdateService manages the dated notes attached to projects
type UpdateService struct {
	deps Deps
}

// NewUpdateService creates an update service
func NewUpdateService(deps Deps) *UpdateService {
	return &UpdateService{deps: deps}
}

// List returns a project's updates, newest first
func (s *UpdateService) List(ctx context.Context, projectID entities.ProjectID) ([]dto.UpdateView, error) {
	if _, err := s.deps.Repos.Projects.Get(ctx, projectID); err != nil {
		return nil, orNotFound(err, "Project not found.")
	}
	updates, err := s.deps.Repos.Updates.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list updates: %w", err)
	}
	views := make([]dto.UpdateView, 0, len(updates))
	for _, u := range updates {
		views = append(views, dto.NewUpdateView(u))
	}
	return views, nil
}

// Add appends an update. dueDate may be empty.
func (s *UpdateService) Add(ctx context.Context, projectID entities.ProjectID, text string, dueDate any) (*dto.UpdateView, error) {
	var due entities.Date
	if !entities.IsBlank(dueDate) {
		raw := fmt.Sprint(dueDate)
		d, ok := entities.ParseFlexibleDate(raw)
		if !ok {
			return nil, invalid("Invalid 'due_date' format: '%s'. Use YYYY-MM-DD or MM/DD/YYYY or empty.", raw)
		}
		due = d
	}
	update, err := entities.NewProjectUpdate(projectID, text, due)
	if err != nil {
		return nil, invalid("Missing or empty 'update_text'.")
	}

	err = s.deps.Repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.deps.Repos.Projects.Get(ctx, projectID); err != nil {
			return orNotFound(err, "Project not found.")
		}
		count, err := s.deps.Repos.Updates.Count(ctx, projectID)
		if err != nil {
			return fmt.Errorf("failed to count updates: %w", err)
		}
		if limit := s.deps.Limits.MaxUpdatesPerProject; count >= limit {
			return &LimitError{Message: fmt.Sprintf("Maximum updates limit (%d) reached.", limit)}
		}
		update.CreatedAt = s.deps.now()
		return s.deps.Repos.Updates.Create(ctx, update)
	})
	if err != nil {
		return nil, err
	}

	s.deps.publish(events.UpdateAddedEvent, projectStream(projectID), events.UpdateChanged{
		UpdateID:  int64(update.ID),
		ProjectID: int64(projectID),
	})
	view := dto.NewUpdateView(update)
	return &view, nil
}

// Toggle flips the completion flag of an update
func (s *UpdateService) Toggle(ctx context.Context, id entities.UpdateID) (*dto.ToggleUpdateResult, error) {
	var update *entities.ProjectUpdate
	err := s.deps.Repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		update, err = s.deps.Repos.Updates.Get(ctx, id)
		if err != nil {
			return orNotFound(err, "Update not found.")
		}
		now := s.deps.now()
		update.Toggle(now)
		return s.deps.Repos.Updates.SetCompleted(ctx, id, update.Completed, now)
	})
	if err != nil {
		return nil, err
	}

	state := "Incomplete"
	if update.Completed {
		state = "Complete"
	}
	s.deps.publish(events.UpdateToggledEvent, projectStream(update.ProjectID), events.UpdateChanged{
		UpdateID:  int64(id),
		ProjectID: int64(update.ProjectID),
		Completed: update.Completed,
	})
	view := dto.NewUpdateView(update)
	return &dto.ToggleUpdateResult{
		Message:             fmt.Sprintf("Update marked as %s.", state),
		UpdateID:            id,
		IsCompleted:         update.Completed,
		CompletionTimestamp: view.CompletionTimestamp,
	}, nil
}

// Delete removes an update
func (s *UpdateService) Delete(ctx context.Context, id entities.UpdateID) error {
	update, err := s.deps.Repos.Updates.Get(ctx, id)
	if err != nil {
		return orNotFound(err, "Update not found.")
	}
	if err := s.deps.Repos.Updates.Delete(ctx, id); err != nil {
		return orNotFound(err, "Update not found.")
	}
	s.deps.publish(events.UpdateDeletedEvent, projectStream(update.ProjectID), events.UpdateChanged{
		UpdateID:  int64(id),
		ProjectID: int64(update.ProjectID),
	})
	return nil
}

// Log returns every update joined with its project, newest first
func (s *UpdateService) Log(ctx context.Context) ([]dto.UpdateLogView, error) {
	entries, err := s.deps.Repos.Updates.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list updates log: %w", err)
	}
	views := make([]dto.UpdateLogView, 0, len(entries))
	for _, e := range entries {
		views = append(views, dto.NewUpdateLogView(e))
	}
	return views, nil
}
