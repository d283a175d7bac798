package memory

import (
	"context"
	"sort"

	"github.com/vsinha/cmrp/pkg/domain/entities"
	"github.com/vsinha/cmrp/pkg/domain/repositories"
)

// TaskRepository provides in-memory storage for project tasks
type TaskRepository struct {
	s *Store
}

// Verify interface compliance
var _ repositories.TaskRepository = (*TaskRepository)(nil)

func (r *TaskRepository) ListByProject(_ context.Context, projectID entities.ProjectID) ([]*entities.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	tasks := make([]*entities.Task, 0)
	for _, t := range r.s.data.tasks {
		if t.ProjectID == projectID {
			tasks = append(tasks, &t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.IsRoot() != b.IsRoot() {
			return a.IsRoot()
		}
		if !a.IsRoot() && *a.ParentID != *b.ParentID {
			return *a.ParentID < *b.ParentID
		}
		if !a.StartDate.Time().Equal(b.StartDate.Time()) {
			return a.StartDate.Before(b.StartDate)
		}
		return a.ID < b.ID
	})
	return tasks, nil
}

func (r *TaskRepository) Get(_ context.Context, id entities.TaskID) (*entities.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.data.tasks[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &t, nil
}

func (r *TaskRepository) Create(_ context.Context, t *entities.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.projects[t.ProjectID]; !ok {
		return repositories.ErrNotFound
	}
	t.ID = entities.TaskID(r.s.allocID())
	r.s.data.tasks[t.ID] = *t
	return nil
}

func (r *TaskRepository) Update(_ context.Context, t *entities.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.tasks[t.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.s.data.tasks[t.ID] = *t
	return nil
}

func (r *TaskRepository) Delete(_ context.Context, id entities.TaskID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.tasks[id]; !ok {
		return repositories.ErrNotFound
	}
	for tid, t := range r.s.data.tasks {
		if t.ParentID != nil && *t.ParentID == id {
			t.ParentID = nil
			r.s.data.tasks[tid] = t
		}
	}
	delete(r.s.data.tasks, id)
	return nil
}
