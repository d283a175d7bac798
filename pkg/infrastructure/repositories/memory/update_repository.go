package memory

import (
	"context"
	"sort"
	"time"

	"github.com/vsinha/cmrp/pkg/domain/entities"
	"github.com/vsinha/cmrp/pkg/domain/repositories"
)

// UpdateRepository provides in-memory storage for project updates
type UpdateRepository struct {
	s   *Store
	now func() time.Time
}

// Verify interface compliance
var _ repositories.UpdateRepository = (*UpdateRepository)(nil)

func (r *UpdateRepository) ListByProject(_ context.Context, projectID entities.ProjectID) ([]*entities.ProjectUpdate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.collect(func(u *entities.ProjectUpdate) bool { return u.ProjectID == projectID }), nil
}

func (r *UpdateRepository) ListByProjects(_ context.Context, ids []entities.ProjectID) (map[entities.ProjectID][]*entities.ProjectUpdate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	wanted := make(map[entities.ProjectID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	result := make(map[entities.ProjectID][]*entities.ProjectUpdate, len(ids))
	for _, u := range r.collect(func(u *entities.ProjectUpdate) bool { return wanted[u.ProjectID] }) {
		result[u.ProjectID] = append(result[u.ProjectID], u)
	}
	return result, nil
}

func (r *UpdateRepository) ListAll(_ context.Context) ([]*entities.UpdateLogEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	updates := r.collect(func(*entities.ProjectUpdate) bool { return true })
	entries := make([]*entities.UpdateLogEntry, 0, len(updates))
	for _, u := range updates {
		p, ok := r.s.data.projects[u.ProjectID]
		if !ok {
			continue
		}
		entries = append(entries, &entities.UpdateLogEntry{
			ProjectUpdate: *u,
			ProjectNo:     p.ProjectNo,
			ProjectName:   p.Name,
		})
	}
	return entries, nil
}

func (r *UpdateRepository) Count(_ context.Context, projectID entities.ProjectID) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, u := range r.s.data.updates {
		if u.ProjectID == projectID {
			n++
		}
	}
	return n, nil
}

func (r *UpdateRepository) Create(_ context.Context, u *entities.ProjectUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.projects[u.ProjectID]; !ok {
		return repositories.ErrNotFound
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = r.clock().UTC().Truncate(time.Second)
	}
	u.ID = entities.UpdateID(r.s.allocID())
	r.s.data.updates[u.ID] = *u
	return nil
}

func (r *UpdateRepository) Get(_ context.Context, id entities.UpdateID) (*entities.ProjectUpdate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.data.updates[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (r *UpdateRepository) SetCompleted(_ context.Context, id entities.UpdateID, completed bool, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.data.updates[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.Completed = completed
	u.CompletedAt = nil
	if completed {
		ts := at.UTC().Truncate(time.Second)
		u.CompletedAt = &ts
	}
	r.s.data.updates[id] = u
	return nil
}

func (r *UpdateRepository) Delete(_ context.Context, id entities.UpdateID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.updates[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.s.data.updates, id)
	return nil
}

func (r *UpdateRepository) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

// collect returns matching updates, newest first; callers hold the read lock
func (r *UpdateRepository) collect(keep func(*entities.ProjectUpdate) bool) []*entities.ProjectUpdate {
	updates := make([]*entities.ProjectUpdate, 0)
	for _, u := range r.s.data.updates {
		if keep(&u) {
			updates = append(updates, &u)
		}
	}
	sort.Slice(updates, func(i, j int) bool {
		if !updates[i].CreatedAt.Equal(updates[j].CreatedAt) {
			return updates[i].CreatedAt.After(updates[j].CreatedAt)
		}
		return updates[i].ID > updates[j].ID
	})
	return updates
}
