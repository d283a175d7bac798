package memory

import (
	"context"
	"sort"

	"github.com/vsinha/cmrp/pkg/domain/entities"
	"github.com/vsinha/cmrp/pkg/domain/repositories"
)

// ProjectRepository provides in-memory project storage
type ProjectRepository struct {
	s *Store
}

// Verify interface compliance
var _ repositories.ProjectRepository = (*ProjectRepository)(nil)

func (r *ProjectRepository) ListActive(_ context.Context) ([]*entities.Project, error) {
	projects := r.filter(func(p *entities.Project) bool { return p.IsActive() })
	sort.SliceStable(projects, func(i, j int) bool {
		a, b := projects[i].RemainingAmount, projects[j].RemainingAmount
		if a.Valid != b.Valid {
			return a.Valid
		}
		if a.Valid && !a.Decimal.Equal(b.Decimal) {
			return a.Decimal.GreaterThan(b.Decimal)
		}
		return projects[i].ID < projects[j].ID
	})
	return projects, nil
}

func (r *ProjectRepository) ListCompleted(_ context.Context) ([]*entities.Project, error) {
	projects := r.filter(func(p *entities.Project) bool { return !p.IsActive() })
	sort.SliceStable(projects, func(i, j int) bool {
		a, b := projects[i].DateCompleted, projects[j].DateCompleted
		if !a.Time().Equal(b.Time()) {
			return a.After(b)
		}
		return projects[i].ID > projects[j].ID
	})
	return projects, nil
}

func (r *ProjectRepository) ListAll(_ context.Context) ([]*entities.Project, error) {
	return r.filter(func(*entities.Project) bool { return true }), nil
}

func (r *ProjectRepository) ListBySegment(_ context.Context, ds string) ([]*entities.Project, error) {
	return r.filter(func(p *entities.Project) bool { return ds == "" || p.DS == ds }), nil
}

func (r *ProjectRepository) Get(_ context.Context, id entities.ProjectID) (*entities.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.data.projects[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (r *ProjectRepository) GetByProjectNo(_ context.Context, projectNo string) (*entities.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.data.projects {
		if p.ProjectNo != "" && p.ProjectNo == projectNo {
			return &p, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *ProjectRepository) Create(_ context.Context, p *entities.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.projectNoTaken(p.ProjectNo, 0) {
		return repositories.ErrConflict
	}
	p.ID = entities.ProjectID(r.s.allocID())
	r.s.data.projects[p.ID] = *p
	return nil
}

func (r *ProjectRepository) Update(_ context.Context, p *entities.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.projects[p.ID]; !ok {
		return repositories.ErrNotFound
	}
	if r.projectNoTaken(p.ProjectNo, p.ID) {
		return repositories.ErrConflict
	}
	r.s.data.projects[p.ID] = *p
	return nil
}

func (r *ProjectRepository) Delete(_ context.Context, id entities.ProjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.projects[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.s.data.projects, id)
	for uid, u := range r.s.data.updates {
		if u.ProjectID == id {
			delete(r.s.data.updates, uid)
		}
	}
	for fid, f := range r.s.data.forecasts {
		if f.ProjectID == id {
			delete(r.s.data.forecasts, fid)
		}
	}
	for tid, t := range r.s.data.tasks {
		if t.ProjectID == id {
			delete(r.s.data.tasks, tid)
		}
	}
	return nil
}

func (r *ProjectRepository) ProjectNoIndex(_ context.Context) (map[string]entities.ProjectID, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	index := make(map[string]entities.ProjectID)
	for id, p := range r.s.data.projects {
		if p.ProjectNo != "" {
			index[p.ProjectNo] = id
		}
	}
	return index, nil
}

func (r *ProjectRepository) projectNoTaken(projectNo string, except entities.ProjectID) bool {
	if projectNo == "" {
		return false
	}
	for id, p := range r.s.data.projects {
		if id != except && p.ProjectNo == projectNo {
			return true
		}
	}
	return false
}

func (r *ProjectRepository) filter(keep func(*entities.Project) bool) []*entities.Project {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	projects := make([]*entities.Project, 0, len(r.s.data.projects))
	for _, p := range r.s.data.projects {
		if keep(&p) {
			projects = append(projects, &p)
		}
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].ID < projects[j].ID })
	return projects
}
