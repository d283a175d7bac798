package memory

import (
	"context"
	"sort"

	"github.com/vsinha/cmrp/pkg/domain/entities"
	"github.com/vsinha/cmrp/pkg/domain/repositories"
)

// ForecastRepository provides in-memory storage for forecast entries
type ForecastRepository struct {
	s *Store
}

// Verify interface compliance
var _ repositories.ForecastRepository = (*ForecastRepository)(nil)

func (r *ForecastRepository) ListAll(_ context.Context) ([]*entities.ForecastView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	views := r.views(func(*entities.ForecastView) bool { return true })
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i], views[j]
		if !a.Date.Time().Equal(b.Date.Time()) {
			return a.Date.Before(b.Date)
		}
		if a.ProjectNo != b.ProjectNo {
			return a.ProjectNo < b.ProjectNo
		}
		return a.ID < b.ID
	})
	return views, nil
}

func (r *ForecastRepository) ListForYear(_ context.Context, year int, ds string) ([]*entities.ForecastView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	views := r.views(func(v *entities.ForecastView) bool {
		if v.Date.IsZero() || v.Date.Year() != year {
			return false
		}
		return ds == "" || r.s.data.projects[v.ProjectID].DS == ds
	})
	sort.SliceStable(views, func(i, j int) bool {
		if !views[i].Date.Time().Equal(views[j].Date.Time()) {
			return views[i].Date.Before(views[j].Date)
		}
		return views[i].ID < views[j].ID
	})
	return views, nil
}

func (r *ForecastRepository) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.data.forecasts), nil
}

func (r *ForecastRepository) Create(_ context.Context, f *entities.ForecastEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.projects[f.ProjectID]; !ok {
		return repositories.ErrNotFound
	}
	f.ID = entities.ForecastID(r.s.allocID())
	r.s.data.forecasts[f.ID] = *f
	return nil
}

func (r *ForecastRepository) Get(_ context.Context, id entities.ForecastID) (*entities.ForecastView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	f, ok := r.s.data.forecasts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	v, ok := r.view(f)
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return v, nil
}

func (r *ForecastRepository) SetCompleted(_ context.Context, id entities.ForecastID, completed bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	f, ok := r.s.data.forecasts[id]
	if !ok {
		return repositories.ErrNotFound
	}
	f.Completed = completed
	r.s.data.forecasts[id] = f
	return nil
}

func (r *ForecastRepository) Delete(_ context.Context, id entities.ForecastID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.forecasts[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.s.data.forecasts, id)
	return nil
}

func (r *ForecastRepository) ProjectIDsWithForecasts(_ context.Context) (map[entities.ProjectID]bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := make(map[entities.ProjectID]bool)
	for _, f := range r.s.data.forecasts {
		ids[f.ProjectID] = true
	}
	return ids, nil
}

// view joins an entry with its project; callers hold the read lock
func (r *ForecastRepository) view(f entities.ForecastEntry) (*entities.ForecastView, bool) {
	p, ok := r.s.data.projects[f.ProjectID]
	if !ok {
		return nil, false
	}
	return &entities.ForecastView{
		ForecastEntry: f,
		ProjectNo:     p.ProjectNo,
		ProjectName:   p.Name,
		ProjectAmount: p.Amount,
		ProjectStatus: p.Status,
		ProjectPIC:    p.PIC,
	}, true
}

func (r *ForecastRepository) views(keep func(*entities.ForecastView) bool) []*entities.ForecastView {
	views := make([]*entities.ForecastView, 0, len(r.s.data.forecasts))
	for _, f := range r.s.data.forecasts {
		if v, ok := r.view(f); ok && keep(v) {
			views = append(views, v)
		}
	}
	sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })
	return views
}
