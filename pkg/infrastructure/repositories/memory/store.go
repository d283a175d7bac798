// Package memory provides in-process implementations of the repository
// interfaces. Data lives in maps guarded by a single mutex.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/vsinha/cmrp/pkg/domain/entities"
	"github.com/vsinha/cmrp/pkg/domain/repositories"
)

type tables struct {
	users     map[int64]entities.User
	sessions  map[string]entities.Session
	projects  map[entities.ProjectID]entities.Project
	updates   map[entities.UpdateID]entities.ProjectUpdate
	forecasts map[entities.ForecastID]entities.ForecastEntry
	tasks     map[entities.TaskID]entities.Task
	mrfs      map[entities.MRFID]entities.MRFRequest
	mrfItems  map[entities.MRFItemID]entities.MRFItem
	nextID    int64
}

func newTables() tables {
	return tables{
		users:     make(map[int64]entities.User),
		sessions:  make(map[string]entities.Session),
		projects:  make(map[entities.ProjectID]entities.Project),
		updates:   make(map[entities.UpdateID]entities.ProjectUpdate),
		forecasts: make(map[entities.ForecastID]entities.ForecastEntry),
		tasks:     make(map[entities.TaskID]entities.Task),
		mrfs:      make(map[entities.MRFID]entities.MRFRequest),
		mrfItems:  make(map[entities.MRFItemID]entities.MRFItem),
	}
}

func (t tables) clone() tables {
	return tables{
		users:     maps.Clone(t.users),
		sessions:  maps.Clone(t.sessions),
		projects:  maps.Clone(t.projects),
		updates:   maps.Clone(t.updates),
		forecasts: maps.Clone(t.forecasts),
		tasks:     maps.Clone(t.tasks),
		mrfs:      maps.Clone(t.mrfs),
		mrfItems:  maps.Clone(t.mrfItems),
		nextID:    t.nextID,
	}
}

// Store holds every table. Repositories obtained from it share its data.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data tables
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{data: newTables()}
}

// Verify interface compliance
var _ repositories.Transactor = (*Store)(nil)

type txKey struct{}

// WithinTx serialises units of work and restores the previous state when
// fn fails
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// allocID hands out ids from a single sequence; callers hold mu
func (s *Store) allocID() int64 {
	s.data.nextID++
	return s.data.nextID
}

func (s *Store) Users() *UserRepository         { return &UserRepository{s: s} }
func (s *Store) Sessions() *SessionStore        { return &SessionStore{s: s} }
func (s *Store) Projects() *ProjectRepository   { return &ProjectRepository{s: s} }
func (s *Store) Updates() *UpdateRepository     { return &UpdateRepository{s: s} }
func (s *Store) Forecasts() *ForecastRepository { return &ForecastRepository{s: s} }
func (s *Store) Tasks() *TaskRepository         { return &TaskRepository{s: s} }
func (s *Store) MRFs() *MRFRepository           { return &MRFRepository{s: s} }
