package repositories

import (
	"context"
	"time"

	"github.com/vsinha/cmrp/pkg/domain/entities"
)

// ProjectRepository provides access to project master data
type ProjectRepository interface {
	// ListActive returns open projects, largest remaining amount first and
	// projects without a remaining amount last
	ListActive(ctx context.Context) ([]*entities.Project, error)
	// ListCompleted returns finished projects, latest completion first
	ListCompleted(ctx context.Context) ([]*entities.Project, error)
	ListAll(ctx context.Context) ([]*entities.Project, error)
	// ListBySegment filters on DS. An empty segment returns every project.
	ListBySegment(ctx context.Context, ds string) ([]*entities.Project, error)
	Get(ctx context.Context, id entities.ProjectID) (*entities.Project, error)
	GetByProjectNo(ctx context.Context, projectNo string) (*entities.Project, error)
	Create(ctx context.Context, project *entities.Project) error
	Update(ctx context.Context, project *entities.Project) error
	// Delete removes the project with its updates, forecasts and tasks
	Delete(ctx context.Context, id entities.ProjectID) error
	ProjectNoIndex(ctx context.Context) (map[string]entities.ProjectID, error)
}

// UpdateRepository provides access to project updates
type UpdateRepository interface {
	ListByProject(ctx context.Context, projectID entities.ProjectID) ([]*entities.ProjectUpdate, error)
	ListByProjects(ctx context.Context, ids []entities.ProjectID) (map[entities.ProjectID][]*entities.ProjectUpdate, error)
	ListAll(ctx context.Context) ([]*entities.UpdateLogEntry, error)
	Count(ctx context.Context, projectID entities.ProjectID) (int, error)
	Create(ctx context.Context, update *entities.ProjectUpdate) error
	Get(ctx context.Context, id entities.UpdateID) (*entities.ProjectUpdate, error)
	// SetCompleted stores the flag and sets or clears the completion time
	SetCompleted(ctx context.Context, id entities.UpdateID, completed bool, at time.Time) error
	Delete(ctx context.Context, id entities.UpdateID) error
}

// ForecastRepository provides access to forecast entries
type ForecastRepository interface {
	// ListAll returns every entry joined with its project, ordered by
	// forecast date, project number and id
	ListAll(ctx context.Context) ([]*entities.ForecastView, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, entry *entities.ForecastEntry) error
	Get(ctx context.Context, id entities.ForecastID) (*entities.ForecastView, error)
	SetCompleted(ctx context.Context, id entities.ForecastID, completed bool) error
	Delete(ctx context.Context, id entities.ForecastID) error
	ProjectIDsWithForecasts(ctx context.Context) (map[entities.ProjectID]bool, error)
	// ListForYear returns entries dated in year, optionally filtered on DS
	ListForYear(ctx context.Context, year int, ds string) ([]*entities.ForecastView, error)
}

// TaskRepository provides access to project tasks
type TaskRepository interface {
	// ListByProject orders root tasks first, then by start date and id
	ListByProject(ctx context.Context, projectID entities.ProjectID) ([]*entities.Task, error)
	Get(ctx context.Context, id entities.TaskID) (*entities.Task, error)
	Create(ctx context.Context, task *entities.Task) error
	Update(ctx context.Context, task *entities.Task) error
	// Delete removes the task and detaches its children
	Delete(ctx context.Context, id entities.TaskID) error
}

// MRFRepository provides access to material requests
type MRFRepository interface {
	// Save upserts the header by form number and replaces its items
	Save(ctx context.Context, request *entities.MRFRequest) error
	GetByFormNo(ctx context.Context, formNo string) (*entities.MRFRequest, error)
	ListItemLog(ctx context.Context) ([]*entities.MRFItemLogEntry, error)
	GetItem(ctx context.Context, id entities.MRFItemID) (*entities.MRFItem, error)
	GetItemByFormAndNo(ctx context.Context, formNo string, itemNo int) (*entities.MRFItem, error)
	UpdateItem(ctx context.Context, item *entities.MRFItem) error
}
