// Package services implements the CMRP use cases on top of the domain
// repositories.
package services

import (
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/cmrp/pkg/config"
	"github.com/vsinha/cmrp/pkg/domain/entities"
	"github.com/vsinha/cmrp/pkg/domain/repositories"
	"github.com/vsinha/cmrp/pkg/infrastructure/events"
)

// Repositories bundles the storage the services depend on
type Repositories struct {
	Tx        repositories.Transactor
	Users     repositories.UserRepository
	Sessions  repositories.SessionStore
	Projects  repositories.ProjectRepository
	Updates   repositories.UpdateRepository
	Forecasts repositories.ForecastRepository
	Tasks     repositories.TaskRepository
	MRFs      repositories.MRFRepository
}

// Deps holds what every service needs besides storage
type Deps struct {
	Repos  Repositories
	Limits config.LimitsConfig
	Events events.EventStore
	Logger *zap.Logger
	Now    func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) today() entities.Date {
	return entities.DateOf(d.now())
}

func (d Deps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// publish emits a domain event. Event bus failures never fail the request.
func (d Deps) publish(eventType, streamID string, data any) {
	if d.Events == nil {
		return
	}
	if err := events.Publish(d.Events, eventType, streamID, data); err != nil {
		d.logger().Warn("failed to publish event", zap.String("event", eventType), zap.Error(err))
	}
}

// Services is the full set of application services
type Services struct {
	Auth      *AuthService
	Projects  *ProjectService
	Updates   *UpdateService
	Forecasts *ForecastService
	Tasks     *TaskService
	MRFs      *MRFService
	Dashboard *DashboardService
}

// New wires every service against the same dependencies
func New(deps Deps) *Services {
	return &Services{
		Auth:      NewAuthService(deps),
		Projects:  NewProjectService(deps),
		Updates:   NewUpdateService(deps),
		Forecasts: NewForecastService(deps),
		Tasks:     NewTaskService(deps),
		MRFs:      NewMRFService(deps),
		Dashboard: NewDashboardService(deps),
	}
}
