package commands

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vsinha/cmrp/pkg/application/services"
	"github.com/vsinha/cmrp/pkg/config"
	"github.com/vsinha/cmrp/pkg/domain/repositories"
	"github.com/vsinha/cmrp/pkg/infrastructure/events"
	"github.com/vsinha/cmrp/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/cmrp/pkg/infrastructure/repositories/sqlite"
	"github.com/vsinha/cmrp/pkg/infrastructure/sessions"
)

// maxAuditEvents bounds the in-process event log
const maxAuditEvents = 10000

// Runtime holds the wired application for the lifetime of one command
type Runtime struct {
	Config   *config.Config
	Logger   *zap.Logger
	Services *services.Services
	Sessions repositories.SessionStore
	Events   *events.InMemoryEventStore

	closers []func() error
}

// Bootstrap opens storage and wires the application services. Ephemeral
// runtimes keep everything in memory and touch no files.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *zap.Logger, ephemeral bool) (*Runtime, error) {
	rt := &Runtime{
		Config: cfg,
		Logger: logger,
		Events: events.NewInMemoryEventStore(logger, maxAuditEvents),
	}

	var repos services.Repositories
	if ephemeral {
		store := memory.NewStore()
		repos = services.Repositories{
			Tx:        store,
			Users:     store.Users(),
			Sessions:  store.Sessions(),
			Projects:  store.Projects(),
			Updates:   store.Updates(),
			Forecasts: store.Forecasts(),
			Tasks:     store.Tasks(),
			MRFs:      store.MRFs(),
		}
		logger.Warn("using in-memory storage; data is lost on exit")
	} else {
		db, err := sqlite.Open(ctx, cfg.Database.Driver, cfg.Database.Path, logger)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, db.Close)

		bolt, err := sessions.OpenBoltStore(cfg.Sessions.Path)
		if err != nil {
			_ = rt.Close()
			return nil, fmt.Errorf("failed to open session store: %w", err)
		}
		rt.closers = append(rt.closers, bolt.Close)

		repos = services.Repositories{
			Tx:        db,
			Users:     sqlite.NewUserRepository(db),
			Sessions:  bolt,
			Projects:  sqlite.NewProjectRepository(db),
			Updates:   sqlite.NewUpdateRepository(db),
			Forecasts: sqlite.NewForecastRepository(db),
			Tasks:     sqlite.NewTaskRepository(db),
			MRFs:      sqlite.NewMRFRepository(db),
		}
	}
	rt.Sessions = repos.Sessions

	if err := events.NewAuditLogger(logger, events.AllEventTypes).Attach(rt.Events); err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("failed to attach audit log: %w", err)
	}

	rt.Services = services.New(services.Deps{
		Repos:  repos,
		Limits: cfg.Limits,
		Events: rt.Events,
		Logger: logger,
	})
	rt.Services.Auth.WithSessionTTL(cfg.GetSessionTTL())
	return rt, nil
}

// Close drains pending audit handlers and releases storage in reverse
// order of opening
func (rt *Runtime) Close() error {
	rt.Events.Wait()
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}
