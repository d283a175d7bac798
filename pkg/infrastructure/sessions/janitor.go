package sessions

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/cmrp/pkg/domain/repositories"
)

// Janitor periodically purges expired sessions from a store
type Janitor struct {
	store    repositories.SessionStore
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewJanitor creates a janitor that sweeps store every interval
func NewJanitor(store repositories.SessionStore, interval time.Duration, logger *zap.Logger) *Janitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Janitor{store: store, interval: interval, logger: logger, now: time.Now}
}

// Sweep runs a single purge
func (j *Janitor) Sweep(ctx context.Context) (int, error) {
	n, err := j.store.DeleteExpired(ctx, j.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		j.logger.Info("purged expired sessions", zap.Int("count", n))
	}
	return n, nil
}

// Run sweeps until ctx is cancelled. Sweep failures are logged, not fatal.
func (j *Janitor) Run(ctx context.Context) error {
	if j.interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := j.Sweep(ctx); err != nil {
				j.logger.Warn("session sweep failed", zap.Error(err))
			}
		}
	}
}
