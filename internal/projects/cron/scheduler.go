package cronjob

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/eprod/internal/logging"
)

// Purger permanently removes projects soft-deleted before a cutoff.
type Purger interface {
	PurgeDeleted(ctx context.Context, before time.Time) (int64, error)
}

type Scheduler struct {
	cron      *cron.Cron
	purger    Purger
	schedule  string
	retention time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewScheduler uses a six-field (with seconds) cron schedule.
func NewScheduler(purger Purger, schedule string, retention time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		purger:    purger,
		schedule:  schedule,
		retention: retention,
		logger:    logging.OrNop(logger).Named("purge"),
		now:       time.Now,
	}
}

// Start registers the purge job and starts the scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() { _, _ = s.RunOnce(context.Background()) }); err != nil {
		return err
	}
	s.logger.Info("purge scheduler started", zap.String("schedule", s.schedule), zap.Duration("retention", s.retention))
	s.cron.Start()
	return nil
}

// Stop waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// RunOnce purges everything soft-deleted longer than the retention period ago.
func (s *Scheduler) RunOnce(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.retention)
	n, err := s.purger.PurgeDeleted(ctx, cutoff)
	if err != nil {
		s.logger.Error("purge failed", zap.Error(err))
		return 0, err
	}
	s.logger.Info("purge completed", zap.Int64("removed", n), zap.Time("cutoff", cutoff))
	return n, nil
}
