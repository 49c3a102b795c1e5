package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Purger deletes sessions older than maxAge.
type Purger interface {
	PurgeExpired(ctx context.Context, maxAge time.Duration) (int64, error)
}

type Scheduler struct {
	cron    *cron.Cron
	purger  Purger
	maxAge  time.Duration
	timeout time.Duration
	logger  *zap.Logger
}

func NewScheduler(purger Purger, maxAge time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		purger:  purger,
		maxAge:  maxAge,
		timeout: time.Minute,
		logger:  logger,
	}
}

// Start runs one purge immediately, then on schedule ("@hourly", "*/15 * * * *").
func (s *Scheduler) Start(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.runPurge); err != nil {
		return err
	}
	s.runPurge()
	s.cron.Start()

	s.logger.Info("session purge scheduled", zap.String("schedule", schedule), zap.Duration("max_age", s.maxAge))
	return nil
}

// Stop waits for a running purge to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runPurge() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	n, err := s.purger.PurgeExpired(ctx, s.maxAge)
	if err != nil {
		s.logger.Error("session purge failed", zap.Error(err))
		return
	}
	s.logger.Debug("session purge finished", zap.Int64("deleted", n), zap.Duration("took", time.Since(start)))
}
