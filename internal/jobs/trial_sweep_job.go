package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// TrialSweepJobName is the name of the trial expiry sweep job
const TrialSweepJobName = "trial_sweep"

// TrialSweeper expires trial subscriptions that passed their end date.
// The interface keeps the job decoupled from the service package.
type TrialSweeper interface {
	SweepExpiredTrials(ctx context.Context) (int, error)
}

// TrialSweepJob marks expired trials past_due and notifies their owners.
type TrialSweepJob struct {
	sweeper TrialSweeper
	logger  *zap.Logger
	timeout time.Duration
}

func NewTrialSweepJob(sweeper TrialSweeper, logger *zap.Logger, timeout time.Duration) *TrialSweepJob {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &TrialSweepJob{
		sweeper: sweeper,
		logger:  logger,
		timeout: timeout,
	}
}

// Run executes the sweep. Called by the scheduler according to the cron
// expression.
func (j *TrialSweepJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()

	swept, err := j.sweeper.SweepExpiredTrials(ctx)
	if err != nil {
		j.logger.Error("trial sweep failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("trial sweep completed",
		zap.Int("swept", swept),
		zap.Duration("duration", time.Since(start)))
}

// RegisterTrialSweepJob registers the sweep with the scheduler.
func RegisterTrialSweepJob(scheduler *Scheduler, sweeper TrialSweeper, logger *zap.Logger, cronExpr string, timeout time.Duration) error {
	job := NewTrialSweepJob(sweeper, logger, timeout)
	return scheduler.AddJob(TrialSweepJobName, cronExpr, job.Run)
}
