package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"food-dispatch/internal/domain"
	"food-dispatch/internal/logx"
)

// Sweeper runs one reconciliation pass.
type Sweeper interface {
	Sweep(ctx context.Context) (domain.SweepResult, error)
}

// SweepJob runs the reconciliation sweeper on a fixed interval.
// A run that is still going when the next one is due makes the next one skip.
type SweepJob struct {
	sweeper  Sweeper
	interval time.Duration
	cron     *cron.Cron
	logger   logx.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewSweepJob creates a new sweep job. Intervals below one second are rounded up by cron.
func NewSweepJob(s Sweeper, interval time.Duration, logger logx.Logger) *SweepJob {
	logger = logger.With(logx.String("component", "sweep_job"))
	cl := cronLogger{l: logger}
	return &SweepJob{
		sweeper:  s,
		interval: interval,
		cron:     cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)), cron.WithLogger(cl)),
		logger:   logger,
	}
}

// Start schedules the job. ctx bounds every run.
func (j *SweepJob) Start(ctx context.Context) error {
	j.mu.Lock()
	j.ctx, j.cancel = context.WithCancel(ctx)
	runCtx := j.ctx
	j.mu.Unlock()

	if _, err := j.cron.AddFunc(fmt.Sprintf("@every %s", j.interval), func() { j.RunOnce(runCtx) }); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	j.cron.Start()
	j.logger.Info("sweep job started", logx.Duration("interval", j.interval))
	return nil
}

// RunOnce performs a single sweep and logs a listing failure.
func (j *SweepJob) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := j.sweeper.Sweep(ctx); err != nil {
		j.logger.Error("sweep run failed", logx.Err(err))
	}
}

// Stop unschedules the job and waits for a running sweep to return.
func (j *SweepJob) Stop() {
	j.mu.Lock()
	if j.cancel != nil {
		j.cancel()
	}
	j.mu.Unlock()

	<-j.cron.Stop().Done()
	j.logger.Info("sweep job stopped")
}

type cronLogger struct{ l logx.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, kvFields(keysAndValues)...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: "+msg, append(kvFields(keysAndValues), logx.Err(err))...)
}

func kvFields(kv []interface{}) []logx.Field {
	out := make([]logx.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, logx.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return out
}
