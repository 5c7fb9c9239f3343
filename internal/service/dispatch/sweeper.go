package dispatch

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"food-dispatch/internal/domain"
	"food-dispatch/internal/logx"
)

// BusyLister lists partners currently bound to an order.
type BusyLister interface {
	ListBusy(ctx context.Context) ([]domain.Partner, error)
}

// Sweeper completes deliveries whose deadline passed without the timer finishing them.
type Sweeper struct {
	partners    BusyLister
	completer   Completer
	concurrency int
	timeout     time.Duration
	metrics     Metrics
	logger      logx.Logger
	now         func() time.Time
}

// SweeperOption configures a Sweeper.
type SweeperOption func(*Sweeper)

// WithSweepClock overrides the time source.
func WithSweepClock(now func() time.Time) SweeperOption {
	return func(s *Sweeper) { s.now = now }
}

// WithSweepMetrics sets the metrics sink.
func WithSweepMetrics(m Metrics) SweeperOption {
	return func(s *Sweeper) { s.metrics = m }
}

// NewSweeper creates a Sweeper processing at most concurrency partners at once,
// each bounded by timeout.
func NewSweeper(partners BusyLister, completer Completer, concurrency int, timeout time.Duration, logger logx.Logger, opts ...SweeperOption) *Sweeper {
	if concurrency <= 0 {
		concurrency = 1
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	s := &Sweeper{
		partners:    partners,
		completer:   completer,
		concurrency: concurrency,
		timeout:     timeout,
		metrics:     nopMetrics{},
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sweep runs one reconciliation pass. Only a failure to list busy partners is
// returned; per-partner failures are logged, counted and retried next pass.
func (s *Sweeper) Sweep(ctx context.Context) (domain.SweepResult, error) {
	started := time.Now()
	var res domain.SweepResult

	listCtx, cancel := context.WithTimeout(ctx, s.timeout)
	busy, err := s.partners.ListBusy(listCtx)
	cancel()
	if err != nil {
		s.logger.Error("sweep: list busy partners failed", logx.Err(err))
		return res, storeErr("list busy partners", err)
	}
	res.Scanned = len(busy)

	now := s.now()
	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(s.concurrency)

	for i := range busy {
		p := busy[i]
		if !p.Overdue(now) {
			continue
		}
		res.Due++

		g.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			out, err := s.completer.Complete(pctx, p.CurrentOrderID, p.ID, domain.TriggerSweep)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				res.Failed++
				s.logger.Warn("sweep: completion failed",
					logx.String("order_id", p.CurrentOrderID),
					logx.String("partner_id", p.ID),
					logx.Err(err),
				)
			case out.Outcome == domain.Completed:
				res.Completed++
			default:
				res.AlreadyCompleted++
			}
			return nil
		})
	}
	_ = g.Wait()

	took := time.Since(started)
	s.metrics.Sweep(took, res)
	if res.Due > 0 {
		s.logger.Info("sweep finished",
			logx.String("event", "sweep_finished"),
			logx.Int("scanned", res.Scanned),
			logx.Int("due", res.Due),
			logx.Int("completed", res.Completed),
			logx.Int("already_completed", res.AlreadyCompleted),
			logx.Int("failed", res.Failed),
			logx.Duration("took", took),
		)
	}
	return res, nil
}
