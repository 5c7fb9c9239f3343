package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"food-dispatch/internal/apperr"
	"food-dispatch/internal/domain"
	"food-dispatch/internal/logx"
	"food-dispatch/internal/metrics"
)

// Engine assigns ready orders to idle partners and completes deliveries.
type Engine struct {
	partners         PartnerRegistry
	orders           OrderStore
	timers           Scheduler
	eta              ETAFactory
	metrics          Metrics
	operationTimeout time.Duration
	logger           logx.Logger
	now              func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithETA overrides the ETA factory.
func WithETA(f ETAFactory) Option {
	return func(e *Engine) { e.eta = f }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine creates a new Engine.
func NewEngine(partners PartnerRegistry, orders OrderStore, timers Scheduler, timeout time.Duration, logger logx.Logger, opts ...Option) *Engine {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	e := &Engine{
		partners:         partners,
		orders:           orders,
		timers:           timers,
		eta:              NewRandomETA(3, 10),
		metrics:          nopMetrics{},
		operationTimeout: timeout,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.operationTimeout)
}

// Assign binds the first idle partner to a ready order and arms its completion timer.
// It returns apperr.ErrNoPartnerAvailable when every idle partner is taken, and
// apperr.ErrAssignmentPartialFailure when the partner was marked busy but the
// order could not be updated.
func (e *Engine) Assign(ctx context.Context, orderID string) (domain.AssignResult, error) {
	orderID, err := validateOrderID(orderID)
	if err != nil {
		return domain.AssignResult{}, err
	}

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	idle, err := e.partners.ListIdle(ctx)
	if err != nil {
		e.metrics.Assignment(metrics.AssignError)
		return domain.AssignResult{}, storeErr("list idle partners", err)
	}

	eta := e.eta.Minutes()
	start := e.now()
	deadline := start.Add(time.Duration(eta) * time.Minute)

	var partner *domain.Partner
	for i := range idle {
		ok, err := e.partners.MarkBusy(ctx, idle[i].ID, orderID, deadline)
		if err != nil {
			e.metrics.Assignment(metrics.AssignError)
			return domain.AssignResult{}, storeErr("mark partner busy", err)
		}
		if ok {
			partner = &idle[i]
			break
		}
	}
	if partner == nil {
		e.metrics.Assignment(metrics.AssignNoPartner)
		e.logger.Warn("no delivery partner available",
			logx.String("event", "no_partner_available"),
			logx.String("order_id", orderID),
			logx.Int("idle_seen", len(idle)),
		)
		return domain.AssignResult{}, apperr.ErrNoPartnerAvailable
	}

	ok, err := e.orders.SetAssignment(ctx, orderID, domain.Assignment{
		PartnerID:   partner.ID,
		PartnerName: partner.Name,
		ETAMinutes:  eta,
		StartTime:   start,
		EndTime:     deadline,
	})
	if err != nil || !ok {
		e.metrics.Assignment(metrics.AssignPartialFailure)
		e.logger.Error("assignment inconsistency: partner busy, order not updated",
			logx.String("event", "assignment_partial_failure"),
			logx.String("order_id", orderID),
			logx.String("partner_id", partner.ID),
			logx.Time("deadline", deadline),
			logx.Bool("order_matched", ok),
			logx.Err(err),
		)
		if err != nil {
			return domain.AssignResult{}, fmt.Errorf("%w: %w", apperr.ErrAssignmentPartialFailure, err)
		}
		return domain.AssignResult{}, apperr.ErrAssignmentPartialFailure
	}

	e.arm(orderID, partner.ID, deadline.Sub(start))
	e.metrics.Assignment(metrics.AssignAssigned)

	result := domain.AssignResult{
		OrderID:     orderID,
		PartnerID:   partner.ID,
		PartnerName: partner.Name,
		ETAMinutes:  eta,
		StartTime:   start,
		Deadline:    deadline,
	}
	e.logger.Info("partner assigned",
		logx.String("event", "partner_assigned"),
		logx.String("order_id", orderID),
		logx.String("partner_id", partner.ID),
		logx.Int("eta_minutes", eta),
		logx.Time("deadline", deadline),
	)
	return result, nil
}

// Rearm schedules timers for busy partners whose deadline has not passed yet.
// Overdue partners are left to the sweeper.
func (e *Engine) Rearm(ctx context.Context) (int, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	busy, err := e.partners.ListBusy(ctx)
	if err != nil {
		return 0, storeErr("list busy partners", err)
	}
	now := e.now()
	armed := 0
	for i := range busy {
		p := &busy[i]
		if p.CurrentOrderID == "" || p.DeliveryEndTime == nil || p.Overdue(now) {
			continue
		}
		e.arm(p.CurrentOrderID, p.ID, p.DeliveryEndTime.Sub(now))
		armed++
	}
	if armed > 0 {
		e.logger.Info("completion timers rearmed", logx.Int("count", armed))
	}
	return armed, nil
}

func (e *Engine) arm(orderID, partnerID string, after time.Duration) {
	e.timers.Schedule(orderID, after, func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.operationTimeout)
		defer cancel()
		if _, err := e.Complete(ctx, orderID, partnerID, domain.TriggerTimer); err != nil {
			e.logger.Warn("timer completion failed, sweeper will retry",
				logx.String("order_id", orderID),
				logx.String("partner_id", partnerID),
				logx.Err(err),
			)
		}
		e.metrics.TimersPending(e.timers.Pending())
	})
	e.metrics.TimersPending(e.timers.Pending())
}

func validateOrderID(raw string) (string, error) {
	orderID := strings.TrimSpace(raw)
	if orderID == "" {
		return "", apperr.ErrInvalid
	}
	return orderID, nil
}

func storeErr(op string, err error) error {
	if errors.Is(err, apperr.ErrStoreUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, apperr.ErrStoreUnavailable, err)
}
