package dispatch

import (
	"context"
	"time"

	"food-dispatch/internal/domain"
)

// PartnerRegistry is the partner side of the state store.
// MarkBusy and Release are conditional writes and report whether they applied.
type PartnerRegistry interface {
	Get(ctx context.Context, id string) (*domain.Partner, error)
	ListIdle(ctx context.Context) ([]domain.Partner, error)
	ListBusy(ctx context.Context) ([]domain.Partner, error)
	MarkBusy(ctx context.Context, partnerID, orderID string, deadline time.Time) (bool, error)
	Release(ctx context.Context, partnerID, orderID string) (bool, error)
}

// OrderStore is the order side of the state store used by dispatch.
type OrderStore interface {
	SetAssignment(ctx context.Context, orderID string, a domain.Assignment) (bool, error)
	MarkDelivered(ctx context.Context, u domain.DeliveredUpdate) (bool, error)
}

// Scheduler runs one-shot callbacks keyed by order id.
type Scheduler interface {
	Schedule(key string, after time.Duration, fn func())
	Cancel(key string) bool
	Pending() int
}

// ETAFactory picks the delivery duration in whole minutes.
type ETAFactory interface {
	Minutes() int
}

// Metrics receives dispatch observations.
type Metrics interface {
	Assignment(result string)
	Completion(trigger domain.Trigger, outcome domain.CompletionOutcome)
	CompletionFailed(trigger domain.Trigger)
	Sweep(took time.Duration, res domain.SweepResult)
	TimersPending(n int)
}

// Completer finishes a delivery. Implemented by Engine.
type Completer interface {
	Complete(ctx context.Context, orderID, partnerID string, trigger domain.Trigger) (domain.CompletionResult, error)
}

type nopMetrics struct{}

func (nopMetrics) Assignment(string)                                   {}
func (nopMetrics) Completion(domain.Trigger, domain.CompletionOutcome) {}
func (nopMetrics) CompletionFailed(domain.Trigger)                     {}
func (nopMetrics) Sweep(time.Duration, domain.SweepResult)             {}
func (nopMetrics) TimersPending(int)                                   {}
