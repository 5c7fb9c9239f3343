package orders

import (
	"context"
	"strings"

	"food-dispatch/internal/domain"
	"food-dispatch/internal/logx"
)

// Lifecycle is the subset of Service used by Processor.
type Lifecycle interface {
	UpdateStatus(ctx context.Context, id string, to domain.OrderStatus, actor domain.Actor) (UpdateResult, error)
	Cancel(ctx context.Context, id string) (UpdateResult, error)
	UpdateDeliveryStatus(ctx context.Context, id, status string) (UpdateResult, error)
}

// Processor applies order status events from the message bus.
type Processor struct {
	lifecycle Lifecycle
	factory   *actionFactory
	logger    logx.Logger
}

// NewProcessor creates a new orders.Processor
func NewProcessor(lifecycle Lifecycle, logger logx.Logger) *Processor {
	p := &Processor{lifecycle: lifecycle, logger: logger}
	p.factory = newActionFactory(p.onRestaurant, p.onCancel, p.onDelivered)
	return p
}

// Handle processes a single orders.Event. Unknown statuses are ignored.
func (p *Processor) Handle(ctx context.Context, e Event) error {
	fn, ok := p.factory.get(e.Status)
	if !ok {
		p.logger.Debug("order event ignored",
			logx.String("order_id", e.OrderID),
			logx.String("status", e.Status),
		)
		return nil
	}
	return fn(ctx, e)
}

func (p *Processor) onRestaurant(ctx context.Context, e Event) error {
	to, _ := domain.ParseOrderStatus(e.Status)
	actor := domain.ActorRestaurant
	if a := strings.ToLower(strings.TrimSpace(e.Actor)); a != "" {
		actor = domain.Actor(a)
	}
	_, err := p.lifecycle.UpdateStatus(ctx, e.OrderID, to, actor)
	return err
}

func (p *Processor) onCancel(ctx context.Context, e Event) error {
	_, err := p.lifecycle.Cancel(ctx, e.OrderID)
	return err
}

func (p *Processor) onDelivered(ctx context.Context, e Event) error {
	_, err := p.lifecycle.UpdateDeliveryStatus(ctx, e.OrderID, string(domain.DeliveryDelivered))
	return err
}
