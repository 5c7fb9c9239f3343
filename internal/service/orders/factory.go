package orders

import (
	"context"
	"strings"

	"food-dispatch/internal/domain"
)

type actionFunc func(context.Context, Event) error

type actionFactory struct {
	byStatus map[string]actionFunc
}

// newActionFactory routes an event status to the lifecycle call that applies it.
// Statuses without an inbound edge are absent and get ignored.
func newActionFactory(onRestaurant, onCancel, onDelivered actionFunc) *actionFactory {
	return &actionFactory{
		byStatus: map[string]actionFunc{
			string(domain.OrderAccepted):  onRestaurant,
			string(domain.OrderRejected):  onRestaurant,
			string(domain.OrderInProcess): onRestaurant,
			string(domain.OrderReady):     onRestaurant,
			string(domain.OrderCancelled): onCancel,
			"canceled":                    onCancel,
			string(domain.OrderDelivered): onDelivered,
		},
	}
}

func (f *actionFactory) get(status string) (actionFunc, bool) {
	status = strings.ToLower(strings.TrimSpace(status))
	fn, ok := f.byStatus[status]
	return fn, ok
}
