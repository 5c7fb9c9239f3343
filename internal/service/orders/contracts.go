//go:generate mockgen -source=contracts.go -destination=orders_mocks_test.go -package=orders_test

package orders

import (
	"context"

	"food-dispatch/internal/domain"
)

// DeliveryPort abstracts the dispatch operations the lifecycle service drives.
type DeliveryPort interface {
	Assign(ctx context.Context, orderID string) (domain.AssignResult, error)
	Complete(ctx context.Context, orderID, partnerID string, trigger domain.Trigger) (domain.CompletionResult, error)
}

// OrderRepository is the order store as seen by the lifecycle service.
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	Get(ctx context.Context, id string) (*domain.Order, error)
	ListByRestaurant(ctx context.Context, restaurantID string) ([]domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	ListByPartner(ctx context.Context, partnerID string, status domain.OrderStatus) ([]domain.Order, error)
	TransitionStatus(ctx context.Context, c domain.StatusChange) (bool, error)
}

// Notifier publishes order notifications. Delivery is at-least-once at best.
type Notifier interface {
	OrderPlaced(ctx context.Context, o domain.Order) error
}
