package handlers

import (
	"context"

	"food-dispatch/internal/domain"
	"food-dispatch/internal/service/orders"
	"food-dispatch/internal/service/partners"
)

type orderUsecase interface {
	Place(ctx context.Context, req orders.PlaceRequest) (*domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	ListByRestaurant(ctx context.Context, restaurantID string) ([]domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, to domain.OrderStatus, actor domain.Actor) (orders.UpdateResult, error)
	Cancel(ctx context.Context, id string) (orders.UpdateResult, error)
}

// NewOrderUsecase wires an orders Service into an orderUsecase.
func NewOrderUsecase(svc *orders.Service) orderUsecase {
	return svc
}

type deliveryUsecase interface {
	UpdateDeliveryStatus(ctx context.Context, id, status string) (orders.UpdateResult, error)
	Reassign(ctx context.Context, id string) (domain.AssignResult, error)
	ListByPartner(ctx context.Context, partnerID string, status domain.OrderStatus) ([]domain.Order, error)
}

// NewDeliveryUsecase wires an orders Service into a deliveryUsecase.
func NewDeliveryUsecase(svc *orders.Service) deliveryUsecase {
	return svc
}

type partnerUsecase interface {
	Register(ctx context.Context, name string) (*domain.Partner, error)
	Get(ctx context.Context, id string) (*domain.Partner, error)
	List(ctx context.Context) ([]domain.Partner, error)
}

// NewPartnerUsecase wires a partners Service into a partnerUsecase.
func NewPartnerUsecase(svc *partners.Service) partnerUsecase {
	return svc
}
