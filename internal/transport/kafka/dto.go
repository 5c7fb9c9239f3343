package kafka

import (
	"strings"
	"time"

	"food-dispatch/internal/domain"
	"food-dispatch/internal/service/orders"
)

// EventDTO is a data transfer object for orders.Event
type EventDTO struct {
	OrderID   string    `json:"order_id"`
	Status    string    `json:"status"`
	Actor     string    `json:"actor,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ToDomain converts EventDTO to orders.Event
func ToDomain(dto EventDTO) orders.Event {
	return orders.Event{
		OrderID:   strings.TrimSpace(dto.OrderID),
		Status:    strings.TrimSpace(dto.Status),
		Actor:     strings.TrimSpace(dto.Actor),
		CreatedAt: dto.CreatedAt,
	}
}

// OrderPlacedDTO is the payload published when an order is placed.
type OrderPlacedDTO struct {
	OrderID      string            `json:"order_id"`
	RestaurantID string            `json:"restaurant_id"`
	CustomerID   string            `json:"customer_id"`
	Items        []domain.LineItem `json:"items"`
	Status       string            `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
}

// FromOrder builds the order-placed payload.
func FromOrder(o domain.Order) OrderPlacedDTO {
	return OrderPlacedDTO{
		OrderID:      o.ID,
		RestaurantID: o.RestaurantID,
		CustomerID:   o.CustomerID,
		Items:        o.Items,
		Status:       string(o.Status),
		CreatedAt:    o.CreatedAt,
	}
}
