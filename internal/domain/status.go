package domain

import (
	"fmt"
	"strings"

	"food-dispatch/internal/apperr"
)

// List of possible order statuses
const (
	OrderPending   OrderStatus = "pending"
	OrderAccepted  OrderStatus = "accepted"
	OrderRejected  OrderStatus = "rejected"
	OrderInProcess OrderStatus = "in_process"
	OrderReady     OrderStatus = "ready"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// List of possible delivery statuses. An empty value means no delivery yet.
const (
	DeliveryNone      DeliveryStatus = ""
	DeliveryAssigned  DeliveryStatus = "assigned"
	DeliveryDelivered DeliveryStatus = "delivered"
)

// Actor identifies who requests an order status change.
type Actor string

// List of actors allowed to drive the order lifecycle
const (
	ActorRestaurant Actor = "restaurant"
	ActorCustomer   Actor = "customer"
	ActorDelivery   Actor = "delivery"
)

// RejectionReason is attached to every rejected order.
const RejectionReason = "We're sorry, but your order was politely declined by the restaurant " +
	"due to availability or operational constraints."

var allowedOrderStatuses = [...]OrderStatus{
	OrderPending, OrderAccepted, OrderRejected, OrderInProcess,
	OrderReady, OrderDelivered, OrderCancelled,
}

// Valid checks if the OrderStatus is valid
func (s OrderStatus) Valid() bool {
	for _, v := range allowedOrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves the status.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderRejected || s == OrderCancelled
}

// ParseOrderStatus normalizes raw input into an OrderStatus.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	s := OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	return s, s.Valid()
}

// Transition is a single edge of the order lifecycle and the actor allowed to take it.
type Transition struct {
	From  OrderStatus
	To    OrderStatus
	Actor Actor
}

// transitions is the whole order state machine. ready -> delivered is only
// reachable through the delivery path.
var transitions = [...]Transition{
	{From: OrderPending, To: OrderAccepted, Actor: ActorRestaurant},
	{From: OrderPending, To: OrderRejected, Actor: ActorRestaurant},
	{From: OrderPending, To: OrderCancelled, Actor: ActorCustomer},
	{From: OrderAccepted, To: OrderInProcess, Actor: ActorRestaurant},
	{From: OrderInProcess, To: OrderReady, Actor: ActorRestaurant},
	{From: OrderReady, To: OrderDelivered, Actor: ActorDelivery},
}

// Transitions returns a copy of the lifecycle edges.
func Transitions() []Transition {
	out := make([]Transition, len(transitions))
	copy(out, transitions[:])
	return out
}

// NextStatuses returns the statuses reachable from s by any actor.
func NextStatuses(s OrderStatus) []OrderStatus {
	var out []OrderStatus
	for _, t := range transitions {
		if t.From == s {
			out = append(out, t.To)
		}
	}
	return out
}

// CanTransition validates that actor may move an order from one status to another.
// The returned error wraps apperr.ErrInvalidTransition.
func CanTransition(from, to OrderStatus, actor Actor) error {
	for _, t := range transitions {
		if t.From == from && t.To == to && t.Actor == actor {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s by %s", apperr.ErrInvalidTransition, from, to, actor)
}
