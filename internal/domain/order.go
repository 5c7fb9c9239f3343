package domain

import "time"

type (
	// OrderStatus represents the lifecycle status of an order.
	OrderStatus string
	// DeliveryStatus mirrors the delivery progress of an order for read paths.
	DeliveryStatus string
)

// LineItem is a single ordered menu position.
type LineItem struct {
	MenuID   string `json:"menu_id"`
	Name     string `json:"name"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

// Order represents a customer order tracked through its lifecycle.
type Order struct {
	ID           string
	RestaurantID string
	CustomerID   string
	Items        []LineItem
	Status       OrderStatus
	Reason       string

	DeliveryPartnerID   string
	DeliveryPartnerName string
	ETAMinutes          int
	DeliveryStatus      DeliveryStatus
	DeliveryStartTime   *time.Time
	DeliveryEndTime     *time.Time
	DeliveredAt         *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPartner reports whether a delivery partner has been bound to the order.
func (o *Order) HasPartner() bool {
	return o.DeliveryPartnerID != ""
}

// Assignment carries the delivery fields written to an order when a partner is bound.
type Assignment struct {
	PartnerID   string
	PartnerName string
	ETAMinutes  int
	StartTime   time.Time
	EndTime     time.Time
}

// StatusChange describes a conditional order status update.
// The write applies only while the order is still in From.
type StatusChange struct {
	OrderID     string
	From        OrderStatus
	To          OrderStatus
	Reason      string
	DeliveredAt *time.Time
}

// DeliveredUpdate describes the order side of a delivery completion.
// Automatic updates apply only to an order bound to PartnerID.
// Final additionally moves a ready order to delivered.
type DeliveredUpdate struct {
	OrderID   string
	PartnerID string
	Final     bool
	At        time.Time
}
