package domain

import "time"

// PartnerStatus represents whether a delivery partner can take an order.
type PartnerStatus string

// List of possible partner statuses
const (
	PartnerIdle PartnerStatus = "idle"
	PartnerBusy PartnerStatus = "busy"
)

// Valid checks if the PartnerStatus is valid
func (s PartnerStatus) Valid() bool {
	return s == PartnerIdle || s == PartnerBusy
}

// Partner represents a delivery partner.
type Partner struct {
	ID              string
	Name            string
	Status          PartnerStatus
	CurrentOrderID  string
	DeliveryEndTime *time.Time
	CreatedAt       time.Time
}

// Consistent reports whether status, current order and deadline agree:
// busy partners carry both, idle partners carry neither.
func (p *Partner) Consistent() bool {
	hasOrder := p.CurrentOrderID != ""
	hasDeadline := p.DeliveryEndTime != nil
	if p.Status == PartnerBusy {
		return hasOrder && hasDeadline
	}
	return p.Status == PartnerIdle && !hasOrder && !hasDeadline
}

// Delivering reports whether the partner is busy with the given order.
func (p *Partner) Delivering(orderID string) bool {
	return p.Status == PartnerBusy && p.CurrentOrderID == orderID
}

// Overdue reports whether a busy partner has a usable deadline that has passed.
// Partners with a missing or zero deadline are never overdue.
func (p *Partner) Overdue(now time.Time) bool {
	if p.Status != PartnerBusy || p.CurrentOrderID == "" {
		return false
	}
	if p.DeliveryEndTime == nil || p.DeliveryEndTime.IsZero() {
		return false
	}
	return !p.DeliveryEndTime.After(now)
}
