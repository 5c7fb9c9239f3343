package orders

import (
	"time"
)

// Event is a single order status event
type Event struct {
	OrderID   string    `json:"order_id"`
	Status    string    `json:"status"`
	Actor     string    `json:"actor,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
