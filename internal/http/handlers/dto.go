package handlers

import "time"

type lineItemDTO struct {
	MenuID   string `json:"menu_id"`
	Name     string `json:"name"`
	Size     string `json:"size,omitempty"`
	Quantity int    `json:"quantity"`
}

type orderDTO struct {
	ID                  string        `json:"id"`
	RestaurantID        string        `json:"restaurant_id"`
	CustomerID          string        `json:"customer_id"`
	Items               []lineItemDTO `json:"items"`
	Status              string        `json:"status"`
	Reason              string        `json:"reason,omitempty"`
	DeliveryPartnerID   *string       `json:"delivery_partner_id"`
	DeliveryPartnerName string        `json:"delivery_partner_name,omitempty"`
	ETAMinutes          int           `json:"eta_minutes,omitempty"`
	DeliveryStatus      string        `json:"delivery_status,omitempty"`
	DeliveryStartTime   *time.Time    `json:"delivery_start_time,omitempty"`
	DeliveryEndTime     *time.Time    `json:"delivery_end_time,omitempty"`
	DeliveredAt         *time.Time    `json:"delivered_at,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

type placeOrderRequest struct {
	RestaurantID string        `json:"restaurant_id"`
	CustomerID   string        `json:"customer_id"`
	Items        []lineItemDTO `json:"items"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Actor  string `json:"actor,omitempty"`
}

type updateDeliveryStatusRequest struct {
	DeliveryStatus string `json:"delivery_status"`
}

type assignmentDTO struct {
	OrderID     string    `json:"order_id"`
	PartnerID   string    `json:"partner_id"`
	PartnerName string    `json:"partner_name"`
	ETAMinutes  int       `json:"eta_minutes"`
	Deadline    time.Time `json:"delivery_end_time"`
}

type updateResultDTO struct {
	OrderID    string         `json:"order_id"`
	From       string         `json:"from"`
	Status     string         `json:"status"`
	Assignment *assignmentDTO `json:"assignment,omitempty"`
}

type partnerDTO struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Status          string     `json:"status"`
	CurrentOrderID  *string    `json:"current_order_id"`
	DeliveryEndTime *time.Time `json:"delivery_end_time"`
}

type registerPartnerRequest struct {
	Name string `json:"name"`
}
