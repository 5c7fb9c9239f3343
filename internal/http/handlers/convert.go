package handlers

import (
	"food-dispatch/internal/domain"
	"food-dispatch/internal/service/orders"
)

func (r placeOrderRequest) toModel() orders.PlaceRequest {
	items := make([]domain.LineItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, domain.LineItem{
			MenuID:   it.MenuID,
			Name:     it.Name,
			Size:     it.Size,
			Quantity: it.Quantity,
		})
	}
	return orders.PlaceRequest{
		RestaurantID: r.RestaurantID,
		CustomerID:   r.CustomerID,
		Items:        items,
	}
}

func orderToResponse(o domain.Order) orderDTO {
	items := make([]lineItemDTO, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, lineItemDTO(it))
	}
	out := orderDTO{
		ID:                  o.ID,
		RestaurantID:        o.RestaurantID,
		CustomerID:          o.CustomerID,
		Items:               items,
		Status:              string(o.Status),
		Reason:              o.Reason,
		DeliveryPartnerName: o.DeliveryPartnerName,
		ETAMinutes:          o.ETAMinutes,
		DeliveryStatus:      string(o.DeliveryStatus),
		DeliveryStartTime:   o.DeliveryStartTime,
		DeliveryEndTime:     o.DeliveryEndTime,
		DeliveredAt:         o.DeliveredAt,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
	if o.HasPartner() {
		id := o.DeliveryPartnerID
		out.DeliveryPartnerID = &id
	}
	return out
}

func ordersToResponse(list []domain.Order) []orderDTO {
	out := make([]orderDTO, 0, len(list))
	for _, o := range list {
		out = append(out, orderToResponse(o))
	}
	return out
}

func assignmentToResponse(a domain.AssignResult) assignmentDTO {
	return assignmentDTO{
		OrderID:     a.OrderID,
		PartnerID:   a.PartnerID,
		PartnerName: a.PartnerName,
		ETAMinutes:  a.ETAMinutes,
		Deadline:    a.Deadline,
	}
}

func updateResultToResponse(res orders.UpdateResult) updateResultDTO {
	out := updateResultDTO{
		OrderID: res.OrderID,
		From:    string(res.From),
		Status:  string(res.To),
	}
	if res.Assignment != nil {
		a := assignmentToResponse(*res.Assignment)
		out.Assignment = &a
	}
	return out
}

func partnerToResponse(p domain.Partner) partnerDTO {
	out := partnerDTO{
		ID:              p.ID,
		Name:            p.Name,
		Status:          string(p.Status),
		DeliveryEndTime: p.DeliveryEndTime,
	}
	if p.CurrentOrderID != "" {
		id := p.CurrentOrderID
		out.CurrentOrderID = &id
	}
	return out
}

func partnersToResponse(list []domain.Partner) []partnerDTO {
	out := make([]partnerDTO, 0, len(list))
	for _, p := range list {
		out = append(out, partnerToResponse(p))
	}
	return out
}
