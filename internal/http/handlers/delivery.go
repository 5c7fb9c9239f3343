package handlers

import (
	"net/http"

	"food-dispatch/internal/domain"
	"food-dispatch/internal/logx"
)

// DeliveryHandler handles the delivery partner side of an order.
type DeliveryHandler struct {
	usecase deliveryUsecase
	logger  logx.Logger
}

// NewDeliveryHandler creates a new DeliveryHandler.
func NewDeliveryHandler(logger logx.Logger, uc deliveryUsecase) *DeliveryHandler {
	return &DeliveryHandler{usecase: uc, logger: logger}
}

// UpdateStatus handles PATCH /delivery/orders/{id}.
// Only {"delivery_status":"delivered"} is accepted.
func (h *DeliveryHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req updateDeliveryStatusRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	res, err := h.usecase.UpdateDeliveryStatus(r.Context(), id, req.DeliveryStatus)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, updateResultToResponse(res))
}

// Reassign handles POST /delivery/orders/{id}/assign for a ready order left without a partner.
func (h *DeliveryHandler) Reassign(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	res, err := h.usecase.Reassign(r.Context(), id)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, assignmentToResponse(res))
}

// PartnerOrders handles GET /delivery/partners/{id}/orders?status=.
func (h *DeliveryHandler) PartnerOrders(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	var status domain.OrderStatus
	if s := r.URL.Query().Get("status"); s != "" {
		parsed, ok := domain.ParseOrderStatus(s)
		if !ok {
			writeError(h.logger, w, r, http.StatusBadRequest, "invalid status")
			return
		}
		status = parsed
	}

	list, err := h.usecase.ListByPartner(r.Context(), id, status)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, ordersToResponse(list))
}
