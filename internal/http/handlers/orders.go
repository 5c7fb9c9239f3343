package handlers

import (
	"net/http"
	"strings"

	"food-dispatch/internal/domain"
	"food-dispatch/internal/logx"
)

// OrderHandler serves the order lifecycle endpoints.
type OrderHandler struct {
	usecase orderUsecase
	logger  logx.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(logger logx.Logger, uc orderUsecase) *OrderHandler {
	return &OrderHandler{usecase: uc, logger: logger}
}

// Place handles POST /orders.
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	o, err := h.usecase.Place(r.Context(), req.toModel())
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	w.Header().Set("Location", "/orders/"+o.ID)
	writeJSON(h.logger, w, r, http.StatusCreated, orderToResponse(*o))
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	o, err := h.usecase.Get(r.Context(), id)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, orderToResponse(*o))
}

// ListByRestaurant handles GET /restaurants/{id}/orders.
func (h *OrderHandler) ListByRestaurant(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	list, err := h.usecase.ListByRestaurant(r.Context(), id)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, ordersToResponse(list))
}

// ListByCustomer handles GET /customers/{id}/orders.
// Orders without a delivery status report their order status in its place.
func (h *OrderHandler) ListByCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	list, err := h.usecase.ListByCustomer(r.Context(), id)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	out := ordersToResponse(list)
	for i := range out {
		if out[i].DeliveryStatus == "" {
			out[i].DeliveryStatus = out[i].Status
		}
	}
	writeJSON(h.logger, w, r, http.StatusOK, out)
}

// UpdateStatus handles PUT /orders/{id}/status.
// The actor defaults to the restaurant.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var req updateStatusRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	to, ok := domain.ParseOrderStatus(req.Status)
	if !ok {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid status")
		return
	}
	actor := domain.ActorRestaurant
	if a := strings.ToLower(strings.TrimSpace(req.Actor)); a != "" {
		actor = domain.Actor(a)
	}

	res, err := h.usecase.UpdateStatus(r.Context(), id, to, actor)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, updateResultToResponse(res))
}

// Cancel handles PATCH /orders/{id}/cancel.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	res, err := h.usecase.Cancel(r.Context(), id)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, updateResultToResponse(res))
}
