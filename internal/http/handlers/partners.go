package handlers

import (
	"net/http"

	"food-dispatch/internal/logx"
)

// PartnerHandler serves the delivery partner registry.
type PartnerHandler struct {
	usecase partnerUsecase
	logger  logx.Logger
}

// NewPartnerHandler creates a new PartnerHandler.
func NewPartnerHandler(logger logx.Logger, uc partnerUsecase) *PartnerHandler {
	return &PartnerHandler{usecase: uc, logger: logger}
}

// Register handles POST /delivery/partners.
func (h *PartnerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerPartnerRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	p, err := h.usecase.Register(r.Context(), req.Name)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	w.Header().Set("Location", "/delivery/partners/"+p.ID)
	writeJSON(h.logger, w, r, http.StatusCreated, partnerToResponse(*p))
}

// Get handles GET /delivery/partners/{id}.
func (h *PartnerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	p, err := h.usecase.Get(r.Context(), id)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, partnerToResponse(*p))
}

// List handles GET /delivery/partners.
func (h *PartnerHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.usecase.List(r.Context())
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, partnersToResponse(list))
}
