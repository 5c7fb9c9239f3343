package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"food-dispatch/internal/http/handlers"
	obs "food-dispatch/internal/http/middleware"
	"food-dispatch/internal/logx"
)

// New constructs a chi-based http.Handler with base middleware and routes.
func New(
	h *handlers.Handlers,
	orders *handlers.OrderHandler,
	delivery *handlers.DeliveryHandler,
	partners *handlers.PartnerHandler,
	logger logx.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(obs.Observability(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Second))

	r.Get("/ping", h.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(h.HealthcheckHead))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", orders.Place)
		r.Get("/{id}", orders.Get)
		r.Put("/{id}/status", orders.UpdateStatus)
		r.Patch("/{id}/cancel", orders.Cancel)
	})
	r.Get("/restaurants/{id}/orders", orders.ListByRestaurant)
	r.Get("/customers/{id}/orders", orders.ListByCustomer)

	r.Route("/delivery", func(r chi.Router) {
		r.Patch("/orders/{id}", delivery.UpdateStatus)
		r.Post("/orders/{id}/assign", delivery.Reassign)

		r.Get("/partners", partners.List)
		r.Post("/partners", partners.Register)
		r.Get("/partners/{id}", partners.Get)
		r.Get("/partners/{id}/orders", delivery.PartnerOrders)
	})

	r.NotFound(http.HandlerFunc(h.NotFound))

	return r
}
