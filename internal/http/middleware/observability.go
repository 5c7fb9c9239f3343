package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"food-dispatch/internal/logx"
)

const unmatchedRoute = "unmatched"

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_http_requests_total",
			Help: "HTTP requests by API surface, route pattern and status class.",
		},
		[]string{"surface", "method", "route", "status_class"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dispatch_http_request_duration_seconds",
			Help:    "HTTP request latency by API surface and route pattern.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"surface", "method", "route"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal, httpRequestDuration)
}

// Observability records per-route request metrics and writes one log line per request.
// Unrouted requests share a single label so probing unknown paths cannot grow the series.
func Observability(logger logx.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			took := time.Since(start)
			route := routePattern(r)
			surface := surfaceOf(route)
			status := ww.Status()

			httpRequestsTotal.WithLabelValues(surface, r.Method, route, statusClass(status)).Inc()
			httpRequestDuration.WithLabelValues(surface, r.Method, route).Observe(took.Seconds())

			fields := []logx.Field{
				logx.String("req_id", chimw.GetReqID(r.Context())),
				logx.String("surface", surface),
				logx.String("method", r.Method),
				logx.String("route", route),
				logx.Int("status", status),
				logx.Duration("duration", took),
			}
			if id := chi.URLParam(r, "id"); id != "" {
				fields = append(fields, logx.String("resource_id", id))
			}
			if status >= http.StatusInternalServerError {
				logger.Warn("http request failed", fields...)
				return
			}
			logger.Info("http request", fields...)
		})
	}
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" && p != "/*" {
			return p
		}
	}
	return unmatchedRoute
}

// surfaceOf maps a route pattern to the API area it belongs to:
// orders, restaurants, customers, delivery, or ops for probes and metrics.
func surfaceOf(route string) string {
	if route == unmatchedRoute {
		return unmatchedRoute
	}
	first, _, _ := strings.Cut(strings.TrimPrefix(route, "/"), "/")
	switch first {
	case "orders", "restaurants", "customers", "delivery":
		return first
	case "ping", "healthcheck", "metrics":
		return "ops"
	default:
		return "other"
	}
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
