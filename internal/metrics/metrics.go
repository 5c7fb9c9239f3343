package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"food-dispatch/internal/domain"
)

// Assignment results.
const (
	AssignAssigned       = "assigned"
	AssignNoPartner      = "no_partner"
	AssignPartialFailure = "partial_failure"
	AssignError          = "error"
)

// Dispatch holds the collectors of the assignment engine, the completion executor and the sweeper.
type Dispatch struct {
	assignments   *prometheus.CounterVec
	completions   *prometheus.CounterVec
	failures      *prometheus.CounterVec
	sweepDuration prometheus.Histogram
	sweepDue      prometheus.Counter
	timersPending prometheus.Gauge
}

// NewDispatch creates unregistered dispatch collectors.
func NewDispatch() *Dispatch {
	return &Dispatch{
		assignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "delivery_assignments_total",
			Help: "Total number of assignment attempts by result",
		}, []string{"result"}),
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "delivery_completions_total",
			Help: "Total number of completion attempts by trigger and outcome",
		}, []string{"trigger", "outcome"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "delivery_completion_failures_total",
			Help: "Total number of completion attempts that failed with a store error",
		}, []string{"trigger"}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "delivery_sweep_duration_seconds",
			Help:    "Duration of reconciliation sweeps",
			Buckets: prometheus.DefBuckets,
		}),
		sweepDue: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "delivery_sweep_overdue_total",
			Help: "Total number of overdue partners found by sweeps",
		}),
		timersPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "delivery_timers_pending",
			Help: "Number of armed one-shot completion timers",
		}),
	}
}

// Collectors returns every collector for registration.
func (d *Dispatch) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		d.assignments, d.completions, d.failures, d.sweepDuration, d.sweepDue, d.timersPending,
	}
}

// Assignment counts one assignment attempt.
func (d *Dispatch) Assignment(result string) {
	d.assignments.WithLabelValues(result).Inc()
}

// Completion counts one finished completion.
func (d *Dispatch) Completion(trigger domain.Trigger, outcome domain.CompletionOutcome) {
	d.completions.WithLabelValues(string(trigger), string(outcome)).Inc()
}

// CompletionFailed counts one completion that hit a store error.
func (d *Dispatch) CompletionFailed(trigger domain.Trigger) {
	d.failures.WithLabelValues(string(trigger)).Inc()
}

// Sweep records one sweep run.
func (d *Dispatch) Sweep(took time.Duration, res domain.SweepResult) {
	d.sweepDuration.Observe(took.Seconds())
	d.sweepDue.Add(float64(res.Due))
}

// TimersPending sets the number of armed timers.
func (d *Dispatch) TimersPending(n int) {
	d.timersPending.Set(float64(n))
}

// NewNotificationsFailedTotal returns a counter of order notifications that could not be published
func NewNotificationsFailedTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_notifications_failed_total",
		Help: "Total number of order notifications that could not be published",
	})
}

// Register registers c and returns it, or the collector already registered under the same descriptor.
func Register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Register registers every dispatch collector, reusing ones already present in reg.
func (d *Dispatch) Register(reg prometheus.Registerer) error {
	var err error
	if d.assignments, err = Register(reg, d.assignments); err != nil {
		return err
	}
	if d.completions, err = Register(reg, d.completions); err != nil {
		return err
	}
	if d.failures, err = Register(reg, d.failures); err != nil {
		return err
	}
	if d.sweepDuration, err = Register(reg, d.sweepDuration); err != nil {
		return err
	}
	if d.sweepDue, err = Register(reg, d.sweepDue); err != nil {
		return err
	}
	d.timersPending, err = Register(reg, d.timersPending)
	return err
}
