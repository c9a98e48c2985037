// Package metrics exposes the daemon's Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"warmtest/internal/domain"
)

const namespace = "warmtest"

// Run outcomes
const (
	OutcomePassed = "passed"
	OutcomeFailed = "failed"
	OutcomeError  = "error"
)

// Metrics holds the daemon's collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
	tests         *prometheus.CounterVec
	cycles        *prometheus.CounterVec
	cycleDuration prometheus.Histogram
	restarts      prometheus.Counter
	unregistered  prometheus.Counter
}

// New registers the collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Test runs served, by outcome",
		}, []string{"outcome"}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of test runs including load time",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		tests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tests_total",
			Help:      "Test cases executed, by result",
		}, []string{"result"}),
		cycles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reclaim_cycles_total",
			Help:      "Reclamation cycles, by outcome",
		}, []string{"outcome"}),
		cycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reclaim_cycle_duration_seconds",
			Help:      "Duration of reclamation cycles",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		restarts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reclaim_worker_restarts_total",
			Help:      "Times the reclamation worker was found dead and restarted",
		}),
		unregistered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entities_unregistered_total",
			Help:      "Test suites unregistered by reclamation",
		}),
	}
}

// Registry returns the registry the collectors live in
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RunFinished records a served run
func (m *Metrics) RunFinished(d time.Duration, s domain.Summary, err error) {
	if m == nil {
		return
	}
	outcome := OutcomePassed
	switch {
	case err != nil:
		outcome = OutcomeError
	case !s.Passed():
		outcome = OutcomeFailed
	}
	m.runs.WithLabelValues(outcome).Inc()
	m.runDuration.Observe(d.Seconds())

	passed := s.Tests - s.Failures - s.Errors
	if passed > 0 {
		m.tests.WithLabelValues("pass").Add(float64(passed))
	}
	if s.Failures > 0 {
		m.tests.WithLabelValues("failure").Add(float64(s.Failures))
	}
	if s.Errors > 0 {
		m.tests.WithLabelValues("error").Add(float64(s.Errors))
	}
}

// CycleFinished records a reclamation cycle
func (m *Metrics) CycleFinished(d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.cycles.WithLabelValues(outcome).Inc()
	m.cycleDuration.Observe(d.Seconds())
}

// WorkerRestarted records a restart of a dead reclamation worker
func (m *Metrics) WorkerRestarted() {
	if m == nil {
		return
	}
	m.restarts.Inc()
}

// Unregistered records suites removed from the registry
func (m *Metrics) Unregistered(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.unregistered.Add(float64(n))
}
