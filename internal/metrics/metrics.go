// Package metrics records dashboard and backend-client activity.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CircuitState mirrors the backend breaker state for reporting.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

// Recorder is what the API client and the dashboard report into.
type Recorder interface {
	RecordAPIRequest(endpoint, outcome string, duration time.Duration)
	RecordCircuitState(state CircuitState)
	RecordStaleResponse(kind string)
	RecordChartRender(chart string, ok bool)
	SetActiveSessions(n int)
}

// NoOp discards everything.
type NoOp struct{}

func (NoOp) RecordAPIRequest(string, string, time.Duration) {}
func (NoOp) RecordCircuitState(CircuitState)                {}
func (NoOp) RecordStaleResponse(string)                     {}
func (NoOp) RecordChartRender(string, bool)                 {}
func (NoOp) SetActiveSessions(int)                          {}

// Collector implements Recorder on a private Prometheus registry.
type Collector struct {
	registry *prometheus.Registry

	apiRequests   *prometheus.CounterVec
	apiLatency    *prometheus.HistogramVec
	circuitState  prometheus.Gauge
	circuitOpens  prometheus.Counter
	staleDropped  *prometheus.CounterVec
	chartRenders  *prometheus.CounterVec
	sessionsGauge prometheus.Gauge
}

// NewCollector registers the dashboard metrics under namespace.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		apiRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Backend API requests by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		apiLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "Backend API request latency",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
			},
			[]string{"endpoint"},
		),
		circuitState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "api_circuit_state",
			Help:      "Backend circuit breaker state (0=closed, 1=open, 2=half-open)",
		}),
		circuitOpens: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_circuit_opens_total",
			Help:      "Times the backend circuit breaker opened",
		}),
		staleDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stale_responses_total",
				Help:      "Responses discarded because a newer request superseded them",
			},
			[]string{"kind"},
		),
		chartRenders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chart_renders_total",
				Help:      "Chart renders by chart id and result",
			},
			[]string{"chart", "result"},
		),
		sessionsGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Dashboard sessions currently held in memory",
		}),
	}

	c.registry.MustRegister(
		c.apiRequests,
		c.apiLatency,
		c.circuitState,
		c.circuitOpens,
		c.staleDropped,
		c.chartRenders,
		c.sessionsGauge,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

func (c *Collector) RecordAPIRequest(endpoint, outcome string, duration time.Duration) {
	c.apiRequests.WithLabelValues(endpoint, outcome).Inc()
	c.apiLatency.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (c *Collector) RecordCircuitState(state CircuitState) {
	c.circuitState.Set(float64(state))
	if state == CircuitOpen {
		c.circuitOpens.Inc()
	}
}

func (c *Collector) RecordStaleResponse(kind string) {
	c.staleDropped.WithLabelValues(kind).Inc()
}

func (c *Collector) RecordChartRender(chart string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	c.chartRenders.WithLabelValues(chart, result).Inc()
}

func (c *Collector) SetActiveSessions(n int) {
	c.sessionsGauge.Set(float64(n))
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
