// Package metrics exposes rule engine activity to Prometheus
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Ronei-rcm/rare-toy-companion-final-8040-sub010/internal/logger"
	"github.com/Ronei-rcm/rare-toy-companion-final-8040-sub010/rules"
)

const namespace = "automation"

// Collector records engine and HTTP metrics on its own registry.
// It implements rules.Recorder.
type Collector struct {
	registry *prometheus.Registry

	eventsProcessed *prometheus.CounterVec
	rulesFired      *prometheus.CounterVec
	actions         *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

var _ rules.Recorder = (*Collector)(nil)

// NewCollector creates a collector with the engine, HTTP, logger and Go
// runtime metrics registered
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		eventsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_processed_total",
				Help:      "Total number of events processed by the rule engine.",
			},
			[]string{"trigger", "result"},
		),
		rulesFired: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rules_fired_total",
				Help:      "Total number of rules whose actions were executed.",
			},
			[]string{"trigger"},
		),
		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "actions_total",
				Help:      "Total number of rule actions by type and outcome.",
			},
			[]string{"type", "status"},
		),
		processDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "process_duration_seconds",
				Help:      "Duration of ProcessEvent calls.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
			},
			[]string{"trigger"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
			},
			[]string{"method", "route"},
		),
	}

	c.registry.MustRegister(
		c.eventsProcessed,
		c.rulesFired,
		c.actions,
		c.processDuration,
		c.httpRequests,
		c.httpDuration,
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "log",
			Name:      "errors_total",
			Help:      "Errors logged, counted before sampling.",
		}, func() float64 { return float64(logger.TotalErrors.Load()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "log",
			Name:      "warnings_total",
			Help:      "Warnings logged, counted before sampling.",
		}, func() float64 { return float64(logger.TotalWarnings.Load()) }),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return c
}

// Registry returns the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// EventProcessed records one ProcessEvent call
func (c *Collector) EventProcessed(trigger rules.Trigger, success bool, rulesExecuted int, elapsed time.Duration) {
	result := "success"
	if !success {
		result = "failure"
	}
	t := triggerLabel(trigger)
	c.eventsProcessed.WithLabelValues(t, result).Inc()
	c.rulesFired.WithLabelValues(t).Add(float64(rulesExecuted))
	c.processDuration.WithLabelValues(t).Observe(elapsed.Seconds())
}

// ActionExecuted records the outcome of one rule action
func (c *Collector) ActionExecuted(action rules.ActionType, status rules.ActionStatus) {
	c.actions.WithLabelValues(string(action), string(status)).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Middleware records HTTP request counts and latency labelled by chi route
// pattern. Requests for /metrics are not recorded.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := routePattern(r)
		method := strings.ToUpper(r.Method)
		c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		c.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	})
}

// routePattern keeps label cardinality bounded by using the matched pattern
// instead of the raw path
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// triggerLabel bounds the trigger label to the known triggers
func triggerLabel(t rules.Trigger) string {
	if t.Valid() {
		return string(t)
	}
	return "unknown"
}
