// Package metrics exposes prometheus collectors fed by server events.
package metrics

import (
	"context"
	"net/http"
	"strconv"

	eventbus "github.com/hanpama/swgraph/internal/eventbus"
	events "github.com/hanpama/swgraph/internal/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	statusSuccess   = "success"
	statusError     = "error"
	statusNotFound  = "not_found"
	statusCancelled = "cancelled"
)

var latencyBuckets = []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	FetchesTotal  *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec

	CacheLookupsTotal *prometheus.CounterVec
}

// New registers the collectors with reg.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "swgraph"
	}
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   latencyBuckets,
			},
			[]string{"method"},
		),
		HTTPRequestsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests currently being processed",
			},
		),
		OperationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "graphql_operations_total",
				Help:      "Total number of GraphQL operations",
			},
			[]string{"type", "status"},
		),
		OperationDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "graphql_operation_duration_seconds",
				Help:      "GraphQL operation latency in seconds",
				Buckets:   latencyBuckets,
			},
			[]string{"type"},
		),
		FetchesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "graphql_fetches_total",
				Help:      "Total number of repository fetches by field",
			},
			[]string{"field", "status"},
		),
		FetchDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "graphql_fetch_duration_seconds",
				Help:      "Repository fetch latency in seconds",
				Buckets:   latencyBuckets,
			},
			[]string{"field"},
		),
		CacheLookupsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Total number of repository cache lookups",
			},
			[]string{"entity", "result"},
		),
	}
}

// Subscribe records server events into m.
func (m *Metrics) Subscribe() (unsubscribe func()) {
	unsubs := []func(){
		eventbus.Subscribe(func(_ context.Context, _ events.HTTPStart) {
			m.HTTPRequestsInFlight.Inc()
		}),
		eventbus.Subscribe(func(_ context.Context, e events.HTTPFinish) {
			m.HTTPRequestsInFlight.Dec()
			m.HTTPRequestsTotal.WithLabelValues(e.Request.Method, strconv.Itoa(e.Status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(e.Request.Method).Observe(e.Duration.Seconds())
		}),
		eventbus.Subscribe(func(_ context.Context, e events.GraphQLFinish) {
			status := statusSuccess
			switch {
			case e.Cancelled:
				status = statusCancelled
			case len(e.Errors) > 0:
				status = statusError
			}
			m.OperationsTotal.WithLabelValues(e.OperationType, status).Inc()
			m.OperationDuration.WithLabelValues(e.OperationType).Observe(e.Duration.Seconds())
		}),
		eventbus.Subscribe(func(_ context.Context, e events.ResolveFinish) {
			field := e.ObjectType + "." + e.Field
			status := statusSuccess
			switch {
			case e.Err != nil:
				status = statusError
			case e.NotFound:
				status = statusNotFound
			}
			m.FetchesTotal.WithLabelValues(field, status).Inc()
			m.FetchDuration.WithLabelValues(field).Observe(e.Duration.Seconds())
		}),
		eventbus.Subscribe(func(_ context.Context, e events.CacheLookup) {
			result := "miss"
			if e.Hit {
				result = "hit"
			}
			m.CacheLookupsTotal.WithLabelValues(e.Entity, result).Inc()
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// Handler serves the collectors of g in the prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
