// Package telemetry exposes Prometheus metrics for the HTTP surface, the
// stored procedures and the size of the catalogue.
package telemetry

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "filmvault"

// CountFunc reports the current row count of each catalogue table. It is
// called on every scrape.
type CountFunc func(ctx context.Context) (map[string]int64, error)

// Metrics owns a private registry and the collectors registered on it. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	procCalls    *prometheus.CounterVec
	procDuration *prometheus.HistogramVec
}

// New creates the metrics and registers them together with the Go runtime
// and process collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~2.5s
		}, []string{"method", "route"}),
		procCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "procedures",
			Name:      "calls_total",
			Help:      "Total number of stored procedure calls.",
		}, []string{"procedure", "status"}),
		procDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "procedures",
			Name:      "call_duration_seconds",
			Help:      "Duration of stored procedure calls.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~2s
		}, []string{"procedure"}),
	}

	m.Registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.procCalls,
		m.procDuration,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latencies. Requests are labelled by
// chi route pattern so ids in the path do not explode cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := routePattern(r)
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// ObserveProcedure records one stored procedure call.
func (m *Metrics) ObserveProcedure(name string, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.procCalls.WithLabelValues(name, status).Inc()
	m.procDuration.WithLabelValues(name).Observe(d.Seconds())
}

// ProcedureCalls returns the call counter of one procedure and status.
func (m *Metrics) ProcedureCalls(name, status string) prometheus.Counter {
	return m.procCalls.WithLabelValues(name, status)
}

// RegisterCatalog exports the row count of every catalogue table as
// filmvault_catalog_rows{table="..."}.
func (m *Metrics) RegisterCatalog(fn CountFunc) error {
	if m == nil {
		return nil
	}
	return m.Registry.Register(&catalogCollector{count: fn})
}

type catalogCollector struct {
	count CountFunc
}

var catalogRowsDesc = prometheus.NewDesc(
	prometheus.BuildFQName(namespace, "catalog", "rows"),
	"Number of rows per catalogue table.",
	[]string{"table"}, nil,
)

func (c *catalogCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- catalogRowsDesc
}

func (c *catalogCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	counts, err := c.count(ctx)
	if err != nil {
		ch <- prometheus.NewInvalidMetric(catalogRowsDesc, err)
		return
	}
	for table, n := range counts {
		ch <- prometheus.MustNewConstMetric(catalogRowsDesc, prometheus.GaugeValue, float64(n), table)
	}
}
