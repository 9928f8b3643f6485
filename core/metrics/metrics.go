// Package metrics exposes Prometheus collectors for reconciliation runs and
// directory calls.
package metrics

import (
	"net/http"

	"customer-sync/core/customer"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "customer_sync"

// Recorder holds the collectors on its own registry.
type Recorder struct {
	registry *prometheus.Registry

	passes         *prometheus.CounterVec
	records        *prometheus.CounterVec
	directoryCalls *prometheus.CounterVec
	snapshotSize   prometheus.Gauge
}

// New creates a Recorder with Go runtime and process collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passes_total",
			Help:      "Reconciliation passes by result.",
		}, []string{"result"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Classified customer records by status.",
		}, []string{"status"}),
		directoryCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "directory_calls_total",
			Help:      "External directory calls by operation and result.",
		}, []string{"op", "result"}),
		snapshotSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_records",
			Help:      "Records tracked by the engine after the last pass.",
		}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.passes,
		r.records,
		r.directoryCalls,
		r.snapshotSize,
	)
	return r
}

// ObservePass records a finished pass and the status of each result.
func (r *Recorder) ObservePass(results []customer.Customer, snapshotSize int, err error) {
	if r == nil {
		return
	}
	if err != nil {
		r.passes.WithLabelValues("error").Inc()
		return
	}
	r.passes.WithLabelValues("ok").Inc()
	for _, c := range results {
		r.records.WithLabelValues(string(c.Status)).Inc()
	}
	r.snapshotSize.Set(float64(snapshotSize))
}

// ObserveDirectoryCall records one directory call.
func (r *Recorder) ObserveDirectoryCall(op string, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.directoryCalls.WithLabelValues(op, result).Inc()
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler returns the HTTP handler serving the registry.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
