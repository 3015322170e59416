package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for BookGate.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	DatasetBooks    prometheus.Gauge
	Reloads         *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics with the given registry,
// along with the standard Go and process collectors.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bookgate",
				Name:      "requests_total",
				Help:      "Total number of API requests processed",
			},
			[]string{"method", "status"}, // status=ok/error
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "bookgate",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		DatasetBooks: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: "bookgate",
				Name:      "dataset_books",
				Help:      "Number of books in the active snapshot",
			},
		),
		Reloads: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bookgate",
				Name:      "dataset_reloads_total",
				Help:      "Total dataset reload attempts",
			},
			[]string{"result"}, // result=ok/error
		),
	}
}
