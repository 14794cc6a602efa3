package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Recorder is a Prometheus implementation of pipeline.Recorder. Each Recorder has its
// own registry so that multiple instances (e.g. in tests) do not collide.
type Recorder struct {
	registry *prometheus.Registry

	runs      *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	active    prometheus.Gauge
	documents prometheus.Counter
	failures  *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Recorder{
		registry: registry,
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docgen_runs_total",
			Help: "Total number of document generation runs by outcome.",
		}, []string{"status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "docgen_run_duration_seconds",
			Help:    "Duration of document generation runs.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"status"}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "docgen_runs_active",
			Help: "Number of document generation runs in progress.",
		}),
		documents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docgen_documents_generated_total",
			Help: "Total number of documents created from the template.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docgen_row_failures_total",
			Help: "Total number of source rows that failed, by pipeline stage.",
		}, []string{"stage"}),
	}

	registry.MustRegister(r.runs)
	registry.MustRegister(r.duration)
	registry.MustRegister(r.active)
	registry.MustRegister(r.documents)
	registry.MustRegister(r.failures)

	return r
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) RunStarted() {
	r.active.Inc()
}

func (r *Recorder) RunCompleted(status string, elapsed time.Duration) {
	r.active.Dec()
	r.runs.WithLabelValues(status).Inc()
	r.duration.WithLabelValues(status).Observe(elapsed.Seconds())
}

func (r *Recorder) DocumentGenerated() {
	r.documents.Inc()
}

func (r *Recorder) RowFailed(stage string) {
	r.failures.WithLabelValues(stage).Inc()
}
