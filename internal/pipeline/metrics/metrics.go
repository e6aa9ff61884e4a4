package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for pipeline runs. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	// Permutations produced per app
	Permutations *prometheus.CounterVec

	// Run outcomes by status: "ok", "generate_error", "export_error"
	Outcomes *prometheus.CounterVec

	// Stage latency by stage: "generate", "export"
	StageLatency *prometheus.HistogramVec
}

// New creates the pipeline metrics and registers them with reg. A nil reg
// leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Permutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "permgen_permutations_total",
			Help: "Total input permutations generated by app",
		}, []string{"app"}),

		Outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "permgen_runs_total",
			Help: "Total app runs by outcome",
		}, []string{"status"}),

		StageLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "permgen_stage_duration_seconds",
			Help:    "Duration of pipeline stages",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"stage"}),
	}
}

// AddPermutations records n permutations for app.
func (m *Metrics) AddPermutations(app string, n int) {
	if m != nil {
		m.Permutations.WithLabelValues(app).Add(float64(n))
	}
}

// IncrementOutcome records the outcome of one app run.
func (m *Metrics) IncrementOutcome(status string) {
	if m != nil {
		m.Outcomes.WithLabelValues(status).Inc()
	}
}

// ObserveStage records the duration of a pipeline stage.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m != nil {
		m.StageLatency.WithLabelValues(stage).Observe(d.Seconds())
	}
}
