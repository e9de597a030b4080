// Package metrics records remote-call outcomes and fallback usage.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "codeexplain"

// Recorder receives instrumentation events from the analysis pipeline.
type Recorder interface {
	RemoteCall(feature, outcome string)
	Fallback(feature string)
	Detection(method string)
	Analysis(backend string, elapsed time.Duration)
}

// Nop discards every event.
type Nop struct{}

func (Nop) RemoteCall(string, string)      {}
func (Nop) Fallback(string)                {}
func (Nop) Detection(string)               {}
func (Nop) Analysis(string, time.Duration) {}

// Prometheus records events as Prometheus metrics.
type Prometheus struct {
	remoteCalls *prometheus.CounterVec
	fallbacks   *prometheus.CounterVec
	detections  *prometheus.CounterVec
	analyses    *prometheus.HistogramVec
}

// NewPrometheus registers the collectors with reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		remoteCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_calls_total",
			Help:      "Remote model calls by feature and outcome.",
		}, []string{"feature", "outcome"}),
		fallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Rule-based fallbacks by feature.",
		}, []string{"feature"}),
		detections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detections_total",
			Help:      "Language detections by the stage that answered.",
		}, []string{"method"}),
		analyses: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Wall time of a full analysis.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"backend"}),
	}
}

// RemoteCall implements Recorder.
func (p *Prometheus) RemoteCall(feature, outcome string) {
	p.remoteCalls.WithLabelValues(feature, outcome).Inc()
}

// Fallback implements Recorder.
func (p *Prometheus) Fallback(feature string) {
	p.fallbacks.WithLabelValues(feature).Inc()
}

// Detection implements Recorder.
func (p *Prometheus) Detection(method string) {
	p.detections.WithLabelValues(method).Inc()
}

// Analysis implements Recorder.
func (p *Prometheus) Analysis(backend string, elapsed time.Duration) {
	p.analyses.WithLabelValues(backend).Observe(elapsed.Seconds())
}
