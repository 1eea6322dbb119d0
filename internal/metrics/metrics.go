// Package metrics holds the Prometheus collectors for rendering and synthesis.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Synthesis request outcomes.
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultError = "error"
)

var (
	// SynthesisRequests counts synthesis requests by cache outcome.
	SynthesisRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_synthesis_requests_total",
			Help: "Synthesis requests by result (hit, miss, error).",
		},
		[]string{"result"},
	)

	ClipsRendered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_clips_rendered_total",
			Help: "Clips rendered into sample buffers.",
		},
	)

	SamplesRendered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_samples_rendered_total",
			Help: "Samples produced at the source rate.",
		},
	)

	RenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "broadcast_render_duration_seconds",
			Help:    "Wall-clock time of a full render pass.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)
)

// ObserveSynthesis records one synthesis request outcome.
func ObserveSynthesis(result string) {
	SynthesisRequests.WithLabelValues(result).Inc()
}

// ObserveRender records a finished render pass.
func ObserveRender(clips, samples int, elapsed time.Duration) {
	ClipsRendered.Add(float64(clips))
	SamplesRendered.Add(float64(samples))
	RenderDuration.Observe(elapsed.Seconds())
}
