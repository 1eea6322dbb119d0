package metrics_test

import (
	"testing"
	"time"

	"github.com/book-expert/broadcast-service/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, counter prometheus.Counter) float64 {
	t.Helper()

	var metric dto.Metric

	require.NoError(t, counter.Write(&metric))

	return metric.GetCounter().GetValue()
}

func TestObserveSynthesis(t *testing.T) {
	t.Parallel()

	before := counterValue(t, metrics.SynthesisRequests.WithLabelValues(metrics.ResultError))

	metrics.ObserveSynthesis(metrics.ResultError)

	after := counterValue(t, metrics.SynthesisRequests.WithLabelValues(metrics.ResultError))
	assert.GreaterOrEqual(t, after, before+1)
}

func TestObserveRender(t *testing.T) {
	t.Parallel()

	clipsBefore := counterValue(t, metrics.ClipsRendered)
	samplesBefore := counterValue(t, metrics.SamplesRendered)

	metrics.ObserveRender(3, 48_000, 20*time.Millisecond)

	assert.GreaterOrEqual(t, counterValue(t, metrics.ClipsRendered), clipsBefore+3)
	assert.GreaterOrEqual(t, counterValue(t, metrics.SamplesRendered), samplesBefore+48_000)
}
