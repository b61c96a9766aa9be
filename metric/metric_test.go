package metric

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Metric = Noop{}
	_ Metric = (*Recorder)(nil)
	_ Metric = (*Prometheus)(nil)
)

func TestNoop(t *testing.T) {
	var m Metric = Noop{}

	assert.NotPanics(t, func() {
		m.Gauge("op", "start", 1)
		m.Timer("op", "latency", time.Now())
	})
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	start := time.Now()

	r.Gauge("op", "start", 1)
	r.Timer("op", "latency", start)
	r.Gauge("op", "success", 1)

	require.Len(t, r.Calls(), 3)
	assert.Equal(t, []Call{
		{Kind: "gauge", Name: "op", Action: "start", Value: 1},
		{Kind: "gauge", Name: "op", Action: "success", Value: 1},
	}, r.Gauges())
	assert.Equal(t, []Call{
		{Kind: "timer", Name: "op", Action: "latency", Start: start},
	}, r.Timers())
}

func TestPrometheus(t *testing.T) {
	t.Run("accumulates gauges per label", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		p, err := NewPrometheus(reg, "charts")
		require.NoError(t, err)

		p.Gauge("default", "start", 1)
		p.Gauge("default", "start", 1)
		p.Gauge("default", "failure", 1)

		assert.Equal(t, 2.0, testutil.ToFloat64(p.gauges.WithLabelValues("default", "start")))
		assert.Equal(t, 1.0, testutil.ToFloat64(p.gauges.WithLabelValues("default", "failure")))
	})

	t.Run("observes latency", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		p, err := NewPrometheus(reg, "charts")
		require.NoError(t, err)

		p.Timer("default", "latency", time.Now().Add(-50*time.Millisecond))

		assert.Equal(t, 1, testutil.CollectAndCount(p.durations, "charts_handler_duration_seconds"))
	})

	t.Run("fails on duplicate registration", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		_, err := NewPrometheus(reg, "charts")
		require.NoError(t, err)

		_, err = NewPrometheus(reg, "charts")

		assert.Error(t, err)
	})
}
