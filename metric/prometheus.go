package metric

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus records handler measurements as Prometheus collectors labelled
// by handler and action.
type Prometheus struct {
	gauges    *prometheus.GaugeVec
	durations *prometheus.HistogramVec
}

// NewPrometheus creates the collectors under namespace and registers them
// with reg.
func NewPrometheus(reg prometheus.Registerer, namespace string) (*Prometheus, error) {
	p := &Prometheus{
		gauges: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "handler_gauge",
				Help:      "Handler lifecycle transitions (start, success, failure)",
			},
			[]string{"handler", "action"},
		),
		durations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "handler_duration_seconds",
				Help:      "Duration of handler invocations in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"handler", "action"},
		),
	}

	for _, c := range []prometheus.Collector{p.gauges, p.durations} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return p, nil
}

// Gauge adds value to the handler/action gauge.
func (p *Prometheus) Gauge(name, action string, value float64) {
	p.gauges.WithLabelValues(name, action).Add(value)
}

// Timer observes the time elapsed since start.
func (p *Prometheus) Timer(name, action string, start time.Time) {
	p.durations.WithLabelValues(name, action).Observe(time.Since(start).Seconds())
}
