// Package metric defines the instrumentation sink used around decorated
// handlers.
//
// Two primitives are emitted per handler invocation: gauges for the start,
// success and failure transitions, and one latency timer. Noop is the
// default sink; Prometheus is a drop-in backend.
package metric

import (
	"sync"
	"time"
)

// Metric receives handler instrumentation.
type Metric interface {
	Gauge(name, action string, value float64)
	Timer(name, action string, start time.Time)
}

// Noop discards every measurement.
type Noop struct{}

func (Noop) Gauge(string, string, float64)  {}
func (Noop) Timer(string, string, time.Time) {}

// Call is a single measurement captured by Recorder.
type Call struct {
	Kind   string // "gauge" or "timer"
	Name   string
	Action string
	Value  float64
	Start  time.Time
}

// Recorder keeps every measurement in order. It is meant for tests.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
}

func (r *Recorder) Gauge(name, action string, value float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Kind: "gauge", Name: name, Action: action, Value: value})
}

func (r *Recorder) Timer(name, action string, start time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Kind: "timer", Name: name, Action: action, Start: start})
}

// Calls returns a copy of the recorded measurements.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Gauges returns only the gauge measurements.
func (r *Recorder) Gauges() []Call { return r.filter("gauge") }

// Timers returns only the timer measurements.
func (r *Recorder) Timers() []Call { return r.filter("timer") }

func (r *Recorder) filter(kind string) []Call {
	var out []Call
	for _, c := range r.Calls() {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}
