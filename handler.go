package invoke

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/tidwall/gjson"

	"github.com/bjaus/invoke/apperr"
	"github.com/bjaus/invoke/logger"
	"github.com/bjaus/invoke/metric"
)

// Logger is the subset of *logger.Logger used by Handler.
type Logger interface {
	Trace(msg string, fields logger.Fields)
	Debug(msg string, fields logger.Fields)
	Error(msg string, fields logger.Fields)
}

// Operation is a named unit of work run by a decorated function.
type Operation func(ctx context.Context, event json.RawMessage) (any, error)

// Handler owns a set of named operations and wraps them with logging,
// metrics and error normalization.
//
// Usage:
//  1. Create a handler with NewHandler
//  2. Register operations with Handle, Register or RegisterFunc
//  3. Hand Decorate(name) to the function runtime
//
// Handler is safe for concurrent use after configuration. Do not register
// operations after the first invocation.
type Handler struct {
	logger    Logger
	metric    metric.Metric
	inspector Inspector
	fallback  string
	ops       map[string]Operation
	hooks     hooks
}

// NewHandler creates a Handler. A nil metric uses metric.Noop.
//
// Example:
//
//	h := invoke.NewHandler(log, metric.Noop{},
//	    invoke.WithOnFailure(func(ctx context.Context, name string, err error, d time.Duration) {
//	        alerts.Notify(ctx, name, err)
//	    }),
//	)
func NewHandler(log Logger, m metric.Metric, opts ...Option) *Handler {
	if m == nil {
		m = metric.Noop{}
	}
	h := &Handler{
		logger:    log,
		metric:    m,
		inspector: JSONInspector(),
		fallback:  apperr.DefaultMessage,
		ops:       make(map[string]Operation),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle registers op under name, replacing any previous registration.
func (h *Handler) Handle(name string, op Operation) {
	h.ops[name] = op
}

// Operations returns the registered operation names in sorted order.
func (h *Handler) Operations() []string {
	return slices.Sorted(maps.Keys(h.ops))
}

// DetectEventSource classifies raw using the handler's inspector.
func (h *Handler) DetectEventSource(raw []byte) EventSource {
	return detectEventSource(h.inspector, raw)
}

// Decorate returns a function that runs the operation registered under
// name with start, success and failure telemetry.
//
// Each call runs the operation exactly once:
//  1. Trace log "<name> - Start" and gauge (name, "start", 1)
//  2. Run the operation; a panic is recovered as an error
//  3. On success: debug log "<name> - Complete", gauge (name, "success", 1)
//  4. On failure: error log "<name> - Error", gauge (name, "failure", 1),
//     and the error is converted with apperr.Convert
//  5. Always: timer (name, "latency", start) before returning
//
// An unregistered name fails every call with apperr.ErrNotImplemented.
//
// Example:
//
//	lambda.Start(h.Decorate("default"))
func (h *Handler) Decorate(name string) func(ctx context.Context, event json.RawMessage) (any, error) {
	return func(ctx context.Context, event json.RawMessage) (any, error) {
		start := time.Now()
		defer h.metric.Timer(name, "latency", start)

		lc, _ := lambdacontext.FromContext(ctx)
		data := logger.Fields{"event": eventField(event), "context": lc}

		h.logger.Trace(name+" - Start", requestFields(lc, logger.Fields{"data": data}))
		h.metric.Gauge(name, "start", 1)
		h.callOnStart(ctx, name)

		result, err := h.run(ctx, name, event)
		duration := time.Since(start)

		if err != nil {
			h.logger.Error(name+" - Error", requestFields(lc, logger.Fields{"error": err, "data": data}))
			h.metric.Gauge(name, "failure", 1)
			h.callOnFailure(ctx, name, err, duration)
			return nil, apperr.Convert(err, h.fallback)
		}

		h.logger.Debug(name+" - Complete", requestFields(lc, logger.Fields{
			"data": logger.Fields{"result": result, "event": data["event"], "context": lc},
		}))
		h.metric.Gauge(name, "success", 1)
		h.callOnSuccess(ctx, name, result, duration)
		return result, nil
	}
}

// run looks up and calls the named operation.
func (h *Handler) run(ctx context.Context, name string, event json.RawMessage) (result any, err error) {
	op, found := h.ops[name]
	if !found {
		return nil, apperr.NotImplemented(fmt.Sprintf("operation %q is not registered", name))
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("operation %s panicked: %v", name, r)
		}
	}()

	return op(ctx, event)
}

// eventField returns a log-safe representation of the raw event.
func eventField(event json.RawMessage) any {
	if len(event) == 0 {
		return nil
	}
	if !gjson.ValidBytes(event) {
		return string(event)
	}
	return event
}

// requestFields adds the Lambda request id to fields so records carry it as
// "rrid".
func requestFields(lc *lambdacontext.LambdaContext, fields logger.Fields) logger.Fields {
	if lc != nil && lc.AwsRequestID != "" {
		fields["x-rrid"] = lc.AwsRequestID
	}
	return fields
}
