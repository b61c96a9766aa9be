// Package invoke provides the handler plumbing for AWS Lambda functions:
// event source detection and an instrumented wrapper around named
// operations.
//
// # Quick Start
//
// Create a handler with a logger and a metrics sink, register operations,
// and hand a decorated operation to the Lambda runtime:
//
//	log, err := logger.New(logger.Options{Name: "charts", Level: logger.LevelDebug})
//	if err != nil {
//	    return err
//	}
//
//	h := invoke.NewHandler(log, metric.Noop{})
//
//	h.Handle("default", func(ctx context.Context, event json.RawMessage) (any, error) {
//	    return svc.Run(ctx)
//	})
//
//	lambda.Start(h.Decorate("default"))
//
// # Decorated Operations
//
// Operations are registered under a stable name, either as raw operations
// with Handle or as typed functions with Register and RegisterFunc:
//
//	invoke.RegisterFunc(h, "chart", func(ctx context.Context, in ChartRequest) (*Chart, error) {
//	    return charts.Lookup(ctx, in.ICAO)
//	})
//
// Typed registration unmarshals the event into the payload type and
// validates it when the type implements Validate() error. Both failures are
// reported as apperr.ErrInvalidInput errors.
//
// Decorate(name) wraps the named operation. Every call:
//
//   - logs "<name> - Start" at trace level and emits gauge (name, "start", 1)
//   - runs the operation exactly once, recovering panics as errors
//   - on success logs "<name> - Complete" at debug level and emits
//     gauge (name, "success", 1)
//   - on failure logs "<name> - Error" at error level, emits
//     gauge (name, "failure", 1) and normalizes the error with apperr.Convert
//   - always emits timer (name, "latency", start) before returning
//
// Callers therefore only ever see *apperr.Error values: application errors
// pass through unchanged, anything else is wrapped with a generic user-safe
// message while the original text stays in the error's detail and the logs.
//
// There is no retry, batching or timeout handling. Deadlines come from the
// context supplied by the runtime.
//
// # Event Sources
//
// DetectEventSource classifies a raw payload into one of the EventSource
// values by checking its shape against an ordered list of rules:
//
//	switch invoke.DetectEventSource(event) {
//	case invoke.EventSourceScheduled:
//	    return refresh(ctx)
//	case invoke.EventSourceUnknown:
//	    return nil, apperr.NotImplemented("")
//	}
//
// The first matching rule wins. Some shapes overlap (a CloudFront record is
// also a "Records" array), so the order is fixed. Payloads that are not valid
// JSON or match nothing classify as EventSourceUnknown; classification never
// fails.
//
// Route builds an operation that dispatches on the detected source.
//
// # Inspector and View
//
// Rules are built from composable Discriminators evaluated against a View,
// which gives format-agnostic field access:
//
//	type View interface {
//	    HasField(path string) bool
//	    GetString(path string) (string, bool)
//	    GetBytes(path string) ([]byte, bool)
//	    Truthy(path string) bool
//	    Len(path string) int
//	}
//
// JSONInspector backs views with gjson paths ("Records.0.eventSource").
// Provided discriminators:
//   - HasFields: Check for field presence
//   - Truthy: Check fields are present and not null, false, 0 or ""
//   - NonEmpty: Check for a non-empty array
//   - FieldEquals: Check field value
//   - FieldHasPrefix: Check string prefix
//   - And: All discriminators must match
//   - Or: Any discriminator must match
//
// # Hooks
//
// Hooks add behavior around every decorated call without touching the
// operations:
//
//	h := invoke.NewHandler(log, m,
//	    invoke.WithOnFailure(func(ctx context.Context, name string, err error, d time.Duration) {
//	        alerts.Notify(ctx, name, err)
//	    }),
//	)
//
// Available options:
//   - WithOnStart: Called before the operation runs
//   - WithOnSuccess: Called after the operation succeeds
//   - WithOnFailure: Called after the operation fails, with the raw error
//   - WithFallbackMessage: User-safe message for converted errors
//   - WithInspector: Inspector used by Handler.DetectEventSource
//
// # Thread Safety
//
// Handler is safe for concurrent use after configuration is complete. Do not
// call Handle or Register after the first invocation.
package invoke
