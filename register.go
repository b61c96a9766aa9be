package invoke

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bjaus/invoke/apperr"
)

// validatable is the interface for payload validation.
// Compatible with github.com/go-ozzo/ozzo-validation/v4.
type validatable interface {
	Validate() error
}

// Func processes a typed payload and returns a typed result.
//
// The type parameters are: T for the input payload, R for the result.
// Register unmarshals the raw event into T and validates it before Call.
//
// Example:
//
//	type FetchChartsFunc struct {
//	    charts *charts.Service
//	}
//
//	func (f *FetchChartsFunc) Call(ctx context.Context, in FetchInput) (*charts.Report, error) {
//	    return f.charts.Run(ctx)
//	}
type Func[T, R any] interface {
	Call(ctx context.Context, payload T) (R, error)
}

// FuncFunc is a function adapter for Func.
type FuncFunc[T, R any] func(ctx context.Context, payload T) (R, error)

// Call implements the Func interface.
func (f FuncFunc[T, R]) Call(ctx context.Context, payload T) (R, error) {
	return f(ctx, payload)
}

// Register adds a typed operation under name.
//
// The raw event is unmarshaled into T; an empty event leaves T at its zero
// value. If T or *T implements Validate() error, the payload is validated.
// Unmarshal and validation failures are reported as apperr.ErrInvalidInput
// errors whose detail carries the cause.
//
// This is a package-level function (not a method) due to Go generics limitations:
// methods cannot have type parameters independent of the receiver.
//
// Example:
//
//	invoke.Register(h, "fetch", &FetchChartsFunc{charts: svc})
func Register[T, R any](h *Handler, name string, fn Func[T, R]) {
	h.Handle(name, func(ctx context.Context, event json.RawMessage) (any, error) {
		var payload T
		if len(event) > 0 {
			if err := json.Unmarshal(event, &payload); err != nil {
				return nil, apperr.InvalidInput("").WithDetail(fmt.Sprintf("unmarshal payload: %v", err))
			}
		}

		if v, ok := any(payload).(validatable); ok {
			if err := v.Validate(); err != nil {
				return nil, apperr.InvalidInput("").WithDetail(fmt.Sprintf("validate payload: %v", err))
			}
		} else if v, ok := any(&payload).(validatable); ok {
			if err := v.Validate(); err != nil {
				return nil, apperr.InvalidInput("").WithDetail(fmt.Sprintf("validate payload: %v", err))
			}
		}

		return fn.Call(ctx, payload)
	})
}

// RegisterFunc is a convenience function for registering a typed function.
//
// Example:
//
//	invoke.RegisterFunc(h, "ping", func(ctx context.Context, p PingPayload) (string, error) {
//	    return "pong", nil
//	})
func RegisterFunc[T, R any](h *Handler, name string, fn func(ctx context.Context, payload T) (R, error)) {
	Register(h, name, FuncFunc[T, R](fn))
}
