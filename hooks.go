package invoke

import (
	"context"
	"time"
)

// OnStartFunc is called after the start telemetry and before the operation
// runs.
type OnStartFunc func(ctx context.Context, name string)

// OnSuccessFunc is called after the operation returns without error.
type OnSuccessFunc func(ctx context.Context, name string, result any, duration time.Duration)

// OnFailureFunc is called after the operation fails. err is the error as
// returned by the operation, before normalization.
type OnFailureFunc func(ctx context.Context, name string, err error, duration time.Duration)

// hooks holds all configured hook functions.
type hooks struct {
	onStart   []OnStartFunc
	onSuccess []OnSuccessFunc
	onFailure []OnFailureFunc
}

// Option configures a Handler.
type Option func(*Handler)

// WithOnStart adds a hook called when a decorated operation starts.
// Multiple hooks are called in order.
//
// Example:
//
//	invoke.WithOnStart(func(ctx context.Context, name string) {
//	    tracer.Annotate(ctx, "operation", name)
//	})
func WithOnStart(fn OnStartFunc) Option {
	return func(h *Handler) {
		h.hooks.onStart = append(h.hooks.onStart, fn)
	}
}

// WithOnSuccess adds a hook called after a decorated operation succeeds.
// Multiple hooks are called in order.
//
// Example:
//
//	invoke.WithOnSuccess(func(ctx context.Context, name string, result any, d time.Duration) {
//	    slowLog.Observe(name, d)
//	})
func WithOnSuccess(fn OnSuccessFunc) Option {
	return func(h *Handler) {
		h.hooks.onSuccess = append(h.hooks.onSuccess, fn)
	}
}

// WithOnFailure adds a hook called after a decorated operation fails.
// Multiple hooks are called in order.
//
// Example:
//
//	invoke.WithOnFailure(func(ctx context.Context, name string, err error, d time.Duration) {
//	    alerts.Notify(ctx, name, err)
//	})
func WithOnFailure(fn OnFailureFunc) Option {
	return func(h *Handler) {
		h.hooks.onFailure = append(h.hooks.onFailure, fn)
	}
}

// WithFallbackMessage sets the user-safe message given to errors that are
// not application errors. Defaults to apperr.DefaultMessage.
func WithFallbackMessage(msg string) Option {
	return func(h *Handler) {
		h.fallback = msg
	}
}

// WithInspector sets the inspector used by Handler.DetectEventSource and
// Handler.Route.
func WithInspector(i Inspector) Option {
	return func(h *Handler) {
		h.inspector = i
	}
}

func (h *Handler) callOnStart(ctx context.Context, name string) {
	for _, fn := range h.hooks.onStart {
		fn(ctx, name)
	}
}

func (h *Handler) callOnSuccess(ctx context.Context, name string, result any, d time.Duration) {
	for _, fn := range h.hooks.onSuccess {
		fn(ctx, name, result, d)
	}
}

func (h *Handler) callOnFailure(ctx context.Context, name string, err error, d time.Duration) {
	for _, fn := range h.hooks.onFailure {
		fn(ctx, name, err, d)
	}
}
