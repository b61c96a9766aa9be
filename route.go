package invoke

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bjaus/invoke/apperr"
)

type sourceKey struct{}

// WithEventSource returns a context carrying the classified event source.
func WithEventSource(ctx context.Context, source EventSource) context.Context {
	return context.WithValue(ctx, sourceKey{}, source)
}

// EventSourceFromContext returns the event source stored by Route, if any.
func EventSourceFromContext(ctx context.Context) (EventSource, bool) {
	s, ok := ctx.Value(sourceKey{}).(EventSource)
	return s, ok
}

// Route returns an Operation that classifies the event and delegates to the
// operation registered for its source. Events without a route go to
// fallback; with no fallback they fail with apperr.ErrNotImplemented.
//
// The delegate's context carries the source (see EventSourceFromContext).
// Route always classifies with JSONInspector; use Handler.Route to honor an
// inspector set with WithInspector.
//
// Example:
//
//	h.Handle("default", invoke.Route(map[invoke.EventSource]invoke.Operation{
//	    invoke.EventSourceScheduled: refresh,
//	    invoke.EventSourceS3:        ingest,
//	}, nil))
func Route(routes map[EventSource]Operation, fallback Operation) Operation {
	return route(JSONInspector(), routes, fallback)
}

// Route is like the package-level Route but classifies events with the
// handler's inspector.
func (h *Handler) Route(routes map[EventSource]Operation, fallback Operation) Operation {
	return route(h.inspector, routes, fallback)
}

func route(insp Inspector, routes map[EventSource]Operation, fallback Operation) Operation {
	return func(ctx context.Context, event json.RawMessage) (any, error) {
		source := detectEventSource(insp, event)
		ctx = WithEventSource(ctx, source)

		if op, ok := routes[source]; ok {
			return op(ctx, event)
		}
		if fallback != nil {
			return fallback(ctx, event)
		}
		return nil, apperr.NotImplemented(fmt.Sprintf("no operation for event source %s", source))
	}
}
