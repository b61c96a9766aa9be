// Package apperr defines the application error taxonomy used at handler
// boundaries.
//
// An Error carries two messages: a user-safe message returned by Error and
// an internal detail kept for logging. Anything that crosses a decorated
// handler boundary is normalized into an *Error by Convert, so callers only
// ever see the user-safe message while logs keep the original cause.
//
//	if user == nil {
//	    return apperr.NotFound("user not found")
//	}
//
//	if errors.Is(err, apperr.ErrNotFound) {
//	    // respond 404
//	}
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// DefaultMessage is the user-safe message attached to errors that were not
// raised as application errors.
const DefaultMessage = "An unexpected error occurred."

// Kind identifies the specialization of an Error.
type Kind int

const (
	KindApplication Kind = iota
	KindNotFound
	KindForbidden
	KindNotImplemented
	KindNotSupported
	KindInvalidInput
)

var kindNames = map[Kind]string{
	KindApplication:    "ApplicationError",
	KindNotFound:       "NotFoundError",
	KindForbidden:      "ForbiddenError",
	KindNotImplemented: "NotImplementedError",
	KindNotSupported:   "NotSupportedError",
	KindInvalidInput:   "InputInvalidError",
}

var kindDefaults = map[Kind]string{
	KindNotFound:       "Not found",
	KindForbidden:      "Forbidden",
	KindNotImplemented: "Not yet implemented",
	KindNotSupported:   "Not supported",
	KindInvalidInput:   "The input data supplied is invalid and/or does not meet expectation",
}

// String returns the type name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Sentinels for matching with errors.Is. Matching compares kinds only, except
// that ErrApplication matches every *Error regardless of kind.
var (
	ErrApplication    = &Error{kind: KindApplication}
	ErrNotFound       = &Error{kind: KindNotFound}
	ErrForbidden      = &Error{kind: KindForbidden}
	ErrNotImplemented = &Error{kind: KindNotImplemented}
	ErrNotSupported   = &Error{kind: KindNotSupported}
	ErrInvalidInput   = &Error{kind: KindInvalidInput}
)

// Error is an application error. It is immutable once constructed.
type Error struct {
	kind    Kind
	message string
	detail  string
	cause   error
	stack   []uintptr
}

// New returns an application error. The visible message is message when it
// is non-empty, otherwise detail.
func New(detail, message string) *Error {
	return newError(KindApplication, detail, message, nil)
}

// NotFound returns a KindNotFound error. An empty message uses the default.
func NotFound(message string) *Error { return newKind(KindNotFound, message) }

// Forbidden returns a KindForbidden error. An empty message uses the default.
func Forbidden(message string) *Error { return newKind(KindForbidden, message) }

// NotImplemented returns a KindNotImplemented error. An empty message uses
// the default.
func NotImplemented(message string) *Error { return newKind(KindNotImplemented, message) }

// NotSupported returns a KindNotSupported error. An empty message uses the
// default.
func NotSupported(message string) *Error { return newKind(KindNotSupported, message) }

// InvalidInput returns a KindInvalidInput error. An empty message uses the
// default.
func InvalidInput(message string) *Error { return newKind(KindInvalidInput, message) }

// Convert normalizes err into an application error.
//
// If err already is (or wraps) an *Error, that same instance is returned, so
// Convert is idempotent and keeps the error's kind. Any other error becomes a
// KindApplication error whose detail is err's message and whose visible
// message is fallback, or DefaultMessage when fallback is empty. The
// original error stays reachable through errors.Unwrap.
//
// Convert(nil, ...) returns a nil *Error. Assigned to an error interface that
// is a typed nil and compares non-nil, so check the input before converting:
//
//	if err != nil {
//	    return apperr.Convert(err, "")
//	}
//	return nil
func Convert(err error, fallback string) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if fallback == "" {
		fallback = DefaultMessage
	}
	return newError(KindApplication, err.Error(), fallback, err)
}

func newKind(kind Kind, message string) *Error {
	if message == "" {
		message = kindDefaults[kind]
	}
	return newError(kind, message, "", nil)
}

func newError(kind Kind, detail, message string, cause error) *Error {
	if message == "" {
		message = detail
	}
	if detail == "" {
		detail = message
	}
	pcs := make([]uintptr, 32)
	// Skip runtime.Callers, newError and the exported constructor.
	n := runtime.Callers(3, pcs)
	return &Error{
		kind:    kind,
		message: message,
		detail:  detail,
		cause:   cause,
		stack:   pcs[:n],
	}
}

// Error returns the user-safe message.
func (e *Error) Error() string { return e.message }

// Message returns the user-safe message.
func (e *Error) Message() string { return e.message }

// Detail returns the internal diagnostic message.
func (e *Error) Detail() string { return e.detail }

// Kind returns the error's specialization.
func (e *Error) Kind() Kind { return e.kind }

// Unwrap returns the error that was converted, if any.
func (e *Error) Unwrap() error { return e.cause }

// Is reports whether target is an *Error of the same kind. Every *Error is
// also a KindApplication error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.kind == KindApplication || t.kind == e.kind
}

// WithDetail returns a copy of e with a different internal detail. The
// receiver is not modified.
func (e *Error) WithDetail(detail string) *Error {
	cp := *e
	cp.detail = detail
	return &cp
}

// Stack returns the program counters captured at construction.
func (e *Error) Stack() []uintptr { return e.stack }

// StackTrace renders the captured stack, one "function\n\tfile:line" pair per
// frame.
func (e *Error) StackTrace() string {
	if len(e.stack) == 0 {
		return ""
	}
	var b strings.Builder
	frames := runtime.CallersFrames(e.stack)
	for {
		f, more := frames.Next()
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", f.Function, f.File, f.Line)
		if !more {
			break
		}
	}
	return b.String()
}

// MarshalJSON renders the error for structured logs. The detail is included
// under "error"; callers decide whether logs are exposed.
func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name    string `json:"name"`
		Message string `json:"message"`
		Detail  string `json:"error"`
		Stack   string `json:"stack,omitempty"`
	}{
		Name:    e.kind.String(),
		Message: e.message,
		Detail:  e.detail,
		Stack:   e.StackTrace(),
	})
}
