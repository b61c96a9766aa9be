// Package logger writes newline-delimited JSON log records in the bunyan
// record format understood by Lambda log tooling.
//
// Every record carries a fixed envelope (v, pid, hostname, time, level, msg)
// on top of the logger's own fields and the fields passed at the call site:
//
//	log, err := logger.New(logger.Options{Name: "charts", Level: logger.LevelDebug})
//	if err != nil {
//	    return err
//	}
//	log.Info("fetched index", logger.Fields{"pages": 2})
//	// {"hostname":"aws-lambda","level":30,"msg":"fetched index","name":"charts","pages":2,...}
//
// Child loggers inherit the parent's name, level, sink and fields and may
// add fields of their own. Only the root logger may set the name.
package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"reflect"
	"sync"
	"time"
)

const (
	// LogVersion is the "v" field of every record.
	LogVersion = 0

	// DefaultPID and DefaultHostname describe the Lambda execution
	// environment, where the real values carry no information.
	DefaultPID      = 1
	DefaultHostname = "aws-lambda"

	timeFormat = "2006-01-02T15:04:05.000Z"
)

var (
	// ErrInvalidConfig is wrapped by every construction error.
	ErrInvalidConfig = errors.New("invalid logger configuration")

	// ErrNameRequired is returned by New when Options.Name is empty.
	ErrNameRequired = fmt.Errorf("%w: name is required", ErrInvalidConfig)

	// ErrChildName is returned by Child when the fields contain "name".
	ErrChildName = fmt.Errorf("%w: child cannot set logger name", ErrInvalidConfig)
)

// Fields is a set of log record fields.
type Fields map[string]any

// Options configures a root logger.
type Options struct {
	// Name is required and is written as the "name" field.
	Name string

	// Level is the minimum severity emitted. Defaults to DefaultLevel.
	Level Level

	// Fields are added to every record.
	Fields Fields

	// Output receives one JSON line per record. Defaults to os.Stdout.
	Output io.Writer

	PID      int
	Hostname string

	// Now overrides the record clock.
	Now func() time.Time
}

// Logger writes structured records at or above its level.
type Logger struct {
	name     string
	level    Level
	fields   Fields
	out      io.Writer
	mu       *sync.Mutex
	pid      int
	hostname string
	now      func() time.Time
}

// New creates a root logger.
func New(opts Options) (*Logger, error) {
	if opts.Name == "" {
		return nil, ErrNameRequired
	}

	level := opts.Level
	if level == "" {
		level = DefaultLevel
	}
	if !level.Valid() {
		return nil, fmt.Errorf("%w: unknown level %q", ErrInvalidConfig, level)
	}

	l := &Logger{
		name:     opts.Name,
		level:    level,
		fields:   Fields{"name": opts.Name},
		out:      opts.Output,
		mu:       &sync.Mutex{},
		pid:      opts.PID,
		hostname: opts.Hostname,
		now:      opts.Now,
	}
	if l.out == nil {
		l.out = os.Stdout
	}
	if l.pid == 0 {
		l.pid = DefaultPID
	}
	if l.hostname == "" {
		l.hostname = DefaultHostname
	}
	if l.now == nil {
		l.now = time.Now
	}
	for k, v := range opts.Fields {
		if k == "name" {
			continue
		}
		l.fields[k] = v
	}
	return l, nil
}

// Child returns a logger that shares l's name, level and sink, with l's
// fields overlaid by fields.
func (l *Logger) Child(fields Fields) (*Logger, error) {
	if _, ok := fields["name"]; ok {
		return nil, ErrChildName
	}

	child := *l
	child.fields = make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		child.fields[k] = v
	}
	for k, v := range fields {
		child.fields[k] = v
	}
	return &child, nil
}

// Name returns the logger name.
func (l *Logger) Name() string { return l.name }

// Level returns the configured level.
func (l *Logger) Level() Level { return l.level }

// Fields returns a copy of the logger's fields.
func (l *Logger) Fields() Fields {
	out := make(Fields, len(l.fields))
	for k, v := range l.fields {
		out[k] = v
	}
	return out
}

// IsLoggable reports whether a record at level would be written.
func (l *Logger) IsLoggable(level Level) bool {
	return l.level.Value() <= level.Value()
}

// WriteLog writes a record at level. Call-site fields have the lowest
// precedence, then the logger's fields, then the envelope.
func (l *Logger) WriteLog(level Level, msg string, fields Fields) {
	if !l.IsLoggable(level) {
		return
	}

	record := make(Fields, len(fields)+len(l.fields)+6)
	for k, v := range fields {
		record[k] = v
	}
	for k, v := range l.fields {
		record[k] = v
	}
	record["v"] = LogVersion
	record["pid"] = l.pid
	record["hostname"] = l.hostname
	record["time"] = l.now().UTC().Format(timeFormat)
	record["level"] = level.Value()
	record["msg"] = msg

	if rrid, ok := record["x-rrid"]; ok && truthy(rrid) {
		record["rrid"] = rrid
		delete(record, "x-rrid")
	}

	line, err := PrepareLogObject(normalize(record))
	if err != nil {
		line, _ = PrepareLogObject(Fields{
			"v":        LogVersion,
			"pid":      l.pid,
			"hostname": l.hostname,
			"time":     record["time"],
			"level":    level.Value(),
			"msg":      msg,
			"name":     l.name,
			"logError": err.Error(),
		})
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.out.Write(line)
}

func (l *Logger) Trace(msg string, fields Fields) { l.WriteLog(LevelTrace, msg, fields) }
func (l *Logger) Debug(msg string, fields Fields) { l.WriteLog(LevelDebug, msg, fields) }
func (l *Logger) Info(msg string, fields Fields)  { l.WriteLog(LevelInfo, msg, fields) }
func (l *Logger) Warn(msg string, fields Fields)  { l.WriteLog(LevelWarn, msg, fields) }
func (l *Logger) Error(msg string, fields Fields) { l.WriteLog(LevelError, msg, fields) }
func (l *Logger) Fatal(msg string, fields Fields) { l.WriteLog(LevelFatal, msg, fields) }

// PrepareLogObject encodes record as a single JSON line terminated by "\n".
// HTML characters are not escaped.
func PrepareLogObject(record any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(record); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// normalize replaces plain error values with their message; errors that
// marshal themselves are left alone.
func normalize(v any) any {
	switch t := v.(type) {
	case json.Marshaler:
		return t
	case error:
		return t.Error()
	case Fields:
		out := make(Fields, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	default:
		return v
	}
}

// truthy treats nil, false, empty strings, zero and NaN numbers as false.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		return err != nil || (f != 0 && !math.IsNaN(f))
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	default:
		return true
	}
}
