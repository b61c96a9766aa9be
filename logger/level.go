package logger

import "fmt"

// Level is a log severity.
type Level string

const (
	LevelTrace Level = "trace"
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelFatal Level = "fatal"
)

// DefaultLevel is used when Options.Level is empty.
const DefaultLevel = LevelInfo

var levelValues = map[Level]int{
	LevelTrace: 10,
	LevelDebug: 20,
	LevelInfo:  30,
	LevelWarn:  40,
	LevelError: 50,
	LevelFatal: 60,
}

// Value returns the numeric severity written to the "level" field, or 0 for
// an unknown level.
func (l Level) Value() int {
	return levelValues[l]
}

// Valid reports whether l is one of the six known levels.
func (l Level) Valid() bool {
	_, ok := levelValues[l]
	return ok
}

// ParseLevel converts s into a Level.
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if !l.Valid() {
		return "", fmt.Errorf("%w: unknown level %q", ErrInvalidConfig, s)
	}
	return l, nil
}
