package invoke

import (
	"errors"

	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned when the input is not valid JSON.
var ErrInvalidJSON = errors.New("invalid JSON")

// Inspector examines raw bytes and returns a View for field queries.
type Inspector interface {
	Inspect(raw []byte) (View, error)
}

// View provides format-agnostic field access for discriminator matching.
type View interface {
	// HasField returns true if the path exists in the payload.
	HasField(path string) bool

	// GetString returns the string value at path, or false if not found
	// or not a string.
	GetString(path string) (string, bool)

	// GetBytes returns the raw bytes at path, or false if not found.
	// For JSON, this returns the raw JSON value (including quotes for strings).
	GetBytes(path string) ([]byte, bool)

	// Truthy reports whether the value at path exists and is not null,
	// false, zero or the empty string. Objects and arrays are truthy even
	// when empty.
	Truthy(path string) bool

	// Len returns the number of elements of the array at path, or 0 if the
	// path is missing or not an array.
	Len(path string) int
}

// JSONInspector returns an Inspector that uses gjson for field access.
func JSONInspector() Inspector {
	return jsonInspector{}
}

type jsonInspector struct{}

func (jsonInspector) Inspect(raw []byte) (View, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrInvalidJSON
	}
	return jsonView{raw: raw}, nil
}

type jsonView struct {
	raw []byte
}

func (v jsonView) HasField(path string) bool {
	return gjson.GetBytes(v.raw, path).Exists()
}

func (v jsonView) GetString(path string) (string, bool) {
	r := gjson.GetBytes(v.raw, path)
	if !r.Exists() {
		return "", false
	}
	if r.Type != gjson.String {
		return "", false
	}
	return r.String(), true
}

func (v jsonView) GetBytes(path string) ([]byte, bool) {
	r := gjson.GetBytes(v.raw, path)
	if !r.Exists() {
		return nil, false
	}
	return []byte(r.Raw), true
}

func (v jsonView) Truthy(path string) bool {
	r := gjson.GetBytes(v.raw, path)
	switch r.Type {
	case gjson.True, gjson.JSON:
		return true
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		return r.Str != ""
	default:
		// Null, False, and missing values.
		return false
	}
}

func (v jsonView) Len(path string) int {
	r := gjson.GetBytes(v.raw, path)
	if !r.IsArray() {
		return 0
	}
	return int(r.Get("#").Int())
}
