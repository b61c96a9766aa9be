package invoke

import "strings"

// Discriminator is a cheap, side-effect-free predicate over a payload View.
// Event source rules are built from discriminators.
type Discriminator interface {
	Match(v View) bool
}

// DiscriminatorFunc adapts a function to the Discriminator interface.
type DiscriminatorFunc func(v View) bool

// Match implements the Discriminator interface.
func (f DiscriminatorFunc) Match(v View) bool { return f(v) }

// HasFields returns a Discriminator that matches when all paths exist.
func HasFields(paths ...string) Discriminator {
	return hasFields{paths: paths}
}

type hasFields struct {
	paths []string
}

func (d hasFields) Match(v View) bool {
	for _, p := range d.paths {
		if !v.HasField(p) {
			return false
		}
	}
	return true
}

// Truthy returns a Discriminator that matches when every path holds a
// truthy value (see View.Truthy).
func Truthy(paths ...string) Discriminator {
	return truthy{paths: paths}
}

type truthy struct {
	paths []string
}

func (d truthy) Match(v View) bool {
	for _, p := range d.paths {
		if !v.Truthy(p) {
			return false
		}
	}
	return true
}

// NonEmpty returns a Discriminator that matches when path is an array with
// at least one element.
func NonEmpty(path string) Discriminator {
	return nonEmpty{path: path}
}

type nonEmpty struct {
	path string
}

func (d nonEmpty) Match(v View) bool {
	return v.Len(d.path) > 0
}

// FieldEquals returns a Discriminator that matches when the path exists
// and equals the given string value.
func FieldEquals(path, value string) Discriminator {
	return fieldEquals{path: path, value: value}
}

type fieldEquals struct {
	path  string
	value string
}

func (d fieldEquals) Match(v View) bool {
	s, ok := v.GetString(d.path)
	return ok && s == d.value
}

// FieldHasPrefix returns a Discriminator that matches when the path holds a
// string starting with prefix.
func FieldHasPrefix(path, prefix string) Discriminator {
	return fieldHasPrefix{path: path, prefix: prefix}
}

type fieldHasPrefix struct {
	path   string
	prefix string
}

func (d fieldHasPrefix) Match(v View) bool {
	s, ok := v.GetString(d.path)
	return ok && strings.HasPrefix(s, d.prefix)
}

// And returns a Discriminator that matches when all discriminators match.
func And(ds ...Discriminator) Discriminator {
	return and{ds: ds}
}

type and struct {
	ds []Discriminator
}

func (d and) Match(v View) bool {
	for _, disc := range d.ds {
		if !disc.Match(v) {
			return false
		}
	}
	return true
}

// Or returns a Discriminator that matches when any discriminator matches.
func Or(ds ...Discriminator) Discriminator {
	return or{ds: ds}
}

type or struct {
	ds []Discriminator
}

func (d or) Match(v View) bool {
	for _, disc := range d.ds {
		if disc.Match(v) {
			return true
		}
	}
	return false
}
