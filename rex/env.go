package rex

import (
	"runtime"
	"sort"
	"strings"
)

// Environment is the mutable state an Interpreter runs statements
// against. It is an interface, not a bare map, so a caller (the
// context builder) can intercept Append/Prepend on specific variables
// to apply its own PATH strategy instead of rex's literal splice
// semantics — see spec.md §4.6.
type Environment interface {
	Get(name string) (string, bool)
	Set(name, value string)
	Unset(name string)
	Append(name, value, sep string)
	Prepend(name, value, sep string)
	Keys() []string
}

// pathLikeVars get ':'/';' as their default separator instead of a
// single space, per spec.md §4.7.
var pathLikeVars = map[string]bool{
	"PATH":            true,
	"LD_LIBRARY_PATH": true,
	"PYTHONPATH":      true,
	"CLASSPATH":       true,
}

// DefaultSeparator returns the separator appendenv/prependenv use for
// name when the script didn't specify one explicitly.
func DefaultSeparator(name string) string {
	if pathLikeVars[name] {
		if runtime.GOOS == "windows" {
			return ";"
		}
		return ":"
	}
	return " "
}

// MapEnvironment is the straightforward in-memory Environment:
// appendenv/prependenv splice on the separator and drop adjacent
// duplicate entries, exactly as spec.md §4.7 describes.
type MapEnvironment struct {
	vars map[string]string
}

// NewMapEnvironment returns an empty MapEnvironment, or one seeded
// from initial if non-nil (the caller's own map is not retained).
func NewMapEnvironment(initial map[string]string) *MapEnvironment {
	vars := make(map[string]string, len(initial))
	for k, v := range initial {
		vars[k] = v
	}
	return &MapEnvironment{vars: vars}
}

func (e *MapEnvironment) Get(name string) (string, bool) {
	v, ok := e.vars[name]
	return v, ok
}

func (e *MapEnvironment) Set(name, value string) { e.vars[name] = value }

func (e *MapEnvironment) Unset(name string) { delete(e.vars, name) }

func (e *MapEnvironment) Append(name, value, sep string) {
	if sep == "" {
		sep = DefaultSeparator(name)
	}
	cur, ok := e.vars[name]
	if !ok || cur == "" {
		e.vars[name] = value
		return
	}
	parts := strings.Split(cur, sep)
	if len(parts) > 0 && parts[len(parts)-1] == value {
		return // adjacent duplicate, per spec.md §4.7
	}
	e.vars[name] = cur + sep + value
}

func (e *MapEnvironment) Prepend(name, value, sep string) {
	if sep == "" {
		sep = DefaultSeparator(name)
	}
	cur, ok := e.vars[name]
	if !ok || cur == "" {
		e.vars[name] = value
		return
	}
	parts := strings.Split(cur, sep)
	if len(parts) > 0 && parts[0] == value {
		return
	}
	e.vars[name] = value + sep + cur
}

func (e *MapEnvironment) Keys() []string {
	out := make([]string, 0, len(e.vars))
	for k := range e.vars {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Snapshot returns a copy of the environment as a plain map.
func (e *MapEnvironment) Snapshot() map[string]string {
	out := make(map[string]string, len(e.vars))
	for k, v := range e.vars {
		out[k] = v
	}
	return out
}
