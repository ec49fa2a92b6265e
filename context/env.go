package context

import "github.com/rez-project/rez/rex"

// pathStrategyEnv wraps a rex.Environment, intercepting Append/Prepend
// calls on PATH-like variable names to apply the build's configured
// PathStrategy instead of rex's literal splice semantics. Non-PATH-like
// variables pass straight through to the inner environment's own
// append/prepend (dedupe-adjacent) behavior, per spec.md §4.7.
type pathStrategyEnv struct {
	inner    rex.Environment
	strategy PathStrategy
}

func (e *pathStrategyEnv) Get(name string) (string, bool) { return e.inner.Get(name) }
func (e *pathStrategyEnv) Set(name, value string)          { e.inner.Set(name, value) }
func (e *pathStrategyEnv) Unset(name string)                { e.inner.Unset(name) }
func (e *pathStrategyEnv) Keys() []string                   { return e.inner.Keys() }

func (e *pathStrategyEnv) Append(name, value, sep string) {
	if !pathLikeNames[name] {
		e.inner.Append(name, value, sep)
		return
	}
	switch e.strategy {
	case Prepend:
		e.inner.Prepend(name, value, sep)
	case Append:
		e.inner.Append(name, value, sep)
	case Replace:
		e.inner.Set(name, value)
	case NoModify:
		// ignore PATH ops entirely, per spec.md §4.6
	}
}

func (e *pathStrategyEnv) Prepend(name, value, sep string) {
	if !pathLikeNames[name] {
		e.inner.Prepend(name, value, sep)
		return
	}
	switch e.strategy {
	case Prepend:
		e.inner.Prepend(name, value, sep)
	case Append:
		e.inner.Append(name, value, sep)
	case Replace:
		e.inner.Set(name, value)
	case NoModify:
	}
}
