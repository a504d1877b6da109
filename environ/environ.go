package environ

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

var ErrDefined = errors.New("undefined identifier")

// Environ is a chain of scopes. Lookups walk from the innermost scope to
// the outermost one.
type Environ[T any] interface {
	Resolve(string) (T, error)
	Define(string, T)
	Names() []string
	Len() int
}

type Env[T any] struct {
	values map[string]T
	parent Environ[T]
}

func Empty[T any]() Environ[T] {
	return Enclosed[T](nil)
}

func Enclosed[T any](parent Environ[T]) Environ[T] {
	e := Env[T]{
		values: make(map[string]T),
		parent: parent,
	}
	return &e
}

// Leave returns the scope enclosing env, or env itself when it is the
// outermost scope or when it does not support unwrapping.
func Leave[T any](env Environ[T]) Environ[T] {
	u, ok := env.(interface{ Unwrap() Environ[T] })
	if !ok {
		return env
	}
	return u.Unwrap()
}

func (e *Env[T]) Len() int {
	return len(e.values)
}

func (e *Env[T]) Names() []string {
	names := slices.Collect(maps.Keys(e.values))
	slices.Sort(names)
	return names
}

func (e *Env[T]) Define(ident string, value T) {
	e.values[ident] = value
}

func (e *Env[T]) Resolve(ident string) (T, error) {
	value, ok := e.values[ident]
	if ok {
		return value, nil
	}
	if e.parent != nil {
		return e.parent.Resolve(ident)
	}
	var t T
	return t, fmt.Errorf("%s: %w", ident, ErrDefined)
}

func (e *Env[T]) Unwrap() Environ[T] {
	if e.parent == nil {
		return e
	}
	return e.parent
}
