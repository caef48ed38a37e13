// Package serial implements the class-name + config round-trip protocol used
// to persist every configurable densenet object.
//
// A value is written as a Wrapped pair: its stable class name and a plain
// key/value config holding only constructor-recoverable parameters. Reading
// it back goes through a Registry that maps lower-cased class names to
// factory functions, so no reflection is involved.
package serial

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrClassNotFound is returned when a registry has no factory for a class name.
var ErrClassNotFound = errors.New("class not found")

// Serializable is implemented by every persistable type.
type Serializable interface {
	// ClassName returns the stable, case-insensitive registry key.
	ClassName() string

	// Config returns the constructor-recoverable parameters, or nil for
	// stateless types.
	Config() Config
}

// Wrapped is the on-the-wire form of a Serializable.
type Wrapped struct {
	ClassName string `json:"className" yaml:"className"`
	Config    Config `json:"config,omitempty" yaml:"config,omitempty"`
}

// Wrap captures s as a Wrapped pair.
func Wrap(s Serializable) Wrapped {
	return Wrapped{ClassName: s.ClassName(), Config: s.Config()}
}

// Factory rebuilds a T from its config. cfg is never nil.
type Factory[T any] func(cfg Config) (T, error)

// Registry maps class names to factories for one concept (layers,
// activations, losses, ...).
type Registry[T any] struct {
	name      string
	factories map[string]Factory[T]
}

// NewRegistry creates an empty registry. name appears in lookup errors.
func NewRegistry[T any](name string) *Registry[T] {
	return &Registry[T]{name: name, factories: make(map[string]Factory[T])}
}

// Register adds a factory under className (matched case-insensitively).
//
// Registering the same name twice panics.
func (r *Registry[T]) Register(className string, f Factory[T]) {
	key := strings.ToLower(className)
	if _, dup := r.factories[key]; dup {
		panic(fmt.Sprintf("serial: %s %q registered twice", r.name, className))
	}
	r.factories[key] = f
}

// Name returns the registry name.
func (r *Registry[T]) Name() string {
	return r.name
}

// Names returns the registered keys in sorted order.
func (r *Registry[T]) Names() []string {
	names := make([]string, 0, len(r.factories))
	for k := range r.factories {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Deserialize reconstructs the value described by w.
func (r *Registry[T]) Deserialize(w Wrapped) (T, error) {
	var zero T
	key := strings.ToLower(w.ClassName)
	f, ok := r.factories[key]
	if !ok {
		return zero, fmt.Errorf("%w: cannot find className: %s in %s", ErrClassNotFound, key, r.name)
	}
	cfg := w.Config
	if cfg == nil {
		cfg = Config{}
	}
	v, err := f(cfg)
	if err != nil {
		return zero, fmt.Errorf("%s %s: %w", r.name, key, err)
	}
	return v, nil
}

// Get is Deserialize for a bare class name with an empty config.
func (r *Registry[T]) Get(className string) (T, error) {
	return r.Deserialize(Wrapped{ClassName: className})
}
