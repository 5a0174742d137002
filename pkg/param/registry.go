// ============================================================================
// paramval - Parametric Value Layer
// ============================================================================
//
// Package:     param
// Description: Parameter registry and evaluation points
// Author:      Mike Stoffels
// Created:     2026-09-16
// License:     MIT
// ============================================================================

// Package param interns symbolic parameters to dense indices and holds the
// concrete assignments used to evaluate parametric values.
//
// The registry only grows. Every new registration bumps its epoch; dependent
// structures compare the epoch they last saw and widen themselves with an
// explicit Adjust call. Nothing in this package is safe for concurrent use.
package param

import (
	"fmt"
)

// Registry assigns stable dense indices to parameter names
type Registry struct {
	names []string
	index map[string]int
	epoch uint64
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register returns the index of name, assigning the next index on first sight
func (r *Registry) Register(name string) int {
	if i, ok := r.index[name]; ok {
		return i
	}
	i := len(r.names)
	r.names = append(r.names, name)
	r.index[name] = i
	r.epoch++
	return i
}

// Size returns the number of registered parameters
func (r *Registry) Size() int {
	return len(r.names)
}

// Get returns the name registered at index. It panics when index is out of range.
func (r *Registry) Get(index int) string {
	if index < 0 || index >= len(r.names) {
		panic(fmt.Sprintf("param: index %d out of range [0, %d)", index, len(r.names)))
	}
	return r.names[index]
}

// Contains reports whether name has been registered
func (r *Registry) Contains(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Index returns the index of name without registering it
func (r *Registry) Index(name string) (int, bool) {
	i, ok := r.index[name]
	return i, ok
}

// Names returns a copy of the registered names in index order
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Epoch changes whenever a parameter is added
func (r *Registry) Epoch() uint64 {
	return r.epoch
}
