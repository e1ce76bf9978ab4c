// File: environment.go
// Title: Variable Environment
// Description: Environment interface and an in-memory implementation.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-03
// Modified: 2026-10-03

package executor

import (
	"context"
	"sync"
)

// Environment stores variable bindings. Implementations must be safe for
// concurrent use.
type Environment interface {
	// Lookup returns the value bound to name and whether it exists
	Lookup(ctx context.Context, name string) (int64, bool, error)

	// Assign binds name to value, replacing any earlier binding
	Assign(ctx context.Context, name string, value int64) error

	// Variables returns a snapshot of all bindings
	Variables(ctx context.Context) (map[string]int64, error)
}

// MemoryEnvironment keeps bindings in a map
type MemoryEnvironment struct {
	mu   sync.RWMutex
	vars map[string]int64
}

// NewMemoryEnvironment creates an environment seeded with initial
func NewMemoryEnvironment(initial map[string]int64) *MemoryEnvironment {
	vars := make(map[string]int64, len(initial))
	for k, v := range initial {
		vars[k] = v
	}
	return &MemoryEnvironment{vars: vars}
}

func (e *MemoryEnvironment) Lookup(_ context.Context, name string) (int64, bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.vars[name]
	return v, ok, nil
}

func (e *MemoryEnvironment) Assign(_ context.Context, name string, value int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vars[name] = value
	return nil
}

func (e *MemoryEnvironment) Variables(_ context.Context) (map[string]int64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make(map[string]int64, len(e.vars))
	for k, v := range e.vars {
		out[k] = v
	}
	return out, nil
}

// Clear removes all bindings
func (e *MemoryEnvironment) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vars = make(map[string]int64)
}
