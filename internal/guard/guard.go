// Package guard provides keyed mutual exclusion for single-flight operations.
//
// An operation names one or more keys. It may start only when every key is
// free; a busy key makes TryAcquire report false instead of queueing. A tuple
// such as ("install", "installLibraries") lets a specific operation also hold
// a class lock shared by its siblings.
package guard

import (
	"context"
	"sync"
)

// Guard tracks held keys.
type Guard struct {
	mu   sync.Mutex
	held map[string]struct{}
	wake chan struct{}
}

// New creates an empty guard.
func New() *Guard {
	return &Guard{
		held: make(map[string]struct{}),
		wake: make(chan struct{}),
	}
}

// TryAcquire takes every key if all are free. It never blocks.
func (g *Guard) TryAcquire(keys ...string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.takeLocked(keys)
}

// Acquire blocks until every key is free and takes them, or ctx is done.
func (g *Guard) Acquire(ctx context.Context, keys ...string) error {
	for {
		g.mu.Lock()
		if g.takeLocked(keys) {
			g.mu.Unlock()
			return nil
		}
		wake := g.wake
		g.mu.Unlock()

		select {
		case <-wake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Release frees the keys and wakes blocked acquirers.
func (g *Guard) Release(keys ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, k := range keys {
		delete(g.held, k)
	}
	close(g.wake)
	g.wake = make(chan struct{})
}

// Busy reports whether any of the keys is held.
func (g *Guard) Busy(keys ...string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, k := range keys {
		if _, ok := g.held[k]; ok {
			return true
		}
	}
	return false
}

func (g *Guard) takeLocked(keys []string) bool {
	for _, k := range keys {
		if _, ok := g.held[k]; ok {
			return false
		}
	}
	for _, k := range keys {
		g.held[k] = struct{}{}
	}
	return true
}

// Do runs fn while holding keys. When any key is busy fn is not run and ok is
// false; that is not an error. Keys are released even if fn panics.
func (g *Guard) Do(keys []string, fn func() error) (ok bool, err error) {
	if !g.TryAcquire(keys...) {
		return false, nil
	}
	defer g.Release(keys...)
	return true, fn()
}

// Run is Do for operations that produce a value.
func Run[T any](g *Guard, keys []string, fn func() (T, error)) (T, bool, error) {
	var zero T
	if !g.TryAcquire(keys...) {
		return zero, false, nil
	}
	defer g.Release(keys...)
	v, err := fn()
	return v, true, err
}

// Keys builds a key tuple of an optional class key followed by name.
func Keys(class, name string) []string {
	if class == "" {
		return []string{name}
	}
	return []string{class, name}
}
