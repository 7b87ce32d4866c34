package resource

import (
	"errors"
	"sort"
	"sync"
	"weak"
)

var ErrClosed = errors.New("resource backend closed")

// LocalBackend is an in-memory backend of weak pointers.
type LocalBackend[T any] struct {
	entries map[string]weak.Pointer[T]
	mu      sync.RWMutex
	closed  bool
}

// NewLocalBackend creates a new in-memory backend.
func NewLocalBackend[T any]() *LocalBackend[T] {
	return &LocalBackend[T]{
		entries: make(map[string]weak.Pointer[T]),
	}
}

// Store records a weak reference to v under name.
func (b *LocalBackend[T]) Store(name string, v *T) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	b.entries[name] = weak.Make(v)
	return nil
}

// Load returns the referent if it is still alive.
func (b *LocalBackend[T]) Load(name string) (*T, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	wp, ok := b.entries[name]
	if !ok {
		return nil, false
	}
	v := wp.Value()
	return v, v != nil
}

// Delete forgets name.
func (b *LocalBackend[T]) Delete(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.entries[name]; !ok {
		return false
	}
	delete(b.entries, name)
	return true
}

// Sweep forgets reclaimed entries and returns their names in sorted order.
func (b *LocalBackend[T]) Sweep() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	var dead []string
	for name, wp := range b.entries {
		if wp.Value() == nil {
			dead = append(dead, name)
			delete(b.entries, name)
		}
	}
	sort.Strings(dead)
	return dead
}

// Each calls fn for every live entry in name order until fn returns false.
func (b *LocalBackend[T]) Each(fn func(string, *T) bool) {
	b.mu.RLock()
	names := make([]string, 0, len(b.entries))
	for name := range b.entries {
		names = append(names, name)
	}
	b.mu.RUnlock()
	sort.Strings(names)

	for _, name := range names {
		v, ok := b.Load(name)
		if !ok {
			continue
		}
		if !fn(name, v) {
			return
		}
	}
}

// Close drops every entry.
func (b *LocalBackend[T]) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	b.entries = nil
	return nil
}
