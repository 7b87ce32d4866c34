package resource

import (
	"sync"
)

// Table tracks live values by name without keeping them alive. Entries whose
// referent was reclaimed are pruned lazily by Len, Names and Prune.
type Table[T any] struct {
	backend   *LocalBackend[T]
	observers []Observer
	obsMu     sync.RWMutex
	closed    bool
	closeMu   sync.RWMutex
}

// NewTable creates a new table with a LocalBackend.
func NewTable[T any]() *Table[T] {
	return &Table[T]{
		backend: NewLocalBackend[T](),
	}
}

// Insert records v under name and reports whether it was stored.
func (t *Table[T]) Insert(name string, v *T) bool {
	t.closeMu.RLock()
	if t.closed {
		t.closeMu.RUnlock()
		return false
	}
	t.closeMu.RUnlock()

	if err := t.backend.Store(name, v); err != nil {
		return false
	}

	t.notify(Event{Type: EventCreated, Name: name})
	return true
}

// Get returns the live value stored under name.
func (t *Table[T]) Get(name string) (*T, bool) {
	return t.backend.Load(name)
}

// Remove forgets name and reports whether it was present.
func (t *Table[T]) Remove(name string) bool {
	if !t.backend.Delete(name) {
		return false
	}
	t.notify(Event{Type: EventDropped, Name: name})
	return true
}

// Prune forgets entries whose referent was reclaimed and returns their names.
func (t *Table[T]) Prune() []string {
	dead := t.backend.Sweep()
	for _, name := range dead {
		t.notify(Event{Type: EventCollected, Name: name})
	}
	return dead
}

// Names returns the names of live entries in sorted order.
func (t *Table[T]) Names() []string {
	t.Prune()
	var names []string
	t.backend.Each(func(name string, _ *T) bool {
		names = append(names, name)
		return true
	})
	return names
}

// Len returns the number of live entries.
func (t *Table[T]) Len() int {
	return len(t.Names())
}

// Subscribe adds an observer for lifecycle events.
func (t *Table[T]) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Clear forgets every entry.
func (t *Table[T]) Clear() {
	for _, name := range t.Names() {
		t.Remove(name)
	}
}

// Close forgets every entry and stops accepting inserts.
func (t *Table[T]) Close() error {
	t.closeMu.Lock()
	t.closed = true
	t.closeMu.Unlock()

	return t.backend.Close()
}

func (t *Table[T]) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnResourceEvent(e)
	}
}
