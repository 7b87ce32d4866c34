package resource

// EventType identifies a registry lifecycle notification.
type EventType uint8

const (
	EventCreated   EventType = iota // entry inserted
	EventDropped                    // entry removed explicitly
	EventCollected                  // referent reclaimed by the garbage collector
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventDropped:
		return "dropped"
	case EventCollected:
		return "collected"
	default:
		return "unknown"
	}
}

// Event represents a registry lifecycle event.
type Event struct {
	Name string
	Type EventType
}

// Observer receives notifications about registry lifecycle events.
type Observer interface {
	OnResourceEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// OnResourceEvent calls f.
func (f ObserverFunc) OnResourceEvent(e Event) { f(e) }

// Backend stores non-owning references keyed by name.
type Backend[T any] interface {
	// Store records a weak reference to v under name, replacing any previous one.
	Store(name string, v *T) error

	// Load returns the referent if it is still alive.
	Load(name string) (*T, bool)

	// Delete forgets name and reports whether it was present.
	Delete(name string) bool

	// Sweep forgets every entry whose referent was reclaimed and returns
	// their names.
	Sweep() []string

	// Close releases the backend.
	Close() error
}
