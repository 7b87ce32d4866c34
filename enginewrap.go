package enginewrap

import (
	"context"

	"github.com/wippyai/enginewrap/value"
)

// MaxStatementSize is the size of the fixed statement buffer of an engine
// connection. Statements of this length or longer fail with a buffer overflow.
const MaxStatementSize = 10000

// Driver starts or attaches to an engine session.
type Driver interface {
	// Open launches or attaches to the engine. Failures are reported as
	// engine_start errors.
	Open(ctx context.Context) (Conn, error)
}

// Conn is one open engine session.
type Conn interface {
	// Eval executes one statement and returns its captured textual output.
	Eval(ctx context.Context, stmt string) (string, error)

	// Put binds value to name in the engine workspace.
	Put(ctx context.Context, name string, v value.Value) error

	// Get fetches the value bound to name. Only double and char values can
	// be fetched; other classes fail with a type mismatch.
	Get(ctx context.Context, name string) (value.Value, error)

	// Close ends the session. Closing twice is a no-op.
	Close(ctx context.Context) error
}

// DriverFunc adapts a function to the Driver interface.
type DriverFunc func(ctx context.Context) (Conn, error)

// Open calls f.
func (f DriverFunc) Open(ctx context.Context) (Conn, error) {
	return f(ctx)
}
