package wrap

import (
	"os"

	"go.uber.org/zap"

	"github.com/wippyai/enginewrap/resolve"
	"github.com/wippyai/enginewrap/value"
)

// Config holds session configuration.
type Config struct {
	// Logger overrides the package logger for this session.
	Logger *zap.Logger

	// Getwd returns the host working directory for AutosyncDirs.
	// Defaults to os.Getwd.
	Getwd func() (string, error)

	// ArrayCast, if set, is applied to every converted double array after
	// flattening. Its result is returned in place of the array.
	ArrayCast func(value.Array) (any, error)

	// Signatures declares calling signatures that take precedence over
	// introspection and the help heuristic.
	Signatures *resolve.Signatures

	// Resolvers replaces the default resolver chain. Signatures, if set,
	// is still consulted first.
	Resolvers resolve.Chain

	// Convertible lists the engine classes fetched and converted to host
	// values.
	Convertible []string

	// ManualConvert lists the aggregate classes converted element by
	// element when they are one-dimensional.
	ManualConvert []string

	// AutosyncDirs changes the engine directory to the host working
	// directory before every call.
	AutosyncDirs bool

	// FlattenRowVectors returns 1xN arrays as one-dimensional arrays.
	FlattenRowVectors bool

	// FlattenColVectors returns Nx1 arrays as one-dimensional arrays.
	FlattenColVectors bool

	// ClearCallArgs clears argument temporaries after each call. Disable
	// it to inspect the arguments of a failing call in the workspace.
	ClearCallArgs bool
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() *Config {
	return &Config{
		Getwd:             os.Getwd,
		Convertible:       []string{"double", "char"},
		ManualConvert:     []string{"cell"},
		FlattenRowVectors: true,
		ClearCallArgs:     true,
	}
}

func (c *Config) chain() resolve.Chain {
	chain := c.Resolvers
	if chain == nil {
		chain = resolve.DefaultChain()
	}
	if c.Signatures != nil {
		chain = append(resolve.Chain{c.Signatures}, chain...)
	}
	return chain
}

// CallOption configures a single dispatcher call.
type CallOption func(*callOptions)

type callOptions struct {
	cast   func(any) (any, error)
	output func(string)
	nout   int
}

// NOut sets the number of outputs requested from the engine. Zero calls
// the command as a procedure and returns nil; one returns the bare
// result; more return a []any of that length.
func NOut(n int) CallOption {
	return func(o *callOptions) { o.nout = n }
}

// Cast applies fn to the final result. It cannot be combined with NOut(0).
func Cast(fn func(any) (any, error)) CallOption {
	return func(o *callOptions) { o.cast = fn }
}

// Output receives the text the engine printed while evaluating the call.
func Output(fn func(string)) CallOption {
	return func(o *callOptions) { o.output = fn }
}
