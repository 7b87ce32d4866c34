package resolve

import (
	"context"

	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/wippyai/enginewrap/errors"
)

// Variadic marks an arity that accepts any number of arguments.
const Variadic = -1

// Kind is the engine's answer to exist('name').
type Kind int

const (
	KindNone     Kind = 0
	KindVariable Kind = 1
	KindFile     Kind = 2
	KindMex      Kind = 3
	KindModel    Kind = 4
	KindBuiltin  Kind = 5
	KindPcode    Kind = 6
	KindFolder   Kind = 7
	KindClass    Kind = 8
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindVariable:
		return "variable"
	case KindFile:
		return "function"
	case KindMex:
		return "mex"
	case KindModel:
		return "model"
	case KindBuiltin:
		return "builtin"
	case KindPcode:
		return "pcode"
	case KindFolder:
		return "folder"
	case KindClass:
		return "class"
	default:
		return "unknown"
	}
}

// Callable reports whether an identifier of this kind can be invoked.
// Folders exist but cannot be called.
func (k Kind) Callable() bool {
	return k != KindNone && k != KindFolder
}

// Descriptor is the resolved calling signature of an engine identifier.
// Descriptors are immutable once returned.
type Descriptor struct {
	// Name is the engine identifier.
	Name string
	// Help is the engine's help text, possibly empty.
	Help string
	// Source names the resolver that produced the descriptor.
	Source string
	// Params and Results are set by signature resolvers only.
	Params  []wit.Type
	Results []wit.Type
	Kind    Kind
	// NOut is the number of outputs, or Variadic.
	NOut int
	// NIn is the number of inputs, or Variadic.
	NIn int
}

// SourceSignature marks descriptors built from host declarations.
const SourceSignature = "signature"

// DefaultNOut is the number of outputs requested when the caller does not
// ask for a specific count. A declared signature is taken at its word;
// otherwise procedures get none and everything else one.
func (d *Descriptor) DefaultNOut() int {
	if d.Source == SourceSignature {
		return d.NOut
	}
	if d.NOut == 0 {
		return 0
	}
	return 1
}

// Querier answers introspection questions about engine identifiers.
// A wrapper session implements it by evaluating exist, help, nargin and
// nargout in the engine.
type Querier interface {
	Exist(ctx context.Context, name string) (Kind, error)
	Help(ctx context.Context, name string) (string, error)
	Nargin(ctx context.Context, name string) (int, error)
	Nargout(ctx context.Context, name string) (int, error)
}

// Probe is what the chain learned about a name before consulting resolvers.
type Probe struct {
	Name string
	Help string
	Kind Kind
}

// Resolver derives a descriptor from a probe. It returns nil, nil when it
// does not handle the probe so that the next resolver is tried.
type Resolver interface {
	Resolve(ctx context.Context, q Querier, p Probe) (*Descriptor, error)
}

// Chain consults its resolvers in order.
type Chain []Resolver

// DefaultChain introspects session functions and falls back to the help
// heuristic for builtins.
func DefaultChain() Chain {
	return Chain{Introspect{}, Heuristic{}}
}

// Resolve probes name and returns the first descriptor produced by the
// chain. Names that do not exist, or that exist only as folders, fail with
// a no-such-object error. If no resolver handles the probe, the name is
// assumed to return one value and to take any number of arguments.
func (c Chain) Resolve(ctx context.Context, q Querier, name string) (*Descriptor, error) {
	kind, err := q.Exist(ctx, name)
	if err != nil {
		return nil, err
	}
	if !kind.Callable() {
		Logger().Debug("no such object", zap.String("name", name), zap.Stringer("kind", kind))
		return nil, errors.NoSuchObject(name)
	}

	help, err := q.Help(ctx, name)
	if err != nil {
		Logger().Debug("help unavailable", zap.String("name", name), zap.Error(err))
		help = ""
	}
	p := Probe{Name: name, Kind: kind, Help: help}

	for _, r := range c {
		d, err := r.Resolve(ctx, q, p)
		if err != nil {
			return nil, err
		}
		if d != nil {
			Logger().Debug("resolved",
				zap.String("name", name),
				zap.String("source", d.Source),
				zap.Int("nout", d.NOut),
				zap.Int("nin", d.NIn))
			return d, nil
		}
	}

	return &Descriptor{
		Name:   name,
		Help:   help,
		Source: "default",
		Kind:   kind,
		NOut:   1,
		NIn:    Variadic,
	}, nil
}

// Introspect asks the engine for the declared arity of functions defined
// in the session. Variables resolve to one output without a query; calling
// a variable indexes it. Builtins are left to the next resolver.
type Introspect struct{}

func (Introspect) Resolve(ctx context.Context, q Querier, p Probe) (*Descriptor, error) {
	d := &Descriptor{Name: p.Name, Help: p.Help, Kind: p.Kind, Source: "introspect"}
	switch p.Kind {
	case KindBuiltin:
		return nil, nil
	case KindVariable:
		d.NOut, d.NIn = 1, Variadic
		return d, nil
	}

	nout, err := q.Nargout(ctx, p.Name)
	if err != nil {
		return nil, err
	}
	nin, err := q.Nargin(ctx, p.Name)
	if err != nil {
		return nil, err
	}
	d.NOut, d.NIn = variadic(nout), variadic(nin)
	return d, nil
}

// The engine reports variable arity as a negative count of fixed
// arguments plus one.
func variadic(n int) int {
	if n < 0 {
		return Variadic
	}
	return n
}
