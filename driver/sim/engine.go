package sim

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/enginewrap"
	"github.com/wippyai/enginewrap/errors"
	"github.com/wippyai/enginewrap/value"
)

// Func is the body of a user-defined engine function. It receives the
// evaluated arguments and the number of requested outputs, and returns at
// least that many values.
type Func func(args []value.Value, nargout int) ([]value.Value, error)

type function struct {
	fn      func(e *Engine, args []value.Value, nargout int) ([]value.Value, error)
	name    string
	help    string
	nin     int // -1 for variadic
	nout    int // -1 for variadic
	builtin bool
}

// Engine is an in-process engine session. It implements enginewrap.Conn.
type Engine struct {
	vars   map[string]value.Value
	funcs  map[string]*function
	cwd    string
	ends   []endCtx
	out    strings.Builder
	mu     sync.Mutex
	closed bool
}

var _ enginewrap.Conn = (*Engine)(nil)

// New returns an engine with an empty workspace whose current directory
// is the process working directory.
func New() *Engine {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "/"
	}
	return &Engine{
		vars:  make(map[string]value.Value),
		funcs: make(map[string]*function),
		cwd:   cwd,
	}
}

// Define registers a user function. nin and nout are the declared input
// and output counts, -1 meaning variadic. The function reports exist
// kind 2 and answers nargin/nargout.
func (e *Engine) Define(name string, nin, nout int, help string, fn Func) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.funcs[name] = &function{
		name: name,
		help: help,
		nin:  nin,
		nout: nout,
		fn: func(_ *Engine, args []value.Value, nargout int) ([]value.Value, error) {
			return fn(args, nargout)
		},
	}
}

func (e *Engine) lookup(name string) *function {
	if fn, ok := e.funcs[name]; ok {
		return fn
	}
	return builtins[name]
}

// Eval implements enginewrap.Conn.
func (e *Engine) Eval(ctx context.Context, stmt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(stmt) >= enginewrap.MaxStatementSize {
		return "", errors.BufferOverflow(len(stmt), enginewrap.MaxStatementSize)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return "", errors.Closed(errors.PhaseEngine, "engine")
	}

	e.out.Reset()
	e.ends = e.ends[:0]
	err := e.run(stmt)
	out := e.out.String()
	e.out.Reset()
	if err != nil {
		Logger().Debug("eval failed", zap.String("stmt", stmt), zap.Error(err))
		return "", err
	}
	return out, nil
}

// Put implements enginewrap.Conn.
func (e *Engine) Put(ctx context.Context, name string, v value.Value) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !IsIdentifier(name) {
		return errors.InvalidInput(errors.PhaseEngine, fmt.Sprintf("invalid variable name %q", name))
	}
	switch v.(type) {
	case value.Array, value.Char:
	default:
		return errors.TypeMismatch(errors.PhaseEngine, name, fmt.Sprintf("%T", v), "")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return errors.Closed(errors.PhaseEngine, "engine")
	}
	e.vars[name] = v
	return nil
}

// Get implements enginewrap.Conn. Only double and char values can be
// fetched.
func (e *Engine) Get(ctx context.Context, name string) (value.Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, errors.Closed(errors.PhaseEngine, "engine")
	}
	v, ok := e.vars[name]
	if !ok {
		return nil, engineErr("Undefined function or variable '%s'.", name)
	}
	switch v.(type) {
	case value.Array, value.Char:
		return v, nil
	}
	return nil, errors.New(errors.PhaseEngine, errors.KindTypeMismatch).
		Name(name).
		Class(v.Class()).
		Detail("only double and char arrays can be fetched").
		Build()
}

// Close implements enginewrap.Conn. It discards the workspace.
func (e *Engine) Close(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.vars = nil
	return nil
}

// Lookup returns a workspace variable of any class, for tests and tools
// that inspect cells and structs directly.
func (e *Engine) Lookup(name string) (value.Value, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.vars[name]
	return v, ok
}

// Names returns the workspace variable names in sorted order.
func (e *Engine) Names() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return sortedKeys(e.vars)
}

// Dir returns the engine's current directory.
func (e *Engine) Dir() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cwd
}

// Driver opens a fresh Engine per session.
type Driver struct {
	// Setup, if set, runs on every new engine before it is handed out,
	// typically to Define functions.
	Setup func(*Engine) error
}

// Open implements enginewrap.Driver.
func (d Driver) Open(ctx context.Context) (enginewrap.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.EngineStart("open sim engine", err)
	}
	e := New()
	if d.Setup != nil {
		if err := d.Setup(e); err != nil {
			return nil, errors.EngineStart("sim engine setup", err)
		}
	}
	return e, nil
}

func engineErr(format string, args ...any) error {
	if len(args) == 0 {
		return errors.EngineExecution(format)
	}
	return errors.EngineExecution(fmt.Sprintf(format, args...))
}

func syntaxErr(format string, args ...any) error {
	return engineErr("Error: "+format, args...)
}

// errMessage returns the engine text of err.
func errMessage(err error) string {
	var e *errors.Error
	if errors.As(err, &e) && e.Message() != "" {
		return e.Message()
	}
	return err.Error()
}
