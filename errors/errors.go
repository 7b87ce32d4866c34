package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseMarshal   Phase = "marshal"   // Go to engine
	PhaseUnmarshal Phase = "unmarshal" // engine to Go
	PhaseDispatch  Phase = "dispatch"  // statement construction and execution
	PhaseResolve   Phase = "resolve"   // command name resolution
	PhaseProxy     Phase = "proxy"     // proxy member/index access
	PhaseTransport Phase = "transport" // driver I/O
	PhaseEngine    Phase = "engine"    // errors reported by the engine itself
	PhaseConfig    Phase = "config"    // configuration loading
	PhaseWire      Phase = "wire"      // wire protocol encoding/decoding
)

// Kind categorizes the error
type Kind string

const (
	KindUnsupportedArgument Kind = "unsupported_argument"
	KindConversion          Kind = "conversion"
	KindEngineExecution     Kind = "engine_execution"
	KindCastOnVoidCall      Kind = "cast_on_void_call"
	KindNoSuchObject        Kind = "no_such_object"
	KindNoVarnames          Kind = "no_varnames"
	KindEngineStart         Kind = "engine_start"
	KindTypeMismatch        Kind = "type_mismatch"
	KindClosed              Kind = "closed"
	KindInvalidInput        Kind = "invalid_input"
	KindInvalidData         Kind = "invalid_data"
)

// Sentinels for errors.Is. They carry no phase, so they match any error of
// the same kind.
var (
	ErrUnsupportedArgument = &Error{Kind: KindUnsupportedArgument}
	ErrConversion          = &Error{Kind: KindConversion}
	ErrEngineExecution     = &Error{Kind: KindEngineExecution}
	ErrCastOnVoidCall      = &Error{Kind: KindCastOnVoidCall}
	ErrNoSuchObject        = &Error{Kind: KindNoSuchObject}
	ErrNoVarnames          = &Error{Kind: KindNoVarnames}
	ErrEngineStart         = &Error{Kind: KindEngineStart}
	ErrTypeMismatch        = &Error{Kind: KindTypeMismatch}
	ErrClosed              = &Error{Kind: KindClosed}
	ErrInvalidInput        = &Error{Kind: KindInvalidInput}
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	GoType string
	Class  string
	Name   string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Name != "" {
		b.WriteString(" at ")
		b.WriteString(e.Name)
	}

	if e.GoType != "" || e.Class != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.Class != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", engine class ")
			b.WriteString(e.Class)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("engine class ")
			b.WriteString(e.Class)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.Class != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. The kinds must be equal; the
// phase is compared only when the target sets one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	return e.Kind == t.Kind
}

// Message returns the engine's own message for engine errors and the
// detail for everything else.
func (e *Error) Message() string {
	return e.Detail
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Name sets the engine variable or command name involved
func (b *Builder) Name(name string) *Builder {
	b.err.Name = name
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// Class sets the engine class name
func (b *Builder) Class(c string) *Builder {
	b.err.Class = c
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for the error taxonomy

// UnsupportedArgument reports a host value with no marshalling rule.
// index is the zero-based argument position, or -1 outside a call.
func UnsupportedArgument(index int, v any) *Error {
	detail := "no marshalling rule"
	if index >= 0 {
		detail = fmt.Sprintf("no marshalling rule for argument %d", index)
	}
	return &Error{
		Phase:  PhaseMarshal,
		Kind:   KindUnsupportedArgument,
		GoType: fmt.Sprintf("%T", v),
		Detail: detail,
		Value:  v,
	}
}

// Conversion reports an aggregate that failed a structural precondition.
func Conversion(name string, dims []int) *Error {
	return &Error{
		Phase:  PhaseUnmarshal,
		Kind:   KindConversion,
		Name:   name,
		Detail: fmt.Sprintf("not rank-1 (size %s)", FormatDims(dims)),
		Value:  dims,
	}
}

// EngineExecution wraps a failure reported by the engine. msg is the
// engine's text and is kept verbatim in Detail.
func EngineExecution(msg string) *Error {
	return &Error{
		Phase:  PhaseEngine,
		Kind:   KindEngineExecution,
		Detail: msg,
	}
}

// Transport wraps an I/O failure talking to the engine.
func Transport(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseTransport,
		Kind:   KindEngineExecution,
		Detail: detail,
		Cause:  cause,
	}
}

// BufferOverflow reports a statement that does not fit the engine's
// fixed statement buffer.
func BufferOverflow(size, limit int) *Error {
	return &Error{
		Phase:  PhaseTransport,
		Kind:   KindEngineExecution,
		Detail: fmt.Sprintf("buffer overflow: statement of %d bytes exceeds %d byte buffer", size, limit),
		Value:  size,
	}
}

// CastOnVoidCall reports a result cast requested for a zero-output call.
func CastOnVoidCall(command string) *Error {
	return &Error{
		Phase:  PhaseDispatch,
		Kind:   KindCastOnVoidCall,
		Name:   command,
		Detail: "cannot cast the result of a call with zero outputs",
	}
}

// NoSuchObject reports an identifier that names nothing in the engine.
func NoSuchObject(name string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindNoSuchObject,
		Name:   name,
		Detail: fmt.Sprintf("no such engine object: %s", name),
	}
}

// NoVarnames guards batch operations invoked with an empty name set.
func NoVarnames(op string) *Error {
	return &Error{
		Phase:  PhaseDispatch,
		Kind:   KindNoVarnames,
		Detail: fmt.Sprintf("%s called with no variable names", op),
	}
}

// EngineStart reports an engine that could not be launched or attached.
func EngineStart(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseTransport,
		Kind:   KindEngineStart,
		Detail: detail,
		Cause:  cause,
	}
}

// TypeMismatch reports a value of the wrong engine class or Go type.
func TypeMismatch(phase Phase, name, goType, class string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Name:   name,
		GoType: goType,
		Class:  class,
	}
}

// Closed reports use of a closed session, connection or proxy.
func Closed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: fmt.Sprintf("%s is closed", what),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// FormatDims renders dimensions the way the engine prints sizes (2x3).
func FormatDims(dims []int) string {
	if len(dims) == 0 {
		return "0x0"
	}
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = fmt.Sprint(d)
	}
	return strings.Join(parts, "x")
}

// As is errors.As from the standard library, re-exported so callers that
// import this package under the name errors do not need both.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Is is errors.Is from the standard library.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}
