// Package errors provides structured error types for enginewrap.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). Kinds map onto the failure taxonomy of the wrapper:
//
//	unsupported_argument  a Go value has no marshalling rule
//	conversion            an aggregate is not rank-1 (recovered internally)
//	engine_execution      the engine rejected a statement, or the transport failed
//	cast_on_void_call     a result cast was requested for a zero-output call
//	no_such_object        an identifier names nothing in the engine
//	no_varnames           a batch operation got an empty name set
//	engine_start          the engine could not be launched or attached
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseMarshal, errors.KindUnsupportedArgument).
//		Name("arg2").
//		GoType("chan int").
//		Detail("no marshalling rule").
//		Build()
//
// Or use convenience constructors:
//
//	err := errors.EngineExecution("Undefined function or variable 'foo'.")
//
// Sentinels match by kind through the standard library:
//
//	if errors.Is(err, errors.ErrNoSuchObject) { ... }
package errors
