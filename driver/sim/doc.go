// Package sim is an in-process engine speaking a subset of the MATLAB
// language. It implements enginewrap.Conn and serves as the reference
// engine for tests, for the demo shell and, through cmd/simengine, as the
// peer of the process driver.
//
// Supported:
//
//   - statements separated by ";", "," or newlines; "%" comments and "..."
//     continuations
//   - assignment, multi-assignment "[a,b] = f(x)" with "~" placeholders
//   - command syntax: "clear a b", "disp hello", "help sort"
//   - numbers (including imaginary literals), strings in single or double
//     quotes, matrices "[1 2; 3 4]", cells "{1, 'a'}", ranges "a:s:b"
//   - arithmetic, comparison and logical operators, transposes
//   - indexing with (), {} and .field, "end" and ":" subscripts, comma lists
//     from c{:} and s.field, nested assignment with growth, deletion with []
//
// Values are double (real or complex), char (one row), cell and struct.
// Comparisons produce doubles. Only double and char can be moved across
// Put and Get; cells and structs stay in the workspace.
//
// Functions registered with Engine.Define behave like functions on the
// engine's path: exist reports 2 and nargin/nargout return their declared
// arity. Builtins report exist kind 5 and document themselves through help.
package sim
