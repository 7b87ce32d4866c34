// Package wrap lets Go code call an engine's functions and use its values
// as if they were native, without declaring bindings up front.
//
// # Sessions
//
// A Session owns one engine connection:
//
//	s, err := wrap.New(ctx, sim.Driver{})
//	defer s.Close(ctx)
//
//	y, err := s.Call(ctx, "sort", value.Row(3, 1, 2))   // [1 2 3]
//
// Call resolves the name the first time it is used: the engine is asked
// whether it exists and for its help text, and the resolver chain decides
// how many outputs the command has. The result is cached per session.
//
// # Dispatch
//
// Session.Do is the raw dispatcher. Arguments are marshalled into
// uniquely named workspace temporaries (ARG..., RES..., TMP...), the call
// is evaluated as one statement, results are converted, and every
// temporary is cleared on every path:
//
//	res, err := s.Do(ctx, "sort", []any{value.Row(3, 1, 2)}, wrap.NOut(2))
//	// res.([]any) holds the sorted values and the permutation [2 3 1]
//
// # Values
//
// Numbers, strings, numeric slices and value.Array go in; double arrays
// come back as value.Array (1xN rows flattened by default, scalars kept
// 1x1), char arrays as string, and one-dimensional cell arrays as []any
// converted element by element. Everything else, structs and
// two-dimensional cells included, comes back as a *Proxy.
//
// # Proxies
//
// A root Proxy owns a private copy of the value in the workspace. Field
// and Index read from it, converting where possible and returning child
// proxies otherwise; SetField and SetIndex write to it. Close clears the
// copy; proxies that are dropped without Close are cleared after the
// garbage collector reclaims them, on the session's next call or Collect.
//
// A Session is not safe for concurrent use.
package wrap
