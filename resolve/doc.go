// Package resolve determines how an engine identifier can be called.
//
// A Chain asks the engine whether the name exists and fetches its help
// text once, then hands that probe to its resolvers in order until one
// produces a Descriptor:
//
//	chain := resolve.Chain{sigs, resolve.Introspect{}, resolve.Heuristic{}}
//	d, err := chain.Resolve(ctx, querier, "sort")
//	// d.NOut == 2, d.DefaultNOut() == 1
//
// Signature resolvers answer from WIT-style declarations supplied by the
// host, and a declared result list is requested in full by default. Introspect asks the engine (nargin/nargout) and works for
// functions defined in the session. Builtins cannot be introspected, so
// Heuristic scrapes their usage lines ("[Y,I] = SORT(X)") from the help
// text. The heuristic is best effort; callers override the arity per call
// when it guesses wrong.
package resolve
