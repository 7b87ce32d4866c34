package wrap

import (
	"context"
	"strconv"

	"github.com/wippyai/enginewrap"
	"github.com/wippyai/enginewrap/errors"
	"github.com/wippyai/enginewrap/value"
)

// cellToHost converts a one-dimensional cell array element by element.
// The elements are dealt into fresh temporaries and converted like call
// results, so nested cells recurse and unconvertible elements become
// proxies. A cell with more than one non-singleton dimension fails with a
// conversion error, which callers answer with a proxy.
func (s *Session) cellToHost(ctx context.Context, name string) ([]any, error) {
	v, err := s.raw(ctx, "size("+name+")")
	if err != nil {
		return nil, err
	}
	size, ok := v.(value.Array)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseUnmarshal, name, "", v.Class())
	}
	dims := make([]int, size.Len())
	n := 1
	for i, x := range size.Real() {
		dims[i] = int(x)
		n *= dims[i]
	}

	if n == 0 {
		return []any{}, nil
	}
	if len(dims) != 2 || min(dims[0], dims[1]) > 1 {
		return nil, errors.Conversion(name, dims)
	}

	out := make([]any, 0, n)
	for _, r := range dealRanges(name, n) {
		temps := s.names.batch(prefixTmp, r.hi-r.lo)
		if _, err := s.eval(ctx, assignStmt(temps, "deal("+r.expr+")")); err != nil {
			return nil, err
		}
		vs, err := s.getValues(ctx, temps)
		if err != nil {
			return nil, err
		}
		out = append(out, vs...)
	}
	return out, nil
}

type dealRange struct {
	expr   string
	lo, hi int
}

// tmpNameLen bounds the length of a temporary name plus its separator.
const tmpNameLen = 32

// dealRanges splits the elements of a cell into batches whose deal
// statement fits the statement buffer. Small cells use a single name{:}.
func dealRanges(name string, n int) []dealRange {
	per := (enginewrap.MaxStatementSize - len(name) - 64) / tmpNameLen
	if per < 1 {
		per = 1
	}
	if n <= per {
		return []dealRange{{expr: name + "{:}", lo: 0, hi: n}}
	}
	var out []dealRange
	for lo := 0; lo < n; lo += per {
		hi := min(lo+per, n)
		out = append(out, dealRange{
			expr: name + "{" + strconv.Itoa(lo+1) + ":" + strconv.Itoa(hi) + "}",
			lo:   lo,
			hi:   hi,
		})
	}
	return out
}
