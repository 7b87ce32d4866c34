package sim

import "github.com/wippyai/enginewrap/value"

// idxArg is one evaluated subscript: ":" or a list of zero-based indices
// with the shape of the index array.
type idxArg struct {
	idx  []int
	dims []int
	all  bool
}

func (a idxArg) max() int {
	m := -1
	for _, i := range a.idx {
		if i > m {
			m = i
		}
	}
	return m
}

func (a idxArg) resolve(extent int) []int {
	if !a.all {
		return a.idx
	}
	out := make([]int, extent)
	for i := range out {
		out[i] = i
	}
	return out
}

func isVectorDims(d []int) bool {
	return len(d) == 2 && (d[0] == 1 || d[1] == 1)
}

// normalizeArgs folds trailing singleton subscripts so that a(i,j,1)
// behaves like a(i,j).
func normalizeArgs(args []idxArg) ([]idxArg, error) {
	for len(args) > 2 {
		last := args[len(args)-1]
		if last.all || len(last.idx) != 1 || last.idx[0] != 0 {
			return nil, engineErr("Only one or two subscripts are supported.")
		}
		args = args[:len(args)-1]
	}
	if len(args) == 0 {
		return nil, engineErr("Subscript indices must either be real positive integers or logicals.")
	}
	return args, nil
}

// readIndex returns the linear positions selected by args and the shape of
// the result.
func readIndex(dims []int, args []idxArg) ([]int, []int, error) {
	args, err := normalizeArgs(args)
	if err != nil {
		return nil, nil, err
	}
	d := dims2(dims)
	n := 1
	for _, x := range d {
		n *= x
	}

	if len(args) == 1 {
		a := args[0]
		if a.all {
			return a.resolve(n), []int{n, 1}, nil
		}
		if a.max() >= n {
			return nil, nil, engineErr("Index exceeds matrix dimensions.")
		}
		k := len(a.idx)
		switch {
		case n != 1 && isVectorDims(d) && isVectorDims(a.dims) && d[0] == 1:
			return a.idx, []int{1, k}, nil
		case n != 1 && isVectorDims(d) && isVectorDims(a.dims):
			return a.idx, []int{k, 1}, nil
		}
		return a.idx, append([]int(nil), a.dims...), nil
	}

	rowsN, colsN := d[0], 1
	for _, x := range d[1:] {
		colsN *= x
	}
	rows, cols := args[0].resolve(rowsN), args[1].resolve(colsN)
	if args[0].max() >= rowsN || args[1].max() >= colsN {
		return nil, nil, engineErr("Index exceeds matrix dimensions.")
	}
	lin := make([]int, 0, len(rows)*len(cols))
	for _, c := range cols {
		for _, r := range rows {
			lin = append(lin, c*rowsN+r)
		}
	}
	return lin, []int{len(rows), len(cols)}, nil
}

// assignIndex returns the linear positions written by args and the
// dimensions of the array after any growth.
func assignIndex(dims []int, args []idxArg) ([]int, []int, error) {
	args, err := normalizeArgs(args)
	if err != nil {
		return nil, nil, err
	}
	d := dims2(dims)
	n := 1
	for _, x := range d {
		n *= x
	}

	if len(args) == 1 {
		a := args[0]
		if a.all {
			return a.resolve(n), d, nil
		}
		m := a.max()
		if m < n {
			return a.idx, d, nil
		}
		switch {
		case n == 0 || (len(d) == 2 && d[0] == 1):
			return a.idx, []int{1, m + 1}, nil
		case len(d) == 2 && d[1] == 1:
			return a.idx, []int{m + 1, 1}, nil
		}
		return nil, nil, engineErr("In an assignment  A(I) = B, a matrix A cannot be resized.")
	}

	if len(d) > 2 {
		return nil, nil, engineErr("Only one or two subscripts are supported.")
	}
	rows, cols := args[0].resolve(d[0]), args[1].resolve(d[1])
	nd := []int{max(d[0], args[0].max()+1), max(d[1], args[1].max()+1)}
	lin := make([]int, 0, len(rows)*len(cols))
	for _, c := range cols {
		for _, r := range rows {
			lin = append(lin, c*nd[0]+r)
		}
	}
	return lin, nd, nil
}

func gather[T any](src []T, lin []int) []T {
	out := make([]T, len(lin))
	for i, k := range lin {
		out[i] = src[k]
	}
	return out
}

// regrow copies src laid out in oldDims into a fresh slice laid out in
// newDims, filling new positions with fill.
func regrow[T any](src []T, oldDims, newDims []int, fill T) []T {
	n := 1
	for _, x := range newDims {
		n *= x
	}
	out := make([]T, n)
	for i := range out {
		out[i] = fill
	}
	od := dims2(oldDims)
	if len(od) > 2 || sameDims(od, newDims) {
		copy(out, src)
		return out
	}
	for i, v := range src {
		r, c := i%od[0], i/od[0]
		out[c*newDims[0]+r] = v
	}
	return out
}

// scatter writes vals into dst at lin. A single value is broadcast.
func scatter[T any](dst []T, lin []int, vals []T) error {
	if len(vals) != 1 && len(vals) != len(lin) {
		return engineErr("In an assignment  A(I) = B, the number of elements in B and I must be the same.")
	}
	for i, k := range lin {
		if len(vals) == 1 {
			dst[k] = vals[0]
		} else {
			dst[k] = vals[i]
		}
	}
	return nil
}

// deleteIndex removes the selected elements: linear deletion keeps the
// orientation of vectors, two subscripts with one ":" delete whole rows
// or columns.
func deleteIndex[T any](src []T, dims []int, args []idxArg) ([]T, []int, error) {
	args, err := normalizeArgs(args)
	if err != nil {
		return nil, nil, err
	}
	d := dims2(dims)
	drop := map[int]bool{}
	if len(args) == 1 {
		if args[0].all {
			return nil, []int{0, 0}, nil
		}
		if args[0].max() >= len(src) {
			return nil, nil, engineErr("Index exceeds matrix dimensions.")
		}
		for _, k := range args[0].idx {
			drop[k] = true
		}
		out := make([]T, 0, len(src))
		for i, v := range src {
			if !drop[i] {
				out = append(out, v)
			}
		}
		switch {
		case len(out) == len(src):
			return out, d, nil
		case len(d) == 2 && d[1] == 1 && d[0] != 1:
			return out, []int{len(out), 1}, nil
		}
		return out, []int{1, len(out)}, nil
	}
	if len(d) > 2 {
		return nil, nil, engineErr("Only one or two subscripts are supported.")
	}
	var keepRows, keepCols []int
	switch {
	case args[1].all:
		for _, k := range args[0].idx {
			drop[k] = true
		}
		for r := 0; r < d[0]; r++ {
			if !drop[r] {
				keepRows = append(keepRows, r)
			}
		}
		keepCols = args[1].resolve(d[1])
	case args[0].all:
		for _, k := range args[1].idx {
			drop[k] = true
		}
		for c := 0; c < d[1]; c++ {
			if !drop[c] {
				keepCols = append(keepCols, c)
			}
		}
		keepRows = args[0].resolve(d[0])
	default:
		return nil, nil, engineErr("A null assignment can have only one non-colon index.")
	}
	out := make([]T, 0, len(keepRows)*len(keepCols))
	for _, c := range keepCols {
		for _, r := range keepRows {
			out = append(out, src[c*d[0]+r])
		}
	}
	return out, []int{len(keepRows), len(keepCols)}, nil
}

func sameDims(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// toIdxArg converts an evaluated subscript value.
func toIdxArg(v value.Value) (idxArg, error) {
	if c, ok := v.(value.Char); ok && c == ":" {
		return idxArg{all: true}, nil
	}
	a, ok := toDouble(v)
	if !ok || a.IsComplex() {
		return idxArg{}, engineErr("Subscript indices must either be real positive integers or logicals.")
	}
	re := a.Real()
	idx := make([]int, len(re))
	for i, x := range re {
		if x < 1 || x != float64(int(x)) {
			return idxArg{}, engineErr("Subscript indices must either be real positive integers or logicals.")
		}
		idx[i] = int(x) - 1
	}
	return idxArg{idx: idx, dims: dims2(a.Dims())}, nil
}
