package sim

import (
	"sort"

	"github.com/wippyai/enginewrap/value"
)

func (e *Engine) evalMatrix(m *matrixExpr) (value.Value, error) {
	rows := make([]value.Value, 0, len(m.rows))
	for _, row := range m.rows {
		vals, err := e.evalArgs(row)
		if err != nil {
			return nil, err
		}
		if len(vals) == 0 {
			continue
		}
		if m.cell {
			for i, v := range vals {
				vals[i] = &Cell{dims: []int{1, 1}, elems: []value.Value{v}}
			}
		}
		r, err := hcat(vals)
		if err != nil {
			return nil, err
		}
		rows = append(rows, r)
	}
	if len(rows) == 0 {
		if m.cell {
			return &Cell{dims: []int{0, 0}}, nil
		}
		return value.Empty(), nil
	}
	return vcat(rows)
}

type block[T any] struct {
	dims  []int
	elems []T
}

func hcatBlocks[T any](bs []block[T]) ([]int, []T, error) {
	rows := dims2(bs[0].dims)[0]
	cols := 0
	var out []T
	for _, b := range bs {
		d := dims2(b.dims)
		if len(d) != 2 {
			return nil, nil, engineErr("Concatenation of N-D arrays is not supported.")
		}
		if d[0] != rows {
			return nil, nil, engineErr("CAT arguments dimensions are not consistent.")
		}
		cols += d[1]
		out = append(out, b.elems...)
	}
	return []int{rows, cols}, out, nil
}

func vcatBlocks[T any](bs []block[T]) ([]int, []T, error) {
	cols := dims2(bs[0].dims)[1]
	rows := 0
	for _, b := range bs {
		d := dims2(b.dims)
		if len(d) != 2 {
			return nil, nil, engineErr("Concatenation of N-D arrays is not supported.")
		}
		if d[1] != cols {
			return nil, nil, engineErr("CAT arguments dimensions are not consistent.")
		}
		rows += d[0]
	}
	out := make([]T, rows*cols)
	off := 0
	for _, b := range bs {
		r := dims2(b.dims)[0]
		for c := 0; c < cols; c++ {
			for i := 0; i < r; i++ {
				out[c*rows+off+i] = b.elems[c*r+i]
			}
		}
		off += r
	}
	return []int{rows, cols}, out, nil
}

type catFunc[T any] func([]block[T]) ([]int, []T, error)

func hcat(vals []value.Value) (value.Value, error) {
	return concat(vals, hcatBlocks[complex128], hcatBlocks[value.Value], hcatBlocks[map[string]value.Value], true)
}

func vcat(vals []value.Value) (value.Value, error) {
	return concat(vals, vcatBlocks[complex128], vcatBlocks[value.Value], vcatBlocks[map[string]value.Value], false)
}

// concat joins values of mixed classes: any cell makes a cell, any char
// makes a char, structs only join structs with the same fields.
func concat(vals []value.Value, num catFunc[complex128], cells catFunc[value.Value], structs catFunc[map[string]value.Value], horizontal bool) (value.Value, error) {
	var kept []value.Value
	class := "double"
	for _, v := range vals {
		switch v.(type) {
		case *Cell:
			class = "cell"
		case *Struct:
			if class != "cell" {
				class = "struct"
			}
		case value.Char:
			if class == "double" {
				class = "char"
			}
		}
		if !isEmpty(v) {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		if len(vals) > 0 {
			return vals[0], nil
		}
		return value.Empty(), nil
	}
	if len(kept) == 1 && kept[0].Class() == class {
		return kept[0], nil
	}

	switch class {
	case "cell":
		bs := make([]block[value.Value], len(kept))
		for i, v := range kept {
			if c, ok := v.(*Cell); ok {
				bs[i] = block[value.Value]{dims: c.dims, elems: c.elems}
			} else {
				bs[i] = block[value.Value]{dims: []int{1, 1}, elems: []value.Value{v}}
			}
		}
		dims, elems, err := cells(bs)
		if err != nil {
			return nil, err
		}
		return &Cell{dims: dims, elems: elems}, nil

	case "struct":
		first, ok := kept[0].(*Struct)
		if !ok {
			return nil, engineErr("Concatenation of struct with %s is not supported.", kept[0].Class())
		}
		bs := make([]block[map[string]value.Value], len(kept))
		for i, v := range kept {
			s, ok := v.(*Struct)
			if !ok {
				return nil, engineErr("Concatenation of struct with %s is not supported.", v.Class())
			}
			if !sameFieldSet(first.fields, s.fields) {
				return nil, engineErr("Concatenation of structures requires same field names.")
			}
			bs[i] = block[map[string]value.Value]{dims: s.dims, elems: s.elems}
		}
		dims, elems, err := structs(bs)
		if err != nil {
			return nil, err
		}
		return &Struct{dims: dims, fields: first.Fields(), elems: elems}, nil

	case "char":
		if !horizontal {
			return nil, engineErr("Multi-row char arrays are not supported.")
		}
		var rs []rune
		for _, v := range kept {
			switch v := v.(type) {
			case value.Char:
				rs = append(rs, []rune(string(v))...)
			case value.Array:
				for _, x := range v.Real() {
					rs = append(rs, rune(x))
				}
			}
		}
		return value.Char(string(rs)), nil
	}

	bs := make([]block[complex128], len(kept))
	for i, v := range kept {
		a, _ := toDouble(v)
		bs[i] = block[complex128]{dims: a.Dims(), elems: a.Complex()}
	}
	dims, elems, err := num(bs)
	if err != nil {
		return nil, err
	}
	return value.FromComplex(dims, elems)
}

func sameFieldSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x := append([]string(nil), a...)
	y := append([]string(nil), b...)
	sort.Strings(x)
	sort.Strings(y)
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}
