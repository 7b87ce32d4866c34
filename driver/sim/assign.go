package sim

import "github.com/wippyai/enginewrap/value"

func (e *Engine) assign(lhs *refExpr, rhs value.Value) error {
	nv, err := e.assignChain(e.vars[lhs.name], lhs.chain, rhs)
	if err != nil {
		return err
	}
	e.vars[lhs.name] = nv
	return nil
}

// assignChain returns cur with rhs stored at the position named by chain.
// Values are never modified in place, so variables cannot alias.
func (e *Engine) assignChain(cur value.Value, chain []accessor, rhs value.Value) (value.Value, error) {
	if len(chain) == 0 {
		return rhs, nil
	}
	acc, rest := chain[0], chain[1:]
	switch acc.kind {
	case '.':
		s, err := asStruct(cur)
		if err != nil {
			return nil, err
		}
		if len(s.elems) != 1 {
			return nil, engineErr("Incorrect number of right hand side elements in dot name assignment.  Missing [] around left hand side is a likely cause.")
		}
		nv, err := e.assignChain(s.elems[0][acc.field], rest, rhs)
		if err != nil {
			return nil, err
		}
		return s.with(0, acc.field, nv), nil

	case '{':
		c, err := asCell(cur)
		if err != nil {
			return nil, err
		}
		args, err := e.indexArgs(acc.args, c.dims)
		if err != nil {
			return nil, err
		}
		lin, nd, err := assignIndex(c.dims, args)
		if err != nil {
			return nil, err
		}
		if len(lin) != 1 {
			return nil, engineErr("The right hand side of this assignment has too few values to satisfy the left hand side.")
		}
		elems := regrow(c.elems, c.dims, nd, value.Value(value.Empty()))
		nv, err := e.assignChain(elems[lin[0]], rest, rhs)
		if err != nil {
			return nil, err
		}
		elems[lin[0]] = nv
		return &Cell{dims: nd, elems: elems}, nil

	case '(':
		dims := []int{0, 0}
		if cur != nil {
			dims = cur.Dims()
		}
		args, err := e.indexArgs(acc.args, dims)
		if err != nil {
			return nil, err
		}
		if len(rest) == 0 {
			return indexAssign(cur, args, rhs)
		}
		if rest[0].kind != '.' {
			return nil, engineErr("()-indexing must appear last in an index expression.")
		}
		return e.assignStructElem(cur, args, rest, rhs)
	}
	return nil, engineErr("Invalid assignment.")
}

// assignStructElem handles s(i).field... = rhs.
func (e *Engine) assignStructElem(cur value.Value, args []idxArg, rest []accessor, rhs value.Value) (value.Value, error) {
	s, err := asStruct(cur)
	if err != nil {
		return nil, err
	}
	if cur == nil || isEmptyDouble(cur) {
		s = &Struct{dims: []int{0, 0}}
	}
	lin, nd, err := assignIndex(s.dims, args)
	if err != nil {
		return nil, err
	}
	if len(lin) != 1 {
		return nil, engineErr("Incorrect number of right hand side elements in dot name assignment.  Missing [] around left hand side is a likely cause.")
	}
	elems := regrow(s.elems, s.dims, nd, map[string]value.Value(nil))
	el := elems[lin[0]]
	if el == nil {
		el = newElem(s.fields)
	}
	one := &Struct{dims: []int{1, 1}, fields: s.Fields(), elems: []map[string]value.Value{el}}
	nv, err := e.assignChain(one, rest, rhs)
	if err != nil {
		return nil, err
	}
	ns := nv.(*Struct)
	out := &Struct{dims: nd, fields: ns.Fields(), elems: elems}
	for i := range elems {
		if i == lin[0] {
			elems[i] = ns.elems[0]
			continue
		}
		elems[i] = withFields(elems[i], out.fields)
	}
	return out, nil
}

// indexAssign implements a(args) = rhs, including growth and deletion.
func indexAssign(cur value.Value, args []idxArg, rhs value.Value) (value.Value, error) {
	if cur != nil && isNullRHS(rhs) {
		return deleteFrom(cur, args)
	}
	if cur == nil || (isEmptyDouble(cur) && rhs.Class() != "double") {
		cur = emptyLike(rhs)
	}
	dims := cur.Dims()
	lin, nd, err := assignIndex(dims, args)
	if err != nil {
		return nil, err
	}

	switch c := cur.(type) {
	case value.Array:
		r, ok := toDouble(rhs)
		if !ok {
			return nil, engineErr("Conversion to double from %s is not possible.", rhs.Class())
		}
		data := regrow(c.Complex(), dims, nd, 0)
		if err := scatter(data, lin, r.Complex()); err != nil {
			return nil, err
		}
		return value.FromComplex(nd, data)
	case value.Char:
		var src []rune
		switch r := rhs.(type) {
		case value.Char:
			src = []rune(string(r))
		case value.Array:
			for _, x := range r.Real() {
				src = append(src, rune(x))
			}
		default:
			return nil, engineErr("Conversion to char from %s is not possible.", rhs.Class())
		}
		if nd[0] > 1 {
			return nil, engineErr("Multi-row char arrays are not supported.")
		}
		data := regrow([]rune(string(c)), dims, nd, 0)
		if err := scatter(data, lin, src); err != nil {
			return nil, err
		}
		return value.Char(string(data)), nil
	case *Cell:
		r, ok := rhs.(*Cell)
		if !ok {
			return nil, engineErr("Conversion to cell from %s is not possible.", rhs.Class())
		}
		data := regrow(c.elems, dims, nd, value.Value(value.Empty()))
		if err := scatter(data, lin, r.elems); err != nil {
			return nil, err
		}
		return &Cell{dims: nd, elems: data}, nil
	case *Struct:
		r, ok := rhs.(*Struct)
		if !ok {
			return nil, engineErr("Conversion to struct from %s is not possible.", rhs.Class())
		}
		fields := c.Fields()
		for _, f := range r.fields {
			if !contains(fields, f) {
				fields = append(fields, f)
			}
		}
		data := regrow(c.elems, dims, nd, map[string]value.Value(nil))
		vals := make([]map[string]value.Value, len(r.elems))
		for i, el := range r.elems {
			vals[i] = withFields(el, fields)
		}
		if err := scatter(data, lin, vals); err != nil {
			return nil, err
		}
		for i, el := range data {
			data[i] = withFields(el, fields)
		}
		return &Struct{dims: nd, fields: fields, elems: data}, nil
	}
	return nil, engineErr("Indexed assignment is not supported for class '%s'.", cur.Class())
}

func deleteFrom(cur value.Value, args []idxArg) (value.Value, error) {
	dims := cur.Dims()
	switch c := cur.(type) {
	case value.Array:
		data, nd, err := deleteIndex(c.Complex(), dims, args)
		if err != nil {
			return nil, err
		}
		return value.FromComplex(nd, data)
	case value.Char:
		data, _, err := deleteIndex([]rune(string(c)), dims, args)
		if err != nil {
			return nil, err
		}
		return value.Char(string(data)), nil
	case *Cell:
		data, nd, err := deleteIndex(c.elems, dims, args)
		if err != nil {
			return nil, err
		}
		return &Cell{dims: nd, elems: data}, nil
	case *Struct:
		data, nd, err := deleteIndex(c.elems, dims, args)
		if err != nil {
			return nil, err
		}
		return &Struct{dims: nd, fields: c.Fields(), elems: data}, nil
	}
	return nil, engineErr("Deletion is not supported for class '%s'.", cur.Class())
}

func isNullRHS(v value.Value) bool {
	a, ok := v.(value.Array)
	if !ok {
		return false
	}
	d := a.Dims()
	return len(d) == 2 && d[0] == 0 && d[1] == 0
}

func emptyLike(v value.Value) value.Value {
	switch v.(type) {
	case value.Char:
		return value.Char("")
	case *Cell:
		return &Cell{dims: []int{0, 0}}
	case *Struct:
		return &Struct{dims: []int{0, 0}}
	}
	return value.Empty()
}

func asStruct(v value.Value) (*Struct, error) {
	switch s := v.(type) {
	case nil:
		return &Struct{dims: []int{1, 1}, elems: []map[string]value.Value{{}}}, nil
	case *Struct:
		return s, nil
	}
	if isEmptyDouble(v) {
		return &Struct{dims: []int{1, 1}, elems: []map[string]value.Value{{}}}, nil
	}
	return nil, engineErr("Field assignment to a non-structure array object.")
}

func asCell(v value.Value) (*Cell, error) {
	switch c := v.(type) {
	case nil:
		return &Cell{dims: []int{0, 0}}, nil
	case *Cell:
		return c, nil
	}
	if isEmptyDouble(v) {
		return &Cell{dims: []int{0, 0}}, nil
	}
	return nil, engineErr("Cell contents assignment to a non-cell array object.")
}

// with returns a copy of s with element i's field set to v.
func (s *Struct) with(i int, field string, v value.Value) *Struct {
	out := &Struct{dims: s.Dims(), fields: s.Fields(), elems: make([]map[string]value.Value, len(s.elems))}
	if !s.hasField(field) {
		out.fields = append(out.fields, field)
	}
	for j, el := range s.elems {
		if j == i {
			m := make(map[string]value.Value, len(out.fields))
			for _, f := range out.fields {
				m[f] = value.Empty()
			}
			for k, fv := range el {
				m[k] = fv
			}
			m[field] = v
			out.elems[j] = m
			continue
		}
		out.elems[j] = withFields(el, out.fields)
	}
	return out
}

// withFields returns el extended with empty values for missing fields. el
// itself is returned when nothing is missing.
func withFields(el map[string]value.Value, fields []string) map[string]value.Value {
	if el != nil && len(el) == len(fields) {
		complete := true
		for _, f := range fields {
			if _, ok := el[f]; !ok {
				complete = false
				break
			}
		}
		if complete {
			return el
		}
	}
	m := make(map[string]value.Value, len(fields))
	for _, f := range fields {
		if v, ok := el[f]; ok {
			m[f] = v
		} else {
			m[f] = value.Empty()
		}
	}
	return m
}
