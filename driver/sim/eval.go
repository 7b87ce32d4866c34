package sim

import (
	"strings"

	"github.com/wippyai/enginewrap/value"
)

type endCtx struct {
	dims []int
	pos  int
	n    int
}

// run executes a program, appending echoed output to e.out.
func (e *Engine) run(src string) error {
	for _, st := range splitStatements(src) {
		if err := e.runStatement(st); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) runStatement(st stmtText) error {
	if name, words, ok := commandSyntax(st.text, e.isVar); ok {
		if fn := e.lookup(name); fn != nil {
			args := make([]value.Value, len(words))
			for i, w := range words {
				args[i] = value.Char(w)
			}
			vals, err := e.call(fn, args, 0)
			if err != nil {
				return err
			}
			e.setAns(vals, st.suppress)
			return nil
		}
	}

	n, err := parseStatement(st.text)
	if err != nil {
		return err
	}
	switch n := n.(type) {
	case *assignStmt:
		rhs, err := e.evalValue(n.rhs)
		if err != nil {
			return err
		}
		if err := e.assign(n.lhs, rhs); err != nil {
			return err
		}
		if !st.suppress {
			e.out.WriteString(display(n.lhs.name, e.vars[n.lhs.name]))
		}
	case *multiAssignStmt:
		vals, err := e.evalMulti(n.rhs, len(n.lhs))
		if err != nil {
			return err
		}
		if len(vals) < len(n.lhs) {
			return engineErr("Insufficient number of outputs from right hand side of equal sign to satisfy assignment.")
		}
		for i, lhs := range n.lhs {
			if lhs == nil {
				continue
			}
			if err := e.assign(lhs, vals[i]); err != nil {
				return err
			}
			if !st.suppress {
				e.out.WriteString(display(lhs.name, e.vars[lhs.name]))
			}
		}
	case *exprStmt:
		if ref, ok := n.x.(*refExpr); ok {
			if v, isVar := e.vars[ref.name]; isVar && len(ref.chain) == 0 {
				if !st.suppress {
					e.out.WriteString(display(ref.name, v))
				}
				return nil
			}
			vals, err := e.evalRef(ref, 0)
			if err != nil {
				return err
			}
			e.setAns(vals, st.suppress)
			return nil
		}
		v, err := e.evalValue(n.x)
		if err != nil {
			return err
		}
		e.setAns([]value.Value{v}, st.suppress)
	}
	return nil
}

func (e *Engine) setAns(vals []value.Value, suppress bool) {
	for _, v := range vals {
		e.vars["ans"] = v
		if !suppress {
			e.out.WriteString(display("ans", v))
		}
	}
}

func (e *Engine) isVar(name string) bool {
	_, ok := e.vars[name]
	return ok
}

// evalMulti evaluates n as a comma-separated list, requesting nargout
// values from function calls.
func (e *Engine) evalMulti(n node, nargout int) ([]value.Value, error) {
	if ref, ok := n.(*refExpr); ok {
		return e.evalRef(ref, nargout)
	}
	v, err := e.evalValue(n)
	if err != nil {
		return nil, err
	}
	return []value.Value{v}, nil
}

func (e *Engine) evalValue(n node) (value.Value, error) {
	switch n := n.(type) {
	case *numLit:
		return value.ComplexScalar(n.v), nil
	case *strLit:
		return value.Char(n.s), nil
	case colonAll:
		return value.Char(":"), nil
	case endExpr:
		return e.endValue()
	case *refExpr:
		vals, err := e.evalRef(n, 1)
		if err != nil {
			return nil, err
		}
		if len(vals) == 0 {
			if _, isVar := e.vars[n.name]; isVar {
				return nil, engineErr("Index exceeds matrix dimensions.")
			}
			return nil, engineErr("Too many output arguments.")
		}
		return vals[0], nil
	case *binExpr:
		if n.op == "&&" || n.op == "||" {
			return e.shortCircuit(n)
		}
		l, err := e.evalValue(n.l)
		if err != nil {
			return nil, err
		}
		r, err := e.evalValue(n.r)
		if err != nil {
			return nil, err
		}
		return binaryOp(n.op, l, r)
	case *unExpr:
		x, err := e.evalValue(n.x)
		if err != nil {
			return nil, err
		}
		return unaryOp(n.op, x)
	case *transposeExpr:
		x, err := e.evalValue(n.x)
		if err != nil {
			return nil, err
		}
		return transpose(x, n.conj)
	case *rangeExpr:
		return e.evalRange(n)
	case *matrixExpr:
		return e.evalMatrix(n)
	}
	return nil, engineErr("Unsupported expression.")
}

func (e *Engine) shortCircuit(n *binExpr) (value.Value, error) {
	l, err := e.evalValue(n.l)
	if err != nil {
		return nil, err
	}
	lt, err := truthy(l)
	if err != nil {
		return nil, err
	}
	if (n.op == "&&" && !lt) || (n.op == "||" && lt) {
		return boolValue(lt), nil
	}
	r, err := e.evalValue(n.r)
	if err != nil {
		return nil, err
	}
	rt, err := truthy(r)
	if err != nil {
		return nil, err
	}
	return boolValue(rt), nil
}

func (e *Engine) evalRange(n *rangeExpr) (value.Value, error) {
	scalar := func(x node) (float64, error) {
		v, err := e.evalValue(x)
		if err != nil {
			return 0, err
		}
		a, ok := toDouble(v)
		if !ok || a.IsEmpty() {
			return 0, engineErr("Colon operands must be real scalars.")
		}
		return a.Real()[0], nil
	}
	start, err := scalar(n.start)
	if err != nil {
		return nil, err
	}
	step := 1.0
	if n.step != nil {
		if step, err = scalar(n.step); err != nil {
			return nil, err
		}
	}
	stop, err := scalar(n.stop)
	if err != nil {
		return nil, err
	}
	return rangeValues(start, step, stop)
}

func (e *Engine) evalRef(r *refExpr, nargout int) ([]value.Value, error) {
	if v, ok := e.vars[r.name]; ok {
		return e.applyChain([]value.Value{v}, r.chain)
	}
	fn := e.lookup(r.name)
	if fn == nil {
		return nil, engineErr("Undefined function or variable '%s'.", r.name)
	}
	chain := r.chain
	var args []value.Value
	if len(chain) > 0 {
		switch chain[0].kind {
		case '(':
			var err error
			if args, err = e.evalArgs(chain[0].args); err != nil {
				return nil, err
			}
			chain = chain[1:]
		case '{':
			return nil, engineErr("Cell contents reference from a non-cell array object.")
		}
	}
	vals, err := e.call(fn, args, nargout)
	if err != nil {
		return nil, err
	}
	if len(chain) > 0 {
		return e.applyChain(vals[:min(len(vals), 1)], chain)
	}
	return vals, nil
}

// call invokes fn. Errors raised inside the function are attributed to it.
func (e *Engine) call(fn *function, args []value.Value, nargout int) ([]value.Value, error) {
	if fn.nin >= 0 && len(args) > fn.nin {
		return nil, engineErr("Error using ==> %s\nToo many input arguments.", fn.name)
	}
	if fn.nout >= 0 && nargout > fn.nout {
		return nil, engineErr("Error using ==> %s\nToo many output arguments.", fn.name)
	}
	vals, err := fn.fn(e, args, nargout)
	if err != nil {
		if fn.name == "error" || strings.HasPrefix(errMessage(err), "Error using ==> ") {
			return nil, err
		}
		return nil, engineErr("Error using ==> %s\n%s", fn.name, errMessage(err))
	}
	if limit := max(nargout, 1); len(vals) > limit {
		vals = vals[:limit]
	}
	return vals, nil
}

func (e *Engine) evalArgs(nodes []node) ([]value.Value, error) {
	var args []value.Value
	for _, n := range nodes {
		if ref, ok := n.(*refExpr); ok {
			vals, err := e.evalRef(ref, 1)
			if err != nil {
				return nil, err
			}
			if len(vals) == 0 && !e.isVar(ref.name) {
				return nil, engineErr("Too many output arguments.")
			}
			args = append(args, vals...)
			continue
		}
		v, err := e.evalValue(n)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

func (e *Engine) applyChain(vals []value.Value, chain []accessor) ([]value.Value, error) {
	for _, acc := range chain {
		if len(vals) != 1 {
			return nil, engineErr("Expected one output from a curly brace or dot indexing expression, but there were %d results.", len(vals))
		}
		base := vals[0]
		switch acc.kind {
		case '(':
			args, err := e.indexArgs(acc.args, base.Dims())
			if err != nil {
				return nil, err
			}
			v, err := indexRead(base, args)
			if err != nil {
				return nil, err
			}
			vals = []value.Value{v}
		case '{':
			c, ok := base.(*Cell)
			if !ok {
				return nil, engineErr("Cell contents reference from a non-cell array object.")
			}
			args, err := e.indexArgs(acc.args, c.dims)
			if err != nil {
				return nil, err
			}
			lin, _, err := readIndex(c.dims, args)
			if err != nil {
				return nil, err
			}
			vals = gather(c.elems, lin)
		case '.':
			s, ok := base.(*Struct)
			if !ok {
				return nil, engineErr("Attempt to reference field of non-structure array.")
			}
			if !s.hasField(acc.field) {
				return nil, engineErr("Reference to non-existent field '%s'.", acc.field)
			}
			vals = make([]value.Value, len(s.elems))
			for i, el := range s.elems {
				vals[i] = el[acc.field]
			}
		}
	}
	return vals, nil
}

func (e *Engine) indexArgs(nodes []node, dims []int) ([]idxArg, error) {
	args := make([]idxArg, 0, len(nodes))
	for i, n := range nodes {
		if _, ok := n.(colonAll); ok {
			args = append(args, idxArg{all: true})
			continue
		}
		e.ends = append(e.ends, endCtx{dims: dims, pos: i, n: len(nodes)})
		v, err := e.evalValue(n)
		e.ends = e.ends[:len(e.ends)-1]
		if err != nil {
			return nil, err
		}
		a, err := toIdxArg(v)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}
	return args, nil
}

func (e *Engine) endValue() (value.Value, error) {
	if len(e.ends) == 0 {
		return nil, syntaxErr("'end' used outside an index expression.")
	}
	ctx := e.ends[len(e.ends)-1]
	d := dims2(ctx.dims)
	if ctx.n == 1 {
		return value.Scalar(float64(productOf(d))), nil
	}
	if ctx.pos >= len(d) {
		return value.Scalar(1), nil
	}
	if ctx.pos == ctx.n-1 {
		return value.Scalar(float64(productOf(d[ctx.pos:]))), nil
	}
	return value.Scalar(float64(d[ctx.pos])), nil
}

func productOf(d []int) int {
	n := 1
	for _, x := range d {
		n *= x
	}
	return n
}

func indexRead(base value.Value, args []idxArg) (value.Value, error) {
	lin, out, err := readIndex(base.Dims(), args)
	if err != nil {
		return nil, err
	}
	switch b := base.(type) {
	case value.Array:
		return value.FromComplex(out, gather(b.Complex(), lin))
	case value.Char:
		return value.Char(string(gather([]rune(string(b)), lin))), nil
	case *Cell:
		return &Cell{dims: out, elems: gather(b.elems, lin)}, nil
	case *Struct:
		return &Struct{dims: out, fields: b.Fields(), elems: gather(b.elems, lin)}, nil
	}
	return nil, engineErr("Indexing is not supported for class '%s'.", base.Class())
}
