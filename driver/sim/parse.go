package sim

type node interface{}

type (
	numLit   struct{ v complex128 }
	strLit   struct{ s string }
	colonAll struct{}
	endExpr  struct{}
	binExpr  struct {
		op   string
		l, r node
	}
	unExpr struct {
		op string
		x  node
	}
	transposeExpr struct {
		x    node
		conj bool
	}
	rangeExpr struct{ start, step, stop node }
	matrixExpr struct {
		rows [][]node
		cell bool
	}
	// refExpr is an identifier followed by indexing and field accessors.
	refExpr struct {
		name  string
		chain []accessor
	}
)

type accessor struct {
	args  []node
	field string
	kind  byte // '(' '{' '.'
}

type (
	exprStmt   struct{ x node }
	assignStmt struct {
		lhs *refExpr
		rhs node
	}
	multiAssignStmt struct {
		lhs []*refExpr // nil entries are "~" placeholders
		rhs node
	}
)

type parser struct {
	toks []token
	pos  int
	// matrix is true directly inside [] or {}, where whitespace separates
	// elements.
	matrix bool
	index  int // depth of index argument lists, enables "end"
}

func parseStatement(src string) (node, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	st, err := p.statement()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tEOF {
		return nil, p.unexpected()
	}
	return st, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) peekAt(n int) token {
	if p.pos+n < len(p.toks) {
		return p.toks[p.pos+n]
	}
	return p.toks[len(p.toks)-1]
}
func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tEOF {
		p.pos++
	}
	return t
}

func (p *parser) accept(op string) bool {
	if p.peek().is(op) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(op string) error {
	if !p.accept(op) {
		return p.unexpected()
	}
	return nil
}

func (p *parser) unexpected() error {
	t := p.peek()
	if t.kind == tEOF {
		return syntaxErr("Expression or statement is incomplete or incorrect.")
	}
	return syntaxErr("Unexpected MATLAB expression.")
}

func (p *parser) statement() (node, error) {
	start := p.pos
	if p.peek().is("[") {
		if st, ok := p.tryMultiAssign(); ok {
			return st, nil
		}
		p.pos = start
	}
	if p.peek().kind == tIdent {
		if lhs, err := p.ref(); err == nil && p.peek().is("=") {
			p.next()
			rhs, err := p.expr()
			if err != nil {
				return nil, err
			}
			return &assignStmt{lhs: lhs, rhs: rhs}, nil
		}
		p.pos = start
	}
	x, err := p.expr()
	if err != nil {
		return nil, err
	}
	return &exprStmt{x: x}, nil
}

func (p *parser) tryMultiAssign() (node, bool) {
	p.next() // [
	var lhs []*refExpr
	for !p.peek().is("]") {
		switch t := p.peek(); {
		case t.is("~"):
			p.next()
			lhs = append(lhs, nil)
		case t.kind == tIdent:
			r, err := p.ref()
			if err != nil {
				return nil, false
			}
			lhs = append(lhs, r)
		default:
			return nil, false
		}
		p.accept(",")
	}
	p.next() // ]
	if len(lhs) == 0 || !p.accept("=") {
		return nil, false
	}
	rhs, err := p.expr()
	if err != nil {
		return nil, false
	}
	return &multiAssignStmt{lhs: lhs, rhs: rhs}, true
}

// ref parses NAME followed by (args), {args} and .field accessors.
func (p *parser) ref() (*refExpr, error) {
	t := p.next()
	r := &refExpr{name: t.text}
	for {
		t := p.peek()
		switch {
		case (t.is("(") || t.is("{")) && !(p.matrix && t.space):
			p.next()
			closer := ")"
			if t.text == "{" {
				closer = "}"
			}
			args, err := p.indexArgs(closer)
			if err != nil {
				return nil, err
			}
			r.chain = append(r.chain, accessor{kind: t.text[0], args: args})
		case t.is(".") && p.peekAt(1).kind == tIdent && !p.peekAt(1).space:
			p.next()
			r.chain = append(r.chain, accessor{kind: '.', field: p.next().text})
		default:
			return r, nil
		}
	}
}

func (p *parser) indexArgs(closer string) ([]node, error) {
	saved := p.matrix
	p.matrix = false
	p.index++
	defer func() {
		p.matrix = saved
		p.index--
	}()

	var args []node
	if p.accept(closer) {
		return args, nil
	}
	for {
		if p.peek().is(":") && (p.peekAt(1).is(",") || p.peekAt(1).is(closer)) {
			p.next()
			args = append(args, colonAll{})
		} else {
			a, err := p.expr()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
		}
		if p.accept(closer) {
			return args, nil
		}
		if err := p.expect(","); err != nil {
			return nil, err
		}
	}
}

func (p *parser) expr() (node, error) { return p.binary(0) }

var precedence = [][]string{
	{"||"},
	{"&&"},
	{"|"},
	{"&"},
	{"==", "~=", "!=", "<", "<=", ">", ">="},
	{":"},
	{"+", "-"},
	{"*", "/", ".*", "./", "\\"},
}

func (p *parser) binary(level int) (node, error) {
	if level == len(precedence) {
		return p.unary()
	}
	if precedence[level][0] == ":" {
		return p.rangeLevel(level)
	}
	l, err := p.binary(level + 1)
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tOp || !contains(precedence[level], t.text) {
			return l, nil
		}
		// Inside brackets "a -b" is two elements while "a - b" is one.
		if p.matrix && (t.text == "+" || t.text == "-") && t.space && !p.peekAt(1).space {
			return l, nil
		}
		p.next()
		r, err := p.binary(level + 1)
		if err != nil {
			return nil, err
		}
		op := t.text
		if op == "!=" {
			op = "~="
		}
		l = &binExpr{op: op, l: l, r: r}
	}
}

func (p *parser) rangeLevel(level int) (node, error) {
	start, err := p.binary(level + 1)
	if err != nil {
		return nil, err
	}
	if !p.peek().is(":") || p.peekAt(1).is(",") || p.peekAt(1).is(")") {
		return start, nil
	}
	p.next()
	second, err := p.binary(level + 1)
	if err != nil {
		return nil, err
	}
	if !p.accept(":") {
		return &rangeExpr{start: start, stop: second}, nil
	}
	third, err := p.binary(level + 1)
	if err != nil {
		return nil, err
	}
	return &rangeExpr{start: start, step: second, stop: third}, nil
}

func (p *parser) unary() (node, error) {
	t := p.peek()
	if t.is("-") || t.is("+") || t.is("~") || t.is("!") {
		p.next()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		op := t.text
		if op == "!" {
			op = "~"
		}
		return &unExpr{op: op, x: x}, nil
	}
	return p.power()
}

func (p *parser) power() (node, error) {
	base, err := p.postfix()
	if err != nil {
		return nil, err
	}
	for p.peek().is("^") || p.peek().is(".^") {
		op := p.next().text
		// The exponent may carry its own sign: 2^-1.
		var exp node
		if t := p.peek(); t.is("-") || t.is("+") {
			p.next()
			x, err := p.postfix()
			if err != nil {
				return nil, err
			}
			exp = &unExpr{op: t.text, x: x}
		} else if exp, err = p.postfix(); err != nil {
			return nil, err
		}
		base = &binExpr{op: op, l: base, r: exp}
	}
	return base, nil
}

func (p *parser) postfix() (node, error) {
	x, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		switch {
		case t.is("'") && !t.space:
			p.next()
			x = &transposeExpr{x: x, conj: true}
		case t.is(".'") && !t.space:
			p.next()
			x = &transposeExpr{x: x}
		default:
			return x, nil
		}
	}
}

func (p *parser) primary() (node, error) {
	t := p.peek()
	switch t.kind {
	case tNum:
		p.next()
		return &numLit{v: t.num}, nil
	case tStr:
		p.next()
		return &strLit{s: t.text}, nil
	case tIdent:
		if t.text == "end" && p.index > 0 {
			p.next()
			return endExpr{}, nil
		}
		return p.ref()
	case tOp:
		switch t.text {
		case "(":
			p.next()
			saved := p.matrix
			p.matrix = false
			x, err := p.expr()
			p.matrix = saved
			if err != nil {
				return nil, err
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			return x, nil
		case "[":
			p.next()
			return p.matrixLit("]", false)
		case "{":
			p.next()
			return p.matrixLit("}", true)
		}
	}
	return nil, p.unexpected()
}

func (p *parser) matrixLit(closer string, cell bool) (node, error) {
	saved := p.matrix
	p.matrix = true
	defer func() { p.matrix = saved }()

	m := &matrixExpr{cell: cell}
	var row []node
	for {
		t := p.peek()
		switch {
		case t.is(closer):
			p.next()
			if len(row) > 0 {
				m.rows = append(m.rows, row)
			}
			return m, nil
		case t.is(";"):
			p.next()
			if len(row) > 0 {
				m.rows = append(m.rows, row)
			}
			row = nil
		case t.is(","):
			p.next()
		case t.kind == tEOF:
			return nil, p.unexpected()
		default:
			x, err := p.expr()
			if err != nil {
				return nil, err
			}
			row = append(row, x)
		}
	}
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
