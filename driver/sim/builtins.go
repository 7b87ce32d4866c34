package sim

import (
	"math"
	"math/cmplx"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/wippyai/enginewrap/errors"
	"github.com/wippyai/enginewrap/value"
)

type builtinFn = func(e *Engine, args []value.Value, nargout int) ([]value.Value, error)

var builtins map[string]*function

func init() {
	builtins = make(map[string]*function)
	def := func(name string, nin, nout int, fn builtinFn) {
		builtins[name] = &function{name: name, nin: nin, nout: nout, fn: fn, builtin: true}
	}

	def("class", 1, 1, unary(func(v value.Value) (value.Value, error) { return value.Char(v.Class()), nil }))
	def("exist", 2, 1, biExist)
	def("help", 1, 1, biHelp)
	def("nargin", 1, 1, biArity(true))
	def("nargout", 1, 1, biArity(false))
	def("size", 2, -1, biSize)
	def("ndims", 1, 1, unary(func(v value.Value) (value.Value, error) {
		return value.Scalar(float64(len(dims2(v.Dims())))), nil
	}))
	def("numel", 1, 1, unary(func(v value.Value) (value.Value, error) { return value.Scalar(float64(numel(v))), nil }))
	def("length", 1, 1, unary(func(v value.Value) (value.Value, error) {
		if isEmpty(v) {
			return value.Scalar(0), nil
		}
		n := 0
		for _, d := range v.Dims() {
			n = max(n, d)
		}
		return value.Scalar(float64(n)), nil
	}))
	def("isempty", 1, 1, unary(func(v value.Value) (value.Value, error) { return boolValue(isEmpty(v)), nil }))
	def("ischar", 1, 1, classTest("char"))
	def("iscell", 1, 1, classTest("cell"))
	def("isstruct", 1, 1, classTest("struct"))
	def("isnumeric", 1, 1, classTest("double"))

	def("sort", 2, 2, biSort)
	def("sin", 1, 1, numeric(math.Sin, cmplx.Sin))
	def("cos", 1, 1, numeric(math.Cos, cmplx.Cos))
	def("sqrt", 1, 1, biSqrt)
	def("abs", 1, 1, biAbs)
	def("round", 1, 1, numeric(math.Round, func(c complex128) complex128 {
		return complex(math.Round(real(c)), math.Round(imag(c)))
	}))
	def("sum", 2, 1, biSum)
	def("min", 2, 2, extremum(func(a, b float64) bool { return a < b }))
	def("max", 2, 2, extremum(func(a, b float64) bool { return a > b }))
	def("zeros", -1, 1, filled(0))
	def("ones", -1, 1, filled(1))
	def("cell", -1, 1, biCell)
	def("deal", -1, -1, biDeal)
	def("struct", -1, 1, biStruct)
	def("fieldnames", 1, 1, biFieldnames)
	def("isfield", 2, 1, biIsfield)

	def("disp", 1, 0, biDisp)
	def("who", -1, 1, biWho)
	def("clear", -1, 0, biClear)
	def("cd", 1, 1, biCd)
	def("pwd", 0, 1, func(e *Engine, _ []value.Value, _ int) ([]value.Value, error) {
		return []value.Value{value.Char(e.cwd)}, nil
	})
	def("num2str", 1, 1, unary(num2str))
	def("sprintf", -1, 1, biSprintf)
	def("upper", 1, 1, caseMap(strings.ToUpper))
	def("lower", 1, 1, caseMap(strings.ToLower))
	def("error", -1, 0, biError)

	constant := func(name string, v value.Value) {
		def(name, 0, 1, func(*Engine, []value.Value, int) ([]value.Value, error) { return []value.Value{v}, nil })
	}
	constant("pi", value.Scalar(math.Pi))
	constant("Inf", value.Scalar(math.Inf(1)))
	constant("inf", value.Scalar(math.Inf(1)))
	constant("NaN", value.Scalar(math.NaN()))
	constant("nan", value.Scalar(math.NaN()))
	constant("eps", value.Scalar(math.Nextafter(1, 2)-1))
	constant("i", value.ComplexScalar(1i))
	constant("j", value.ComplexScalar(1i))
	constant("true", value.Scalar(1))
	constant("false", value.Scalar(0))

	for name, fn := range builtins {
		fn.help = helpTexts[strings.ToLower(name)]
	}
}

func one(v value.Value) []value.Value { return []value.Value{v} }

func needArgs(args []value.Value, n int) error {
	if len(args) < n {
		return engineErr("Not enough input arguments.")
	}
	return nil
}

func unary(f func(value.Value) (value.Value, error)) builtinFn {
	return func(_ *Engine, args []value.Value, _ int) ([]value.Value, error) {
		if err := needArgs(args, 1); err != nil {
			return nil, err
		}
		v, err := f(args[0])
		if err != nil {
			return nil, err
		}
		return one(v), nil
	}
}

func classTest(class string) builtinFn {
	return unary(func(v value.Value) (value.Value, error) { return boolValue(v.Class() == class), nil })
}

func textArg(args []value.Value, i int) (string, error) {
	if i >= len(args) {
		return "", engineErr("Not enough input arguments.")
	}
	s, ok := toText(args[i])
	if !ok {
		return "", engineErr("Argument must be a string.")
	}
	return s, nil
}

func intArg(v value.Value) (int, error) {
	a, ok := v.(value.Array)
	if !ok {
		return 0, engineErr("Size inputs must be numeric.")
	}
	f, ok := a.Float()
	if !ok || f != math.Trunc(f) {
		return 0, engineErr("Size inputs must be integer scalars.")
	}
	return max(int(f), 0), nil
}

// sizeArgs reads (N), (M,N) or ([M N]) size arguments.
func sizeArgs(args []value.Value) ([]int, error) {
	switch len(args) {
	case 0:
		return []int{1, 1}, nil
	case 1:
		a, ok := args[0].(value.Array)
		if ok && a.Len() > 1 {
			dims := make([]int, a.Len())
			for i, x := range a.Real() {
				dims[i] = max(int(x), 0)
			}
			return dims, nil
		}
		n, err := intArg(args[0])
		if err != nil {
			return nil, err
		}
		return []int{n, n}, nil
	}
	dims := make([]int, len(args))
	for i, v := range args {
		n, err := intArg(v)
		if err != nil {
			return nil, err
		}
		dims[i] = n
	}
	return dims, nil
}

func (e *Engine) existKind(name string) int {
	if _, ok := e.vars[name]; ok {
		return 1
	}
	if _, ok := e.funcs[name]; ok {
		return 2
	}
	if _, ok := builtins[name]; ok {
		return 5
	}
	if name != "" && e.isDir(name) {
		return 7
	}
	return 0
}

func (e *Engine) resolvePath(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(e.cwd, p)
}

func (e *Engine) isDir(p string) bool {
	info, err := os.Stat(e.resolvePath(p))
	return err == nil && info.IsDir()
}

func biExist(e *Engine, args []value.Value, _ int) ([]value.Value, error) {
	name, err := textArg(args, 0)
	if err != nil {
		return nil, err
	}
	kind := e.existKind(name)
	if len(args) > 1 {
		filter, err := textArg(args, 1)
		if err != nil {
			return nil, err
		}
		want := map[string]int{"var": 1, "builtin": 5, "dir": 7, "file": 2}[filter]
		if filter == "dir" && e.isDir(name) {
			kind = 7
		}
		if kind != want {
			kind = 0
		}
	}
	return one(value.Scalar(float64(kind))), nil
}

func (e *Engine) helpText(name string) (string, bool) {
	if fn, ok := e.funcs[name]; ok {
		return fn.help, true
	}
	if fn, ok := builtins[name]; ok {
		return fn.help, true
	}
	if t, ok := helpTexts[strings.ToLower(name)]; ok {
		return t, true
	}
	return "", false
}

func biHelp(e *Engine, args []value.Value, nargout int) ([]value.Value, error) {
	var text string
	if len(args) == 0 {
		names := make([]string, 0, len(builtins))
		for name := range builtins {
			names = append(names, name)
		}
		sort.Strings(names)
		text = "Built-in functions:\n\n    " + strings.Join(names, "\n    ") + "\n"
	} else {
		name, err := textArg(args, 0)
		if err != nil {
			return nil, err
		}
		t, ok := e.helpText(name)
		if !ok && nargout == 0 {
			e.out.WriteString("\n" + name + " not found.\n\n")
			return nil, nil
		}
		text = t
	}
	if nargout == 0 {
		e.out.WriteString(text)
		return nil, nil
	}
	return one(value.Char(text)), nil
}

func biArity(in bool) builtinFn {
	label := "NARGOUT"
	if in {
		label = "NARGIN"
	}
	return func(e *Engine, args []value.Value, _ int) ([]value.Value, error) {
		name, err := textArg(args, 0)
		if err != nil {
			return nil, err
		}
		if fn, ok := e.funcs[name]; ok {
			n := fn.nout
			if in {
				n = fn.nin
			}
			return one(value.Scalar(float64(n))), nil
		}
		if _, ok := builtins[name]; ok {
			return nil, engineErr("%s cannot determine the number of arguments for built-in functions.", label)
		}
		return nil, engineErr("Function '%s' does not exist.", name)
	}
}

func biSize(_ *Engine, args []value.Value, nargout int) ([]value.Value, error) {
	if err := needArgs(args, 1); err != nil {
		return nil, err
	}
	d := dims2(args[0].Dims())
	if len(args) == 2 {
		k, err := intArg(args[1])
		if err != nil || k < 1 {
			return nil, engineErr("Dimension argument must be a positive integer scalar.")
		}
		if k > len(d) {
			return one(value.Scalar(1)), nil
		}
		return one(value.Scalar(float64(d[k-1]))), nil
	}
	if nargout <= 1 {
		xs := make([]float64, len(d))
		for i, x := range d {
			xs[i] = float64(x)
		}
		return one(value.Row(xs...)), nil
	}
	out := make([]value.Value, nargout)
	for i := range out {
		switch {
		case i < nargout-1 && i < len(d):
			out[i] = value.Scalar(float64(d[i]))
		case i == nargout-1 && i < len(d):
			out[i] = value.Scalar(float64(productOf(d[i:])))
		default:
			out[i] = value.Scalar(1)
		}
	}
	return out, nil
}

func numericArg(args []value.Value, name string) (value.Array, error) {
	if err := needArgs(args, 1); err != nil {
		return value.Array{}, err
	}
	a, ok := toDouble(args[0])
	if !ok {
		return value.Array{}, engineErr("Undefined function or method '%s' for input arguments of type '%s'.", name, args[0].Class())
	}
	return a, nil
}

func numeric(re func(float64) float64, cx func(complex128) complex128) builtinFn {
	return func(_ *Engine, args []value.Value, _ int) ([]value.Value, error) {
		a, err := numericArg(args, "numeric")
		if err != nil {
			return nil, err
		}
		if !a.IsComplex() {
			return one(mapReal(a, re)), nil
		}
		v, err := mapComplex(a, cx)
		if err != nil {
			return nil, err
		}
		return one(v), nil
	}
}

func biSqrt(_ *Engine, args []value.Value, _ int) ([]value.Value, error) {
	a, err := numericArg(args, "sqrt")
	if err != nil {
		return nil, err
	}
	v, err := mapComplex(a, func(c complex128) complex128 {
		if imag(c) == 0 && real(c) >= 0 {
			return complex(math.Sqrt(real(c)), 0)
		}
		return cmplx.Sqrt(c)
	})
	if err != nil {
		return nil, err
	}
	return one(v), nil
}

func biAbs(_ *Engine, args []value.Value, _ int) ([]value.Value, error) {
	a, err := numericArg(args, "abs")
	if err != nil {
		return nil, err
	}
	xs := a.Complex()
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = cmplx.Abs(x)
	}
	return one(value.MustArray(a.Dims(), out, nil)), nil
}

// firstNonSingleton returns the zero-based dimension reductions work along.
func firstNonSingleton(d []int) int {
	for i, x := range d {
		if x != 1 {
			return i
		}
	}
	return 0
}

// reduce applies f to every vector along dimension dim of a 2-D array.
func reduce(a value.Array, dim int, f func([]complex128) complex128) (value.Array, error) {
	d := dims2(a.Dims())
	if len(d) != 2 || dim > 1 {
		return value.Array{}, engineErr("Only two-dimensional arrays are supported.")
	}
	xs := a.Complex()
	rows, cols := d[0], d[1]
	if dim == 0 {
		out := make([]complex128, cols)
		for c := range out {
			out[c] = f(xs[c*rows : (c+1)*rows])
		}
		return value.FromComplex([]int{1, cols}, out)
	}
	out := make([]complex128, rows)
	for r := range out {
		line := make([]complex128, cols)
		for c := range line {
			line[c] = xs[c*rows+r]
		}
		out[r] = f(line)
	}
	return value.FromComplex([]int{rows, 1}, out)
}

func biSum(_ *Engine, args []value.Value, _ int) ([]value.Value, error) {
	a, err := numericArg(args, "sum")
	if err != nil {
		return nil, err
	}
	d := dims2(a.Dims())
	if len(d) == 2 && d[0] == 0 && d[1] == 0 {
		return one(value.Scalar(0)), nil
	}
	dim := firstNonSingleton(d)
	if len(args) > 1 {
		k, err := intArg(args[1])
		if err != nil || k < 1 {
			return nil, engineErr("Dimension argument must be a positive integer scalar.")
		}
		dim = k - 1
	}
	r, err := reduce(a, dim, func(xs []complex128) complex128 {
		var s complex128
		for _, x := range xs {
			s += x
		}
		return s
	})
	if err != nil {
		return nil, err
	}
	return one(r), nil
}

// less orders values the way sort, min and max do: complex numbers by
// magnitude then angle, NaN after everything else.
func less(x, y complex128) bool {
	if cmplx.IsNaN(x) {
		return false
	}
	if cmplx.IsNaN(y) {
		return true
	}
	if imag(x) == 0 && imag(y) == 0 {
		return real(x) < real(y)
	}
	if ax, ay := cmplx.Abs(x), cmplx.Abs(y); ax != ay {
		return ax < ay
	}
	return cmplx.Phase(x) < cmplx.Phase(y)
}

func biSort(_ *Engine, args []value.Value, nargout int) ([]value.Value, error) {
	if err := needArgs(args, 1); err != nil {
		return nil, err
	}
	descend := false
	if len(args) > 1 {
		mode, err := textArg(args, 1)
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(mode) {
		case "ascend":
		case "descend":
			descend = true
		default:
			return nil, engineErr("Sorting direction must be 'ascend' or 'descend'.")
		}
	}

	if s, ok := args[0].(value.Char); ok {
		rs := []rune(string(s))
		idx := sortedOrder(len(rs), func(i, j int) bool { return rs[i] < rs[j] }, descend)
		out := make([]rune, len(rs))
		pos := make([]float64, len(rs))
		for k, i := range idx {
			out[k], pos[k] = rs[i], float64(i+1)
		}
		return []value.Value{value.Char(string(out)), value.MustArray(s.Dims(), pos, nil)}, nil
	}

	a, ok := args[0].(value.Array)
	if !ok {
		return nil, engineErr("Input argument must be a numeric array or a string.")
	}
	d := dims2(a.Dims())
	xs := a.Complex()
	sorted := make([]complex128, len(xs))
	pos := make([]float64, len(xs))

	rows := d[0]
	lines := 1
	if !isVectorDims(d) || d[0] != 1 {
		lines = len(xs) / max(rows, 1)
	} else {
		rows = len(xs)
	}
	if len(xs) == 0 {
		lines = 0
	}
	for l := 0; l < lines; l++ {
		seg := xs[l*rows : (l+1)*rows]
		idx := sortedOrder(len(seg), func(i, j int) bool { return less(seg[i], seg[j]) }, descend)
		for k, i := range idx {
			sorted[l*rows+k] = seg[i]
			pos[l*rows+k] = float64(i + 1)
		}
	}
	y, err := value.FromComplex(a.Dims(), sorted)
	if err != nil {
		return nil, err
	}
	return []value.Value{y, value.MustArray(a.Dims(), pos, nil)}, nil
}

func sortedOrder(n int, lessFn func(i, j int) bool, descend bool) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if descend {
			return lessFn(idx[b], idx[a])
		}
		return lessFn(idx[a], idx[b])
	})
	return idx
}

func extremum(better func(a, b float64) bool) builtinFn {
	pick := func(x, y complex128) bool {
		if cmplx.IsNaN(y) {
			return true
		}
		if cmplx.IsNaN(x) {
			return false
		}
		if imag(x) == 0 && imag(y) == 0 {
			return !better(real(y), real(x))
		}
		return !better(cmplx.Abs(y), cmplx.Abs(x))
	}
	return func(_ *Engine, args []value.Value, _ int) ([]value.Value, error) {
		a, err := numericArg(args, "max")
		if err != nil {
			return nil, err
		}
		if len(args) == 2 {
			b, ok := toDouble(args[1])
			if !ok {
				return nil, engineErr("Input arguments must be numeric.")
			}
			v, err := elementwise(a, b, func(x, y complex128) complex128 {
				if pick(x, y) {
					return x
				}
				return y
			})
			if err != nil {
				return nil, err
			}
			return one(v), nil
		}
		if a.IsEmpty() {
			return []value.Value{value.Empty(), value.Empty()}, nil
		}
		var idx []float64
		v, err := reduce(a, firstNonSingleton(dims2(a.Dims())), func(xs []complex128) complex128 {
			best := 0
			for i := 1; i < len(xs); i++ {
				if !pick(xs[best], xs[i]) {
					best = i
				}
			}
			idx = append(idx, float64(best+1))
			return xs[best]
		})
		if err != nil {
			return nil, err
		}
		return []value.Value{v, value.MustArray(v.Dims(), idx, nil)}, nil
	}
}

func filled(x float64) builtinFn {
	return func(_ *Engine, args []value.Value, _ int) ([]value.Value, error) {
		dims, err := sizeArgs(args)
		if err != nil {
			return nil, err
		}
		xs := make([]float64, productOf(dims))
		for i := range xs {
			xs[i] = x
		}
		return one(value.MustArray(dims, xs, nil)), nil
	}
}

func biCell(_ *Engine, args []value.Value, _ int) ([]value.Value, error) {
	dims, err := sizeArgs(args)
	if err != nil {
		return nil, err
	}
	return one(NewCell(dims, make([]value.Value, productOf(dims)))), nil
}

func biDeal(_ *Engine, args []value.Value, nargout int) ([]value.Value, error) {
	n := max(nargout, 1)
	switch {
	case len(args) == 1:
		out := make([]value.Value, n)
		for i := range out {
			out[i] = args[0]
		}
		return out, nil
	case len(args) == n:
		return args, nil
	}
	return nil, engineErr("The number of outputs should match the number of inputs.")
}

func biStruct(_ *Engine, args []value.Value, _ int) ([]value.Value, error) {
	if len(args)%2 != 0 {
		return nil, engineErr("Field and value input arguments must come in pairs.")
	}
	dims := []int{1, 1}
	var arrayCell *Cell
	for i := 1; i < len(args); i += 2 {
		if c, ok := args[i].(*Cell); ok && len(c.elems) != 1 {
			if arrayCell != nil && !sameDims(dims2(arrayCell.dims), dims2(c.dims)) {
				return nil, engineErr("Array dimensions of input 4 must match those of input 2 or be scalar.")
			}
			arrayCell = c
			dims = dims2(c.dims)
		}
	}
	n := productOf(dims)
	s := &Struct{dims: dims, elems: make([]map[string]value.Value, n)}
	for k := range s.elems {
		s.elems[k] = map[string]value.Value{}
	}
	for i := 0; i < len(args); i += 2 {
		name, ok := toText(args[i])
		if !ok || !IsIdentifier(name) {
			return nil, engineErr("Field names must be valid identifiers.")
		}
		if !s.hasField(name) {
			s.fields = append(s.fields, name)
		}
		for k := range s.elems {
			v := args[i+1]
			if c, ok := v.(*Cell); ok {
				if len(c.elems) == 1 {
					v = c.elems[0]
				} else {
					v = c.elems[k]
				}
			}
			s.elems[k][name] = v
		}
	}
	return one(s), nil
}

func biFieldnames(_ *Engine, args []value.Value, _ int) ([]value.Value, error) {
	if err := needArgs(args, 1); err != nil {
		return nil, err
	}
	s, ok := args[0].(*Struct)
	if !ok {
		return nil, engineErr("Invalid input argument of type '%s'. Input must be a structure.", args[0].Class())
	}
	return one(cellOfStrings(s.fields, true)), nil
}

func biIsfield(_ *Engine, args []value.Value, _ int) ([]value.Value, error) {
	if err := needArgs(args, 2); err != nil {
		return nil, err
	}
	s, isStruct := args[0].(*Struct)
	has := func(name string) bool { return isStruct && s.hasField(name) }
	switch f := args[1].(type) {
	case value.Char:
		return one(boolValue(has(string(f)))), nil
	case *Cell:
		xs := make([]float64, len(f.elems))
		for i, el := range f.elems {
			if name, ok := toText(el); ok && has(name) {
				xs[i] = 1
			}
		}
		return one(value.MustArray(f.Dims(), xs, nil)), nil
	}
	return one(boolValue(false)), nil
}

func biDisp(e *Engine, args []value.Value, _ int) ([]value.Value, error) {
	if err := needArgs(args, 1); err != nil {
		return nil, err
	}
	if isEmpty(args[0]) {
		return nil, nil
	}
	e.out.WriteString(formatValue(args[0]) + "\n")
	return nil, nil
}

func biWho(e *Engine, _ []value.Value, nargout int) ([]value.Value, error) {
	names := sortedKeys(e.vars)
	if nargout > 0 {
		return one(cellOfStrings(names, true)), nil
	}
	if len(names) > 0 {
		e.out.WriteString("\nYour variables are:\n\n" + strings.Join(names, "  ") + "\n\n")
	}
	return nil, nil
}

func biClear(e *Engine, args []value.Value, _ int) ([]value.Value, error) {
	if len(args) == 0 {
		e.vars = make(map[string]value.Value)
		return nil, nil
	}
	for i := range args {
		name, err := textArg(args, i)
		if err != nil {
			return nil, err
		}
		switch {
		case name == "all" || name == "variables" || name == "-all":
			e.vars = make(map[string]value.Value)
		case strings.ContainsAny(name, "*?"):
			for v := range e.vars {
				if ok, _ := path.Match(name, v); ok {
					delete(e.vars, v)
				}
			}
		default:
			delete(e.vars, name)
		}
	}
	return nil, nil
}

func biCd(e *Engine, args []value.Value, nargout int) ([]value.Value, error) {
	old := e.cwd
	if len(args) == 0 {
		if nargout == 0 {
			e.out.WriteString(old + "\n")
			return nil, nil
		}
		return one(value.Char(old)), nil
	}
	dir, err := textArg(args, 0)
	if err != nil {
		return nil, err
	}
	if !e.isDir(dir) {
		return nil, engineErr("Cannot CD to %s (Name is nonexistent or not a directory).", dir)
	}
	e.cwd = e.resolvePath(dir)
	if nargout == 0 {
		return nil, nil
	}
	return one(value.Char(old)), nil
}

func num2str(v value.Value) (value.Value, error) {
	switch v := v.(type) {
	case value.Char:
		return v, nil
	case value.Array:
		xs := v.Complex()
		parts := make([]string, len(xs))
		maxAbs := 0.0
		for _, x := range xs {
			if a := math.Abs(real(x)); !math.IsInf(a, 0) && !math.IsNaN(a) {
				maxAbs = math.Max(maxAbs, a)
			}
		}
		digits := 5
		if maxAbs > 0 {
			digits = max(int(math.Floor(math.Log10(maxAbs)))+5, 5)
		}
		for i, x := range xs {
			parts[i] = formatDigits(real(x), digits)
			if imag(x) != 0 {
				sign := "+"
				if imag(x) < 0 {
					sign = "-"
				}
				parts[i] += sign + formatDigits(math.Abs(imag(x)), digits) + "i"
			}
		}
		return value.Char(strings.Join(parts, "  ")), nil
	}
	return nil, engineErr("Input to num2str must be numeric.")
}

func formatDigits(x float64, digits int) string {
	switch {
	case math.IsNaN(x):
		return "NaN"
	case math.IsInf(x, 1):
		return "Inf"
	case math.IsInf(x, -1):
		return "-Inf"
	case x == math.Trunc(x) && math.Abs(x) < 1e15:
		return strconv.FormatFloat(x, 'f', 0, 64)
	}
	return strconv.FormatFloat(x, 'g', digits, 64)
}

func caseMap(f func(string) string) builtinFn {
	return unary(func(v value.Value) (value.Value, error) {
		switch v := v.(type) {
		case value.Char:
			return value.Char(f(string(v))), nil
		case *Cell:
			out := make([]value.Value, len(v.elems))
			for i, el := range v.elems {
				if s, ok := el.(value.Char); ok {
					out[i] = value.Char(f(string(s)))
				} else {
					out[i] = el
				}
			}
			return &Cell{dims: v.Dims(), elems: out}, nil
		}
		return v, nil
	})
}

func biSprintf(_ *Engine, args []value.Value, _ int) ([]value.Value, error) {
	format, err := textArg(args, 0)
	if err != nil {
		return nil, err
	}
	return one(value.Char(sprintf(format, args[1:]))), nil
}

func biError(_ *Engine, args []value.Value, _ int) ([]value.Value, error) {
	format, err := textArg(args, 0)
	if err != nil {
		return nil, err
	}
	msg := format
	if len(args) > 1 {
		msg = sprintf(format, args[1:])
	}
	return nil, errors.EngineExecution(msg)
}
