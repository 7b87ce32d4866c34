package sim

import (
	"math"
	"math/cmplx"

	"github.com/wippyai/enginewrap/value"
)

var opNames = map[string]string{
	"+": "plus", "-": "minus", ".*": "times", "*": "mtimes", "./": "rdivide",
	"/": "mrdivide", "\\": "mldivide", ".^": "power", "^": "mpower",
	"==": "eq", "~=": "ne", "<": "lt", "<=": "le", ">": "gt", ">=": "ge",
	"&": "and", "|": "or",
}

func undefinedOp(op string, a, b value.Value) error {
	class := a.Class()
	if _, ok := toDouble(a); ok {
		class = b.Class()
	}
	return engineErr("Undefined function or method '%s' for input arguments of type '%s'.", opNames[op], class)
}

func binaryOp(op string, av, bv value.Value) (value.Value, error) {
	a, okA := toDouble(av)
	b, okB := toDouble(bv)
	if !okA || !okB {
		return nil, undefinedOp(op, av, bv)
	}

	switch op {
	case "+":
		return elementwise(a, b, func(x, y complex128) complex128 { return x + y })
	case "-":
		return elementwise(a, b, func(x, y complex128) complex128 { return x - y })
	case ".*":
		return elementwise(a, b, func(x, y complex128) complex128 { return x * y })
	case "./":
		return elementwise(a, b, divide)
	case ".^":
		return elementwise(a, b, power)
	case "*":
		if a.Len() == 1 || b.Len() == 1 {
			return elementwise(a, b, func(x, y complex128) complex128 { return x * y })
		}
		return matmul(a, b)
	case "/":
		if b.Len() != 1 {
			return nil, engineErr("Matrix right division is only supported for scalar divisors.")
		}
		return elementwise(a, b, divide)
	case "\\":
		if a.Len() != 1 {
			return nil, engineErr("Matrix left division is only supported for scalar divisors.")
		}
		return elementwise(b, a, divide)
	case "^":
		if a.Len() != 1 || b.Len() != 1 {
			return nil, engineErr("Inputs must be a scalar and a square matrix.")
		}
		return elementwise(a, b, power)
	case "==":
		return compare(a, b, func(x, y complex128) bool { return x == y })
	case "~=":
		return compare(a, b, func(x, y complex128) bool { return x != y })
	case "<":
		return compare(a, b, func(x, y complex128) bool { return real(x) < real(y) })
	case "<=":
		return compare(a, b, func(x, y complex128) bool { return real(x) <= real(y) })
	case ">":
		return compare(a, b, func(x, y complex128) bool { return real(x) > real(y) })
	case ">=":
		return compare(a, b, func(x, y complex128) bool { return real(x) >= real(y) })
	case "&":
		return compare(a, b, func(x, y complex128) bool { return x != 0 && y != 0 })
	case "|":
		return compare(a, b, func(x, y complex128) bool { return x != 0 || y != 0 })
	}
	return nil, engineErr("Unsupported operator '%s'.", op)
}

func divide(x, y complex128) complex128 {
	if imag(x) == 0 && imag(y) == 0 {
		return complex(real(x)/real(y), 0)
	}
	return x / y
}

func power(x, y complex128) complex128 {
	if imag(x) == 0 && imag(y) == 0 && (real(x) >= 0 || real(y) == math.Trunc(real(y))) {
		return complex(math.Pow(real(x), real(y)), 0)
	}
	return cmplx.Pow(x, y)
}

// elementwise applies f pairwise; a scalar operand is broadcast.
func elementwise(a, b value.Array, f func(x, y complex128) complex128) (value.Value, error) {
	xs, ys := a.Complex(), b.Complex()
	dims := a.Dims()
	switch {
	case len(xs) == 1 && len(ys) != 1:
		dims = b.Dims()
	case len(ys) == 1:
	case !sameDims(dims2(a.Dims()), dims2(b.Dims())):
		return nil, engineErr("Matrix dimensions must agree.")
	}
	n := max(len(xs), len(ys))
	if len(xs) == 0 || len(ys) == 0 {
		n = 0
		if len(xs) == 0 {
			dims = a.Dims()
		} else {
			dims = b.Dims()
		}
	}
	out := make([]complex128, n)
	for i := range out {
		x, y := xs[0], ys[0]
		if len(xs) > 1 {
			x = xs[i]
		}
		if len(ys) > 1 {
			y = ys[i]
		}
		out[i] = f(x, y)
	}
	return value.FromComplex(dims, out)
}

func compare(a, b value.Array, f func(x, y complex128) bool) (value.Value, error) {
	return elementwise(a, b, func(x, y complex128) complex128 {
		if f(x, y) {
			return 1
		}
		return 0
	})
}

func matmul(a, b value.Array) (value.Value, error) {
	da, db := a.Dims(), b.Dims()
	if len(da) != 2 || len(db) != 2 {
		return nil, engineErr("Input arguments must be 2-D.")
	}
	if da[1] != db[0] {
		return nil, engineErr("Inner matrix dimensions must agree.")
	}
	m, k, n := da[0], da[1], db[1]
	xs, ys := a.Complex(), b.Complex()
	out := make([]complex128, m*n)
	for c := 0; c < n; c++ {
		for r := 0; r < m; r++ {
			var sum complex128
			for i := 0; i < k; i++ {
				sum += xs[i*m+r] * ys[c*k+i]
			}
			out[c*m+r] = sum
		}
	}
	return value.FromComplex([]int{m, n}, out)
}

func unaryOp(op string, v value.Value) (value.Value, error) {
	a, ok := toDouble(v)
	if !ok {
		name := "uminus"
		switch op {
		case "~":
			name = "not"
		case "+":
			name = "uplus"
		}
		return nil, engineErr("Undefined function or method '%s' for input arguments of type '%s'.", name, v.Class())
	}
	switch op {
	case "-":
		return mapComplex(a, func(x complex128) complex128 { return -x })
	case "~":
		return mapComplex(a, func(x complex128) complex128 {
			if x == 0 {
				return 1
			}
			return 0
		})
	}
	return a, nil
}

func mapComplex(a value.Array, f func(complex128) complex128) (value.Value, error) {
	xs := a.Complex()
	for i, x := range xs {
		xs[i] = f(x)
	}
	return value.FromComplex(a.Dims(), xs)
}

func mapReal(a value.Array, f func(float64) float64) value.Value {
	xs := a.Real()
	for i, x := range xs {
		xs[i] = f(x)
	}
	return value.MustArray(a.Dims(), xs, nil)
}

func transpose(v value.Value, conj bool) (value.Value, error) {
	switch v := v.(type) {
	case value.Array:
		if len(v.Dims()) > 2 {
			return nil, engineErr("Transpose on ND array is not defined.")
		}
		t := v.Transpose()
		if conj && t.IsComplex() {
			return mapComplex(t, cmplx.Conj)
		}
		return t, nil
	case value.Char:
		if len([]rune(string(v))) <= 1 {
			return v, nil
		}
		return nil, engineErr("Multi-row char arrays are not supported.")
	case *Cell:
		d := dims2(v.dims)
		if len(d) > 2 {
			return nil, engineErr("Transpose on ND array is not defined.")
		}
		out := make([]value.Value, len(v.elems))
		for r := 0; r < d[0]; r++ {
			for c := 0; c < d[1]; c++ {
				out[r*d[1]+c] = v.elems[c*d[0]+r]
			}
		}
		return &Cell{dims: []int{d[1], d[0]}, elems: out}, nil
	}
	return nil, engineErr("Transpose is not defined for class '%s'.", v.Class())
}

func rangeValues(start, step, stop float64) (value.Value, error) {
	if step == 0 || (step > 0 && start > stop) || (step < 0 && start < stop) || math.IsNaN(start+step+stop) {
		return value.MustArray([]int{1, 0}, nil, nil), nil
	}
	n := int(math.Floor((stop-start)/step+1e-10)) + 1
	if n > 1<<24 {
		return nil, engineErr("Out of memory. Type HELP MEMORY for your options.")
	}
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = start + float64(i)*step
	}
	return value.Row(xs...), nil
}

func truthy(v value.Value) (bool, error) {
	a, ok := toDouble(v)
	if !ok {
		return false, engineErr("Conversion to logical from %s is not possible.", v.Class())
	}
	if a.IsEmpty() {
		return false, nil
	}
	for _, x := range a.Complex() {
		if x == 0 {
			return false, nil
		}
	}
	return true, nil
}
