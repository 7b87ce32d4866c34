package value

import (
	"fmt"
	"math"
	"math/cmplx"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Value is anything the transport can put into or get from the workspace.
// It is implemented by Array and Char.
type Value interface {
	// Class returns the engine class name ("double", "char").
	Class() string
	// Dims returns the engine dimensions.
	Dims() []int
}

// Array is a double-precision array, real or complex, stored column-major.
// One-dimensional arrays (a single dimension) only arise on the host side,
// when row or column vectors are flattened. Arrays are immutable.
type Array struct {
	dims []int
	re   []float64
	im   []float64
}

// NewArray builds an array from column-major data. im may be nil for a real
// array; otherwise it must match re in length.
func NewArray(dims []int, re, im []float64) (Array, error) {
	n, err := count(dims)
	if err != nil {
		return Array{}, err
	}
	if len(re) != n {
		return Array{}, fmt.Errorf("value: %d elements for dims %v", len(re), dims)
	}
	if im != nil && len(im) != n {
		return Array{}, fmt.Errorf("value: %d imaginary parts for %d elements", len(im), n)
	}
	a := Array{dims: append([]int(nil), dims...), re: append([]float64(nil), re...)}
	if im != nil && hasImag(im) {
		a.im = append([]float64(nil), im...)
	}
	return a, nil
}

// MustArray is NewArray that panics on invalid input.
func MustArray(dims []int, re, im []float64) Array {
	a, err := NewArray(dims, re, im)
	if err != nil {
		panic(err)
	}
	return a
}

// FromComplex builds an array from column-major complex data.
func FromComplex(dims []int, data []complex128) (Array, error) {
	re := make([]float64, len(data))
	im := make([]float64, len(data))
	for i, c := range data {
		re[i], im[i] = real(c), imag(c)
	}
	return NewArray(dims, re, im)
}

// Scalar returns a 1x1 array.
func Scalar(x float64) Array {
	return Array{dims: []int{1, 1}, re: []float64{x}}
}

// ComplexScalar returns a 1x1 complex array.
func ComplexScalar(c complex128) Array {
	a := Array{dims: []int{1, 1}, re: []float64{real(c)}}
	if imag(c) != 0 {
		a.im = []float64{imag(c)}
	}
	return a
}

// Row returns a 1xN array.
func Row(xs ...float64) Array {
	return Array{dims: []int{1, len(xs)}, re: append([]float64{}, xs...)}
}

// Column returns an Nx1 array.
func Column(xs ...float64) Array {
	return Array{dims: []int{len(xs), 1}, re: append([]float64{}, xs...)}
}

// Vector returns a one-dimensional array of length N.
func Vector(xs ...float64) Array {
	return Array{dims: []int{len(xs)}, re: append([]float64{}, xs...)}
}

// Empty returns a 0x0 array.
func Empty() Array {
	return Array{dims: []int{0, 0}}
}

// FromRows builds an RxC array from row-major rows. An empty outer slice
// yields 0x0 and a single empty row yields 1x0. Ragged rows are rejected.
func FromRows(rows [][]float64) (Array, error) {
	if len(rows) == 0 {
		return Empty(), nil
	}
	cols := len(rows[0])
	re := make([]float64, len(rows)*cols)
	for r, row := range rows {
		if len(row) != cols {
			return Array{}, fmt.Errorf("value: row %d has %d columns, want %d", r, len(row), cols)
		}
		for c, x := range row {
			re[c*len(rows)+r] = x
		}
	}
	return Array{dims: []int{len(rows), cols}, re: re}, nil
}

// FromComplexRows is FromRows for complex data.
func FromComplexRows(rows [][]complex128) (Array, error) {
	if len(rows) == 0 {
		return Empty(), nil
	}
	cols := len(rows[0])
	data := make([]complex128, len(rows)*cols)
	for r, row := range rows {
		if len(row) != cols {
			return Array{}, fmt.Errorf("value: row %d has %d columns, want %d", r, len(row), cols)
		}
		for c, x := range row {
			data[c*len(rows)+r] = x
		}
	}
	return FromComplex([]int{len(rows), cols}, data)
}

// Class implements Value.
func (a Array) Class() string { return "double" }

// Dims implements Value. The returned slice is a copy.
func (a Array) Dims() []int {
	if a.dims == nil {
		return []int{0, 0}
	}
	return append([]int(nil), a.dims...)
}

// Len returns the number of elements.
func (a Array) Len() int { return len(a.re) }

// Rank returns the number of dimensions.
func (a Array) Rank() int {
	if a.dims == nil {
		return 2
	}
	return len(a.dims)
}

// IsEmpty reports whether the array has no elements.
func (a Array) IsEmpty() bool { return len(a.re) == 0 }

// IsComplex reports whether any element has a non-zero imaginary part.
func (a Array) IsComplex() bool { return a.im != nil }

// Real returns a copy of the real parts in column-major order.
func (a Array) Real() []float64 { return append([]float64{}, a.re...) }

// Imag returns a copy of the imaginary parts, or nil for a real array.
func (a Array) Imag() []float64 {
	if a.im == nil {
		return nil
	}
	return append([]float64{}, a.im...)
}

// Complex returns the elements as complex numbers in column-major order.
func (a Array) Complex() []complex128 {
	out := make([]complex128, len(a.re))
	for i := range a.re {
		out[i] = a.elem(i)
	}
	return out
}

// Float returns the single element of a one-element real array.
func (a Array) Float() (float64, bool) {
	if len(a.re) != 1 || a.im != nil {
		return 0, false
	}
	return a.re[0], true
}

// At returns the element at the given subscripts (zero-based, one per
// dimension, column-major).
func (a Array) At(idx ...int) complex128 {
	if len(idx) != len(a.dims) {
		panic(fmt.Sprintf("value: %d subscripts for %d dimensions", len(idx), len(a.dims)))
	}
	off, stride := 0, 1
	for i, k := range idx {
		if k < 0 || k >= a.dims[i] {
			panic(fmt.Sprintf("value: subscript %d out of range for dimension %d", k, a.dims[i]))
		}
		off += k * stride
		stride *= a.dims[i]
	}
	return a.elem(off)
}

// Reshape returns the same elements with new dimensions.
func (a Array) Reshape(dims ...int) (Array, error) {
	n, err := count(dims)
	if err != nil {
		return Array{}, err
	}
	if n != len(a.re) {
		return Array{}, fmt.Errorf("value: cannot reshape %d elements to %v", len(a.re), dims)
	}
	return Array{dims: append([]int(nil), dims...), re: a.re, im: a.im}, nil
}

// Transpose swaps the two dimensions of a matrix.
func (a Array) Transpose() Array {
	d := a.Dims()
	if len(d) == 1 {
		d = []int{d[0], 1}
	}
	if len(d) != 2 {
		panic("value: transpose of an array with more than two dimensions")
	}
	rows, cols := d[0], d[1]
	out := Array{dims: []int{cols, rows}, re: make([]float64, len(a.re))}
	if a.im != nil {
		out.im = make([]float64, len(a.im))
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out.re[r*cols+c] = a.re[c*rows+r]
			if a.im != nil {
				out.im[r*cols+c] = a.im[c*rows+r]
			}
		}
	}
	return out
}

// Rows returns a two-dimensional array as row-major rows of real parts.
func (a Array) Rows() [][]float64 {
	d := a.Dims()
	if len(d) == 1 {
		d = []int{1, d[0]}
	}
	rows, cols := d[0], d[1]
	out := make([][]float64, rows)
	for r := range out {
		out[r] = make([]float64, cols)
		for c := range out[r] {
			out[r][c] = a.re[c*rows+r]
		}
	}
	return out
}

// Equal reports whether both arrays have the same dimensions and elements.
// NaNs compare equal to each other.
func (a Array) Equal(b Array) bool {
	da, db := a.Dims(), b.Dims()
	if len(da) != len(db) || len(a.re) != len(b.re) {
		return false
	}
	for i := range da {
		if da[i] != db[i] {
			return false
		}
	}
	for i := range a.re {
		if !sameFloat(a.re[i], b.re[i]) || !sameFloat(imagAt(a, i), imagAt(b, i)) {
			return false
		}
	}
	return true
}

// String renders the array as [1 2 3] for vectors and [1 2; 3 4] for
// matrices. Higher ranks print their size only.
func (a Array) String() string {
	d := a.Dims()
	switch len(d) {
	case 1:
		parts := make([]string, len(a.re))
		for i := range a.re {
			parts[i] = FormatNumber(a.elem(i))
		}
		return "[" + strings.Join(parts, " ") + "]"
	case 2:
		rows, cols := d[0], d[1]
		lines := make([]string, rows)
		for r := 0; r < rows; r++ {
			parts := make([]string, cols)
			for c := 0; c < cols; c++ {
				parts[c] = FormatNumber(a.elem(c*rows + r))
			}
			lines[r] = strings.Join(parts, " ")
		}
		return "[" + strings.Join(lines, "; ") + "]"
	default:
		return fmt.Sprintf("<%s double>", formatDims(d))
	}
}

func (a Array) elem(i int) complex128 {
	if a.im == nil {
		return complex(a.re[i], 0)
	}
	return complex(a.re[i], a.im[i])
}

// Char is a one-row character array.
type Char string

// Class implements Value.
func (c Char) Class() string { return "char" }

// Dims implements Value. The empty string is 0x0.
func (c Char) Dims() []int {
	if c == "" {
		return []int{0, 0}
	}
	return []int{1, utf8.RuneCountInString(string(c))}
}

// FormatNumber renders a number the way the engine's short display does.
func FormatNumber(c complex128) string {
	re, im := real(c), imag(c)
	if im == 0 {
		return formatFloat(re)
	}
	if cmplx.IsNaN(c) {
		return "NaN"
	}
	sign := "+"
	if im < 0 || (im == 0 && math.Signbit(im)) {
		sign = "-"
		im = -im
	}
	return formatFloat(re) + sign + formatFloat(im) + "i"
}

func formatFloat(x float64) string {
	switch {
	case math.IsNaN(x):
		return "NaN"
	case math.IsInf(x, 1):
		return "Inf"
	case math.IsInf(x, -1):
		return "-Inf"
	}
	return strconv.FormatFloat(x, 'g', -1, 64)
}

func formatDims(d []int) string {
	parts := make([]string, len(d))
	for i, n := range d {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, "x")
}

func count(dims []int) (int, error) {
	if len(dims) == 0 {
		return 0, fmt.Errorf("value: no dimensions")
	}
	n := 1
	for _, d := range dims {
		if d < 0 {
			return 0, fmt.Errorf("value: negative dimension in %v", dims)
		}
		n *= d
	}
	return n, nil
}

func hasImag(im []float64) bool {
	for _, x := range im {
		if x != 0 {
			return true
		}
	}
	return false
}

func imagAt(a Array, i int) float64 {
	if a.im == nil {
		return 0
	}
	return a.im[i]
}

func sameFloat(x, y float64) bool {
	if math.IsNaN(x) && math.IsNaN(y) {
		return true
	}
	return x == y
}
