package sim

import (
	"sort"

	"github.com/wippyai/enginewrap/value"
)

// Cell is a cell array. Elements are stored column-major.
type Cell struct {
	dims  []int
	elems []value.Value
}

// NewCell builds a cell array. A nil element stands for the empty double.
func NewCell(dims []int, elems []value.Value) *Cell {
	c := &Cell{dims: append([]int(nil), dims...), elems: make([]value.Value, len(elems))}
	for i, e := range elems {
		if e == nil {
			e = value.Empty()
		}
		c.elems[i] = e
	}
	return c
}

// Class implements value.Value.
func (c *Cell) Class() string { return "cell" }

// Dims implements value.Value.
func (c *Cell) Dims() []int { return append([]int(nil), c.dims...) }

// Elems returns the elements in column-major order.
func (c *Cell) Elems() []value.Value { return append([]value.Value(nil), c.elems...) }

// Struct is a struct array. Every element has the same fields.
type Struct struct {
	dims   []int
	fields []string
	elems  []map[string]value.Value
}

// NewStruct returns a 1x1 struct with the given fields, in order.
func NewStruct(fields []string, values []value.Value) *Struct {
	s := &Struct{dims: []int{1, 1}, elems: []map[string]value.Value{{}}}
	for i, f := range fields {
		s.setField(0, f, values[i])
	}
	return s
}

// Class implements value.Value.
func (s *Struct) Class() string { return "struct" }

// Dims implements value.Value.
func (s *Struct) Dims() []int { return append([]int(nil), s.dims...) }

// Fields returns the field names in creation order.
func (s *Struct) Fields() []string { return append([]string(nil), s.fields...) }

// Field returns field name of element i (zero-based, column-major).
func (s *Struct) Field(i int, name string) (value.Value, bool) {
	if i < 0 || i >= len(s.elems) {
		return nil, false
	}
	v, ok := s.elems[i][name]
	return v, ok
}

func (s *Struct) hasField(name string) bool {
	for _, f := range s.fields {
		if f == name {
			return true
		}
	}
	return false
}

func (s *Struct) addField(name string) {
	if s.hasField(name) {
		return
	}
	s.fields = append(s.fields, name)
	for _, e := range s.elems {
		e[name] = value.Empty()
	}
}

func (s *Struct) setField(i int, name string, v value.Value) {
	s.addField(name)
	s.elems[i][name] = v
}

func newElem(fields []string) map[string]value.Value {
	m := make(map[string]value.Value, len(fields))
	for _, f := range fields {
		m[f] = value.Empty()
	}
	return m
}

func numel(v value.Value) int {
	n := 1
	for _, d := range v.Dims() {
		n *= d
	}
	return n
}

func isEmpty(v value.Value) bool { return numel(v) == 0 }

func isEmptyDouble(v value.Value) bool {
	a, ok := v.(value.Array)
	return ok && a.IsEmpty()
}

func boolValue(b bool) value.Array {
	if b {
		return value.Scalar(1)
	}
	return value.Scalar(0)
}

// dims2 normalizes dimensions to at least two entries.
func dims2(d []int) []int {
	switch len(d) {
	case 0:
		return []int{0, 0}
	case 1:
		return []int{1, d[0]}
	}
	return d
}

func cellOfStrings(names []string, column bool) *Cell {
	elems := make([]value.Value, len(names))
	for i, n := range names {
		elems[i] = value.Char(n)
	}
	dims := []int{1, len(names)}
	if column {
		dims = []int{len(names), 1}
	}
	if len(names) == 0 {
		dims = []int{0, 1}
	}
	return NewCell(dims, elems)
}

// toText returns the text of a char value.
func toText(v value.Value) (string, bool) {
	c, ok := v.(value.Char)
	return string(c), ok
}

// toDouble converts double and char operands to a numeric array.
func toDouble(v value.Value) (value.Array, bool) {
	switch v := v.(type) {
	case value.Array:
		return v, true
	case value.Char:
		rs := []rune(string(v))
		xs := make([]float64, len(rs))
		for i, r := range rs {
			xs[i] = float64(r)
		}
		if len(xs) == 0 {
			return value.Empty(), true
		}
		return value.Row(xs...), true
	}
	return value.Array{}, false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
