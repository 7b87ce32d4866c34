package wrap

import (
	"fmt"
	"reflect"

	"github.com/wippyai/enginewrap/errors"
	"github.com/wippyai/enginewrap/value"
)

// ArrayViewer is implemented by host types that can present themselves as
// an engine array.
type ArrayViewer interface {
	EngineArray() (value.Array, error)
}

// ToEngine converts a host value to an engine value.
//
//   - numbers (integers, floats, complex, bool) become 1x1 arrays
//   - strings become char arrays
//   - slices of numbers become Nx1 columns, slices of equal-length slices
//     become matrices with one row per inner slice; an empty slice is 0x0
//     and a slice holding one empty slice is 1x0
//   - value.Array and value.Char pass through; one-dimensional arrays
//     become columns
//   - ArrayViewer implementations are asked for their array
//
// Anything else fails with an unsupported argument error.
func ToEngine(v any) (value.Value, error) {
	return toEngine(-1, v)
}

func toEngine(index int, v any) (value.Value, error) {
	switch v := v.(type) {
	case nil:
		return nil, errors.UnsupportedArgument(index, v)
	case value.Array:
		return column(v)
	case value.Char:
		return v, nil
	case string:
		return value.Char(v), nil
	case ArrayViewer:
		a, err := v.EngineArray()
		if err != nil {
			return nil, errors.New(errors.PhaseMarshal, errors.KindUnsupportedArgument).
				GoType(fmt.Sprintf("%T", v)).
				Detail("array view failed").
				Cause(err).
				Build()
		}
		return column(a)
	}

	rv := reflect.ValueOf(v)
	if c, ok := number(rv); ok {
		return value.ComplexScalar(c), nil
	}
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		a, ok := sequence(rv)
		if !ok {
			return nil, errors.UnsupportedArgument(index, v)
		}
		return a, nil
	}
	return nil, errors.UnsupportedArgument(index, v)
}

// column turns a one-dimensional array into an Nx1 column and rejects
// arrays of more than two dimensions.
func column(a value.Array) (value.Array, error) {
	switch a.Rank() {
	case 1:
		if a.Len() == 0 {
			return value.Empty(), nil
		}
		return a.Reshape(a.Len(), 1)
	case 2:
		return a, nil
	default:
		return value.Array{}, errors.New(errors.PhaseMarshal, errors.KindUnsupportedArgument).
			GoType("value.Array").
			Detail("only arrays of up to two dimensions are supported, not %s", errors.FormatDims(a.Dims())).
			Build()
	}
}

func number(rv reflect.Value) (complex128, bool) {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return complex(float64(rv.Int()), 0), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return complex(float64(rv.Uint()), 0), true
	case reflect.Float32, reflect.Float64:
		return complex(rv.Float(), 0), true
	case reflect.Complex64, reflect.Complex128:
		return rv.Complex(), true
	case reflect.Bool:
		if rv.Bool() {
			return 1, true
		}
		return 0, true
	case reflect.Interface:
		if rv.IsNil() {
			return 0, false
		}
		return number(rv.Elem())
	default:
		return 0, false
	}
}

// sequence converts a slice of numbers or a slice of equal-length number
// slices.
func sequence(rv reflect.Value) (value.Array, bool) {
	n := rv.Len()
	if n == 0 {
		return value.Empty(), true
	}

	if _, ok := number(rv.Index(0)); ok {
		data, ok := numbers(rv)
		if !ok {
			return value.Array{}, false
		}
		a, err := value.FromComplex([]int{n, 1}, data)
		return a, err == nil
	}

	rows := make([][]complex128, n)
	for i := range rows {
		row := rv.Index(i)
		for row.Kind() == reflect.Interface && !row.IsNil() {
			row = row.Elem()
		}
		if row.Kind() != reflect.Slice && row.Kind() != reflect.Array {
			return value.Array{}, false
		}
		data, ok := numbers(row)
		if !ok {
			return value.Array{}, false
		}
		rows[i] = data
	}
	if n == 1 && len(rows[0]) == 0 {
		return value.MustArray([]int{1, 0}, nil, nil), true
	}
	a, err := value.FromComplexRows(rows)
	return a, err == nil
}

func numbers(rv reflect.Value) ([]complex128, bool) {
	out := make([]complex128, rv.Len())
	for i := range out {
		c, ok := number(rv.Index(i))
		if !ok {
			return nil, false
		}
		out[i] = c
	}
	return out, true
}
