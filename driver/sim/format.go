package sim

import (
	"fmt"
	"strings"

	"github.com/wippyai/enginewrap/errors"
	"github.com/wippyai/enginewrap/value"
)

// display renders "name = value" the way an unsuppressed statement
// echoes it.
func display(name string, v value.Value) string {
	switch v := v.(type) {
	case value.Array:
		if v.Len() == 1 || v.IsEmpty() {
			return name + " = " + formatValue(v) + "\n"
		}
	case value.Char:
		return name + " = " + string(v) + "\n"
	}
	return name + " =\n\n" + indent(formatValue(v)) + "\n"
}

// formatValue is the disp rendering of v.
func formatValue(v value.Value) string {
	switch v := v.(type) {
	case value.Array:
		return formatArray(v)
	case value.Char:
		return string(v)
	case *Cell:
		return formatCell(v)
	case *Struct:
		return formatStruct(v)
	}
	return fmt.Sprintf("<%s>", v.Class())
}

func formatArray(a value.Array) string {
	switch {
	case a.IsEmpty():
		return "[]"
	case a.Len() == 1:
		return value.FormatNumber(a.Complex()[0])
	}
	d := a.Dims()
	if len(d) != 2 {
		return fmt.Sprintf("[%s double]", errors.FormatDims(d))
	}
	cells := make([]string, a.Len())
	width := 0
	for i, x := range a.Complex() {
		cells[i] = value.FormatNumber(x)
		width = max(width, len(cells[i]))
	}
	var b strings.Builder
	for r := 0; r < d[0]; r++ {
		for c := 0; c < d[1]; c++ {
			s := cells[c*d[0]+r]
			b.WriteString(strings.Repeat(" ", width-len(s)+3))
			b.WriteString(s)
		}
		if r < d[0]-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func formatCell(c *Cell) string {
	d := dims2(c.dims)
	if len(c.elems) == 0 {
		return fmt.Sprintf("{}(%s)", errors.FormatDims(d))
	}
	if len(d) != 2 {
		return fmt.Sprintf("{%s cell}", errors.FormatDims(d))
	}
	var b strings.Builder
	for r := 0; r < d[0]; r++ {
		parts := make([]string, d[1])
		for col := range parts {
			parts[col] = summarize(c.elems[col*d[0]+r])
		}
		b.WriteString(strings.Join(parts, "    "))
		if r < d[0]-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func formatStruct(s *Struct) string {
	var b strings.Builder
	if len(s.elems) != 1 {
		fmt.Fprintf(&b, "%s struct array with fields:\n", errors.FormatDims(dims2(s.dims)))
		for _, f := range s.fields {
			b.WriteString("    " + f + "\n")
		}
		return strings.TrimSuffix(b.String(), "\n")
	}
	width := 0
	for _, f := range s.fields {
		width = max(width, len(f))
	}
	for i, f := range s.fields {
		fmt.Fprintf(&b, "%s%s: %s", strings.Repeat(" ", width-len(f)+4), f, summarize(s.elems[0][f]))
		if i < len(s.fields)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// summarize is the one-line rendering used inside cells and structs.
func summarize(v value.Value) string {
	switch v := v.(type) {
	case value.Array:
		if v.Len() <= 10 && len(v.Dims()) == 2 {
			if v.Len() == 1 {
				return value.FormatNumber(v.Complex()[0])
			}
			return v.String()
		}
		return fmt.Sprintf("[%s double]", errors.FormatDims(v.Dims()))
	case value.Char:
		return "'" + string(v) + "'"
	case *Cell:
		return fmt.Sprintf("{%s cell}", errors.FormatDims(dims2(v.dims)))
	case *Struct:
		return fmt.Sprintf("[%s struct]", errors.FormatDims(dims2(v.dims)))
	}
	return v.Class()
}

func indent(s string) string {
	if s == "" {
		return s
	}
	return "    " + strings.ReplaceAll(s, "\n", "\n    ") + "\n"
}
