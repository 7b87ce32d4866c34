package sim

import (
	"fmt"
	"math"
	"strings"

	"github.com/wippyai/enginewrap/value"
)

// sprintf formats args with a C-style format. Numeric arrays contribute
// one argument per element; the format is not recycled.
func sprintf(format string, args []value.Value) string {
	var flat []any
	for _, a := range args {
		switch a := a.(type) {
		case value.Char:
			flat = append(flat, string(a))
		case value.Array:
			for _, x := range a.Real() {
				flat = append(flat, x)
			}
		default:
			flat = append(flat, "<"+a.Class()+">")
		}
	}

	format = strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\\`, `\`).Replace(format)
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		j := i + 1
		for j < len(format) && strings.IndexByte("-+ #0123456789.", format[j]) >= 0 {
			j++
		}
		if j >= len(format) {
			b.WriteString(format[i:])
			break
		}
		verb := format[j]
		spec := format[i:j]
		i = j
		if verb == '%' {
			b.WriteByte('%')
			continue
		}
		if len(flat) == 0 {
			continue
		}
		arg := flat[0]
		flat = flat[1:]
		switch verb {
		case 'd', 'i', 'u':
			if x, ok := arg.(float64); ok {
				if x == math.Trunc(x) && !math.IsInf(x, 0) {
					fmt.Fprintf(&b, spec+"d", int64(x))
				} else {
					fmt.Fprintf(&b, spec+"g", x)
				}
			} else {
				fmt.Fprintf(&b, spec+"s", arg)
			}
		case 'f', 'g', 'e', 'G', 'E':
			if x, ok := arg.(float64); ok {
				fmt.Fprintf(&b, spec+string(verb), x)
			} else {
				fmt.Fprintf(&b, spec+"s", arg)
			}
		case 's':
			if x, ok := arg.(float64); ok {
				b.WriteString(formatDigits(x, 5))
			} else {
				fmt.Fprintf(&b, spec+"s", arg)
			}
		case 'c':
			if x, ok := arg.(float64); ok {
				b.WriteRune(rune(x))
			} else {
				fmt.Fprintf(&b, "%s", arg)
			}
		default:
			b.WriteString(format[i-len(spec) : i+1])
		}
	}
	return b.String()
}
