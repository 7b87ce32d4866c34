package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/wippyai/enginewrap/value"
	"github.com/wippyai/enginewrap/wrap"
)

// formatResult renders a call result for the terminal. Single numbers
// print bare.
func formatResult(ctx context.Context, res any) string {
	switch v := res.(type) {
	case nil:
		return ""
	case string:
		return fmt.Sprintf("'%s'", v)
	case value.Array:
		if v.Len() == 1 {
			return value.FormatNumber(v.Complex()[0])
		}
		return v.String()
	case *wrap.Proxy:
		return v.Describe(ctx)
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = formatResult(ctx, e)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
