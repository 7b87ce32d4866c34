package wrap

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Prefixes of the workspace names a session introduces.
const (
	prefixArg   = "ARG"
	prefixRes   = "RES"
	prefixProxy = "PROXY_VAL"
	prefixTmp   = "TMP"
)

// nameGen issues workspace names that cannot collide with user variables,
// with each other, or with names issued by another session sharing the
// engine: a per-session counter plus a random suffix.
type nameGen struct {
	n uint64
}

func (g *nameGen) next(prefix string) string {
	g.n++
	id := uuid.New()
	suffix := strings.ReplaceAll(id.String(), "-", "")[:8]
	return prefix + strconv.FormatUint(g.n, 10) + "_" + suffix + "__"
}

func (g *nameGen) batch(prefix string, n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = g.next(prefix)
	}
	return names
}

var identPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

func isIdentifier(s string) bool {
	return identPattern.MatchString(s)
}

// quote renders s as an engine string literal.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// clearStmt clears names with one statement in functional form.
func clearStmt(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quote(n)
	}
	return "clear(" + strings.Join(quoted, ",") + ");"
}

func callExpr(cmd string, refs []string) string {
	if len(refs) == 0 {
		return cmd
	}
	return cmd + "(" + strings.Join(refs, ", ") + ")"
}

func assignStmt(outs []string, expr string) string {
	if len(outs) == 1 {
		return outs[0] + " = " + expr + ";"
	}
	return "[" + strings.Join(outs, ",") + "] = " + expr + ";"
}
