package resolve

import (
	"context"
	"regexp"
	"strings"
)

// Heuristic infers the arity of builtins from the usage lines of their help
// text. It recognizes
//
//	Y = NAME(X)          one output
//	[A,B] = NAME(...)    as many outputs as names in brackets
//	NAME ARG ARG         command syntax
//	NAME(X,...)          variadic inputs
//
// and keeps the maximum over all usage lines. When no line declares an
// output, a sentence of the form "NAME(X) is ..." or "NAME(X) returns ..."
// still counts as one output.
type Heuristic struct{}

func (Heuristic) Resolve(_ context.Context, _ Querier, p Probe) (*Descriptor, error) {
	if p.Kind != KindBuiltin {
		return nil, nil
	}
	nout, nin := Usage(p.Name, p.Help)
	return &Descriptor{
		Name:   p.Name,
		Help:   p.Help,
		Kind:   p.Kind,
		Source: "heuristic",
		NOut:   nout,
		NIn:    nin,
	}, nil
}

const usagePattern = `(?m)^\s*` +
	`(?:(?P<argout>[A-Z]+|\[(?:[A-Z]+,\s*)+[A-Z]+\])\s*=\s*)?` +
	`(?P<cmd>%s)` +
	`(?:(?P<cmdargs>(?:\s+[A-Z]+)+)?\s|(?P<argin>\(.*(?:\.\.\.,\s*|['\w]+,\s*)*\)))`

// Usage scans help for usage lines of name and returns the inferred
// output and input counts. The first line of help is the summary and is
// skipped.
func Usage(name, help string) (nout, nin int) {
	upper := regexp.QuoteMeta(strings.ToUpper(name))
	re := regexp.MustCompile(strings.Replace(usagePattern, "%s", upper, 1))
	argout := re.SubexpIndex("argout")
	argin := re.SubexpIndex("argin")
	cmdargs := re.SubexpIndex("cmdargs")

	body := help
	if i := strings.IndexByte(help, '\n'); i >= 0 {
		body = help[i:]
	}

	variadicIn := false
	for _, m := range re.FindAllStringSubmatch(body, -1) {
		if out := m[argout]; out != "" {
			nout = max(nout, len(strings.Split(out, ",")))
		}
		if in := m[argin]; in != "" {
			if strings.Contains(in, "...") {
				variadicIn = true
			} else if strings.TrimSpace(strings.Trim(in, "()")) != "" {
				nin = max(nin, len(strings.Split(in, ",")))
			}
		}
		if args := m[cmdargs]; args != "" {
			nin = max(nin, len(strings.Fields(args)))
		}
	}

	if nout == 0 {
		sentence := regexp.MustCompile(`\b` + upper + `\(.+?\) (?:is|return)`)
		if sentence.MatchString(help) {
			nout = 1
		}
	}
	if variadicIn {
		nin = Variadic
	}
	return nout, nin
}
