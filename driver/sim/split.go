package sim

import "strings"

type stmtText struct {
	text     string
	suppress bool
}

// splitStatements cuts a program at ";", "," and newlines outside strings,
// brackets and comments.
func splitStatements(src string) []stmtText {
	var out []stmtText
	depth := 0
	start := 0
	var prev byte // last non-space character outside a string
	spaceBefore := false

	emit := func(end int, suppress bool) {
		if s := strings.TrimSpace(src[start:end]); s != "" {
			out = append(out, stmtText{text: s, suppress: suppress})
		}
		start = end + 1
	}

	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			spaceBefore = true
			continue
		case c == '\'' && !(isQuoteTranspose(prev) && !spaceBefore):
			i = skipString(src, i, '\'')
			prev = '\''
			spaceBefore = false
			continue
		case c == '"':
			i = skipString(src, i, '"')
			prev = '"'
			spaceBefore = false
			continue
		case c == '%':
			j := strings.IndexByte(src[i:], '\n')
			if j < 0 {
				src = src[:i]
				return appendTail(out, src, start)
			}
			// Blank out the comment so the statement text stays clean.
			src = src[:i] + strings.Repeat(" ", j) + src[i+j:]
			i += j - 1
			continue
		case c == '.' && strings.HasPrefix(src[i:], "..."):
			j := strings.IndexByte(src[i:], '\n')
			if j < 0 {
				i = len(src)
				continue
			}
			src = src[:i] + strings.Repeat(" ", j+1) + src[i+j+1:]
			i += j
			continue
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			if depth > 0 {
				depth--
			}
		case depth == 0 && (c == ';' || c == ','):
			emit(i, c == ';')
		case depth == 0 && c == '\n':
			emit(i, false)
		}
		prev = c
		spaceBefore = false
	}
	return appendTail(out, src, start)
}

func appendTail(out []stmtText, src string, start int) []stmtText {
	if start < len(src) {
		if s := strings.TrimSpace(src[start:]); s != "" {
			out = append(out, stmtText{text: s})
		}
	}
	return out
}

func isQuoteTranspose(prev byte) bool {
	return isIdentChar(prev) || prev == ')' || prev == ']' || prev == '}' || prev == '\'' || prev == '.'
}

// skipString returns the index of the closing quote, or the end of the
// line for an unterminated string.
func skipString(src string, i int, quote byte) int {
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case quote:
			if j+1 < len(src) && src[j+1] == quote {
				j++
				continue
			}
			return j
		case '\n':
			return j - 1
		}
	}
	return len(src) - 1
}

// commandSyntax splits "name arg1 'arg 2'" into its words when the
// statement uses command syntax. isVar reports workspace variables, which
// never take command syntax.
func commandSyntax(stmt string, isVar func(string) bool) (string, []string, bool) {
	i := 0
	for i < len(stmt) && isIdentChar(stmt[i]) {
		i++
	}
	if i == 0 || !isIdentStart(stmt[0]) {
		return "", nil, false
	}
	name := stmt[:i]
	if i == len(stmt) || (stmt[i] != ' ' && stmt[i] != '\t') || isVar(name) {
		return "", nil, false
	}
	rest := strings.TrimLeft(stmt[i:], " \t")
	if rest == "" {
		return "", nil, false
	}
	c := rest[0]
	switch {
	case isIdentChar(c), c == '\'', c == '/', c == '~', c == '-':
		if strings.HasPrefix(rest, "~=") || (c == '-' && len(rest) > 1 && (rest[1] == ' ' || rest[1] == '\t')) {
			return "", nil, false
		}
	case c == '.':
		if len(rest) > 1 && strings.ContainsRune("*/^'", rune(rest[1])) {
			return "", nil, false
		}
	default:
		return "", nil, false
	}
	return name, commandWords(rest), true
}

func commandWords(s string) []string {
	var words []string
	var b strings.Builder
	inWord, quoted := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\'' && quoted:
			if i+1 < len(s) && s[i+1] == '\'' {
				b.WriteByte('\'')
				i++
				continue
			}
			quoted = false
		case c == '\'':
			quoted, inWord = true, true
		case (c == ' ' || c == '\t') && !quoted:
			if inWord {
				words = append(words, b.String())
				b.Reset()
				inWord = false
			}
		default:
			b.WriteByte(c)
			inWord = true
		}
	}
	if inWord {
		words = append(words, b.String())
	}
	return words
}
