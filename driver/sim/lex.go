package sim

import (
	"strconv"
	"strings"
)

type tokKind int

const (
	tEOF tokKind = iota
	tNum
	tStr
	tIdent
	tOp
)

type token struct {
	text  string
	num   complex128
	kind  tokKind
	pos   int
	space bool // preceded by whitespace
}

func (t token) is(op string) bool { return t.kind == tOp && t.text == op }

// lex tokenizes one statement. Newlines become ";" so that they separate
// matrix rows.
func lex(src string) ([]token, error) {
	var toks []token
	space := false
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			space = true
			i++
			continue
		case c == '%':
			for i < len(src) && src[i] != '\n' {
				i++
			}
			continue
		case strings.HasPrefix(src[i:], "..."):
			for i < len(src) && src[i] != '\n' {
				i++
			}
			i++
			space = true
			continue
		case c == '\n':
			toks = append(toks, token{kind: tOp, text: ";", pos: i, space: space})
			i++
			space = false
			continue
		}

		start := i
		tok := token{pos: i, space: space}
		space = false

		switch {
		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])):
			n, end, err := lexNumber(src, i)
			if err != nil {
				return nil, err
			}
			tok.kind, tok.num, tok.text = tNum, n, src[start:end]
			i = end
		case isIdentStart(c):
			for i < len(src) && isIdentChar(src[i]) {
				i++
			}
			tok.kind, tok.text = tIdent, src[start:i]
		case c == '\'' && !transposeContext(toks, tok.space):
			s, end, err := lexString(src, i, '\'')
			if err != nil {
				return nil, err
			}
			tok.kind, tok.text = tStr, s
			i = end
		case c == '"':
			s, end, err := lexString(src, i, '"')
			if err != nil {
				return nil, err
			}
			tok.kind, tok.text = tStr, s
			i = end
		default:
			op := lexOp(src[i:])
			if op == "" {
				return nil, syntaxErr("Unexpected character '%c'.", c)
			}
			tok.kind, tok.text = tOp, op
			i += len(op)
		}
		toks = append(toks, tok)
	}
	return append(toks, token{kind: tEOF, pos: len(src), space: space}), nil
}

var ops = []string{
	"==", "~=", "!=", "<=", ">=", "&&", "||", ".*", "./", ".^", ".'",
	"+", "-", "*", "/", "\\", "^", "'", "<", ">", "&", "|", "~", "!",
	"=", "(", ")", "[", "]", "{", "}", ",", ";", ":", ".", "@",
}

func lexOp(s string) string {
	for _, op := range ops {
		if strings.HasPrefix(s, op) {
			return op
		}
	}
	return ""
}

// transposeContext reports whether a quote at this point is the transpose
// operator rather than the start of a string.
func transposeContext(toks []token, space bool) bool {
	if space || len(toks) == 0 {
		return false
	}
	prev := toks[len(toks)-1]
	switch prev.kind {
	case tIdent, tNum:
		return true
	case tOp:
		switch prev.text {
		case ")", "]", "}", "'", ".'":
			return true
		}
	}
	return false
}

func lexNumber(src string, i int) (complex128, int, error) {
	start := i
	for i < len(src) && isDigit(src[i]) {
		i++
	}
	// "1./x" and "1.*x" are element-wise operators, not a decimal point.
	if i < len(src) && src[i] == '.' && !(i+1 < len(src) && strings.ContainsRune("*/^'", rune(src[i+1]))) {
		i++
		for i < len(src) && isDigit(src[i]) {
			i++
		}
	}
	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		j := i + 1
		if j < len(src) && (src[j] == '+' || src[j] == '-') {
			j++
		}
		if j < len(src) && isDigit(src[j]) {
			i = j
			for i < len(src) && isDigit(src[i]) {
				i++
			}
		}
	}
	f, err := strconv.ParseFloat(src[start:i], 64)
	if err != nil {
		return 0, 0, syntaxErr("Invalid number %q.", src[start:i])
	}
	if i < len(src) && (src[i] == 'i' || src[i] == 'j') && (i+1 >= len(src) || !isIdentChar(src[i+1])) {
		return complex(0, f), i + 1, nil
	}
	return complex(f, 0), i, nil
}

func lexString(src string, i int, quote byte) (string, int, error) {
	var b strings.Builder
	i++
	for i < len(src) {
		c := src[i]
		if c == quote {
			if i+1 < len(src) && src[i+1] == quote {
				b.WriteByte(quote)
				i += 2
				continue
			}
			return b.String(), i + 1, nil
		}
		if c == '\n' {
			break
		}
		b.WriteByte(c)
		i++
	}
	return "", 0, syntaxErr("A MATLAB string constant is not terminated properly.")
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || (c|0x20 >= 'a' && c|0x20 <= 'z') }
func isIdentChar(c byte) bool  { return isIdentStart(c) || isDigit(c) }

// IsIdentifier reports whether s is a valid variable or function name.
func IsIdentifier(s string) bool {
	if s == "" || !isIdentStart(s[0]) || s[0] == '_' {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentChar(s[i]) {
			return false
		}
	}
	return true
}
