package main

import (
	"fmt"
	"strconv"
	"strings"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/enginewrap/value"
	"github.com/wippyai/enginewrap/wrap"
)

// parseArg turns command-line text into a host value: real and complex
// numbers, bracketed matrices such as "[1 2; 3 4]", true and false.
// Anything else is passed as a string.
func parseArg(text string) (any, error) {
	s := strings.TrimSpace(text)
	switch s {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	if strings.HasPrefix(s, "[") {
		return parseMatrix(s)
	}
	if x, err := strconv.ParseFloat(s, 64); err == nil {
		return x, nil
	}
	if c, err := strconv.ParseComplex(s, 128); err == nil {
		return c, nil
	}
	return text, nil
}

// parseMatrix parses rows separated by ';' and elements separated by
// spaces or commas. A single row becomes a row vector.
func parseMatrix(s string) (any, error) {
	if !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("unterminated matrix %q", s)
	}
	body := strings.TrimSpace(s[1 : len(s)-1])
	if body == "" {
		return value.Empty(), nil
	}

	var rows [][]complex128
	for _, line := range strings.Split(body, ";") {
		fields := strings.FieldsFunc(line, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' })
		row := make([]complex128, len(fields))
		for i, f := range fields {
			c, err := strconv.ParseComplex(f, 128)
			if err != nil {
				return nil, fmt.Errorf("matrix element %q: %w", f, err)
			}
			row[i] = c
		}
		rows = append(rows, row)
	}
	return value.FromComplexRows(rows)
}

// convertArg parses text for a declared parameter type.
func convertArg(text string, t wit.Type) (any, error) {
	switch t.(type) {
	case wit.String, wit.Char:
		return text, nil
	case wit.U8, wit.U16, wit.U32, wit.U64:
		v, err := strconv.ParseUint(strings.TrimSpace(text), 10, 64)
		return v, err
	case wit.S8, wit.S16, wit.S32, wit.S64:
		v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		return v, err
	case wit.F32, wit.F64:
		v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		return v, err
	case wit.Bool:
		v, err := strconv.ParseBool(strings.TrimSpace(text))
		return v, err
	default:
		return parseArg(text)
	}
}

// callArgs converts texts, using the declared parameter types where the
// command has them.
func callArgs(cmd *wrap.Command, texts []string) ([]any, error) {
	params := cmd.Descriptor().Params
	args := make([]any, len(texts))
	for i, text := range texts {
		var (
			v   any
			err error
		)
		if i < len(params) {
			v, err = convertArg(text, params[i])
		} else {
			v, err = parseArg(text)
		}
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		args[i] = v
	}
	return args, nil
}

func witTypeStr(t wit.Type) string {
	switch v := t.(type) {
	case wit.Bool:
		return "bool"
	case wit.U8:
		return "u8"
	case wit.S8:
		return "s8"
	case wit.U16:
		return "u16"
	case wit.S16:
		return "s16"
	case wit.U32:
		return "u32"
	case wit.S32:
		return "s32"
	case wit.U64:
		return "u64"
	case wit.S64:
		return "s64"
	case wit.F32:
		return "f32"
	case wit.F64:
		return "f64"
	case wit.Char:
		return "char"
	case wit.String:
		return "string"
	case *wit.TypeDef:
		if v.Name != nil {
			return *v.Name
		}
		return "typedef"
	default:
		return fmt.Sprintf("%T", t)
	}
}

// splitArgs splits a shell line on whitespace, keeping bracketed matrices
// and quoted strings together. Quotes are removed.
func splitArgs(line string) ([]string, error) {
	var (
		args  []string
		cur   strings.Builder
		quote rune
		depth int
		open  bool
	)
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			cur.WriteRune(r)
		case r == '\'' || r == '"':
			quote, open = r, true
		case r == '[':
			depth++
			cur.WriteRune(r)
			open = true
		case r == ']':
			depth--
			cur.WriteRune(r)
		case (r == ' ' || r == '\t') && depth == 0:
			if open {
				args = append(args, cur.String())
				cur.Reset()
				open = false
			}
		default:
			cur.WriteRune(r)
			open = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote")
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced brackets")
	}
	if open {
		args = append(args, cur.String())
	}
	return args, nil
}
