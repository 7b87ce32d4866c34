package resolve

import (
	"context"
	"regexp"
	"slices"
	"strings"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/enginewrap/errors"
)

// Signature is a declared function type.
type Signature struct {
	Params  []wit.Type
	Results []wit.Type
}

// Signatures resolves names from host-declared signatures written in WIT
// function syntax:
//
//	sort: func(x: f64, mode: string) -> (f64, f64);
//	disp: func(x: string);
//
// A declaration wins over anything the engine reports, so it also serves
// to correct the help heuristic.
type Signatures struct {
	funcs map[string]*Signature
}

var funcPattern = regexp.MustCompile(`(?:export\s+)?([a-zA-Z][a-zA-Z0-9_]*)\s*:\s*func\s*\(([^)]*)\)(?:\s*->\s*([^;\n]+))?`)

// ParseSignatures parses WIT function declarations. Text without any
// declaration is an error.
func ParseSignatures(text string) (*Signatures, error) {
	s := &Signatures{funcs: make(map[string]*Signature)}

	for _, match := range funcPattern.FindAllStringSubmatch(text, -1) {
		name := match[1]
		sig := &Signature{}

		for _, p := range splitParams(match[2]) {
			t, err := parseType(p)
			if err != nil {
				return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "parse param type of "+name)
			}
			sig.Params = append(sig.Params, t)
		}

		results := strings.TrimSpace(match[3])
		switch {
		case results == "" || results == "()":
		case strings.HasPrefix(results, "(") && strings.HasSuffix(results, ")"):
			for _, part := range splitParams(results[1 : len(results)-1]) {
				t, err := parseType(part)
				if err != nil {
					return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "parse result type of "+name)
				}
				sig.Results = append(sig.Results, t)
			}
		default:
			t, err := parseType(results)
			if err != nil {
				return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "parse result type of "+name)
			}
			sig.Results = []wit.Type{t}
		}

		s.funcs[name] = sig
	}

	if len(s.funcs) == 0 {
		return nil, errors.InvalidInput(errors.PhaseConfig, "no function declarations found")
	}
	return s, nil
}

// Lookup returns the declaration of name.
func (s *Signatures) Lookup(name string) (*Signature, bool) {
	if s == nil {
		return nil, false
	}
	sig, ok := s.funcs[name]
	return sig, ok
}

// Len returns the number of declarations.
func (s *Signatures) Len() int {
	if s == nil {
		return 0
	}
	return len(s.funcs)
}

// Names returns the declared names in sorted order.
func (s *Signatures) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.funcs))
	for name := range s.funcs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (s *Signatures) Resolve(_ context.Context, _ Querier, p Probe) (*Descriptor, error) {
	sig, ok := s.Lookup(p.Name)
	if !ok {
		return nil, nil
	}
	return &Descriptor{
		Name:    p.Name,
		Help:    p.Help,
		Kind:    p.Kind,
		Source:  SourceSignature,
		Params:  sig.Params,
		Results: sig.Results,
		NOut:    len(sig.Results),
		NIn:     len(sig.Params),
	}, nil
}

// splitParams splits a comma separated list, keeping commas nested in
// parentheses or angle brackets.
func splitParams(s string) []string {
	var result []string
	var current strings.Builder
	depth := 0

	for _, ch := range s {
		switch ch {
		case '(', '<':
			depth++
		case ')', '>':
			depth--
		case ',':
			if depth == 0 {
				if str := strings.TrimSpace(current.String()); str != "" {
					result = append(result, str)
				}
				current.Reset()
				continue
			}
		}
		current.WriteRune(ch)
	}

	if str := strings.TrimSpace(current.String()); str != "" {
		result = append(result, str)
	}
	return result
}

// parseType parses "name: type" or a bare type.
func parseType(s string) (wit.Type, error) {
	if i := strings.LastIndex(s, ":"); i != -1 {
		s = s[i+1:]
	}
	return wit.ParseType(strings.TrimSpace(s))
}
