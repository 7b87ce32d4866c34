package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/enginewrap/driver/sim"
	"github.com/wippyai/enginewrap/resolve"
	"github.com/wippyai/enginewrap/value"
	"github.com/wippyai/enginewrap/wrap"
)

func newSession(t *testing.T, sigs string) *wrap.Session {
	t.Helper()
	cfg := wrap.DefaultConfig()
	if sigs != "" {
		parsed, err := resolve.ParseSignatures(sigs)
		if err != nil {
			t.Fatalf("ParseSignatures: %v", err)
		}
		cfg.Signatures = parsed
	}
	ctx := context.Background()
	s, err := wrap.NewWithConfig(ctx, sim.Driver{}, cfg)
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}
	t.Cleanup(func() { s.Close(ctx) })
	return s
}

func TestParseArg(t *testing.T) {
	tests := []struct {
		text string
		want any
	}{
		{"3", 3.0},
		{"-2.5", -2.5},
		{"1+2i", complex(1, 2)},
		{"true", true},
		{"hello", "hello"},
		{" spaced ", " spaced "},
	}
	for _, tt := range tests {
		got, err := parseArg(tt.text)
		if err != nil {
			t.Fatalf("parseArg(%q): %v", tt.text, err)
		}
		if got != tt.want {
			t.Errorf("parseArg(%q) = %#v, want %#v", tt.text, got, tt.want)
		}
	}
}

func TestParseArg_Matrix(t *testing.T) {
	tests := []struct {
		text string
		want value.Array
	}{
		{"[1 2 3]", value.Row(1, 2, 3)},
		{"[1, 2; 3, 4]", mustRows(t, [][]float64{{1, 2}, {3, 4}})},
		{"[]", value.Empty()},
	}
	for _, tt := range tests {
		got, err := parseArg(tt.text)
		if err != nil {
			t.Fatalf("parseArg(%q): %v", tt.text, err)
		}
		a, ok := got.(value.Array)
		if !ok || !a.Equal(tt.want) {
			t.Errorf("parseArg(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}

	for _, bad := range []string{"[1 2", "[1 x]", "[1 2; 3]"} {
		if _, err := parseArg(bad); err == nil {
			t.Errorf("parseArg(%q) succeeded", bad)
		}
	}
}

func mustRows(t *testing.T, rows [][]float64) value.Array {
	t.Helper()
	a, err := value.FromRows(rows)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestConvertArg(t *testing.T) {
	if v, err := convertArg("3", wit.F64{}); err != nil || v != 3.0 {
		t.Errorf("f64 = %v, %v", v, err)
	}
	if v, err := convertArg("3", wit.String{}); err != nil || v != "3" {
		t.Errorf("string = %v, %v", v, err)
	}
	if v, err := convertArg("-4", wit.S32{}); err != nil || v != int64(-4) {
		t.Errorf("s32 = %v, %v", v, err)
	}
	if _, err := convertArg("x", wit.U8{}); err == nil {
		t.Error("u8 accepted x")
	}
	if v, err := convertArg("true", wit.Bool{}); err != nil || v != true {
		t.Errorf("bool = %v, %v", v, err)
	}
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"call sort [3 1 2]", []string{"call", "sort", "[3 1 2]"}},
		{"call disp 'hello world'", []string{"call", "disp", "hello world"}},
		{`call f "" 1`, []string{"call", "f", "", "1"}},
		{"  who  ", []string{"who"}},
	}
	for _, tt := range tests {
		got, err := splitArgs(tt.line)
		if err != nil {
			t.Fatalf("splitArgs(%q): %v", tt.line, err)
		}
		if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
			t.Errorf("splitArgs(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
	for _, bad := range []string{"call f 'open", "call f [1 2"} {
		if _, err := splitArgs(bad); err == nil {
			t.Errorf("splitArgs(%q) succeeded", bad)
		}
	}
}

func TestLineRepl(t *testing.T) {
	s := newSession(t, "")
	in := strings.Join([]string{
		"x = 1 + 2",
		"",
		":call sort [3 1 2]",
		":call disp 'hi there'",
		":nope",
		"undefined_thing",
		":who",
		"quit",
		"y = 5",
	}, "\n")

	var out bytes.Buffer
	if err := lineRepl(context.Background(), s, strings.NewReader(in), &out); err != nil {
		t.Fatalf("lineRepl: %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"x = 3\n",
		"[1 2 3]\n",
		"hi there\n",
		"error: unknown shell command :nope\n",
		"error: ",
		"x\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "y = 5") {
		t.Errorf("statement after quit was evaluated:\n%s", got)
	}
}

func TestCallFunction_Signature(t *testing.T) {
	s := newSession(t, "sqrt: func(x: f64) -> f64;")
	ctx := context.Background()

	var out bytes.Buffer
	if err := callFunction(ctx, s, "sqrt", []string{"16"}, &out); err != nil {
		t.Fatalf("callFunction: %v", err)
	}
	if out.String() != "4\n" {
		t.Errorf("sqrt output = %q", out.String())
	}

	out.Reset()
	if err := callFunction(ctx, s, "sort", []string{"[3 1 2]"}, &out, wrap.NOut(2)); err != nil {
		t.Fatalf("callFunction: %v", err)
	}
	if out.String() != "{[1 2 3], [2 3 1]}\n" {
		t.Errorf("sort output = %q", out.String())
	}

	if err := callFunction(ctx, s, "sqrt", []string{"[1 2"}, &out); err == nil {
		t.Error("expected argument error")
	}
}

func TestPrintDescriptor(t *testing.T) {
	s := newSession(t, "sort: func(x: f64) -> (f64, f64);")
	ctx := context.Background()

	c, err := s.Command(ctx, "sort")
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	var out bytes.Buffer
	printDescriptor(&out, c)
	if !strings.Contains(out.String(), "sort(f64) -> (f64, f64)") {
		t.Errorf("descriptor = %q", out.String())
	}
	if !strings.Contains(out.String(), "via signature") {
		t.Errorf("descriptor = %q", out.String())
	}
}

func TestFormatResult(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		res  any
		want string
	}{
		{nil, ""},
		{"abc", "'abc'"},
		{value.Scalar(2), "2"},
		{[]any{value.Row(1, 2), "x"}, "{[1 2], 'x'}"},
	}
	for _, tt := range tests {
		if got := formatResult(ctx, tt.res); got != tt.want {
			t.Errorf("formatResult(%v) = %q, want %q", tt.res, got, tt.want)
		}
	}
}
