package sim

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wippyai/enginewrap"
	"github.com/wippyai/enginewrap/errors"
	"github.com/wippyai/enginewrap/value"
)

func eval(t *testing.T, e *Engine, stmt string) string {
	t.Helper()
	out, err := e.Eval(context.Background(), stmt)
	if err != nil {
		t.Fatalf("Eval(%q): %v", stmt, err)
	}
	return out
}

func getArray(t *testing.T, e *Engine, name string) value.Array {
	t.Helper()
	v, err := e.Get(context.Background(), name)
	if err != nil {
		t.Fatalf("Get(%q): %v", name, err)
	}
	a, ok := v.(value.Array)
	if !ok {
		t.Fatalf("Get(%q) = %T, want value.Array", name, v)
	}
	return a
}

func getText(t *testing.T, e *Engine, name string) string {
	t.Helper()
	v, err := e.Get(context.Background(), name)
	if err != nil {
		t.Fatalf("Get(%q): %v", name, err)
	}
	c, ok := v.(value.Char)
	if !ok {
		t.Fatalf("Get(%q) = %T, want value.Char", name, v)
	}
	return string(c)
}

func TestArithmetic(t *testing.T) {
	e := New()
	tests := []struct {
		stmt string
		want value.Array
	}{
		{"x = 1 + 2 * 3;", value.Scalar(7)},
		{"x = (1 + 2) * 3;", value.Scalar(9)},
		{"x = -2^2;", value.Scalar(-4)},
		{"x = 2^-1;", value.Scalar(0.5)},
		{"x = [1 2 3] .* [4 5 6];", value.Row(4, 10, 18)},
		{"x = [1 -2];", value.Row(1, -2)},
		{"x = [1 - 2];", value.Scalar(-1)},
		{"x = [1, 2; 3, 4] * [1; 1];", value.Column(3, 7)},
		{"x = [1 2; 3 4]';", value.MustArray([]int{2, 2}, []float64{1, 2, 3, 4}, nil)},
		{"x = 1:4;", value.Row(1, 2, 3, 4)},
		{"x = 10:-5:1;", value.Row(10, 5)},
		{"x = [1 2 3] > 1;", value.Row(0, 1, 1)},
		{"x = 'a' + 1;", value.Scalar(98)},
		{"x = sqrt(16);", value.Scalar(4)},
		{"x = sum([1 2; 3 4]);", value.Row(4, 6)},
		{"x = round(2.5);", value.Scalar(3)},
		{"x = abs(3+4i);", value.Scalar(5)},
		{"x = max([3 9 2]);", value.Scalar(9)},
		{"x = zeros(2, 3);", value.MustArray([]int{2, 3}, make([]float64, 6), nil)},
		{"x = 1e3;", value.Scalar(1000)},
		{"x = 2 & 0 | 1;", value.Scalar(1)},
	}
	for _, tt := range tests {
		t.Run(tt.stmt, func(t *testing.T) {
			eval(t, e, tt.stmt)
			if got := getArray(t, e, "x"); !got.Equal(tt.want) {
				t.Errorf("x = %v (%v), want %v (%v)", got, got.Dims(), tt.want, tt.want.Dims())
			}
		})
	}
}

func TestComplex(t *testing.T) {
	e := New()
	eval(t, e, "z = [1+2i, 3];")
	z := getArray(t, e, "z")
	if !z.IsComplex() {
		t.Fatal("z should be complex")
	}
	if got := z.Complex(); got[0] != 1+2i || got[1] != 3 {
		t.Errorf("z = %v", got)
	}
	eval(t, e, "w = sqrt(-4);")
	if got := getArray(t, e, "w").Complex()[0]; got != 2i {
		t.Errorf("sqrt(-4) = %v", got)
	}
	eval(t, e, "c = z';")
	if got := getArray(t, e, "c").Complex(); got[0] != 1-2i {
		t.Errorf("conjugate transpose = %v", got)
	}
}

func TestSort(t *testing.T) {
	e := New()
	eval(t, e, "[y, i] = sort([3 1 2]);")
	if got := getArray(t, e, "y"); !got.Equal(value.Row(1, 2, 3)) {
		t.Errorf("y = %v", got)
	}
	if got := getArray(t, e, "i"); !got.Equal(value.Row(2, 3, 1)) {
		t.Errorf("i = %v", got)
	}
	eval(t, e, "d = sort([3 1 2], 'descend');")
	if got := getArray(t, e, "d"); !got.Equal(value.Row(3, 2, 1)) {
		t.Errorf("descend = %v", got)
	}
	eval(t, e, "m = sort([3 1; 1 2]);")
	if got := getArray(t, e, "m"); !got.Equal(value.MustArray([]int{2, 2}, []float64{1, 3, 1, 2}, nil)) {
		t.Errorf("column sort = %v", got)
	}
}

func TestStrings(t *testing.T) {
	e := New()
	eval(t, e, "s = 'it''s';")
	if got := getText(t, e, "s"); got != "it's" {
		t.Errorf("s = %q", got)
	}
	eval(t, e, `d = "dq";`)
	if got := getText(t, e, "d"); got != "dq" {
		t.Errorf("d = %q", got)
	}
	eval(t, e, "u = upper(['ab', 'c']);")
	if got := getText(t, e, "u"); got != "ABC" {
		t.Errorf("u = %q", got)
	}
	eval(t, e, "p = s(1:2);")
	if got := getText(t, e, "p"); got != "it" {
		t.Errorf("p = %q", got)
	}
	eval(t, e, "n = num2str(pi);")
	if got := getText(t, e, "n"); got != "3.1416" {
		t.Errorf("num2str(pi) = %q", got)
	}
	eval(t, e, "f = sprintf('%d-%s', 7, 'x');")
	if got := getText(t, e, "f"); got != "7-x" {
		t.Errorf("sprintf = %q", got)
	}
	eval(t, e, "e = '';")
	if got := getText(t, e, "e"); got != "" {
		t.Errorf("empty string = %q", got)
	}
}

func TestIndexing(t *testing.T) {
	e := New()
	eval(t, e, "a = [1 2 3; 4 5 6];")
	cases := []struct {
		expr string
		want value.Array
	}{
		{"a(2, 3)", value.Scalar(6)},
		{"a(4)", value.Scalar(5)},
		{"a(:, 2)", value.Column(2, 5)},
		{"a(2, :)", value.Row(4, 5, 6)},
		{"a(end)", value.Scalar(6)},
		{"a(end, 1)", value.Scalar(4)},
		{"a(:)'", value.Row(1, 4, 2, 5, 3, 6)},
	}
	for _, tt := range cases {
		eval(t, e, "x = "+tt.expr+";")
		if got := getArray(t, e, "x"); !got.Equal(tt.want) {
			t.Errorf("%s = %v, want %v", tt.expr, got, tt.want)
		}
	}

	_, err := e.Eval(context.Background(), "x = a(7);")
	if !errors.Is(err, errors.ErrEngineExecution) || !strings.Contains(err.Error(), "Index exceeds") {
		t.Errorf("out of range: %v", err)
	}
}

func TestAssignmentGrowth(t *testing.T) {
	e := New()
	eval(t, e, "v(3) = 7;")
	if got := getArray(t, e, "v"); !got.Equal(value.Row(0, 0, 7)) {
		t.Errorf("v = %v", got)
	}
	eval(t, e, "m = 1; m(2, 2) = 4;")
	if got := getArray(t, e, "m"); !got.Equal(value.MustArray([]int{2, 2}, []float64{1, 0, 0, 4}, nil)) {
		t.Errorf("m = %v", got)
	}
	eval(t, e, "v(2) = [];")
	if got := getArray(t, e, "v"); !got.Equal(value.Row(0, 7)) {
		t.Errorf("after delete v = %v", got)
	}
	eval(t, e, "v(end+1) = 9;")
	if got := getArray(t, e, "v"); !got.Equal(value.Row(0, 7, 9)) {
		t.Errorf("after append v = %v", got)
	}
}

func TestCells(t *testing.T) {
	e := New()
	eval(t, e, "c = {1, 'two', [3 4]};")
	eval(t, e, "x = c{3};")
	if got := getArray(t, e, "x"); !got.Equal(value.Row(3, 4)) {
		t.Errorf("c{3} = %v", got)
	}
	eval(t, e, "[a, b, d] = deal(c{:});")
	if got := getText(t, e, "b"); got != "two" {
		t.Errorf("b = %q", got)
	}
	eval(t, e, "c{5} = 'five';")
	v, _ := e.Lookup("c")
	if got := v.Dims(); got[0] != 1 || got[1] != 5 {
		t.Errorf("grown cell dims = %v", got)
	}
	eval(t, e, "k = class(c); n = numel(c);")
	if got := getText(t, e, "k"); got != "cell" {
		t.Errorf("class = %q", got)
	}
	if got := getArray(t, e, "n"); !got.Equal(value.Scalar(5)) {
		t.Errorf("numel = %v", got)
	}
	eval(t, e, "nested = {1, {2, 3}};")
	eval(t, e, "y = nested{2}{1};")
	if got := getArray(t, e, "y"); !got.Equal(value.Scalar(2)) {
		t.Errorf("nested = %v", got)
	}

	_, err := e.Get(context.Background(), "c")
	if !errors.Is(err, errors.ErrTypeMismatch) {
		t.Errorf("Get of a cell = %v, want type mismatch", err)
	}
}

func TestStructs(t *testing.T) {
	e := New()
	eval(t, e, "s = struct('type', {'big', 'little'}, 'color', 'red', 'x', {3 4});")
	eval(t, e, "sz = size(s); t2 = s(2).type; col = s(1).color;")
	if got := getArray(t, e, "sz"); !got.Equal(value.Row(1, 2)) {
		t.Errorf("size = %v", got)
	}
	if got := getText(t, e, "t2"); got != "little" {
		t.Errorf("s(2).type = %q", got)
	}
	if got := getText(t, e, "col"); got != "red" {
		t.Errorf("s(1).color = %q", got)
	}

	// Value semantics: changing a copy leaves the original untouched.
	eval(t, e, "u = s; u(1).type = 'BIG'; o = s(1).type;")
	if got := getText(t, e, "o"); got != "big" {
		t.Errorf("original changed to %q", got)
	}

	eval(t, e, "p.a.b = 5; q = p.a.b; f = isfield(p, 'a');")
	if got := getArray(t, e, "q"); !got.Equal(value.Scalar(5)) {
		t.Errorf("p.a.b = %v", got)
	}
	if got := getArray(t, e, "f"); !got.Equal(value.Scalar(1)) {
		t.Errorf("isfield = %v", got)
	}

	eval(t, e, "r(3).name = 'z'; n = numel(r); e1 = isempty(r(1).name);")
	if got := getArray(t, e, "n"); !got.Equal(value.Scalar(3)) {
		t.Errorf("struct array growth numel = %v", got)
	}
	if got := getArray(t, e, "e1"); !got.Equal(value.Scalar(1)) {
		t.Errorf("new elements should hold []: %v", got)
	}

	out := eval(t, e, "disp(s)")
	if !strings.Contains(out, "1x2 struct array with fields:") || !strings.Contains(out, "color") {
		t.Errorf("disp(s) = %q", out)
	}
}

func TestCommandSyntax(t *testing.T) {
	e := New()
	out := eval(t, e, "disp 'hallo'")
	if out != "hallo\n" {
		t.Errorf("disp output = %q", out)
	}
	eval(t, e, "a = 1; b = 2; c = 3;")
	eval(t, e, "clear a b")
	if got := e.Names(); len(got) != 1 || got[0] != "c" {
		t.Errorf("after clear: %v", got)
	}
	eval(t, e, "clear('c')")
	if got := e.Names(); len(got) != 0 {
		t.Errorf("after functional clear: %v", got)
	}

	// A variable is never called with command syntax.
	eval(t, e, "x = 5;")
	eval(t, e, "y = x -1;")
	if got := getArray(t, e, "y"); !got.Equal(value.Scalar(4)) {
		t.Errorf("y = %v", got)
	}
}

func TestEcho(t *testing.T) {
	e := New()
	if out := eval(t, e, "x = 3"); out != "x = 3\n" {
		t.Errorf("echo = %q", out)
	}
	if out := eval(t, e, "x;"); out != "" {
		t.Errorf("suppressed echo = %q", out)
	}
	if out := eval(t, e, "1 + 1"); out != "ans = 2\n" {
		t.Errorf("ans echo = %q", out)
	}
	out := eval(t, e, "a = 1, b = 2; c = 3")
	if out != "a = 1\nc = 3\n" {
		t.Errorf("separators = %q", out)
	}
}

func TestIntrospection(t *testing.T) {
	e := New()
	e.Define("twice", 1, 1, "TWICE Double a value.\n    Y = TWICE(X)\n", func(args []value.Value, _ int) ([]value.Value, error) {
		a, _ := args[0].(value.Array)
		xs := a.Real()
		for i := range xs {
			xs[i] *= 2
		}
		return []value.Value{value.MustArray(a.Dims(), xs, nil)}, nil
	})
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	eval(t, e, "cd('"+dir+"')")

	eval(t, e, "v = 1;")
	kinds := map[string]float64{"v": 1, "twice": 2, "sin": 5, "sub": 7, "nothing_here": 0}
	for name, want := range kinds {
		eval(t, e, "k = exist('"+name+"');")
		if got := getArray(t, e, "k"); !got.Equal(value.Scalar(want)) {
			t.Errorf("exist(%q) = %v, want %v", name, got, want)
		}
	}

	eval(t, e, "ni = nargin('twice'); no = nargout('twice'); y = twice([1 2]);")
	if got := getArray(t, e, "ni"); !got.Equal(value.Scalar(1)) {
		t.Errorf("nargin = %v", got)
	}
	if got := getArray(t, e, "no"); !got.Equal(value.Scalar(1)) {
		t.Errorf("nargout = %v", got)
	}
	if got := getArray(t, e, "y"); !got.Equal(value.Row(2, 4)) {
		t.Errorf("twice = %v", got)
	}

	eval(t, e, "h = help('sort');")
	if got := getText(t, e, "h"); !strings.Contains(got, "[Y,I] = SORT(X)") {
		t.Errorf("help(sort) = %q", got)
	}

	_, err := e.Eval(context.Background(), "y = twice(1, 2);")
	if err == nil || !strings.Contains(err.Error(), "Too many input arguments") {
		t.Errorf("arity error = %v", err)
	}
}

func TestErrors(t *testing.T) {
	e := New()
	tests := []struct {
		stmt string
		want string
	}{
		{"x = undefined_thing;", "Undefined function or variable 'undefined_thing'."},
		{"error('boom %d', 3)", "boom 3"},
		{"x = [1 2] + [1 2 3];", "Matrix dimensions must agree."},
		{"x = (1 + ;", "Error:"},
		{"x = 'abc", "not terminated"},
		{"x = sin(1, 2);", "Error using ==> sin"},
	}
	for _, tt := range tests {
		_, err := e.Eval(context.Background(), tt.stmt)
		if !errors.Is(err, errors.ErrEngineExecution) {
			t.Errorf("Eval(%q) = %v, want engine execution error", tt.stmt, err)
			continue
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("Eval(%q) = %v, want %q", tt.stmt, err, tt.want)
		}
	}
}

func TestBufferOverflow(t *testing.T) {
	e := New()
	stmt := "x = 1;" + strings.Repeat(" ", enginewrap.MaxStatementSize)
	if _, err := e.Eval(context.Background(), stmt); !errors.Is(err, errors.ErrEngineExecution) {
		t.Errorf("got %v, want buffer overflow", err)
	}
}

func TestPutGetClose(t *testing.T) {
	ctx := context.Background()
	conn, err := Driver{}.Open(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.Put(ctx, "m", value.Column(1, 2)); err != nil {
		t.Fatal(err)
	}
	if _, err := conn.Eval(ctx, "n = m';"); err != nil {
		t.Fatal(err)
	}
	v, err := conn.Get(ctx, "n")
	if err != nil {
		t.Fatal(err)
	}
	if a := v.(value.Array); !a.Equal(value.Row(1, 2)) {
		t.Errorf("n = %v", a)
	}
	if err := conn.Put(ctx, "bad name", value.Scalar(1)); err == nil {
		t.Error("Put with an invalid name should fail")
	}
	if err := conn.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if err := conn.Close(ctx); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if _, err := conn.Eval(ctx, "1"); !errors.Is(err, errors.ErrClosed) {
		t.Errorf("Eval after Close = %v", err)
	}
}
