package wrap

import (
	"strings"
	"testing"

	"github.com/wippyai/enginewrap"
	"github.com/wippyai/enginewrap/errors"
	"github.com/wippyai/enginewrap/value"
)

type viewer struct {
	a   value.Array
	err error
}

func (v viewer) EngineArray() (value.Array, error) { return v.a, v.err }

func TestToEngine(t *testing.T) {
	type celsius float64
	var iface any = 3

	tests := []struct {
		name string
		in   any
		want value.Value
	}{
		{"float", 1.5, value.Scalar(1.5)},
		{"int8", int8(-2), value.Scalar(-2)},
		{"uint", uint(9), value.Scalar(9)},
		{"bool", true, value.Scalar(1)},
		{"named", celsius(20), value.Scalar(20)},
		{"complex", 2i, value.ComplexScalar(2i)},
		{"pointer to iface", &iface, nil},
		{"string", "x", value.Char("x")},
		{"char", value.Char(""), value.Char("")},
		{"vector", value.Vector(1, 2), value.Column(1, 2)},
		{"empty vector", value.Vector(), value.Empty()},
		{"row", value.Row(1, 2), value.Row(1, 2)},
		{"slice", []float64{1, 2, 3}, value.Column(1, 2, 3)},
		{"array", [2]int{4, 5}, value.Column(4, 5)},
		{"empty slice", []int{}, value.Empty()},
		{"complex slice", []complex128{1, 1i}, value.MustArray([]int{2, 1}, []float64{1, 0}, []float64{0, 1})},
		{"rows", [][]int{{1, 2, 3}, {4, 5, 6}}, value.MustArray([]int{2, 3}, []float64{1, 4, 2, 5, 3, 6}, nil)},
		{"one empty row", [][]float64{{}}, value.MustArray([]int{1, 0}, nil, nil)},
		{"viewer", viewer{a: value.Row(7)}, value.Row(7)},
		{"any numbers", []any{1, 2.5}, value.Column(1, 2.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToEngine(tt.in)
			if tt.want == nil {
				if !errors.Is(err, errors.ErrUnsupportedArgument) {
					t.Fatalf("err = %v, want unsupported_argument", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ToEngine: %v", err)
			}
			switch want := tt.want.(type) {
			case value.Array:
				a, ok := got.(value.Array)
				if !ok || !a.Equal(want) {
					t.Errorf("got %v, want %v %v", got, want, want.Dims())
				}
			default:
				if got != tt.want {
					t.Errorf("got %#v, want %#v", got, tt.want)
				}
			}
		})
	}
}

func TestToEngine_Unsupported(t *testing.T) {
	cube, _ := value.Vector(1, 2, 3, 4, 5, 6, 7, 8).Reshape(2, 2, 2)
	cause := errors.InvalidData(errors.PhaseMarshal, "bad view")

	tests := []struct {
		name string
		in   any
	}{
		{"nil", nil},
		{"struct", struct{ A int }{1}},
		{"map", map[string]float64{"a": 1}},
		{"strings", []string{"a", "b"}},
		{"ragged", [][]float64{{1}, {2, 3}}},
		{"deep", [][][]float64{{{1}}}},
		{"mixed", []any{1, "a"}},
		{"rank 3", cube},
		{"channel", make(chan int)},
		{"failing viewer", viewer{err: cause}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToEngine(tt.in)
			if !errors.Is(err, errors.ErrUnsupportedArgument) {
				t.Fatalf("err = %v, want unsupported_argument", err)
			}
		})
	}

	_, err := ToEngine(viewer{err: cause})
	if !errors.Is(err, cause) {
		t.Errorf("viewer failure does not wrap its cause: %v", err)
	}
}

func TestNameGen(t *testing.T) {
	var g nameGen
	seen := make(map[string]bool)
	for _, prefix := range []string{prefixArg, prefixRes, prefixProxy, prefixTmp} {
		for _, name := range g.batch(prefix, 50) {
			if seen[name] {
				t.Fatalf("duplicate name %s", name)
			}
			seen[name] = true
			if !isIdentifier(name) || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, "__") {
				t.Errorf("bad name %q", name)
			}
			if len(name)+1 > tmpNameLen {
				t.Errorf("name %q exceeds %d bytes", name, tmpNameLen-1)
			}
		}
	}

	// Another generator counts from one again but still differs.
	var h nameGen
	if a, b := (&nameGen{}).next(prefixTmp), h.next(prefixTmp); a == b {
		t.Errorf("independent generators produced %s twice", a)
	}
}

func TestStatements(t *testing.T) {
	if got := clearStmt([]string{"a", "it's"}); got != "clear('a','it''s');" {
		t.Errorf("clearStmt = %q", got)
	}
	if got := callExpr("pi", nil); got != "pi" {
		t.Errorf("callExpr = %q", got)
	}
	if got := callExpr("f", []string{"a", "b"}); got != "f(a, b)" {
		t.Errorf("callExpr = %q", got)
	}
	if got := assignStmt([]string{"x"}, "f(a)"); got != "x = f(a);" {
		t.Errorf("assignStmt = %q", got)
	}
	if got := assignStmt([]string{"x", "y"}, "f(a)"); got != "[x,y] = f(a);" {
		t.Errorf("assignStmt = %q", got)
	}
}

func TestDealRanges(t *testing.T) {
	small := dealRanges("c", 5)
	if len(small) != 1 || small[0].expr != "c{:}" || small[0].hi != 5 {
		t.Errorf("small = %+v", small)
	}

	n := 1000
	ranges := dealRanges("c", n)
	if len(ranges) < 2 {
		t.Fatalf("got %d ranges for %d elements", len(ranges), n)
	}
	next := 0
	for _, r := range ranges {
		if r.lo != next || r.hi <= r.lo {
			t.Fatalf("range %+v does not follow %d", r, next)
		}
		next = r.hi
		stmt := assignStmt(make([]string, r.hi-r.lo), "deal("+r.expr+")")
		if len(stmt)+(r.hi-r.lo)*(tmpNameLen-1) >= enginewrap.MaxStatementSize {
			t.Errorf("range %+v would overflow the statement buffer", r)
		}
	}
	if next != n {
		t.Errorf("ranges end at %d, want %d", next, n)
	}
	if !strings.HasPrefix(ranges[1].expr, "c{") || !strings.Contains(ranges[1].expr, ":") {
		t.Errorf("chunk expr = %q", ranges[1].expr)
	}
}
