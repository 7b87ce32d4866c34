package resolve

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/wippyai/enginewrap/driver/sim"
	"github.com/wippyai/enginewrap/errors"
	"github.com/wippyai/enginewrap/value"
)

// engineQuerier answers queries by evaluating them in a sim engine.
type engineQuerier struct {
	e *sim.Engine
}

func (q engineQuerier) eval(ctx context.Context, expr string) (value.Value, error) {
	if _, err := q.e.Eval(ctx, "q__ = "+expr+";"); err != nil {
		return nil, err
	}
	return q.e.Get(ctx, "q__")
}

func (q engineQuerier) number(ctx context.Context, expr string) (int, error) {
	v, err := q.eval(ctx, expr)
	if err != nil {
		return 0, err
	}
	a, ok := v.(value.Array)
	if !ok {
		return 0, fmt.Errorf("%s: not a number", expr)
	}
	f, ok := a.Float()
	if !ok {
		return 0, fmt.Errorf("%s: not a scalar", expr)
	}
	return int(f), nil
}

func (q engineQuerier) Exist(ctx context.Context, name string) (Kind, error) {
	n, err := q.number(ctx, "exist('"+name+"')")
	return Kind(n), err
}

func (q engineQuerier) Help(ctx context.Context, name string) (string, error) {
	v, err := q.eval(ctx, "help('"+name+"')")
	if err != nil {
		return "", err
	}
	return string(v.(value.Char)), nil
}

func (q engineQuerier) Nargin(ctx context.Context, name string) (int, error) {
	return q.number(ctx, "nargin('"+name+"')")
}

func (q engineQuerier) Nargout(ctx context.Context, name string) (int, error) {
	return q.number(ctx, "nargout('"+name+"')")
}

// fakeQuerier answers from fixed tables and counts queries.
type fakeQuerier struct {
	kinds   map[string]Kind
	help    map[string]string
	nargout map[string]int
	nargin  map[string]int
	queries int
}

func (q *fakeQuerier) Exist(_ context.Context, name string) (Kind, error) {
	q.queries++
	return q.kinds[name], nil
}

func (q *fakeQuerier) Help(_ context.Context, name string) (string, error) {
	q.queries++
	h, ok := q.help[name]
	if !ok {
		return "", errors.EngineExecution("no help for " + name)
	}
	return h, nil
}

func (q *fakeQuerier) Nargin(_ context.Context, name string) (int, error) {
	q.queries++
	return q.nargin[name], nil
}

func (q *fakeQuerier) Nargout(_ context.Context, name string) (int, error) {
	q.queries++
	n, ok := q.nargout[name]
	if !ok {
		return 0, errors.EngineExecution("Function '" + name + "' does not exist.")
	}
	return n, nil
}

func TestUsage(t *testing.T) {
	tests := []struct {
		name string
		help string
		nout int
		nin  int
	}{
		{
			name: "foo",
			help: " FOO summary\n    [A,B,C] = FOO(X,Y)\n    A = FOO(X)\n",
			nout: 3,
			nin:  2,
		},
		{
			name: "bar",
			help: " BAR summary\n    BAR(X) is the bar of X.\n",
			nout: 1,
			nin:  1,
		},
		{
			name: "baz",
			help: " BAZ summary\n    BAZ(X) prints X.\n    BAZ NAME prints the variable NAME.\n",
			nout: 0,
			nin:  1,
		},
		{
			name: "qux",
			help: " QUX summary\n    Y = QUX(X,...) combines everything.\n",
			nout: 1,
			nin:  Variadic,
		},
		{
			// Only the summary line mentions the usage.
			name: "one",
			help: " Y = ONE(X)\n    Nothing else.\n",
			nout: 0,
			nin:  0,
		},
		{
			name: "empty",
			help: "",
			nout: 0,
			nin:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nout, nin := Usage(tt.name, tt.help)
			if nout != tt.nout {
				t.Errorf("nout = %d, want %d", nout, tt.nout)
			}
			if nin != tt.nin {
				t.Errorf("nin = %d, want %d", nin, tt.nin)
			}
		})
	}
}

func TestHeuristicOnEngineHelp(t *testing.T) {
	ctx := context.Background()
	q := engineQuerier{e: sim.New()}
	chain := DefaultChain()

	tests := []struct {
		name string
		nout int
		def  int
	}{
		{"sort", 2, 1},
		{"size", 2, 1},
		{"sin", 1, 1},
		{"length", 1, 1},
		{"round", 1, 1},
		{"who", 1, 1},
		{"cd", 1, 1},
		{"deal", 3, 1},
		{"disp", 0, 0},
		{"clear", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := chain.Resolve(ctx, q, tt.name)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if d.Source != "heuristic" {
				t.Errorf("source = %q, want heuristic", d.Source)
			}
			if d.Kind != KindBuiltin {
				t.Errorf("kind = %v, want builtin", d.Kind)
			}
			if d.NOut != tt.nout {
				t.Errorf("nout = %d, want %d", d.NOut, tt.nout)
			}
			if d.DefaultNOut() != tt.def {
				t.Errorf("default nout = %d, want %d", d.DefaultNOut(), tt.def)
			}
			if d.Help == "" {
				t.Error("help text missing")
			}
		})
	}
}

func TestIntrospectOnEngine(t *testing.T) {
	ctx := context.Background()
	e := sim.New()
	e.Define("split2", 1, 2, " SPLIT2 Split.\n", func(args []value.Value, _ int) ([]value.Value, error) {
		return []value.Value{args[0], args[0]}, nil
	})
	e.Define("anything", -1, -1, "", func(args []value.Value, _ int) ([]value.Value, error) {
		return args, nil
	})
	q := engineQuerier{e: e}

	d, err := DefaultChain().Resolve(ctx, q, "split2")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d.Source != "introspect" || d.NOut != 2 || d.NIn != 1 {
		t.Errorf("got %+v", d)
	}

	d, err = DefaultChain().Resolve(ctx, q, "anything")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d.NOut != Variadic || d.NIn != Variadic {
		t.Errorf("got nout=%d nin=%d, want variadic", d.NOut, d.NIn)
	}
	if d.DefaultNOut() != 1 {
		t.Errorf("default nout = %d, want 1", d.DefaultNOut())
	}

	if _, err := e.Eval(ctx, "v = 3;"); err != nil {
		t.Fatal(err)
	}
	d, err = DefaultChain().Resolve(ctx, q, "v")
	if err != nil {
		t.Fatalf("Resolve variable: %v", err)
	}
	if d.Kind != KindVariable || d.NOut != 1 {
		t.Errorf("variable: got %+v", d)
	}
}

func TestChain_NoSuchObject(t *testing.T) {
	ctx := context.Background()
	q := &fakeQuerier{kinds: map[string]Kind{"somedir": KindFolder}}

	for _, name := range []string{"nothing", "somedir"} {
		for i := 0; i < 2; i++ {
			_, err := DefaultChain().Resolve(ctx, q, name)
			if !errors.Is(err, errors.ErrNoSuchObject) {
				t.Fatalf("%s: err = %v, want no_such_object", name, err)
			}
		}
	}
	// Only the existence query is issued for names that cannot be called.
	if q.queries != 4 {
		t.Errorf("queries = %d, want 4", q.queries)
	}
}

func TestChain_ErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	q := &fakeQuerier{
		kinds: map[string]Kind{"broken": KindFile},
		help:  map[string]string{"broken": ""},
	}
	_, err := DefaultChain().Resolve(ctx, q, "broken")
	if !errors.Is(err, errors.ErrEngineExecution) {
		t.Fatalf("err = %v, want engine_execution", err)
	}
}

func TestChain_MissingHelpIsTolerated(t *testing.T) {
	ctx := context.Background()
	q := &fakeQuerier{
		kinds:   map[string]Kind{"f": KindFile},
		nargout: map[string]int{"f": 0},
		nargin:  map[string]int{"f": 2},
	}
	d, err := DefaultChain().Resolve(ctx, q, "f")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d.Help != "" || d.NOut != 0 || d.NIn != 2 || d.DefaultNOut() != 0 {
		t.Errorf("got %+v", d)
	}
}

func TestChain_Fallback(t *testing.T) {
	ctx := context.Background()
	q := &fakeQuerier{kinds: map[string]Kind{"b": KindBuiltin}, help: map[string]string{"b": ""}}

	d, err := Chain{}.Resolve(ctx, q, "b")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d.Source != "default" || d.NOut != 1 || d.NIn != Variadic {
		t.Errorf("got %+v", d)
	}
}

func TestSignatures(t *testing.T) {
	text := `
		// declared by the host
		sort: func(x: f64, mode: string) -> (f64, f64, f64);
		export disp: func(x: string);
		twice: func(x: f64) -> f64;
		now: func() -> f64;
	`
	sigs, err := ParseSignatures(text)
	if err != nil {
		t.Fatalf("ParseSignatures: %v", err)
	}
	if sigs.Len() != 4 {
		t.Fatalf("Len = %d, want 4", sigs.Len())
	}
	if got := strings.Join(sigs.Names(), ","); got != "disp,now,sort,twice" {
		t.Errorf("Names = %s", got)
	}

	sig, ok := sigs.Lookup("sort")
	if !ok {
		t.Fatal("sort not declared")
	}
	if len(sig.Params) != 2 || len(sig.Results) != 3 {
		t.Fatalf("sort: %d params, %d results", len(sig.Params), len(sig.Results))
	}
	for i, p := range sig.Params {
		if p == nil {
			t.Errorf("sort param %d has no type", i)
		}
	}

	if sig, _ := sigs.Lookup("disp"); len(sig.Results) != 0 || len(sig.Params) != 1 {
		t.Errorf("disp: %+v", sig)
	}
	if sig, _ := sigs.Lookup("now"); len(sig.Params) != 0 || len(sig.Results) != 1 {
		t.Errorf("now: %+v", sig)
	}

	// Declarations take precedence over the heuristic.
	ctx := context.Background()
	q := engineQuerier{e: sim.New()}
	chain := Chain{sigs, Introspect{}, Heuristic{}}
	d, err := chain.Resolve(ctx, q, "sort")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d.Source != SourceSignature || d.NOut != 3 || d.NIn != 2 {
		t.Errorf("got %+v", d)
	}
	if d.DefaultNOut() != 3 {
		t.Errorf("default nout = %d, want the declared 3", d.DefaultNOut())
	}

	// Declaring a name does not make it exist.
	if _, err := chain.Resolve(ctx, q, "twice"); !errors.Is(err, errors.ErrNoSuchObject) {
		t.Errorf("twice: err = %v, want no_such_object", err)
	}
}

func TestParseSignatures_Empty(t *testing.T) {
	if _, err := ParseSignatures("interface nothing {}"); err == nil {
		t.Error("expected error for text without declarations")
	}
}

func TestSplitParams(t *testing.T) {
	got := splitParams("a: f64, b: tuple<f64, string>, c: option<u8>")
	if len(got) != 3 {
		t.Fatalf("got %q", got)
	}
	if got[1] != "b: tuple<f64, string>" {
		t.Errorf("got[1] = %q", got[1])
	}
}
