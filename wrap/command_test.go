package wrap

import (
	"context"
	"strings"
	"testing"

	"github.com/wippyai/enginewrap/errors"
	"github.com/wippyai/enginewrap/resolve"
	"github.com/wippyai/enginewrap/value"
)

func TestCommand_UnknownIsCached(t *testing.T) {
	ctx := context.Background()
	s, rc := newTestSession(t, nil)

	_, err := s.Command(ctx, "twice")
	if !errors.Is(err, errors.ErrNoSuchObject) {
		t.Fatalf("err = %v, want no_such_object", err)
	}
	n := len(rc.stmts)
	if _, err := s.Call(ctx, "twice", 2); !errors.Is(err, errors.ErrNoSuchObject) {
		t.Fatalf("err = %v, want no_such_object", err)
	}
	if len(rc.stmts) != n {
		t.Errorf("cached failure reached the engine: %v", rc.stmts[n:])
	}

	rc.Define("twice", 1, 1, " TWICE doubles.\n", func(args []value.Value, _ int) ([]value.Value, error) {
		f, _ := args[0].(value.Array).Float()
		return []value.Value{value.Scalar(2 * f)}, nil
	})
	s.Forget("twice")
	res, err := s.Call(ctx, "twice", 21)
	if err != nil {
		t.Fatalf("Call after Forget: %v", err)
	}
	wantArray(t, res, value.Scalar(42))

	cmd, _ := s.Command(ctx, "twice")
	if d := cmd.Descriptor(); d.Source != "introspect" || d.NOut != 1 || d.NIn != 1 {
		t.Errorf("descriptor = %+v", d)
	}
	if _, err := s.Command(ctx, "not an identifier"); !errors.Is(err, errors.ErrNoSuchObject) {
		t.Errorf("err = %v, want no_such_object", err)
	}
}

func TestCommand_Resolution(t *testing.T) {
	ctx := context.Background()
	s, rc := newTestSession(t, nil)

	cmd, err := s.Command(ctx, "sort")
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	again, _ := s.Command(ctx, "sort_")
	if again != cmd {
		t.Error("trailing underscore resolved to another command")
	}
	if cmd.Name() != "sort" || !strings.Contains(cmd.Doc(), "SORT") {
		t.Errorf("name %q, doc %q", cmd.Name(), cmd.Doc())
	}
	if d := cmd.Descriptor(); d.Kind != resolve.KindBuiltin || d.Source != "heuristic" {
		t.Errorf("descriptor = %+v", d)
	}

	disp, err := s.Command(ctx, "disp")
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	var out string
	res, err := disp.CallWith(ctx, []any{"hello"}, Output(func(s string) { out = s }))
	if err != nil || res != nil {
		t.Fatalf("disp = %v, %v", res, err)
	}
	if out != "hello\n" {
		t.Errorf("output = %q", out)
	}

	// Resolution leaves nothing behind.
	if names := rc.Names(); len(names) != 0 {
		t.Errorf("workspace = %v", names)
	}
}

func TestCommand_Signatures(t *testing.T) {
	ctx := context.Background()
	sigs, err := resolve.ParseSignatures(`
		sort: func(x: f64) -> (f64, f64);
		pwd: func();
	`)
	if err != nil {
		t.Fatalf("ParseSignatures: %v", err)
	}
	cfg := DefaultConfig()
	cfg.Signatures = sigs
	s, _ := newTestSession(t, cfg)

	res, err := s.Call(ctx, "sort", value.Row(2, 1))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	outs, ok := res.([]any)
	if !ok || len(outs) != 2 {
		t.Fatalf("got %#v, want two outputs", res)
	}
	wantArray(t, outs[1], value.Vector(2, 1))

	cmd, _ := s.Command(ctx, "pwd")
	if cmd.Descriptor().Source != resolve.SourceSignature {
		t.Errorf("source = %q", cmd.Descriptor().Source)
	}
	if res, err := cmd.Call(ctx); err != nil || res != nil {
		t.Errorf("pwd as procedure = %v, %v", res, err)
	}
	res, err = cmd.CallWith(ctx, nil, NOut(1))
	if err != nil {
		t.Fatalf("CallWith: %v", err)
	}
	if dir, ok := res.(string); !ok || dir == "" {
		t.Errorf("pwd = %#v", res)
	}
}

func TestCommand_ClosedSession(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t, nil)
	cmd, err := s.Command(ctx, "sin")
	if err != nil {
		t.Fatal(err)
	}
	res, err := cmd.Call(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	wantArray(t, res, value.Scalar(0))

	s.Close(ctx)
	if _, err := cmd.Call(ctx, 0); !errors.Is(err, errors.ErrClosed) {
		t.Errorf("err = %v, want closed", err)
	}
	if _, err := s.Command(ctx, "cos"); !errors.Is(err, errors.ErrClosed) {
		t.Errorf("err = %v, want closed", err)
	}
}
