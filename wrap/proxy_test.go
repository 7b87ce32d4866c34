package wrap

import (
	"context"
	"runtime"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/wippyai/enginewrap/errors"
	"github.com/wippyai/enginewrap/value"
)

const structExpr = "struct('type', {'big', 'little'}, 'color', 'red', 'x', {3 4})"

func newStructProxy(t *testing.T, s *Session) *Proxy {
	t.Helper()
	res, err := s.Do(context.Background(), structExpr, nil)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	p, ok := res.(*Proxy)
	if !ok {
		t.Fatalf("got %T, want *Proxy", res)
	}
	return p
}

func TestProxy_StructAccess(t *testing.T) {
	ctx := context.Background()
	s, rc := newTestSession(t, nil)
	if _, err := s.Do(ctx, "orig = "+structExpr+";", nil, NOut(0)); err != nil {
		t.Fatal(err)
	}
	res, err := s.Get(ctx, "orig")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	p := res.(*Proxy)

	first, err := p.Index(ctx, 0)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	el, ok := first.(*Proxy)
	if !ok {
		t.Fatalf("element is %T, want *Proxy", first)
	}
	if el.Parent() != p || el.Root() != p {
		t.Error("element is not a child of the root proxy")
	}

	x, err := el.Field(ctx, "x")
	if err != nil {
		t.Fatalf("Field: %v", err)
	}
	wantArray(t, x, value.Scalar(3))

	if err := el.SetField(ctx, "type", "BIG"); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	if got, _ := el.Field(ctx, "type"); got != "BIG" {
		t.Errorf("type = %#v, want BIG", got)
	}
	second, _ := p.Index(ctx, 1)
	if got, _ := second.(*Proxy).Field(ctx, "type"); got != "little" {
		t.Errorf("sibling type = %#v, want little", got)
	}

	// The proxy holds a copy; the user variable is untouched.
	if _, err := s.Do(ctx, "disp(orig(1).type)", nil, NOut(0), Output(func(out string) {
		if out != "big\n" {
			t.Errorf("orig(1).type = %q, want big", out)
		}
	})); err != nil {
		t.Fatal(err)
	}

	if err := p.SetIndex(ctx, 1, el); err != nil {
		t.Fatalf("SetIndex: %v", err)
	}
	if got, _ := second.(*Proxy).Field(ctx, "type"); got != "BIG" {
		t.Errorf("copied element type = %#v, want BIG", got)
	}
	if err := el.SetField(ctx, "color", value.Row(1, 2)); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	color, err := el.Field(ctx, "color")
	if err != nil {
		t.Fatalf("Field: %v", err)
	}
	wantArray(t, color, value.Vector(1, 2))

	if _, err := el.Field(ctx, "no such"); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("bad field name: err = %v", err)
	}
	if _, err := p.Index(ctx, -1); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("negative index: err = %v", err)
	}

	if err := p.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if names := rc.Names(); !slices.Equal(names, []string{"orig"}) {
		t.Errorf("workspace = %v, want [orig]", names)
	}
}

func TestProxy_Describe(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t, nil)
	p := newStructProxy(t, s)

	desc := p.Describe(ctx)
	lines := strings.Split(desc, "\n")
	want := []string{
		"<Proxy of engine-class: 'struct'; internal name: '" + p.Name() + "'; has parent: no>",
		"1x2 struct array with fields:",
		"    type",
		"    color",
		"    x",
	}
	if !slices.Equal(lines, want) {
		t.Errorf("Describe =\n%s\nwant\n%s", desc, strings.Join(want, "\n"))
	}

	first, _ := p.Index(ctx, 0)
	el := first.(*Proxy)
	color, _ := el.Field(ctx, "color")
	if color != "red" {
		t.Errorf("color = %#v", color)
	}
	if !strings.HasSuffix(el.String(), "has parent: yes>") {
		t.Errorf("String = %q", el.String())
	}

	res, err := s.Do(ctx, "{1, 2; 3, 4}", nil)
	if err != nil {
		t.Fatal(err)
	}
	cell := res.(*Proxy)
	if got := cell.Describe(ctx); !strings.HasPrefix(got, "<Proxy of engine-class: 'cell';") || strings.Contains(got, "\n") {
		t.Errorf("cell Describe = %q", got)
	}
}

func TestProxy_Close(t *testing.T) {
	ctx := context.Background()
	s, rc := newTestSession(t, nil)
	p := newStructProxy(t, s)
	q := newStructProxy(t, s)
	if p.Name() == q.Name() {
		t.Fatalf("roots share the name %s", p.Name())
	}
	if got := s.Proxies(); len(got) != 2 {
		t.Fatalf("Proxies = %v", got)
	}

	first, _ := p.Index(ctx, 0)
	child := first.(*Proxy)
	n := len(rc.stmts)
	if err := child.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if len(rc.stmts) != n {
		t.Errorf("closing a child issued %v", rc.stmts[n:])
	}
	if _, err := child.Field(ctx, "x"); !errors.Is(err, errors.ErrClosed) {
		t.Errorf("closed child: err = %v", err)
	}

	if err := p.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(ctx); err != nil {
		t.Fatal(err)
	}
	issued := rc.stmts[n:]
	if len(issued) != 1 || issued[0] != clearStmt([]string{p.Name()}) {
		t.Errorf("closing the root issued %v", issued)
	}
	if _, err := p.Class(ctx); !errors.Is(err, errors.ErrClosed) {
		t.Errorf("closed root: err = %v", err)
	}
	if got := s.Proxies(); !slices.Equal(got, []string{q.Name()}) {
		t.Errorf("Proxies = %v, want [%s]", got, q.Name())
	}

	// Setting a variable from a live proxy copies by reference.
	if err := s.Set(ctx, "copy", q); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "copy", p); !errors.Is(err, errors.ErrClosed) {
		t.Errorf("Set from closed proxy: err = %v", err)
	}

	other, _ := newTestSession(t, nil)
	if err := other.Set(ctx, "x", q); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("foreign proxy: err = %v", err)
	}
}

func TestProxy_ReleasedAfterCollection(t *testing.T) {
	ctx := context.Background()
	s, rc := newTestSession(t, nil)

	func() {
		for range 3 {
			newStructProxy(t, s)
		}
	}()
	if got := len(rc.Names()); got != 3 {
		t.Fatalf("workspace holds %d names, want 3", got)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		runtime.GC()
		if err := s.Collect(ctx); err != nil {
			t.Fatalf("Collect: %v", err)
		}
		if len(rc.Names()) == 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if names := rc.Names(); len(names) != 0 {
		t.Errorf("workspace still holds %v", names)
	}
	if got := s.Proxies(); len(got) != 0 {
		t.Errorf("Proxies = %v", got)
	}
}

func TestProxy_MatrixCellFieldIsChild(t *testing.T) {
	ctx := context.Background()
	s, rc := newTestSession(t, nil)
	if _, err := s.Do(ctx, "q = struct('c', 0); q.c = {1, 2; 3, 4};", nil, NOut(0)); err != nil {
		t.Fatal(err)
	}
	v, err := s.Get(ctx, "q")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	p := v.(*Proxy)

	res, err := p.Field(ctx, "c")
	if err != nil {
		t.Fatalf("Field: %v", err)
	}
	c, ok := res.(*Proxy)
	if !ok {
		t.Fatalf("got %T, want *Proxy", res)
	}
	if c.Parent() != p || c.Root() != p {
		t.Error("cell field is not a child of its struct")
	}
	if class, err := c.Class(ctx); err != nil || class != "cell" {
		t.Errorf("class = %q, %v", class, err)
	}

	// A single element of the cell converts.
	el, err := c.Index(ctx, 1)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	elems, ok := el.([]any)
	if !ok || len(elems) != 1 {
		t.Fatalf("element = %#v", el)
	}
	wantArray(t, elems[0], value.Scalar(3))

	names := rc.Names()
	slices.Sort(names)
	want := []string{p.Name(), "q"}
	slices.Sort(want)
	if !slices.Equal(names, want) {
		t.Errorf("workspace = %v, want %v", names, want)
	}
}
