package wrap

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/enginewrap/errors"
	"github.com/wippyai/enginewrap/value"
)

// Proxy stands in for an engine value that cannot be converted, such as a
// struct or a two-dimensional cell array.
//
// A root proxy owns one workspace variable holding a private copy of the
// value. The variable is cleared exactly once: by Close, or after the
// proxy becomes unreachable, on the session's next call or Collect.
// Field and Index accesses that cannot be converted yield child proxies.
// A child names a sub-expression of its root ("PROXY_VAL1_ab12cd34__.a")
// and keeps its parent alive; it never clears anything.
type Proxy struct {
	s        *Session
	parent   *Proxy
	name     string
	cleanup  runtime.Cleanup
	released bool
}

// makeProxy copies src into a fresh workspace variable and returns the
// root proxy owning it.
func (s *Session) makeProxy(ctx context.Context, src string) (*Proxy, error) {
	name := s.names.next(prefixProxy)
	if _, err := s.eval(ctx, name+" = "+src+";"); err != nil {
		return nil, err
	}
	p := &Proxy{s: s, name: name}
	queue := s.released
	p.cleanup = runtime.AddCleanup(p, func(n string) { queue.push(n) }, name)
	s.proxies.Insert(name, p)
	return p, nil
}

func (p *Proxy) child(expr string) *Proxy {
	return &Proxy{s: p.s, parent: p, name: expr}
}

// Name returns the workspace expression the proxy stands for.
func (p *Proxy) Name() string { return p.name }

// Parent returns the proxy this one was derived from, or nil for a root.
func (p *Proxy) Parent() *Proxy { return p.parent }

// Root returns the proxy owning the workspace variable.
func (p *Proxy) Root() *Proxy {
	for p.parent != nil {
		p = p.parent
	}
	return p
}

// usable reports whether p can be used with session s.
func (p *Proxy) usable(s *Session) error {
	if p.s != s {
		return errors.InvalidInput(errors.PhaseProxy, "proxy belongs to another session")
	}
	if p.s.closed || p.Root().released || p.released {
		return errors.Closed(errors.PhaseProxy, "proxy "+p.name)
	}
	return nil
}

func (p *Proxy) begin(ctx context.Context) error {
	if err := p.usable(p.s); err != nil {
		return err
	}
	return p.s.collect(ctx)
}

// Field reads the field attr. Convertible values are returned converted;
// anything else is returned as a child proxy.
func (p *Proxy) Field(ctx context.Context, attr string) (any, error) {
	if !isIdentifier(attr) {
		return nil, errors.InvalidInput(errors.PhaseProxy, "invalid field name "+strconv.Quote(attr))
	}
	return p.part(ctx, p.name+"."+attr)
}

// SetField assigns v to the field attr.
func (p *Proxy) SetField(ctx context.Context, attr string, v any) error {
	if !isIdentifier(attr) {
		return errors.InvalidInput(errors.PhaseProxy, "invalid field name "+strconv.Quote(attr))
	}
	return p.setPart(ctx, p.name+"."+attr, v)
}

// Index reads element i, counted from zero.
func (p *Proxy) Index(ctx context.Context, i int) (any, error) {
	if i < 0 {
		return nil, errors.InvalidInput(errors.PhaseProxy, fmt.Sprintf("negative index %d", i))
	}
	return p.part(ctx, p.name+"("+strconv.Itoa(i+1)+")")
}

// SetIndex assigns v to element i, counted from zero.
func (p *Proxy) SetIndex(ctx context.Context, i int, v any) error {
	if i < 0 {
		return errors.InvalidInput(errors.PhaseProxy, fmt.Sprintf("negative index %d", i))
	}
	return p.setPart(ctx, p.name+"("+strconv.Itoa(i+1)+")", v)
}

func (p *Proxy) part(ctx context.Context, expr string) (any, error) {
	if err := p.begin(ctx); err != nil {
		return nil, err
	}
	s := p.s
	class, err := s.classify(ctx, expr)
	if err != nil {
		return nil, err
	}
	switch {
	case s.convert[class]:
		tmp := s.names.next(prefixTmp)
		if _, err := s.eval(ctx, tmp+" = "+expr+";"); err != nil {
			return nil, err
		}
		return s.fromEngine(ctx, tmp, true)
	case s.manual[class]:
		return p.aggregatePart(ctx, expr)
	}
	return p.child(expr), nil
}

// aggregatePart converts a cell-like part element by element. A part that
// is not one-dimensional stays a child of p.
func (p *Proxy) aggregatePart(ctx context.Context, expr string) (res any, err error) {
	s := p.s
	tmp := s.names.next(prefixTmp)
	if _, err := s.eval(ctx, tmp+" = "+expr+";"); err != nil {
		return nil, err
	}
	defer s.clearAfter(ctx, []string{tmp}, &err)

	elems, err := s.cellToHost(ctx, tmp)
	switch {
	case err == nil:
		return elems, nil
	case errors.Is(err, errors.ErrConversion):
		s.log.Debug("aggregate part kept as child proxy", zap.String("expr", expr))
		return p.child(expr), nil
	}
	return nil, err
}

func (p *Proxy) setPart(ctx context.Context, target string, v any) (err error) {
	if err := p.begin(ctx); err != nil {
		return err
	}
	s := p.s
	if src, ok := v.(*Proxy); ok {
		if err := src.usable(s); err != nil {
			return err
		}
		_, err := s.eval(ctx, target+" = "+src.name+";")
		return err
	}

	ev, err := ToEngine(v)
	if err != nil {
		return err
	}
	tmp := s.names.next(prefixTmp)
	defer s.clearAfter(ctx, []string{tmp}, &err)
	if err := s.conn.Put(ctx, tmp, ev); err != nil {
		return err
	}
	_, err = s.eval(ctx, target+" = "+tmp+";")
	return err
}

// Class returns the engine class of the value.
func (p *Proxy) Class(ctx context.Context) (string, error) {
	if err := p.begin(ctx); err != nil {
		return "", err
	}
	return p.s.classify(ctx, p.name)
}

// Describe renders the proxy for display. Structs also list their size and
// field names. Describe is best effort: engine failures are reported in
// the text.
func (p *Proxy) Describe(ctx context.Context) string {
	class, err := p.Class(ctx)
	if err != nil {
		class = "?"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "<Proxy of engine-class: '%s'; internal name: '%s'; has parent: %s>",
		class, p.name, yesNo(p.parent != nil))
	if class != "struct" {
		return b.String()
	}

	desc, err := p.describeStruct(ctx)
	if err != nil {
		fmt.Fprintf(&b, "\n(%v)", err)
		return b.String()
	}
	b.WriteString("\n")
	b.WriteString(desc)
	return b.String()
}

func (p *Proxy) describeStruct(ctx context.Context) (string, error) {
	v, err := p.s.raw(ctx, "size("+p.name+")")
	if err != nil {
		return "", err
	}
	size, ok := v.(value.Array)
	if !ok || size.Len() < 2 {
		return "", errors.TypeMismatch(errors.PhaseProxy, p.name, "", v.Class())
	}
	dims := size.Real()

	fields, err := p.s.Do(ctx, "fieldnames", []any{p})
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%dx%d struct array with fields:", int(dims[0]), int(dims[1]))
	if names, ok := fields.([]any); ok {
		for _, f := range names {
			fmt.Fprintf(&b, "\n    %v", f)
		}
	}
	return b.String(), nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// String implements fmt.Stringer without consulting the engine.
func (p *Proxy) String() string {
	return fmt.Sprintf("<Proxy internal name: '%s'; has parent: %s>", p.name, yesNo(p.parent != nil))
}

// Close releases the proxy. A root proxy clears its workspace variable; a
// child only becomes unusable. Closing twice is a no-op, as is closing
// after the session was closed.
func (p *Proxy) Close(ctx context.Context) error {
	if p.released {
		return nil
	}
	p.released = true
	if p.parent != nil {
		return nil
	}
	p.cleanup.Stop()
	p.s.proxies.Remove(p.name)
	if p.s.closed {
		return nil
	}
	p.s.log.Debug("releasing proxy", zap.String("name", p.name))
	return p.s.clear(ctx, []string{p.name})
}

// releaseQueue collects the names of proxies reclaimed by the garbage
// collector. Cleanups run on their own goroutine, so it is guarded.
type releaseQueue struct {
	names []string
	mu    sync.Mutex
}

func (q *releaseQueue) push(name string) {
	q.mu.Lock()
	q.names = append(q.names, name)
	q.mu.Unlock()
}

func (q *releaseQueue) drain() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	names := q.names
	q.names = nil
	return names
}
