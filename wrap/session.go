package wrap

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/enginewrap"
	"github.com/wippyai/enginewrap/errors"
	"github.com/wippyai/enginewrap/resolve"
	"github.com/wippyai/enginewrap/resource"
	"github.com/wippyai/enginewrap/value"
)

// Session owns one engine connection and everything introduced into its
// workspace: temporaries, proxies and resolved commands.
//
// A Session is not safe for concurrent use. The engine runs one statement
// at a time and the workspace is shared by every call.
type Session struct {
	conn     enginewrap.Conn
	cfg      Config
	log      *zap.Logger
	chain    resolve.Chain
	names    nameGen
	proxies  *resource.Table[Proxy]
	released *releaseQueue
	commands map[string]*Command
	failed   map[string]error
	convert  map[string]bool
	manual   map[string]bool
	closed   bool
}

// New opens a session on drv with the default configuration.
func New(ctx context.Context, drv enginewrap.Driver) (*Session, error) {
	return NewWithConfig(ctx, drv, nil)
}

// NewWithConfig opens a session on drv. A nil cfg means DefaultConfig.
func NewWithConfig(ctx context.Context, drv enginewrap.Driver, cfg *Config) (*Session, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	conn, err := drv.Open(ctx)
	if err != nil {
		var e *errors.Error
		if errors.As(err, &e) && e.Kind == errors.KindEngineStart {
			return nil, err
		}
		return nil, errors.EngineStart("open engine", err)
	}
	return newSession(conn, cfg), nil
}

// Attach wraps an already open connection. The session takes ownership of
// conn and closes it on Close.
func Attach(conn enginewrap.Conn, cfg *Config) *Session {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return newSession(conn, cfg)
}

func newSession(conn enginewrap.Conn, cfg *Config) *Session {
	s := &Session{
		conn:     conn,
		cfg:      *cfg,
		log:      cfg.Logger,
		chain:    cfg.chain(),
		proxies:  resource.NewTable[Proxy](),
		released: &releaseQueue{},
		commands: make(map[string]*Command),
		failed:   make(map[string]error),
		convert:  toSet(cfg.Convertible),
		manual:   toSet(cfg.ManualConvert),
	}
	if s.log == nil {
		s.log = Logger()
	}
	if s.cfg.Getwd == nil {
		s.cfg.Getwd = DefaultConfig().Getwd
	}
	s.proxies.Subscribe(resource.ObserverFunc(func(e resource.Event) {
		s.log.Debug("proxy "+e.Type.String(), zap.String("name", e.Name))
	}))
	return s
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// Conn returns the underlying connection.
func (s *Session) Conn() enginewrap.Conn {
	return s.conn
}

// Close releases the connection. Proxies issued by the session become
// unusable; closing them afterwards is a no-op. Closing twice is a no-op.
func (s *Session) Close(ctx context.Context) error {
	if s.closed {
		return nil
	}
	s.closed = true
	for _, name := range s.proxies.Names() {
		if p, ok := s.proxies.Get(name); ok {
			p.released = true
			p.cleanup.Stop()
		}
	}
	s.proxies.Clear()
	s.proxies.Close()
	s.released.drain()
	return s.conn.Close(ctx)
}

func (s *Session) checkOpen() error {
	if s.closed {
		return errors.Closed(errors.PhaseDispatch, "session")
	}
	return nil
}

// eval runs one statement.
func (s *Session) eval(ctx context.Context, stmt string) (string, error) {
	s.log.Debug("eval", zap.String("stmt", stmt))
	out, err := s.conn.Eval(ctx, stmt)
	if err != nil {
		s.log.Debug("eval failed", zap.String("stmt", stmt), zap.Error(err))
		return out, err
	}
	return out, nil
}

// clear removes names from the workspace with a single statement.
func (s *Session) clear(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return errors.NoVarnames("clear")
	}
	_, err := s.eval(ctx, clearStmt(names))
	return err
}

// clearAfter clears names and keeps the first error.
func (s *Session) clearAfter(ctx context.Context, names []string, err *error) {
	if len(names) == 0 {
		return
	}
	if cerr := s.clear(ctx, names); cerr != nil && *err == nil {
		*err = cerr
	}
}

// raw evaluates expr into a temporary and fetches it unconverted. The
// temporary is cleared on every path.
func (s *Session) raw(ctx context.Context, expr string) (v value.Value, err error) {
	tmp := s.names.next(prefixTmp)
	if _, err := s.eval(ctx, assignStmt([]string{tmp}, expr)); err != nil {
		return nil, err
	}
	defer s.clearAfter(ctx, []string{tmp}, &err)
	return s.conn.Get(ctx, tmp)
}

func (s *Session) rawNumber(ctx context.Context, expr string) (int, error) {
	v, err := s.raw(ctx, expr)
	if err != nil {
		return 0, err
	}
	if a, ok := v.(value.Array); ok {
		if f, ok := a.Float(); ok {
			return int(f), nil
		}
	}
	return 0, errors.TypeMismatch(errors.PhaseUnmarshal, expr, "", v.Class())
}

func (s *Session) rawText(ctx context.Context, expr string) (string, error) {
	v, err := s.raw(ctx, expr)
	if err != nil {
		return "", err
	}
	switch v := v.(type) {
	case value.Char:
		return string(v), nil
	case value.Array:
		if v.IsEmpty() {
			return "", nil
		}
	}
	return "", errors.TypeMismatch(errors.PhaseUnmarshal, expr, "", v.Class())
}

// Get converts the workspace variable name like a call result, without
// removing it. Unconvertible values come back as proxies holding a copy.
func (s *Session) Get(ctx context.Context, name string) (any, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	return s.fromEngine(ctx, name, false)
}

// GetValue fetches the raw engine value bound to name.
func (s *Session) GetValue(ctx context.Context, name string) (value.Value, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	return s.conn.Get(ctx, name)
}

// Set binds v to name. Proxies are bound by reference to the value they
// stand for; everything else is marshalled.
func (s *Session) Set(ctx context.Context, name string, v any) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if p, ok := v.(*Proxy); ok {
		if err := p.usable(s); err != nil {
			return err
		}
		_, err := s.eval(ctx, name+" = "+p.name+";")
		return err
	}
	ev, err := ToEngine(v)
	if err != nil {
		return err
	}
	return s.conn.Put(ctx, name, ev)
}

// Clear removes names from the workspace.
func (s *Session) Clear(ctx context.Context, names ...string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.clear(ctx, names)
}

// Workspace lists the names bound in the workspace.
func (s *Session) Workspace(ctx context.Context) ([]string, error) {
	res, err := s.Do(ctx, "who", nil)
	if err != nil {
		return nil, err
	}
	items, ok := res.([]any)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseUnmarshal, "who", "", "cell")
	}
	names := make([]string, 0, len(items))
	for _, it := range items {
		if n, ok := it.(string); ok {
			names = append(names, n)
		}
	}
	return names, nil
}

// Collect clears the workspace entries of proxies reclaimed by the garbage
// collector. Calls do this on entry; Collect forces it.
func (s *Session) Collect(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.collect(ctx)
}

func (s *Session) collect(ctx context.Context) error {
	s.proxies.Prune()
	names := s.released.drain()
	if len(names) == 0 {
		return nil
	}
	s.log.Debug("releasing collected proxies", zap.Strings("names", names))
	return s.clear(ctx, names)
}

// Proxies lists the workspace names of live root proxies.
func (s *Session) Proxies() []string {
	return s.proxies.Names()
}

// Call resolves name and calls it with its default output count.
func (s *Session) Call(ctx context.Context, name string, args ...any) (any, error) {
	cmd, err := s.Command(ctx, name)
	if err != nil {
		return nil, err
	}
	return cmd.Call(ctx, args...)
}

// querier answers resolver queries through the session.
type querier struct {
	s *Session
}

func (q querier) Exist(ctx context.Context, name string) (resolve.Kind, error) {
	n, err := q.s.rawNumber(ctx, "exist("+quote(name)+")")
	return resolve.Kind(n), err
}

func (q querier) Help(ctx context.Context, name string) (string, error) {
	return q.s.rawText(ctx, "help("+quote(name)+")")
}

func (q querier) Nargin(ctx context.Context, name string) (int, error) {
	return q.s.rawNumber(ctx, "nargin("+quote(name)+")")
}

func (q querier) Nargout(ctx context.Context, name string) (int, error) {
	return q.s.rawNumber(ctx, "nargout("+quote(name)+")")
}
