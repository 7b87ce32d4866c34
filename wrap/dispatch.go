package wrap

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/enginewrap/errors"
	"github.com/wippyai/enginewrap/value"
)

// Do builds and evaluates one statement from cmd and args.
//
// Without args cmd is evaluated as written, so literal statements such as
// "get(gca, 'Children')" are accepted. With args, proxies are passed by
// their workspace name and everything else is marshalled into fresh
// temporaries, giving "cmd(ARG1_..., PROXY_VAL2_...)".
//
// With NOut(0) the statement runs as a procedure and Do returns nil. By
// default one output is requested and returned bare; NOut(k) returns a
// []any of k converted outputs. Every temporary Do introduces is cleared
// before it returns, except those now owned by returned proxies.
//
// The number of arguments is not checked against the command; the engine
// rejects bad calls itself.
func (s *Session) Do(ctx context.Context, cmd string, args []any, opts ...CallOption) (res any, err error) {
	o := callOptions{nout: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.cast != nil && o.nout == 0 {
		return nil, errors.CastOnVoidCall(cmd)
	}
	if o.nout < 0 {
		return nil, errors.InvalidInput(errors.PhaseDispatch, "negative output count")
	}
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if err := s.collect(ctx); err != nil {
		return nil, err
	}
	if err := s.syncDir(ctx); err != nil {
		return nil, err
	}

	// Marshal everything before touching the workspace so that an
	// unsupported argument leaves nothing behind.
	refs := make([]string, len(args))
	vals := make([]value.Value, len(args))
	for i, arg := range args {
		if p, ok := arg.(*Proxy); ok {
			if err := p.usable(s); err != nil {
				return nil, err
			}
			refs[i] = p.name
			continue
		}
		v, err := toEngine(i, arg)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}

	var temps []string
	if s.cfg.ClearCallArgs {
		defer func() { s.clearAfter(ctx, temps, &err) }()
	}
	for i, v := range vals {
		if v == nil {
			continue
		}
		refs[i] = s.names.next(prefixArg)
		temps = append(temps, refs[i])
		if err := s.conn.Put(ctx, refs[i], v); err != nil {
			return nil, err
		}
	}

	call := callExpr(cmd, refs)
	if o.nout == 0 {
		out, err := s.eval(ctx, call)
		if err != nil {
			return nil, err
		}
		if o.output != nil {
			o.output(out)
		}
		return nil, nil
	}

	outs := s.names.batch(prefixRes, o.nout)
	out, err := s.eval(ctx, assignStmt(outs, call))
	if err != nil {
		return nil, err
	}
	if o.output != nil {
		o.output(out)
	}

	vs, err := s.getValues(ctx, outs)
	if err != nil {
		return nil, err
	}
	if o.nout == 1 {
		res = vs[0]
	} else {
		res = vs
	}
	if o.cast != nil {
		return o.cast(res)
	}
	return res, nil
}

func (s *Session) syncDir(ctx context.Context) error {
	if !s.cfg.AutosyncDirs {
		return nil
	}
	dir, err := s.cfg.Getwd()
	if err != nil {
		return errors.Wrap(errors.PhaseDispatch, errors.KindInvalidInput, err, "host working directory")
	}
	_, err = s.eval(ctx, "cd("+quote(dir)+");")
	return err
}

// getValues converts every name and then clears all of them with one
// statement, whatever the outcome of the conversions.
func (s *Session) getValues(ctx context.Context, names []string) (vs []any, err error) {
	if len(names) == 0 {
		return nil, errors.NoVarnames("getValues")
	}
	defer s.clearAfter(ctx, names, &err)

	vs = make([]any, len(names))
	for i, name := range names {
		if vs[i], err = s.fromEngine(ctx, name, false); err != nil {
			return nil, err
		}
	}
	return vs, nil
}

// classify returns the engine class of expr.
func (s *Session) classify(ctx context.Context, expr string) (string, error) {
	return s.rawText(ctx, "class("+expr+")")
}

// fromEngine converts the workspace variable name. Convertible classes
// are fetched, one-dimensional aggregates are converted element by
// element, and everything else becomes a proxy holding its own copy. With
// remove, name is cleared afterwards on every path.
func (s *Session) fromEngine(ctx context.Context, name string, remove bool) (res any, err error) {
	if remove {
		defer s.clearAfter(ctx, []string{name}, &err)
	}

	class, err := s.classify(ctx, name)
	if err != nil {
		return nil, err
	}

	switch {
	case s.convert[class]:
		v, err := s.conn.Get(ctx, name)
		if err != nil {
			return nil, err
		}
		return s.fromValue(name, v)
	case s.manual[class]:
		elems, err := s.cellToHost(ctx, name)
		if err == nil {
			return elems, nil
		}
		if !errors.Is(err, errors.ErrConversion) {
			return nil, err
		}
		s.log.Debug("aggregate kept as proxy", zap.String("name", name), zap.Error(err))
	}
	return s.makeProxy(ctx, name)
}

// fromValue converts a fetched value: char arrays become strings, double
// arrays are flattened and cast according to the configuration.
func (s *Session) fromValue(name string, v value.Value) (any, error) {
	switch v := v.(type) {
	case value.Char:
		return string(v), nil
	case value.Array:
		a := s.flatten(v)
		if s.cfg.ArrayCast != nil {
			return s.cfg.ArrayCast(a)
		}
		return a, nil
	default:
		return nil, errors.TypeMismatch(errors.PhaseUnmarshal, name, "", v.Class())
	}
}

// flatten returns 1xN (and, if enabled, Nx1) arrays as one-dimensional
// arrays. Scalars keep their 1x1 shape.
func (s *Session) flatten(a value.Array) value.Array {
	d := a.Dims()
	if len(d) != 2 || (d[0] == 1 && d[1] == 1) {
		return a
	}
	switch {
	case s.cfg.FlattenRowVectors && d[0] == 1:
		if flat, err := a.Reshape(d[1]); err == nil {
			return flat
		}
	case s.cfg.FlattenColVectors && d[1] == 1:
		if flat, err := a.Reshape(d[0]); err == nil {
			return flat
		}
	}
	return a
}
