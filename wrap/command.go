package wrap

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/enginewrap/errors"
	"github.com/wippyai/enginewrap/resolve"
)

// Command is an engine callable bound to a session. It is resolved once
// and cached by the session.
type Command struct {
	s    *Session
	desc *resolve.Descriptor
}

// Command resolves attr to an engine callable. One trailing underscore is
// stripped, so names that clash with host keywords can still be reached
// ("print_" calls print). Names that do not exist fail with a
// no-such-object error; the failure is cached like a success, until Forget.
func (s *Session) Command(ctx context.Context, attr string) (*Command, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(attr, "_")
	if cmd, ok := s.commands[name]; ok {
		return cmd, nil
	}
	if err, ok := s.failed[name]; ok {
		return nil, err
	}

	if !isIdentifier(name) {
		err := errors.NoSuchObject(name)
		s.failed[name] = err
		return nil, err
	}
	if err := s.collect(ctx); err != nil {
		return nil, err
	}

	d, err := s.chain.Resolve(ctx, querier{s}, name)
	if err != nil {
		if errors.Is(err, errors.ErrNoSuchObject) {
			s.failed[name] = err
		}
		return nil, err
	}
	s.log.Debug("command resolved",
		zap.String("name", name),
		zap.String("source", d.Source),
		zap.Int("nout", d.NOut))

	cmd := &Command{s: s, desc: d}
	s.commands[name] = cmd
	return cmd, nil
}

// Forget drops the cached resolution of name, successful or not. Use it
// after defining or removing engine functions.
func (s *Session) Forget(name string) {
	name = strings.TrimSuffix(name, "_")
	delete(s.commands, name)
	delete(s.failed, name)
}

// Name returns the engine identifier.
func (c *Command) Name() string { return c.desc.Name }

// Descriptor returns the resolved signature.
func (c *Command) Descriptor() *resolve.Descriptor { return c.desc }

// Doc returns the engine's help text.
func (c *Command) Doc() string { return c.desc.Help }

// Call calls the command requesting its default number of outputs: none
// for procedures, one otherwise.
func (c *Command) Call(ctx context.Context, args ...any) (any, error) {
	return c.CallWith(ctx, args)
}

// CallWith is Call with per-call options. Options override the resolved
// defaults without re-resolving.
func (c *Command) CallWith(ctx context.Context, args []any, opts ...CallOption) (any, error) {
	all := make([]CallOption, 0, len(opts)+1)
	all = append(all, NOut(c.desc.DefaultNOut()))
	all = append(all, opts...)
	return c.s.Do(ctx, c.desc.Name, args, all...)
}
