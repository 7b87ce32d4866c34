// Package process runs an engine in a child process. The child reads
// framed wire requests on its stdin and answers on its stdout; everything
// it writes to stderr is passed through to Driver.Stderr.
package process

import (
	"context"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/enginewrap"
	"github.com/wippyai/enginewrap/errors"
	"github.com/wippyai/enginewrap/wire"
)

// DefaultWaitTimeout bounds how long Close waits for the child to exit
// before killing it.
const DefaultWaitTimeout = 5 * time.Second

// Driver starts an engine executable.
type Driver struct {
	Command string
	Args    []string
	Env     []string // appended to the parent's environment
	Dir     string
	Stderr  io.Writer // nil discards

	// WaitTimeout overrides DefaultWaitTimeout.
	WaitTimeout time.Duration
}

var _ enginewrap.Driver = Driver{}

// Open starts the child and performs the protocol handshake. ctx bounds
// the handshake only; the child lives until the connection is closed.
func (d Driver) Open(ctx context.Context) (enginewrap.Conn, error) {
	if d.Command == "" {
		return nil, errors.EngineStart("no engine command configured", nil)
	}
	path, err := exec.LookPath(d.Command)
	if err != nil {
		return nil, errors.EngineStart("engine command "+d.Command+" not found", err)
	}

	cmd := exec.Command(path, d.Args...)
	cmd.Dir = d.Dir
	cmd.Env = append(os.Environ(), d.Env...)
	cmd.Stderr = d.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.EngineStart("stdin pipe", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.EngineStart("stdout pipe", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.EngineStart("start "+path, err)
	}
	Logger().Debug("engine started", zap.String("command", path), zap.Int("pid", cmd.Process.Pid))

	c := &Conn{
		cmd:     cmd,
		timeout: d.WaitTimeout,
		exited:  make(chan struct{}),
	}
	if c.timeout <= 0 {
		c.timeout = DefaultWaitTimeout
	}
	go c.wait()

	c.Client = wire.NewClient(wire.NewStream(stdout, stdin, stdin))
	hello := make(chan error, 1)
	go func() { hello <- c.Hello(ctx) }()
	select {
	case err = <-hello:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		c.kill()
		return nil, errors.EngineStart("handshake with "+path, err)
	}
	return c, nil
}

// Conn is a connection to an engine child process.
type Conn struct {
	*wire.Client

	cmd     *exec.Cmd
	timeout time.Duration
	exited  chan struct{}
	waitErr error
	once    sync.Once
	err     error
}

func (c *Conn) wait() {
	c.waitErr = c.cmd.Wait()
	close(c.exited)
	Logger().Debug("engine exited", zap.Int("pid", c.cmd.Process.Pid), zap.Error(c.waitErr))
}

// Pid returns the child's process id.
func (c *Conn) Pid() int {
	return c.cmd.Process.Pid
}

// Close asks the engine to close, closes its stdin and waits for it to
// exit. A child that does not exit in time, or before ctx is done, is
// killed. Closing twice is a no-op.
func (c *Conn) Close(ctx context.Context) error {
	c.once.Do(func() {
		if err := c.Client.Close(ctx); err != nil {
			Logger().Debug("close request failed", zap.Error(err))
		}

		timer := time.NewTimer(c.timeout)
		defer timer.Stop()
		select {
		case <-c.exited:
		case <-timer.C:
			c.err = errors.Transport("engine did not exit, killed", nil)
			c.kill()
		case <-ctx.Done():
			c.err = errors.Transport("engine close interrupted, killed", ctx.Err())
			c.kill()
		}
	})
	return c.err
}

func (c *Conn) kill() {
	_ = c.cmd.Process.Kill()
	<-c.exited
}

// Dial connects to an engine already reachable through rw, such as a
// socket, and performs the handshake. Closing the connection closes rw.
func Dial(ctx context.Context, rw io.ReadWriteCloser) (*wire.Client, error) {
	client := wire.NewClient(wire.NewStream(rw, rw, rw))
	if err := client.Hello(ctx); err != nil {
		rw.Close()
		return nil, errors.EngineStart("handshake", err)
	}
	return client, nil
}
