package wire

import (
	"bufio"
	"context"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/enginewrap"
	"github.com/wippyai/enginewrap/errors"
	"github.com/wippyai/enginewrap/value"
)

// RoundTripper carries one encoded request to the engine and returns the
// encoded response.
type RoundTripper interface {
	RoundTrip(ctx context.Context, req []byte) ([]byte, error)
	Close() error
}

// Stream is a RoundTripper over a byte stream, one frame per message.
type Stream struct {
	r      *bufio.Reader
	w      io.Writer
	closer io.Closer
	mu     sync.Mutex
}

// NewStream frames requests onto w and reads responses from r. closer, if
// not nil, is closed by Close.
func NewStream(r io.Reader, w io.Writer, closer io.Closer) *Stream {
	return &Stream{r: bufio.NewReader(r), w: w, closer: closer}
}

// RoundTrip implements RoundTripper. Requests are serialized; the context
// is not consulted once the request is written.
func (s *Stream) RoundTrip(ctx context.Context, req []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := WriteFrame(s.w, req); err != nil {
		return nil, err
	}
	return ReadFrame(s.r)
}

// Close implements RoundTripper.
func (s *Stream) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Client implements enginewrap.Conn over a RoundTripper.
type Client struct {
	rt     RoundTripper
	mu     sync.Mutex
	closed bool
}

var _ enginewrap.Conn = (*Client)(nil)

// NewClient wraps rt.
func NewClient(rt RoundTripper) *Client {
	return &Client{rt: rt}
}

// Hello performs the version handshake.
func (c *Client) Hello(ctx context.Context) error {
	_, err := c.call(ctx, &Request{Op: OpHello, Version: Version})
	return err
}

// Eval implements enginewrap.Conn.
func (c *Client) Eval(ctx context.Context, stmt string) (string, error) {
	if len(stmt) >= enginewrap.MaxStatementSize {
		return "", errors.BufferOverflow(len(stmt), enginewrap.MaxStatementSize)
	}
	resp, err := c.call(ctx, &Request{Op: OpEval, Stmt: stmt})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// Put implements enginewrap.Conn.
func (c *Client) Put(ctx context.Context, name string, v value.Value) error {
	_, err := c.call(ctx, &Request{Op: OpPut, Name: name, Value: v})
	return err
}

// Get implements enginewrap.Conn.
func (c *Client) Get(ctx context.Context, name string) (value.Value, error) {
	resp, err := c.call(ctx, &Request{Op: OpGet, Name: name})
	if err != nil {
		return nil, err
	}
	if resp.Value == nil {
		return nil, errors.InvalidData(errors.PhaseWire, "get response carries no value")
	}
	return resp.Value, nil
}

// Close sends a close request and releases the transport. It is idempotent.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	_, callErr := c.call(ctx, &Request{Op: OpClose})

	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	if err := c.rt.Close(); err != nil {
		return errors.Transport("close transport", err)
	}
	if callErr != nil {
		Logger().Debug("close request failed", zap.Error(callErr))
	}
	return nil
}

func (c *Client) call(ctx context.Context, req *Request) (*Response, error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return nil, errors.Closed(errors.PhaseTransport, "connection")
	}

	payload, err := EncodeRequest(req)
	if err != nil {
		return nil, err
	}
	raw, err := c.rt.RoundTrip(ctx, payload)
	if err != nil {
		return nil, errors.Transport(req.Op.String()+" round trip", err)
	}
	resp, err := DecodeResponse(raw)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp, nil
}
