package wire

import (
	"bufio"
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/wippyai/enginewrap"
	"github.com/wippyai/enginewrap/errors"
)

// Handle executes one encoded request against conn and returns the encoded
// response. done reports a close request.
func Handle(ctx context.Context, conn enginewrap.Conn, payload []byte) (out []byte, done bool) {
	resp, done := handle(ctx, conn, payload)
	out, err := EncodeResponse(resp)
	if err != nil {
		out, _ = EncodeResponse(ErrorResponse(err))
	}
	return out, done
}

func handle(ctx context.Context, conn enginewrap.Conn, payload []byte) (*Response, bool) {
	req, err := DecodeRequest(payload)
	if err != nil {
		return ErrorResponse(err), false
	}
	Logger().Debug("request", zap.Stringer("op", req.Op), zap.String("name", req.Name))

	switch req.Op {
	case OpHello:
		if req.Version != Version {
			return ErrorResponse(errors.EngineStart("protocol version mismatch", nil)), false
		}
		return &Response{}, false
	case OpEval:
		text, err := conn.Eval(ctx, req.Stmt)
		if err != nil {
			return ErrorResponse(err), false
		}
		return &Response{Text: text}, false
	case OpPut:
		if err := conn.Put(ctx, req.Name, req.Value); err != nil {
			return ErrorResponse(err), false
		}
		return &Response{}, false
	case OpGet:
		v, err := conn.Get(ctx, req.Name)
		if err != nil {
			return ErrorResponse(err), false
		}
		return &Response{Value: v}, false
	case OpClose:
		if err := conn.Close(ctx); err != nil {
			return ErrorResponse(err), true
		}
		return &Response{}, true
	}
	return ErrorResponse(errors.InvalidData(errors.PhaseWire, "unknown op "+req.Op.String())), false
}

// Serve answers framed requests from r on w until a close request, EOF or
// context cancellation. Cancellation is only observed between requests.
func Serve(ctx context.Context, conn enginewrap.Conn, r io.Reader, w io.Writer) error {
	br := bufio.NewReader(r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		payload, err := ReadFrame(br)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return errors.Transport("read request", err)
		}
		out, done := Handle(ctx, conn, payload)
		if err := WriteFrame(w, out); err != nil {
			return errors.Transport("write response", err)
		}
		if done {
			return nil
		}
	}
}
