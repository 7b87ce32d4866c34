package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/wippyai/enginewrap/errors"
	"github.com/wippyai/enginewrap/value"
)

// Version is the protocol version exchanged in the hello request.
const Version = 1

// Op identifies a request.
type Op byte

const (
	OpHello Op = iota + 1
	OpEval
	OpPut
	OpGet
	OpClose
)

func (op Op) String() string {
	switch op {
	case OpHello:
		return "hello"
	case OpEval:
		return "eval"
	case OpPut:
		return "put"
	case OpGet:
		return "get"
	case OpClose:
		return "close"
	default:
		return fmt.Sprintf("op(%d)", byte(op))
	}
}

// Status of a response.
type Status byte

const (
	StatusOK Status = iota
	StatusError
)

// ErrorCode classifies error responses. It maps onto errors.Kind.
type ErrorCode byte

const (
	CodeExecution ErrorCode = iota + 1
	CodeTypeMismatch
	CodeInvalid
	CodeStart
)

const (
	tagDouble byte = 1
	tagChar   byte = 2

	maxDims = 32
	// maxElems bounds the element count of a decoded array.
	maxElems = 1 << 31
)

// Request is one call from the host to the engine.
type Request struct {
	Value   value.Value
	Stmt    string
	Name    string
	Version uint32
	Op      Op
}

// Response is the engine's answer to a Request.
type Response struct {
	Value   value.Value
	Text    string
	Message string
	Status  Status
	Code    ErrorCode
}

// Err converts an error response into an *errors.Error. It returns nil for
// successful responses.
func (r *Response) Err() error {
	if r.Status == StatusOK {
		return nil
	}
	switch r.Code {
	case CodeTypeMismatch:
		return errors.New(errors.PhaseEngine, errors.KindTypeMismatch).Detail("%s", r.Message).Build()
	case CodeInvalid:
		return errors.InvalidInput(errors.PhaseEngine, r.Message)
	case CodeStart:
		return errors.EngineStart(r.Message, nil)
	default:
		return errors.EngineExecution(r.Message)
	}
}

// ErrorResponse builds the response for err, keeping engine messages verbatim.
func ErrorResponse(err error) *Response {
	resp := &Response{Status: StatusError, Code: CodeExecution, Message: err.Error()}
	var e *errors.Error
	if errors.As(err, &e) {
		resp.Message = e.Message()
		if resp.Message == "" {
			resp.Message = e.Error()
		}
		switch e.Kind {
		case errors.KindTypeMismatch:
			resp.Code = CodeTypeMismatch
		case errors.KindInvalidInput, errors.KindInvalidData:
			resp.Code = CodeInvalid
		case errors.KindEngineStart:
			resp.Code = CodeStart
		}
	}
	return resp
}

// EncodeRequest serializes a request payload.
func EncodeRequest(req *Request) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(byte(req.Op))
	switch req.Op {
	case OpHello:
		writeU32(&buf, req.Version)
	case OpEval:
		writeString(&buf, req.Stmt)
	case OpPut:
		writeString(&buf, req.Name)
		if err := writeValue(&buf, req.Value); err != nil {
			return nil, err
		}
	case OpGet:
		writeString(&buf, req.Name)
	case OpClose:
	default:
		return nil, errors.InvalidInput(errors.PhaseWire, "unknown op "+req.Op.String())
	}
	return buf.Bytes(), nil
}

// DecodeRequest parses a request payload.
func DecodeRequest(data []byte) (*Request, error) {
	r := bytes.NewReader(data)
	op, err := r.ReadByte()
	if err != nil {
		return nil, malformed("request op", err)
	}
	req := &Request{Op: Op(op)}
	switch req.Op {
	case OpHello:
		req.Version, err = readU32(r)
	case OpEval:
		req.Stmt, err = readString(r)
	case OpPut:
		if req.Name, err = readString(r); err == nil {
			req.Value, err = readValue(r)
		}
	case OpGet:
		req.Name, err = readString(r)
	case OpClose:
	default:
		return nil, errors.InvalidData(errors.PhaseWire, "unknown op "+req.Op.String())
	}
	if err != nil {
		return nil, malformed(req.Op.String()+" request", err)
	}
	return req, trailing(r)
}

// EncodeResponse serializes a response payload.
func EncodeResponse(resp *Response) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(byte(resp.Status))
	if resp.Status != StatusOK {
		buf.WriteByte(byte(resp.Code))
		writeString(&buf, resp.Message)
		return buf.Bytes(), nil
	}
	writeString(&buf, resp.Text)
	if resp.Value == nil {
		buf.WriteByte(0)
		return buf.Bytes(), nil
	}
	buf.WriteByte(1)
	if err := writeValue(&buf, resp.Value); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeResponse parses a response payload.
func DecodeResponse(data []byte) (*Response, error) {
	r := bytes.NewReader(data)
	status, err := r.ReadByte()
	if err != nil {
		return nil, malformed("response status", err)
	}
	resp := &Response{Status: Status(status)}
	switch resp.Status {
	case StatusOK:
		if resp.Text, err = readString(r); err != nil {
			return nil, malformed("response text", err)
		}
		has, err := r.ReadByte()
		if err != nil {
			return nil, malformed("response value flag", err)
		}
		if has == 1 {
			if resp.Value, err = readValue(r); err != nil {
				return nil, malformed("response value", err)
			}
		}
	case StatusError:
		code, err := r.ReadByte()
		if err != nil {
			return nil, malformed("error code", err)
		}
		resp.Code = ErrorCode(code)
		if resp.Message, err = readString(r); err != nil {
			return nil, malformed("error message", err)
		}
	default:
		return nil, errors.InvalidData(errors.PhaseWire, fmt.Sprintf("unknown status %d", status))
	}
	return resp, trailing(r)
}

func writeString(buf *bytes.Buffer, s string) {
	writeU32(buf, uint32(len(s)))
	buf.WriteString(s)
}

func readString(r *bytes.Reader) (string, error) {
	n, err := readU32(r)
	if err != nil {
		return "", err
	}
	if int64(n) > int64(r.Len()) {
		return "", io.ErrUnexpectedEOF
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

func writeValue(buf *bytes.Buffer, v value.Value) error {
	switch v := v.(type) {
	case value.Char:
		buf.WriteByte(tagChar)
		writeString(buf, string(v))
	case value.Array:
		buf.WriteByte(tagDouble)
		dims := v.Dims()
		writeU32(buf, uint32(len(dims)))
		for _, d := range dims {
			writeU32(buf, uint32(d))
		}
		if v.IsComplex() {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
		writeFloats(buf, v.Real())
		if v.IsComplex() {
			writeFloats(buf, v.Imag())
		}
	default:
		return errors.TypeMismatch(errors.PhaseWire, "", fmt.Sprintf("%T", v), "")
	}
	return nil
}

func readValue(r *bytes.Reader) (value.Value, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagChar:
		s, err := readString(r)
		if err != nil {
			return nil, err
		}
		return value.Char(s), nil
	case tagDouble:
		ndims, err := readU32(r)
		if err != nil {
			return nil, err
		}
		if ndims == 0 || ndims > maxDims {
			return nil, fmt.Errorf("bad dimension count %d", ndims)
		}
		dims := make([]int, ndims)
		for i := range dims {
			d, err := readU32(r)
			if err != nil {
				return nil, err
			}
			dims[i] = int(d)
		}
		n, err := elemCount(dims)
		if err != nil {
			return nil, err
		}
		if n*8 > int64(r.Len()) {
			return nil, io.ErrUnexpectedEOF
		}
		cplx, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		re, err := readFloats(r, int(n))
		if err != nil {
			return nil, err
		}
		var im []float64
		if cplx == 1 {
			if im, err = readFloats(r, int(n)); err != nil {
				return nil, err
			}
		}
		return value.NewArray(dims, re, im)
	default:
		return nil, fmt.Errorf("unknown value tag %d", tag)
	}
}

func writeFloats(buf *bytes.Buffer, xs []float64) {
	var b [8]byte
	for _, x := range xs {
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(x))
		buf.Write(b[:])
	}
}

func readFloats(r *bytes.Reader, n int) ([]float64, error) {
	if int64(n)*8 > int64(r.Len()) {
		return nil, io.ErrUnexpectedEOF
	}
	out := make([]float64, n)
	var b [8]byte
	for i := range out {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, err
		}
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[:]))
	}
	return out, nil
}

func trailing(r *bytes.Reader) error {
	if r.Len() != 0 {
		return errors.InvalidData(errors.PhaseWire, fmt.Sprintf("%d trailing bytes", r.Len()))
	}
	return nil
}

func malformed(what string, cause error) error {
	return errors.Wrap(errors.PhaseWire, errors.KindInvalidData, cause, "malformed "+what)
}

// elemCount multiplies dims. Any zero dimension makes the array empty
// regardless of the others.
func elemCount(dims []int) (int64, error) {
	if slices.Contains(dims, 0) {
		return 0, nil
	}
	n := int64(1)
	for _, d := range dims {
		n *= int64(d)
		if n > maxElems {
			return 0, fmt.Errorf("array of more than %d elements", int64(maxElems))
		}
	}
	return n, nil
}
