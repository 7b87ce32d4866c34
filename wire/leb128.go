package wire

import (
	"bytes"
	"io"

	"github.com/wippyai/enginewrap/errors"
)

// maxU32Bytes is the longest LEB128 encoding of a uint32.
const maxU32Bytes = 5

var errOverflow = errors.New(errors.PhaseWire, errors.KindInvalidData).
	Detail("leb128 value exceeds 32 bits").
	Build()

// readU32 reads an unsigned LEB128 value that must fit in 32 bits. Lengths,
// dimensions and the protocol version are all encoded this way.
func readU32(r io.ByteReader) (uint32, error) {
	var v uint32
	for i := 0; i < maxU32Bytes; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if i == maxU32Bytes-1 && b&0xf0 != 0 {
			return 0, errOverflow
		}
		v |= uint32(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, errOverflow
}

func writeU32(w *bytes.Buffer, v uint32) {
	for v >= 0x80 {
		w.WriteByte(byte(v) | 0x80)
		v >>= 7
	}
	w.WriteByte(byte(v))
}
