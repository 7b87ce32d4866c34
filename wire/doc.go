// Package wire implements the binary request/response protocol spoken
// between a Session's driver and an engine living outside the process.
//
// Every message is a frame: an unsigned LEB128 payload length followed by
// the payload. A request payload starts with an op byte:
//
//	hello  version:u32
//	eval   stmt:string
//	put    name:string value
//	get    name:string
//	close
//
// A response payload starts with a status byte. Status 0 carries the
// statement output and an optional value; status 1 carries an error code
// and the engine's message verbatim.
//
// Strings are a LEB128 byte length followed by UTF-8 bytes. Values are
// tagged: tag 1 is a double array (dimension count, dimensions, complex
// flag, little-endian float64 real parts, then imaginary parts when the
// flag is set); tag 2 is a char row.
//
// Client turns any RoundTripper into an enginewrap.Conn, and Serve drives
// an enginewrap.Conn from a stream, so the same codec is used by the
// process driver (stdio pipes) and the wasm driver (linear memory).
package wire
