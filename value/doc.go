// Package value defines the host-side representation of engine values that
// can cross the transport: double arrays (real or complex, column-major) and
// one-row char arrays.
//
// The engine has no scalars and no one-dimensional arrays; everything is at
// least two-dimensional. Scalar(3) is therefore a 1x1 array. One-dimensional
// arrays exist only on the host side, after a session flattens 1xN or Nx1
// results.
package value
