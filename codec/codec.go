// Package codec implements the deterministic binary encoding used on the
// wire, in batch files and across the host/guest boundary.
//
// The rules are fixed: integers are little-endian with a fixed width,
// fixed-size byte arrays are written verbatim, variable-length byte strings
// carry a little-endian uint64 length prefix, sequences are a length prefix
// followed by the element encodings, and mappings are a length prefix
// followed by key/value pairs sorted by the byte order of the key. Tagged
// unions are a single-byte discriminant followed by the variant payload.
// Any deviation from this schema invalidates outstanding proofs and every
// on-wire session, so treat it as ABI.
package codec

import "encoding/binary"

// Writer appends canonically encoded values to an in-memory buffer.
// Encoding is total: no Writer method can fail.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with a small pre-allocated buffer.
func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 256)}
}

// Bytes returns the encoded buffer. The slice aliases the Writer's storage
// and is only valid until the next write.
func (w *Writer) Bytes() []byte { return w.buf }

// WriteUint8 appends a single byte.
func (w *Writer) WriteUint8(v uint8) {
	w.buf = append(w.buf, v)
}

// WriteUint64 appends v in little-endian order.
func (w *Writer) WriteUint64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

// WriteBytes32 appends a fixed 32-byte array verbatim.
func (w *Writer) WriteBytes32(v [32]byte) {
	w.buf = append(w.buf, v[:]...)
}

// WriteByteString appends a uint64 length prefix followed by b.
func (w *Writer) WriteByteString(b []byte) {
	w.WriteUint64(uint64(len(b)))
	w.buf = append(w.buf, b...)
}
