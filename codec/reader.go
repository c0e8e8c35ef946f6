package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedEOF is returned when the input ends inside a value.
	ErrUnexpectedEOF = errors.New("codec: unexpected end of input")

	// ErrLengthOverflow is returned when a length prefix exceeds the bytes
	// actually remaining, or a caller-supplied bound.
	ErrLengthOverflow = errors.New("codec: length prefix out of range")

	// ErrTrailingBytes is returned by End when input remains after the
	// outermost value has been decoded.
	ErrTrailingBytes = errors.New("codec: trailing bytes after value")
)

// Reader consumes canonically encoded values from a byte slice. Decoded byte
// strings are copied out of the input, so the caller may reuse its buffer.
type Reader struct {
	rest []byte
}

// NewReader returns a Reader over b. The Reader does not take ownership of b
// but holds a reference until decoding finishes.
func NewReader(b []byte) *Reader {
	return &Reader{rest: b}
}

// Len reports the number of unconsumed bytes.
func (r *Reader) Len() int { return len(r.rest) }

// ReadUint8 consumes a single byte.
func (r *Reader) ReadUint8() (uint8, error) {
	if len(r.rest) < 1 {
		return 0, ErrUnexpectedEOF
	}
	v := r.rest[0]
	r.rest = r.rest[1:]
	return v, nil
}

// ReadUint64 consumes a little-endian uint64.
func (r *Reader) ReadUint64() (uint64, error) {
	if len(r.rest) < 8 {
		return 0, ErrUnexpectedEOF
	}
	v := binary.LittleEndian.Uint64(r.rest)
	r.rest = r.rest[8:]
	return v, nil
}

// ReadBytes32 consumes a fixed 32-byte array.
func (r *Reader) ReadBytes32() ([32]byte, error) {
	var out [32]byte
	if len(r.rest) < 32 {
		return out, ErrUnexpectedEOF
	}
	copy(out[:], r.rest)
	r.rest = r.rest[32:]
	return out, nil
}

// ReadByteString consumes a length-prefixed byte string of at most max bytes.
// The result is a copy.
func (r *Reader) ReadByteString(max uint64) ([]byte, error) {
	n, err := r.ReadUint64()
	if err != nil {
		return nil, err
	}
	if n > max {
		return nil, fmt.Errorf("%w: %d > %d", ErrLengthOverflow, n, max)
	}
	if uint64(len(r.rest)) < n {
		return nil, ErrUnexpectedEOF
	}
	out := make([]byte, n)
	copy(out, r.rest)
	r.rest = r.rest[n:]
	return out, nil
}

// ReadCount consumes a length prefix for a sequence or mapping and checks it
// against the minimum encoded size of one element, so a hostile prefix cannot
// force a huge allocation.
func (r *Reader) ReadCount(elemMinSize int) (int, error) {
	n, err := r.ReadUint64()
	if err != nil {
		return 0, err
	}
	if elemMinSize > 0 && n > uint64(len(r.rest))/uint64(elemMinSize) {
		return 0, fmt.Errorf("%w: %d elements in %d bytes", ErrLengthOverflow, n, len(r.rest))
	}
	return int(n), nil
}

// End verifies the input has been fully consumed.
func (r *Reader) End() error {
	if len(r.rest) != 0 {
		return fmt.Errorf("%w: %d left", ErrTrailingBytes, len(r.rest))
	}
	return nil
}
