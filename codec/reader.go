package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncated means the buffer ended before a declared field did.
	ErrTruncated = errors.New("codec: truncated field")
	// ErrBufferTooSmall means a declared string length exceeds the output
	// capacity the caller is willing to accept.
	ErrBufferTooSmall = errors.New("codec: declared length exceeds output capacity")
)

// Reader consumes wire-encoded fields from a fixed buffer. Every read is
// bounds-checked against the remaining bytes, so a short or hostile buffer
// yields a typed error instead of an out-of-range access. The cursor only
// advances on a successful read.
type Reader struct {
	buf []byte
	off int
}

// NewReader returns a Reader positioned at the start of b. The Reader does
// not copy b; the caller must not mutate it while reading.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

// Consumed returns the number of bytes read so far.
func (r *Reader) Consumed() int {
	return r.off
}

func (r *Reader) need(n int) error {
	if r.Remaining() < n {
		return fmt.Errorf("%w: need %d bytes, %d remain", ErrTruncated, n, r.Remaining())
	}
	return nil
}

// U16 reads a big-endian 16-bit value.
func (r *Reader) U16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := uint16(r.buf[r.off])<<8 | uint16(r.buf[r.off+1])
	r.off += 2
	return v, nil
}

// U32 reads a big-endian 32-bit value.
func (r *Reader) U32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	b := r.buf[r.off:]
	v := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	r.off += 4
	return v, nil
}

// I64 reads a signed 64-bit value encoded as two big-endian 32-bit halves,
// high word first.
func (r *Reader) I64() (int64, error) {
	hi, err := r.U32()
	if err != nil {
		return 0, err
	}
	lo, err := r.U32()
	if err != nil {
		return 0, err
	}
	return int64(uint64(hi)<<32 | uint64(lo)), nil
}

// String reads a u16-length-prefixed string. maxOut caps the accepted
// length: a declared length above it fails with ErrBufferTooSmall before
// any bytes are consumed past the prefix.
func (r *Reader) String(maxOut int) (string, error) {
	n, err := r.U16()
	if err != nil {
		return "", err
	}
	if int(n) > maxOut {
		r.off -= 2 // undo prefix so the caller sees a consistent cursor
		return "", fmt.Errorf("%w: declared %d, capacity %d", ErrBufferTooSmall, n, maxOut)
	}
	if err := r.need(int(n)); err != nil {
		r.off -= 2
		return "", err
	}
	s := string(r.buf[r.off : r.off+int(n)])
	r.off += int(n)
	return s, nil
}
