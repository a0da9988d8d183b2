// Package codec implements the primitive field encodings used in every
// payload: big-endian u16/u32/i64 and u16-length-prefixed strings.
//
// The codec is pure and stateless: a Writer appends fields to a growing
// buffer, a Reader consumes them from a fixed one. Neither performs I/O.
// Operation payloads are just ordered sequences of these primitives; the
// opcode in the header decides which sequence applies.
package codec

import "encoding/binary"

// MaxStringLen is the largest byte count representable by the u16 length
// prefix. Writer.String silently truncates longer inputs to this bound —
// lossy on purpose, because the reference peer clamps rather than rejects
// and both sides must agree on the bytes that end up on the wire.
const MaxStringLen = 0xFFFF

// Writer appends wire-encoded fields to an in-memory buffer.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with the given initial capacity.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

// U16 appends a big-endian 16-bit value.
func (w *Writer) U16(v uint16) {
	w.buf = binary.BigEndian.AppendUint16(w.buf, v)
}

// U32 appends a big-endian 32-bit value.
func (w *Writer) U32(v uint32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, v)
}

// I64 appends a signed 64-bit value as two big-endian 32-bit halves, high
// word first. The result is identical to one big-endian 64-bit write; the
// split mirrors how the peers document the format.
func (w *Writer) I64(v int64) {
	u := uint64(v)
	w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(u>>32))
	w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(u))
}

// String appends a u16 length prefix followed by the raw bytes of s.
// Strings longer than MaxStringLen bytes are truncated to fit the prefix.
func (w *Writer) String(s string) {
	b := []byte(s)
	if len(b) > MaxStringLen {
		b = b[:MaxStringLen]
	}
	w.U16(uint16(len(b)))
	w.buf = append(w.buf, b...)
}

// Bytes returns the accumulated buffer. The Writer retains ownership; the
// caller must not keep the slice across further writes.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}
