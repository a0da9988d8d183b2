// Package protocol defines the fixed binary datagram format shared with the
// facility booking server.
//
// Every message — request, response, or pushed callback — starts with the same
// 16-byte header, followed by an opcode-specific payload:
//
//	0        2        4            8           12           16
//	┌────────┬────────┬────────────┬────────────┬────────────┬─────────────┐
//	│version │ opCode │ requestId  │   flags    │ payloadLen │ payload ... │
//	│ uint16 │ uint16 │   uint32   │   uint32   │   uint32   │             │
//	└────────┴────────┴────────────┴────────────┴────────────┴─────────────┘
//
// All integers are big-endian (network byte order) with no padding, so the
// layout is byte-for-byte compatible with independently implemented peers.
// The payload shape is determined entirely by the opcode and the direction of
// the message; there is no self-describing schema on the wire.
package protocol

import (
	"encoding/binary"
	"fmt"
)

// Version is the single supported protocol version. Messages carrying any
// other version are rejected by Header.Validate.
const Version uint16 = 1

// HeaderSize is the fixed header length in bytes.
const HeaderSize = 16

// MaxDatagramSize bounds every receive buffer. It matches the largest UDP
// payload the peers allocate for.
const MaxDatagramSize = 64 * 1024

// Operation codes (uint16 on the wire).
const (
	OpQueryAvail     uint16 = 0x0001 // query free intervals for a facility
	OpBook           uint16 = 0x0002 // create a booking
	OpChangeBooking  uint16 = 0x0003 // shift an existing booking
	OpMonitor        uint16 = 0x0004 // subscribe to facility availability callbacks
	OpResetSchedule  uint16 = 0x1001 // idempotent custom op: clear a window
	OpIncrementUsage uint16 = 0x1002 // non-idempotent custom op: bump usage counter
)

// OpErrorMask marks an error response: the server echoes the request opcode
// with this bit set and a payload carrying the error kind.
const OpErrorMask uint16 = 0x8000

// Flag bits (uint32 on the wire).
const (
	FlagAtMostOnce uint32 = 1 << 0 // caller requests requestId-based dedupe
	FlagCallback   uint32 = 1 << 1 // message is a pushed notification, not a reply
)

// Error kinds carried in an error response payload (uint16 on the wire).
const (
	ErrKindConflict   uint16 = 1
	ErrKindNotFound   uint16 = 2
	ErrKindBadRequest uint16 = 3
	ErrKindInternal   uint16 = 4
)

// ErrMalformedHeader is returned when a buffer is too short to contain the
// fixed header, or when the header's declared payload length disagrees with
// the datagram that carried it.
var ErrMalformedHeader = fmt.Errorf("protocol: malformed header")

// Header is the decoded form of the fixed 16-byte message prefix.
type Header struct {
	Version    uint16 // protocol version, must equal Version
	OpCode     uint16 // operation code; high bit set marks an error response
	RequestID  uint32 // caller-assigned correlation id, shared across retries
	Flags      uint32 // FlagAtMostOnce, FlagCallback
	PayloadLen uint32 // byte length of the payload following the header
}

// IsError reports whether the error bit is set in the opcode.
func (h Header) IsError() bool {
	return h.OpCode&OpErrorMask != 0
}

// BaseOp returns the opcode with the error bit cleared.
func (h Header) BaseOp() uint16 {
	return h.OpCode &^ OpErrorMask
}

// Validate rejects messages from peers speaking a different protocol version.
// Kept separate from DecodeHeader so that encode/decode remain pure inverse
// transforms over arbitrary field values.
func (h Header) Validate() error {
	if h.Version != Version {
		return fmt.Errorf("%w: unsupported version %d", ErrMalformedHeader, h.Version)
	}
	return nil
}

// EncodeHeader serializes h into a fresh 16-byte slice.
func EncodeHeader(h Header) []byte {
	buf := make([]byte, HeaderSize)
	binary.BigEndian.PutUint16(buf[0:2], h.Version)
	binary.BigEndian.PutUint16(buf[2:4], h.OpCode)
	binary.BigEndian.PutUint32(buf[4:8], h.RequestID)
	binary.BigEndian.PutUint32(buf[8:12], h.Flags)
	binary.BigEndian.PutUint32(buf[12:16], h.PayloadLen)
	return buf
}

// DecodeHeader parses the fixed header from the front of b. It fails with
// ErrMalformedHeader when fewer than 16 bytes are available; it does not
// validate field values (see Header.Validate).
func DecodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: need %d bytes, have %d", ErrMalformedHeader, HeaderSize, len(b))
	}
	return Header{
		Version:    binary.BigEndian.Uint16(b[0:2]),
		OpCode:     binary.BigEndian.Uint16(b[2:4]),
		RequestID:  binary.BigEndian.Uint32(b[4:8]),
		Flags:      binary.BigEndian.Uint32(b[8:12]),
		PayloadLen: binary.BigEndian.Uint32(b[12:16]),
	}, nil
}

// OpName returns a short human-readable name for an opcode, error bit
// included. Used for logging only.
func OpName(op uint16) string {
	base := op &^ OpErrorMask
	var name string
	switch base {
	case OpQueryAvail:
		name = "query-avail"
	case OpBook:
		name = "book"
	case OpChangeBooking:
		name = "change-booking"
	case OpMonitor:
		name = "monitor"
	case OpResetSchedule:
		name = "reset-schedule"
	case OpIncrementUsage:
		name = "increment-usage"
	default:
		name = fmt.Sprintf("op-0x%04x", base)
	}
	if op&OpErrorMask != 0 {
		return name + "-error"
	}
	return name
}
