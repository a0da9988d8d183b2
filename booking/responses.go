package booking

import (
	"fmt"

	"facility-rpc/codec"
	"facility-rpc/protocol"
)

// reply assembles a response datagram echoing the request's correlation
// fields, exactly as the reference server does.
func reply(req protocol.Header, op uint16, payload []byte) []byte {
	return message(op, req.RequestID, req.Flags, payload)
}

// Response encoders, used by the server side of the protocol.

// EncodeIntervalsResponse serializes the query-availability success shape:
// u16 count followed by count (start, end) pairs. The same layout is pushed
// to monitor subscribers as a callback.
func EncodeIntervalsResponse(req protocol.Header, intervals []Interval) []byte {
	w := codec.NewWriter(2 + len(intervals)*16)
	w.U16(uint16(len(intervals)))
	for _, iv := range intervals {
		w.I64(iv.Start)
		w.I64(iv.End)
	}
	return reply(req, req.OpCode, w.Bytes())
}

// EncodeCallback serializes a pushed availability notification: the query
// response shape under the query opcode, with the callback flag set and
// requestId zero (callbacks are not deduplicated).
func EncodeCallback(intervals []Interval) []byte {
	w := codec.NewWriter(2 + len(intervals)*16)
	w.U16(uint16(len(intervals)))
	for _, iv := range intervals {
		w.I64(iv.Start)
		w.I64(iv.End)
	}
	return message(protocol.OpQueryAvail, 0, protocol.FlagCallback, w.Bytes())
}

// EncodeBookingIDResponse serializes the book success shape: i64 bookingId.
func EncodeBookingIDResponse(req protocol.Header, id int64) []byte {
	w := codec.NewWriter(8)
	w.I64(id)
	return reply(req, req.OpCode, w.Bytes())
}

// EncodeChangeResponse serializes the change success shape: i64 newStart,
// i64 newEnd.
func EncodeChangeResponse(req protocol.Header, iv Interval) []byte {
	w := codec.NewWriter(16)
	w.I64(iv.Start)
	w.I64(iv.End)
	return reply(req, req.OpCode, w.Bytes())
}

// EncodeMonitorAckResponse serializes the monitor success shape: u16 ok.
func EncodeMonitorAckResponse(req protocol.Header, ok bool) []byte {
	w := codec.NewWriter(2)
	if ok {
		w.U16(1)
	} else {
		w.U16(0)
	}
	return reply(req, req.OpCode, w.Bytes())
}

// EncodeRemovedCountResponse serializes the reset success shape: u32 count.
func EncodeRemovedCountResponse(req protocol.Header, removed uint32) []byte {
	w := codec.NewWriter(4)
	w.U32(removed)
	return reply(req, req.OpCode, w.Bytes())
}

// EncodeUsageCountResponse serializes the increment success shape: i64 count.
func EncodeUsageCountResponse(req protocol.Header, usage int64) []byte {
	w := codec.NewWriter(8)
	w.I64(usage)
	return reply(req, req.OpCode, w.Bytes())
}

// EncodeErrorResponse serializes an error response: the request opcode with
// the error bit set, u16 kind, and a length-prefixed diagnostic message.
func EncodeErrorResponse(req protocol.Header, kind ErrorKind, msg string) []byte {
	w := codec.NewWriter(4 + len(msg))
	w.U16(uint16(kind))
	w.String(msg)
	return reply(req, req.OpCode|protocol.OpErrorMask, w.Bytes())
}

// DecodeResponse validates a raw reply datagram and splits it into header
// and payload. An error-bit response is surfaced as a *RemoteError. The
// declared payload length must match the datagram exactly; anything else is
// a malformed message, never worth a retry.
func DecodeResponse(raw []byte) (protocol.Header, []byte, error) {
	hdr, err := protocol.DecodeHeader(raw)
	if err != nil {
		return protocol.Header{}, nil, err
	}
	if err := hdr.Validate(); err != nil {
		return hdr, nil, err
	}
	if int(hdr.PayloadLen) != len(raw)-protocol.HeaderSize {
		return hdr, nil, fmt.Errorf("%w: declared payload %d bytes, datagram carries %d",
			protocol.ErrMalformedHeader, hdr.PayloadLen, len(raw)-protocol.HeaderSize)
	}
	payload := raw[protocol.HeaderSize:]
	if hdr.IsError() {
		re, err := decodeRemoteError(payload)
		if err != nil {
			return hdr, nil, err
		}
		return hdr, nil, re
	}
	return hdr, payload, nil
}

// Success-payload decoders, used by the client side of the protocol.

// DecodeIntervals parses u16 count followed by count (start, end) pairs.
func DecodeIntervals(payload []byte) ([]Interval, error) {
	r := codec.NewReader(payload)
	count, err := r.U16()
	if err != nil {
		return nil, err
	}
	intervals := make([]Interval, 0, count)
	for i := 0; i < int(count); i++ {
		var iv Interval
		if iv.Start, err = r.I64(); err != nil {
			return nil, err
		}
		if iv.End, err = r.I64(); err != nil {
			return nil, err
		}
		intervals = append(intervals, iv)
	}
	return intervals, nil
}

func DecodeBookingID(payload []byte) (int64, error) {
	return codec.NewReader(payload).I64()
}

func DecodeChangeResult(payload []byte) (Interval, error) {
	r := codec.NewReader(payload)
	var iv Interval
	var err error
	if iv.Start, err = r.I64(); err != nil {
		return Interval{}, err
	}
	if iv.End, err = r.I64(); err != nil {
		return Interval{}, err
	}
	return iv, nil
}

func DecodeMonitorAck(payload []byte) (bool, error) {
	ok, err := codec.NewReader(payload).U16()
	if err != nil {
		return false, err
	}
	return ok == 1, nil
}

func DecodeRemovedCount(payload []byte) (uint32, error) {
	return codec.NewReader(payload).U32()
}

func DecodeUsageCount(payload []byte) (int64, error) {
	return codec.NewReader(payload).I64()
}
