package booking

import (
	"facility-rpc/codec"
	"facility-rpc/protocol"
)

// message assembles a complete datagram from an opcode, correlation fields,
// and an already encoded payload.
func message(op uint16, requestID, flags uint32, payload []byte) []byte {
	hdr := protocol.EncodeHeader(protocol.Header{
		Version:    protocol.Version,
		OpCode:     op,
		RequestID:  requestID,
		Flags:      flags,
		PayloadLen: uint32(len(payload)),
	})
	return append(hdr, payload...)
}

// Encode serializes a query request: facility, rangeStart, rangeEnd.
func (q QueryRequest) Encode(requestID, flags uint32) []byte {
	w := codec.NewWriter(2 + len(q.Facility) + 16)
	w.String(q.Facility)
	w.I64(q.RangeStart)
	w.I64(q.RangeEnd)
	return message(protocol.OpQueryAvail, requestID, flags, w.Bytes())
}

// Encode serializes a book request: facility, user, start, end.
func (b BookRequest) Encode(requestID, flags uint32) []byte {
	w := codec.NewWriter(4 + len(b.Facility) + len(b.User) + 16)
	w.String(b.Facility)
	w.String(b.User)
	w.I64(b.Start)
	w.I64(b.End)
	return message(protocol.OpBook, requestID, flags, w.Bytes())
}

// Encode serializes a change request: bookingId, offsetMinutes.
func (c ChangeRequest) Encode(requestID, flags uint32) []byte {
	w := codec.NewWriter(12)
	w.I64(c.BookingID)
	w.U32(c.OffsetMinutes)
	return message(protocol.OpChangeBooking, requestID, flags, w.Bytes())
}

// Encode serializes a monitor request: facility, windowSeconds, callbackPort.
func (m MonitorRequest) Encode(requestID, flags uint32) []byte {
	w := codec.NewWriter(2 + len(m.Facility) + 8)
	w.String(m.Facility)
	w.U32(m.WindowSeconds)
	w.U32(m.CallbackPort)
	return message(protocol.OpMonitor, requestID, flags, w.Bytes())
}

// Encode serializes a reset request: facility, rangeStart, rangeEnd.
func (r ResetRequest) Encode(requestID, flags uint32) []byte {
	w := codec.NewWriter(2 + len(r.Facility) + 16)
	w.String(r.Facility)
	w.I64(r.RangeStart)
	w.I64(r.RangeEnd)
	return message(protocol.OpResetSchedule, requestID, flags, w.Bytes())
}

// Encode serializes an increment request: facility.
func (i IncrementRequest) Encode(requestID, flags uint32) []byte {
	w := codec.NewWriter(2 + len(i.Facility))
	w.String(i.Facility)
	return message(protocol.OpIncrementUsage, requestID, flags, w.Bytes())
}

// Request decoders, used by the server side of the protocol.

func DecodeQueryRequest(payload []byte) (QueryRequest, error) {
	var q QueryRequest
	var err error
	r := codec.NewReader(payload)
	if q.Facility, err = r.String(codec.MaxStringLen); err != nil {
		return QueryRequest{}, err
	}
	if q.RangeStart, err = r.I64(); err != nil {
		return QueryRequest{}, err
	}
	if q.RangeEnd, err = r.I64(); err != nil {
		return QueryRequest{}, err
	}
	return q, nil
}

func DecodeBookRequest(payload []byte) (BookRequest, error) {
	var b BookRequest
	var err error
	r := codec.NewReader(payload)
	if b.Facility, err = r.String(codec.MaxStringLen); err != nil {
		return BookRequest{}, err
	}
	if b.User, err = r.String(codec.MaxStringLen); err != nil {
		return BookRequest{}, err
	}
	if b.Start, err = r.I64(); err != nil {
		return BookRequest{}, err
	}
	if b.End, err = r.I64(); err != nil {
		return BookRequest{}, err
	}
	return b, nil
}

func DecodeChangeRequest(payload []byte) (ChangeRequest, error) {
	var c ChangeRequest
	var err error
	r := codec.NewReader(payload)
	if c.BookingID, err = r.I64(); err != nil {
		return ChangeRequest{}, err
	}
	if c.OffsetMinutes, err = r.U32(); err != nil {
		return ChangeRequest{}, err
	}
	return c, nil
}

func DecodeMonitorRequest(payload []byte) (MonitorRequest, error) {
	var m MonitorRequest
	var err error
	r := codec.NewReader(payload)
	if m.Facility, err = r.String(codec.MaxStringLen); err != nil {
		return MonitorRequest{}, err
	}
	if m.WindowSeconds, err = r.U32(); err != nil {
		return MonitorRequest{}, err
	}
	if m.CallbackPort, err = r.U32(); err != nil {
		return MonitorRequest{}, err
	}
	return m, nil
}

func DecodeResetRequest(payload []byte) (ResetRequest, error) {
	var rr ResetRequest
	var err error
	r := codec.NewReader(payload)
	if rr.Facility, err = r.String(codec.MaxStringLen); err != nil {
		return ResetRequest{}, err
	}
	if rr.RangeStart, err = r.I64(); err != nil {
		return ResetRequest{}, err
	}
	if rr.RangeEnd, err = r.I64(); err != nil {
		return ResetRequest{}, err
	}
	return rr, nil
}

func DecodeIncrementRequest(payload []byte) (IncrementRequest, error) {
	r := codec.NewReader(payload)
	facility, err := r.String(codec.MaxStringLen)
	if err != nil {
		return IncrementRequest{}, err
	}
	return IncrementRequest{Facility: facility}, nil
}
