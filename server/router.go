package server

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/rs/zerolog"

	"facility-rpc/booking"
	"facility-rpc/middleware"
	"facility-rpc/protocol"
)

// Router decodes request payloads, applies the at-most-once cache, calls the
// reservation logic, and encodes responses. It is the innermost handler of
// the server's middleware chain.
type Router struct {
	logic    *Logic
	monitors *MonitorRegistry
	cache    *ResponseCache // nil disables at-most-once caching
	log      zerolog.Logger
}

func NewRouter(logic *Logic, monitors *MonitorRegistry, cache *ResponseCache, logger zerolog.Logger) *Router {
	return &Router{logic: logic, monitors: monitors, cache: cache, log: logger}
}

// Handle processes one request datagram and returns the response datagram.
func (r *Router) Handle(ctx context.Context, req *middleware.Request) []byte {
	hdr := req.Header
	dedupe := r.cache != nil && hdr.Flags&protocol.FlagAtMostOnce != 0
	if dedupe {
		if resp, ok := r.cache.Get(hdr.RequestID, time.Now()); ok {
			r.log.Info().
				Uint32("request_id", hdr.RequestID).
				Msg("replaying cached response for retransmitted request")
			return resp
		}
	}
	resp := r.dispatch(req)
	if dedupe {
		r.cache.Put(hdr.RequestID, resp, time.Now())
	}
	return resp
}

func (r *Router) dispatch(req *middleware.Request) []byte {
	hdr := req.Header
	switch hdr.BaseOp() {
	case protocol.OpQueryAvail:
		return r.onQuery(hdr, req.Payload)
	case protocol.OpBook:
		return r.onBook(hdr, req.Payload)
	case protocol.OpChangeBooking:
		return r.onChange(hdr, req.Payload)
	case protocol.OpMonitor:
		return r.onMonitor(hdr, req)
	case protocol.OpResetSchedule:
		return r.onReset(hdr, req.Payload)
	case protocol.OpIncrementUsage:
		return r.onIncrement(hdr, req.Payload)
	default:
		return booking.EncodeErrorResponse(hdr, booking.ErrorBadRequest, "unknown opcode")
	}
}

func (r *Router) onQuery(hdr protocol.Header, payload []byte) []byte {
	q, err := booking.DecodeQueryRequest(payload)
	if err != nil {
		return errorResponse(hdr, err)
	}
	free := r.logic.FreeIntervals(q.Facility, q.RangeStart, q.RangeEnd)
	return booking.EncodeIntervalsResponse(hdr, free)
}

func (r *Router) onBook(hdr protocol.Header, payload []byte) []byte {
	b, err := booking.DecodeBookRequest(payload)
	if err != nil {
		return errorResponse(hdr, err)
	}
	id, err := r.logic.Book(b.Facility, b.User, b.Start, b.End)
	if err != nil {
		return errorResponse(hdr, err)
	}
	return booking.EncodeBookingIDResponse(hdr, id)
}

func (r *Router) onChange(hdr protocol.Header, payload []byte) []byte {
	c, err := booking.DecodeChangeRequest(payload)
	if err != nil {
		return errorResponse(hdr, err)
	}
	iv, err := r.logic.Change(c.BookingID, c.OffsetMinutes)
	if err != nil {
		return errorResponse(hdr, err)
	}
	return booking.EncodeChangeResponse(hdr, iv)
}

func (r *Router) onMonitor(hdr protocol.Header, req *middleware.Request) []byte {
	m, err := booking.DecodeMonitorRequest(req.Payload)
	if err != nil {
		return errorResponse(hdr, err)
	}
	if req.Addr == nil {
		return booking.EncodeErrorResponse(hdr, booking.ErrorBadRequest, "no callback address")
	}
	// Callbacks go to the sender's IP on the port it advertised.
	cbAddr := &net.UDPAddr{IP: req.Addr.IP, Port: int(m.CallbackPort)}
	r.monitors.Register(cbAddr, m.Facility, time.Duration(m.WindowSeconds)*time.Second)
	r.log.Info().
		Str("facility", m.Facility).
		Str("callback", cbAddr.String()).
		Uint32("window_s", m.WindowSeconds).
		Msg("monitor registered")
	return booking.EncodeMonitorAckResponse(hdr, true)
}

func (r *Router) onReset(hdr protocol.Header, payload []byte) []byte {
	rr, err := booking.DecodeResetRequest(payload)
	if err != nil {
		return errorResponse(hdr, err)
	}
	removed := r.logic.ResetWindow(rr.Facility, rr.RangeStart, rr.RangeEnd)
	return booking.EncodeRemovedCountResponse(hdr, uint32(removed))
}

func (r *Router) onIncrement(hdr protocol.Header, payload []byte) []byte {
	i, err := booking.DecodeIncrementRequest(payload)
	if err != nil {
		return errorResponse(hdr, err)
	}
	usage := r.logic.IncrementUsage(i.Facility)
	return booking.EncodeUsageCountResponse(hdr, usage)
}

// errorResponse maps a logic or decode failure to the wire error taxonomy.
func errorResponse(hdr protocol.Header, err error) []byte {
	var kind booking.ErrorKind
	switch {
	case errors.Is(err, ErrConflict):
		kind = booking.ErrorConflict
	case errors.Is(err, ErrNotFound):
		kind = booking.ErrorNotFound
	case errors.Is(err, ErrBadRequest):
		kind = booking.ErrorBadRequest
	default:
		// Decode failures land here too: the request was not understood.
		kind = booking.ErrorBadRequest
	}
	return booking.EncodeErrorResponse(hdr, kind, err.Error())
}
