// Package client implements the facility RPC client: typed operations on top
// of an invocation engine that turns an unreliable datagram transport into a
// usable at-least-once (or, with the flag, at-most-once) call.
//
// A Client supports one outstanding call at a time. There is no request
// pipelining and no requestId→pending-call table: the interactive
// call/response domain does not need it, and keeping a single in-flight
// invocation makes the retry correctness argument trivial.
package client

import (
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"

	"facility-rpc/booking"
	"facility-rpc/protocol"
)

// Transport is the request/response capability the engine drives. Both the
// real UDP implementation and test fakes satisfy it.
type Transport interface {
	Send(b []byte) error
	ReceiveTimeout(buf []byte, timeout time.Duration) (int, error)
}

// Defaults applied by New when an Options field is zero.
const (
	DefaultTimeout    = 500 * time.Millisecond
	DefaultMaxRetries = 3
)

// Options configures a Client.
type Options struct {
	// Timeout is the per-attempt reply wait. Zero selects DefaultTimeout.
	Timeout time.Duration
	// MaxRetries is the number of retransmissions after the first attempt.
	// Zero means no retries; use DefaultMaxRetries for the usual budget.
	MaxRetries int
	// AtMostOnce sets the dedupe-request flag on every call, asking the
	// server to execute retransmissions of the same requestId at most once.
	AtMostOnce bool
	// Logger receives retry and correlation diagnostics. Defaults to a
	// no-op logger.
	Logger *zerolog.Logger
}

// Client issues facility booking calls over a single transport.
type Client struct {
	tr         Transport
	timeout    time.Duration
	maxRetries int
	atMostOnce bool
	nextID     uint32
	log        zerolog.Logger
}

// New creates a Client. The requestId sequence is seeded randomly (masked to
// 30 bits, mirroring the reference peers) so that restarts are unlikely to
// collide with ids a server may still have cached.
func New(tr Transport, opts Options) *Client {
	c := &Client{
		tr:         tr,
		timeout:    opts.Timeout,
		maxRetries: opts.MaxRetries,
		atMostOnce: opts.AtMostOnce,
		nextID:     rand.Uint32() & 0x3FFFFFFF,
		log:        zerolog.Nop(),
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if opts.Logger != nil {
		c.log = *opts.Logger
	}
	return c
}

// nextRequestID advances the client's monotonic correlation sequence. The
// sequence is owned by the instance, not ambient process state.
func (c *Client) nextRequestID() uint32 {
	c.nextID++
	return c.nextID
}

func (c *Client) flags() uint32 {
	if c.atMostOnce {
		return protocol.FlagAtMostOnce
	}
	return 0
}

// QueryAvailability returns the free intervals of a facility within
// [rangeStart, rangeEnd), in epoch milliseconds.
func (c *Client) QueryAvailability(facility string, rangeStart, rangeEnd int64) ([]booking.Interval, error) {
	id := c.nextRequestID()
	req := booking.QueryRequest{Facility: facility, RangeStart: rangeStart, RangeEnd: rangeEnd}
	payload, err := c.call(req.Encode(id, c.flags()), id)
	if err != nil {
		return nil, err
	}
	return booking.DecodeIntervals(payload)
}

// Book reserves the facility for user over [start, end) and returns the new
// booking id. Each executed call creates a new booking, so retries without
// the at-most-once flag can double-book.
func (c *Client) Book(facility, user string, start, end int64) (int64, error) {
	id := c.nextRequestID()
	req := booking.BookRequest{Facility: facility, User: user, Start: start, End: end}
	payload, err := c.call(req.Encode(id, c.flags()), id)
	if err != nil {
		return 0, err
	}
	return booking.DecodeBookingID(payload)
}

// ChangeBooking shifts a booking by offsetMinutes, preserving duration, and
// returns the new interval.
func (c *Client) ChangeBooking(bookingID int64, offsetMinutes uint32) (booking.Interval, error) {
	id := c.nextRequestID()
	req := booking.ChangeRequest{BookingID: bookingID, OffsetMinutes: offsetMinutes}
	payload, err := c.call(req.Encode(id, c.flags()), id)
	if err != nil {
		return booking.Interval{}, err
	}
	return booking.DecodeChangeResult(payload)
}

// Monitor registers the caller for availability callbacks on facility,
// delivered to callbackPort for windowSeconds. It returns the server's
// acknowledgement; receiving the callbacks is the monitor package's job.
func (c *Client) Monitor(facility string, windowSeconds, callbackPort uint32) (bool, error) {
	id := c.nextRequestID()
	req := booking.MonitorRequest{Facility: facility, WindowSeconds: windowSeconds, CallbackPort: callbackPort}
	payload, err := c.call(req.Encode(id, c.flags()), id)
	if err != nil {
		return false, err
	}
	return booking.DecodeMonitorAck(payload)
}

// ResetSchedule removes every booking of facility inside [rangeStart,
// rangeEnd) and returns how many were removed. Idempotent.
func (c *Client) ResetSchedule(facility string, rangeStart, rangeEnd int64) (uint32, error) {
	id := c.nextRequestID()
	req := booking.ResetRequest{Facility: facility, RangeStart: rangeStart, RangeEnd: rangeEnd}
	payload, err := c.call(req.Encode(id, c.flags()), id)
	if err != nil {
		return 0, err
	}
	return booking.DecodeRemovedCount(payload)
}

// IncrementUsage bumps the facility's usage counter and returns the new
// value. Explicitly non-idempotent: this is the operation that makes the
// at-most-once flag observable end to end.
func (c *Client) IncrementUsage(facility string) (int64, error) {
	id := c.nextRequestID()
	req := booking.IncrementRequest{Facility: facility}
	payload, err := c.call(req.Encode(id, c.flags()), id)
	if err != nil {
		return 0, err
	}
	return booking.DecodeUsageCount(payload)
}

// call runs one invocation and decodes the reply envelope. Remote error
// kinds come back as *booking.RemoteError after a completed exchange and are
// never retried — re-sending a conflicting booking cannot unconflict it.
func (c *Client) call(request []byte, requestID uint32) ([]byte, error) {
	raw, err := c.invoke(request)
	if err != nil {
		return nil, err
	}
	hdr, payload, err := booking.DecodeResponse(raw)
	if err != nil {
		return nil, err
	}
	if hdr.RequestID != requestID {
		// The reference peers accept whatever datagram arrives first;
		// mirror that, but leave a trace for diagnosing stale replies.
		c.log.Warn().
			Uint32("want", requestID).
			Uint32("got", hdr.RequestID).
			Msg("reply carries a different correlation id")
	}
	return payload, nil
}
