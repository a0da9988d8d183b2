// Package monitor runs the asynchronous notification listener. After a
// monitor call is acknowledged, the server pushes availability updates to
// the callback port the client advertised; the listener owns that endpoint
// and decodes each pushed datagram with the same wire codec used for
// ordinary replies.
//
// Notifications are fire-and-forget: no acknowledgement, no retry, and the
// listener tolerates gaps and duplicates silently. A single malformed
// datagram is logged and dropped; only a transport-level receive failure or
// cancellation ends the loop.
package monitor

import (
	"context"
	"errors"
	"net"

	"github.com/rs/zerolog"

	"facility-rpc/booking"
	"facility-rpc/protocol"
	"facility-rpc/transport"
)

// Handler receives each decoded availability update.
type Handler func(intervals []booking.Interval)

// Listener decodes pushed availability notifications from a callback
// endpoint. It runs independently of the invocation path and shares no
// mutable state with it.
type Listener struct {
	conn    *transport.CallbackConn
	handler Handler
	log     zerolog.Logger
}

// NewListener wraps an already bound callback endpoint. The Listener takes
// ownership of conn: Run closes it on cancellation.
func NewListener(conn *transport.CallbackConn, handler Handler, logger *zerolog.Logger) *Listener {
	l := &Listener{conn: conn, handler: handler, log: zerolog.Nop()}
	if logger != nil {
		l.log = *logger
	}
	return l
}

// Port returns the bound callback port, for advertising in a monitor call.
func (l *Listener) Port() int {
	return l.conn.Port()
}

// Run blocks receiving notifications until ctx is cancelled or the endpoint
// fails. Cancellation closes the endpoint to unblock the pending receive and
// returns nil; a hard receive failure returns the underlying error.
func (l *Listener) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		l.conn.Close()
	})
	defer stop()

	buf := make([]byte, protocol.MaxDatagramSize)
	for {
		n, err := l.conn.Receive(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		l.handle(buf[:n])
	}
}

// handle decodes one pushed datagram. Anything that does not look like an
// availability callback is discarded, never fatal.
func (l *Listener) handle(raw []byte) {
	hdr, err := protocol.DecodeHeader(raw)
	if err != nil {
		l.log.Warn().Err(err).Msg("dropping undecodable notification")
		return
	}
	if err := hdr.Validate(); err != nil {
		l.log.Warn().Err(err).Msg("dropping notification with bad version")
		return
	}
	if hdr.Flags&protocol.FlagCallback == 0 || hdr.BaseOp() != protocol.OpQueryAvail {
		l.log.Warn().
			Str("op", protocol.OpName(hdr.OpCode)).
			Uint32("flags", hdr.Flags).
			Msg("dropping unexpected datagram on callback endpoint")
		return
	}
	if int(hdr.PayloadLen) != len(raw)-protocol.HeaderSize {
		l.log.Warn().Msg("dropping notification with inconsistent payload length")
		return
	}
	intervals, err := booking.DecodeIntervals(raw[protocol.HeaderSize:])
	if err != nil {
		l.log.Warn().Err(err).Msg("dropping notification with malformed payload")
		return
	}
	l.log.Debug().Int("intervals", len(intervals)).Msg("availability update")
	l.handler(intervals)
}
