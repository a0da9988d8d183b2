package server

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"time"

	"github.com/rs/zerolog"

	"facility-rpc/booking"
	"facility-rpc/middleware"
	"facility-rpc/protocol"
)

const (
	dayMs         = 86_400_000
	readSlice     = 500 * time.Millisecond // receive deadline between maintenance checks
	sweepInterval = time.Second
	defaultAMOTTL = time.Minute
)

// Config configures a Server. Zero values select the defaults noted.
type Config struct {
	AtMostOnce bool          // enable the requestId response cache
	CacheTTL   time.Duration // at-most-once cache TTL, default one minute
	LossRate   float64       // probability of dropping an outbound response, for retry testing
	Logger     *zerolog.Logger
}

// Server owns the UDP socket and the request handling pipeline.
type Server struct {
	conn     *net.UDPConn
	handler  middleware.HandlerFunc
	logic    *Logic
	monitors *MonitorRegistry
	cache    *ResponseCache
	lossRate float64
	log      zerolog.Logger
}

// New builds a Server around a fresh in-memory store. Middlewares wrap the
// router in the order given.
func New(cfg Config, mws ...middleware.Middleware) *Server {
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	var cache *ResponseCache
	if cfg.AtMostOnce {
		ttl := cfg.CacheTTL
		if ttl <= 0 {
			ttl = defaultAMOTTL
		}
		cache = NewResponseCache(ttl)
	}
	logic := NewLogic(NewStore())
	monitors := NewMonitorRegistry()
	router := NewRouter(logic, monitors, cache, log)
	return &Server{
		handler:  middleware.Chain(mws...)(router.Handle),
		logic:    logic,
		monitors: monitors,
		cache:    cache,
		lossRate: cfg.LossRate,
		log:      log,
	}
}

// Listen binds the UDP socket. Call before Run; Addr is valid afterwards.
func (s *Server) Listen(addr string) error {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return fmt.Errorf("server: resolve %s: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	s.conn = conn
	s.log.Info().Str("addr", conn.LocalAddr().String()).Msg("listening")
	return nil
}

// Addr returns the bound socket address.
func (s *Server) Addr() net.Addr {
	return s.conn.LocalAddr()
}

// Run services requests until ctx is cancelled. Requests are handled one at
// a time on the receive goroutine, the same single-threaded discipline as
// the reference server; the short read deadline doubles as the tick for
// cache and monitor sweeps.
func (s *Server) Run(ctx context.Context) error {
	defer s.conn.Close()
	buf := make([]byte, protocol.MaxDatagramSize)
	lastSweep := time.Now()
	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := s.conn.SetReadDeadline(time.Now().Add(readSlice)); err != nil {
			return err
		}
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				lastSweep = s.maybeSweep(lastSweep)
				continue
			}
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		raw := make([]byte, n)
		copy(raw, buf[:n])
		s.handleDatagram(ctx, raw, addr)
		lastSweep = s.maybeSweep(lastSweep)
	}
}

func (s *Server) maybeSweep(last time.Time) time.Time {
	now := time.Now()
	if now.Sub(last) < sweepInterval {
		return last
	}
	if s.cache != nil {
		s.cache.Sweep(now)
	}
	s.monitors.Sweep(now)
	return now
}

func (s *Server) handleDatagram(ctx context.Context, raw []byte, addr *net.UDPAddr) {
	hdr, err := protocol.DecodeHeader(raw)
	if err != nil {
		s.log.Warn().Err(err).Str("from", addr.String()).Msg("dropping undecodable datagram")
		return
	}
	if err := hdr.Validate(); err != nil {
		s.log.Warn().Err(err).Str("from", addr.String()).Msg("dropping datagram with bad version")
		return
	}
	if int(hdr.PayloadLen) != len(raw)-protocol.HeaderSize {
		s.log.Warn().
			Uint32("declared", hdr.PayloadLen).
			Int("actual", len(raw)-protocol.HeaderSize).
			Msg("dropping datagram with inconsistent payload length")
		return
	}

	req := &middleware.Request{Addr: addr, Header: hdr, Payload: raw[protocol.HeaderSize:]}
	resp := s.handler(ctx, req)
	if resp == nil {
		return
	}
	if s.lossRate > 0 && rand.Float64() < s.lossRate {
		s.log.Info().Uint32("request_id", hdr.RequestID).Msg("simulating response loss")
	} else if _, err := s.conn.WriteToUDP(resp, addr); err != nil {
		s.log.Warn().Err(err).Msg("send response failed")
	}
	s.notifyMonitors(hdr, req.Payload, resp)
}

// notifyMonitors fans out an availability callback to every active monitor
// of the facility affected by a successful book or change. The callback
// carries the query-availability response shape for the affected day, with
// the callback flag set and requestId zero.
func (s *Server) notifyMonitors(hdr protocol.Header, reqPayload, resp []byte) {
	op := hdr.BaseOp()
	if op != protocol.OpBook && op != protocol.OpChangeBooking {
		return
	}
	respHdr, err := protocol.DecodeHeader(resp)
	if err != nil || respHdr.IsError() {
		return
	}

	var facility string
	var refTime int64
	switch op {
	case protocol.OpBook:
		b, err := booking.DecodeBookRequest(reqPayload)
		if err != nil {
			return
		}
		facility, refTime = b.Facility, b.Start
	case protocol.OpChangeBooking:
		c, err := booking.DecodeChangeRequest(reqPayload)
		if err != nil {
			return
		}
		var ok bool
		if facility, refTime, ok = s.logic.BookingInfo(c.BookingID); !ok {
			return
		}
	}

	dayStart := refTime - ((refTime%dayMs)+dayMs)%dayMs
	free := s.logic.FreeIntervals(facility, dayStart, dayStart+dayMs)
	cb := booking.EncodeCallback(free)
	for _, addr := range s.monitors.ActiveFor(facility, time.Now()) {
		if s.lossRate > 0 && rand.Float64() < s.lossRate {
			continue
		}
		if _, err := s.conn.WriteToUDP(cb, addr); err != nil {
			s.log.Warn().Err(err).Str("to", addr.String()).Msg("send callback failed")
		}
	}
}
