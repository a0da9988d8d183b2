// Package booking is the operation layer of the facility RPC protocol: one
// encode/decode pair per operation kind, built on the codec primitives.
//
// Request encoders produce complete datagrams (header + payload) so the
// invocation engine can retransmit the exact same bytes on every retry.
// Decoders work on the payload that follows a validated header. The same
// package serves both sides of the wire — the client decodes what the server
// encodes and vice versa.
package booking

// Interval is a half-open [Start, End) time range in epoch milliseconds.
type Interval struct {
	Start int64
	End   int64
}

// QueryRequest asks for the free intervals of a facility within a window.
type QueryRequest struct {
	Facility   string
	RangeStart int64
	RangeEnd   int64
}

// BookRequest reserves a facility for a user over [Start, End).
type BookRequest struct {
	Facility string
	User     string
	Start    int64
	End      int64
}

// ChangeRequest shifts an existing booking by OffsetMinutes, preserving its
// duration. Re-applying shifts again; not idempotent under at-least-once.
type ChangeRequest struct {
	BookingID     int64
	OffsetMinutes uint32
}

// MonitorRequest registers the caller for availability callbacks on a
// facility, pushed to CallbackPort for WindowSeconds.
type MonitorRequest struct {
	Facility      string
	WindowSeconds uint32
	CallbackPort  uint32
}

// ResetRequest clears all bookings of a facility inside a window. Idempotent:
// repeating it removes nothing further.
type ResetRequest struct {
	Facility   string
	RangeStart int64
	RangeEnd   int64
}

// IncrementRequest bumps a facility's usage counter. Explicitly
// non-idempotent: every executed request increments.
type IncrementRequest struct {
	Facility string
}
