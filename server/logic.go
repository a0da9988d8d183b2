package server

import (
	"errors"
	"sort"
	"sync"

	"facility-rpc/booking"
)

// Business rule failures, mapped to wire error kinds by the router.
var (
	ErrConflict   = errors.New("server: interval overlaps an existing booking")
	ErrNotFound   = errors.New("server: booking not found")
	ErrBadRequest = errors.New("server: invalid request")
)

const minuteMs = 60_000

// Logic applies the reservation rules on top of a Store. All methods are
// safe for concurrent use; a single mutex serializes every operation, the
// same coarse granularity the reference server uses.
type Logic struct {
	mu    sync.Mutex
	store *Store
}

func NewLogic(store *Store) *Logic {
	return &Logic{store: store}
}

// overlaps reports whether [start, end) intersects any booking in the list,
// ignoring the booking with id exclude (0 excludes nothing).
func overlaps(bookings []*Booking, start, end, exclude int64) bool {
	for _, b := range bookings {
		if b.ID == exclude {
			continue
		}
		if max(b.Start, start) < min(b.End, end) {
			return true
		}
	}
	return false
}

// Book reserves [start, end) for user, returning the new booking id.
// Each call that executes creates a new booking; this is what makes the
// operation non-idempotent under at-least-once delivery.
func (l *Logic) Book(facility, user string, start, end int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if end <= start {
		return 0, ErrBadRequest
	}
	if overlaps(l.store.FacilityBookings(facility), start, end, 0) {
		return 0, ErrConflict
	}
	id := l.store.NewBookingID()
	l.store.AddBooking(&Booking{ID: id, Facility: facility, User: user, Start: start, End: end})
	return id, nil
}

// Change shifts a booking by offsetMinutes while preserving its duration
// and returns the new interval. Applying the same change twice shifts
// twice — retried without at-most-once, this drifts.
func (l *Logic) Change(bookingID int64, offsetMinutes uint32) (booking.Interval, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.store.GetBooking(bookingID)
	if b == nil {
		return booking.Interval{}, ErrNotFound
	}
	delta := int64(offsetMinutes) * minuteMs
	newStart := b.Start + delta
	newEnd := newStart + (b.End - b.Start)
	if overlaps(l.store.FacilityBookings(b.Facility), newStart, newEnd, b.ID) {
		return booking.Interval{}, ErrConflict
	}
	b.Start = newStart
	b.End = newEnd
	return booking.Interval{Start: newStart, End: newEnd}, nil
}

// FreeIntervals computes the unbooked gaps of facility within [start, end),
// scanning bookings in start order.
func (l *Logic) FreeIntervals(facility string, start, end int64) []booking.Interval {
	l.mu.Lock()
	defer l.mu.Unlock()
	existing := l.store.FacilityBookings(facility)
	sort.Slice(existing, func(i, j int) bool { return existing[i].Start < existing[j].Start })

	free := make([]booking.Interval, 0, len(existing)+1)
	cursor := start
	for _, b := range existing {
		if b.End <= start || b.Start >= end {
			continue
		}
		if b.Start > cursor {
			free = append(free, booking.Interval{Start: cursor, End: min(b.Start, end)})
		}
		cursor = max(cursor, min(b.End, end))
		if cursor >= end {
			break
		}
	}
	if cursor < end {
		free = append(free, booking.Interval{Start: cursor, End: end})
	}
	return free
}

// ResetWindow removes every booking of facility inside [start, end) and
// returns the removed count. Repeating it removes nothing further, which is
// exactly the idempotence the protocol's custom op demonstrates.
func (l *Logic) ResetWindow(facility string, start, end int64) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.RemoveBookingsInRange(facility, start, end)
}

// IncrementUsage bumps the facility's usage counter and returns it.
func (l *Logic) IncrementUsage(facility string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.IncrementUsage(facility)
}

// BookingInfo returns the facility and current start of a booking, used when
// fanning out callbacks after a change.
func (l *Logic) BookingInfo(bookingID int64) (facility string, start int64, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.store.GetBooking(bookingID)
	if b == nil {
		return "", 0, false
	}
	return b.Facility, b.Start, true
}
