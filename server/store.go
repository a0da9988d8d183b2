// Package server implements the facility booking server: a single-socket UDP
// loop that decodes requests with the shared wire codec, routes them through
// business logic, answers with the operation's response shape, and pushes
// availability callbacks to registered monitors.
//
// It exists primarily as the client's test peer, but it implements the full
// protocol: at-most-once response caching, monitor expiry sweeps, and an
// optional simulated response loss for exercising client retries.
package server

// Booking is one reserved interval of a facility.
type Booking struct {
	ID       int64
	Facility string
	User     string
	Start    int64 // epoch ms, inclusive
	End      int64 // epoch ms, exclusive
}

// Store holds facilities, bookings, and usage counters in memory. It is a
// plain data structure with no locking; Logic serializes all access.
type Store struct {
	facilities map[string][]*Booking // facility name -> its bookings
	bookings   map[int64]*Booking    // booking id -> booking
	usage      map[string]int64      // facility name -> usage counter
	nextID     int64
}

func NewStore() *Store {
	return &Store{
		facilities: make(map[string][]*Booking),
		bookings:   make(map[int64]*Booking),
		usage:      make(map[string]int64),
		nextID:     1,
	}
}

// NewBookingID returns the next booking id. Ids are process-local and not
// persisted, matching the reference server.
func (s *Store) NewBookingID() int64 {
	id := s.nextID
	s.nextID++
	return id
}

// AddBooking stores b under its id and facility.
func (s *Store) AddBooking(b *Booking) {
	s.bookings[b.ID] = b
	s.facilities[b.Facility] = append(s.facilities[b.Facility], b)
}

// GetBooking returns the booking with the given id, or nil.
func (s *Store) GetBooking(id int64) *Booking {
	return s.bookings[id]
}

// FacilityBookings returns a snapshot slice of a facility's bookings.
func (s *Store) FacilityBookings(facility string) []*Booking {
	existing := s.facilities[facility]
	out := make([]*Booking, len(existing))
	copy(out, existing)
	return out
}

// RemoveBookingsInRange deletes every booking of facility overlapping
// [start, end) and returns how many were removed.
func (s *Store) RemoveBookingsInRange(facility string, start, end int64) int {
	existing := s.facilities[facility]
	kept := existing[:0]
	removed := 0
	for _, b := range existing {
		if b.Start < end && b.End > start {
			delete(s.bookings, b.ID)
			removed++
			continue
		}
		kept = append(kept, b)
	}
	s.facilities[facility] = kept
	return removed
}

// IncrementUsage bumps and returns the facility's usage counter.
func (s *Store) IncrementUsage(facility string) int64 {
	s.usage[facility]++
	return s.usage[facility]
}
