package server

import (
	"net"
	"sync"
	"time"
)

type monitorEntry struct {
	addr     *net.UDPAddr
	facility string
	expiry   time.Time
}

// MonitorRegistry tracks active monitor registrations for callback fan-out.
// Entries expire after their negotiated window; a periodic sweep drops them.
type MonitorRegistry struct {
	mu      sync.Mutex
	entries []monitorEntry
}

func NewMonitorRegistry() *MonitorRegistry {
	return &MonitorRegistry{}
}

// Register adds a monitor for facility, delivered to addr until the window
// elapses. Re-registering is a new, independent registration.
func (m *MonitorRegistry) Register(addr *net.UDPAddr, facility string, window time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, monitorEntry{
		addr:     addr,
		facility: facility,
		expiry:   time.Now().Add(window),
	})
}

// ActiveFor returns the callback addresses of all unexpired monitors of
// facility.
func (m *MonitorRegistry) ActiveFor(facility string, now time.Time) []*net.UDPAddr {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*net.UDPAddr
	for _, e := range m.entries {
		if e.facility == facility && e.expiry.After(now) {
			out = append(out, e.addr)
		}
	}
	return out
}

// Sweep drops expired registrations.
func (m *MonitorRegistry) Sweep(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.expiry.After(now) {
			kept = append(kept, e)
		}
	}
	m.entries = kept
}
