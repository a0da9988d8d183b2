package server

import (
	"net"
	"testing"
	"time"
)

func TestMonitorRegistryActiveFor(t *testing.T) {
	m := NewMonitorRegistry()
	a := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 4001}
	b := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 4002}
	m.Register(a, "LabA", time.Minute)
	m.Register(b, "LabB", time.Minute)

	now := time.Now()
	active := m.ActiveFor("LabA", now)
	if len(active) != 1 || active[0].Port != 4001 {
		t.Fatalf("got %v, want only port 4001", active)
	}
	if got := m.ActiveFor("LabC", now); len(got) != 0 {
		t.Errorf("unmonitored facility has entries: %v", got)
	}
}

func TestMonitorRegistryExpiry(t *testing.T) {
	m := NewMonitorRegistry()
	a := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 4001}
	m.Register(a, "LabA", 10*time.Second)

	if got := m.ActiveFor("LabA", time.Now().Add(time.Minute)); len(got) != 0 {
		t.Errorf("expired registration still active: %v", got)
	}

	m.Sweep(time.Now().Add(time.Minute))
	m.Register(a, "LabA", time.Minute)
	if got := m.ActiveFor("LabA", time.Now()); len(got) != 1 {
		t.Errorf("re-registration after sweep not active: %v", got)
	}
}

func TestMonitorRegistryDuplicateRegistrations(t *testing.T) {
	// Re-registering is a new entry; fan-out then sends one callback per
	// registration, matching a client that monitored twice.
	m := NewMonitorRegistry()
	a := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 4001}
	m.Register(a, "LabA", time.Minute)
	m.Register(a, "LabA", time.Minute)
	if got := m.ActiveFor("LabA", time.Now()); len(got) != 2 {
		t.Errorf("got %d entries, want 2", len(got))
	}
}
