package monitor

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"facility-rpc/booking"
	"facility-rpc/transport"
)

// startListener binds a callback endpoint, runs the listener, and returns a
// sender socket aimed at it plus the channel updates arrive on.
func startListener(t *testing.T, ctx context.Context) (net.Conn, chan []booking.Interval, chan error) {
	t.Helper()
	cb, err := transport.ListenCallback(0)
	if err != nil {
		t.Fatalf("bind callback endpoint: %v", err)
	}

	updates := make(chan []booking.Interval, 8)
	l := NewListener(cb, func(intervals []booking.Interval) {
		updates <- intervals
	}, nil)

	done := make(chan error, 1)
	go func() {
		done <- l.Run(ctx)
	}()

	sender, err := net.Dial("udp", fmt.Sprintf("127.0.0.1:%d", l.Port()))
	if err != nil {
		t.Fatalf("dial callback endpoint: %v", err)
	}
	t.Cleanup(func() { sender.Close() })
	return sender, updates, done
}

func waitUpdate(t *testing.T, updates chan []booking.Interval) []booking.Interval {
	t.Helper()
	select {
	case intervals := <-updates:
		return intervals
	case <-time.After(2 * time.Second):
		t.Fatal("no notification arrived")
		return nil
	}
}

func TestListenerDeliversUpdates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sender, updates, _ := startListener(t, ctx)

	want := []booking.Interval{{Start: 1000, End: 2000}, {Start: 5000, End: 9000}}
	if _, err := sender.Write(booking.EncodeCallback(want)); err != nil {
		t.Fatal(err)
	}

	got := waitUpdate(t, updates)
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestListenerDeliversEmptyUpdate(t *testing.T) {
	// A fully booked day pushes zero intervals; that is still an update.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sender, updates, _ := startListener(t, ctx)

	if _, err := sender.Write(booking.EncodeCallback(nil)); err != nil {
		t.Fatal(err)
	}
	if got := waitUpdate(t, updates); len(got) != 0 {
		t.Errorf("got %v, want empty update", got)
	}
}

func TestListenerSurvivesMalformedDatagrams(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sender, updates, done := startListener(t, ctx)

	// Garbage, then a short header, then a valid notification: the loop must
	// drop the first two and still deliver the third.
	sender.Write([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	sender.Write([]byte{0x00})
	want := []booking.Interval{{Start: 1000, End: 2000}}
	if _, err := sender.Write(booking.EncodeCallback(want)); err != nil {
		t.Fatal(err)
	}

	got := waitUpdate(t, updates)
	if len(got) != 1 || got[0] != want[0] {
		t.Errorf("got %v, want %v", got, want)
	}
	select {
	case err := <-done:
		t.Fatalf("listener terminated on malformed input: %v", err)
	default:
	}
}

func TestListenerIgnoresNonCallbackDatagrams(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sender, updates, _ := startListener(t, ctx)

	// A well-formed request datagram lacks the callback flag and must be
	// ignored on this endpoint.
	stray := booking.QueryRequest{Facility: "LabA", RangeEnd: 1000}.Encode(1, 0)
	sender.Write(stray)
	want := []booking.Interval{{Start: 0, End: 500}}
	sender.Write(booking.EncodeCallback(want))

	got := waitUpdate(t, updates)
	if len(got) != 1 || got[0] != want[0] {
		t.Errorf("got %v, want %v (stray datagram must not be delivered)", got, want)
	}
}

func TestListenerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	_, _, done := startListener(t, ctx)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v on cancellation, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop on cancellation")
	}
}
