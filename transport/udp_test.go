package transport

import (
	"errors"
	"fmt"
	"net"
	"testing"
	"time"
)

// echoPeer binds a UDP socket that echoes every datagram back to its sender.
func echoPeer(t *testing.T) string {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	go func() {
		buf := make([]byte, 2048)
		for {
			n, addr, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			conn.WriteToUDP(buf[:n], addr)
		}
	}()
	return conn.LocalAddr().String()
}

func TestRequestConnSendReceive(t *testing.T) {
	c, err := Dial(echoPeer(t))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	msg := []byte("ping")
	if err := c.Send(msg); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 64)
	n, err := c.ReceiveTimeout(buf, 2*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf[:n]) != "ping" {
		t.Errorf("got %q, want %q", buf[:n], msg)
	}
}

func TestReceiveTimeoutExpires(t *testing.T) {
	// A silent peer: bound but never answering.
	silent, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	defer silent.Close()

	c, err := Dial(silent.LocalAddr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.Send([]byte("anyone there")); err != nil {
		t.Fatal(err)
	}
	_, err = c.ReceiveTimeout(make([]byte, 64), 50*time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("got %v, want ErrTimeout", err)
	}
}

func TestDialRejectsBadAddress(t *testing.T) {
	if _, err := Dial("not a host:port"); err == nil {
		t.Error("bad address accepted")
	}
}

func TestCallbackConnReceives(t *testing.T) {
	cb, err := ListenCallback(0)
	if err != nil {
		t.Fatal(err)
	}
	defer cb.Close()
	if cb.Port() == 0 {
		t.Fatal("auto-bound port not reported")
	}

	sender, err := net.Dial("udp", fmt.Sprintf("127.0.0.1:%d", cb.Port()))
	if err != nil {
		t.Fatal(err)
	}
	defer sender.Close()
	if _, err := sender.Write([]byte("notify")); err != nil {
		t.Fatal(err)
	}

	buf := make([]byte, 64)
	n, err := cb.Receive(buf)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf[:n]) != "notify" {
		t.Errorf("got %q", buf[:n])
	}
}

func TestCallbackConnCloseUnblocksReceive(t *testing.T) {
	cb, err := ListenCallback(0)
	if err != nil {
		t.Fatal(err)
	}

	errCh := make(chan error, 1)
	go func() {
		_, err := cb.Receive(make([]byte, 64))
		errCh <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cb.Close()

	select {
	case err := <-errCh:
		if !errors.Is(err, net.ErrClosed) {
			t.Errorf("got %v, want net.ErrClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Receive did not unblock on Close")
	}
}
