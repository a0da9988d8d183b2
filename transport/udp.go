// Package transport wraps the two UDP endpoints the client uses: a connected
// socket for request/response exchanges and a bound socket for pushed
// callbacks.
//
// The request socket is exclusively owned by one invocation at a time — the
// engine issues one blocking wait per attempt and never overlaps attempts, so
// no locking is needed. Timeouts are implemented with read deadlines rather
// than a busy loop, and are classified separately from hard socket errors:
// the engine retries the former and aborts on the latter.
package transport

import (
	"errors"
	"fmt"
	"net"
	"time"
)

// ErrTimeout marks a receive that expired without a datagram arriving.
// Indistinguishable from a lost request or a lost reply, so the invocation
// engine treats it as a retryable attempt failure.
var ErrTimeout = errors.New("transport: receive timed out")

// RequestConn is a connected UDP socket towards one server address.
type RequestConn struct {
	conn *net.UDPConn
}

// Dial resolves addr (host:port) and connects a UDP socket to it. Connecting
// filters inbound datagrams to the server's address at the kernel level.
func Dial(addr string) (*RequestConn, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: resolve %s: %w", addr, err)
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", addr, err)
	}
	return &RequestConn{conn: conn}, nil
}

// Send transmits one datagram to the connected server.
func (c *RequestConn) Send(b []byte) error {
	_, err := c.conn.Write(b)
	return err
}

// ReceiveTimeout blocks until a datagram arrives or timeout elapses. It
// returns the number of bytes read into buf, ErrTimeout on expiry, or the
// underlying error on a hard socket failure.
func (c *RequestConn) ReceiveTimeout(buf []byte, timeout time.Duration) (int, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, err
	}
	n, err := c.conn.Read(buf)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return 0, fmt.Errorf("%w after %v", ErrTimeout, timeout)
		}
		return 0, err
	}
	return n, nil
}

// LocalAddr returns the socket's local address.
func (c *RequestConn) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// Close releases the socket.
func (c *RequestConn) Close() error {
	return c.conn.Close()
}

// CallbackConn is a bound, unconnected UDP socket that receives pushed
// notifications from the server. It is exclusively owned by the notification
// listener loop.
type CallbackConn struct {
	conn *net.UDPConn
}

// ListenCallback binds a local UDP endpoint. Pass port 0 to let the kernel
// pick one; read it back with Port before advertising it in a monitor call.
func ListenCallback(port int) (*CallbackConn, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: port})
	if err != nil {
		return nil, fmt.Errorf("transport: bind callback port %d: %w", port, err)
	}
	return &CallbackConn{conn: conn}, nil
}

// Receive blocks until a datagram arrives, without any deadline. Closing the
// connection from another goroutine unblocks it with net.ErrClosed.
func (c *CallbackConn) Receive(buf []byte) (int, error) {
	n, _, err := c.conn.ReadFromUDP(buf)
	return n, err
}

// Port returns the locally bound UDP port.
func (c *CallbackConn) Port() int {
	return c.conn.LocalAddr().(*net.UDPAddr).Port
}

// Close releases the socket and unblocks a pending Receive.
func (c *CallbackConn) Close() error {
	return c.conn.Close()
}
