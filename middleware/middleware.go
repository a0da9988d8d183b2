// Package middleware composes cross-cutting behavior around the server's
// datagram handler. A HandlerFunc maps one decoded request to one response
// datagram; middlewares wrap it in onion order, outermost first.
package middleware

import (
	"context"
	"net"

	"facility-rpc/protocol"
)

// Request is one inbound datagram with its parsed header.
type Request struct {
	Addr    *net.UDPAddr    // sender address
	Header  protocol.Header // validated fixed header
	Payload []byte          // bytes following the header
}

// HandlerFunc handles a request and returns the response datagram to send.
// A nil return means no response (the datagram is dropped).
type HandlerFunc func(ctx context.Context, req *Request) []byte

// Middleware wraps a handler with additional behavior.
type Middleware func(next HandlerFunc) HandlerFunc

// Chain combines middlewares into one, applied left to right: the first
// middleware sees the request first.
func Chain(middlewares ...Middleware) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
