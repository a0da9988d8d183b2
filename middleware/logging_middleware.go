package middleware

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"facility-rpc/protocol"
)

// Logging records every handled request: opcode, correlation id, sender,
// elapsed time, and whether the response carries the error bit.
func Logging(logger zerolog.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) []byte {
			start := time.Now()
			resp := next(ctx, req)
			evt := logger.Info().
				Str("op", protocol.OpName(req.Header.OpCode)).
				Uint32("request_id", req.Header.RequestID).
				Dur("elapsed", time.Since(start))
			if req.Addr != nil {
				evt = evt.Str("from", req.Addr.String())
			}
			if resp != nil {
				if hdr, err := protocol.DecodeHeader(resp); err == nil && hdr.IsError() {
					evt = evt.Bool("error", true)
				}
			}
			evt.Msg("handled request")
			return resp
		}
	}
}
