package middleware

import (
	"context"

	"golang.org/x/time/rate"

	"facility-rpc/booking"
)

// RateLimit applies a token-bucket limit of r requests per second with the
// given burst. Over-limit requests are answered with an internal error
// response rather than silently dropped, so a well-behaved client fails fast
// instead of burning its whole retry budget.
func RateLimit(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) []byte {
			if !limiter.Allow() {
				return booking.EncodeErrorResponse(req.Header, booking.ErrorInternal, "rate limit exceeded")
			}
			return next(ctx, req)
		}
	}
}
