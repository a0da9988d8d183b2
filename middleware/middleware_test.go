package middleware

import (
	"context"
	"errors"
	"testing"

	"facility-rpc/booking"
	"facility-rpc/protocol"
)

func TestChainOrder(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next HandlerFunc) HandlerFunc {
			return func(ctx context.Context, req *Request) []byte {
				order = append(order, name)
				return next(ctx, req)
			}
		}
	}
	handler := Chain(tag("outer"), tag("inner"))(func(context.Context, *Request) []byte {
		order = append(order, "handler")
		return nil
	})

	handler(context.Background(), &Request{})
	want := []string{"outer", "inner", "handler"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

func TestChainEmpty(t *testing.T) {
	called := false
	handler := Chain()(func(context.Context, *Request) []byte {
		called = true
		return nil
	})
	handler(context.Background(), &Request{})
	if !called {
		t.Error("empty chain must be the identity")
	}
}

func TestRateLimitOverBudget(t *testing.T) {
	handled := 0
	handler := RateLimit(1, 2)(func(context.Context, *Request) []byte {
		handled++
		return []byte("ok")
	})
	req := &Request{Header: protocol.Header{Version: protocol.Version, OpCode: protocol.OpBook, RequestID: 1}}

	// Burst of 2 passes; the third datagram exceeds the bucket.
	for i := 0; i < 2; i++ {
		if resp := handler(context.Background(), req); string(resp) != "ok" {
			t.Fatalf("request %d rejected inside burst", i+1)
		}
	}
	resp := handler(context.Background(), req)
	if handled != 2 {
		t.Fatalf("handler ran %d times, want 2", handled)
	}

	// The rejection is a decodable error response, not a silent drop.
	_, _, err := booking.DecodeResponse(resp)
	var re *booking.RemoteError
	if !errors.As(err, &re) || re.Kind != booking.ErrorInternal {
		t.Errorf("got %v, want internal RemoteError", err)
	}
}
