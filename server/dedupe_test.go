package server

import (
	"bytes"
	"testing"
	"time"
)

func TestResponseCacheHitAndExpiry(t *testing.T) {
	c := NewResponseCache(time.Minute)
	now := time.Now()
	resp := []byte{1, 2, 3}

	if _, ok := c.Get(7, now); ok {
		t.Fatal("empty cache reported a hit")
	}
	c.Put(7, resp, now)
	got, ok := c.Get(7, now.Add(30*time.Second))
	if !ok || !bytes.Equal(got, resp) {
		t.Fatalf("got %v ok=%v, want cached response", got, ok)
	}
	if _, ok := c.Get(7, now.Add(2*time.Minute)); ok {
		t.Error("expired entry still served")
	}
}

func TestResponseCacheSweep(t *testing.T) {
	c := NewResponseCache(time.Minute)
	now := time.Now()
	c.Put(1, []byte{1}, now)
	c.Put(2, []byte{2}, now.Add(30*time.Second))

	c.Sweep(now.Add(75 * time.Second))
	if _, ok := c.Get(1, now.Add(30*time.Second)); ok {
		t.Error("swept entry still present")
	}
	if _, ok := c.Get(2, now.Add(80*time.Second)); !ok {
		t.Error("live entry swept")
	}
}
