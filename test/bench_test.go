package test

import (
	"testing"

	"facility-rpc/booking"
	"facility-rpc/protocol"
)

func BenchmarkEncodeQueryRequest(b *testing.B) {
	req := booking.QueryRequest{Facility: "LabA", RangeStart: 0, RangeEnd: 86_400_000}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		req.Encode(uint32(i), 0)
	}
}

func BenchmarkEncodeBookRequest(b *testing.B) {
	req := booking.BookRequest{Facility: "LabA", User: "alice", Start: 3_600_000, End: 7_200_000}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		req.Encode(uint32(i), protocol.FlagAtMostOnce)
	}
}

func BenchmarkDecodeIntervalsResponse(b *testing.B) {
	hdr := protocol.Header{Version: protocol.Version, OpCode: protocol.OpQueryAvail, RequestID: 1}
	intervals := make([]booking.Interval, 16)
	for i := range intervals {
		intervals[i] = booking.Interval{Start: int64(i) * 1000, End: int64(i)*1000 + 500}
	}
	raw := booking.EncodeIntervalsResponse(hdr, intervals)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, payload, err := booking.DecodeResponse(raw)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := booking.DecodeIntervals(payload); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkHeaderRoundTrip(b *testing.B) {
	h := protocol.Header{Version: protocol.Version, OpCode: protocol.OpBook, RequestID: 7, PayloadLen: 32}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		raw := protocol.EncodeHeader(h)
		if _, err := protocol.DecodeHeader(raw); err != nil {
			b.Fatal(err)
		}
	}
}
