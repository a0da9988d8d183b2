package client

import (
	"errors"
	"fmt"

	"facility-rpc/protocol"
	"facility-rpc/transport"
)

var (
	// ErrRetriesExhausted means no reply arrived within the whole retry
	// budget. The server may be slow, unreachable, or dropping datagrams —
	// distinct from a broken transport.
	ErrRetriesExhausted = errors.New("client: retries exhausted without a reply")
	// ErrTransportFailed means the socket itself failed while waiting.
	// Surfaced immediately; retrying a broken transport cannot help.
	ErrTransportFailed = errors.New("client: transport failed")
)

// invoke drives the send / wait / retry protocol for one serialized request.
//
// Every attempt transmits the identical bytes — same requestId, same payload
// — so a server deduplicating by requestId under the at-most-once flag
// behaves correctly no matter how many retransmissions occur. A failed send
// burns an attempt rather than aborting: the caller cannot distinguish
// "lost on the way out" from "lost on the way back", and at-least-once
// semantics treat both the same. With maxRetries = r the loop performs
// exactly r+1 send attempts before giving up.
func (c *Client) invoke(request []byte) ([]byte, error) {
	buf := make([]byte, protocol.MaxDatagramSize)
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.log.Debug().
				Int("attempt", attempt+1).
				Int("budget", c.maxRetries+1).
				Msg("retransmitting request")
		}
		if err := c.tr.Send(request); err != nil {
			c.log.Warn().Err(err).Msg("send failed, counting as a lost attempt")
			continue
		}
		n, err := c.tr.ReceiveTimeout(buf, c.timeout)
		if err != nil {
			if errors.Is(err, transport.ErrTimeout) {
				continue
			}
			return nil, fmt.Errorf("%w: %v", ErrTransportFailed, err)
		}
		resp := make([]byte, n)
		copy(resp, buf[:n])
		return resp, nil
	}
	return nil, fmt.Errorf("%w (%d attempts)", ErrRetriesExhausted, c.maxRetries+1)
}
