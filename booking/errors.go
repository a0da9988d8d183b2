package booking

import (
	"fmt"

	"facility-rpc/codec"
	"facility-rpc/protocol"
)

// ErrorKind is the numeric error taxonomy a server reports inside an error
// response payload. These are successful protocol exchanges carrying a
// semantic failure; the invocation engine never retries them.
type ErrorKind uint16

const (
	ErrorUnknown    ErrorKind = 0
	ErrorConflict   ErrorKind = ErrorKind(protocol.ErrKindConflict)
	ErrorNotFound   ErrorKind = ErrorKind(protocol.ErrKindNotFound)
	ErrorBadRequest ErrorKind = ErrorKind(protocol.ErrKindBadRequest)
	ErrorInternal   ErrorKind = ErrorKind(protocol.ErrKindInternal)
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorConflict:
		return "conflict"
	case ErrorNotFound:
		return "not found"
	case ErrorBadRequest:
		return "bad request"
	case ErrorInternal:
		return "internal"
	default:
		return fmt.Sprintf("unknown(%d)", uint16(k))
	}
}

// RemoteError is a typed failure reported by the server. Message carries the
// optional diagnostic string some servers append after the kind; it is never
// required to be present on the wire.
type RemoteError struct {
	Kind    ErrorKind
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("booking: server error: %s", e.Kind)
	}
	return fmt.Sprintf("booking: server error: %s: %s", e.Kind, e.Message)
}

// decodeRemoteError parses an error response payload: u16 kind, then an
// optional length-prefixed message.
func decodeRemoteError(payload []byte) (*RemoteError, error) {
	r := codec.NewReader(payload)
	kind, err := r.U16()
	if err != nil {
		return nil, err
	}
	re := &RemoteError{Kind: ErrorKind(kind)}
	if r.Remaining() >= 2 {
		if msg, err := r.String(codec.MaxStringLen); err == nil {
			re.Message = msg
		}
	}
	return re, nil
}
