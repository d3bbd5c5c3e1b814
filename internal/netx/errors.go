package netx

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind tells the retry layer where a transport failure happened.
type Kind int

const (
	KindConnect Kind = iota + 1
	KindTimeout
	KindRemoteRejected
	KindInvalidResponse
	KindCancelled
	KindCallbackAborted
	KindStalled
)

func (k Kind) String() string {
	switch k {
	case KindConnect:
		return "connect"
	case KindTimeout:
		return "timeout"
	case KindRemoteRejected:
		return "remote rejected"
	case KindInvalidResponse:
		return "invalid response"
	case KindCancelled:
		return "cancelled"
	case KindCallbackAborted:
		return "callback aborted"
	case KindStalled:
		return "stalled"
	default:
		return "unknown"
	}
}

// TransportError describes a failed upload or fetch. Status and Body are set
// for KindRemoteRejected.
type TransportError struct {
	Kind   Kind
	Status int
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	switch {
	case e.Kind == KindRemoteRejected && e.Body != "":
		return fmt.Sprintf("transport: %s: status %d: %s", e.Kind, e.Status, e.Body)
	case e.Kind == KindRemoteRejected:
		return fmt.Sprintf("transport: %s: status %d", e.Kind, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("transport: %s: %v", e.Kind, e.Err)
	default:
		return "transport: " + e.Kind.String()
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is lets errors.Is match on kind: errors.Is(err, &TransportError{Kind: KindTimeout}).
func (e *TransportError) Is(target error) bool {
	t, ok := target.(*TransportError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Status == 0 || t.Status == e.Status)
}

// KindOf returns the kind of a TransportError anywhere in err's chain, or 0.
func KindOf(err error) Kind {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Kind
	}
	return 0
}

// classifyError maps an error from the HTTP stack to a TransportError.
func classifyError(ctx context.Context, err error) *TransportError {
	var te *TransportError
	if errors.As(err, &te) {
		return te
	}

	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return &TransportError{Kind: KindCancelled, Err: err}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return &TransportError{Kind: KindConnect, Err: err}
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &TransportError{Kind: KindConnect, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TransportError{Kind: KindTimeout, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TransportError{Kind: KindTimeout, Err: err}
	}

	return &TransportError{Kind: KindConnect, Err: err}
}
