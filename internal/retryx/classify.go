package retryx

import (
	"context"
	"errors"
	"net/http"

	"github.com/VectorPrivacy/vector-sdk-go/internal/cryptox"
	"github.com/VectorPrivacy/vector-sdk-go/internal/netx"
	"github.com/VectorPrivacy/vector-sdk-go/internal/progress"
)

// Class is the retry decision for a failed attempt.
type Class int

const (
	// ClassRetryable consumes one retry slot.
	ClassRetryable Class = iota + 1
	// ClassBackoff is retryable and doubles the spacing before the next try.
	ClassBackoff
	// ClassDestinationTerminal stops retrying the destination; failover
	// moves on.
	ClassDestinationTerminal
	// ClassSessionFatal stops the whole session.
	ClassSessionFatal
)

func (c Class) String() string {
	switch c {
	case ClassRetryable:
		return "retryable"
	case ClassBackoff:
		return "backoff"
	case ClassDestinationTerminal:
		return "destination-terminal"
	case ClassSessionFatal:
		return "session-fatal"
	default:
		return "unknown"
	}
}

// Classify maps an attempt error to a retry decision. Errors it does not
// recognise are terminal for the destination.
func Classify(err error) Class {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, cryptox.ErrCrypto),
		errors.Is(err, progress.ErrCallbackAborted),
		errors.Is(err, context.Canceled):
		return ClassSessionFatal
	case errors.Is(err, progress.ErrStalled):
		return ClassRetryable
	}

	var te *netx.TransportError
	if !errors.As(err, &te) {
		if errors.Is(err, context.DeadlineExceeded) {
			return ClassSessionFatal
		}
		return ClassDestinationTerminal
	}

	switch te.Kind {
	case netx.KindConnect, netx.KindTimeout, netx.KindStalled:
		return ClassRetryable
	case netx.KindCancelled, netx.KindCallbackAborted:
		return ClassSessionFatal
	case netx.KindRemoteRejected:
		switch {
		case te.Status == http.StatusTooManyRequests:
			return ClassBackoff
		case te.Status >= 500 && te.Status <= 599:
			return ClassRetryable
		default:
			return ClassDestinationTerminal
		}
	default:
		return ClassDestinationTerminal
	}
}

// IsSessionFatal reports whether err must end the whole session.
func IsSessionFatal(err error) bool {
	return Classify(err) == ClassSessionFatal
}
