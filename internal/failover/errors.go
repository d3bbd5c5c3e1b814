package failover

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoDestinations is returned when the destination list is empty.
var ErrNoDestinations = errors.New("no destinations")

// DestinationFailure summarises why one destination was given up on.
type DestinationFailure struct {
	Destination string
	Tries       int
	Err         error
	// Terminal is set when the destination refused the upload outright
	// rather than running out of retries.
	Terminal bool
}

func (f DestinationFailure) String() string {
	how := "retries exhausted"
	if f.Terminal {
		how = "rejected"
	}
	return fmt.Sprintf("%s: %s after %d tries: %v", f.Destination, how, f.Tries, f.Err)
}

// AllDestinationsFailedError is returned once every destination has been
// tried without success. Failures keep the caller's destination order.
type AllDestinationsFailedError struct {
	Failures []DestinationFailure
}

func (e *AllDestinationsFailedError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.String()
	}
	return fmt.Sprintf("all %d destinations failed: %s", len(e.Failures), strings.Join(parts, "; "))
}

func (e *AllDestinationsFailedError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errs
}
