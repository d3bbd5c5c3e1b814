// Package retryx drives bounded retries of one upload against one
// destination. Every try runs under its own progress monitor; the monitor is
// torn down before the try's outcome is classified.
package retryx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/VectorPrivacy/vector-sdk-go/internal/logging"
	"github.com/VectorPrivacy/vector-sdk-go/internal/netx"
	"github.com/VectorPrivacy/vector-sdk-go/internal/progress"
)

var (
	// ErrDestinationExhausted wraps the last error once a destination has no
	// tries left or failed terminally.
	ErrDestinationExhausted = errors.New("destination exhausted")

	// ErrResolve wraps failures to turn a destination into an upload target.
	ErrResolve = errors.New("resolve destination")
)

// Transport is the part of netx.Client the controller needs.
type Transport interface {
	StreamUpload(ctx context.Context, t netx.Target, u netx.Upload) (string, error)
}

// Request is one payload bound for one destination.
type Request struct {
	Destination string
	// Resolve is called before every try so that short-lived credentials
	// are fresh.
	Resolve    func(ctx context.Context) (netx.Target, error)
	Body       []byte
	MimeType   string
	OnProgress progress.Func
}

// Attempt records one try.
type Attempt struct {
	ID          uuid.UUID
	Destination string
	Index       int
	BytesSent   int64
	StartedAt   time.Time
	Duration    time.Duration
	Err         error
	Class       Class
}

type Controller struct {
	transport Transport
	log       logging.Logger
}

func NewController(t Transport, log logging.Logger) *Controller {
	if log == nil {
		log = logging.Nop()
	}
	return &Controller{transport: t, log: log}
}

// AttemptWithRetries makes up to cfg.RetryCount+1 tries. It returns the
// location on success. Otherwise the error is either session-fatal (see
// IsSessionFatal) or wraps ErrDestinationExhausted. The attempt records are
// returned in every case.
func (c *Controller) AttemptWithRetries(ctx context.Context, req Request, cfg Config) (string, []Attempt, error) {
	cfg = cfg.withDefaults()
	log := c.log.With("destination", req.Destination)

	var (
		attempts []Attempt
		location string
		spacing  = cfg.RetrySpacing
	)

	backoff := retry.BackoffFunc(func() (time.Duration, bool) {
		if len(attempts) > cfg.RetryCount {
			return 0, true
		}
		log.Debug(ctx, "waiting before retry", "spacing", spacing, "next_try", len(attempts)+1)
		return spacing, false
	})

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		a, loc := c.runAttempt(ctx, req, cfg, len(attempts))
		attempts = append(attempts, a)
		if a.Err == nil {
			location = loc
			log.Info(ctx, "upload succeeded", "attempt", a.Index+1, "bytes", a.BytesSent, "duration", a.Duration)
			return nil
		}

		log.Warn(ctx, "upload attempt failed",
			"attempt", a.Index+1, "bytes", a.BytesSent, "class", a.Class, "error", a.Err)

		switch a.Class {
		case ClassRetryable:
			return retry.RetryableError(a.Err)
		case ClassBackoff:
			spacing = min(spacing*2, cfg.MaxSpacing)
			return retry.RetryableError(a.Err)
		default:
			return a.Err
		}
	})

	switch {
	case err == nil:
		return location, attempts, nil
	case ctx.Err() != nil:
		return "", attempts, &netx.TransportError{Kind: netx.KindCancelled, Err: ctx.Err()}
	case IsSessionFatal(err):
		return "", attempts, err
	default:
		return "", attempts, fmt.Errorf("%w: %s after %d tries: %w", ErrDestinationExhausted, req.Destination, len(attempts), err)
	}
}

type uploadResult struct {
	location string
	err      error
}

// runAttempt performs one try with a monitor attached. Both goroutines have
// exited when it returns, so no progress event is delivered afterwards.
func (c *Controller) runAttempt(ctx context.Context, req Request, cfg Config, index int) (Attempt, string) {
	a := Attempt{
		ID:          uuid.New(),
		Destination: req.Destination,
		Index:       index,
		StartedAt:   time.Now(),
	}
	location, err := c.upload(ctx, req, cfg, &a)
	a.Duration = time.Since(a.StartedAt)
	if err != nil {
		a.Err = err
		a.Class = Classify(err)
	}
	return a, location
}

func (c *Controller) upload(ctx context.Context, req Request, cfg Config, a *Attempt) (string, error) {
	target, err := req.Resolve(ctx)
	if err != nil {
		return "", fmt.Errorf("%w %s: %w", ErrResolve, req.Destination, err)
	}

	mon := progress.New(int64(len(req.Body)), cfg.Progress, req.OnProgress)
	defer func() { a.BytesSent = mon.Sent() }()

	// the zero-byte event goes out before the transport can report anything
	if err := mon.Start(); err != nil {
		return "", &netx.TransportError{Kind: netx.KindCallbackAborted, Err: err}
	}

	attemptCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	uploaded := make(chan uploadResult, 1)
	go func() {
		loc, err := c.transport.StreamUpload(attemptCtx, target, netx.Upload{
			Body:        req.Body,
			MimeType:    req.MimeType,
			ChunkSize:   cfg.ChunkSize,
			OnBytesSent: mon.Observe,
		})
		uploaded <- uploadResult{location: loc, err: err}
	}()

	monitored := make(chan error, 1)
	go func() { monitored <- mon.Run(attemptCtx) }()

	var res uploadResult
	select {
	case res = <-uploaded:
		cancel()
		if monErr := <-monitored; errors.Is(monErr, progress.ErrCallbackAborted) {
			return "", &netx.TransportError{Kind: netx.KindCallbackAborted, Err: monErr}
		}
	case monErr := <-monitored:
		cancel()
		res = <-uploaded
		switch {
		case errors.Is(monErr, progress.ErrStalled):
			return "", &netx.TransportError{Kind: netx.KindStalled, Err: monErr}
		case monErr != nil:
			return "", &netx.TransportError{Kind: netx.KindCallbackAborted, Err: monErr}
		}
		// monitor stopped because ctx ended; the transport result says why
	}

	if res.err != nil {
		return "", res.err
	}
	if err := mon.Finish(); err != nil {
		return "", &netx.TransportError{Kind: netx.KindCallbackAborted, Err: err}
	}
	return res.location, nil
}
