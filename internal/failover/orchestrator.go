// Package failover uploads one payload to an ordered list of destinations,
// one at a time, and stops at the first success.
package failover

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/VectorPrivacy/vector-sdk-go/internal/auth"
	"github.com/VectorPrivacy/vector-sdk-go/internal/cryptox"
	"github.com/VectorPrivacy/vector-sdk-go/internal/destination"
	"github.com/VectorPrivacy/vector-sdk-go/internal/logging"
	"github.com/VectorPrivacy/vector-sdk-go/internal/netx"
	"github.com/VectorPrivacy/vector-sdk-go/internal/progress"
	"github.com/VectorPrivacy/vector-sdk-go/internal/retryx"
)

// Session is the record of one UploadWithFailover call.
type Session struct {
	ID           uuid.UUID
	Destinations []string
	// Current is the index of the destination being tried, or of the one
	// that succeeded.
	Current      int
	StartedAt    time.Time
	LastProgress time.Time
	Attempts     []retryx.Attempt
}

func (s *Session) Elapsed() time.Duration {
	return time.Since(s.StartedAt)
}

type Result struct {
	Location    string
	Destination string
	Session     *Session
}

// Request is the ciphertext and everything needed to deliver it.
type Request struct {
	Destinations []string
	Body         []byte
	MimeType     string
	FileName     string
	Auth         auth.Authorizer
	OnProgress   progress.Func
}

type Orchestrator struct {
	retry    *retryx.Controller
	resolver *destination.Resolver
	log      logging.Logger
}

func New(retry *retryx.Controller, resolver *destination.Resolver, log logging.Logger) *Orchestrator {
	if log == nil {
		log = logging.Nop()
	}
	if resolver == nil {
		resolver = &destination.Resolver{}
	}
	return &Orchestrator{retry: retry, resolver: resolver, log: log}
}

// UploadWithFailover tries req.Destinations strictly in order. It returns on
// the first success, on a session-fatal error, or with an
// *AllDestinationsFailedError once every destination is exhausted.
func (o *Orchestrator) UploadWithFailover(ctx context.Context, req Request, cfg retryx.Config) (*Result, error) {
	if len(req.Destinations) == 0 {
		return nil, ErrNoDestinations
	}

	s := &Session{
		ID:           uuid.New(),
		Destinations: append([]string(nil), req.Destinations...),
		StartedAt:    time.Now(),
	}
	log := o.log.With("session", s.ID)

	blob := destination.Blob{
		SHA256:   cryptox.CalculateDigest(req.Body),
		MimeType: req.MimeType,
		Size:     int64(len(req.Body)),
		FileName: req.FileName,
	}

	onProgress := func(e progress.Event) error {
		s.LastProgress = time.Now()
		if req.OnProgress == nil {
			return nil
		}
		return req.OnProgress(e)
	}

	var failures []DestinationFailure
	for i, id := range s.Destinations {
		s.Current = i
		log.Info(ctx, "trying destination", "destination", id, "index", i)

		d, err := destination.Parse(id)
		if err != nil {
			log.Warn(ctx, "skipping destination", "destination", id, "error", err)
			failures = append(failures, DestinationFailure{Destination: id, Err: err, Terminal: true})
			continue
		}

		location, attempts, err := o.retry.AttemptWithRetries(ctx, retryx.Request{
			Destination: id,
			Resolve: func(ctx context.Context) (netx.Target, error) {
				return o.resolver.Resolve(ctx, d, blob, req.Auth)
			},
			Body:       req.Body,
			MimeType:   req.MimeType,
			OnProgress: onProgress,
		}, cfg)
		s.Attempts = append(s.Attempts, attempts...)

		if err == nil {
			log.Info(ctx, "upload delivered", "destination", id, "location", location, "elapsed", s.Elapsed())
			return &Result{Location: location, Destination: id, Session: s}, nil
		}
		if retryx.IsSessionFatal(err) {
			log.Error(ctx, "upload session aborted", "destination", id, "error", err)
			return nil, err
		}

		f := DestinationFailure{Destination: id, Tries: len(attempts), Err: err}
		if n := len(attempts); n > 0 {
			f.Err = attempts[n-1].Err
			f.Terminal = attempts[n-1].Class == retryx.ClassDestinationTerminal
		}
		log.Warn(ctx, "destination exhausted", "destination", id, "tries", f.Tries, "error", f.Err)
		failures = append(failures, f)
	}

	return nil, &AllDestinationsFailedError{Failures: failures}
}

// IsAllDestinationsFailed reports whether err is an aggregate failure.
func IsAllDestinationsFailed(err error) bool {
	var e *AllDestinationsFailedError
	return errors.As(err, &e)
}
