// Package attachment is the caller-facing entry point: it encrypts a file,
// delivers the ciphertext through failover and returns the out-of-band
// decryption material. It also reverses the process for recipients.
package attachment

import (
	"context"
	"fmt"

	"github.com/VectorPrivacy/vector-sdk-go/internal/auth"
	"github.com/VectorPrivacy/vector-sdk-go/internal/cryptox"
	"github.com/VectorPrivacy/vector-sdk-go/internal/failover"
	"github.com/VectorPrivacy/vector-sdk-go/internal/logging"
	"github.com/VectorPrivacy/vector-sdk-go/internal/progress"
	"github.com/VectorPrivacy/vector-sdk-go/internal/retryx"
)

// Fetcher downloads ciphertext; *netx.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type Service struct {
	orch    *failover.Orchestrator
	fetcher Fetcher
	retry   retryx.Config
	log     logging.Logger
}

func NewService(orch *failover.Orchestrator, fetcher Fetcher, retry retryx.Config, log logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{orch: orch, fetcher: fetcher, retry: retry, log: log}
}

// SendOptions are the per-call collaborators of Send.
type SendOptions struct {
	Auth       auth.Authorizer
	OnProgress progress.Func
}

// Send encrypts a with fresh parameters and uploads it to the first
// destination that accepts it. Crypto failures happen before any network
// activity.
func (s *Service) Send(ctx context.Context, a *Attachment, destinations []string, opts SendOptions) (*Delivery, error) {
	params, err := cryptox.GenerateParams()
	if err != nil {
		return nil, err
	}

	mimeType := a.MimeType()
	payload, err := cryptox.Seal(a.Bytes, mimeType, params)
	if err != nil {
		return nil, err
	}

	s.log.Debug(ctx, "attachment sealed", "mime", mimeType, "plain_size", payload.PlainSize, "size", payload.Size())

	res, err := s.orch.UploadWithFailover(ctx, failover.Request{
		Destinations: destinations,
		Body:         payload.Ciphertext,
		MimeType:     mimeType,
		FileName:     "attachment." + a.Extension,
		Auth:         opts.Auth,
		OnProgress:   opts.OnProgress,
	}, s.retry)
	if err != nil {
		return nil, err
	}

	return &Delivery{
		Location:    res.Location,
		Destination: res.Destination,
		Key:         params.Key,
		Nonce:       params.Nonce,
		Digest:      payload.Digest,
		Size:        payload.Size(),
		MimeType:    mimeType,
		Algorithm:   cryptox.Algorithm,
		ImageMeta:   a.ImageMeta,
		SessionID:   res.Session.ID,
		Attempts:    res.Session.Attempts,
	}, nil
}

// Receive downloads, decrypts and verifies an attachment.
func (s *Service) Receive(ctx context.Context, d *Delivery) ([]byte, error) {
	if s.fetcher == nil {
		return nil, fmt.Errorf("receive: no fetcher configured")
	}
	ciphertext, err := s.fetcher.Fetch(ctx, d.Location)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", d.Location, err)
	}

	plaintext, err := cryptox.Open(ciphertext, d.Params())
	if err != nil {
		return nil, err
	}
	if d.Digest != "" {
		if err := cryptox.VerifyDigest(plaintext, d.Digest); err != nil {
			return nil, err
		}
	}

	s.log.Debug(ctx, "attachment received", "location", d.Location, "size", len(plaintext))
	return plaintext, nil
}
