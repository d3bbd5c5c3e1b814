// Package blobs is the storage side of the blob host: a content store
// addressed by sha256 and an index of what it holds.
package blobs

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/VectorPrivacy/vector-sdk-go/internal/cryptox"
	"github.com/VectorPrivacy/vector-sdk-go/internal/logging"
	"github.com/VectorPrivacy/vector-sdk-go/internal/server/models"
)

var (
	ErrInvalidDigest = errors.New("invalid sha256")
	ErrEmpty         = errors.New("empty blob")
)

var digestPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// ContentStore holds blob bytes by digest.
type ContentStore interface {
	Put(sha256 string, data []byte) error
	Get(sha256 string) ([]byte, error)
}

type Service struct {
	repo  Repository
	store ContentStore
	log   logging.Logger
	now   func() time.Time
}

func NewService(repo Repository, store ContentStore, log logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{repo: repo, store: store, log: log, now: time.Now}
}

// ValidDigest reports whether s is a lowercase hex sha256.
func ValidDigest(s string) bool {
	return digestPattern.MatchString(s)
}

// Put stores data under its digest and records it. Storing the same bytes
// twice returns the first record.
func (s *Service) Put(ctx context.Context, data []byte, mimeType, uploader string) (*models.Blob, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	digest := cryptox.CalculateDigest(data)
	if existing, err := s.repo.GetBySHA256(ctx, digest); err == nil {
		s.log.Debug(ctx, "blob already stored", "sha256", digest)
		return existing, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if err := s.store.Put(digest, data); err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}

	b := &models.Blob{
		SHA256:    digest,
		Size:      int64(len(data)),
		MimeType:  mimeType,
		Uploader:  uploader,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "blob stored", "sha256", digest, "size", b.Size, "uploader", uploader)
	return b, nil
}

// Get returns the record and bytes of a blob.
func (s *Service) Get(ctx context.Context, digest string) (*models.Blob, []byte, error) {
	if !ValidDigest(digest) {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidDigest, digest)
	}
	b, err := s.repo.GetBySHA256(ctx, digest)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.store.Get(digest)
	if err != nil {
		return nil, nil, err
	}
	return b, data, nil
}
