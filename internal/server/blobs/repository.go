package blobs

import (
	"context"
	"errors"

	"github.com/VectorPrivacy/vector-sdk-go/internal/server/models"
)

var ErrNotFound = errors.New("blob not found")

// Repository indexes stored blobs.
type Repository interface {
	// Create records b. Recording an existing digest again is not an error
	// and keeps the first record.
	Create(ctx context.Context, b *models.Blob) error
	// GetBySHA256 returns the record or ErrNotFound.
	GetBySHA256(ctx context.Context, sha256 string) (*models.Blob, error)
}
