package deliveries

import (
	"context"
	"errors"

	"github.com/VectorPrivacy/vector-sdk-go/internal/client/models"
)

var ErrNotFound = errors.New("delivery not found")

// Repository describes the journal operations used by the CLI.
type Repository interface {
	// Create stores d and its attempts atomically.
	Create(ctx context.Context, d *models.Delivery) error

	// GetByID returns a delivery with its attempts, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Delivery, error)

	// List returns the newest deliveries first, without attempts.
	List(ctx context.Context, limit int) ([]*models.Delivery, error)

	// DeleteByID removes a delivery and its attempts.
	DeleteByID(ctx context.Context, id string) error
}
