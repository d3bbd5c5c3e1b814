package blobs

import (
	"context"
	"sync"

	"github.com/VectorPrivacy/vector-sdk-go/internal/server/models"
)

// MemoryRepository is a Repository for single-process hosts and tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	blobs map[string]models.Blob
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{blobs: make(map[string]models.Blob)}
}

func (r *MemoryRepository) Create(_ context.Context, b *models.Blob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.blobs[b.SHA256]; !ok {
		r.blobs[b.SHA256] = *b
	}
	return nil
}

func (r *MemoryRepository) GetBySHA256(_ context.Context, sha256 string) (*models.Blob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.blobs[sha256]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}
