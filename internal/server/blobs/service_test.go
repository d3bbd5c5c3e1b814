package blobs

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VectorPrivacy/vector-sdk-go/internal/cryptox"
	"github.com/VectorPrivacy/vector-sdk-go/internal/server/models"
)

type countingStore struct {
	ContentStore
	puts atomic.Int32
}

func (s *countingStore) Put(sha string, data []byte) error {
	s.puts.Add(1)
	return s.ContentStore.Put(sha, data)
}

func newService(t *testing.T) (*Service, *countingStore) {
	t.Helper()
	disk, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	store := &countingStore{ContentStore: disk}
	return NewService(NewMemoryRepository(), store, nil), store
}

func TestService_PutGet(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	data := []byte("ciphertext bytes")
	b, err := svc.Put(ctx, data, "image/png", "npub1")
	require.NoError(t, err)
	assert.Equal(t, cryptox.CalculateDigest(data), b.SHA256)
	assert.Equal(t, int64(len(data)), b.Size)
	assert.False(t, b.CreatedAt.IsZero())

	got, content, err := svc.Get(ctx, b.SHA256)
	require.NoError(t, err)
	assert.Equal(t, data, content)
	assert.Equal(t, "image/png", got.MimeType)
	assert.Equal(t, "npub1", got.Uploader)
}

func TestService_PutIsIdempotent(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	first, err := svc.Put(ctx, []byte("same"), "", "a")
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", first.MimeType)

	second, err := svc.Put(ctx, []byte("same"), "image/png", "b")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), store.puts.Load())
}

func TestService_Errors(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Put(ctx, nil, "", "")
	assert.ErrorIs(t, err, ErrEmpty)

	_, _, err = svc.Get(ctx, "not-a-digest")
	assert.ErrorIs(t, err, ErrInvalidDigest)

	_, _, err = svc.Get(ctx, strings.ToUpper(cryptox.CalculateDigest([]byte("x"))))
	assert.ErrorIs(t, err, ErrInvalidDigest)

	_, _, err = svc.Get(ctx, cryptox.CalculateDigest([]byte("never stored")))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDiskStore(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	sha := cryptox.CalculateDigest([]byte("x"))
	_, err = s.Get(sha)
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, s.Put(sha, []byte("x")))
	got, err := s.Get(sha)
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got)
}

func TestMemoryRepository_KeepsFirstRecord(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, &models.Blob{SHA256: "ab", Uploader: "first"}))
	require.NoError(t, r.Create(ctx, &models.Blob{SHA256: "ab", Uploader: "second"}))

	b, err := r.GetBySHA256(ctx, "ab")
	require.NoError(t, err)
	assert.Equal(t, "first", b.Uploader)
}
