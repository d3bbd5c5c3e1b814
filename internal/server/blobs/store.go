package blobs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/VectorPrivacy/vector-sdk-go/internal/filex"
)

// DiskStore keeps blob contents under dir, fanned out by the first two hex
// characters of the digest.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	root, err := filex.EnsureSubDir(dir, "")
	if err != nil {
		return nil, err
	}
	return &DiskStore{dir: root}, nil
}

func (s *DiskStore) path(sha256 string) string {
	return filepath.Join(s.dir, sha256[:2], sha256)
}

func (s *DiskStore) Put(sha256 string, data []byte) error {
	if _, err := filex.EnsureSubDir(s.dir, sha256[:2]); err != nil {
		return err
	}
	return filex.WriteAtomic(s.path(sha256), data, 0o640)
}

func (s *DiskStore) Get(sha256 string) ([]byte, error) {
	data, err := os.ReadFile(s.path(sha256))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return data, nil
}
