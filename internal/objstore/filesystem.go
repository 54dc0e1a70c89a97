// SPDX-License-Identifier: MIT

package objstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/renameio/v2"
)

// FilesystemStore keeps objects as files under a root directory. Writes are
// atomic (write-to-temp plus rename), so a crash mid-write never leaves a
// truncated object behind. It cannot issue presigned URLs.
type FilesystemStore struct {
	root string
}

// NewFilesystem creates a filesystem-backed object store rooted at root.
func NewFilesystem(root string) (*FilesystemStore, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create object store root: %w", err)
	}
	return &FilesystemStore{root: root}, nil
}

// keyPath validates key and maps it to a path under the root. Keys with path
// separators or traversal segments are rejected.
func (s *FilesystemStore) keyPath(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, "/\\") || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid object key: %q", key)
	}
	return filepath.Join(s.root, key), nil
}

func (s *FilesystemStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	path, err := s.keyPath(key)
	if err != nil {
		return err
	}
	return renameio.WriteFile(path, data, 0o640)
}

func (s *FilesystemStore) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := s.keyPath(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path is confined to the store root by keyPath
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *FilesystemStore) Presign(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "", ErrPresignUnsupported
}

func (s *FilesystemStore) Close() error { return nil }
