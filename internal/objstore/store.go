// SPDX-License-Identifier: MIT

// Package objstore provides blob storage for audio payloads, addressed by
// key, with optional time-limited signed read URLs.
package objstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jamaisvu/jamaisvu/internal/config"
)

var (
	// ErrNotFound is returned when no object exists under the requested key.
	ErrNotFound = errors.New("objstore: object not found")

	// ErrPresignUnsupported is returned by backends that cannot issue
	// credential-free temporary URLs.
	ErrPresignUnsupported = errors.New("objstore: presigned URLs not supported by this backend")
)

// Store is a key-addressed blob store. Implementations must be safe for
// concurrent use.
type Store interface {
	// Put stores data under key, replacing any existing object.
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Get returns the object stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Presign returns a time-limited credential-free URL granting read
	// access to the object under key.
	Presign(ctx context.Context, key string, ttl time.Duration) (string, error)

	Close() error
}

// New creates a Store implementation based on the configured backend.
func New(ctx context.Context, cfg config.ObjStoreConfig) (Store, error) {
	switch cfg.Backend {
	case config.ObjStoreS3:
		return NewS3(ctx, cfg)
	case config.ObjStoreFilesystem:
		return NewFilesystem(cfg.Root)
	case config.ObjStoreMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown object store backend: %q", cfg.Backend)
	}
}
