// SPDX-License-Identifier: MIT

// Package docstore provides key-addressed persistence for recording
// metadata documents.
package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jamaisvu/jamaisvu/internal/config"
	"github.com/jamaisvu/jamaisvu/internal/recording"
)

// ErrNotFound is returned when no document exists under the requested key.
var ErrNotFound = errors.New("docstore: document not found")

// Store is a key-addressed JSON document store. Implementations must be safe
// for concurrent use.
type Store interface {
	// Put persists doc under doc.Filename, replacing any existing document.
	Put(ctx context.Context, doc recording.Document) error

	// Get returns the document stored under filename, or ErrNotFound.
	Get(ctx context.Context, filename string) (recording.Document, error)

	// List returns all stored documents in unspecified order.
	List(ctx context.Context) ([]recording.Document, error)

	Close() error
}

// New creates a Store implementation based on the configured backend.
func New(cfg config.DocStoreConfig) (Store, error) {
	switch cfg.Backend {
	case config.DocStoreBadger:
		return OpenBadger(cfg.Path)
	case config.DocStoreSQLite:
		return OpenSQLite(cfg.Path)
	case config.DocStoreMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown document store backend: %q", cfg.Backend)
	}
}
