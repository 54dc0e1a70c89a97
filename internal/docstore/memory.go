// SPDX-License-Identifier: MIT

package docstore

import (
	"context"
	"sync"

	"github.com/jamaisvu/jamaisvu/internal/recording"
)

// MemoryStore is an in-memory document store, useful for testing.
// It is safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]recording.Document
}

// NewMemory creates an empty in-memory document store.
func NewMemory() *MemoryStore {
	return &MemoryStore{docs: make(map[string]recording.Document)}
}

func (s *MemoryStore) Put(ctx context.Context, doc recording.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.Filename] = doc
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, filename string) (recording.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[filename]
	if !ok {
		return recording.Document{}, ErrNotFound
	}
	return doc, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]recording.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]recording.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		out = append(out, doc)
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
