// SPDX-License-Identifier: MIT

// Package service orchestrates the upload workflow and the read-side query
// surface over the document and object stores.
package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jamaisvu/jamaisvu/internal/docstore"
	"github.com/jamaisvu/jamaisvu/internal/geo"
	"github.com/jamaisvu/jamaisvu/internal/log"
	"github.com/jamaisvu/jamaisvu/internal/recording"
)

// Service binds the stores and the location resolver. Construct once at
// process start and pass by reference to request handlers.
type Service struct {
	docs       docstore.Store
	objects    ObjectStore
	resolver   Resolver
	presignTTL time.Duration
	logger     zerolog.Logger

	newID func() string
	nowMs func() int64
}

// ObjectStore is the slice of the blob store the service depends on.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Presign(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Resolver determines an upload's location. Implemented by geo.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, coords *recording.Coordinates, remoteAddr string) (recording.Location, bool, error)
}

// New creates the service.
func New(docs docstore.Store, objects ObjectStore, resolver Resolver, presignTTL time.Duration) *Service {
	return &Service{
		docs:       docs,
		objects:    objects,
		resolver:   resolver,
		presignTTL: presignTTL,
		logger:     log.WithComponent("service"),
		newID:      recording.NewID,
		nowMs:      recording.NowMillis,
	}
}

// Upload validates and persists one recording: decode, content-sniff,
// resolve location, then write the object and the document as two
// independent operations. There is no rollback; a partial failure leaves an
// orphan, which is logged and counted for manual reconciliation.
func (s *Service) Upload(ctx context.Context, audioBase64 string, coords *recording.Coordinates, remoteAddr string) (recording.Document, error) {
	logger := log.WithContext(ctx, s.logger)

	payload, err := base64.StdEncoding.DecodeString(audioBase64)
	if err != nil {
		return recording.Document{}, fmt.Errorf("%w: invalid base64 payload", recording.ErrBadRequest)
	}

	mime, err := recording.SniffAudio(payload)
	if err != nil {
		sniffRejectedTotal.Inc()
		return recording.Document{}, err
	}

	loc, fromClient, err := s.resolver.Resolve(ctx, coords, remoteAddr)
	if err != nil {
		geoLookupsTotal.WithLabelValues("failed").Inc()
		return recording.Document{}, err
	}
	if fromClient {
		geoLookupsTotal.WithLabelValues("client").Inc()
	} else {
		geoLookupsTotal.WithLabelValues("address").Inc()
	}

	// The id is fixed before any write so both stores share it.
	doc := recording.Document{
		Filename:            s.newID(),
		Location:            loc,
		IsClientGeolocation: fromClient,
		Timestamp:           s.nowMs(),
	}

	if err := s.objects.Put(ctx, doc.ObjectKey(), payload, mime); err != nil {
		return recording.Document{}, fmt.Errorf("store audio object: %w", err)
	}
	if err := s.docs.Put(ctx, doc); err != nil {
		orphanedWritesTotal.WithLabelValues("object").Inc()
		logger.Error().
			Err(err).
			Str("event", "upload.orphaned_object").
			Str("object_key", doc.ObjectKey()).
			Msg("document write failed after object write; orphan left for reconciliation")
		return recording.Document{}, fmt.Errorf("store document: %w", err)
	}

	uploadsTotal.Inc()
	uploadBytes.Observe(float64(len(payload)))
	logger.Info().
		Str("event", "upload.accepted").
		Str("filename", doc.Filename).
		Str("mime", mime).
		Bool("client_geolocation", fromClient).
		Int("bytes", len(payload)).
		Msg("recording persisted")
	return doc, nil
}

// UploadMetadata is the second round trip of the split upload variant: it
// re-resolves the location with the client's coordinates and replaces the
// location fields of the existing document. The filename and timestamp stay
// untouched.
func (s *Service) UploadMetadata(ctx context.Context, id string, coords *recording.Coordinates, remoteAddr string) (recording.Document, error) {
	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return recording.Document{}, recording.ErrNotFound
		}
		return recording.Document{}, err
	}

	loc, fromClient, err := s.resolver.Resolve(ctx, coords, remoteAddr)
	if err != nil {
		return recording.Document{}, err
	}
	doc.Location = loc
	doc.IsClientGeolocation = fromClient

	if err := s.docs.Put(ctx, doc); err != nil {
		return recording.Document{}, fmt.Errorf("store document: %w", err)
	}
	return doc, nil
}

var _ Resolver = (*geo.Resolver)(nil)
