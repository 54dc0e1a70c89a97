// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/jamaisvu/jamaisvu/internal/objstore"
	"github.com/jamaisvu/jamaisvu/internal/recording"
)

// List returns all metadata documents, unordered.
func (s *Service) List(ctx context.Context) ([]recording.Document, error) {
	return s.docs.List(ctx)
}

// Get returns the raw audio payload stored under filename.
func (s *Service) Get(ctx context.Context, filename string) ([]byte, error) {
	data, err := s.objects.Get(ctx, filename+recording.ObjectExt)
	if errors.Is(err, objstore.ErrNotFound) {
		return nil, recording.ErrNotFound
	}
	return data, err
}

// Random picks a uniformly random document and returns a time-limited
// signed URL for its object. Fails with the not-found sentinel when the
// store is empty or signing fails.
func (s *Service) Random(ctx context.Context) (string, error) {
	docs, err := s.docs.List(ctx)
	if err != nil {
		return "", err
	}
	if len(docs) == 0 {
		return "", recording.ErrNotFound
	}
	doc := docs[rand.Intn(len(docs))] // #nosec G404 -- selection is not security-sensitive

	url, err := s.objects.Presign(ctx, doc.ObjectKey(), s.presignTTL)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("event", "random.presign_failed").
			Str("object_key", doc.ObjectKey()).
			Msg("could not sign object URL")
		return "", fmt.Errorf("%w: presign failed", recording.ErrNotFound)
	}
	return url, nil
}

// LocationData bulk-transforms all documents into a GeoJSON point-feature
// collection for map rendering.
func (s *Service) LocationData(ctx context.Context) (*geojson.FeatureCollection, error) {
	docs, err := s.docs.List(ctx)
	if err != nil {
		return nil, err
	}

	fc := geojson.NewFeatureCollection()
	for _, doc := range docs {
		f := geojson.NewFeature(orb.Point{doc.Location.Longitude, doc.Location.Latitude})
		f.Properties["filename"] = doc.Filename
		if doc.Location.City != "" {
			f.Properties["city"] = doc.Location.City
		}
		f.Properties["isClientGeolocation"] = doc.IsClientGeolocation
		f.Properties["timestamp"] = doc.Timestamp
		fc.Append(f)
	}
	return fc, nil
}
