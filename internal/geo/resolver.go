// SPDX-License-Identifier: MIT

package geo

import (
	"context"
	"encoding/json"
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/jamaisvu/jamaisvu/internal/cache"
	"github.com/jamaisvu/jamaisvu/internal/recording"
)

// Resolver determines an upload's geographic location. Client-supplied
// coordinates win; otherwise the caller's network address is looked up.
// A failed city lookup never aborts resolution: the city field is omitted
// and a warning logged.
type Resolver struct {
	ip       *IPLookupClient
	geocoder *GeocoderClient // nil disables reverse geocoding
	cache    cache.Cache     // nil disables lookup memoization
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewResolver creates a Resolver. geocoder and lookupCache may be nil.
func NewResolver(ip *IPLookupClient, geocoder *GeocoderClient, lookupCache cache.Cache, cacheTTL time.Duration, logger zerolog.Logger) *Resolver {
	return &Resolver{
		ip:       ip,
		geocoder: geocoder,
		cache:    lookupCache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Resolve returns the location for an upload and whether it came from the
// client's own positioning. No retries: a single failed lookup fails the
// whole resolution step.
func (r *Resolver) Resolve(ctx context.Context, coords *recording.Coordinates, remoteAddr string) (recording.Location, bool, error) {
	if coords != nil {
		loc := recording.Location{Latitude: coords.Latitude, Longitude: coords.Longitude}
		loc.City = r.cityFor(ctx, loc.Latitude, loc.Longitude)
		return loc, true, nil
	}

	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	if net.ParseIP(host) == nil {
		return recording.Location{}, false, &LookupError{Operation: "parse address", Address: remoteAddr}
	}

	if loc, ok := r.cached(ctx, host); ok {
		return loc, false, nil
	}

	lat, lon, city, err := r.ip.Lookup(ctx, host)
	if err != nil {
		return recording.Location{}, false, err
	}
	loc := recording.Location{Latitude: lat, Longitude: lon, City: city}
	if loc.City == "" {
		loc.City = r.cityFor(ctx, lat, lon)
	}
	r.store(ctx, host, loc)
	return loc, false, nil
}

// cityFor reverse-geocodes best-effort; failures only cost the city field.
func (r *Resolver) cityFor(ctx context.Context, lat, lon float64) string {
	if r.geocoder == nil {
		return ""
	}
	city, err := r.geocoder.City(ctx, lat, lon)
	if err != nil {
		r.logger.Warn().
			Err(err).
			Float64("lat", lat).
			Float64("lon", lon).
			Str("event", "geo.city_lookup_failed").
			Msg("omitting city name")
		return ""
	}
	return city
}

func (r *Resolver) cached(ctx context.Context, host string) (recording.Location, bool) {
	if r.cache == nil {
		return recording.Location{}, false
	}
	raw, ok := r.cache.Get(ctx, "geo:"+host)
	if !ok {
		return recording.Location{}, false
	}
	var loc recording.Location
	if err := json.Unmarshal(raw, &loc); err != nil {
		return recording.Location{}, false
	}
	return loc, true
}

func (r *Resolver) store(ctx context.Context, host string, loc recording.Location) {
	if r.cache == nil {
		return
	}
	raw, err := json.Marshal(loc)
	if err != nil {
		return
	}
	r.cache.Set(ctx, "geo:"+host, raw, r.cacheTTL)
}
