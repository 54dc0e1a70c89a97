// SPDX-License-Identifier: MIT

package geo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamaisvu/jamaisvu/internal/cache"
	"github.com/jamaisvu/jamaisvu/internal/recording"
)

// fakeIPService mimics the ip-api JSON shape and counts lookups.
func fakeIPService(t *testing.T, status, city string) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":%q,"message":"reserved range","lat":45.5017,"lon":-73.5673,"city":%q}`, status, city)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func fakeGeocoder(t *testing.T, code int, city string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if code != http.StatusOK {
			w.WriteHeader(code)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"city":%q,"locality":""}`, city)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestResolver_ClientCoordinatesWin(t *testing.T) {
	ipSrv, ipCalls := fakeIPService(t, "success", "Wrong City")
	geoSrv := fakeGeocoder(t, http.StatusOK, "Montreal")

	r := NewResolver(NewIPLookup(ipSrv.URL), NewGeocoder(geoSrv.URL), nil, 0, zerolog.Nop())

	coords := &recording.Coordinates{Latitude: 45.5017, Longitude: -73.5673}
	loc, fromClient, err := r.Resolve(context.Background(), coords, "203.0.113.9:1234")
	require.NoError(t, err)
	assert.True(t, fromClient)
	assert.Equal(t, 45.5017, loc.Latitude)
	assert.Equal(t, -73.5673, loc.Longitude)
	assert.Equal(t, "Montreal", loc.City)
	assert.Zero(t, ipCalls.Load(), "client coordinates must not trigger an address lookup")
}

func TestResolver_FallsBackToAddressLookup(t *testing.T) {
	ipSrv, _ := fakeIPService(t, "success", "Montreal")

	r := NewResolver(NewIPLookup(ipSrv.URL), nil, nil, 0, zerolog.Nop())

	loc, fromClient, err := r.Resolve(context.Background(), nil, "203.0.113.9:1234")
	require.NoError(t, err)
	assert.False(t, fromClient)
	assert.Equal(t, 45.5017, loc.Latitude)
	assert.Equal(t, -73.5673, loc.Longitude)
	assert.Equal(t, "Montreal", loc.City)
}

func TestResolver_GeocoderFailureOmitsCity(t *testing.T) {
	geoSrv := fakeGeocoder(t, http.StatusInternalServerError, "")

	r := NewResolver(nil, NewGeocoder(geoSrv.URL), nil, 0, zerolog.Nop())

	coords := &recording.Coordinates{Latitude: 45.5017, Longitude: -73.5673}
	loc, fromClient, err := r.Resolve(context.Background(), coords, "")
	require.NoError(t, err, "a failed city lookup must not abort resolution")
	assert.True(t, fromClient)
	assert.Empty(t, loc.City)
	assert.Equal(t, 45.5017, loc.Latitude)
}

func TestResolver_InvalidAddress(t *testing.T) {
	ipSrv, ipCalls := fakeIPService(t, "success", "")
	r := NewResolver(NewIPLookup(ipSrv.URL), nil, nil, 0, zerolog.Nop())

	_, _, err := r.Resolve(context.Background(), nil, "not-an-address")
	require.ErrorIs(t, err, ErrUnresolvable)
	assert.Zero(t, ipCalls.Load())
}

func TestResolver_LookupRejection(t *testing.T) {
	ipSrv, _ := fakeIPService(t, "fail", "")
	r := NewResolver(NewIPLookup(ipSrv.URL), nil, nil, 0, zerolog.Nop())

	_, _, err := r.Resolve(context.Background(), nil, "203.0.113.9:1234")
	require.ErrorIs(t, err, ErrUnresolvable)
}

func TestResolver_CachesAddressLookups(t *testing.T) {
	ipSrv, ipCalls := fakeIPService(t, "success", "Montreal")
	lookupCache := cache.NewMemory(0)
	defer lookupCache.Close()

	r := NewResolver(NewIPLookup(ipSrv.URL), nil, lookupCache, time.Hour, zerolog.Nop())

	ctx := context.Background()
	first, _, err := r.Resolve(ctx, nil, "203.0.113.9:1234")
	require.NoError(t, err)

	second, _, err := r.Resolve(ctx, nil, "203.0.113.9:5678")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), ipCalls.Load(), "second resolve must come from cache")
}

func TestIPLookupClient_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	_, _, _, err := NewIPLookup(srv.URL).Lookup(context.Background(), "203.0.113.9")
	require.ErrorIs(t, err, ErrUnresolvable)

	var le *LookupError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, http.StatusTooManyRequests, le.Status)
}

func TestGeocoderClient_FallsBackToLocality(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"city":"","locality":"Plateau-Mont-Royal"}`)
	}))
	t.Cleanup(srv.Close)

	city, err := NewGeocoder(srv.URL).City(context.Background(), 45.52, -73.58)
	require.NoError(t, err)
	assert.Equal(t, "Plateau-Mont-Royal", city)
}
