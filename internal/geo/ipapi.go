// SPDX-License-Identifier: MIT

// Package geo resolves upload locations: client coordinates when supplied,
// otherwise a network-address lookup, optionally reverse-geocoded to a city.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// IPLookupClient queries an ip-api-shaped geolocation-by-address service.
type IPLookupClient struct {
	base string
	http *http.Client
}

// NewIPLookup creates a client for the given service base URL.
func NewIPLookup(base string) *IPLookupClient {
	return &IPLookupClient{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// Lookup resolves addr to a coordinate pair and, when the service knows it,
// a city name.
func (c *IPLookupClient) Lookup(ctx context.Context, addr string) (lat, lon float64, city string, err error) {
	u := fmt.Sprintf("%s/json/%s?fields=status,message,lat,lon,city", c.base, url.PathEscape(addr))
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	res, err := c.http.Do(req)
	if err != nil {
		return 0, 0, "", &LookupError{Operation: "ip lookup", Address: addr, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return 0, 0, "", &LookupError{Operation: "ip lookup", Address: addr, Status: res.StatusCode}
	}

	var p struct {
		Status  string  `json:"status"`
		Message string  `json:"message"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
		City    string  `json:"city"`
	}
	if err := json.NewDecoder(res.Body).Decode(&p); err != nil {
		return 0, 0, "", &LookupError{Operation: "ip lookup", Address: addr, Err: err}
	}
	if p.Status != "success" {
		return 0, 0, "", &LookupError{Operation: "ip lookup", Address: addr, Err: fmt.Errorf("service rejected address: %s", p.Message)}
	}
	return p.Lat, p.Lon, p.City, nil
}
