// SPDX-License-Identifier: MIT

package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// GeocoderClient maps a coordinate to a human-readable place name.
type GeocoderClient struct {
	base string
	http *http.Client
}

// NewGeocoder creates a client for the given reverse-geocoding service.
func NewGeocoder(base string) *GeocoderClient {
	return &GeocoderClient{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// City resolves a coordinate to a city name. An empty string with nil error
// means the service had no name for the location.
func (c *GeocoderClient) City(ctx context.Context, lat, lon float64) (string, error) {
	u := fmt.Sprintf("%s/data/reverse-geocode-client?latitude=%f&longitude=%f&localityLanguage=en", c.base, lat, lon)
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocode: HTTP %d", res.StatusCode)
	}

	var p struct {
		City     string `json:"city"`
		Locality string `json:"locality"`
	}
	if err := json.NewDecoder(res.Body).Decode(&p); err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}
	if p.City != "" {
		return p.City, nil
	}
	return p.Locality, nil
}
