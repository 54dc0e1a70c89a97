// SPDX-License-Identifier: MIT

// Package recording defines the core domain types for crowdsourced
// ambient-sound recordings.
package recording

import "time"

// ObjectExt is the extension appended to a document's filename to form its
// object-store key.
const ObjectExt = ".wav"

// Location is a WGS84 coordinate pair with an optional human-readable
// place name.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city,omitempty"`
}

// Coordinates is a client-supplied coordinate pair, prior to resolution.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Document is the metadata record persisted once per upload.
//
// Filename is immutable after assignment and doubles as the document key and
// (with ObjectExt) the object-store key. Timestamp is epoch milliseconds.
type Document struct {
	Filename            string   `json:"filename"`
	Location            Location `json:"location"`
	IsClientGeolocation bool     `json:"isClientGeolocation"`
	Timestamp           int64    `json:"timestamp"`
}

// ObjectKey returns the object-store key for the document's audio payload.
func (d Document) ObjectKey() string {
	return d.Filename + ObjectExt
}

// NowMillis returns the current time as epoch milliseconds.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
