// SPDX-License-Identifier: MIT

package recording

import (
	"crypto/rand"
	"encoding/base64"
)

// idBytes yields a 12-character URL-safe identifier; 72 bits of randomness
// is collision-safe at crowdsource scale.
const idBytes = 9

// NewID generates a short random URL-safe identifier used as a document
// filename and, with ObjectExt, as the object-store key.
func NewID() string {
	buf := make([]byte, idBytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
