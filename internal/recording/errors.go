// SPDX-License-Identifier: MIT

package recording

import "errors"

// Sentinel errors for errors.Is checks at the HTTP boundary.
var (
	ErrUnsupportedMediaType = errors.New("recording: payload is not audio")
	ErrNotFound             = errors.New("recording: not found")
	ErrBadRequest           = errors.New("recording: malformed request")
)
