// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimit applies a per-IP request limit. Burst headroom is expressed by
// widening the window allowance.
func RateLimit(rps, burst int) func(http.Handler) http.Handler {
	if rps <= 0 {
		rps = 20
	}
	limit := rps
	if burst > limit {
		limit = burst
	}
	return httprate.LimitByIP(limit, time.Second)
}
