// SPDX-License-Identifier: MIT

// Package middleware provides the canonical HTTP ingress middleware stack.
package middleware

import (
	"net"

	"github.com/go-chi/chi/v5"
)

// StackConfig configures the ingress middleware stack.
type StackConfig struct {
	// CORS
	AllowedOrigins []string

	// Proxy trust for client-IP extraction
	TrustedProxies []*net.IPNet

	// Observability
	TracingService string // empty disables tracing

	// Rate limiting
	RateLimitEnabled bool
	RateLimitRPS     int
	RateLimitBurst   int
}

// NewRouter constructs a chi router with the canonical middleware stack.
func NewRouter(cfg StackConfig) *chi.Mux {
	r := chi.NewRouter()
	ApplyStack(r, cfg)
	return r
}

// ApplyStack applies the middleware stack to r. Order matters: the
// recoverer is the outermost safety net, correlation comes before anything
// that logs, and rate limiting runs last so rejected requests are still
// observed.
func ApplyStack(r chi.Router, cfg StackConfig) {
	r.Use(Recoverer)
	r.Use(RequestID)
	r.Use(CORS(cfg.AllowedOrigins))
	r.Use(SecurityHeaders)
	r.Use(Metrics())
	if cfg.TracingService != "" {
		r.Use(Tracing(cfg.TracingService))
	}
	r.Use(Logging())
	if cfg.RateLimitEnabled {
		r.Use(RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	}
}

// ParseCIDRs parses a list of CIDR strings.
func ParseCIDRs(list []string) ([]*net.IPNet, error) {
	out := make([]*net.IPNet, 0, len(list))
	for _, raw := range list {
		_, ipnet, err := net.ParseCIDR(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, ipnet)
	}
	return out, nil
}
