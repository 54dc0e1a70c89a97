// SPDX-License-Identifier: MIT

// Package api provides the HTTP surface of the jamaisvu service.
package api

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jamaisvu/jamaisvu/internal/api/middleware"
	"github.com/jamaisvu/jamaisvu/internal/config"
	"github.com/jamaisvu/jamaisvu/internal/log"
	"github.com/jamaisvu/jamaisvu/internal/service"
)

// Server is the HTTP API server. Construct with New, then Serve.
type Server struct {
	cfg            config.AppConfig
	svc            *service.Service
	trustedProxies []*net.IPNet
	httpServer     *http.Server
}

// New creates the API server around the given service.
func New(cfg config.AppConfig, svc *service.Service) *Server {
	s := &Server{cfg: cfg, svc: svc}

	if cfg.TrustedProxies != "" {
		proxies, err := middleware.ParseCIDRs(splitCSV(cfg.TrustedProxies))
		if err != nil {
			logger := log.WithComponent("api")
			logger.Warn().
				Err(err).
				Msg("invalid trusted proxies configuration, ignoring value")
		} else {
			s.trustedProxies = proxies
		}
	}
	return s
}

// Handler builds the complete route tree.
func (s *Server) Handler() http.Handler {
	tracing := ""
	if s.cfg.Tracing.Enabled {
		tracing = "jamaisvu-api"
	}
	r := middleware.NewRouter(middleware.StackConfig{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		TrustedProxies:   s.trustedProxies,
		TracingService:   tracing,
		RateLimitEnabled: s.cfg.RateLimitEnabled,
		RateLimitRPS:     s.cfg.RateLimitRPS,
		RateLimitBurst:   s.cfg.RateLimitBurst,
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/recordings", s.handleUpload)
		r.Get("/recordings", s.handleList)
		r.Get("/recordings/random", s.handleRandom)
		r.Post("/recordings/{id}/metadata", s.handleUploadMetadata)
		r.Get("/recordings/{id}", s.handleGet)
		r.Get("/locations", s.handleLocations)
	})

	return r
}

// Serve runs the HTTP server until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
