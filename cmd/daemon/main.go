// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jamaisvu/jamaisvu/internal/api"
	"github.com/jamaisvu/jamaisvu/internal/cache"
	"github.com/jamaisvu/jamaisvu/internal/config"
	"github.com/jamaisvu/jamaisvu/internal/docstore"
	"github.com/jamaisvu/jamaisvu/internal/geo"
	jvlog "github.com/jamaisvu/jamaisvu/internal/log"
	"github.com/jamaisvu/jamaisvu/internal/objstore"
	"github.com/jamaisvu/jamaisvu/internal/service"
	"github.com/jamaisvu/jamaisvu/internal/telemetry"
)

var (
	version   = "v1.0.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Configure logger with safe defaults until config is loaded
	jvlog.Configure(jvlog.Config{
		Level:   "info",
		Service: "jamaisvu",
		Version: version,
	})
	logger := jvlog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config.LoadDotenv()

	// Determine config path:
	// - Explicit via --config
	// - Otherwise auto-load ${JV_DATA}/config.yaml if it exists
	explicitConfigPath := strings.TrimSpace(*configPath)
	effectiveConfigPath := explicitConfigPath
	if effectiveConfigPath == "" {
		dataDir := strings.TrimSpace(config.ParseString("JV_DATA", "/var/lib/jamaisvu"))
		autoPath := filepath.Join(dataDir, "config.yaml")
		if _, err := os.Stat(autoPath); err == nil {
			effectiveConfigPath = autoPath
		}
	}

	// Load configuration with precedence: ENV > File > Defaults
	cfg, err := config.NewLoader(effectiveConfigPath).Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", effectiveConfigPath).
			Msg("failed to load configuration")
	}

	// Re-configure logger with loaded configuration
	jvlog.Configure(jvlog.Config{
		Level:   cfg.LogLevel,
		Service: "jamaisvu",
		Version: version,
	})

	if effectiveConfigPath != "" {
		source := "file"
		if explicitConfigPath == "" {
			source = "file(auto)"
		}
		logger.Info().
			Str("event", "config.loaded").
			Str("source", source).
			Str("path", effectiveConfigPath).
			Msg("loaded configuration from file")
	} else {
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "env+defaults").
			Msg("loaded configuration from environment and defaults")
	}

	logger.Info().
		Str("event", "startup").
		Str("version", version).
		Str("commit", commit).
		Str("build_date", buildDate).
		Str("addr", cfg.ListenAddr).
		Msg("starting jamaisvu")

	logger.Info().Msgf("→ Document store: %s (%s)", cfg.DocStore.Backend, cfg.DocStore.Path)
	logger.Info().Msgf("→ Object store: %s", cfg.ObjStore.Backend)
	logger.Info().Msgf("→ IP lookup: %s", cfg.Geo.IPLookupURL)
	if cfg.Geo.GeocoderURL != "" {
		logger.Info().Msgf("→ Reverse geocoder: %s", cfg.Geo.GeocoderURL)
	} else {
		logger.Info().Msg("→ Reverse geocoder: disabled (city names omitted)")
	}
	logger.Info().Msgf("→ Data dir: %s", cfg.DataDir)

	if err := run(ctx, cfg); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "daemon.failed").
			Msg("daemon exited with error")
	}
	logger.Info().Str("event", "shutdown.complete").Msg("daemon stopped")
}

// run wires the stores, the resolver and the HTTP server, then blocks until
// ctx is canceled. All owned resources are closed on the way out.
func run(ctx context.Context, cfg config.AppConfig) error {
	logger := jvlog.WithComponent("daemon")

	provider, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    "jamaisvu",
		ServiceVersion: version,
		ExporterType:   cfg.Tracing.ExporterType,
		Endpoint:       cfg.Tracing.Endpoint,
		SamplingRate:   cfg.Tracing.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("tracer shutdown failed")
		}
	}()

	docs, err := docstore.New(cfg.DocStore)
	if err != nil {
		return fmt.Errorf("open document store: %w", err)
	}
	defer func() {
		if err := docs.Close(); err != nil {
			logger.Warn().Err(err).Msg("document store close failed")
		}
	}()

	objects, err := objstore.New(ctx, cfg.ObjStore)
	if err != nil {
		return fmt.Errorf("open object store: %w", err)
	}
	defer func() {
		if err := objects.Close(); err != nil {
			logger.Warn().Err(err).Msg("object store close failed")
		}
	}()

	var lookupCache cache.Cache
	if cfg.Geo.RedisAddr != "" {
		lookupCache, err = cache.NewRedis(cfg.Geo.RedisAddr, jvlog.WithComponent("cache"))
		if err != nil {
			return fmt.Errorf("connect redis cache: %w", err)
		}
	} else {
		lookupCache = cache.NewMemory(time.Minute)
	}
	defer func() {
		if err := lookupCache.Close(); err != nil {
			logger.Warn().Err(err).Msg("cache close failed")
		}
	}()

	var geocoder *geo.GeocoderClient
	if cfg.Geo.GeocoderURL != "" {
		geocoder = geo.NewGeocoder(cfg.Geo.GeocoderURL)
	}
	resolver := geo.NewResolver(
		geo.NewIPLookup(cfg.Geo.IPLookupURL),
		geocoder,
		lookupCache,
		cfg.Geo.CacheTTL,
		jvlog.WithComponent("geo"),
	)

	svc := service.New(docs, objects, resolver, cfg.PresignTTL)
	server := api.New(cfg, svc)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Serve(gctx)
	})
	return g.Wait()
}
