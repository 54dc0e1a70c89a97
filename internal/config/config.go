// SPDX-License-Identifier: MIT

// Package config loads and validates service configuration with precedence
// ENV > file > defaults. A missing or malformed required value prevents
// startup.
package config

import (
	"fmt"
	"time"
)

// Store backend identifiers.
const (
	DocStoreBadger = "badger"
	DocStoreSQLite = "sqlite"
	DocStoreMemory = "memory"

	ObjStoreS3         = "s3"
	ObjStoreFilesystem = "fs"
	ObjStoreMemory     = "memory"
)

// DocStoreConfig selects and configures the document store backend.
type DocStoreConfig struct {
	Backend string `yaml:"backend"` // badger | sqlite | memory
	Path    string `yaml:"path"`    // directory (badger) or file (sqlite)
}

// ObjStoreConfig selects and configures the object store backend.
type ObjStoreConfig struct {
	Backend string `yaml:"backend"` // s3 | fs | memory

	// S3-compatible settings (IBM COS speaks the S3 API).
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`

	// Filesystem settings.
	Root string `yaml:"root"`
}

// GeoConfig configures the location-resolution services.
type GeoConfig struct {
	IPLookupURL string        `yaml:"ipLookupURL"` // IP-to-coordinates service base URL
	GeocoderURL string        `yaml:"geocoderURL"` // coordinates-to-city service base URL (optional)
	CacheTTL    time.Duration `yaml:"cacheTTL"`    // TTL for cached IP lookups
	RedisAddr   string        `yaml:"redisAddr"`   // optional; empty selects the in-memory cache
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	ExporterType string  `yaml:"exporterType"` // grpc | http
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
}

// AppConfig is the complete service configuration.
type AppConfig struct {
	ListenAddr string `yaml:"listenAddr"`
	DataDir    string `yaml:"dataDir"`
	LogLevel   string `yaml:"logLevel"`

	DocStore DocStoreConfig `yaml:"docStore"`
	ObjStore ObjStoreConfig `yaml:"objStore"`
	Geo      GeoConfig      `yaml:"geo"`
	Tracing  TracingConfig  `yaml:"tracing"`

	// Upload limits and presigning.
	MaxUploadBytes int64         `yaml:"maxUploadBytes"`
	PresignTTL     time.Duration `yaml:"presignTTL"`

	// HTTP ingress.
	TrustedProxies   string   `yaml:"trustedProxies"` // CSV of CIDRs
	AllowedOrigins   []string `yaml:"allowedOrigins"`
	RateLimitEnabled bool     `yaml:"rateLimitEnabled"`
	RateLimitRPS     int      `yaml:"rateLimitRPS"`
	RateLimitBurst   int      `yaml:"rateLimitBurst"`
}

// Validate checks that the configuration is complete enough to start.
func (c *AppConfig) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive, got %d", c.MaxUploadBytes)
	}
	if c.PresignTTL <= 0 {
		return fmt.Errorf("presign TTL must be positive, got %s", c.PresignTTL)
	}

	switch c.DocStore.Backend {
	case DocStoreBadger, DocStoreSQLite:
		if c.DocStore.Path == "" {
			return fmt.Errorf("document store backend %q requires JV_DOCSTORE_PATH", c.DocStore.Backend)
		}
	case DocStoreMemory:
	default:
		return fmt.Errorf("unknown document store backend: %q", c.DocStore.Backend)
	}

	switch c.ObjStore.Backend {
	case ObjStoreS3:
		if c.ObjStore.Endpoint == "" {
			return fmt.Errorf("s3 object store requires JV_COS_ENDPOINT")
		}
		if c.ObjStore.Bucket == "" {
			return fmt.Errorf("s3 object store requires JV_COS_BUCKET")
		}
		if c.ObjStore.AccessKey == "" || c.ObjStore.SecretKey == "" {
			return fmt.Errorf("s3 object store requires JV_COS_HMAC_KEY and JV_COS_HMAC_SECRET")
		}
	case ObjStoreFilesystem:
		if c.ObjStore.Root == "" {
			return fmt.Errorf("filesystem object store requires JV_OBJSTORE_ROOT")
		}
	case ObjStoreMemory:
	default:
		return fmt.Errorf("unknown object store backend: %q", c.ObjStore.Backend)
	}

	if c.Geo.IPLookupURL == "" {
		return fmt.Errorf("geo resolution requires JV_GEO_IP_URL")
	}

	if c.Tracing.Enabled {
		switch c.Tracing.ExporterType {
		case "grpc", "http":
		default:
			return fmt.Errorf("unsupported tracing exporter: %q", c.Tracing.ExporterType)
		}
		if c.Tracing.Endpoint == "" {
			return fmt.Errorf("tracing requires JV_TRACING_ENDPOINT when enabled")
		}
	}

	return nil
}
