// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading with precedence ENV > file > defaults.
type Loader struct {
	configPath string
}

// NewLoader creates a configuration loader. configPath may be empty.
func NewLoader(configPath string) *Loader {
	return &Loader{configPath: configPath}
}

// LoadDotenv loads a .env file into the process environment if one exists in
// the working directory. Missing files are not an error; real environment
// variables win over .env entries.
func LoadDotenv() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
}

// Load builds the effective configuration: defaults, then the optional YAML
// file, then environment overrides, then validation.
func (l *Loader) Load() (AppConfig, error) {
	cfg := defaults()

	if l.configPath != "" {
		if err := mergeFile(&cfg, l.configPath); err != nil {
			return AppConfig{}, err
		}
	}

	mergeEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return AppConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func defaults() AppConfig {
	return AppConfig{
		ListenAddr: ":8080",
		DataDir:    "/var/lib/jamaisvu",
		LogLevel:   "info",
		DocStore: DocStoreConfig{
			Backend: DocStoreBadger,
		},
		ObjStore: ObjStoreConfig{
			Backend: ObjStoreS3,
			Region:  "us-south",
		},
		Geo: GeoConfig{
			IPLookupURL: "http://ip-api.com",
			CacheTTL:    6 * time.Hour,
		},
		Tracing: TracingConfig{
			SamplingRate: 0.1,
		},
		MaxUploadBytes:   8 << 20,
		PresignTTL:       30 * time.Second,
		RateLimitEnabled: true,
		RateLimitRPS:     20,
		RateLimitBurst:   40,
	}
}

func mergeFile(cfg *AppConfig, path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- path is operator-supplied via --config
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func mergeEnv(cfg *AppConfig) {
	cfg.ListenAddr = ParseString("JV_LISTEN", cfg.ListenAddr)
	cfg.DataDir = ParseString("JV_DATA", cfg.DataDir)
	cfg.LogLevel = ParseString("JV_LOG_LEVEL", cfg.LogLevel)

	cfg.DocStore.Backend = ParseString("JV_DOCSTORE_BACKEND", cfg.DocStore.Backend)
	cfg.DocStore.Path = ParseString("JV_DOCSTORE_PATH", cfg.DocStore.Path)
	if cfg.DocStore.Path == "" && cfg.DataDir != "" {
		switch cfg.DocStore.Backend {
		case DocStoreBadger:
			cfg.DocStore.Path = filepath.Join(cfg.DataDir, "docs")
		case DocStoreSQLite:
			cfg.DocStore.Path = filepath.Join(cfg.DataDir, "docs.sqlite")
		}
	}

	cfg.ObjStore.Backend = ParseString("JV_OBJSTORE_BACKEND", cfg.ObjStore.Backend)
	cfg.ObjStore.Endpoint = ParseString("JV_COS_ENDPOINT", cfg.ObjStore.Endpoint)
	cfg.ObjStore.Region = ParseString("JV_COS_REGION", cfg.ObjStore.Region)
	cfg.ObjStore.Bucket = ParseString("JV_COS_BUCKET", cfg.ObjStore.Bucket)
	cfg.ObjStore.AccessKey = ParseString("JV_COS_HMAC_KEY", cfg.ObjStore.AccessKey)
	cfg.ObjStore.SecretKey = ParseString("JV_COS_HMAC_SECRET", cfg.ObjStore.SecretKey)
	cfg.ObjStore.Root = ParseString("JV_OBJSTORE_ROOT", cfg.ObjStore.Root)

	cfg.Geo.IPLookupURL = ParseString("JV_GEO_IP_URL", cfg.Geo.IPLookupURL)
	cfg.Geo.GeocoderURL = ParseString("JV_GEO_GEOCODER_URL", cfg.Geo.GeocoderURL)
	cfg.Geo.CacheTTL = ParseDuration("JV_GEO_CACHE_TTL", cfg.Geo.CacheTTL)
	cfg.Geo.RedisAddr = ParseString("JV_GEO_REDIS_ADDR", cfg.Geo.RedisAddr)

	cfg.Tracing.Enabled = ParseBool("JV_TRACING_ENABLED", cfg.Tracing.Enabled)
	cfg.Tracing.ExporterType = ParseString("JV_TRACING_EXPORTER", cfg.Tracing.ExporterType)
	cfg.Tracing.Endpoint = ParseString("JV_TRACING_ENDPOINT", cfg.Tracing.Endpoint)
	cfg.Tracing.SamplingRate = ParseFloat("JV_TRACING_SAMPLING", cfg.Tracing.SamplingRate)

	cfg.MaxUploadBytes = ParseInt64("JV_MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	cfg.PresignTTL = ParseDuration("JV_PRESIGN_TTL", cfg.PresignTTL)

	cfg.TrustedProxies = ParseString("JV_TRUSTED_PROXIES", cfg.TrustedProxies)
	if origins := ParseString("JV_ALLOWED_ORIGINS", ""); origins != "" {
		cfg.AllowedOrigins = splitCSV(origins)
	}
	cfg.RateLimitEnabled = ParseBool("JV_RATELIMIT_ENABLED", cfg.RateLimitEnabled)
	cfg.RateLimitRPS = ParseInt("JV_RATELIMIT_RPS", cfg.RateLimitRPS)
	cfg.RateLimitBurst = ParseInt("JV_RATELIMIT_BURST", cfg.RateLimitBurst)
}
