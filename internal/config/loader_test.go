// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// s3Env sets the minimum S3 credentials validation requires.
func s3Env(t *testing.T) {
	t.Helper()
	t.Setenv("JV_COS_ENDPOINT", "https://s3.example.test")
	t.Setenv("JV_COS_BUCKET", "recordings")
	t.Setenv("JV_COS_HMAC_KEY", "key")
	t.Setenv("JV_COS_HMAC_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	s3Env(t)

	cfg, err := NewLoader("").Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DocStoreBadger, cfg.DocStore.Backend)
	assert.Equal(t, ObjStoreS3, cfg.ObjStore.Backend)
	assert.Equal(t, "us-south", cfg.ObjStore.Region)
	assert.Equal(t, "http://ip-api.com", cfg.Geo.IPLookupURL)
	assert.Equal(t, 6*time.Hour, cfg.Geo.CacheTTL)
	assert.Equal(t, int64(8<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 30*time.Second, cfg.PresignTTL)
	assert.True(t, cfg.RateLimitEnabled)
}

func TestLoad_DocStorePathDerivedFromDataDir(t *testing.T) {
	s3Env(t)
	t.Setenv("JV_DATA", "/srv/jv")

	cfg, err := NewLoader("").Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/srv/jv", "docs"), cfg.DocStore.Path)

	t.Setenv("JV_DOCSTORE_BACKEND", "sqlite")
	cfg, err = NewLoader("").Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/srv/jv", "docs.sqlite"), cfg.DocStore.Path)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	s3Env(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listenAddr: \":9000\"\nlogLevel: debug\n"), 0o600))

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "debug", cfg.LogLevel)

	t.Setenv("JV_LISTEN", ":7000")
	cfg, err = NewLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.ListenAddr, "environment must win over the file")
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_UnknownFileKeyFails(t *testing.T) {
	s3Env(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listenAdress: \":9000\"\n"), 0o600))

	_, err := NewLoader(path).Load()
	require.Error(t, err, "typos in the config file must not pass silently")
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "s3 without credentials",
			env:  map[string]string{"JV_COS_ENDPOINT": "https://s3.example.test", "JV_COS_BUCKET": "b"},
		},
		{
			name: "unknown docstore backend",
			env:  map[string]string{"JV_OBJSTORE_BACKEND": "memory", "JV_DOCSTORE_BACKEND": "bogus"},
		},
		{
			name: "fs objstore without root",
			env:  map[string]string{"JV_OBJSTORE_BACKEND": "fs"},
		},
		{
			name: "tracing enabled without endpoint",
			env: map[string]string{
				"JV_OBJSTORE_BACKEND": "memory",
				"JV_TRACING_ENABLED":  "true",
				"JV_TRACING_EXPORTER": "grpc",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := NewLoader("").Load()
			require.Error(t, err)
		})
	}
}

func TestLoad_GeoSettings(t *testing.T) {
	t.Setenv("JV_OBJSTORE_BACKEND", "memory")
	t.Setenv("JV_GEO_IP_URL", "http://geo.internal")
	t.Setenv("JV_GEO_GEOCODER_URL", "http://rgc.internal")
	t.Setenv("JV_GEO_CACHE_TTL", "30m")
	t.Setenv("JV_GEO_REDIS_ADDR", "localhost:6379")

	cfg, err := NewLoader("").Load()
	require.NoError(t, err)
	assert.Equal(t, "http://geo.internal", cfg.Geo.IPLookupURL)
	assert.Equal(t, "http://rgc.internal", cfg.Geo.GeocoderURL)
	assert.Equal(t, 30*time.Minute, cfg.Geo.CacheTTL)
	assert.Equal(t, "localhost:6379", cfg.Geo.RedisAddr)
}

func TestParseHelpers(t *testing.T) {
	t.Setenv("JV_TEST_INT", "42")
	assert.Equal(t, 42, ParseInt("JV_TEST_INT", 7))
	assert.Equal(t, 7, ParseInt("JV_TEST_INT_MISSING", 7))

	t.Setenv("JV_TEST_BAD_INT", "forty-two")
	assert.Equal(t, 7, ParseInt("JV_TEST_BAD_INT", 7))

	t.Setenv("JV_TEST_DUR", "90s")
	assert.Equal(t, 90*time.Second, ParseDuration("JV_TEST_DUR", time.Minute))

	t.Setenv("JV_TEST_BOOL", "true")
	assert.True(t, ParseBool("JV_TEST_BOOL", false))

	t.Setenv("JV_TEST_FLOAT", "0.25")
	assert.Equal(t, 0.25, ParseFloat("JV_TEST_FLOAT", 1.0))
}
