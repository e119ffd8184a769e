package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadClean(t *testing.T, path string) *Config {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Chdir(t.TempDir())

	cfg, err := Load(path)
	require.NoError(t, err)
	return cfg
}

func TestLoad_Defaults(t *testing.T) {
	cfg := loadClean(t, "")

	assert.Equal(t, 4.0, cfg.SelfServe.RateLimit)
	assert.Equal(t, 4.0, cfg.ResultSet.RateLimit)

	assert.Equal(t, "http", cfg.Archive.Source)
	assert.Equal(t, 2.0, cfg.Archive.RateLimit)
	assert.Equal(t, 32, cfg.Archive.DayCacheSize)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 120*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "structured", cfg.Logging.Profile)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "verdict.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
selfserve:
  base_url: https://ci.example.org/buildapi/self-serve
  rate_limit: 1.5
archive:
  source: s3
  s3:
    bucket: build-dumps
    region: us-east-1
server:
  port: 9090
  read_timeout: 45s
logging:
  level: debug
`), 0o600))

	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://ci.example.org/buildapi/self-serve", cfg.SelfServe.BaseURL)
	assert.Equal(t, 1.5, cfg.SelfServe.RateLimit)
	assert.Equal(t, "s3", cfg.Archive.Source)
	assert.Equal(t, "build-dumps", cfg.Archive.S3.Bucket)
	assert.Equal(t, "us-east-1", cfg.Archive.S3.Region)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 45*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Untouched keys keep their defaults.
	assert.Equal(t, 4.0, cfg.ResultSet.RateLimit)
	assert.Equal(t, "localhost", cfg.Server.Host)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("VERDICT_SERVER_PORT", "7070")
	t.Setenv("VERDICT_LOGGING_LEVEL", "warn")

	cfg := loadClean(t, "")

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
