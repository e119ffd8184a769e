// Package config loads the typed application configuration from defaults,
// an optional config file, and VERDICT_* environment variables via viper.
package config

import "time"

// Config is the full application configuration.
type Config struct {
	SelfServe SelfServeConfig `mapstructure:"selfserve"`
	ResultSet ResultSetConfig `mapstructure:"resultset"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// SelfServeConfig configures the polling backend collaborator.
type SelfServeConfig struct {
	BaseURL   string  `mapstructure:"base_url"`
	RateLimit float64 `mapstructure:"rate_limit"`
}

// ResultSetConfig configures the results-set backend collaborator.
type ResultSetConfig struct {
	BaseURL   string  `mapstructure:"base_url"`
	RateLimit float64 `mapstructure:"rate_limit"`
}

// ArchiveConfig configures the archival partition source.
type ArchiveConfig struct {
	// Source selects the partition transport: "http" or "s3".
	Source string `mapstructure:"source"`

	BaseURL      string  `mapstructure:"base_url"`
	RateLimit    float64 `mapstructure:"rate_limit"`
	DayCacheSize int     `mapstructure:"day_cache_size"`

	S3 ArchiveS3Config `mapstructure:"s3"`
}

// ArchiveS3Config configures the S3 mirror source.
type ArchiveS3Config struct {
	Bucket         string `mapstructure:"bucket"`
	Prefix         string `mapstructure:"prefix"`
	Region         string `mapstructure:"region"`
	Endpoint       string `mapstructure:"endpoint"`
	Profile        string `mapstructure:"profile"`
	ForcePathStyle bool   `mapstructure:"force_path_style"`
}

// ServerConfig configures the embedded HTTP server.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig configures process logging.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Profile string `mapstructure:"profile"`
}
