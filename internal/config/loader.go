package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// SetDefaults installs the configuration defaults on the global viper.
func SetDefaults() {
	viper.SetDefault("selfserve.base_url", "")
	viper.SetDefault("selfserve.rate_limit", 4.0)

	viper.SetDefault("resultset.base_url", "")
	viper.SetDefault("resultset.rate_limit", 4.0)

	viper.SetDefault("archive.source", "http")
	viper.SetDefault("archive.base_url", "")
	viper.SetDefault("archive.rate_limit", 2.0)
	viper.SetDefault("archive.day_cache_size", 32)

	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.shutdown_timeout", "10s")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.profile", "structured")
}

// Load reads an optional config file plus VERDICT_* environment variables
// into a typed Config. path may be empty, in which case only search paths
// are consulted.
func Load(path string) (*Config, error) {
	SetDefaults()

	viper.SetEnvPrefix("VERDICT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		viper.SetConfigName("verdict")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.config/verdict")
		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := viper.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}
