// Package config loads pagedb's optional YAML configuration file via
// viper, mirroring the teacher's internal.LoadConfig.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"pagedb/internal/storage"
)

// Config holds every CLI-overridable setting. Struct tags follow the
// mapstructure convention viper unmarshals against.
type Config struct {
	Storage struct {
		PageSize   int `mapstructure:"page_size"`
		CacheSlots int `mapstructure:"cache_slots"`
	} `mapstructure:"storage"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// Default returns a Config populated with the storage package's defaults
// and an "info" log level.
func Default() Config {
	var c Config
	c.Storage.PageSize = storage.DefaultPageSize
	c.Storage.CacheSlots = storage.DefaultCacheSlots
	c.Log.Level = "info"
	return c
}

// Load reads path (YAML) over top of Default, so a config file only
// needs to set the fields it wants to override.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	return cfg, nil
}
