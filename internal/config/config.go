// Package config loads the instrument/grid configuration the drivers in
// internal/feed need, mirroring the original implementation's config.rs
// but loaded through viper instead of the Rust `config` crate.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// InstrumentConfig describes one instrument's dense price grid. Only ID
// is used by the sparse (tree) variant.
type InstrumentConfig struct {
	ID       uint64  `mapstructure:"id"`
	MinPrice float64 `mapstructure:"min_price"`
	MaxPrice float64 `mapstructure:"max_price"`
	TickSize float64 `mapstructure:"tick_size"`
}

// Config is the top-level configuration record: which instruments to
// track (and, for the array variant, their grids), and how large a
// chunk the incremental driver should read at a time.
type Config struct {
	Instruments           map[uint64]InstrumentConfig `mapstructure:"instruments"`
	IncrementalBufferSize int                         `mapstructure:"incremental_buffer_size"`
}

// Default mirrors main.rs's default_config(): no instruments configured,
// a 2048-byte incremental read buffer.
func Default() Config {
	return Config{
		Instruments:           map[uint64]InstrumentConfig{},
		IncrementalBufferSize: 2048,
	}
}

// Load reads a YAML configuration file from path.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config %q: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config %q: %w", path, err)
	}
	if cfg.IncrementalBufferSize <= 0 {
		cfg.IncrementalBufferSize = Default().IncrementalBufferSize
	}
	return cfg, nil
}
