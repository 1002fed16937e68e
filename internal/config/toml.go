// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Map     MapConfig     `toml:"map"`
	Storage StorageConfig `toml:"storage"`
	Log     LogConfig     `toml:"log"`
}

// MapConfig maps map and geolocation settings.
type MapConfig struct {
	Zoom        *int      `toml:"zoom"`
	Locale      *string   `toml:"locale"`
	Geolocation *string   `toml:"geolocation"`
	Lat         *float64  `toml:"lat"`
	Lng         *float64  `toml:"lng"`
	GeoEndpoint *string   `toml:"geo-endpoint"`
	GeoTimeout  *Duration `toml:"geo-timeout"`
	TileURL     *string   `toml:"tile-url"`
	Attribution *string   `toml:"attribution"`
}

// StorageConfig maps storage settings.
type StorageConfig struct {
	DB *string `toml:"db"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// Duration decodes values such as "5s" or "1m30s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Merge returns base with every value set in overlay replacing it.
func Merge(base, overlay FileConfig) FileConfig {
	out := base
	mergePtr(&out.Map.Zoom, overlay.Map.Zoom)
	mergePtr(&out.Map.Locale, overlay.Map.Locale)
	mergePtr(&out.Map.Geolocation, overlay.Map.Geolocation)
	mergePtr(&out.Map.Lat, overlay.Map.Lat)
	mergePtr(&out.Map.Lng, overlay.Map.Lng)
	mergePtr(&out.Map.GeoEndpoint, overlay.Map.GeoEndpoint)
	mergePtr(&out.Map.GeoTimeout, overlay.Map.GeoTimeout)
	mergePtr(&out.Map.TileURL, overlay.Map.TileURL)
	mergePtr(&out.Map.Attribution, overlay.Map.Attribution)
	mergePtr(&out.Storage.DB, overlay.Storage.DB)
	mergePtr(&out.Log.Level, overlay.Log.Level)
	mergePtr(&out.Log.File, overlay.Log.File)
	return out
}

func mergePtr[T any](target **T, value *T) {
	if value != nil {
		*target = value
	}
}
