package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MAPTY_"

// LoadDotEnv loads path into the process environment. Variables that are
// already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// FromEnv reads MAPTY_* variables into a config overlay.
func FromEnv() (FileConfig, error) {
	var cfg FileConfig
	var err error
	if cfg.Map.Zoom, err = envInt("ZOOM"); err != nil {
		return FileConfig{}, err
	}
	if cfg.Map.Lat, err = envFloat("LAT"); err != nil {
		return FileConfig{}, err
	}
	if cfg.Map.Lng, err = envFloat("LNG"); err != nil {
		return FileConfig{}, err
	}
	if raw := envString("GEO_TIMEOUT"); raw != nil {
		var d Duration
		if err := d.UnmarshalText([]byte(*raw)); err != nil {
			return FileConfig{}, fmt.Errorf("%sGEO_TIMEOUT: %w", EnvPrefix, err)
		}
		cfg.Map.GeoTimeout = &d
	}
	cfg.Map.Locale = envString("LOCALE")
	cfg.Map.Geolocation = envString("GEOLOCATION")
	cfg.Map.GeoEndpoint = envString("GEO_ENDPOINT")
	cfg.Map.TileURL = envString("TILE_URL")
	cfg.Map.Attribution = envString("ATTRIBUTION")
	cfg.Storage.DB = envString("DB")
	cfg.Log.Level = envString("LOG_LEVEL")
	cfg.Log.File = envString("LOG_FILE")
	return cfg, nil
}

func envString(name string) *string {
	value, ok := os.LookupEnv(EnvPrefix + name)
	if !ok {
		return nil
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func envInt(name string) (*int, error) {
	raw := envString(name)
	if raw == nil {
		return nil, nil
	}
	v, err := strconv.Atoi(*raw)
	if err != nil {
		return nil, fmt.Errorf("%s%s must be an integer: %w", EnvPrefix, name, err)
	}
	return &v, nil
}

func envFloat(name string) (*float64, error) {
	raw := envString(name)
	if raw == nil {
		return nil, nil
	}
	v, err := strconv.ParseFloat(*raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s%s must be a number: %w", EnvPrefix, name, err)
	}
	return &v, nil
}
