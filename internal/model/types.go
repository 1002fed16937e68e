// Package model defines shared data structures.
package model

import "time"

// Geolocation modes.
const (
	GeoIP     = "ip"
	GeoStatic = "static"
	GeoOff    = "off"
)

// Config defines tracker settings after defaults, config file, environment
// and flags are applied.
type Config struct {
	Zoom        int
	Locale      string
	Geolocation string
	Lat         float64
	Lng         float64
	GeoEndpoint string
	GeoTimeout  time.Duration
	TileURL     string
	Attribution string
	DBPath      string
	LogLevel    string
	LogFile     string
}

// ListConfig defines options for the list and stats commands.
type ListConfig struct {
	Kind  string
	Since *time.Time
	Last  int
}
