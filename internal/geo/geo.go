// Package geo provides one-shot geolocation.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/verte-zerg/mapty/internal/workout"
)

// DefaultEndpoint is the IP geolocation service queried by IP.
const DefaultEndpoint = "http://ip-api.com/json"

// ErrUnavailable is returned when no position can be determined.
var ErrUnavailable = errors.New("geolocation unavailable")

// Locator yields the user's position once per call.
type Locator interface {
	Locate(ctx context.Context) (workout.Coords, error)
}

// Static always returns the same fix.
type Static struct {
	Coords workout.Coords
}

// Locate implements Locator.
func (s Static) Locate(context.Context) (workout.Coords, error) {
	return s.Coords, nil
}

// Disabled always fails, like a denied permission prompt.
type Disabled struct{}

// Locate implements Locator.
func (Disabled) Locate(context.Context) (workout.Coords, error) {
	return workout.Coords{}, ErrUnavailable
}

// IP resolves the position from the public address via an HTTP JSON service.
// A successful fix is cached for the lifetime of the locator.
type IP struct {
	endpoint string
	client   *http.Client
	cache    *cache.Cache
}

type ipResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// NewIP returns an IP locator. An empty endpoint uses DefaultEndpoint.
func NewIP(endpoint string, timeout time.Duration) *IP {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &IP{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		cache:    cache.New(cache.NoExpiration, 0),
	}
}

// Locate implements Locator.
func (l *IP) Locate(ctx context.Context) (workout.Coords, error) {
	if cached, ok := l.cache.Get(l.endpoint); ok {
		return cached.(workout.Coords), nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.endpoint, nil)
	if err != nil {
		return workout.Coords{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := l.client.Do(req)
	if err != nil {
		return workout.Coords{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return workout.Coords{}, fmt.Errorf("%w: unexpected status %s", ErrUnavailable, resp.Status)
	}

	var payload ipResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return workout.Coords{}, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if payload.Status != "" && payload.Status != "success" {
		return workout.Coords{}, fmt.Errorf("%w: %s", ErrUnavailable, payload.Message)
	}
	coords := workout.Coords{Lat: payload.Lat, Lng: payload.Lon}
	if !validCoords(coords) {
		return workout.Coords{}, fmt.Errorf("%w: coordinates out of range", ErrUnavailable)
	}
	l.cache.Set(l.endpoint, coords, cache.NoExpiration)
	return coords, nil
}

func validCoords(c workout.Coords) bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}
