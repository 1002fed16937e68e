package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/mapty/internal/workout"
)

func TestStaticAndDisabled(t *testing.T) {
	want := workout.Coords{Lat: 51.5, Lng: -0.1}
	got, err := Static{Coords: want}.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = Disabled{}.Locate(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestIPLocateCachesFix(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","lat":38.72,"lon":-9.14}`))
	}))
	defer srv.Close()

	l := NewIP(srv.URL, time.Second)
	for i := 0; i < 3; i++ {
		got, err := l.Locate(context.Background())
		require.NoError(t, err)
		assert.Equal(t, workout.Coords{Lat: 38.72, Lng: -9.14}, got)
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestIPLocateFailures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		},
		"fail body": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status":"fail","message":"private range"}`))
		},
		"garbage": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		},
		"range": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status":"success","lat":120,"lon":0}`))
		},
	}
	for name, handler := range cases {
		srv := httptest.NewServer(handler)
		_, err := NewIP(srv.URL, time.Second).Locate(context.Background())
		srv.Close()
		assert.True(t, errors.Is(err, ErrUnavailable), name)
	}
}

func TestIPLocateUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	_, err := NewIP(url, 200*time.Millisecond).Locate(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}
