package form

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/mapty/internal/workout"
)

var at = workout.Coords{Lat: 51.5, Lng: -0.1}

func clock() time.Time {
	return time.Date(2026, time.October, 17, 9, 30, 0, 0, time.UTC)
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, 0.0, ParseNumber(""))
	assert.Equal(t, 0.0, ParseNumber("   "))
	assert.Equal(t, 12.5, ParseNumber(" 12.5 "))
	assert.Equal(t, 1000.0, ParseNumber("1e3"))
	assert.True(t, math.IsNaN(ParseNumber("abc")))
	assert.True(t, math.IsNaN(ParseNumber("5km")))
	assert.True(t, math.IsInf(ParseNumber("1e400"), 1))
}

func TestBuildRunning(t *testing.T) {
	w, err := Build(Input{Kind: "running", Distance: "5", Duration: "30", Cadence: "150"}, at, workout.WithClock(clock))
	require.NoError(t, err)
	assert.Equal(t, workout.KindRunning, w.Kind)
	assert.Equal(t, at, w.Coords)
	assert.Equal(t, 6.0, w.Running.Pace)
	assert.Equal(t, 150.0, w.Running.Cadence)
}

func TestBuildCyclingAllowsNegativeOrEmptyElevation(t *testing.T) {
	for _, elevation := range []string{"-40", "0", ""} {
		w, err := Build(Input{Kind: "cycling", Distance: "20", Duration: "60", Elevation: elevation}, at)
		require.NoError(t, err, elevation)
		assert.Equal(t, ParseNumber(elevation), w.Cycling.ElevationGain)
		assert.Equal(t, 20.0, w.Cycling.Speed)
	}
}

func TestBuildRejectsInvalidInput(t *testing.T) {
	cases := map[string]Input{
		"running zero distance":     {Kind: "running", Distance: "0", Duration: "30", Cadence: "150"},
		"running negative duration": {Kind: "running", Distance: "5", Duration: "-30", Cadence: "150"},
		"running text cadence":      {Kind: "running", Distance: "5", Duration: "30", Cadence: "fast"},
		"running empty cadence":     {Kind: "running", Distance: "5", Duration: "30", Cadence: ""},
		"running zero cadence":      {Kind: "running", Distance: "5", Duration: "30", Cadence: "0"},
		"running infinite distance": {Kind: "running", Distance: "Inf", Duration: "30", Cadence: "150"},
		"cycling empty distance":    {Kind: "cycling", Distance: "", Duration: "30", Elevation: "10"},
		"cycling text duration":     {Kind: "cycling", Distance: "5", Duration: "half hour", Elevation: "10"},
		"cycling nan elevation":     {Kind: "cycling", Distance: "5", Duration: "30", Elevation: "NaN"},
		"cycling non-numeric elev":  {Kind: "cycling", Distance: "5", Duration: "30", Elevation: "hilly"},
		"cycling negative distance": {Kind: "cycling", Distance: "-5", Duration: "30", Elevation: "10"},
		"running negative cadence":  {Kind: "running", Distance: "5", Duration: "30", Cadence: "-1", Elevation: "10"},
		"cycling zero duration":     {Kind: "cycling", Distance: "5", Duration: "0", Cadence: "150", Elevation: "10"},
	}
	for name, input := range cases {
		_, err := Build(input, at)
		assert.True(t, errors.Is(err, ErrInvalidInput), name)
	}
}

func TestBuildUnknownKind(t *testing.T) {
	_, err := Build(Input{Kind: "rowing", Distance: "5", Duration: "30"}, at)
	assert.ErrorIs(t, err, ErrUnknownKind)
}
