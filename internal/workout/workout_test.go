package workout

import (
	"math"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.October, 17, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func TestRunningPace(t *testing.T) {
	cases := []struct{ distance, duration float64 }{
		{5, 30}, {10, 47.5}, {0.4, 2}, {42.195, 180}, {1e-3, 1e3},
	}
	for _, tc := range cases {
		w := NewRunning(tc.distance, tc.duration, Coords{}, 170, WithClock(fixedClock))
		require.NotNil(t, w.Running)
		assert.Nil(t, w.Cycling)
		assert.InDelta(t, tc.duration/tc.distance, w.Running.Pace, 1e-12)
		assert.Equal(t, 170.0, w.Running.Cadence)
	}
}

func TestCyclingSpeed(t *testing.T) {
	cases := []struct{ distance, duration float64 }{
		{27, 95}, {100, 240}, {3.3, 10}, {0.5, 0.5},
	}
	for _, tc := range cases {
		w := NewCycling(tc.distance, tc.duration, Coords{}, -12, WithClock(fixedClock))
		require.NotNil(t, w.Cycling)
		assert.Nil(t, w.Running)
		assert.InDelta(t, tc.distance/(tc.duration/60), w.Cycling.Speed, 1e-9)
		assert.Equal(t, -12.0, w.Cycling.ElevationGain)
	}
}

func TestNewRunningFields(t *testing.T) {
	coords := Coords{Lat: 51.5, Lng: -0.1}
	w := NewRunning(5, 30, coords, 150, WithClock(fixedClock))

	assert.Equal(t, KindRunning, w.Kind)
	assert.Equal(t, fixedNow, w.Date)
	assert.Equal(t, coords, w.Coords)
	assert.Equal(t, "Running on 17 October", w.Description)
	assert.Equal(t, "🏃 Running on 17 October", w.PopupContent())
	assert.Equal(t, 6.0, w.Running.Pace)
}

func TestNewCyclingDescription(t *testing.T) {
	w := NewCycling(20, 60, Coords{}, 300, WithClock(fixedClock))
	assert.Equal(t, "Cycling on 17 October", w.Description)
	assert.True(t, strings.HasPrefix(w.PopupContent(), "🚴 "))
}

func TestDescriptionLocale(t *testing.T) {
	loc, err := ParseLocale("de_DE.UTF-8")
	require.NoError(t, err)
	w := NewRunning(5, 30, Coords{}, 150, WithClock(fixedClock), WithLocale(loc))
	assert.Equal(t, "Running on 17 Oktober", w.Description)
}

func TestParseLocaleRejectsGarbage(t *testing.T) {
	_, err := ParseLocale("not a locale!")
	assert.Error(t, err)
	_, err = ParseLocale("")
	assert.Error(t, err)
}

func TestLocaleFromEnvFallsBack(t *testing.T) {
	for _, value := range []string{"", "C", "POSIX", "zz_ZZ"} {
		assert.Equal(t, DefaultLocale().String(), LocaleFromEnv(value).String(), value)
	}
}

func TestNewIDUsesLastTenDigits(t *testing.T) {
	id := NewID(fixedNow)
	full := strconv.FormatInt(fixedNow.UnixMilli(), 10)
	require.Len(t, id, 10)
	assert.True(t, strings.HasSuffix(full, id))

	later := NewID(fixedNow.Add(time.Millisecond))
	assert.NotEqual(t, id, later)
}

func TestDetailsRunning(t *testing.T) {
	w := NewRunning(5, 30, Coords{Lat: 51.5, Lng: -0.1}, 150, WithClock(fixedClock))
	details := w.Details()
	require.Len(t, details, 4)
	assert.Equal(t, Metric{Icon: "🏃", Value: "5", Unit: "km"}, details[0])
	assert.Equal(t, Metric{Icon: "⏱", Value: "30", Unit: "min"}, details[1])
	assert.Equal(t, Metric{Icon: "⚡", Value: "6.0", Unit: "min/km"}, details[2])
	assert.Equal(t, Metric{Icon: "🦶", Value: "150", Unit: "spm"}, details[3])
}

func TestDetailsCycling(t *testing.T) {
	w := NewCycling(27, 95, Coords{}, 523, WithClock(fixedClock))
	details := w.Details()
	require.Len(t, details, 4)
	assert.Equal(t, "17.1", details[2].Value)
	assert.Equal(t, "km/h", details[2].Unit)
	assert.Equal(t, Metric{Icon: "⛰", Value: "523", Unit: "m"}, details[3])
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "5", FormatNumber(5))
	assert.Equal(t, "5.25", FormatNumber(5.25))
	assert.Equal(t, "-0.1", FormatNumber(-0.1))
}

func TestParseKind(t *testing.T) {
	kind, err := ParseKind(" Cycling ")
	require.NoError(t, err)
	assert.Equal(t, KindCycling, kind)

	_, err = ParseKind("swimming")
	assert.Error(t, err)
}

func TestSpeedOfZeroDurationIsInf(t *testing.T) {
	assert.True(t, math.IsInf(Speed(10, 0), 1))
}

func TestPrimaryMetricOfOverflowedPace(t *testing.T) {
	w := NewRunning(1e-300, 1e300, Coords{}, 150, WithClock(fixedClock))
	assert.Equal(t, Metric{Icon: "⚡", Value: "∞", Unit: "min/km"}, w.PrimaryMetric())
}

func TestParseLocaleWithoutRegion(t *testing.T) {
	fr, err := ParseLocale("fr")
	require.NoError(t, err)
	w := NewCycling(27, 95, Coords{}, 10, WithClock(fixedClock), WithLocale(fr))
	assert.Equal(t, "Cycling on 17 octobre", w.Description)

	en, err := ParseLocale("en")
	require.NoError(t, err)
	assert.Equal(t, "17 October", en.DayMonth(fixedNow))
}
