package stats

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/mapty/internal/model"
	"github.com/verte-zerg/mapty/internal/workout"
)

var here = workout.Coords{Lat: 51.5, Lng: -0.1}

func sample() []workout.Workout {
	at := func(day int) workout.Option {
		return workout.WithClock(func() time.Time {
			return time.Date(2026, time.October, day, 8, 0, 0, 0, time.UTC)
		})
	}
	return []workout.Workout{
		workout.NewRunning(5, 30, here, 150, at(10)),
		workout.NewCycling(27, 95, here, 523, at(12)),
		workout.NewRunning(10, 50, here, 170, at(15)),
	}
}

type staticLoader []workout.Workout

func (s staticLoader) Load(context.Context) []workout.Workout { return s }

func TestSummarize(t *testing.T) {
	totals := Summarize(sample())
	require.Len(t, totals, 2)

	run := totals[0]
	assert.Equal(t, workout.KindRunning, run.Kind)
	assert.Equal(t, 2, run.Count)
	assert.InDelta(t, 15, run.Distance, 1e-9)
	assert.InDelta(t, 80, run.Duration, 1e-9)
	assert.InDelta(t, 80.0/15, run.Metric, 1e-9)
	assert.InDelta(t, 160, run.Secondary, 1e-9)

	ride := totals[1]
	assert.Equal(t, 1, ride.Count)
	assert.InDelta(t, 27/(95.0/60), ride.Metric, 1e-9)
	assert.InDelta(t, 523, ride.Secondary, 1e-9)
}

func TestSummarizeEmptyKind(t *testing.T) {
	totals := Summarize(sample()[:1])
	assert.Zero(t, totals[1].Count)
	assert.Zero(t, totals[1].Metric)
}

func TestMovingAverage(t *testing.T) {
	assert.Equal(t, []float64{1, 1.5, 2.5, 3.5}, MovingAverage([]float64{1, 2, 3, 4}, 2))
	assert.Equal(t, []float64{1, 2}, MovingAverage([]float64{1, 2}, 1))
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, " @", Sparkline([]float64{0, 1}))
	assert.Equal(t, "===", Sparkline([]float64{2, 2, 2}))
	assert.Empty(t, Sparkline(nil))
}

func TestFilter(t *testing.T) {
	since := time.Date(2026, time.October, 11, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		cfg  model.ListConfig
		want int
	}{
		{name: "all", want: 3},
		{name: "kind", cfg: model.ListConfig{Kind: "Running"}, want: 2},
		{name: "since", cfg: model.ListConfig{Since: &since}, want: 2},
		{name: "last", cfg: model.ListConfig{Last: 1}, want: 1},
		{name: "kind and last", cfg: model.ListConfig{Kind: "running", Last: 5}, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Filter(sample(), tt.cfg)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}

	got, err := Filter(sample(), model.ListConfig{Last: 1})
	require.NoError(t, err)
	assert.InDelta(t, 10, got[0].Distance, 1e-9)

	_, err = Filter(sample(), model.ListConfig{Kind: "swimming"})
	assert.Error(t, err)
}

func TestBuildReport(t *testing.T) {
	report, err := BuildReport(context.Background(), staticLoader(sample()), model.ListConfig{Kind: "cycling"})
	require.NoError(t, err)
	require.Len(t, report.Workouts, 1)
	assert.Equal(t, 1, report.Totals[1].Count)
	assert.Zero(t, report.Totals[0].Count)
}

func TestRenderListNewestFirst(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderList(&buf, sample(), 0))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Pace/Speed")
	assert.Contains(t, lines[1], "2026-10-1")
	assert.Contains(t, lines[1], "5.0 min/km")
	assert.Contains(t, lines[2], "17.1 km/h")
	assert.Contains(t, lines[2], "523 m")
	assert.Contains(t, lines[3], "150 spm")
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderList(&buf, nil, 80))
	require.NoError(t, RenderSummary(&buf, nil))
	assert.Equal(t, "No workouts found.\nNo workouts found.\n", buf.String())
}

func TestRenderSummaryAndTrend(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSummary(&buf, sample()))
	require.NoError(t, RenderDistanceTrend(&buf, sample(), 1, 80))
	out := buf.String()
	assert.Contains(t, out, "5.3 min/km")
	assert.Contains(t, out, "17.1 km/h")
	assert.Contains(t, out, "160 spm")
	assert.Contains(t, out, "Distance trend:  @:")
}
