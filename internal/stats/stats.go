// Package stats contains workout totals and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/mapty/internal/workout"
)

const sparkChars = " .:-=+*#%@"

// Totals aggregates the workouts of one kind.
type Totals struct {
	Kind     workout.Kind
	Count    int
	Distance float64 // km
	Duration float64 // min
	// Metric is the average pace (min/km) for running and the average speed
	// (km/h) for cycling, weighted by distance and duration.
	Metric float64
	// Secondary is the mean cadence for running and the total elevation gain
	// for cycling.
	Secondary float64
}

// Summarize returns running then cycling totals. Kinds with no workouts are
// included with a zero count.
func Summarize(workouts []workout.Workout) []Totals {
	out := []Totals{{Kind: workout.KindRunning}, {Kind: workout.KindCycling}}
	for _, w := range workouts {
		t := &out[0]
		if w.Kind == workout.KindCycling {
			t = &out[1]
		}
		t.Count++
		t.Distance += w.Distance
		t.Duration += w.Duration
		switch {
		case w.Running != nil:
			t.Secondary += w.Running.Cadence
		case w.Cycling != nil:
			t.Secondary += w.Cycling.ElevationGain
		}
	}
	for i := range out {
		t := &out[i]
		if t.Count == 0 || t.Distance <= 0 || t.Duration <= 0 {
			continue
		}
		if t.Kind == workout.KindRunning {
			t.Metric = workout.Pace(t.Distance, t.Duration)
			t.Secondary /= float64(t.Count)
		} else {
			t.Metric = workout.Speed(t.Distance, t.Duration)
		}
	}
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints totals per kind.
func RenderSummary(w io.Writer, workouts []workout.Workout) error {
	if len(workouts) == 0 {
		_, err := fmt.Fprintln(w, "No workouts found.")
		return err
	}
	headers := []string{"Type", "Workouts", "Distance (km)", "Duration (min)", "Average", "Cadence / Elev"}
	rows := make([][]string, 0, 2)
	for _, t := range Summarize(workouts) {
		if t.Count == 0 {
			continue
		}
		average := fmt.Sprintf("%.1f min/km", t.Metric)
		secondary := fmt.Sprintf("%.0f spm", t.Secondary)
		if t.Kind == workout.KindCycling {
			average = fmt.Sprintf("%.1f km/h", t.Metric)
			secondary = fmt.Sprintf("%s m", workout.FormatNumber(t.Secondary))
		}
		rows = append(rows, []string{
			t.Kind.Icon() + " " + string(t.Kind),
			fmt.Sprintf("%d", t.Count),
			fmt.Sprintf("%.1f", t.Distance),
			workout.FormatNumber(t.Duration),
			average,
			secondary,
		})
	}
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	for _, line := range formatTable(headers, rows, map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// RenderDistanceTrend prints a sparkline of workout distances in creation
// order, smoothed over window and clipped to the most recent width workouts.
func RenderDistanceTrend(w io.Writer, workouts []workout.Workout, window, width int) error {
	if len(workouts) == 0 {
		return nil
	}
	distances := make([]float64, len(workouts))
	for i, wo := range workouts {
		distances[i] = wo.Distance
	}
	distances = MovingAverage(distances, window)
	label := "Distance trend: "
	if limit := width - len(label); limit > 0 && len(distances) > limit {
		distances = distances[len(distances)-limit:]
	}
	_, err := fmt.Fprintf(w, "%s%s\n", label, Sparkline(distances))
	return err
}

// RenderList prints one row per workout, newest first, clipped to width.
func RenderList(w io.Writer, workouts []workout.Workout, width int) error {
	if len(workouts) == 0 {
		_, err := fmt.Fprintln(w, "No workouts found.")
		return err
	}
	headers := []string{"ID", "Date", "Type", "Distance", "Duration", "Pace/Speed", "Cadence/Elev", "Location"}
	rows := make([][]string, 0, len(workouts))
	for i := len(workouts) - 1; i >= 0; i-- {
		wo := workouts[i]
		primary, secondary := wo.PrimaryMetric(), wo.SecondaryMetric()
		rows = append(rows, []string{
			wo.ID,
			wo.Date.Local().Format("2006-01-02 15:04"),
			wo.Icon() + " " + string(wo.Kind),
			workout.FormatNumber(wo.Distance) + " km",
			workout.FormatNumber(wo.Duration) + " min",
			primary.Value + " " + primary.Unit,
			secondary.Value + " " + secondary.Unit,
			wo.Coords.String(),
		})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{3: true, 4: true, 5: true, 6: true}) {
		if _, err := fmt.Fprintln(w, clip(line, width)); err != nil {
			return err
		}
	}
	return nil
}
