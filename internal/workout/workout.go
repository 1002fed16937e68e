// Package workout defines workout records and their derived fields.
package workout

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind tags the workout variant.
type Kind string

const (
	KindRunning Kind = "running"
	KindCycling Kind = "cycling"
)

// ParseKind maps a form value onto a Kind.
func ParseKind(value string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(value)))
	if !kind.Valid() {
		return "", fmt.Errorf("unknown workout type %q", value)
	}
	return kind, nil
}

// Valid reports whether k is a known variant.
func (k Kind) Valid() bool {
	return k == KindRunning || k == KindCycling
}

// Icon returns the activity icon shown in popups and list entries.
func (k Kind) Icon() string {
	if k == KindRunning {
		return "🏃"
	}
	return "🚴"
}

// Coords is a latitude/longitude pair in degrees.
type Coords struct {
	Lat float64
	Lng float64
}

func (c Coords) String() string {
	return fmt.Sprintf("%.5f, %.5f", c.Lat, c.Lng)
}

// RunningStats is the running payload.
type RunningStats struct {
	Cadence float64 // steps/min
	Pace    float64 // min/km
}

// CyclingStats is the cycling payload.
type CyclingStats struct {
	ElevationGain float64 // m
	Speed         float64 // km/h
}

// Workout is a single logged activity. Exactly one of Running and Cycling is
// set, matching Kind. Records are not mutated after construction.
type Workout struct {
	ID          string
	Date        time.Time
	Kind        Kind
	Distance    float64 // km
	Duration    float64 // min
	Coords      Coords
	Description string

	Running *RunningStats
	Cycling *CyclingStats
}

type options struct {
	now    func() time.Time
	locale Locale
}

// Option customizes record construction.
type Option func(*options)

// WithClock sets the clock used for the creation date and ID.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLocale sets the locale used for month names in the description.
func WithLocale(locale Locale) Option {
	return func(o *options) {
		o.locale = locale
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, locale: DefaultLocale()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func newBase(kind Kind, distance, duration float64, coords Coords, o options) Workout {
	date := o.now()
	return Workout{
		ID:          NewID(date),
		Date:        date,
		Kind:        kind,
		Distance:    distance,
		Duration:    duration,
		Coords:      coords,
		Description: Describe(kind, date, o.locale),
	}
}

// NewRunning builds a running record. Inputs are not validated here.
func NewRunning(distance, duration float64, coords Coords, cadence float64, opts ...Option) Workout {
	w := newBase(KindRunning, distance, duration, coords, buildOptions(opts))
	w.Running = &RunningStats{
		Cadence: cadence,
		Pace:    Pace(distance, duration),
	}
	return w
}

// NewCycling builds a cycling record. Inputs are not validated here.
func NewCycling(distance, duration float64, coords Coords, elevationGain float64, opts ...Option) Workout {
	w := newBase(KindCycling, distance, duration, coords, buildOptions(opts))
	w.Cycling = &CyclingStats{
		ElevationGain: elevationGain,
		Speed:         Speed(distance, duration),
	}
	return w
}

// Pace returns minutes per kilometre.
func Pace(distance, duration float64) float64 {
	return duration / distance
}

// Speed returns kilometres per hour.
func Speed(distance, duration float64) float64 {
	return distance / (duration / 60)
}

// NewID derives a record ID from the last 10 digits of the Unix millisecond clock.
func NewID(t time.Time) string {
	id := strconv.FormatInt(t.UnixMilli(), 10)
	if len(id) > 10 {
		id = id[len(id)-10:]
	}
	return id
}

// Describe formats "<Kind> on <day> <month>".
func Describe(kind Kind, date time.Time, locale Locale) string {
	return fmt.Sprintf("%s on %s", locale.Title(string(kind)), locale.DayMonth(date))
}

// Icon returns the activity icon for the record.
func (w Workout) Icon() string {
	return w.Kind.Icon()
}

// PopupContent is the marker popup text.
func (w Workout) PopupContent() string {
	return w.Icon() + " " + w.Description
}

// Metric is one labelled value of a list entry.
type Metric struct {
	Icon  string
	Value string
	Unit  string
}

// PrimaryMetric returns the derived metric: pace for running, speed for
// cycling, with one decimal.
func (w Workout) PrimaryMetric() Metric {
	switch {
	case w.Kind == KindRunning && w.Running != nil:
		return Metric{Icon: "⚡", Value: formatDerived(w.Running.Pace), Unit: "min/km"}
	case w.Kind == KindCycling && w.Cycling != nil:
		return Metric{Icon: "⚡", Value: formatDerived(w.Cycling.Speed), Unit: "km/h"}
	}
	return Metric{}
}

// SecondaryMetric returns the activity-specific input.
func (w Workout) SecondaryMetric() Metric {
	switch {
	case w.Kind == KindRunning && w.Running != nil:
		return Metric{Icon: "🦶", Value: FormatNumber(w.Running.Cadence), Unit: "spm"}
	case w.Kind == KindCycling && w.Cycling != nil:
		return Metric{Icon: "⛰", Value: FormatNumber(w.Cycling.ElevationGain), Unit: "m"}
	}
	return Metric{}
}

// Details returns distance, duration, the derived metric and the
// activity-specific input, in display order.
func (w Workout) Details() []Metric {
	metrics := []Metric{
		{Icon: w.Icon(), Value: FormatNumber(w.Distance), Unit: "km"},
		{Icon: "⏱", Value: FormatNumber(w.Duration), Unit: "min"},
	}
	if primary := w.PrimaryMetric(); primary.Unit != "" {
		metrics = append(metrics, primary, w.SecondaryMetric())
	}
	return metrics
}

// formatDerived prints one decimal, or ∞ for values that overflowed.
func formatDerived(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "∞"
	case math.IsNaN(v) || math.IsInf(v, -1):
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// FormatNumber prints the shortest decimal form, so 5 renders as "5".
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
