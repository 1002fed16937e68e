// Package form validates workout form input and builds records.
package form

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/verte-zerg/mapty/internal/workout"
)

var (
	// ErrInvalidInput is returned when a numeric field is not finite or not
	// positive where positivity is required.
	ErrInvalidInput = errors.New("entry fields must have positive numbers")
	// ErrUnknownKind is returned for a type other than running or cycling.
	ErrUnknownKind = errors.New("unknown workout type")
)

// Input is the raw text of the form fields.
type Input struct {
	Kind      string
	Distance  string
	Duration  string
	Cadence   string
	Elevation string
}

// ParseNumber coerces field text to a number: surrounding whitespace is
// ignored, empty text is 0 and anything unparsable is NaN.
func ParseNumber(text string) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return v
		}
		return math.NaN()
	}
	return v
}

func allFinite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func allPositive(values ...float64) bool {
	for _, v := range values {
		if !(v > 0) {
			return false
		}
	}
	return true
}

// Build validates input and constructs the record at coords. Cadence must be
// positive; elevation gain only needs to be finite.
func Build(input Input, coords workout.Coords, opts ...workout.Option) (workout.Workout, error) {
	kind, err := workout.ParseKind(input.Kind)
	if err != nil {
		return workout.Workout{}, ErrUnknownKind
	}
	distance := ParseNumber(input.Distance)
	duration := ParseNumber(input.Duration)

	switch kind {
	case workout.KindRunning:
		cadence := ParseNumber(input.Cadence)
		if !allFinite(cadence, distance, duration) || !allPositive(cadence, distance, duration) {
			return workout.Workout{}, ErrInvalidInput
		}
		return workout.NewRunning(distance, duration, coords, cadence, opts...), nil
	default:
		elevation := ParseNumber(input.Elevation)
		if !allFinite(elevation, distance, duration) || !allPositive(distance, duration) {
			return workout.Workout{}, ErrInvalidInput
		}
		return workout.NewCycling(distance, duration, coords, elevation, opts...), nil
	}
}
