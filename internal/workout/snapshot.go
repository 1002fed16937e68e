package workout

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

// ErrMalformedSnapshot is returned when a stored collection cannot be restored.
var ErrMalformedSnapshot = errors.New("malformed workout snapshot")

var jsonNull = []byte("null")

// snapshot is the stored form of a record. Derived fields are stored as-is
// and trusted on decode. A non-finite pace or speed is stored as null and
// derived again from distance and duration on decode.
type snapshot struct {
	ID            string          `json:"id"`
	Date          time.Time       `json:"date"`
	Type          Kind            `json:"type"`
	Distance      float64         `json:"distance"`
	Duration      float64         `json:"duration"`
	Coords        [2]float64      `json:"coords"`
	Description   string          `json:"description"`
	Cadence       *float64        `json:"cadence,omitempty"`
	Pace          json.RawMessage `json:"pace,omitempty"`
	ElevationGain *float64        `json:"elevationGain,omitempty"`
	Speed         json.RawMessage `json:"speed,omitempty"`
}

// Encode serializes the collection in order.
func Encode(workouts []Workout) (string, error) {
	out := make([]snapshot, 0, len(workouts))
	for _, w := range workouts {
		s := snapshot{
			ID:          w.ID,
			Date:        w.Date,
			Type:        w.Kind,
			Distance:    w.Distance,
			Duration:    w.Duration,
			Coords:      [2]float64{w.Coords.Lat, w.Coords.Lng},
			Description: w.Description,
		}
		switch {
		case w.Kind == KindRunning && w.Running != nil:
			s.Cadence = float64Ptr(w.Running.Cadence)
			s.Pace = derivedValue(w.Running.Pace)
		case w.Kind == KindCycling && w.Cycling != nil:
			s.ElevationGain = float64Ptr(w.Cycling.ElevationGain)
			s.Speed = derivedValue(w.Cycling.Speed)
		default:
			return "", fmt.Errorf("workout %s: %q payload missing", w.ID, w.Kind)
		}
		out = append(out, s)
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encode workouts: %w", err)
	}
	return string(data), nil
}

// Decode restores a collection produced by Encode. A JSON null decodes to an
// empty collection.
func Decode(value string) ([]Workout, error) {
	var stored []snapshot
	if err := json.Unmarshal([]byte(value), &stored); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	workouts := make([]Workout, 0, len(stored))
	for i, s := range stored {
		w := Workout{
			ID:          s.ID,
			Date:        s.Date,
			Kind:        s.Type,
			Distance:    s.Distance,
			Duration:    s.Duration,
			Coords:      Coords{Lat: s.Coords[0], Lng: s.Coords[1]},
			Description: s.Description,
		}
		switch s.Type {
		case KindRunning:
			if s.Cadence == nil || len(s.Pace) == 0 {
				return nil, fmt.Errorf("%w: entry %d: running fields missing", ErrMalformedSnapshot, i)
			}
			pace, err := decodeDerived(s.Pace, Pace(s.Distance, s.Duration))
			if err != nil {
				return nil, fmt.Errorf("%w: entry %d: pace: %v", ErrMalformedSnapshot, i, err)
			}
			w.Running = &RunningStats{Cadence: *s.Cadence, Pace: pace}
		case KindCycling:
			if s.ElevationGain == nil || len(s.Speed) == 0 {
				return nil, fmt.Errorf("%w: entry %d: cycling fields missing", ErrMalformedSnapshot, i)
			}
			speed, err := decodeDerived(s.Speed, Speed(s.Distance, s.Duration))
			if err != nil {
				return nil, fmt.Errorf("%w: entry %d: speed: %v", ErrMalformedSnapshot, i, err)
			}
			w.Cycling = &CyclingStats{ElevationGain: *s.ElevationGain, Speed: speed}
		default:
			return nil, fmt.Errorf("%w: entry %d: unknown type %q", ErrMalformedSnapshot, i, s.Type)
		}
		if w.ID == "" {
			return nil, fmt.Errorf("%w: entry %d: id missing", ErrMalformedSnapshot, i)
		}
		workouts = append(workouts, w)
	}
	return workouts, nil
}

func float64Ptr(v float64) *float64 {
	return &v
}

// derivedValue encodes v as a JSON number, or null when v is not finite.
func derivedValue(v float64) json.RawMessage {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return json.RawMessage(jsonNull)
	}
	return json.RawMessage(strconv.FormatFloat(v, 'g', -1, 64))
}

// decodeDerived returns the stored number, or fallback for null.
func decodeDerived(raw json.RawMessage, fallback float64) (float64, error) {
	if bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
		return fallback, nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, err
	}
	return v, nil
}
