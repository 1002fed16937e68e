package stats

import (
	"context"
	"fmt"
	"strings"

	"github.com/verte-zerg/mapty/internal/model"
	"github.com/verte-zerg/mapty/internal/workout"
)

// Loader returns the persisted workouts in creation order.
type Loader interface {
	Load(ctx context.Context) []workout.Workout
}

// Report contains the filtered workouts and their totals.
type Report struct {
	Workouts []workout.Workout
	Totals   []Totals
}

// BuildReport loads workouts and applies the list filters.
func BuildReport(ctx context.Context, loader Loader, cfg model.ListConfig) (Report, error) {
	workouts, err := Filter(loader.Load(ctx), cfg)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Workouts: workouts,
		Totals:   Summarize(workouts),
	}, nil
}

// Filter keeps workouts matching cfg. Last is applied after the kind and
// date filters.
func Filter(workouts []workout.Workout, cfg model.ListConfig) ([]workout.Workout, error) {
	var kind workout.Kind
	if value := strings.TrimSpace(cfg.Kind); value != "" {
		parsed, err := workout.ParseKind(strings.ToLower(value))
		if err != nil {
			return nil, fmt.Errorf("failed to filter workouts: %w", err)
		}
		kind = parsed
	}
	out := make([]workout.Workout, 0, len(workouts))
	for _, w := range workouts {
		if kind != "" && w.Kind != kind {
			continue
		}
		if cfg.Since != nil && w.Date.Before(*cfg.Since) {
			continue
		}
		out = append(out, w)
	}
	if cfg.Last > 0 && len(out) > cfg.Last {
		out = out[len(out)-cfg.Last:]
	}
	return out, nil
}
