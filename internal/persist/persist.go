// Package persist saves and restores the workout collection.
package persist

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/verte-zerg/mapty/internal/store"
	"github.com/verte-zerg/mapty/internal/workout"
)

// Key is the fixed store key holding the whole collection.
const Key = "workouts"

// Adapter reads and writes the collection snapshot.
type Adapter struct {
	kv     store.KV
	logger *zap.Logger
}

// New returns an Adapter over kv.
func New(kv store.KV, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{kv: kv, logger: logger}
}

// Save replaces the stored snapshot with workouts.
func (a *Adapter) Save(ctx context.Context, workouts []workout.Workout) error {
	value, err := workout.Encode(workouts)
	if err != nil {
		return err
	}
	if err := a.kv.Set(ctx, Key, value); err != nil {
		return fmt.Errorf("save workouts: %w", err)
	}
	return nil
}

// Load returns the stored collection. A missing, unreadable or malformed
// snapshot yields an empty collection.
func (a *Adapter) Load(ctx context.Context) []workout.Workout {
	value, ok, err := a.kv.Get(ctx, Key)
	if err != nil {
		a.logger.Debug("workout snapshot unreadable", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	workouts, err := workout.Decode(value)
	if err != nil {
		a.logger.Debug("workout snapshot discarded", zap.Error(err))
		return nil
	}
	return workouts
}

// Reset removes the stored snapshot.
func (a *Adapter) Reset(ctx context.Context) error {
	if err := a.kv.Remove(ctx, Key); err != nil {
		return fmt.Errorf("reset workouts: %w", err)
	}
	return nil
}
