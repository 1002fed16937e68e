// Package app wires workout creation, rendering and persistence together.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/mapty/internal/form"
	"github.com/verte-zerg/mapty/internal/mapview"
	"github.com/verte-zerg/mapty/internal/workout"
)

const (
	// DefaultZoom is the map zoom used at start and when locating a workout.
	DefaultZoom = 13
	// DefaultTileURL is the OpenStreetMap tile template.
	DefaultTileURL = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"
	// DefaultAttribution credits the tile source.
	DefaultAttribution = "© OpenStreetMap contributors"

	// PositionAlert is shown when geolocation fails.
	PositionAlert = "Location cannot be retrieved!"
	// InvalidInputAlert is shown when a submission fails validation.
	InvalidInputAlert = "Entry fields must have positive numbers!!"

	layoutRestoreDelay = time.Second
	panDuration        = time.Second
)

var (
	// ErrMapNotReady is returned when the map has not been created yet.
	ErrMapNotReady = errors.New("map is not ready")
	// ErrWorkoutNotFound is returned when no workout has the requested ID.
	ErrWorkoutNotFound = errors.New("workout not found")
	// ErrNoLocation is returned when a submission has no staged map click.
	ErrNoLocation = errors.New("no location selected")
	// ErrNotSaved wraps a persistence failure after a workout was created.
	ErrNotSaved = errors.New("workout not saved")
)

// MapWidget is the map surface.
type MapWidget interface {
	AddTileLayer(urlTemplate, attribution string)
	AddMarker(coords workout.Coords, popup mapview.Popup)
	SetView(coords workout.Coords, zoom int, opts mapview.ViewOptions)
	OnClick(handler func(workout.Coords))
}

// MapFactory creates the map once the position is known.
type MapFactory func(center workout.Coords, zoom int) MapWidget

// ListView shows rendered workouts.
type ListView interface {
	Render(w workout.Workout)
	Clear()
}

// FormView is the entry form surface.
type FormView interface {
	Show()
	Hide()
	Focus()
	Clear()
	SetLayoutVisible(visible bool)
	ToggleKindFields(kind workout.Kind)
}

// Alerter shows a blocking message.
type Alerter interface {
	Alert(message string)
}

// Scheduler runs fn on the UI loop after d.
type Scheduler interface {
	After(d time.Duration, fn func())
}

// Reloader restarts the application from persisted state.
type Reloader interface {
	Reload()
}

// Persister stores the workout collection.
type Persister interface {
	Save(ctx context.Context, workouts []workout.Workout) error
	Load(ctx context.Context) []workout.Workout
	Reset(ctx context.Context) error
}

// Deps are the collaborators of an App.
type Deps struct {
	NewMap    MapFactory
	List      ListView
	Form      FormView
	Alerts    Alerter
	Scheduler Scheduler
	Reloader  Reloader
	Store     Persister
	Logger    *zap.Logger

	Zoom        int
	TileURL     string
	Attribution string
	// Options are applied to every created workout.
	Options []workout.Option
}

// App is the workout tracker controller. All methods must be called from the
// UI loop.
type App struct {
	deps     Deps
	logger   *zap.Logger
	mapw     MapWidget
	workouts []workout.Workout
	pending  *workout.Coords
}

// New returns an App using deps, filling unset settings with defaults.
func New(deps Deps) *App {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Zoom <= 0 {
		deps.Zoom = DefaultZoom
	}
	if deps.TileURL == "" {
		deps.TileURL = DefaultTileURL
	}
	if deps.Attribution == "" {
		deps.Attribution = DefaultAttribution
	}
	return &App{deps: deps, logger: deps.Logger}
}

// Start restores the persisted collection into the list. Markers follow once
// the map exists.
func (a *App) Start(ctx context.Context) {
	a.workouts = a.deps.Store.Load(ctx)
	a.deps.List.Clear()
	for _, w := range a.workouts {
		a.deps.List.Render(w)
	}
	a.logger.Info("workouts restored", zap.Int("count", len(a.workouts)))
}

// OnPosition creates the map at coords and draws a marker per workout.
func (a *App) OnPosition(coords workout.Coords) {
	if a.mapw != nil {
		return
	}
	a.mapw = a.deps.NewMap(coords, a.deps.Zoom)
	a.mapw.AddTileLayer(a.deps.TileURL, a.deps.Attribution)
	a.mapw.OnClick(a.onMapClick)
	for _, w := range a.workouts {
		a.renderMarker(w)
	}
	a.logger.Info("map created", zap.Float64("lat", coords.Lat), zap.Float64("lng", coords.Lng))
}

// OnPositionError reports a failed geolocation. The map stays absent.
func (a *App) OnPositionError(err error) {
	a.logger.Warn("geolocation failed", zap.Error(err))
	a.deps.Alerts.Alert(PositionAlert)
}

// MapReady reports whether the map has been created.
func (a *App) MapReady() bool {
	return a.mapw != nil
}

func (a *App) onMapClick(coords workout.Coords) {
	staged := coords
	a.pending = &staged
	a.deps.Form.Show()
	a.deps.Form.Focus()
}

// Pending returns the staged map click.
func (a *App) Pending() (workout.Coords, bool) {
	if a.pending == nil {
		return workout.Coords{}, false
	}
	return *a.pending, true
}

// ToggleKind shows the input field of kind.
func (a *App) ToggleKind(kind workout.Kind) {
	a.deps.Form.ToggleKindFields(kind)
}

// Submit validates input and creates a workout at the staged location. On
// invalid input the alert is raised, nothing changes and form.ErrInvalidInput
// is returned. A created workout is returned even when saving fails, together
// with an error wrapping ErrNotSaved.
func (a *App) Submit(ctx context.Context, input form.Input) (workout.Workout, error) {
	if a.pending == nil {
		return workout.Workout{}, ErrNoLocation
	}
	w, err := form.Build(input, *a.pending, a.deps.Options...)
	if err != nil {
		a.logger.Info("workout rejected", zap.String("kind", input.Kind), zap.Error(err))
		if errors.Is(err, form.ErrInvalidInput) {
			a.deps.Alerts.Alert(InvalidInputAlert)
		}
		return workout.Workout{}, err
	}

	a.workouts = append(a.workouts, w)
	a.renderMarker(w)
	a.deps.List.Render(w)
	a.hideForm()
	a.pending = nil
	a.logger.Info("workout created",
		zap.String("id", w.ID),
		zap.String("kind", string(w.Kind)),
		zap.Float64("distance", w.Distance),
		zap.Float64("duration", w.Duration),
	)

	if err := a.deps.Store.Save(ctx, a.workouts); err != nil {
		a.logger.Error("save workouts", zap.Error(err))
		return w, fmt.Errorf("%w: %v", ErrNotSaved, err)
	}
	return w, nil
}

func (a *App) hideForm() {
	view := a.deps.Form
	view.Clear()
	view.SetLayoutVisible(false)
	view.Hide()
	a.deps.Scheduler.After(layoutRestoreDelay, func() {
		view.SetLayoutVisible(true)
	})
}

func (a *App) renderMarker(w workout.Workout) {
	if a.mapw == nil {
		return
	}
	a.mapw.AddMarker(w.Coords, mapview.Popup{
		Content:      w.PopupContent(),
		ClassName:    string(w.Kind) + "-popup",
		AutoClose:    false,
		CloseOnClick: false,
		MinWidth:     100,
		MaxWidth:     250,
	})
}

// LocateWorkout recentres the map on the workout with id.
func (a *App) LocateWorkout(id string) error {
	if a.mapw == nil {
		return ErrMapNotReady
	}
	for _, w := range a.workouts {
		if w.ID == id {
			a.mapw.SetView(w.Coords, a.deps.Zoom, mapview.ViewOptions{
				Animate:     true,
				PanDuration: panDuration,
			})
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrWorkoutNotFound, id)
}

// Workouts returns the collection in creation order.
func (a *App) Workouts() []workout.Workout {
	return append([]workout.Workout(nil), a.workouts...)
}

// Reset clears the stored collection and requests a reload. The reload is
// requested even when clearing fails.
func (a *App) Reset(ctx context.Context) error {
	err := a.deps.Store.Reset(ctx)
	if err != nil {
		a.logger.Error("reset workouts", zap.Error(err))
	} else {
		a.logger.Info("workouts reset")
	}
	a.deps.Reloader.Reload()
	return err
}
