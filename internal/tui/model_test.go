package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/mapty/internal/app"
	"github.com/verte-zerg/mapty/internal/geo"
	"github.com/verte-zerg/mapty/internal/persist"
	"github.com/verte-zerg/mapty/internal/store"
	"github.com/verte-zerg/mapty/internal/workout"
)

var london = workout.Coords{Lat: 51.5, Lng: -0.1}

func newTestModel(t *testing.T, kv *store.Memory, locator geo.Locator) *Model {
	t.Helper()
	now := time.Date(2026, time.October, 17, 7, 0, 0, 0, time.UTC)
	m := New(context.Background(), Options{
		Locator: locator,
		Store:   persist.New(kv, nil),
		Workout: []workout.Option{workout.WithClock(func() time.Time {
			now = now.Add(time.Second)
			return now
		})},
	})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m.Update(m.Init()())
	return m
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		switch k {
		case "enter":
			m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		case "tab":
			m.Update(tea.KeyMsg{Type: tea.KeyTab})
		case "esc":
			m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		default:
			m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
		}
	}
}

func click(m *Model, x, y int) tea.Cmd {
	_, cmd := m.Update(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	return cmd
}

func clickMapCenter(m *Model) {
	l := m.layout()
	click(m, l.mapArea.x+l.mapArea.width/2, l.mapArea.y+l.mapArea.height/2)
}

func TestPositionCreatesMap(t *testing.T) {
	m := newTestModel(t, store.NewMemory(), geo.Static{Coords: london})
	require.NotNil(t, m.mapw)
	assert.Equal(t, london, m.mapw.Center())
	assert.Equal(t, app.DefaultZoom, m.mapw.Zoom())
	assert.Contains(t, m.View(), "OpenStreetMap")
}

func TestClickMapAndSubmitRunning(t *testing.T) {
	kv := store.NewMemory()
	m := newTestModel(t, kv, geo.Static{Coords: london})

	clickMapCenter(m)
	require.True(t, m.form.shown())
	require.True(t, m.form.focused())
	assert.Equal(t, fieldDistance, m.form.focus)

	press(m, "5", "tab", "30", "tab", "150", "enter")

	workouts := m.app.Workouts()
	require.Len(t, workouts, 1)
	assert.Equal(t, workout.KindRunning, workouts[0].Kind)
	assert.InDelta(t, 6.0, workouts[0].Running.Pace, 1e-9)
	assert.Len(t, m.mapw.Markers(), 1)
	assert.Equal(t, 1, m.list.Len())
	assert.False(t, m.form.visible)
	assert.False(t, m.form.layout)
	assert.Empty(t, m.form.distance.Value())

	require.Len(t, m.timers, 1)
	m.Update(timerMsg{id: 0})
	assert.True(t, m.form.layout)
	assert.Contains(t, m.View(), "Running on 17 October")

	restarted := newTestModel(t, kv, geo.Static{Coords: london})
	assert.Equal(t, 1, restarted.list.Len())
	assert.Len(t, restarted.mapw.Markers(), 1)
}

func TestSubmitCyclingAfterToggle(t *testing.T) {
	m := newTestModel(t, store.NewMemory(), geo.Static{Coords: london})
	clickMapCenter(m)
	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, fieldType, m.form.focus)
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, workout.KindCycling, m.form.kind)

	press(m, "tab", "27", "tab", "95", "tab", "-20", "enter")
	workouts := m.app.Workouts()
	require.Len(t, workouts, 1)
	assert.Equal(t, workout.KindCycling, workouts[0].Kind)
	assert.InDelta(t, -20, workouts[0].Cycling.ElevationGain, 1e-9)
}

func TestInvalidSubmissionShowsBlockingAlert(t *testing.T) {
	m := newTestModel(t, store.NewMemory(), geo.Static{Coords: london})
	clickMapCenter(m)
	press(m, "abc", "tab", "30", "tab", "150", "enter")

	assert.Equal(t, app.InvalidInputAlert, m.alert)
	assert.Contains(t, m.View(), app.InvalidInputAlert)
	assert.Empty(t, m.app.Workouts())

	press(m, "x")
	assert.NotEmpty(t, m.alert)
	press(m, "enter")
	assert.Empty(t, m.alert)
	assert.True(t, m.form.shown())
	assert.Equal(t, "abc", m.form.distance.Value())
}

func TestGeolocationFailure(t *testing.T) {
	kv := store.NewMemory()
	seed := workout.NewRunning(5, 30, london, 150)
	value, err := workout.Encode([]workout.Workout{seed})
	require.NoError(t, err)
	require.NoError(t, kv.Set(context.Background(), persist.Key, value))

	m := newTestModel(t, kv, geo.Disabled{})
	assert.Nil(t, m.mapw)
	assert.Equal(t, app.PositionAlert, m.alert)
	press(m, "enter")

	assert.Contains(t, m.View(), "Location unavailable")
	l := m.layout()
	click(m, l.list.x+2, l.list.y)
	assert.Equal(t, "Map is not ready yet", m.status)
	assert.Contains(t, m.View(), "Map is not ready yet")
}

func TestClickListEntryRecentres(t *testing.T) {
	m := newTestModel(t, store.NewMemory(), geo.Static{Coords: london})
	clickMapCenter(m)
	picked, ok := m.app.Pending()
	require.True(t, ok)
	press(m, "5", "tab", "30", "tab", "150", "enter")
	m.Update(timerMsg{id: 0})

	m.mapw.Pan(40, 10)
	l := m.layout()
	cmd := click(m, l.list.x+2, l.list.y)
	assert.NotNil(t, cmd)
	require.True(t, m.mapw.Animating())
	for m.mapw.Advance(frameInterval) {
	}
	assert.InDelta(t, picked.Lat, m.mapw.Center().Lat, 1e-9)
	assert.InDelta(t, picked.Lng, m.mapw.Center().Lng, 1e-9)
}

func TestKeyboardCrosshairClick(t *testing.T) {
	m := newTestModel(t, store.NewMemory(), geo.Static{Coords: london})
	press(m, "enter")
	require.NotNil(t, m.cursor)
	press(m, "l", "l")
	press(m, "enter")
	assert.True(t, m.form.shown())
	_, ok := m.app.Pending()
	assert.True(t, ok)

	press(m, "esc")
	assert.False(t, m.form.focused())
	assert.True(t, m.form.shown())
}

func TestResetRequestsReload(t *testing.T) {
	kv := store.NewMemory()
	m := newTestModel(t, kv, geo.Static{Coords: london})
	clickMapCenter(m)
	press(m, "5", "tab", "30", "tab", "150", "enter")
	m.Update(timerMsg{id: 0})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("R")})
	assert.NotNil(t, cmd)
	assert.True(t, m.ReloadRequested())
	_, stored, err := kv.Get(context.Background(), persist.Key)
	require.NoError(t, err)
	assert.False(t, stored)

	restarted := newTestModel(t, kv, geo.Static{Coords: london})
	assert.Zero(t, restarted.list.Len())
}

func TestLayoutAndHelpers(t *testing.T) {
	l := computeLayout(100, 30, true)
	assert.Equal(t, 40, l.sidebar.width)
	assert.Equal(t, rect{x: 0, y: titleRows, width: 40, height: formRows}, l.form)
	assert.Equal(t, titleRows+formRows, l.list.y)
	assert.Equal(t, 41, l.mapArea.x)
	assert.Equal(t, 59, l.mapArea.width)
	assert.Equal(t, 28, l.mapArea.height)
	assert.Equal(t, 29, l.footer.y)

	assert.Equal(t, "ab...", truncateLine("abcdefgh", 5))
	assert.Equal(t, "ab  \n    ", fitLines("ab", 4, 2))
	assert.Equal(t, 30, modalWidth(10))
}
