package statsui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/mapty/internal/model"
	"github.com/verte-zerg/mapty/internal/workout"
)

type loader []workout.Workout

func (l loader) Load(context.Context) []workout.Workout { return l }

func sample() loader {
	here := workout.Coords{Lat: 51.5, Lng: -0.1}
	clock := workout.WithClock(func() time.Time {
		return time.Date(2026, time.October, 17, 8, 0, 0, 0, time.UTC)
	})
	return loader{
		workout.NewRunning(5, 30, here, 150, clock),
		workout.NewCycling(27, 95, here, 523, clock),
	}
}

func typeText(m *Model, s string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func TestOverviewShowsTotals(t *testing.T) {
	m := NewModel(sample(), model.ListConfig{})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	view := m.View()
	assert.Contains(t, view, "Overview")
	assert.Contains(t, view, "6.0 min/km")
	assert.Contains(t, view, "17.1 km/h")
	assert.Contains(t, view, "Distance trend")
}

func TestWorkoutsTabListsNewestFirst(t *testing.T) {
	m := NewModel(sample(), model.ListConfig{})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	require.Equal(t, tabWorkouts, m.activeTab)
	rows := m.workouts.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "cycling", rows[0][1])
	assert.Contains(t, m.View(), "Pace/Speed")
}

func TestFilterForm(t *testing.T) {
	m := NewModel(sample(), model.ListConfig{})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	typeText(m, "/")
	require.True(t, m.filterMode)

	typeText(m, "swimming")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.filterMode)
	assert.NotEmpty(t, m.filterError)

	m.filterInputs[0].SetValue("running")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.filterMode)
	assert.Equal(t, "running", m.cfg.Kind)
	assert.Len(t, m.report.Workouts, 1)
	assert.Contains(t, m.View(), "type=running")
}

func TestEmptyReport(t *testing.T) {
	m := NewModel(loader(nil), model.ListConfig{})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	assert.Contains(t, m.View(), "No workouts found.")
}
