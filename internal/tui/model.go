// Package tui provides the Bubble Tea workout tracker interface.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/mapty/internal/app"
	"github.com/verte-zerg/mapty/internal/geo"
	"github.com/verte-zerg/mapty/internal/listview"
	"github.com/verte-zerg/mapty/internal/mapview"
	"github.com/verte-zerg/mapty/internal/workout"
)

const frameInterval = time.Second / 30

type focusArea int

const (
	focusMap focusArea = iota
	focusList
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	creditStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	dividerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	modalStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// Options configure a Model.
type Options struct {
	Locator     geo.Locator
	GeoTimeout  time.Duration
	Store       app.Persister
	Logger      *zap.Logger
	Zoom        int
	TileURL     string
	Attribution string
	Workout     []workout.Option
}

type positionMsg struct {
	coords workout.Coords
	err    error
}

type timerMsg struct {
	id int
}

type frameMsg struct{}

// Model implements the Bubble Tea tracker UI. It is the form, alert,
// scheduler and reload surface of the App it drives.
type Model struct {
	app     *app.App
	mapw    *mapview.Map
	list    *listview.List
	form    *formPanel
	locator geo.Locator
	timeout time.Duration
	logger  *zap.Logger
	ctx     context.Context

	width  int
	height int

	focus     focusArea
	cursor    *mapview.Cell
	selected  int
	locating  bool
	animating bool

	alert  string
	status string

	timers    map[int]func()
	nextTimer int
	pending   []tea.Cmd
	reload    bool
}

// New builds the tracker UI and restores persisted workouts.
func New(ctx context.Context, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Locator == nil {
		opts.Locator = geo.Disabled{}
	}
	m := &Model{
		list:     listview.New(),
		form:     newFormPanel(),
		locator:  opts.Locator,
		timeout:  opts.GeoTimeout,
		logger:   opts.Logger,
		ctx:      ctx,
		locating: true,
		timers:   map[int]func(){},
	}
	m.app = app.New(app.Deps{
		NewMap: func(center workout.Coords, zoom int) app.MapWidget {
			m.mapw = mapview.New(center, zoom)
			return m.mapw
		},
		List:        m.list,
		Form:        m,
		Alerts:      m,
		Scheduler:   m,
		Reloader:    m,
		Store:       opts.Store,
		Logger:      opts.Logger,
		Zoom:        opts.Zoom,
		TileURL:     opts.TileURL,
		Attribution: opts.Attribution,
		Options:     opts.Workout,
	})
	m.app.Start(ctx)
	return m
}

// ReloadRequested reports whether the program quit to be rebuilt.
func (m *Model) ReloadRequested() bool {
	return m.reload
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	locator := m.locator
	timeout := m.timeout
	ctx := m.ctx
	return func() tea.Msg {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		coords, err := locator.Locate(ctx)
		return positionMsg{coords: coords, err: err}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.form.setWidth(computeLayout(m.width, m.height, true).form.width)
	case positionMsg:
		m.locating = false
		if msg.err != nil {
			m.app.OnPositionError(msg.err)
		} else {
			m.app.OnPosition(msg.coords)
		}
	case timerMsg:
		if fn, ok := m.timers[msg.id]; ok {
			delete(m.timers, msg.id)
			fn()
		}
	case frameMsg:
		if m.mapw != nil && m.mapw.Advance(frameInterval) {
			return m, frameTick()
		}
		m.animating = false
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if cmd := m.handleKey(msg); cmd != nil {
			m.pending = append(m.pending, cmd)
		}
	}
	return m, m.flush()
}

func (m *Model) flush() tea.Cmd {
	if m.mapw != nil && m.mapw.Animating() && !m.animating {
		m.animating = true
		m.pending = append(m.pending, frameTick())
	}
	if len(m.pending) == 0 {
		return nil
	}
	cmds := m.pending
	m.pending = nil
	return tea.Batch(cmds...)
}

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg { return frameMsg{} })
}

func (m *Model) layout() screenLayout {
	return computeLayout(m.width, m.height, m.form.shown())
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if m.alert != "" {
		return
	}
	l := m.layout()
	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		delta := 1
		if msg.Button == tea.MouseButtonWheelUp {
			delta = -1
		}
		switch {
		case l.list.contains(msg.X, msg.Y):
			m.list.Scroll(delta)
		case l.mapArea.contains(msg.X, msg.Y) && m.mapw != nil:
			m.mapw.ZoomBy(-delta)
		}
		return
	case tea.MouseButtonLeft:
	default:
		return
	}
	if msg.Action != tea.MouseActionPress {
		return
	}
	m.status = ""
	switch {
	case l.mapArea.contains(msg.X, msg.Y):
		if m.mapw == nil {
			return
		}
		m.focus = focusMap
		m.mapw.ClickAt(msg.X-l.mapArea.x, msg.Y-l.mapArea.y, l.mapArea.width, l.mapArea.height)
	case l.form.contains(msg.X, msg.Y):
		m.pending = append(m.pending, m.clickForm(msg.Y-l.form.y))
	case l.list.contains(msg.X, msg.Y):
		id, ok := m.list.IDAt(msg.Y - l.list.y)
		if !ok {
			return
		}
		m.focus = focusList
		m.locate(id)
	}
}

func (m *Model) clickForm(row int) tea.Cmd {
	switch row {
	case 0:
		m.app.ToggleKind(m.form.nextKind())
		return m.form.focusField(fieldType)
	case 1, 2, 3:
		return m.form.focusField(formField(row))
	}
	return nil
}

func (m *Model) locate(id string) {
	err := m.app.LocateWorkout(id)
	switch {
	case errors.Is(err, app.ErrMapNotReady):
		m.status = "Map is not ready yet"
	case err != nil:
		m.logger.Debug("locate workout", zap.Error(err))
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.alert != "" {
		switch msg.String() {
		case "enter", "esc", " ":
			m.alert = ""
		}
		return nil
	}
	m.status = ""
	if m.form.shown() && m.form.focused() {
		return m.handleFormKey(msg)
	}
	switch msg.String() {
	case "q":
		return tea.Quit
	case "R":
		if err := m.app.Reset(m.ctx); err != nil {
			m.status = "Reset failed: " + err.Error()
		}
		return nil
	case "tab", "shift+tab":
		if m.form.shown() {
			return m.form.focusField(fieldDistance)
		}
		if m.focus == focusMap {
			m.focus = focusList
		} else {
			m.focus = focusMap
		}
		return nil
	}
	if m.focus == focusList {
		m.handleListKey(msg)
		return nil
	}
	m.handleMapKey(msg)
	return nil
}

func (m *Model) handleListKey(msg tea.KeyMsg) {
	count := m.list.Len()
	switch msg.String() {
	case "up", "k":
		m.selected = max(m.selected-1, 0)
	case "down", "j":
		m.selected = min(m.selected+1, max(count-1, 0))
	case "enter":
		if count == 0 {
			return
		}
		entries := m.list.Entries()
		m.locate(entries[len(entries)-1-m.selected].ID)
	}
}

func (m *Model) handleMapKey(msg tea.KeyMsg) {
	if m.mapw == nil {
		return
	}
	l := m.layout()
	switch msg.String() {
	case "+", "=":
		m.mapw.ZoomBy(1)
		return
	case "-":
		m.mapw.ZoomBy(-1)
		return
	case "esc":
		m.cursor = nil
		return
	case "enter", " ":
		if m.cursor == nil {
			m.cursor = &mapview.Cell{Col: l.mapArea.width / 2, Row: l.mapArea.height / 2}
			return
		}
		m.mapw.ClickAt(m.cursor.Col, m.cursor.Row, l.mapArea.width, l.mapArea.height)
		return
	}
	dCol, dRow := 0, 0
	switch msg.String() {
	case "left", "h":
		dCol = -1
	case "right", "l":
		dCol = 1
	case "up", "k":
		dRow = -1
	case "down", "j":
		dRow = 1
	default:
		return
	}
	if m.cursor == nil {
		m.cursor = &mapview.Cell{Col: l.mapArea.width / 2, Row: l.mapArea.height / 2}
	}
	col, row := m.cursor.Col+dCol, m.cursor.Row+dRow
	if col < 0 || col >= l.mapArea.width || row < 0 || row >= l.mapArea.height {
		m.mapw.Pan(dCol*4, dRow*2)
		return
	}
	m.cursor.Col, m.cursor.Row = col, row
}

func (m *Model) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.form.blur()
		return nil
	case "tab", "down":
		return m.form.focusField(m.form.focus.next())
	case "shift+tab", "up":
		return m.form.focusField(m.form.focus.prev())
	case "enter":
		return m.submit()
	}
	if m.form.focus == fieldType {
		switch msg.String() {
		case "left", "right", " ", "h", "l":
			m.app.ToggleKind(m.form.nextKind())
		}
		return nil
	}
	return m.form.updateInput(msg)
}

func (m *Model) submit() tea.Cmd {
	_, err := m.app.Submit(m.ctx, m.form.input())
	switch {
	case err == nil:
		m.selected = 0
	case errors.Is(err, app.ErrNotSaved):
		m.status = "Workout kept in memory only: saving failed"
	case errors.Is(err, app.ErrNoLocation):
		m.status = "Click the map to pick a location first"
	}
	return nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.alert != "" {
		return m.renderAlert()
	}
	l := m.layout()
	sidebar := m.renderSidebar(l)
	divider := dividerStyle.Render(strings.TrimRight(strings.Repeat("│\n", l.sidebar.height), "\n"))
	right := m.renderMap(l) + "\n" + fitLines(m.renderCredits(l.credits.width), l.credits.width, 1)
	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, divider, right)
	return body + "\n" + fitLines(m.renderFooter(), m.width, 1)
}

func (m *Model) renderSidebar(l screenLayout) string {
	width := l.sidebar.width
	parts := []string{
		fitLines(titleStyle.Render(truncateLine("mapty · workouts", width)), width, titleRows),
	}
	if l.form.height > 0 {
		parts = append(parts, fitLines(m.form.view(width), width, l.form.height))
	}
	if l.list.height > 0 {
		highlight := -1
		if m.focus == focusList {
			highlight = m.selected
		}
		m.list.Highlight(highlight)
		parts = append(parts, fitLines(m.list.View(width, l.list.height), width, l.list.height))
	}
	return fitLines(strings.Join(parts, "\n"), width, l.sidebar.height)
}

func (m *Model) renderMap(l screenLayout) string {
	if l.mapArea.width <= 0 || l.mapArea.height <= 0 {
		return ""
	}
	if m.mapw == nil {
		msg := "Location unavailable"
		if m.locating {
			msg = "Locating…"
		}
		return lipgloss.Place(l.mapArea.width, l.mapArea.height, lipgloss.Center, lipgloss.Center, mutedStyle.Render(msg))
	}
	var cursor *mapview.Cell
	if m.focus == focusMap {
		cursor = m.cursor
	}
	return m.mapw.Render(l.mapArea.width, l.mapArea.height, cursor)
}

func (m *Model) renderCredits(width int) string {
	if m.mapw == nil {
		return ""
	}
	text := m.mapw.Attribution()
	if layers := m.mapw.TileLayers(); len(layers) > 0 {
		text += "  " + layers[len(layers)-1].URLTemplate
	}
	return creditStyle.Render(truncateLine(text, width))
}

func (m *Model) renderFooter() string {
	if m.status != "" {
		return statusStyle.Render(truncateLine(m.status, m.width))
	}
	help := "Click map: new workout  Click entry: go to  Arrows/enter: crosshair  Tab: list  +/-: zoom  R: reset  q: quit"
	if m.form.shown() && m.form.focused() {
		help = "Tab: next field  ←/→: type  Enter: save  Esc: leave form"
	}
	return footerStyle.Render(truncateLine(help, m.width))
}

func (m *Model) renderAlert() string {
	body := []string{
		titleStyle.Render(m.alert),
		"",
		footerStyle.Render("Enter to dismiss"),
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// Show implements app.FormView.
func (m *Model) Show() {
	m.form.visible = true
}

// Hide implements app.FormView.
func (m *Model) Hide() {
	m.form.visible = false
	m.form.blur()
}

// Focus implements app.FormView.
func (m *Model) Focus() {
	if cmd := m.form.focusField(fieldDistance); cmd != nil {
		m.pending = append(m.pending, cmd)
	}
}

// Clear implements app.FormView.
func (m *Model) Clear() {
	m.form.clear()
}

// SetLayoutVisible implements app.FormView.
func (m *Model) SetLayoutVisible(visible bool) {
	m.form.layout = visible
}

// ToggleKindFields implements app.FormView.
func (m *Model) ToggleKindFields(kind workout.Kind) {
	m.form.kind = kind
	if m.form.active && m.form.focus == fieldExtra {
		m.pending = append(m.pending, m.form.focusField(fieldExtra))
	}
}

// Alert implements app.Alerter.
func (m *Model) Alert(message string) {
	m.alert = message
}

// After implements app.Scheduler.
func (m *Model) After(d time.Duration, fn func()) {
	id := m.nextTimer
	m.nextTimer++
	m.timers[id] = fn
	m.pending = append(m.pending, tea.Tick(d, func(time.Time) tea.Msg { return timerMsg{id: id} }))
}

// Reload implements app.Reloader.
func (m *Model) Reload() {
	m.reload = true
	m.pending = append(m.pending, tea.Quit)
}
