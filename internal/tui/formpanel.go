package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/mapty/internal/form"
	"github.com/verte-zerg/mapty/internal/workout"
)

type formField int

const (
	fieldType formField = iota
	fieldDistance
	fieldDuration
	fieldExtra
	fieldCount
)

func (f formField) next() formField {
	return (f + 1) % fieldCount
}

func (f formField) prev() formField {
	return (f + fieldCount - 1) % fieldCount
}

const labelWidth = 10

var (
	labelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0")).Width(labelWidth)
	activeLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true).Width(labelWidth)
	kindStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	formHintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// formPanel is the entry form state: visibility, layout, selected type and
// raw field text.
type formPanel struct {
	visible bool
	layout  bool
	kind    workout.Kind
	focus   formField
	active  bool

	distance  textinput.Model
	duration  textinput.Model
	cadence   textinput.Model
	elevation textinput.Model
}

func newFormPanel() *formPanel {
	return &formPanel{
		layout:    true,
		kind:      workout.KindRunning,
		distance:  newFieldInput("km"),
		duration:  newFieldInput("min"),
		cadence:   newFieldInput("step/min"),
		elevation: newFieldInput("meters"),
	}
}

func newFieldInput(placeholder string) textinput.Model {
	input := textinput.New()
	input.Prompt = ""
	input.Placeholder = placeholder
	input.CharLimit = 16
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (f *formPanel) shown() bool {
	return f.visible && f.layout
}

func (f *formPanel) focused() bool {
	return f.active
}

func (f *formPanel) setWidth(width int) {
	w := max(width-labelWidth-2, 4)
	for _, input := range f.inputs() {
		input.Width = w
	}
}

func (f *formPanel) inputs() []*textinput.Model {
	return []*textinput.Model{&f.distance, &f.duration, &f.cadence, &f.elevation}
}

func (f *formPanel) extra() *textinput.Model {
	if f.kind == workout.KindCycling {
		return &f.elevation
	}
	return &f.cadence
}

func (f *formPanel) field(field formField) *textinput.Model {
	switch field {
	case fieldDistance:
		return &f.distance
	case fieldDuration:
		return &f.duration
	case fieldExtra:
		return f.extra()
	}
	return nil
}

func (f *formPanel) focusField(field formField) tea.Cmd {
	f.active = true
	f.focus = field
	var cmd tea.Cmd
	for _, input := range f.inputs() {
		input.Blur()
	}
	if input := f.field(field); input != nil {
		cmd = input.Focus()
	}
	return cmd
}

func (f *formPanel) blur() {
	f.active = false
	for _, input := range f.inputs() {
		input.Blur()
	}
}

func (f *formPanel) nextKind() workout.Kind {
	if f.kind == workout.KindRunning {
		return workout.KindCycling
	}
	return workout.KindRunning
}

func (f *formPanel) updateInput(msg tea.Msg) tea.Cmd {
	input := f.field(f.focus)
	if input == nil {
		return nil
	}
	var cmd tea.Cmd
	*input, cmd = input.Update(msg)
	return cmd
}

func (f *formPanel) clear() {
	for _, input := range f.inputs() {
		input.SetValue("")
	}
}

func (f *formPanel) input() form.Input {
	return form.Input{
		Kind:      string(f.kind),
		Distance:  f.distance.Value(),
		Duration:  f.duration.Value(),
		Cadence:   f.cadence.Value(),
		Elevation: f.elevation.Value(),
	}
}

func (f *formPanel) label(field formField, text string) string {
	if f.active && f.focus == field {
		return activeLabelStyle.Render(text)
	}
	return labelStyle.Render(text)
}

func (f *formPanel) view(width int) string {
	extraLabel := "Cadence"
	if f.kind == workout.KindCycling {
		extraLabel = "Elev Gain"
	}
	kind := "◀ " + string(f.kind) + " ▶"
	lines := []string{
		f.label(fieldType, "Type") + " " + kindStyle.Render(kind),
		f.label(fieldDistance, "Distance") + " " + f.distance.View(),
		f.label(fieldDuration, "Duration") + " " + f.duration.View(),
		f.label(fieldExtra, extraLabel) + " " + f.extra().View(),
		formHintStyle.Render(truncateLine("Enter to save", width)),
	}
	return fitLines(strings.Join(lines, "\n"), width, formRows)
}
