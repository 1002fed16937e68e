// Package listview renders the workout list panel.
package listview

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/mapty/internal/workout"
)

// RowsPerEntry is the height of one rendered entry, separator included.
const RowsPerEntry = 3

var (
	runningBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00C46A"))
	cyclingBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB545"))
	titleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#ECECEC")).Bold(true)
	detailStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	unitStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	emptyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	selectedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
)

// List keeps rendered entries in insertion order and displays them newest
// first.
type List struct {
	entries   []workout.Workout
	offset    int
	highlight int
}

// New returns an empty list.
func New() *List {
	return &List{highlight: -1}
}

// Highlight marks the entry at display index i. A negative index clears it.
func (l *List) Highlight(i int) {
	l.highlight = i
}

// Render appends w to the list.
func (l *List) Render(w workout.Workout) {
	l.entries = append(l.entries, w)
	l.offset = 0
}

// Clear removes every entry.
func (l *List) Clear() {
	l.entries = nil
	l.offset = 0
}

// Entries returns the entries in insertion order.
func (l *List) Entries() []workout.Workout {
	return append([]workout.Workout(nil), l.entries...)
}

// Len returns the number of entries.
func (l *List) Len() int {
	return len(l.entries)
}

// Scroll moves the first displayed entry by delta.
func (l *List) Scroll(delta int) {
	l.offset = max(0, min(l.offset+delta, len(l.entries)-1))
}

// displayed returns the entry shown at display index i.
func (l *List) displayed(i int) (workout.Workout, bool) {
	i += l.offset
	if i < 0 || i >= len(l.entries) {
		return workout.Workout{}, false
	}
	return l.entries[len(l.entries)-1-i], true
}

// IDAt returns the ID of the entry drawn on row, if any.
func (l *List) IDAt(row int) (string, bool) {
	if row < 0 || row%RowsPerEntry == RowsPerEntry-1 {
		return "", false
	}
	w, ok := l.displayed(row / RowsPerEntry)
	if !ok {
		return "", false
	}
	return w.ID, true
}

// View draws the visible entries into width x height cells.
func (l *List) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	lines := make([]string, 0, height)
	if len(l.entries) == 0 {
		lines = append(lines, emptyStyle.Render(truncate("Click the map to log a workout", width)))
	}
	for i := 0; len(lines) < height; i++ {
		w, ok := l.displayed(i)
		if !ok {
			break
		}
		lines = append(lines, titleLine(w, width, i+l.offset == l.highlight), detailLine(w, width), "")
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func titleLine(w workout.Workout, width int, selected bool) string {
	if selected {
		return selectedStyle.Render("›") + " " + selectedStyle.Render(truncate(w.Description, width-2))
	}
	bar := runningBarStyle
	if w.Kind == workout.KindCycling {
		bar = cyclingBarStyle
	}
	return bar.Render("▌") + " " + titleStyle.Render(truncate(w.Description, width-2))
}

func detailLine(w workout.Workout, width int) string {
	var b strings.Builder
	used := 2
	b.WriteString("  ")
	for i, metric := range w.Details() {
		plain := metric.Icon + " " + metric.Value + " " + metric.Unit
		if i > 0 {
			plain = "  " + plain
		}
		if used+runewidth.StringWidth(plain) > width {
			break
		}
		used += runewidth.StringWidth(plain)
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(metric.Icon + " " + detailStyle.Render(metric.Value) + " " + unitStyle.Render(metric.Unit))
	}
	return b.String()
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}
