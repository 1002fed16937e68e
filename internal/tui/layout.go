package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const (
	minSidebarWidth = 30
	maxSidebarWidth = 52
	titleRows       = 2
	formRows        = 6
)

type rect struct {
	x, y          int
	width, height int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.width && y >= r.y && y < r.y+r.height
}

// screenLayout splits the terminal into the sidebar (title, form, list),
// the map with its attribution row, and the footer.
type screenLayout struct {
	sidebar rect
	form    rect
	list    rect
	mapArea rect
	credits rect
	footer  rect
}

func computeLayout(width, height int, formShown bool) screenLayout {
	var l screenLayout
	if width <= 0 || height <= 0 {
		return l
	}
	bodyHeight := max(height-1, 1)
	sidebarWidth := max(min(width*2/5, maxSidebarWidth), min(minSidebarWidth, width/2))
	l.sidebar = rect{x: 0, y: 0, width: sidebarWidth, height: bodyHeight}

	listY := titleRows
	if formShown {
		l.form = rect{x: 0, y: titleRows, width: sidebarWidth, height: formRows}
		listY += formRows
	}
	l.list = rect{x: 0, y: listY, width: sidebarWidth, height: max(bodyHeight-listY, 0)}

	mapX := sidebarWidth + 1
	mapWidth := max(width-mapX, 0)
	l.mapArea = rect{x: mapX, y: 0, width: mapWidth, height: max(bodyHeight-1, 0)}
	l.credits = rect{x: mapX, y: bodyHeight - 1, width: mapWidth, height: 1}
	l.footer = rect{x: 0, y: bodyHeight, width: width, height: 1}
	return l
}

func modalWidth(width int) int {
	return max(30, min(width-4, 60))
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "...")
}
