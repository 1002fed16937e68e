package mapview

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// MarkerGlyph is drawn at every marker cell.
const MarkerGlyph = '📍'

const (
	popupBar   = '▌'
	popupClose = "×"
)

// Cell addresses a viewport cell.
type Cell struct {
	Col int
	Row int
}

type cellStyle int

const (
	styleNone cellStyle = iota
	styleGrid
	styleMarker
	styleCursor
	stylePopupText
	styleBarRunning
	styleBarCycling
	styleBarDefault
)

var cellStyles = map[cellStyle]lipgloss.Style{
	styleGrid:       lipgloss.NewStyle().Foreground(lipgloss.Color("#3A3F44")),
	styleMarker:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")),
	styleCursor:     lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true),
	stylePopupText:  lipgloss.NewStyle().Foreground(lipgloss.Color("#ECECEC")).Background(lipgloss.Color("#2D3439")),
	styleBarRunning: lipgloss.NewStyle().Foreground(lipgloss.Color("#00C46A")).Background(lipgloss.Color("#2D3439")),
	styleBarCycling: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB545")).Background(lipgloss.Color("#2D3439")),
	styleBarDefault: lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Background(lipgloss.Color("#2D3439")),
}

func barStyle(className string) cellStyle {
	switch className {
	case "running-popup":
		return styleBarRunning
	case "cycling-popup":
		return styleBarCycling
	default:
		return styleBarDefault
	}
}

type cell struct {
	s     string
	width int
	style cellStyle
	// skip marks the trailing half of a wide rune.
	skip bool
}

type grid struct {
	width  int
	height int
	cells  [][]cell
}

func newGrid(width, height int) *grid {
	g := &grid{width: width, height: height, cells: make([][]cell, height)}
	for row := range g.cells {
		g.cells[row] = make([]cell, width)
		for col := range g.cells[row] {
			g.cells[row][col] = cell{s: " ", width: 1}
		}
	}
	return g
}

func (g *grid) blank(col, row int) {
	if col < 0 || col >= g.width {
		return
	}
	c := &g.cells[row][col]
	switch {
	case c.skip && col > 0:
		g.cells[row][col-1] = cell{s: " ", width: 1, style: g.cells[row][col-1].style}
	case c.width == 2 && col+1 < g.width:
		g.cells[row][col+1] = cell{s: " ", width: 1, style: c.style}
	}
	*c = cell{s: " ", width: 1, style: c.style}
}

// put writes r at col and returns the number of cells used.
func (g *grid) put(col, row int, r rune, style cellStyle) int {
	w := runewidth.RuneWidth(r)
	if w == 0 || row < 0 || row >= g.height || col < 0 || col+w > g.width {
		return 0
	}
	for i := 0; i < w; i++ {
		g.blank(col+i, row)
	}
	g.cells[row][col] = cell{s: string(r), width: w, style: style}
	if w == 2 {
		g.cells[row][col+1] = cell{width: 0, style: style, skip: true}
	}
	return w
}

// text writes s from col, stopping at limit cells, and returns the cells used.
func (g *grid) text(col, row int, s string, style cellStyle, limit int) int {
	used := 0
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if used+w > limit {
			break
		}
		used += g.put(col+used, row, r, style)
	}
	return used
}

func (g *grid) String() string {
	lines := make([]string, 0, g.height)
	for _, row := range g.cells {
		var line strings.Builder
		var run strings.Builder
		current := styleNone
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if style, ok := cellStyles[current]; ok {
				line.WriteString(style.Render(run.String()))
			} else {
				line.WriteString(run.String())
			}
			run.Reset()
		}
		for _, c := range row {
			if c.skip {
				continue
			}
			if c.style != current {
				flush()
				current = c.style
			}
			run.WriteString(c.s)
		}
		flush()
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

type rect struct {
	col, row, width int
}

func (r rect) contains(col, row int) bool {
	return row == r.row && col >= r.col && col < r.col+r.width
}

// popupRect places the popup label on the row above its marker, or below it
// on the top row, shifted left to stay inside the viewport.
func popupRect(p Popup, markerCol, markerRow, width int) (rect, bool) {
	if width <= 0 {
		return rect{}, false
	}
	w := runewidth.StringWidth(p.Content) + 4
	if p.MaxWidth > 0 {
		w = min(w, max(p.MaxWidth/CellWidth, 4))
	}
	if p.MinWidth > 0 {
		w = max(w, p.MinWidth/CellWidth)
	}
	w = min(w, width)
	row := markerRow - 1
	if row < 0 {
		row = markerRow + 1
	}
	col := markerCol
	if col+w > width {
		col = width - w
	}
	col = max(col, 0)
	return rect{col: col, row: row, width: w}, true
}

func (g *grid) drawPopup(p Popup, r rect) {
	if r.row < 0 || r.row >= g.height {
		return
	}
	for i := 0; i < r.width; i++ {
		g.put(r.col+i, r.row, ' ', stylePopupText)
	}
	g.put(r.col, r.row, popupBar, barStyle(p.ClassName))
	closeWidth := runewidth.StringWidth(popupClose)
	g.text(r.col+2, r.row, truncate(p.Content, r.width-3-closeWidth), stylePopupText, r.width-3-closeWidth)
	g.text(r.col+r.width-closeWidth, r.row, popupClose, stylePopupText, closeWidth)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

func (g *grid) drawTiles(m *Map) {
	cx, cy := Project(m.center, m.zoom)
	left := cx - float64(g.width)/2*CellWidth
	top := cy - float64(g.height)/2*CellHeight
	vertical := make([]bool, g.width)
	for col := range vertical {
		x0 := left + float64(col)*CellWidth
		vertical[col] = crossesTileEdge(x0, CellWidth)
	}
	for row := 0; row < g.height; row++ {
		y0 := top + float64(row)*CellHeight
		horizontal := crossesTileEdge(y0, CellHeight)
		for col := 0; col < g.width; col++ {
			switch {
			case horizontal && vertical[col]:
				g.put(col, row, '┼', styleGrid)
			case horizontal:
				g.put(col, row, '─', styleGrid)
			case vertical[col]:
				g.put(col, row, '│', styleGrid)
			}
		}
	}
}

func crossesTileEdge(start, span float64) bool {
	return math.Floor((start+span)/TileSize) != math.Floor(start/TileSize)
}

// Render draws the viewport as width x height cells. A non-nil cursor is
// drawn as a crosshair.
func (m *Map) Render(width, height int, cursor *Cell) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	g := newGrid(width, height)
	g.drawTiles(m)
	for _, marker := range m.markers {
		if !marker.Open {
			continue
		}
		col, row, ok := m.CellOf(marker.Coords, width, height)
		if !ok {
			continue
		}
		if r, ok := popupRect(marker.Popup, col, row, width); ok {
			g.drawPopup(marker.Popup, r)
		}
	}
	for _, marker := range m.markers {
		col, row, ok := m.CellOf(marker.Coords, width, height)
		if !ok {
			continue
		}
		g.put(col, row, MarkerGlyph, styleMarker)
	}
	if cursor != nil {
		g.put(cursor.Col, cursor.Row, '+', styleCursor)
	}
	return g.String()
}
