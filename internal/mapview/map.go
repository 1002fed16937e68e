// Package mapview implements a terminal slippy-map widget.
package mapview

import (
	"math"
	"time"

	"github.com/verte-zerg/mapty/internal/workout"
)

// Popup describes the label bound to a marker.
type Popup struct {
	Content   string
	ClassName string
	// AutoClose closes the popup when another popup opens.
	AutoClose bool
	// CloseOnClick closes the popup on a click on empty map.
	CloseOnClick bool
	// MinWidth and MaxWidth bound the label width in pixels.
	MinWidth int
	MaxWidth int
}

// ViewOptions control how SetView moves the map.
type ViewOptions struct {
	Animate     bool
	PanDuration time.Duration
}

// TileLayer is the configured tile source.
type TileLayer struct {
	URLTemplate string
	Attribution string
}

// Marker is a pinned location with its popup.
type Marker struct {
	Coords workout.Coords
	Popup  Popup
	Open   bool
}

type animation struct {
	fromX, fromY float64
	toX, toY     float64
	elapsed      time.Duration
	duration     time.Duration
}

// Map holds the view state of a single map instance. It is not safe for
// concurrent use.
type Map struct {
	center  workout.Coords
	zoom    int
	layers  []TileLayer
	markers []*Marker
	onClick []func(workout.Coords)
	anim    *animation
}

// New returns a map centered on center at zoom.
func New(center workout.Coords, zoom int) *Map {
	return &Map{center: center, zoom: clampZoom(zoom)}
}

// Center returns the current view center.
func (m *Map) Center() workout.Coords { return m.center }

// Zoom returns the current zoom level.
func (m *Map) Zoom() int { return m.zoom }

// AddTileLayer attaches a tile source.
func (m *Map) AddTileLayer(urlTemplate, attribution string) {
	m.layers = append(m.layers, TileLayer{URLTemplate: urlTemplate, Attribution: attribution})
}

// TileLayers returns the attached tile sources.
func (m *Map) TileLayers() []TileLayer {
	return append([]TileLayer(nil), m.layers...)
}

// Attribution returns the attribution of the top tile layer.
func (m *Map) Attribution() string {
	if len(m.layers) == 0 {
		return ""
	}
	return m.layers[len(m.layers)-1].Attribution
}

// AddMarker pins coords and opens its popup.
func (m *Map) AddMarker(coords workout.Coords, popup Popup) {
	marker := &Marker{Coords: coords, Popup: popup}
	m.markers = append(m.markers, marker)
	m.openPopup(marker)
}

// Markers returns a copy of the markers in insertion order.
func (m *Map) Markers() []Marker {
	out := make([]Marker, 0, len(m.markers))
	for _, marker := range m.markers {
		out = append(out, *marker)
	}
	return out
}

// OnClick registers a handler for clicks on empty map.
func (m *Map) OnClick(handler func(workout.Coords)) {
	if handler != nil {
		m.onClick = append(m.onClick, handler)
	}
}

// SetView moves the view to coords at zoom. With animation enabled the
// center pans over PanDuration as Advance is called.
func (m *Map) SetView(coords workout.Coords, zoom int, opts ViewOptions) {
	m.zoom = clampZoom(zoom)
	if !opts.Animate || opts.PanDuration <= 0 {
		m.anim = nil
		m.center = coords
		return
	}
	fromX, fromY := Project(m.center, m.zoom)
	toX, toY := Project(coords, m.zoom)
	m.anim = &animation{
		fromX:    fromX,
		fromY:    fromY,
		toX:      toX,
		toY:      toY,
		duration: opts.PanDuration,
	}
}

// Animating reports whether a pan is in progress.
func (m *Map) Animating() bool { return m.anim != nil }

// Advance steps a running pan by dt and reports whether it is still running.
func (m *Map) Advance(dt time.Duration) bool {
	if m.anim == nil {
		return false
	}
	a := m.anim
	a.elapsed += dt
	t := float64(a.elapsed) / float64(a.duration)
	if t >= 1 {
		m.center = Unproject(a.toX, a.toY, m.zoom)
		m.anim = nil
		return false
	}
	t = easeOut(t)
	m.center = Unproject(a.fromX+(a.toX-a.fromX)*t, a.fromY+(a.toY-a.fromY)*t, m.zoom)
	return true
}

func easeOut(t float64) float64 {
	return 1 - math.Pow(1-t, 2)
}

// Pan shifts the view by whole cells.
func (m *Map) Pan(dCols, dRows int) {
	m.anim = nil
	x, y := Project(m.center, m.zoom)
	m.center = Unproject(x+float64(dCols*CellWidth), y+float64(dRows*CellHeight), m.zoom)
}

// ZoomBy changes the zoom level, keeping the center.
func (m *Map) ZoomBy(delta int) {
	m.anim = nil
	m.zoom = clampZoom(m.zoom + delta)
}

// CoordsAt returns the coordinates under a cell of a width x height viewport.
func (m *Map) CoordsAt(col, row, width, height int) workout.Coords {
	cx, cy := Project(m.center, m.zoom)
	x := cx + (float64(col)-float64(width)/2+0.5)*CellWidth
	y := cy + (float64(row)-float64(height)/2+0.5)*CellHeight
	return Unproject(x, y, m.zoom)
}

// CellOf returns the cell holding coords, and whether it is inside the viewport.
func (m *Map) CellOf(c workout.Coords, width, height int) (col, row int, ok bool) {
	cx, cy := Project(m.center, m.zoom)
	x, y := Project(c, m.zoom)
	col = int(math.Floor((x-cx)/CellWidth + float64(width)/2))
	row = int(math.Floor((y-cy)/CellHeight + float64(height)/2))
	ok = col >= 0 && col < width && row >= 0 && row < height
	return col, row, ok
}

// ClickAt handles a click on a cell. Clicking a marker toggles its popup,
// clicking an open popup closes it, and any other click is reported to the
// OnClick handlers with the coordinates under the cell.
func (m *Map) ClickAt(col, row, width, height int) {
	for i := len(m.markers) - 1; i >= 0; i-- {
		marker := m.markers[i]
		mc, mr, ok := m.CellOf(marker.Coords, width, height)
		if !ok {
			continue
		}
		if row == mr && (col == mc || col == mc+1) {
			if marker.Open {
				marker.Open = false
			} else {
				m.openPopup(marker)
			}
			return
		}
		if marker.Open {
			if r, ok := popupRect(marker.Popup, mc, mr, width); ok && r.contains(col, row) {
				marker.Open = false
				return
			}
		}
	}

	for _, marker := range m.markers {
		if marker.Open && marker.Popup.CloseOnClick {
			marker.Open = false
		}
	}
	coords := m.CoordsAt(col, row, width, height)
	for _, handler := range m.onClick {
		handler(coords)
	}
}

func (m *Map) openPopup(target *Marker) {
	for _, marker := range m.markers {
		if marker != target && marker.Open && marker.Popup.AutoClose {
			marker.Open = false
		}
	}
	target.Open = true
}
