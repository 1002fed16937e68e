package mapview

import (
	"math"

	"github.com/verte-zerg/mapty/internal/workout"
)

const (
	// TileSize is the edge of a slippy-map tile in pixels.
	TileSize = 256
	// CellWidth and CellHeight are the pixels covered by one terminal cell.
	CellWidth  = 8
	CellHeight = 16

	MinZoom = 1
	MaxZoom = 19

	maxLatitude = 85.05112878
)

func worldSize(zoom int) float64 {
	return TileSize * math.Exp2(float64(zoom))
}

// Project converts coordinates to Web Mercator world pixels at zoom.
func Project(c workout.Coords, zoom int) (x, y float64) {
	lat := math.Max(-maxLatitude, math.Min(maxLatitude, c.Lat))
	size := worldSize(zoom)
	x = (c.Lng + 180) / 360 * size
	rad := lat * math.Pi / 180
	y = (1 - math.Log(math.Tan(rad)+1/math.Cos(rad))/math.Pi) / 2 * size
	return x, y
}

// Unproject converts world pixels at zoom back to coordinates.
func Unproject(x, y float64, zoom int) workout.Coords {
	size := worldSize(zoom)
	lng := x/size*360 - 180
	n := math.Pi - 2*math.Pi*y/size
	lat := 180 / math.Pi * math.Atan(math.Sinh(n))
	return workout.Coords{Lat: lat, Lng: normalizeLng(lng)}
}

func normalizeLng(lng float64) float64 {
	for lng > 180 {
		lng -= 360
	}
	for lng < -180 {
		lng += 360
	}
	return lng
}

func clampZoom(zoom int) int {
	if zoom < MinZoom {
		return MinZoom
	}
	if zoom > MaxZoom {
		return MaxZoom
	}
	return zoom
}
