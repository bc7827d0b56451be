package present

import (
	"fmt"
	"math"
)

// MaxZoom is the deepest slippy map zoom level FitZoom will pick.
const MaxZoom = 18

// tileXY returns the Web Mercator tile holding a coordinate, clamped to the
// valid range for zoom.
func tileXY(c Coord, zoom int) (x, y int) {
	n := math.Pow(2, float64(zoom))
	x = int(math.Floor((c.Lon + 180.0) / 360.0 * n))
	latRad := c.Lat * math.Pi / 180.0
	y = int(math.Floor((1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0 * n))

	maxTile := int(n) - 1
	return clamp(x, 0, maxTile), clamp(y, 0, maxTile)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// TileID names the tile holding c as "zoom/x/y".
func TileID(c Coord, zoom int) string {
	x, y := tileXY(c, zoom)
	return fmt.Sprintf("%d/%d/%d", zoom, x, y)
}

// FitZoom returns the deepest zoom at which a and b lie in the same or
// neighbouring tiles.
func FitZoom(a, b Coord) int {
	for z := MaxZoom; z > 0; z-- {
		ax, ay := tileXY(a, z)
		bx, by := tileXY(b, z)
		if abs(ax-bx) <= 1 && abs(ay-by) <= 1 {
			return z
		}
	}
	return 0
}

// TilesCovering lists the tiles of the bounding box spanned by a and b.
func TilesCovering(a, b Coord, zoom int) []string {
	ax, ay := tileXY(a, zoom)
	bx, by := tileXY(b, zoom)
	x1, x2 := min(ax, bx), max(ax, bx)
	y1, y2 := min(ay, by), max(ay, by)

	tiles := make([]string, 0, (x2-x1+1)*(y2-y1+1))
	for x := x1; x <= x2; x++ {
		for y := y1; y <= y2; y++ {
			tiles = append(tiles, fmt.Sprintf("%d/%d/%d", zoom, x, y))
		}
	}
	return tiles
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
