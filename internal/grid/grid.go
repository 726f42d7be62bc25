// Package grid converts between continuous pixel positions and the integer
// logical grid used by the netlist format and placement snapping.
package grid

import (
	"math"

	"github.com/nerrad567/schematic-core/internal/circuit"
)

// Spacing is the number of pixels per grid unit. The renderer's visual grid
// uses the same value.
const Spacing = 10

// PixelToGrid converts a pixel position to the nearest grid coordinate.
// Halves round toward positive infinity.
func PixelToGrid(p circuit.Position) circuit.GridCoordinate {
	return circuit.GridCoordinate{
		X: round(p.X / Spacing),
		Y: round(p.Y / Spacing),
	}
}

// GridToPixel converts a grid coordinate to its pixel position.
func GridToPixel(g circuit.GridCoordinate) circuit.Position {
	return circuit.Position{
		X: float64(g.X) * Spacing,
		Y: float64(g.Y) * Spacing,
	}
}

// Snap moves a pixel position onto the nearest grid point.
func Snap(p circuit.Position) circuit.Position {
	return GridToPixel(PixelToGrid(p))
}

// SnapAll snaps every position in place and returns the slice.
func SnapAll(ps []circuit.Position) []circuit.Position {
	for i := range ps {
		ps[i] = Snap(ps[i])
	}
	return ps
}

func round(v float64) int {
	return int(math.Floor(v + 0.5))
}
