package circuit

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultAura is the hit-test tolerance in pixels used for selection.
const DefaultAura = 10

// Contains reports whether p lies within aura pixels of the element's
// segment and inside its bounding box padded by aura. Single-node and
// zero-length elements use the distance to the node.
func Contains(el *Element, p Position, aura float64) bool {
	if el == nil || len(el.Nodes) == 0 {
		return false
	}
	pt := vec(p)
	a := vec(el.Nodes[0])

	if len(el.Nodes) == 1 {
		return r2.Norm(r2.Sub(pt, a)) <= aura
	}
	b := vec(el.Nodes[1])

	d := r2.Sub(b, a)
	length := r2.Norm(d)
	if length == 0 {
		return r2.Norm(r2.Sub(pt, a)) <= aura
	}

	dist := math.Abs(r2.Cross(d, r2.Sub(pt, a))) / length

	minX, maxX := math.Min(a.X, b.X)-aura, math.Max(a.X, b.X)+aura
	minY, maxY := math.Min(a.Y, b.Y)-aura, math.Max(a.Y, b.Y)+aura
	inBox := pt.X >= minX && pt.X <= maxX && pt.Y >= minY && pt.Y <= maxY

	return dist <= aura && inBox
}

func vec(p Position) r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}
