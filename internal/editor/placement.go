package editor

import (
	"slices"

	"github.com/nerrad567/schematic-core/internal/circuit"
	"github.com/nerrad567/schematic-core/internal/grid"
)

// DefaultCentre is where elements are placed when no nodes are given.
var DefaultCentre = circuit.Position{X: 400, Y: 300}

// defaultNodes spreads terminals nodes horizontally across width, centred
// on centre. A single terminal sits on the centre.
func defaultNodes(terminals int, centre circuit.Position, width float64) []circuit.Position {
	if terminals <= 1 {
		return []circuit.Position{centre}
	}
	nodes := make([]circuit.Position, terminals)
	step := width / float64(terminals-1)
	left := centre.X - width/2
	for i := range nodes {
		nodes[i] = circuit.Position{X: left + float64(i)*step, Y: centre.Y}
	}
	return nodes
}

// snap returns a copy of nodes, snapped to the grid when enabled.
func (s *Session) snap(nodes []circuit.Position) []circuit.Position {
	nodes = slices.Clone(nodes)
	if !s.cfg.Snap {
		return nodes
	}
	return grid.SnapAll(nodes)
}

func (s *Session) snapPoint(p circuit.Position) circuit.Position {
	if !s.cfg.Snap {
		return p
	}
	return grid.Snap(p)
}

// placementNodes returns nodes, or the default layout for t around centre
// when nodes is empty, snapped when enabled.
func (s *Session) placementNodes(t circuit.Type, nodes []circuit.Position, centre circuit.Position) []circuit.Position {
	if len(nodes) == 0 {
		terminals := 2
		if spec, ok := s.registry.Spec(t); ok && spec.Terminals > 0 {
			terminals = spec.Terminals
		}
		nodes = defaultNodes(terminals, centre, s.cfg.ElementWidth)
	}
	return s.snap(nodes)
}
