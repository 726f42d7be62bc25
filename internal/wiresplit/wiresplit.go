// Package wiresplit subdivides a wire at a point lying strictly inside it.
package wiresplit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/nerrad567/schematic-core/internal/circuit"
)

// collinearTolerance bounds |cross(b-a, node-a)| for a node to count as on
// the wire.
const collinearTolerance = 1e-6

// Service splits wires in a circuit.
type Service struct {
	svc *circuit.Service
}

// New creates a wire split service over a circuit service.
func New(svc *circuit.Service) *Service {
	return &Service{svc: svc}
}

// TrySplitAtNode splits the first wire, in collection order, that node lies
// strictly inside. The wire is replaced by two wires meeting at node, with
// fresh ids; the original label and properties are not carried over.
//
// Only one wire is split per call. It reports false, without mutating the
// circuit, when no wire qualifies.
func (s *Service) TrySplitAtNode(node circuit.Position) (bool, error) {
	target := findWire(s.svc.Elements(), node)
	if target == nil {
		return false, nil
	}

	a, b := target.Nodes[0], target.Nodes[1]
	reg := s.svc.Registry()

	first, err := reg.Create(circuit.TypeWire, "", []circuit.Position{a, node}, nil, nil)
	if err != nil {
		return false, fmt.Errorf("splitting wire %s: %w", target.ID, err)
	}
	second, err := reg.Create(circuit.TypeWire, "", []circuit.Position{node, b}, nil, nil)
	if err != nil {
		return false, fmt.Errorf("splitting wire %s: %w", target.ID, err)
	}

	if err := s.svc.DeleteElement(target.ID); err != nil {
		return false, err
	}
	if err := s.svc.AddElement(first); err != nil {
		return false, err
	}
	if err := s.svc.AddElement(second); err != nil {
		return false, err
	}
	return true, nil
}

// findWire returns the first two-node wire that node lies strictly inside.
func findWire(elements []*circuit.Element, node circuit.Position) *circuit.Element {
	p := r2.Vec{X: node.X, Y: node.Y}
	for _, el := range elements {
		if el.Type != circuit.TypeWire || len(el.Nodes) != 2 {
			continue
		}
		a := r2.Vec{X: el.Nodes[0].X, Y: el.Nodes[0].Y}
		b := r2.Vec{X: el.Nodes[1].X, Y: el.Nodes[1].Y}
		if Inside(a, b, p) {
			return el
		}
	}
	return nil
}

// Inside reports whether p lies on segment ab, excluding both endpoints.
func Inside(a, b, p r2.Vec) bool {
	ab := r2.Sub(b, a)
	ap := r2.Sub(p, a)

	if math.Abs(r2.Cross(ab, ap)) > collinearTolerance {
		return false
	}
	dot := r2.Dot(ap, ab)
	return dot > 0 && dot < r2.Dot(ab, ab)
}
