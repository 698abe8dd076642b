package engine

import (
	"math"

	"github.com/DoyleJ11/kitchen-coop-server/internal/kitchen"
)

// move steps one tick's worth of distance. Facing turns even when the step
// itself is refused.
func (m *Match) move(p *Participant, dir Direction) error {
	dx, dy, ok := dir.delta()
	if !ok {
		return ErrInvalidDirection
	}
	p.Facing = dir

	step := m.rules.stepDistance()
	next := kitchen.Point{X: p.Position.X + dx*step, Y: p.Position.Y + dy*step}

	margin := m.rules.EdgeMargin
	if next.X < margin || next.X > float64(m.width)-margin {
		return ErrOutOfBounds
	}
	if next.Y < margin || next.Y > float64(m.height)-margin {
		return ErrOutOfBounds
	}

	ext := m.rules.CollisionExtent
	for _, s := range m.Stations {
		c := s.center()
		if math.Abs(next.X-c.X) < ext && math.Abs(next.Y-c.Y) < ext {
			return ErrBlocked
		}
	}

	p.Position = next
	return nil
}

// nearestStation returns the closest station whose centre is strictly inside
// the interaction radius, or nil.
func (m *Match) nearestStation(pos kitchen.Point) *Station {
	var nearest *Station
	best := m.rules.InteractRadius
	for _, s := range m.Stations {
		if d := distance(pos, s.center()); d < best {
			best = d
			nearest = s
		}
	}
	return nearest
}
