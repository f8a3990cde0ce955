package physics

import (
	"github.com/annel0/mmo-game/internal/components"
	"github.com/annel0/mmo-game/internal/ecs"
)

// OverlapPhase distinguishes the three overlap transition events.
type OverlapPhase int

const (
	OverlapEnter OverlapPhase = iota
	OverlapStay
	OverlapExit
)

// pairKey canonically orders two entities so (a,b) and (b,a) hash the
// same key.
type pairKey struct {
	A ecs.Entity
	B ecs.Entity
}

func canonicalPair(a, b ecs.Entity) pairKey {
	if a < b {
		return pairKey{A: a, B: b}
	}
	return pairKey{A: b, B: a}
}

// OverlapEvent reports one entity pair transitioning into, staying in,
// or leaving an AABB overlap.
type OverlapEvent struct {
	A     ecs.Entity
	B     ecs.Entity
	Phase OverlapPhase
}

// OverlapSystem runs a naive O(n^2) sweep over every entity carrying
// {CTransform, CPhysics} each tick and reports Enter/Stay/Exit
// transitions against the previous tick's overlap set. Consumers must
// finish reading a Collect's events before the next Collect call.
type OverlapSystem struct {
	previous map[pairKey]struct{}
}

// NewOverlapSystem returns an overlap system with an empty history.
func NewOverlapSystem() *OverlapSystem {
	return &OverlapSystem{previous: make(map[pairKey]struct{})}
}

// Collect performs one sweep and returns the Enter/Stay/Exit events
// for this tick, rotating its internal previous-set afterward.
func (s *OverlapSystem) Collect(r *ecs.Registry) []OverlapEvent {
	type candidate struct {
		entity ecs.Entity
		min    [3]float64
		max    [3]float64
	}

	var entities []candidate
	ecs.View2(r, func(e ecs.Entity, t *components.CTransform, p *components.CPhysics) {
		entities = append(entities, candidate{
			entity: e,
			min:    [3]float64{t.Position.X + p.BBMin.X, t.Position.Y + p.BBMin.Y, t.Position.Z + p.BBMin.Z},
			max:    [3]float64{t.Position.X + p.BBMax.X, t.Position.Y + p.BBMax.Y, t.Position.Z + p.BBMax.Z},
		})
	})

	current := make(map[pairKey]struct{})
	for i := 0; i < len(entities); i++ {
		for j := i + 1; j < len(entities); j++ {
			a, b := entities[i], entities[j]
			if aabbOverlaps(a.min, a.max, b.min, b.max) {
				current[canonicalPair(a.entity, b.entity)] = struct{}{}
			}
		}
	}

	var events []OverlapEvent
	for key := range current {
		if _, existed := s.previous[key]; existed {
			events = append(events, OverlapEvent{A: key.A, B: key.B, Phase: OverlapStay})
		} else {
			events = append(events, OverlapEvent{A: key.A, B: key.B, Phase: OverlapEnter})
		}
	}
	for key := range s.previous {
		if _, stillThere := current[key]; !stillThere {
			events = append(events, OverlapEvent{A: key.A, B: key.B, Phase: OverlapExit})
		}
	}

	s.previous = current
	return events
}

func aabbOverlaps(minA, maxA, minB, maxB [3]float64) bool {
	for axis := 0; axis < 3; axis++ {
		if maxA[axis] < minB[axis] || maxB[axis] < minA[axis] {
			return false
		}
	}
	return true
}
