// Package scheduler orders gameplay systems into fixed phases and runs
// them in deterministic, insertion-stable order within each phase.
package scheduler

import (
	"sort"

	"github.com/annel0/mmo-game/internal/ecs"
	"github.com/annel0/mmo-game/internal/interaction"
	"github.com/annel0/mmo-game/internal/physics"
	"github.com/annel0/mmo-game/internal/world"
)

// Phase is one stage of a single simulation tick.
type Phase int

const (
	Input Phase = iota
	Intent
	Simulation
	LateSimulation
	Presentation

	phaseCount
)

// PhaseMask gates which phases run, used by pause/menu states.
type PhaseMask uint8

// AllPhases enables every phase.
const AllPhases PhaseMask = PhaseMask(1<<phaseCount) - 1

func maskBit(p Phase) PhaseMask { return 1 << uint(p) }

// Context is the per-tick state handed to every system. It is
// constructed once by the owning Application and reused across ticks.
type Context struct {
	Registry     *ecs.Registry
	Level        *world.Level
	Interactions *interaction.BlockInteractionResource
	DeltaSeconds float64
	CurrentTick  uint64

	// OverlapEvents is refreshed by the overlap system each simulation
	// tick; later-phase systems and the network layer read it, they
	// never write it.
	OverlapEvents []physics.OverlapEvent
}

// System declares the single phase it runs in. Tick/FixedTick are
// implemented optionally via the Ticker/FixedTicker interfaces below;
// a system with neither is legal (e.g. one that only reacts via
// another system's queue).
type System interface {
	Phase() Phase
}

// Ticker is implemented by systems that run every frame (variable dt),
// typically input sampling and presentation interpolation.
type Ticker interface {
	Tick(ctx *Context)
}

// FixedTicker is implemented by systems that run once per simulation
// tick at the fixed rate, which is everything that touches world state.
type FixedTicker interface {
	FixedTick(ctx *Context)
}

type entry struct {
	system System
	order  int
}

// Scheduler stores systems in a single vector, stably sorted by phase,
// so intra-phase order always matches insertion order.
type Scheduler struct {
	entries       []entry
	enabledPhases PhaseMask
	nextOrder     int
}

// New returns a scheduler with every phase enabled.
func New() *Scheduler {
	return &Scheduler{enabledPhases: AllPhases}
}

// Add appends a system and re-sorts stably by phase.
func (s *Scheduler) Add(system System) {
	s.entries = append(s.entries, entry{system: system, order: s.nextOrder})
	s.nextOrder++
	sort.SliceStable(s.entries, func(i, j int) bool {
		return s.entries[i].system.Phase() < s.entries[j].system.Phase()
	})
}

// SetEnabledPhases replaces the phase gate bitmask.
func (s *Scheduler) SetEnabledPhases(mask PhaseMask) {
	s.enabledPhases = mask
}

// TickPhase invokes Tick on every Ticker-implementing system of phase,
// in insertion order, unless phase is currently disabled.
func (s *Scheduler) TickPhase(phase Phase, ctx *Context) {
	if s.enabledPhases&maskBit(phase) == 0 {
		return
	}
	for _, e := range s.entries {
		if e.system.Phase() != phase {
			continue
		}
		if t, ok := e.system.(Ticker); ok {
			t.Tick(ctx)
		}
	}
}

// FixedTickPhase invokes FixedTick on every FixedTicker-implementing
// system of phase, in insertion order, unless phase is disabled.
func (s *Scheduler) FixedTickPhase(phase Phase, ctx *Context) {
	if s.enabledPhases&maskBit(phase) == 0 {
		return
	}
	for _, e := range s.entries {
		if e.system.Phase() != phase {
			continue
		}
		if t, ok := e.system.(FixedTicker); ok {
			t.FixedTick(ctx)
		}
	}
}

// TickAll runs Tick across every phase in order, for callers that
// don't need per-phase control (e.g. a single-pass frame update).
func (s *Scheduler) TickAll(ctx *Context) {
	for p := Phase(0); p < phaseCount; p++ {
		s.TickPhase(p, ctx)
	}
}

// FixedTickAll runs FixedTick across every phase in order.
func (s *Scheduler) FixedTickAll(ctx *Context) {
	for p := Phase(0); p < phaseCount; p++ {
		s.FixedTickPhase(p, ctx)
	}
}
