// Package app wires the simulation core together: the ECS registry,
// voxel level, system scheduler, fixed-timestep clock, event bus and
// state stack, driven by a single explicitly-constructed Application
// rather than any package-level singleton.
package app

import (
	"context"

	"github.com/annel0/mmo-game/internal/config"
	"github.com/annel0/mmo-game/internal/ecs"
	"github.com/annel0/mmo-game/internal/eventbus"
	"github.com/annel0/mmo-game/internal/interaction"
	"github.com/annel0/mmo-game/internal/scheduler"
	"github.com/annel0/mmo-game/internal/states"
	"github.com/annel0/mmo-game/internal/timestep"
	"github.com/annel0/mmo-game/internal/world"
)

// GameContext is the explicit set of collaborators every system,
// state and subsystem is wired against. There is no global Get() --
// everything that needs one of these takes it as a constructor or
// method argument.
type GameContext struct {
	Level        *world.Level
	Registry     *ecs.Registry
	Scheduler    *scheduler.Scheduler
	TimeStep     *timestep.Clock
	EventBus     eventbus.EventBus
	Config       *config.Config
	Interactions *interaction.BlockInteractionResource
}

// MaxFrameDelta caps a single Advance() call, absorbing stalls (e.g. a
// debugger pause or GC hiccup) without the simulation trying to
// replay minutes of missed ticks.
const MaxFrameDelta = 0.25

// Application owns the frame loop: it updates the top state at frame
// rate, drains the fixed-tick accumulator into the top state at
// simulation rate, then renders and applies any queued state-stack
// mutations. Run does not poll or drain an event queue.
type Application struct {
	Game   *GameContext
	States *states.Stack
}

// New constructs an Application from already-built collaborators.
// Callers (cmd/server/main.go) are responsible for opening the level,
// loading config and registering the initial state before calling Run.
func New(game *GameContext, stack *states.Stack) *Application {
	return &Application{Game: game, States: stack}
}

// Run executes the frame loop until the state stack empties.
func (a *Application) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if a.States.IsEmpty() {
			return
		}

		dt := a.Game.TimeStep.Advance(MaxFrameDelta)

		top, ok := a.States.Top()
		if !ok {
			return
		}
		top.Update(dt)

		for a.Game.TimeStep.TryAdvanceTick() {
			top, ok = a.States.Top()
			if !ok {
				break
			}
			top.FixedUpdate(a.Game.TimeStep.TickInterval())
		}

		if top, ok = a.States.Top(); ok {
			top.Render()
			top.DrawUI(nil)
		}

		a.States.ProcessPendingChanges()
	}
}
