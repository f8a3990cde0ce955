package app

import (
	"github.com/annel0/mmo-game/internal/scheduler"
	"github.com/annel0/mmo-game/internal/states"
)

// PlayingState drives one active simulation: every scheduler phase
// runs against a single reused *scheduler.Context, with fixed-rate
// gameplay phases ticking in FixedUpdate and the presentation phase
// (UI dispatch) ticking in Update at frame rate.
type PlayingState struct {
	game *GameContext
	ctx  *scheduler.Context
}

// NewPlayingState builds the per-tick scheduler context from the
// already-wired GameContext collaborators.
func NewPlayingState(game *GameContext) *PlayingState {
	return &PlayingState{
		game: game,
		ctx: &scheduler.Context{
			Registry:     game.Registry,
			Level:        game.Level,
			Interactions: game.Interactions,
		},
	}
}

func (p *PlayingState) OnEnter()  {}
func (p *PlayingState) OnExit()   {}
func (p *PlayingState) OnPause()  {}
func (p *PlayingState) OnResume() {}

// Update runs at frame rate and ticks only the presentation phase
// (UI dispatch).
func (p *PlayingState) Update(dt float64) {
	p.ctx.DeltaSeconds = dt
	p.game.Scheduler.TickPhase(scheduler.Presentation, p.ctx)
}

// FixedUpdate runs at the simulation tick rate: intent, physics,
// interaction and furnace phases, in that pinned order.
func (p *PlayingState) FixedUpdate(tickInterval float64) {
	p.ctx.DeltaSeconds = tickInterval
	p.ctx.CurrentTick = p.game.Level.Tick()
	p.game.Scheduler.FixedTickPhase(scheduler.Intent, p.ctx)
	p.game.Scheduler.FixedTickPhase(scheduler.Simulation, p.ctx)
	p.game.Scheduler.FixedTickPhase(scheduler.LateSimulation, p.ctx)
	p.game.Level.AdvanceTick()
}

// Render and DrawUI are no-ops here: rendering and UI presentation
// are out-of-scope collaborators this state only hands ticks to via
// the Presentation phase above, never draws directly.
func (p *PlayingState) Render()             {}
func (p *PlayingState) DrawUI(ui states.UI) {}

var _ states.State = (*PlayingState)(nil)
