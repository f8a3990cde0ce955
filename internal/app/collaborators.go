package app

import (
	"math/rand"

	"github.com/annel0/mmo-game/internal/ecs"
	"github.com/annel0/mmo-game/internal/logging"
)

// NoInput is the default InputSource collaborator used until a real
// networking/windowing layer is wired in: no buttons are ever held.
type NoInput struct{}

func (NoInput) LeftDown(ecs.Entity) bool  { return false }
func (NoInput) RightDown(ecs.Entity) bool { return false }

// UnitSpeed is the default SpeedSource: every player mines at the
// base rate until tool/enchantment data is wired in.
type UnitSpeed struct{}

func (UnitSpeed) SpeedMultiplier(ecs.Entity) float64 { return 1.0 }

// MathRand adapts the stdlib global rand source to interaction.RNG.
type MathRand struct{}

func (MathRand) Float64() float64 { return rand.Float64() }

// LoggingUI is the default UIDispatcher: it logs the open request
// instead of forwarding it to a client-side UI, since client
// presentation is out of scope for the simulation core.
type LoggingUI struct{}

func (LoggingUI) OpenBlockEntityUI(player, blockEntity ecs.Entity) {
	logging.Debug("block entity UI open requested: player=%d blockEntity=%d", player, blockEntity)
}
