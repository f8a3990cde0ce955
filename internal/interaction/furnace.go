package interaction

import (
	"github.com/annel0/mmo-game/internal/components"
	"github.com/annel0/mmo-game/internal/ecs"
	"github.com/annel0/mmo-game/internal/world/block"
)

// CookTicksToComplete is the fixed smelt duration (10s at 20 tps).
const CookTicksToComplete = 200

const (
	furnaceInputSlot  = 0
	furnaceFuelSlot   = 1
	furnaceOutputSlot = 2
)

// FurnaceSystem runs the smelting state machine for every entity
// carrying {CFurnace, CInventory} with at least 3 slots (phase
// Simulation, fixed-tick).
type FurnaceSystem struct{}

// NewFurnaceSystem returns a stateless furnace system; all state
// lives in the CFurnace/CInventory components it operates on.
func NewFurnaceSystem() *FurnaceSystem { return &FurnaceSystem{} }

// Tick advances every furnace one step.
func (s *FurnaceSystem) Tick(r *ecs.Registry) {
	ecs.View2(r, func(e ecs.Entity, furnace *components.CFurnace, inventory *components.CInventory) {
		if len(inventory.Slots) < 3 {
			return
		}
		s.tickOne(furnace, inventory)
	})
}

func (s *FurnaceSystem) tickOne(furnace *components.CFurnace, inventory *components.CInventory) {
	fuel := &inventory.Slots[furnaceFuelSlot]
	input := &inventory.Slots[furnaceInputSlot]
	output := &inventory.Slots[furnaceOutputSlot]

	if furnace.BurnTicksRemaining == 0 && fuel.Count > 0 {
		if info, ok := block.Get(fuel.Item); ok && info.FuelTicks > 0 {
			fuel.Count--
			if fuel.Count == 0 {
				fuel.Item = block.AirBlockId
			}
			furnace.BurnTicksRemaining = info.FuelTicks
		}
	}

	recipeOutput, hasRecipe := recipeFor(input)
	if !hasRecipe {
		furnace.CookTicks = 0
		return
	}

	if furnace.BurnTicksRemaining == 0 {
		// Not burning: hold current progress, neither reset nor advance.
		return
	}

	// Spend one burn tick to buy one cook tick, so a fuel's FuelTicks
	// is exactly the number of cook ticks it can sustain.
	furnace.BurnTicksRemaining--
	furnace.CookTicks++
	if furnace.CookTicks < CookTicksToComplete {
		return
	}

	outputBlocked := output.Count > 0 && output.Item != recipeOutput
	if outputBlocked {
		furnace.CookTicks = CookTicksToComplete // hold progress, wait for room
		return
	}

	output.Item = recipeOutput
	output.Count++
	input.Count--
	if input.Count == 0 {
		input.Item = block.AirBlockId
	}
	furnace.CookTicks = 0
}

func recipeFor(input *components.InventorySlot) (block.BlockId, bool) {
	if input.Count == 0 {
		return 0, false
	}
	info, ok := block.Get(input.Item)
	if !ok || info.SmeltsInto == block.AirBlockId {
		return 0, false
	}
	return info.SmeltsInto, true
}
