package interaction

import (
	"github.com/annel0/mmo-game/internal/components"
	"github.com/annel0/mmo-game/internal/ecs"
)

// UIDispatcher is the ImGui-like overlay UI collaborator: it decides
// how to present a furnace/inventory surface. Out of scope per the
// engine boundary; only the interface is owned here.
type UIDispatcher interface {
	OpenBlockEntityUI(player ecs.Entity, blockEntity ecs.Entity)
}

// BlockEntityInteractSystem implements phase Presentation system 5:
// for each queued open request, dispatch to the UI collaborator if
// the target entity is still alive and actually carries a surface to
// present.
type BlockEntityInteractSystem struct {
	UI UIDispatcher
}

// NewBlockEntityInteractSystem binds the system to a UI dispatcher.
func NewBlockEntityInteractSystem(ui UIDispatcher) *BlockEntityInteractSystem {
	return &BlockEntityInteractSystem{UI: ui}
}

// Tick drains the open queue and dispatches each still-valid request.
func (s *BlockEntityInteractSystem) Tick(r *ecs.Registry, res *BlockInteractionResource) {
	for _, ev := range res.DrainOpen() {
		if !r.Exists(ev.BlockEntity) {
			continue
		}
		if !ecs.Has[components.CFurnace](r, ev.BlockEntity) && !ecs.Has[components.CInventory](r, ev.BlockEntity) {
			continue
		}
		s.UI.OpenBlockEntityUI(ev.Player, ev.BlockEntity)
	}
}
