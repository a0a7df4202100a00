package render

import (
	"github.com/lixenwraith/driftgrid/core"
	"github.com/lixenwraith/driftgrid/engine"
)

// Controller is the engine surface the renderer drives
// *engine.Engine satisfies it; tests substitute a recorder
type Controller interface {
	Init() core.Result
	SetPresence(present bool)
	SetChaos(level float64)
	UpdateSpatialParams(leftY, rightY, balance float64)
	TriggerInteraction() core.Result
	TriggerModeSwitch() core.Result
	Snapshot() engine.Snapshot
}

var _ Controller = (*engine.Engine)(nil)
