package engine

import (
	"math"

	"github.com/lixenwraith/driftgrid/core"
	"github.com/lixenwraith/driftgrid/parameter"
)

// State is the engine's mutable context
// Every field is guarded by the owning Engine's mutex
type State struct {
	Playing      bool
	Setup        bool
	Tempo        float64
	BaseTempo    float64
	NextNoteTime float64 // absolute clock seconds of the next unscheduled step
	Step         int     // current 16th, wraps at parameter.MaxPatternLen
	GlobalVolume float64
	TargetVolume float64
	Chaos        float64
	ModX         float64
	ModY         float64
	Mode         core.BlendMode
	MeasureCount int
}

// NewState returns a stopped state at base tempo
func NewState(baseTempo float64) *State {
	baseTempo = parameter.ClampBPM(baseTempo)
	return &State{
		Tempo:     baseTempo,
		BaseTempo: baseTempo,
		Mode:      core.ModeDeep,
	}
}

// SetChaos folds level into the running chaos average
func (s *State) SetChaos(level float64) {
	s.Chaos = clamp01(s.Chaos*parameter.ChaosMemory + clamp01(level)*(1-parameter.ChaosMemory))
}

// UpdateSpatial maps hand heights to modulation; balance is accepted for callers but unused
func (s *State) UpdateSpatial(leftY, rightY, balance float64) {
	s.ModY = clamp01(leftY)
	s.ModX = clamp01(math.Abs(rightY-0.5) * 2)
}

// SetPresence sets the volume the envelope moves toward
func (s *State) SetPresence(present bool) {
	if present {
		s.TargetVolume = parameter.InitVolume
	} else {
		s.TargetVolume = 0
	}
}

// StepDuration is the current 16th note length
func (s *State) StepDuration() float64 {
	return parameter.StepDuration(s.Tempo)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
