package render

import (
	"log"
	"math"
	"time"

	"github.com/lixenwraith/driftgrid/parameter"
)

// Gestures maps normalized pointer and key input to engine calls
// Coordinates are in [0,1] with y growing downward
// Not safe for concurrent use; the visualizer loop owns it
type Gestures struct {
	ctl Controller

	lastInput time.Time
	present   bool
	manual    bool // presence pinned by key until the next pointer input

	lastX    float64
	hasLast  bool
	dir      int     // -1, 0, 1: current horizontal run direction
	travel   float64 // distance covered in the current run
	shake    float64
	switches int
}

// NewGestures binds a controller; now seeds the idle timer
func NewGestures(ctl Controller, now time.Time) *Gestures {
	return &Gestures{ctl: ctl, lastInput: now}
}

// Move handles pointer motion
func (g *Gestures) Move(x, y float64, now time.Time) {
	g.touch(now)

	chaos := math.Min(1, parameter.PointerChaosBase+math.Abs(x-0.5)+math.Abs(y-0.5))
	g.ctl.SetChaos(chaos)
	g.ctl.UpdateSpatialParams(y, y, 0)

	g.track(x)
}

// Click handles a pointer press; it also resumes a suspended output
func (g *Gestures) Click(x, y float64, now time.Time) {
	g.touch(now)

	g.ctl.Init()
	g.ctl.TriggerInteraction()
	g.ctl.SetChaos(1)
	g.ctl.UpdateSpatialParams(y, y, 0)

	g.lastX, g.hasLast = x, true
}

// ModeSwitch forwards an explicit switch request
func (g *Gestures) ModeSwitch() {
	g.ctl.TriggerModeSwitch()
	g.switches++
}

// Interaction forwards an explicit burst request
func (g *Gestures) Interaction() {
	g.ctl.Init()
	g.ctl.TriggerInteraction()
	g.ctl.SetChaos(1)
}

// TogglePresence flips presence and pins it against the idle timeout
func (g *Gestures) TogglePresence() {
	g.present = !g.present
	g.manual = true
	g.ctl.SetPresence(g.present)
}

// Idle runs once per frame; past the idle timeout it decays shake and drops presence
func (g *Gestures) Idle(now time.Time) {
	if now.Sub(g.lastInput) <= parameter.IdleTimeout {
		return
	}

	g.shake = math.Max(0, g.shake-parameter.ShakeDecay)
	g.dir, g.travel = 0, 0

	if !g.manual {
		if g.present {
			log.Printf("[render] idle, presence off")
		}
		g.present = false
		g.ctl.SetPresence(false)
		g.ctl.SetChaos(0)
	}
}

// Shake returns the accumulator level
func (g *Gestures) Shake() float64 {
	return g.shake
}

// Present reports the last presence value sent
func (g *Gestures) Present() bool {
	return g.present
}

// Switches counts mode switches fired
func (g *Gestures) Switches() int {
	return g.switches
}

func (g *Gestures) touch(now time.Time) {
	g.lastInput = now
	g.manual = false
	g.present = true
	g.ctl.SetPresence(true)
}

// track accumulates horizontal direction reversals
func (g *Gestures) track(x float64) {
	if !g.hasLast {
		g.lastX, g.hasLast = x, true
		return
	}

	dx := x - g.lastX
	g.lastX = x
	if dx == 0 {
		return
	}

	dir := 1
	if dx < 0 {
		dir = -1
	}

	if dir != g.dir {
		if g.dir != 0 && g.travel >= parameter.ShakeMinTravel {
			g.shake++
		}
		g.dir = dir
		g.travel = 0
	}
	g.travel += math.Abs(dx)

	if g.shake > parameter.ShakeTrigger {
		g.shake = 0
		log.Printf("[render] shake -> mode switch")
		g.ModeSwitch()
	}
}
