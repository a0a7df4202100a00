package render

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/driftgrid/core"
	"github.com/lixenwraith/driftgrid/parameter"
)

type trail struct {
	x, y      int
	intensity float64
	timestamp time.Time
}

// Visualizer draws the spectrum-driven glyph grid and feeds pointer gestures back to the engine
type Visualizer struct {
	screen        tcell.Screen
	width, height int

	ctl      Controller
	gestures *Gestures

	// Pointer state in cells
	pointerX, pointerY int
	pressed            bool

	trails []trail
	start  time.Time
	frames uint64
}

// NewVisualizer initializes screen and registers it for restore on crash
func NewVisualizer(screen tcell.Screen, ctl Controller) (*Visualizer, error) {
	if err := screen.Init(); err != nil {
		return nil, err
	}
	core.SetCrashRestore(screen.Fini)

	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.HideCursor()

	now := time.Now()
	v := &Visualizer{
		screen:   screen,
		ctl:      ctl,
		gestures: NewGestures(ctl, now),
		trails:   make([]trail, 0, parameter.TrailLength*2),
		start:    now,
	}
	v.width, v.height = screen.Size()
	v.pointerX, v.pointerY = v.width/2, v.height/2
	return v, nil
}

// Gestures exposes the input mapper
func (v *Visualizer) Gestures() *Gestures {
	return v.gestures
}

// Run polls input and redraws until ctx is done or the user quits
func (v *Visualizer) Run(ctx context.Context) {
	ticker := time.NewTicker(parameter.FrameUpdateInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, parameter.EventBufferSize)
	core.Go(func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				// Screen finalized
				return
			}
			select {
			case eventChan <- ev:
			case <-ctx.Done():
				return
			}
		}
	})

	for {
		select {
		case <-ctx.Done():
			return

		case ev := <-eventChan:
			if !v.HandleEvent(ev, time.Now()) {
				return
			}

		case <-ticker.C:
			now := time.Now()
			v.gestures.Idle(now)
			v.updateTrails(now)
			v.draw(now)
		}
	}
}

// Close restores the terminal
func (v *Visualizer) Close() {
	v.screen.Fini()
}

// HandleEvent applies one terminal event, returns false on quit
func (v *Visualizer) HandleEvent(ev tcell.Event, now time.Time) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return v.handleKey(ev)

	case *tcell.EventMouse:
		x, y := ev.Position()
		nx, ny := v.normalize(x, y)

		if ev.Buttons()&tcell.Button1 != 0 {
			if !v.pressed {
				v.pressed = true
				v.gestures.Click(nx, ny, now)
				v.pointerX, v.pointerY = x, y
				return true
			}
		} else {
			v.pressed = false
		}

		if x != v.pointerX || y != v.pointerY {
			v.addTrail(v.pointerX, v.pointerY, x, y, now)
			v.pointerX, v.pointerY = x, y
			v.gestures.Move(nx, ny, now)
		}

	case *tcell.EventResize:
		v.handleResize()
	}

	return true
}

func (v *Visualizer) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case 'm':
			v.gestures.ModeSwitch()
		case ' ':
			v.gestures.Interaction()
		case 'p':
			v.gestures.TogglePresence()
		}
	}
	return true
}

// normalize maps a cell to [0,1] on both axes
func (v *Visualizer) normalize(x, y int) (float64, float64) {
	nx, ny := 0.5, 0.5
	if v.width > 1 {
		nx = float64(x) / float64(v.width-1)
	}
	if v.height > 1 {
		ny = float64(y) / float64(v.height-1)
	}
	return min(1, max(0, nx)), min(1, max(0, ny))
}

func (v *Visualizer) handleResize() {
	newWidth, newHeight := v.screen.Size()
	if newWidth != v.width || newHeight != v.height {
		v.width = newWidth
		v.height = newHeight

		// Clamp pointer position
		if v.pointerX >= v.width {
			v.pointerX = v.width - 1
		}
		if v.pointerY >= v.height {
			v.pointerY = v.height - 1
		}
		v.screen.Sync()
	}
}

func (v *Visualizer) addTrail(fromX, fromY, toX, toY int, now time.Time) {
	steps := parameter.TrailLength
	dx := float64(toX - fromX)
	dy := float64(toY - fromY)

	for i := 1; i <= steps; i++ {
		progress := float64(i) / float64(steps)
		v.trails = append(v.trails, trail{
			x:         fromX + int(dx*progress),
			y:         fromY + int(dy*progress),
			intensity: 1.0 - progress*0.8,
			timestamp: now.Add(time.Duration(i) * parameter.TrailDecay),
		})
	}
}

func (v *Visualizer) updateTrails(now time.Time) {
	kept := v.trails[:0]
	life := parameter.TrailLife.Seconds()

	for _, t := range v.trails {
		elapsed := now.Sub(t.timestamp).Seconds()
		if elapsed < 0 {
			// Future trail point
			kept = append(kept, t)
		} else if elapsed < life {
			t.intensity *= 1.0 - elapsed/life
			if t.intensity > parameter.TrailMinIntensity {
				kept = append(kept, t)
			}
		}
	}

	v.trails = kept
}

func (v *Visualizer) draw(now time.Time) {
	v.frames++
	v.screen.Clear()

	snap := v.ctl.Snapshot()
	bands := BandsOf(snap.Bins)
	t := now.Sub(v.start).Seconds()

	gridH := v.height - parameter.BottomMargin
	color := PaletteColor(t, bands.Kick, snap.Chaos)

	for row := 0; row < gridH; row++ {
		for col := 0; col < v.width; col++ {
			val := Intensity(col, row, v.width, gridH, t, bands, snap.Chaos)
			r := Glyph(val)
			if r == ' ' {
				continue
			}
			style := tcell.StyleDefault.Foreground(color.Scale(0.4 + val*0.6).Color())
			v.screen.SetContent(col, row, r, nil, style)
		}
	}

	for _, tr := range v.trails {
		if tr.x >= 0 && tr.x < v.width && tr.y >= 0 && tr.y < gridH {
			level := clamp(tr.intensity * 255)
			c := RGB{level, level, level}
			v.screen.SetContent(tr.x, tr.y, '█', nil, tcell.StyleDefault.Foreground(c.Color()))
		}
	}

	v.drawStatus(snap.Playing, snap.Mode.String(), snap.Tempo, snap.Chaos, snap.Volume, snap.Step)
	v.screen.Show()
}

func (v *Visualizer) drawStatus(playing bool, mode string, tempo, chaos, volume float64, step int) {
	if v.height < 1 {
		return
	}
	prefix := parameter.MutedStr
	if playing {
		prefix = parameter.AudioStr
	}
	line := fmt.Sprintf(parameter.StatusBarFormat, prefix, mode, tempo, chaos, volume, step, parameter.MaxPatternLen)

	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
	x := 0
	for _, r := range line {
		if x >= v.width {
			break
		}
		v.screen.SetContent(x, v.height-1, r, nil, style)
		x++
	}
}

// Frames returns the number of frames drawn
func (v *Visualizer) Frames() uint64 {
	return v.frames
}
