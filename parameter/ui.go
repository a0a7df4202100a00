package parameter

import "time"

// Layout
const (
	// BottomMargin for status bar
	BottomMargin = 1

	// GridRowStretch compensates for terminal cells being taller than wide
	GridRowStretch = 0.65
)

// Status Bar
const (
	// AudioStr prefixes the status line while audio is playing
	AudioStr = "♫ "

	// MutedStr prefixes the status line when no output is running
	MutedStr = "∅ "

	// StatusBarFormat renders mode, tempo, chaos and volume
	StatusBarFormat = "%s%-6s %5.1f bpm  chaos %.2f  vol %.2f  step %02d/%d"
)

// Frame Timing
const (
	// FrameUpdateInterval is the renderer redraw period (~60 FPS)
	FrameUpdateInterval = 16 * time.Millisecond

	// EventBufferSize bounds queued terminal events
	EventBufferSize = 100
)

// Gesture Mapping
const (
	// IdleTimeout without pointer input before presence drops
	IdleTimeout = 800 * time.Millisecond

	// ShakeDecay is removed from the shake accumulator on every idle poll
	ShakeDecay = 0.2

	// ShakeTrigger is the accumulator level that fires a mode switch
	ShakeTrigger = 3.0

	// ShakeMinTravel is the normalized horizontal run that counts a reversal as a shake
	ShakeMinTravel = 0.05

	// PointerChaosBase is the chaos floor while the pointer moves
	PointerChaosBase = 0.5
)

// Trails
const (
	// TrailLength is the number of points laid between pointer samples
	TrailLength = 8

	// TrailDecay staggers trail points
	TrailDecay = 50 * time.Millisecond

	// TrailLife is how long a trail point stays visible
	TrailLife = 500 * time.Millisecond

	// TrailMinIntensity drops faded points
	TrailMinIntensity = 0.05
)

// Spectrum Bands (analyser bin indices)
const (
	BandBass  = 2
	BandKick  = 4
	BandKick2 = 6
	BandMid   = 40
	BandHigh  = 100
)

// GlyphRamp orders glyphs from empty to dense
const GlyphRamp = " .·:-=+*#%@"
