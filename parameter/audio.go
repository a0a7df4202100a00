package parameter

import "time"

// Audio Hardware Settings
const (
	AudioSampleRate    = 48000
	AudioChannels      = 2
	AudioBitDepth      = 16
	AudioBytesPerFrame = AudioChannels * (AudioBitDepth / 8) // 4 bytes
)

// Audio Output Timing
const (
	// AudioBufferDuration determines latency and the pipe writer tick rate
	AudioBufferDuration = 50 * time.Millisecond

	// SpeakerBufferDuration is the beep speaker buffer
	SpeakerBufferDuration = 100 * time.Millisecond

	// AudioDrainTimeout for backend cleanup on stop
	AudioDrainTimeout = 100 * time.Millisecond

	// RenderBlock is the frame count the graph renders under one lock hold
	RenderBlock = 512
)

// Effects bus
const (
	BusDistortion     = 150.0
	ReverbDuration    = 2.0 // seconds
	ReverbDecay       = 4.0
	ReverbGain        = 0.4
	ReverbPartition   = 1024 // convolver block size in frames
	DelayReturnGain   = 0.55
	DelayMaxSeconds   = 2.0
	DelayInitTime     = 0.05
	DelayInitFeedback = 0.6
	FilterInitFreq    = 20000.0
	FilterInitQ       = 1.0
	FilterUpdateEvery = 32 // frames between coefficient recomputes
	CurveSamples      = 22050
	ImpulseSegments   = 10000
)

// Analyser
const (
	AnalyserSize      = 2048
	AnalyserBins      = AnalyserSize / 2
	AnalyserSmoothing = 0.85
	AnalyserMinDB     = -100.0
	AnalyserMaxDB     = -30.0
)

// Drone
const (
	DroneFreq       = 55.0
	DroneGain       = 0.1
	DroneFilterFreq = 200.0
	DroneFilterQ    = 2.0
	DroneLFORate    = 0.1
	DroneLFODepth   = 100.0
	DroneFade       = 0.05 // seconds
)

// Kick
const (
	KickStartFreq  = 120.0
	KickEndFreq    = 40.0
	KickSweep      = 0.15
	KickGain       = 0.6
	KickGainEnd    = 0.01
	KickDecay      = 0.4
	KickLength     = 0.35
	KickDrive      = 200.0 // waveshaper amount in drive mode
	KickSoft       = 20.0
	KickChaosDrive = 30.0
)

// Snare
const (
	SnareToneStart  = 300.0
	SnareToneEnd    = 100.0
	SnareToneSweep  = 0.1
	SnareNoiseLen   = 0.15
	SnareNoiseStop  = 0.16
	SnareToneStop   = 0.2
	SnareHighpass   = 1500.0
	SnareDecay      = 0.15
	SnareGainEnd    = 0.01
	SnareNoiseLevel = 1.0
	SnareToneLevel  = 1.0
)

// Hat
const (
	HatBaseFreq   = 8000.0
	HatRandFreq   = 1000.0
	HatBandFreq   = 10000.0
	HatBandQ      = 2.0
	HatLevel      = 0.7
	HatGainEnd    = 0.001
	HatDecay      = 0.03
	HatLength     = 0.05
	HatSoftVolume = 0.15
)

// FM bass
const (
	BassModRatio   = 1.8
	BassIndexBase  = 200.0
	BassIndexScale = 800.0
	BassIndexEnd   = 1.0
	BassIndexDecay = 0.6
	BassGain       = 0.4
	BassGainEnd    = 0.001
	BassDecay      = 0.8
	BassLength     = 0.5
	BassShapeBase  = 10.0
	BassShapeScale = 20.0
	ModeSwitchBass = 55.0
)

// Pad
const (
	PadFilterStart = 400.0
	PadFilterEnd   = 2500.0
	PadFilterSweep = 4.0
	PadFilterQ     = 1.5
	PadLFORate     = 0.2
	PadLFODepth    = 80.0
	PadPeak        = 0.15
	PadAttack      = 3.0
	PadLength      = 12.0
	PadPanSpread   = 0.75
)

// Glitch
const (
	GlitchBufferLen = 0.1
	GlitchAmplitude = 0.5
	GlitchRateMin   = 0.5
	GlitchRateSpan  = 3.0
	GlitchGain      = 0.2
	GlitchGainEnd   = 0.001
	GlitchDecay     = 0.1
	GlitchLength    = 0.12
)

// Interaction burst
const (
	BurstMinReps      = 6
	BurstRepSpan      = 13 // reps = BurstMinReps + IntN(BurstRepSpan)
	BurstMinInterval  = 0.008
	BurstIntervalSpan = 0.04
	BurstPitchStep    = 500.0
	BurstGlitchChance = 0.4
	BurstShrink       = 0.92 // each interval is this fraction of the previous
)
