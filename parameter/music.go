package parameter

import "time"

// Tempo and Timing
const (
	DefaultBPM    = 95.0
	MinBPM        = 60.0
	MaxBPM        = 180.0
	StepsPerBeat  = 4  // 16th notes
	StepsPerBar   = 16 // one pattern cycle
	MaxPatternLen = 64 // step counter wraps here, one "measure" of the generator
	SwingOffset   = 0.015
	TempoRelax    = 0.025 // per frame fraction of the gap to base tempo
	TempoSettle   = 1.0   // BPM within which tempo stops relaxing
)

// Scheduler lookahead
const (
	ScheduleAheadTime = 0.1                   // seconds of audio scheduled ahead of the clock
	LookaheadInterval = 25 * time.Millisecond // scheduler re-arm period
	FrameInterval     = 16 * time.Millisecond // smoothing loop period, ~60Hz
	ResyncSlack       = 0.025                 // NextNoteTime may trail the clock by one tick before resync
)

// Generator randomness
const (
	MicroTimingRange   = 0.01 // seconds, symmetric
	ChaosDriftScale    = 0.04 // seconds at chaos 1, symmetric
	SnareJitter        = 0.01
	SnareVolume        = 0.4
	ModeSwitchChaos    = 0.7
	ModeSwitchChance   = 0.5
	TempoShuffleChance = 0.4
	TempoShuffleSpread = 0.2
	VolumeFloor        = 0.01 // below this nothing is scheduled
)

// Per step odds
const (
	GateBase         = 0.25
	GateChaos        = 0.2
	GateSwell        = 0.1 // amplitude of the sin(measure/2) term
	EchoBassChance   = 0.4
	EchoBassDelay    = 0.03
	BurstChance      = 0.25
	BurstSpread      = 0.2 // added per unit of modX
	SoftHatChance    = 0.5
	GlitchChance     = 0.05
	GlitchModeChance = 0.3
	GlitchSpread     = 0.1 // seconds
	PadBarChance     = 0.2
	PadHalfChance    = 0.5
	PadBeatChance    = 0.6
	HatPitchSpread   = 2000.0
)

// Presence envelope
const (
	InitVolume         = 0.95
	VolumeFollow       = 0.05 // per frame fraction toward target
	MasterTimeConstant = 0.1  // seconds
	FilterTimeConstant = 0.05
	StopFadeConstant   = 0.05
	InteractionChaos   = 1.0
	ChaosMemory        = 0.9
)

// Scale is the pitch set voices draw from, as MIDI notes
var Scale = [...]int{
	MIDINote(NoteD, 3), MIDINote(NoteF, 3), MIDINote(NoteG, 3), MIDINote(NoteA, 3),
	MIDINote(NoteC, 4), MIDINote(NoteD, 4), MIDINote(NoteF, 4), MIDINote(NoteG, 4),
	MIDINote(NoteA, 4), MIDINote(NoteC, 5),
}

// Note names (semitone offset within octave)
const (
	NoteC = 0
	NoteD = 2
	NoteF = 5
	NoteG = 7
	NoteA = 9
)

// MIDINote computes MIDI note number from note + octave
func MIDINote(note, octave int) int {
	return (octave+1)*12 + note // C-1 = 0, C4 = 60
}

// StepDuration is the length of one 16th note at bpm, in seconds
func StepDuration(bpm float64) float64 {
	return 60.0 / bpm / StepsPerBeat
}

// ClampBPM bounds a tempo to the supported range
func ClampBPM(bpm float64) float64 {
	if bpm < MinBPM {
		return MinBPM
	}
	if bpm > MaxBPM {
		return MaxBPM
	}
	return bpm
}
