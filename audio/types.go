package audio

import (
	"errors"

	"github.com/lixenwraith/driftgrid/core"
)

// Trigger is one scheduled voice start, consumed by Graph.Trigger
// Fields beyond Kind and At are read only by the voices that use them
type Trigger struct {
	Kind      core.VoiceKind
	At        float64 // absolute clock seconds
	Freq      float64 // bass, pad
	Intensity float64 // bass modulation depth
	Volume    float64 // snare, hat
	Pan       float64 // hat; pad and glitch draw their own
	PitchMod  float64 // hat
	Shape     float64 // kick waveshaper amount
}

// BackendType identifies the pipe audio backend
type BackendType int

const (
	BackendPulse BackendType = iota
	BackendPipeWire
	BackendALSA
	BackendSoX
	BackendFFplay
	BackendOSS
)

// BackendConfig describes a CLI audio backend
type BackendConfig struct {
	Type BackendType
	Name string
	Path string
	Args []string
}

// Sentinel errors
var (
	ErrNoAudioBackend = errors.New("no compatible audio backend found")
	ErrPipeClosed     = errors.New("audio pipe closed")
	ErrGraphClosed    = errors.New("audio graph closed")
	ErrNotReady       = errors.New("audio output not ready")
)
