package core

// VoiceKind identifies synthesizer voices
type VoiceKind int

const (
	VoiceKick VoiceKind = iota
	VoiceSnare
	VoiceHat
	VoiceBass
	VoicePad
	VoiceGlitch
	VoiceDrone
	VoiceKindCount
)

func (v VoiceKind) String() string {
	names := [...]string{"kick", "snare", "hat", "bass", "pad", "glitch", "drone"}
	if v >= 0 && int(v) < len(names) {
		return names[v]
	}
	return "unknown"
}

// IsDrum returns true for percussion voices
func (v VoiceKind) IsDrum() bool {
	return v <= VoiceHat
}
