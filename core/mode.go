package core

// BlendMode selects the texture of the generated music
type BlendMode uint8

const (
	ModeDeep BlendMode = iota
	ModeGlitch
	ModeDrive
	BlendModeCount
)

func (m BlendMode) String() string {
	names := [...]string{"deep", "glitch", "drive"}
	if int(m) < len(names) {
		return names[m]
	}
	return "unknown"
}

// Next returns the mode in the fixed cycle deep -> glitch -> drive -> deep
func (m BlendMode) Next() BlendMode {
	return (m + 1) % BlendModeCount
}

// ParseBlendMode maps a mode name back to its value, defaulting to deep
func ParseBlendMode(s string) BlendMode {
	switch s {
	case "glitch":
		return ModeGlitch
	case "drive":
		return ModeDrive
	default:
		return ModeDeep
	}
}
