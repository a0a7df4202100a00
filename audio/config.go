package audio

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/lixenwraith/driftgrid/parameter"
)

// Output backend names accepted by NewOutput
const (
	OutputSpeaker = "speaker"
	OutputOto     = "oto"
	OutputPipe    = "pipe"
	OutputNull    = "null"
)

// Config holds audio settings resolved from defaults, environment and flags
type Config struct {
	Enabled      bool
	MasterVolume float64 // 0.0-1.0, scales the presence envelope
	SampleRate   int
	Backend      string
	BaseTempo    float64
	ReverbLevel  float64
	DelayLevel   float64
	DroneLevel   float64
}

// DefaultConfig returns the built-in audio settings
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		MasterVolume: 1.0,
		SampleRate:   parameter.AudioSampleRate,
		Backend:      OutputSpeaker,
		BaseTempo:    parameter.DefaultBPM,
		ReverbLevel:  parameter.ReverbGain,
		DelayLevel:   parameter.DelayReturnGain,
		DroneLevel:   parameter.DroneGain,
	}
}

// LoadConfig loads audio configuration from environment variables
func LoadConfig() *Config {
	cfg := DefaultConfig()

	if enabled := os.Getenv("DRIFTGRID_AUDIO_ENABLED"); enabled != "" {
		if val, err := strconv.ParseBool(enabled); err == nil {
			cfg.Enabled = val
		}
	}

	// Master volume is 0-100 on the wire
	if volume := os.Getenv("DRIFTGRID_MASTER_VOLUME"); volume != "" {
		if val, err := strconv.Atoi(volume); err == nil {
			cfg.SetVolumePercent(val)
		}
	}

	if sampleRate := os.Getenv("DRIFTGRID_SAMPLE_RATE"); sampleRate != "" {
		if val, err := strconv.Atoi(sampleRate); err == nil && val > 0 {
			cfg.SampleRate = val
		}
	}

	if backend := os.Getenv("DRIFTGRID_BACKEND"); backend != "" {
		cfg.Backend = strings.ToLower(strings.TrimSpace(backend))
	}

	if tempo := os.Getenv("DRIFTGRID_BASE_TEMPO"); tempo != "" {
		if val, err := strconv.ParseFloat(tempo, 64); err == nil {
			cfg.BaseTempo = parameter.ClampBPM(val)
		}
	}

	if levels := os.Getenv("DRIFTGRID_BUS_LEVELS"); levels != "" {
		var vols map[string]float64
		if err := json.Unmarshal([]byte(levels), &vols); err == nil {
			if v, ok := vols["reverb"]; ok {
				cfg.ReverbLevel = clamp01(v)
			}
			if v, ok := vols["delay"]; ok {
				cfg.DelayLevel = clamp01(v)
			}
			if v, ok := vols["drone"]; ok {
				cfg.DroneLevel = clamp01(v)
			}
		}
	}

	return cfg
}

// SetVolumePercent sets MasterVolume from a 0-100 value, clamped
func (c *Config) SetVolumePercent(pct int) {
	c.MasterVolume = clamp01(float64(pct) / 100.0)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
