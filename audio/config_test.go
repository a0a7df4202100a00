package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lixenwraith/driftgrid/parameter"
)

// TestLoadConfigFromEnv verifies every variable is parsed and clamped
func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DRIFTGRID_AUDIO_ENABLED", "false")
	t.Setenv("DRIFTGRID_MASTER_VOLUME", "150")
	t.Setenv("DRIFTGRID_SAMPLE_RATE", "44100")
	t.Setenv("DRIFTGRID_BACKEND", " OTO ")
	t.Setenv("DRIFTGRID_BASE_TEMPO", "400")
	t.Setenv("DRIFTGRID_BUS_LEVELS", `{"reverb":0.2,"delay":2,"drone":0.05}`)

	cfg := LoadConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 1.0, cfg.MasterVolume)
	assert.Equal(t, 44100, cfg.SampleRate)
	assert.Equal(t, OutputOto, cfg.Backend)
	assert.Equal(t, parameter.MaxBPM, cfg.BaseTempo)
	assert.Equal(t, 0.2, cfg.ReverbLevel)
	assert.Equal(t, 1.0, cfg.DelayLevel)
	assert.Equal(t, 0.05, cfg.DroneLevel)
}

func TestLoadConfigIgnoresGarbage(t *testing.T) {
	t.Setenv("DRIFTGRID_AUDIO_ENABLED", "maybe")
	t.Setenv("DRIFTGRID_MASTER_VOLUME", "loud")
	t.Setenv("DRIFTGRID_SAMPLE_RATE", "-5")
	t.Setenv("DRIFTGRID_BUS_LEVELS", "{")

	cfg := LoadConfig()
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSetVolumePercent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SetVolumePercent(40)
	assert.InDelta(t, 0.4, cfg.MasterVolume, 1e-12)
	cfg.SetVolumePercent(-3)
	assert.Equal(t, 0.0, cfg.MasterVolume)
}
