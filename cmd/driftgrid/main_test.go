package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lixenwraith/driftgrid/audio"
	"github.com/lixenwraith/driftgrid/parameter"
)

func only(names ...string) func(string) bool {
	return func(name string) bool {
		for _, n := range names {
			if n == name {
				return true
			}
		}
		return false
	}
}

func TestResolveConfigFlagsOverrideEnv(t *testing.T) {
	t.Setenv("DRIFTGRID_BACKEND", "pipe")
	t.Setenv("DRIFTGRID_BASE_TEMPO", "120")

	config.backend = "NULL"
	config.tempo = 300
	config.volume = 50

	cfg := resolveConfig(only("backend", "tempo", "volume"))
	assert.Equal(t, audio.OutputNull, cfg.Backend)
	assert.Equal(t, parameter.MaxBPM, cfg.BaseTempo)
	assert.InDelta(t, 0.5, cfg.MasterVolume, 1e-12)
}

func TestResolveConfigUnsetFlagsKeepEnv(t *testing.T) {
	t.Setenv("DRIFTGRID_BACKEND", "pipe")
	t.Setenv("DRIFTGRID_BASE_TEMPO", "120")

	config.backend = "oto"
	config.tempo = 70

	cfg := resolveConfig(only())
	assert.Equal(t, audio.OutputPipe, cfg.Backend)
	assert.Equal(t, 120.0, cfg.BaseTempo)
}

func TestRootCommandFlags(t *testing.T) {
	for _, name := range []string{"backend", "tempo", "volume", "headless", "duration", "debug"} {
		assert.NotNil(t, rootCmd.Flags().Lookup(name), name)
	}
}
