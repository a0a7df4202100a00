package audio

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePath makes only the listed binaries resolvable
func fakePath(t *testing.T, bins ...string) {
	t.Helper()
	orig, origOSS := lookPath, ossPath
	t.Cleanup(func() { lookPath, ossPath = orig, origOSS })

	ossPath = t.TempDir() + "/no-dsp"
	lookPath = func(name string) (string, error) {
		for _, b := range bins {
			if b == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", exec.ErrNotFound
	}
}

func TestDetectBackendOrder(t *testing.T) {
	fakePath(t, "aplay", "pacat")

	b, err := DetectBackend(48000, "")
	require.NoError(t, err)
	assert.Equal(t, BackendPulse, b.Type)
	assert.Equal(t, "/usr/bin/pacat", b.Path)
	assert.Contains(t, b.Args, "--rate=48000")
}

func TestDetectBackendPrefer(t *testing.T) {
	fakePath(t, "aplay", "pacat")

	b, err := DetectBackend(44100, "aplay")
	require.NoError(t, err)
	assert.Equal(t, BackendALSA, b.Type)
	assert.Contains(t, b.Args, "44100")

	// Preferred player missing falls through to the usual order
	b, err = DetectBackend(44100, "ffplay")
	require.NoError(t, err)
	assert.Equal(t, BackendPulse, b.Type)
}

func TestDetectBackendSoxBinary(t *testing.T) {
	fakePath(t, "play")

	b, err := DetectBackend(44100, "")
	require.NoError(t, err)
	assert.Equal(t, "sox", b.Name)
	assert.Equal(t, "/usr/bin/play", b.Path)
}

func TestDetectBackendNone(t *testing.T) {
	fakePath(t)

	_, err := DetectBackend(44100, "")
	assert.True(t, errors.Is(err, ErrNoAudioBackend))
}
