package audio

import (
	"os"
	"os/exec"
	"runtime"
	"strconv"
)

// player is one CLI program that can take raw s16le stereo on stdin
type player struct {
	typ  BackendType
	name string
	bin  string
	args func(rate string) []string
}

// players in detection order, lightest first
var players = []player{
	{BackendPulse, "pacat", "pacat", func(r string) []string {
		return []string{"--raw", "--format=s16le", "--rate=" + r, "--channels=2", "--latency-msec=50", "--playback"}
	}},
	{BackendPipeWire, "pw-cat", "pw-cat", func(r string) []string {
		return []string{"--playback", "--format=s16", "--rate=" + r, "--channels=2", "--latency=50ms", "-"}
	}},
	{BackendALSA, "aplay", "aplay", func(r string) []string {
		return []string{"-t", "raw", "-f", "S16_LE", "-r", r, "-c", "2", "-q"}
	}},
	{BackendSoX, "sox", "play", func(r string) []string {
		return []string{"-t", "raw", "-e", "signed", "-b", "16", "-c", "2", "-r", r, "-", "-d", "-q"}
	}},
	{BackendFFplay, "ffplay", "ffplay", func(r string) []string {
		return []string{"-nodisp", "-autoexit", "-f", "s16le", "-ac", "2", "-ar", r,
			"-probesize", "32", "-analyzeduration", "0", "-i", "pipe:0", "-loglevel", "quiet"}
	}},
}

// Swapped out by tests
var (
	lookPath = exec.LookPath
	ossPath  = "/dev/dsp"
)

// DetectBackend finds a player for rate, trying prefer first when it names one
func DetectBackend(sampleRate int, prefer string) (*BackendConfig, error) {
	rate := strconv.Itoa(sampleRate)

	order := make([]player, 0, len(players))
	for _, p := range players {
		if p.name == prefer {
			order = append([]player{p}, order...)
		} else {
			order = append(order, p)
		}
	}

	for _, p := range order {
		path, err := lookPath(p.bin)
		if err != nil {
			continue
		}
		return &BackendConfig{Type: p.typ, Name: p.name, Path: path, Args: p.args(rate)}, nil
	}

	// OSS is a plain device write, no subprocess
	if runtime.GOOS == "freebsd" {
		if _, err := os.Stat(ossPath); err == nil {
			return &BackendConfig{Type: BackendOSS, Name: "oss", Path: ossPath}, nil
		}
	}

	return nil, ErrNoAudioBackend
}
