package core

import (
	"github.com/Southclaws/fault/ftag"
)

// Error kinds tagged onto environment failures with ftag.With
const (
	KindUnavailable ftag.Kind = "AUDIO_UNAVAILABLE"
	KindSuspended   ftag.Kind = "AUDIO_SUSPENDED"
)

// Result is the outcome of an engine operation that may hit a missing or paused audio device
// None of the outcomes are fatal; callers keep running silently on anything but ResultOK
type Result uint8

const (
	ResultOK Result = iota
	ResultUnavailable
	ResultSuspended
	ResultIgnored
)

func (r Result) String() string {
	names := [...]string{"ok", "unavailable", "suspended", "ignored"}
	if int(r) < len(names) {
		return names[r]
	}
	return "unknown"
}

// OK reports whether the operation took effect
func (r Result) OK() bool {
	return r == ResultOK
}

// ResultOf classifies an error chain by its ftag kind
// Untagged errors count as unavailable
func ResultOf(err error) Result {
	if err == nil {
		return ResultOK
	}
	switch ftag.Get(err) {
	case KindSuspended:
		return ResultSuspended
	default:
		return ResultUnavailable
	}
}
