// Package engine implements the timeline mutation algorithms. Every
// operation is a pure transformation: it takes a snapshot of the clip
// array, returns a new array, and reports whether anything changed. The
// store commits the result atomically, so no caller ever observes a
// partially mutated timeline.
package engine

import (
	"math"

	"fluxcut/internal/timecode"
	"fluxcut/pkg/models"

	"github.com/sirupsen/logrus"
)

// Duration bounds used by the randomization operations, in seconds.
const (
	minSegmentSeconds = 1.0  // shortest source a slip edit will touch
	minFluxSeconds    = 1.0  // per-clip flux lower bound
	maxFluxSeconds    = 10.0 // flux upper bound before source-length capping
	fluxFloorSeconds  = 0.25 // global flux per-clip floor allocation
)

// Engine holds the shared logger; all algorithm state lives in the clip
// snapshots passed through it.
type Engine struct {
	logger *logrus.Logger
}

// New creates a mutation engine.
func New(logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.New()
	}
	return &Engine{logger: logger}
}

// snapshot deep-copies a clip slice so mutations never alias caller state.
func snapshot(clips []models.Clip) []models.Clip {
	out := make([]models.Clip, len(clips))
	for i := range clips {
		out[i] = clips[i].Clone()
	}
	return out
}

// timelineLength computes a clip's timeline duration from its trim window
// and playback speed.
func timelineLength(trimFrames int, speed float64) int {
	if speed <= 0 {
		speed = 1
	}
	n := int(math.Round(float64(trimFrames) / speed))
	if n < 1 {
		n = 1
	}
	return n
}

// findClip returns the index of the clip with the given id, or -1.
func findClip(clips []models.Clip, id string) int {
	for i := range clips {
		if clips[i].ID == id {
			return i
		}
	}
	return -1
}

// packSequential reassigns StartFrame/EndFrame for every clip in the slice
// in its current order, back-to-back from frame 0, preserving each clip's
// timeline duration. Trim windows are untouched.
func packSequential(clips []models.Clip) {
	pos := 0
	for i := range clips {
		dur := clips[i].DurationFrames()
		if dur < 1 {
			dur = timelineLength(clips[i].TrimLengthFrames(), clips[i].Speed)
		}
		clips[i].StartFrame = pos
		clips[i].EndFrame = pos + dur
		pos += dur
	}
}

func (e *Engine) refuse(op, clipID, reason string) {
	e.logger.WithFields(logrus.Fields{
		"op":     op,
		"clipId": clipID,
		"reason": reason,
	}).Warn("Mutation refused")
}

func framesFor(seconds, fps float64) int {
	return timecode.SecondsToFrames(seconds, fps)
}
