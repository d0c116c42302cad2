package timecode

import (
	"fmt"
	"math"
)

// epsilon absorbs floating-point drift so exact frame boundaries
// (e.g. 1/30 s at 30 fps) do not round down.
const epsilon = 1e-4

// SecondsToFrames converts a duration in seconds to a whole frame count at
// the given frame rate. Frames are the single source of truth for timing;
// seconds exist only for display and media probing.
func SecondsToFrames(seconds, fps float64) int {
	return int(math.Floor(seconds*fps + epsilon))
}

// FramesToSeconds converts a frame count back to seconds.
func FramesToSeconds(frames int, fps float64) float64 {
	return float64(frames) / fps
}

// FormatTimecode renders a frame count as a zero-padded HH:MM:SS:FF string.
func FormatTimecode(frames int, fps float64) string {
	if frames < 0 {
		frames = 0
	}
	fpsInt := int(math.Round(fps))
	if fpsInt < 1 {
		fpsInt = 1
	}
	ff := frames % fpsInt
	totalSeconds := frames / fpsInt
	ss := totalSeconds % 60
	mm := (totalSeconds / 60) % 60
	hh := totalSeconds / 3600
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hh, mm, ss, ff)
}
