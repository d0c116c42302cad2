package engine

import (
	"sort"

	"fluxcut/pkg/models"

	"github.com/sirupsen/logrus"
)

// onPrimaryTrack reports whether a clip belongs to the track magnetize
// operates on: track 1, or 0 when no track was ever assigned.
func onPrimaryTrack(c *models.Clip) bool {
	return c.Track == 1 || c.Track == 0
}

// MagnetizeClips removes gaps on the primary track: its clips are packed
// back-to-back from frame 0 in ascending current StartFrame order. Trim
// windows and durations are untouched; only timeline placement changes.
// Clips on other tracks are left alone.
func (e *Engine) MagnetizeClips(clips []models.Clip) ([]models.Clip, bool) {
	out := snapshot(clips)

	var idx []int
	for i := range out {
		if onPrimaryTrack(&out[i]) {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return out, false
	}

	order := append([]int(nil), idx...)
	sort.SliceStable(order, func(a, b int) bool {
		return out[order[a]].StartFrame < out[order[b]].StartFrame
	})

	pos := 0
	changed := false
	for _, i := range order {
		dur := out[i].DurationFrames()
		if out[i].StartFrame != pos || out[i].EndFrame != pos+dur {
			changed = true
		}
		out[i].StartFrame = pos
		out[i].EndFrame = pos + dur
		pos += dur
	}

	if changed {
		e.logger.WithField("packed", len(idx)).Debug("Magnetized primary track")
	}
	return out, changed
}

// ReorderClips moves a clip within the sorted-by-StartFrame view from one
// index to another, then repacks the whole sequence from frame 0. This is
// an explicit user action: the repack ignores pin and lock protection.
// The returned array is in the new timeline order.
func (e *Engine) ReorderClips(clips []models.Clip, fromIndex, toIndex int) ([]models.Clip, bool) {
	out := snapshot(clips)
	if fromIndex < 0 || fromIndex >= len(out) || toIndex < 0 || toIndex >= len(out) {
		e.logger.WithFields(logrus.Fields{
			"from": fromIndex,
			"to":   toIndex,
		}).Warn("Reorder indices out of range")
		return out, false
	}
	if fromIndex == toIndex {
		return out, false
	}

	sort.SliceStable(out, func(a, b int) bool { return out[a].StartFrame < out[b].StartFrame })

	moved := out[fromIndex]
	out = append(out[:fromIndex], out[fromIndex+1:]...)
	out = append(out[:toIndex], append([]models.Clip{moved}, out[toIndex:]...)...)

	packSequential(out)
	e.logger.WithFields(logrus.Fields{
		"from": fromIndex,
		"to":   toIndex,
	}).Debug("Reordered clips")
	return out, true
}
