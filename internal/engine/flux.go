package engine

import (
	"sort"

	"fluxcut/internal/seedrand"
	"fluxcut/pkg/models"

	"github.com/sirupsen/logrus"
)

// RandomizeSegment performs a slip edit on one clip: the trim window moves
// to a uniformly random position in the source while its length and the
// clip's timeline placement stay fixed. The PRNG is seeded with the project
// seed concatenated with the clip id, so the result is replayable per clip.
//
// Refuses (no-op, warning logged) when the source duration is unknown or
// under one second, or the clip is pinned or locked.
func (e *Engine) RandomizeSegment(clips []models.Clip, settings models.ProjectSettings, clipID string) ([]models.Clip, bool) {
	out := snapshot(clips)
	i := findClip(out, clipID)
	if i < 0 {
		e.refuse("randomizeSegment", clipID, "clip not found")
		return out, false
	}
	c := &out[i]

	switch {
	case c.SourceDurationFrames <= 0:
		e.refuse("randomizeSegment", clipID, "source duration unknown")
		return out, false
	case c.SourceDurationFrames < framesFor(minSegmentSeconds, settings.FrameRate):
		e.refuse("randomizeSegment", clipID, "source shorter than one second")
		return out, false
	case c.IsPinned:
		e.refuse("randomizeSegment", clipID, "clip is pinned")
		return out, false
	case c.Locked:
		e.refuse("randomizeSegment", clipID, "clip is locked")
		return out, false
	}

	segLen := c.TrimLengthFrames()
	maxStart := c.SourceDurationFrames - segLen
	if maxStart < 0 {
		e.refuse("randomizeSegment", clipID, "trim window exceeds source")
		return out, false
	}

	rng := seedrand.New(settings.Seed + clipID)
	newStart := rng.IntN(0, maxStart+1)
	c.TrimStartFrame = newStart
	c.TrimEndFrame = newStart + segLen

	e.logger.WithFields(logrus.Fields{
		"clipId":    clipID,
		"trimStart": newStart,
		"segLen":    segLen,
	}).Debug("Slipped segment")
	return out, true
}

// RandomizeClipDuration re-draws one clip's duration uniformly between one
// second and min(source length, ten seconds), then picks a new trim start
// in the remaining source range. The timeline start is unchanged; the end
// frame follows from the new trim length and the clip's speed.
func (e *Engine) RandomizeClipDuration(clips []models.Clip, settings models.ProjectSettings, clipID string) ([]models.Clip, bool) {
	out := snapshot(clips)
	i := findClip(out, clipID)
	if i < 0 {
		e.refuse("randomizeClipDuration", clipID, "clip not found")
		return out, false
	}
	c := &out[i]

	if c.IsPinned || c.Locked {
		e.refuse("randomizeClipDuration", clipID, "clip is protected")
		return out, false
	}
	if c.SourceDurationFrames <= 0 {
		e.refuse("randomizeClipDuration", clipID, "source duration unknown")
		return out, false
	}

	fps := settings.FrameRate
	minDur := framesFor(minFluxSeconds, fps)
	maxDur := c.SourceDurationFrames
	if cap := framesFor(maxFluxSeconds, fps); cap < maxDur {
		maxDur = cap
	}
	if maxDur <= minDur {
		e.refuse("randomizeClipDuration", clipID, "duration bounds invalid")
		return out, false
	}

	rng := seedrand.New(settings.Seed + clipID)
	newDur := rng.IntN(minDur, maxDur+1)
	newStart := rng.IntN(0, c.SourceDurationFrames-newDur+1)

	c.TrimStartFrame = newStart
	c.TrimEndFrame = newStart + newDur
	c.EndFrame = c.StartFrame + timelineLength(newDur, c.Speed)

	e.logger.WithFields(logrus.Fields{
		"clipId":   clipID,
		"duration": newDur,
	}).Debug("Fluxed clip duration")
	return out, true
}

// GlobalFlux re-draws the trim window of every mutable clip, then repacks
// the whole timeline sequentially with no gaps.
//
// Clips that are pinned, locked, or of unknown source duration are fixed:
// their trim windows are untouched. When the project has a target total
// duration, the mutable clips' new lengths are solved so their sum plus the
// fixed clips' lengths hits the target exactly whenever total source
// capacity allows, degrading to an under-shoot when it does not. Without a
// target, each mutable clip draws independently in [0.25s, min(source,10s)].
//
// The repack reassigns StartFrame/EndFrame for ALL clips, fixed included,
// in ascending original StartFrame order; pin protection covers ordering
// and trim, not the gap removal of this final pass.
func (e *Engine) GlobalFlux(clips []models.Clip, settings models.ProjectSettings) ([]models.Clip, bool) {
	out := snapshot(clips)
	if len(out) == 0 {
		return out, false
	}

	fps := settings.FrameRate
	rng := seedrand.New(settings.Seed)

	var mutable []int
	fixedTrim := 0
	for i := range out {
		c := &out[i]
		if c.IsPinned || c.Locked || c.SourceDurationFrames <= 0 {
			fixedTrim += c.TrimLengthFrames()
			continue
		}
		mutable = append(mutable, i)
	}
	if len(mutable) == 0 {
		e.refuse("globalFlux", "", "no mutable clips")
		return out, false
	}

	var alloc []int
	if settings.TargetDurationSeconds > 0 {
		target := framesFor(settings.TargetDurationSeconds, fps) - fixedTrim
		if target < 0 {
			target = 0
		}
		alloc = e.allocateTarget(out, mutable, target, fps)
	} else {
		alloc = e.allocateChaotic(out, mutable, rng, fps)
	}

	for k, i := range mutable {
		c := &out[i]
		dur := alloc[k]
		start := rng.IntN(0, c.SourceDurationFrames-dur+1)
		c.TrimStartFrame = start
		c.TrimEndFrame = start + dur
		c.EndFrame = c.StartFrame + timelineLength(dur, c.Speed)
	}

	// StartFrame is still each clip's original placement at this point, so
	// this orders by pre-flux timeline position.
	sort.SliceStable(out, func(a, b int) bool { return out[a].StartFrame < out[b].StartFrame })
	packSequential(out)

	e.logger.WithFields(logrus.Fields{
		"mutable": len(mutable),
		"total":   len(out),
	}).Info("Global flux applied")
	return out, true
}

// allocateTarget distributes targetFrames across the mutable clips. Each
// clip first receives a floor of 0.25s (capped by its source length), then
// the remainder is spread round-robin in slices of
// max(1, remaining/absorbers) over clips still below their source ceiling.
// The loop always terminates: a round either places at least one frame or
// finds every clip saturated. When rounding would strand frames, the
// round-robin order hands them to the earliest clip with headroom.
func (e *Engine) allocateTarget(clips []models.Clip, mutable []int, targetFrames int, fps float64) []int {
	floor := framesFor(fluxFloorSeconds, fps)
	if floor < 1 {
		floor = 1
	}

	alloc := make([]int, len(mutable))
	used := 0
	for k, i := range mutable {
		f := floor
		if src := clips[i].SourceDurationFrames; f > src {
			f = src
		}
		alloc[k] = f
		used += f
	}

	remaining := targetFrames - used
	for remaining > 0 {
		absorbers := 0
		for k, i := range mutable {
			if alloc[k] < clips[i].SourceDurationFrames {
				absorbers++
			}
		}
		if absorbers == 0 {
			e.logger.WithField("unallocated", remaining).Warn("Target duration exceeds total source capacity")
			break
		}

		slice := remaining / absorbers
		if slice < 1 {
			slice = 1
		}
		for k, i := range mutable {
			if remaining == 0 {
				break
			}
			headroom := clips[i].SourceDurationFrames - alloc[k]
			if headroom <= 0 {
				continue
			}
			give := slice
			if give > headroom {
				give = headroom
			}
			if give > remaining {
				give = remaining
			}
			alloc[k] += give
			remaining -= give
		}
	}
	return alloc
}

// allocateChaotic draws each mutable clip's duration independently in
// [0.25s, min(source, 10s)] with no cross-clip coupling.
func (e *Engine) allocateChaotic(clips []models.Clip, mutable []int, rng *seedrand.Rand, fps float64) []int {
	floor := framesFor(fluxFloorSeconds, fps)
	if floor < 1 {
		floor = 1
	}
	cap := framesFor(maxFluxSeconds, fps)

	alloc := make([]int, len(mutable))
	for k, i := range mutable {
		max := clips[i].SourceDurationFrames
		if max > cap {
			max = cap
		}
		min := floor
		if min > max {
			min = max
		}
		alloc[k] = rng.IntN(min, max+1)
	}
	return alloc
}
