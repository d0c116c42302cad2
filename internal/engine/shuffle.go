package engine

import (
	"fluxcut/internal/seedrand"
	"fluxcut/pkg/models"

	"github.com/sirupsen/logrus"
)

// ShuffleClips permutes the eligible clips among their own array slots.
// Only auto-origin clips that are neither locked nor pinned participate;
// every other clip keeps both its slot and its contents. Requires at least
// two eligible clips.
//
// Array position is the canonical ordering contract: the shuffled clips are
// written back into the vacated slots in permuted order, and each one adopts
// the vacated slot's start position so timeline placement agrees with slot
// order. Clips keep their own lengths, so unequal durations can leave gaps
// or overlaps until a subsequent repack removes them.
func (e *Engine) ShuffleClips(clips []models.Clip, settings models.ProjectSettings) ([]models.Clip, bool) {
	out := snapshot(clips)

	var slots []int
	for i := range out {
		c := &out[i]
		if c.Origin != models.OriginManual && !c.Locked && !c.IsPinned {
			slots = append(slots, i)
		}
	}
	if len(slots) < 2 {
		e.refuse("shuffleClips", "", "fewer than two eligible clips")
		return out, false
	}

	eligible := make([]models.Clip, len(slots))
	for k, i := range slots {
		eligible[k] = out[i]
	}

	rng := seedrand.New(settings.Seed)
	shuffled := seedrand.Shuffle(rng, eligible)
	for k, i := range slots {
		c := shuffled[k]
		dur := c.DurationFrames()
		c.StartFrame = out[i].StartFrame
		c.EndFrame = c.StartFrame + dur
		out[i] = c
	}

	e.logger.WithField("shuffled", len(slots)).Info("Shuffled clips")
	return out, true
}

// SwapClip exchanges the target clip with one uniformly random other
// non-pinned clip. The full clip values trade array slots, ids included,
// and each adopts its new slot's start position so slot order and timeline
// placement stay in agreement. Refuses when the target is pinned or no
// partner exists.
func (e *Engine) SwapClip(clips []models.Clip, settings models.ProjectSettings, clipID string) ([]models.Clip, bool) {
	out := snapshot(clips)
	i := findClip(out, clipID)
	if i < 0 {
		e.refuse("swapClip", clipID, "clip not found")
		return out, false
	}
	if out[i].IsPinned {
		e.refuse("swapClip", clipID, "clip is pinned")
		return out, false
	}

	var partners []int
	for j := range out {
		if j != i && !out[j].IsPinned {
			partners = append(partners, j)
		}
	}
	rng := seedrand.New(settings.Seed + clipID)
	j, ok := seedrand.Choice(rng, partners)
	if !ok {
		e.refuse("swapClip", clipID, "no swap partner available")
		return out, false
	}

	si, sj := out[i].StartFrame, out[j].StartFrame
	out[i], out[j] = out[j], out[i]
	di, dj := out[i].DurationFrames(), out[j].DurationFrames()
	out[i].StartFrame, out[i].EndFrame = si, si+di
	out[j].StartFrame, out[j].EndFrame = sj, sj+dj

	e.logger.WithFields(logrus.Fields{
		"clipId": clipID,
		"slotA":  i,
		"slotB":  j,
	}).Debug("Swapped clips")
	return out, true
}

// Chaos is the compound operation: shuffle the eligible clips, then run a
// global flux over the result. Either half may individually refuse; the
// operation reports change if either half changed something.
func (e *Engine) Chaos(clips []models.Clip, settings models.ProjectSettings) ([]models.Clip, bool) {
	mid, shuffled := e.ShuffleClips(clips, settings)
	out, fluxed := e.GlobalFlux(mid, settings)
	return out, shuffled || fluxed
}
