package engine

import (
	"path/filepath"
	"strings"

	"fluxcut/internal/seedrand"
	"fluxcut/pkg/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Regeneration bounds: how many auto clips to cut and how long each may be.
const (
	regenMinClips      = 5
	regenMaxClips      = 15
	regenMinWindowSecs = 2.0
	regenMaxWindowSecs = 8.0
)

// RegenerateTimeline rebuilds the auto-generated portion of the timeline
// from the media pool. Manual, locked, and pinned clips survive untouched
// and keep their relative order; everything else is discarded. A random
// count (5-15) of new auto clips is cut from random pool sources with
// random 2-8s sub-windows, appended after the preserved clips, and the
// combined sequence is packed from frame 0.
//
// For a fixed seed and pool ordering the generated timing is deterministic;
// only the minted clip ids differ between runs.
func (e *Engine) RegenerateTimeline(clips []models.Clip, settings models.ProjectSettings, pool []models.MediaItem, seed string) ([]models.Clip, bool) {
	fps := settings.FrameRate
	rng := seedrand.New(seed)

	var out []models.Clip
	for i := range clips {
		c := &clips[i]
		if c.Origin == models.OriginManual || c.Locked || c.IsPinned {
			out = append(out, c.Clone())
		}
	}
	preserved := len(out)

	minWin := framesFor(regenMinWindowSecs, fps)
	count := rng.IntN(regenMinClips, regenMaxClips+1)
	generated := 0
	for n := 0; n < count; n++ {
		item, ok := seedrand.Choice(rng, pool)
		if !ok {
			break
		}
		if item.DurationFrames < minWin {
			// Source too short for the minimum window.
			continue
		}

		maxWin := framesFor(regenMaxWindowSecs, fps)
		if maxWin > item.DurationFrames {
			maxWin = item.DurationFrames
		}
		dur := rng.IntN(minWin, maxWin+1)
		trimStart := rng.IntN(0, item.DurationFrames-dur+1)

		name := strings.TrimSuffix(item.Filename, filepath.Ext(item.Filename))
		out = append(out, models.Clip{
			ID:                   uuid.New().String(),
			File:                 item.Filename,
			Name:                 name,
			Type:                 item.Type,
			SourceDurationFrames: item.DurationFrames,
			TrimStartFrame:       trimStart,
			TrimEndFrame:         trimStart + dur,
			Speed:                1,
			Volume:               100,
			Track:                1,
			Origin:               models.OriginAuto,
		})
		generated++
	}

	if generated == 0 && preserved == len(clips) {
		e.refuse("regenerateTimeline", "", "no usable sources in pool")
		return snapshot(clips), false
	}

	packSequential(out)
	e.logger.WithFields(logrus.Fields{
		"preserved": preserved,
		"generated": generated,
	}).Info("Regenerated timeline")
	return out, true
}
