package store

import (
	"math"

	"fluxcut/pkg/models"
)

// update applies fn to the clip with the given id under the write lock and
// notifies listeners when the clip was found.
func (s *Store) update(id string, fn func(c *models.Clip)) bool {
	s.mu.Lock()
	found := false
	for i := range s.clips {
		if s.clips[i].ID == id {
			fn(&s.clips[i])
			found = true
			break
		}
	}
	s.mu.Unlock()
	if found {
		s.notify()
	}
	return found
}

// PinClip sets or clears pin protection.
func (s *Store) PinClip(id string, pinned bool) bool {
	return s.update(id, func(c *models.Clip) { c.IsPinned = pinned })
}

// LockClip sets or clears lock protection.
func (s *Store) LockClip(id string, locked bool) bool {
	return s.update(id, func(c *models.Clip) { c.Locked = locked })
}

// SetClipMuted toggles the clip's mute flag.
func (s *Store) SetClipMuted(id string, muted bool) bool {
	return s.update(id, func(c *models.Clip) { c.IsMuted = muted })
}

// SetClipFolded toggles the presentation-only fold flag.
func (s *Store) SetClipFolded(id string, folded bool) bool {
	return s.update(id, func(c *models.Clip) { c.IsFolded = folded })
}

// SetClipReversed toggles reverse playback.
func (s *Store) SetClipReversed(id string, reversed bool) bool {
	return s.update(id, func(c *models.Clip) { c.Reversed = reversed })
}

// SetClipVolume sets the clip volume, clamped to [0,100].
func (s *Store) SetClipVolume(id string, volume float64) bool {
	if volume < 0 {
		volume = 0
	} else if volume > 100 {
		volume = 100
	}
	return s.update(id, func(c *models.Clip) { c.Volume = volume })
}

// SetClipSpeed changes playback speed, recomputes the clip's timeline end
// from its trim window, and magnetizes so downstream clips repack without
// gaps. Both steps land in one commit, so subscribers never observe the
// resized clip overlapping its neighbors.
func (s *Store) SetClipSpeed(id string, speed float64) bool {
	if speed <= 0 {
		s.logger.WithField("speed", speed).Warn("Ignoring non-positive speed")
		return false
	}
	return s.Apply(func(clips []models.Clip, _ models.ProjectSettings) ([]models.Clip, bool) {
		idx := -1
		for i := range clips {
			if clips[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return clips, false
		}
		c := &clips[idx]
		c.Speed = speed
		dur := int(math.Round(float64(c.TrimLengthFrames()) / speed))
		if dur < 1 {
			dur = 1
		}
		c.EndFrame = c.StartFrame + dur

		out, _ := s.engine.MagnetizeClips(clips)
		return out, true
	})
}

// SetClipDuration corrects a clip's source duration once real media
// metadata is known, clamping the trim window into the new bounds. The
// placeholder duration used before probing is replaced here.
func (s *Store) SetClipDuration(id string, sourceDurationFrames int) bool {
	if sourceDurationFrames < 1 {
		return false
	}
	return s.update(id, func(c *models.Clip) {
		c.SourceDurationFrames = sourceDurationFrames
		if c.TrimEndFrame > sourceDurationFrames {
			c.TrimEndFrame = sourceDurationFrames
		}
		if c.TrimStartFrame >= c.TrimEndFrame {
			c.TrimStartFrame = c.TrimEndFrame - 1
			if c.TrimStartFrame < 0 {
				c.TrimStartFrame = 0
				c.TrimEndFrame = 1
			}
		}
	})
}

// SelectSegment makes the clip the active selection, seeding the segment
// from its current trim window. Any previous selection is replaced; at
// most one segment is selected at a time.
func (s *Store) SelectSegment(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.clips {
		if s.clips[i].ID == id {
			s.selection = &SelectedSegment{
				ClipID:         id,
				TrimStartFrame: s.clips[i].TrimStartFrame,
				TrimEndFrame:   s.clips[i].TrimEndFrame,
			}
			return true
		}
	}
	return false
}

// Selection returns the active segment selection, if any.
func (s *Store) Selection() (SelectedSegment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selection == nil {
		return SelectedSegment{}, false
	}
	return *s.selection, true
}

// ClearSelection drops the active selection.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	s.selection = nil
	s.mu.Unlock()
}

// SetClipBeats caches audio analysis results on a clip. Results arriving
// for a clip that no longer exists are discarded by update's id match.
func (s *Store) SetClipBeats(id string, bpm float64, beats []models.BeatMarker) bool {
	return s.update(id, func(c *models.Clip) {
		c.BPM = bpm
		c.Beats = append([]models.BeatMarker(nil), beats...)
	})
}
