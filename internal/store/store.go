// Package store holds the canonical in-memory timeline state: project
// settings, the clip collection, and the selection. Every mutation goes
// through a read-snapshot / transform / atomic-replace cycle under one
// mutex, so concurrent callers serialize and no reader ever sees a
// half-mutated timeline. Listeners are notified after each commit.
package store

import (
	"path/filepath"
	"strings"
	"sync"

	"fluxcut/internal/engine"
	"fluxcut/pkg/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Snapshot is an immutable copy of the store state handed to listeners.
type Snapshot struct {
	Settings models.ProjectSettings
	Clips    []models.Clip
}

// SelectedSegment is the at-most-one active trim selection.
type SelectedSegment struct {
	ClipID         string
	TrimStartFrame int
	TrimEndFrame   int
}

// Store is the single commit point for timeline state.
type Store struct {
	mu        sync.RWMutex
	settings  models.ProjectSettings
	clips     []models.Clip
	selection *SelectedSegment
	listeners []chan Snapshot
	engine    *engine.Engine
	logger    *logrus.Logger
}

// New creates a store with the given project settings.
func New(settings models.ProjectSettings, logger *logrus.Logger) *Store {
	if logger == nil {
		logger = logrus.New()
	}
	return &Store{
		settings: settings,
		engine:   engine.New(logger),
		logger:   logger,
	}
}

// Engine exposes the mutation engine bound to this store's logger.
func (s *Store) Engine() *engine.Engine {
	return s.engine
}

// Settings returns a copy of the project settings.
func (s *Store) Settings() models.ProjectSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// SetSettings replaces the project settings.
func (s *Store) SetSettings(settings models.ProjectSettings) {
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
	s.notify()
}

// Clips returns a deep copy of the clip collection.
func (s *Store) Clips() []models.Clip {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyClips(s.clips)
}

// ClipCount returns the number of clips on the timeline.
func (s *Store) ClipCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clips)
}

// GetClip returns a copy of the clip with the given id.
func (s *Store) GetClip(id string) (models.Clip, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.clips {
		if s.clips[i].ID == id {
			return s.clips[i].Clone(), true
		}
	}
	return models.Clip{}, false
}

// Replace atomically installs a new clip collection. This is the commit
// path for every engine operation.
func (s *Store) Replace(clips []models.Clip) {
	s.mu.Lock()
	s.clips = copyClips(clips)
	s.pruneSelection()
	s.mu.Unlock()
	s.notify()
}

// Apply runs a transformation over a snapshot of the clip collection and
// commits the result, all under the store lock. It returns the reported
// change flag. Engine operations invoked through Apply therefore serialize
// even when called from multiple goroutines.
func (s *Store) Apply(fn func(clips []models.Clip, settings models.ProjectSettings) ([]models.Clip, bool)) bool {
	s.mu.Lock()
	next, changed := fn(copyClips(s.clips), s.settings)
	if changed {
		s.clips = copyClips(next)
		s.pruneSelection()
	}
	s.mu.Unlock()
	if changed {
		s.notify()
	}
	return changed
}

// AddMediaClip materializes a clip from a media-pool item and appends it to
// the end of the primary track with its full source window.
func (s *Store) AddMediaClip(item models.MediaItem, origin models.ClipOrigin) models.Clip {
	dur := item.DurationFrames
	if dur < 1 {
		dur = 1
	}
	clip := models.Clip{
		ID:                   uuid.New().String(),
		File:                 item.Filename,
		Name:                 strings.TrimSuffix(item.Filename, filepath.Ext(item.Filename)),
		Type:                 item.Type,
		SourceDurationFrames: item.DurationFrames,
		TrimStartFrame:       0,
		TrimEndFrame:         dur,
		Speed:                1,
		Volume:               100,
		Track:                1,
		Origin:               origin,
	}

	s.mu.Lock()
	end := 0
	for i := range s.clips {
		if s.clips[i].Track == clip.Track && s.clips[i].EndFrame > end {
			end = s.clips[i].EndFrame
		}
	}
	clip.StartFrame = end
	clip.EndFrame = end + dur
	s.clips = append(s.clips, clip)
	s.mu.Unlock()
	s.notify()

	s.logger.WithFields(logrus.Fields{
		"clipId": clip.ID,
		"file":   clip.File,
	}).Info("Added clip to timeline")
	return clip
}

// DuplicateClip clones a clip under a fresh id and inserts the copy right
// after the original.
func (s *Store) DuplicateClip(id string) (models.Clip, bool) {
	s.mu.Lock()
	idx := -1
	for i := range s.clips {
		if s.clips[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return models.Clip{}, false
	}
	dup := s.clips[idx].Clone()
	dup.ID = uuid.New().String()
	s.clips = append(s.clips[:idx+1], append([]models.Clip{dup}, s.clips[idx+1:]...)...)
	s.mu.Unlock()
	s.notify()
	return dup, true
}

// RemoveClip deletes a clip by id.
func (s *Store) RemoveClip(id string) bool {
	s.mu.Lock()
	idx := -1
	for i := range s.clips {
		if s.clips[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.clips = append(s.clips[:idx], s.clips[idx+1:]...)
	s.pruneSelection()
	s.mu.Unlock()
	s.notify()
	return true
}

// Reset drops every clip and the selection.
func (s *Store) Reset() {
	s.mu.Lock()
	s.clips = nil
	s.selection = nil
	s.mu.Unlock()
	s.notify()
}

func copyClips(clips []models.Clip) []models.Clip {
	out := make([]models.Clip, len(clips))
	for i := range clips {
		out[i] = clips[i].Clone()
	}
	return out
}

// pruneSelection drops the selection when its clip no longer exists.
// Caller must hold the write lock.
func (s *Store) pruneSelection() {
	if s.selection == nil {
		return
	}
	for i := range s.clips {
		if s.clips[i].ID == s.selection.ClipID {
			return
		}
	}
	s.selection = nil
}
