// Package mediapool maintains the library of source files clips are cut
// from. Files are classified by extension, probed for duration, and kept
// fresh by a filesystem watcher. Until a file has been probed its entry
// carries a placeholder duration that callers must correct via the clip
// store once the real value is known.
package mediapool

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"fluxcut/pkg/models"

	"github.com/dhowden/tag"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PlaceholderFrames is the stand-in duration (5 s at 30 fps) for media
// that has not been probed yet.
const PlaceholderFrames = 150

var mediaTypesByExt = map[string]models.MediaType{
	".mp4":  models.MediaVideo,
	".mov":  models.MediaVideo,
	".m4v":  models.MediaVideo,
	".webm": models.MediaVideo,
	".mkv":  models.MediaVideo,
	".wav":  models.MediaAudio,
	".mp3":  models.MediaAudio,
	".flac": models.MediaAudio,
	".m4a":  models.MediaAudio,
	".png":  models.MediaImage,
	".jpg":  models.MediaImage,
	".jpeg": models.MediaImage,
	".gif":  models.MediaImage,
	".webp": models.MediaImage,
}

// Pool is the in-memory media library, keyed by absolute path.
type Pool struct {
	libraryPath string
	fps         float64
	items       map[string]models.MediaItem
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	logger      *logrus.Logger
}

// New creates a media pool rooted at libraryPath; durations are probed at
// the given project frame rate.
func New(libraryPath string, fps float64, logger *logrus.Logger) *Pool {
	if logger == nil {
		logger = logrus.New()
	}
	return &Pool{
		libraryPath: libraryPath,
		fps:         fps,
		items:       make(map[string]models.MediaItem),
		logger:      logger,
	}
}

// ClassifyFile returns the media type for a filename, or false when the
// extension is not supported.
func ClassifyFile(name string) (models.MediaType, bool) {
	t, ok := mediaTypesByExt[strings.ToLower(filepath.Ext(name))]
	return t, ok
}

// Scan walks the library directory and probes every supported file using a
// worker pool sized to the CPU count.
func (p *Pool) Scan() error {
	p.logger.WithField("library_path", p.libraryPath).Info("Scanning media library")

	var wg sync.WaitGroup
	var count int64
	jobs := make(chan string, 100)

	numWorkers := runtime.NumCPU()
	for i := 0; i < numWorkers; i++ {
		go func() {
			for path := range jobs {
				if _, err := p.AddFile(path); err != nil {
					p.logger.WithField("path", path).WithError(err).Warn("Failed to add media file")
				} else {
					atomic.AddInt64(&count, 1)
				}
				wg.Done()
			}
		}()
	}

	walkErr := filepath.Walk(p.libraryPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if _, ok := ClassifyFile(path); ok {
			wg.Add(1)
			jobs <- path
		}
		return nil
	})

	wg.Wait()
	close(jobs)

	if walkErr != nil {
		return walkErr
	}
	p.logger.WithField("count", count).Info("Media library scan complete")
	return nil
}

// AddFile probes a single file and inserts (or refreshes) its pool entry.
// When probing fails the entry keeps the placeholder duration and stays
// unprobed; the error is returned for logging but the entry is usable.
func (p *Pool) AddFile(path string) (models.MediaItem, error) {
	mediaType, ok := ClassifyFile(path)
	if !ok {
		return models.MediaItem{}, os.ErrInvalid
	}

	st, err := os.Stat(path)
	if err != nil {
		return models.MediaItem{}, err
	}

	item := models.MediaItem{
		ID:             uuid.New().String(),
		Path:           path,
		Filename:       displayName(path, mediaType),
		Size:           st.Size(),
		Type:           mediaType,
		DurationFrames: PlaceholderFrames,
	}

	frames, probeErr := p.ProbeDurationFrames(path, p.fps)
	if probeErr == nil && frames > 0 {
		item.DurationFrames = frames
		item.Probed = true
	} else if probeErr != nil {
		p.logger.WithField("path", path).WithError(probeErr).Warn("Duration probe failed, using placeholder")
	}

	p.mu.Lock()
	if existing, ok := p.items[path]; ok {
		item.ID = existing.ID
	}
	p.items[path] = item
	p.mu.Unlock()

	return item, nil
}

// displayName prefers the embedded title tag for audio files and falls
// back to the base filename.
func displayName(path string, mediaType models.MediaType) string {
	base := filepath.Base(path)
	if mediaType != models.MediaAudio {
		return base
	}
	f, err := os.Open(path)
	if err != nil {
		return base
	}
	defer f.Close()
	meta, err := tag.ReadFrom(f)
	if err != nil || meta.Title() == "" {
		return base
	}
	return meta.Title() + filepath.Ext(path)
}

// RemoveFile drops a pool entry.
func (p *Pool) RemoveFile(path string) {
	p.mu.Lock()
	delete(p.items, path)
	p.mu.Unlock()
}

// Items returns the pool contents sorted by filename for a stable
// ordering, which regeneration depends on for determinism.
func (p *Pool) Items() []models.MediaItem {
	p.mu.RLock()
	out := make([]models.MediaItem, 0, len(p.items))
	for _, item := range p.items {
		out = append(out, item)
	}
	p.mu.RUnlock()

	sort.Slice(out, func(a, b int) bool {
		if out[a].Filename != out[b].Filename {
			return out[a].Filename < out[b].Filename
		}
		return out[a].Path < out[b].Path
	})
	return out
}

// Get returns the pool entry for a path.
func (p *Pool) Get(path string) (models.MediaItem, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	item, ok := p.items[path]
	return item, ok
}

// Len returns the number of pool entries.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.items)
}
