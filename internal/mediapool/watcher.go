package mediapool

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// StartWatcher begins monitoring the library directory recursively,
// re-probing files as they appear or change and dropping entries for
// removed files.
func (p *Pool) StartWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	p.watcher = watcher

	go p.watchFiles()

	if err := p.addDirectoryToWatcher(p.libraryPath); err != nil {
		return err
	}

	p.logger.WithField("library_path", p.libraryPath).Info("Media watcher started")
	return nil
}

// StopWatcher shuts the watcher down; safe to call when never started.
func (p *Pool) StopWatcher() {
	if p.watcher != nil {
		p.watcher.Close()
	}
}

// addDirectoryToWatcher recursively registers subdirectories.
func (p *Pool) addDirectoryToWatcher(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return p.watcher.Add(path)
		}
		return nil
	})
}

func (p *Pool) watchFiles() {
	for {
		select {
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			p.handleFileEvent(event)

		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			p.logger.WithError(err).Error("Media watcher error")
		}
	}
}

func (p *Pool) handleFileEvent(event fsnotify.Event) {
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return
	}

	switch {
	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := p.addDirectoryToWatcher(event.Name); err != nil {
				p.logger.WithField("dir", event.Name).WithError(err).Warn("Failed to watch new directory")
			}
			return
		}
		if _, ok := ClassifyFile(event.Name); !ok {
			return
		}
		if _, err := p.AddFile(event.Name); err != nil {
			p.logger.WithField("path", event.Name).WithError(err).Warn("Failed to refresh media file")
		} else {
			p.logger.WithField("path", event.Name).Debug("Media file refreshed")
		}

	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		p.RemoveFile(event.Name)
		p.logger.WithField("path", event.Name).Debug("Media file removed from pool")
	}
}
