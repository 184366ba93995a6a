package watcher

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"

	"stickerforge/config"
)

// Watcher monitors the source tree and triggers pack regeneration
type Watcher struct {
	cfg        *config.Config
	watcher    *fsnotify.Watcher
	events     chan Event
	regenerate func()
	regenMu    sync.Mutex
	stop       chan struct{}
}

// Event represents a file system event
type Event struct {
	Type     EventType
	FilePath string
}

// EventType represents the type of file event
type EventType int

const (
	EventCreated EventType = iota
	EventModified
	EventDeleted
)

var watchedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// NewWatcher creates a new file watcher. The regenerate callback runs after
// a debounced burst of changes in the source tree.
func NewWatcher(cfg *config.Config, regenerate func()) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		cfg:        cfg,
		watcher:    fsWatcher,
		events:     make(chan Event, 100),
		regenerate: regenerate,
		stop:       make(chan struct{}),
	}, nil
}

// Start begins monitoring the source directory tree
func (w *Watcher) Start() error {
	// fsnotify does not recurse, so every subdirectory is added explicitly
	err := filepath.WalkDir(w.cfg.SourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch folder %s: %w", path, err)
		}
		log.WithField("folder", path).Debug("watching folder")
		return nil
	})
	if err != nil {
		return err
	}

	go w.processEvents()

	return nil
}

// processEvents handles fsnotify events and converts them to our event type
func (w *Watcher) processEvents() {
	// Debounce timer so one regeneration covers a burst of changes
	debounce := time.Duration(w.cfg.Watch.DebounceMs) * time.Millisecond
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	var timer *time.Timer

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			// A created directory joins the watch set so new subtrees count
			if event.Op&fsnotify.Create == fsnotify.Create {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					if err := w.watcher.Add(event.Name); err == nil {
						log.WithField("folder", event.Name).Debug("watching new folder")
					}
					continue
				}
			}

			if !watchedExtensions[strings.ToLower(filepath.Ext(event.Name))] {
				continue
			}

			// Skip temp/hidden files
			if filepath.Base(event.Name)[0] == '.' {
				continue
			}

			w.handleEvent(event)

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, w.runRegenerate)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.WithError(err).Warn("watcher error")

		case <-w.stop:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// runRegenerate invokes the regenerate callback. Debounce timers fire on
// their own goroutines, so the mutex keeps a late burst from running a
// second regeneration concurrently with one still in progress.
func (w *Watcher) runRegenerate() {
	if w.regenerate == nil {
		return
	}
	w.regenMu.Lock()
	defer w.regenMu.Unlock()
	w.regenerate()
}

// handleEvent forwards a single file event to the event channel
func (w *Watcher) handleEvent(event fsnotify.Event) {
	var eventType EventType

	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		eventType = EventCreated
	case event.Op&fsnotify.Write == fsnotify.Write:
		eventType = EventModified
	case event.Op&fsnotify.Remove == fsnotify.Remove:
		eventType = EventDeleted
	default:
		return // Ignore other events
	}

	log.WithFields(log.Fields{
		"file": event.Name,
		"op":   event.Op.String(),
	}).Info("source image changed")

	// Never block event processing on a slow consumer
	select {
	case w.events <- Event{Type: eventType, FilePath: event.Name}:
	default:
	}
}

// Events returns the event channel
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	close(w.stop)
	return w.watcher.Close()
}
