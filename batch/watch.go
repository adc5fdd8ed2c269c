package batch

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Handler receives the changes a Watcher observes.
type Handler interface {
	Changed(path string)
	Removed(path string)
}

// Watcher polls a directory tree for added, modified and removed .java
// files.
type Watcher struct {
	root         string
	handler      Handler
	stopCh       chan struct{}
	pollInterval time.Duration
	modTimes     map[string]time.Time
}

func NewWatcher(root string, handler Handler, pollInterval time.Duration) *Watcher {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &Watcher{
		root:         root,
		handler:      handler,
		stopCh:       make(chan struct{}),
		pollInterval: pollInterval,
		modTimes:     make(map[string]time.Time),
	}
}

func (w *Watcher) Start() {
	go w.run()
}

func (w *Watcher) Stop() {
	close(w.stopCh)
}

func (w *Watcher) run() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.Scan()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Scan()
		}
	}
}

// Scan compares the tree with the previous scan and reports differences.
// The first scan reports every file as changed.
func (w *Watcher) Scan() {
	currentFiles := make(map[string]bool)

	filepath.Walk(w.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if path != w.root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsJavaFile(path) {
			return nil
		}

		currentFiles[path] = true

		lastMod, known := w.modTimes[path]
		if !known || info.ModTime().After(lastMod) {
			w.modTimes[path] = info.ModTime()
			w.handler.Changed(path)
		}
		return nil
	})

	for path := range w.modTimes {
		if !currentFiles[path] {
			delete(w.modTimes, path)
			w.handler.Removed(path)
		}
	}
}
