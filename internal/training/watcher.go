// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package training

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// INDEX WATCHER
// =============================================================================

// ReadyFunc is invoked when a chatbot's trained index appears or
// disappears on disk.
type ReadyFunc func(company, team, part, name string, ready bool)

// IndexWatcher watches the chatbots tree for faiss.index files so the UI
// can reflect index readiness without polling on every list refresh. Index
// files are written by the trainer process (or removed by a delete), so
// changes arrive from outside this process.
type IndexWatcher struct {
	root     string // <data>/chatbots
	onReady  ReadyFunc
	watcher  *fsnotify.Watcher
	debounce time.Duration
	mu       sync.Mutex
	pending  map[string]time.Time // index file path -> last change time
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewIndexWatcher creates a watcher over the chatbots root directory.
func NewIndexWatcher(root string, debounce time.Duration, onReady ReadyFunc) (*IndexWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &IndexWatcher{
		root:     root,
		onReady:  onReady,
		watcher:  watcher,
		debounce: debounce,
		pending:  make(map[string]time.Time),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Watch starts watching for index changes.
func (iw *IndexWatcher) Watch() error {
	if err := os.MkdirAll(iw.root, 0o755); err != nil {
		return err
	}
	if err := iw.addRecursive(iw.root); err != nil {
		return err
	}

	go iw.processEvents()
	go iw.processPending()

	return nil
}

// addRecursive adds a directory and all its subdirectories to the watch list
func (iw *IndexWatcher) addRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if !info.IsDir() {
			return nil
		}
		if err := iw.watcher.Add(path); err != nil {
			// Non-fatal, continue
			return nil
		}
		return nil
	})
}

func (iw *IndexWatcher) processEvents() {
	for {
		select {
		case <-iw.ctx.Done():
			return

		case event, ok := <-iw.watcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				if filepath.Base(event.Name) == "faiss.index" {
					iw.mu.Lock()
					iw.pending[event.Name] = time.Now()
					iw.mu.Unlock()
				}
			}

			// New chatbot folders appear while a job is staging; watch them.
			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := iw.addRecursive(event.Name); err != nil {
						time.Sleep(100 * time.Millisecond)
						iw.addRecursive(event.Name)
					}
				}
			}

		case _, ok := <-iw.watcher.Errors:
			if !ok {
				return
			}
			// Non-fatal; readiness is re-derived on the next event.
		}
	}
}

// processPending drains debounced changes and fires the callback.
func (iw *IndexWatcher) processPending() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-iw.ctx.Done():
			return

		case <-ticker.C:
			now := time.Now()

			iw.mu.Lock()
			var toProcess []string
			for path, changeTime := range iw.pending {
				if now.Sub(changeTime) >= iw.debounce {
					toProcess = append(toProcess, path)
					delete(iw.pending, path)
				}
			}
			iw.mu.Unlock()

			for _, path := range toProcess {
				iw.notify(path)
			}
		}
	}
}

// notify resolves an index path back to its chatbot and reports readiness.
// Layout: <root>/<company>/<team>/<part>/<name>/index/faiss.index.
func (iw *IndexWatcher) notify(path string) {
	rel, err := filepath.Rel(iw.root, path)
	if err != nil {
		return
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 6 || parts[4] != "index" || parts[5] != "faiss.index" {
		return
	}
	_, statErr := os.Stat(path)
	iw.onReady(parts[0], parts[1], parts[2], parts[3], statErr == nil)
}

// Close stops watching and releases resources.
func (iw *IndexWatcher) Close() error {
	iw.cancel()
	if iw.watcher != nil {
		return iw.watcher.Close()
	}
	return nil
}
