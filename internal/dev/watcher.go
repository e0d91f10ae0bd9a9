package dev

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ChangeType classifies a file change for the reload server.
type ChangeType int

const (
	// ChangeCSS means only stylesheets changed; browsers can hot-swap them.
	ChangeCSS ChangeType = iota
	// ChangeFull means anything else changed and a full reload is needed.
	ChangeFull
)

// Change describes a single detected file change.
type Change struct {
	Path string
	Type ChangeType
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Paths to watch recursively.
	Paths []string

	// Ignore patterns. Matched against base names (glob) and path segments.
	Ignore []string

	// Interval between filesystem scans (default: 500ms).
	Interval time.Duration

	// OnChange is called once per scan that found changes, with the first
	// change detected.
	OnChange func(Change)
}

// DefaultIgnore is the ignore list applied when none is configured.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	"dist",
	"tmp",
	".strato",
	"*.tmp",
	"*.swp",
	"*~",
}

// Watcher polls the filesystem for changed, added, or removed files.
//
// Polling keeps the watcher portable and dependency-free; at the scan
// intervals used in development the cost is negligible.
type Watcher struct {
	config     WatcherConfig
	timestamps map[string]time.Time
	mu         sync.Mutex
	running    bool
	stopCh     chan struct{}
}

// NewWatcher creates a watcher for the given config.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Interval <= 0 {
		config.Interval = 500 * time.Millisecond
	}
	if config.Ignore == nil {
		config.Ignore = DefaultIgnore
	}
	return &Watcher{
		config:     config,
		timestamps: make(map[string]time.Time),
		stopCh:     make(chan struct{}),
	}
}

// Start begins watching. It blocks until the context is cancelled or Stop
// is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.scanInitial(); err != nil {
		return err
	}

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.setRunning(false)
			return ctx.Err()
		case <-w.stopCh:
			w.setRunning(false)
			return nil
		case <-ticker.C:
			if change, ok := w.checkForChanges(); ok && w.config.OnChange != nil {
				w.config.OnChange(change)
			}
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

// IsRunning reports whether the watcher loop is active.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) setRunning(v bool) {
	w.mu.Lock()
	w.running = v
	w.mu.Unlock()
}

// scanInitial records modification times for every watched file so the
// first tick does not report the whole tree as changed.
func (w *Watcher) scanInitial() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, root := range w.config.Paths {
		err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil // Skip unreadable entries
			}
			if w.shouldIgnore(root, path) {
				if info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !info.IsDir() {
				w.timestamps[path] = info.ModTime()
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// checkForChanges rescans the tree and reports the first change found.
func (w *Watcher) checkForChanges() (Change, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	seen := make(map[string]bool, len(w.timestamps))
	var change Change
	var found bool

	for _, root := range w.config.Paths {
		filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if w.shouldIgnore(root, path) {
				if info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if info.IsDir() {
				return nil
			}

			seen[path] = true
			prev, known := w.timestamps[path]
			if !known || !prev.Equal(info.ModTime()) {
				w.timestamps[path] = info.ModTime()
				if !found {
					change = Change{Path: path, Type: classifyChange(path)}
					found = true
				}
			}
			return nil
		})
	}

	// Deleted files
	for path := range w.timestamps {
		if !seen[path] {
			delete(w.timestamps, path)
			if !found {
				change = Change{Path: path, Type: classifyChange(path)}
				found = true
			}
		}
	}

	return change, found
}

// shouldIgnore reports whether a path matches the ignore list. Segment
// matching considers only the portion of the path below the watch root,
// so a root that itself lives under a directory named like an ignore
// pattern (a checkout in /tmp, say) is still watched.
func (w *Watcher) shouldIgnore(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return false
	}
	base := filepath.Base(path)
	for _, pattern := range w.config.Ignore {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
		if pathHasSegment(rel, pattern) {
			return true
		}
	}
	return false
}

// pathHasSegment reports whether any directory segment of path equals name.
func pathHasSegment(path, name string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		if seg == name {
			return true
		}
	}
	return false
}

// classifyChange decides whether a change can be applied without a full
// page reload.
func classifyChange(path string) ChangeType {
	if strings.EqualFold(filepath.Ext(path), ".css") {
		return ChangeCSS
	}
	return ChangeFull
}
