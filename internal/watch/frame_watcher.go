// Package watch rebuilds a Σ-frame whenever a block list file changes.
package watch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"sigmair/internal/logging"
	"sigmair/internal/sigma"
)

// DefaultDebounce is how long a file must stay quiet before a rebuild.
const DefaultDebounce = 200 * time.Millisecond

// Update is delivered to the handler after each rebuild.
type Update struct {
	Path    string
	Blocks  []string
	Frame   string
	Preview []sigma.PreviewEntry
	Err     error
}

// Stats tracks watcher activity.
type Stats struct {
	Events        int
	Rebuilds      int
	Errors        int
	LastEventTime time.Time
	LastEventType string
}

// FrameWatcher watches one block list file (one block per line) and hands
// a freshly built frame to its handler after the file settles.
//
// The parent directory is watched rather than the file so that editors
// which save by rename are still seen.
type FrameWatcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	path        string
	dir         string
	debounceDur time.Duration
	pending     bool
	lastEvent   time.Time
	handler     func(Update)
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	closed      bool
	stats       Stats
}

// NewFrameWatcher creates a watcher for path. A non-positive debounce uses
// DefaultDebounce.
func NewFrameWatcher(path string, debounce time.Duration, handler func(Update)) (*FrameWatcher, error) {
	if handler == nil {
		return nil, errors.New("frame watcher requires a handler")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &FrameWatcher{
		watcher:     watcher,
		path:        abs,
		dir:         filepath.Dir(abs),
		debounceDur: debounce,
		handler:     handler,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// ErrWatcherClosed is returned by Start after the watcher has been released.
var ErrWatcherClosed = errors.New("frame watcher closed")

// Start builds the frame once and then watches for changes in a goroutine.
// Call Stop to release the watcher. A failed Start releases it already.
func (fw *FrameWatcher) Start(ctx context.Context) error {
	fw.mu.Lock()
	if fw.closed {
		fw.mu.Unlock()
		return ErrWatcherClosed
	}
	if fw.running {
		fw.mu.Unlock()
		return nil
	}
	fw.running = true
	fw.mu.Unlock()

	if err := fw.watcher.Add(fw.dir); err != nil {
		fw.mu.Lock()
		fw.running = false
		fw.mu.Unlock()
		fw.release()
		return fmt.Errorf("failed to watch %s: %w", fw.dir, err)
	}
	logging.Watch("Watching %s", fw.path)

	fw.rebuild()
	go fw.run(ctx)
	return nil
}

// Stop stops the watch loop, if any, and releases the underlying watcher.
// It is safe to call without Start and more than once.
func (fw *FrameWatcher) Stop() {
	fw.mu.Lock()
	wasRunning := fw.running
	fw.running = false
	fw.mu.Unlock()

	if wasRunning {
		close(fw.stopCh)
		<-fw.doneCh
	}
	if fw.release() {
		logging.Watch("Stopped watching %s", fw.path)
	}
}

// release closes the fsnotify watcher once. It reports whether this call
// closed it.
func (fw *FrameWatcher) release() bool {
	fw.mu.Lock()
	if fw.closed {
		fw.mu.Unlock()
		return false
	}
	fw.closed = true
	fw.mu.Unlock()

	if err := fw.watcher.Close(); err != nil {
		logging.WatchError("error closing watcher: %v", err)
	}
	return true
}

// Stats returns a snapshot of watcher activity.
func (fw *FrameWatcher) Stats() Stats {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.stats
}

func (fw *FrameWatcher) run(ctx context.Context) {
	defer close(fw.doneCh)

	tick := fw.debounceDur / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	debounceTicker := time.NewTicker(tick)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.WatchDebug("context cancelled")
			return

		case <-fw.stopCh:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.WatchError("watcher error: %v", err)
			fw.mu.Lock()
			fw.stats.Errors++
			fw.mu.Unlock()

		case <-debounceTicker.C:
			fw.processDebounced()
		}
	}
}

func (fw *FrameWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != fw.path {
		return
	}

	var eventType string
	switch {
	case event.Op&fsnotify.Create != 0:
		eventType = "create"
	case event.Op&fsnotify.Write != 0:
		eventType = "modify"
	case event.Op&fsnotify.Remove != 0:
		eventType = "delete"
	case event.Op&fsnotify.Rename != 0:
		eventType = "rename"
	default:
		return
	}
	logging.WatchDebug("%s event for %s", eventType, event.Name)

	fw.mu.Lock()
	fw.stats.Events++
	fw.stats.LastEventTime = time.Now()
	fw.stats.LastEventType = eventType
	fw.pending = true
	fw.lastEvent = time.Now()
	fw.mu.Unlock()
}

func (fw *FrameWatcher) processDebounced() {
	fw.mu.Lock()
	ready := fw.pending && time.Since(fw.lastEvent) >= fw.debounceDur
	if ready {
		fw.pending = false
	}
	fw.mu.Unlock()

	if ready {
		fw.rebuild()
	}
}

func (fw *FrameWatcher) rebuild() {
	timer := logging.StartTimer(logging.CategoryWatch, "rebuild")

	f, err := os.Open(fw.path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.WatchDebug("file missing, skipping rebuild: %s", fw.path)
			return
		}
		fw.fail(err)
		return
	}
	blocks, err := ReadBlocks(f)
	f.Close()
	if err != nil {
		fw.fail(err)
		return
	}

	update := Update{
		Path:    fw.path,
		Blocks:  blocks,
		Frame:   sigma.BuildFrame(blocks),
		Preview: sigma.PreviewFrameOrder(blocks),
	}

	fw.mu.Lock()
	fw.stats.Rebuilds++
	fw.mu.Unlock()

	logging.Audit(logging.CategoryWatch).FrameBuilt(fw.path, len(blocks), timer.Stop())
	fw.handler(update)
}

func (fw *FrameWatcher) fail(err error) {
	logging.WatchError("failed to read %s: %v", fw.path, err)
	fw.mu.Lock()
	fw.stats.Errors++
	fw.mu.Unlock()
	fw.handler(Update{Path: fw.path, Err: err})
}

// ReadBlocks reads one block string per line. Lines are returned as
// written; trimming and blank filtering belong to the frame builder.
func ReadBlocks(r io.Reader) ([]string, error) {
	var blocks []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		blocks = append(blocks, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read blocks: %w", err)
	}
	return blocks, nil
}
