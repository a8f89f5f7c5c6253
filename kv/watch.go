package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceDuration is the default window for coalescing file events.
const DefaultDebounceDuration = 250 * time.Millisecond

// Debouncer coalesces rapid events into a single callback invocation.
// When Trigger is called multiple times within the debounce duration,
// only the last callback is executed after the duration elapses.
type Debouncer struct {
	duration time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	seq      uint64
}

// NewDebouncer creates a new Debouncer with the specified duration.
// If duration is 0, DefaultDebounceDuration is used.
func NewDebouncer(duration time.Duration) *Debouncer {
	if duration == 0 {
		duration = DefaultDebounceDuration
	}
	return &Debouncer{duration: duration}
}

// Trigger schedules the callback to be called after the debounce duration,
// replacing any callback still pending.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	seq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, func() {
		d.mu.Lock()
		// a newer Trigger or Cancel superseded this callback
		if seq != d.seq {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()

		callback()
	})
}

// Cancel cancels any pending callback.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Watch calls onChange whenever the file for key is replaced by something
// other than this store. Bursts of events are coalesced with a debouncer.
//
// Watch blocks until ctx is cancelled and then returns nil. It returns an
// error if the watcher cannot be set up. Once Watch has returned, onChange
// is not running and will not be called again.
func (f *FileStore) Watch(ctx context.Context, key string, onChange func()) error {
	path, err := f.Path(key)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	// watch the directory: atomic renames replace the file's inode
	if err := w.Add(f.dir); err != nil {
		return fmt.Errorf("watching %s: %w", f.dir, err)
	}

	debouncer := NewDebouncer(DefaultDebounceDuration)

	// checkMu serialises callbacks with shutdown: once Watch returns, no
	// callback is running and none will start.
	var (
		checkMu sync.Mutex
		stopped bool
	)
	defer func() {
		debouncer.Cancel()
		checkMu.Lock()
		stopped = true
		checkMu.Unlock()
	}()

	check := func() {
		checkMu.Lock()
		defer checkMu.Unlock()
		if stopped || ctx.Err() != nil {
			return
		}

		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return
		}
		if f.ownWrite(key, data) {
			return
		}
		onChange()
	}

	target := filepath.Base(path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			debouncer.Trigger(check)
		case _, ok := <-w.Errors:
			if !ok {
				return nil
			}
		}
	}
}
