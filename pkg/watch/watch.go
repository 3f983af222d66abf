// Package watch follows a local blob container and reports when a newer
// scan folder appears.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/vulntor/scanlens/pkg/report"
)

// DefaultDebounce coalesces the burst of events a scan upload produces.
const DefaultDebounce = 500 * time.Millisecond

// LocateFunc returns the newest scan folder. ok is false when none exists.
type LocateFunc func(ctx context.Context) (loc report.ScanLocation, ok bool, err error)

// Watcher watches a container directory tree and calls OnLatest whenever
// the newest scan folder changes. The first locate after Start always
// reports the current latest folder, if any.
type Watcher struct {
	dir      string
	locate   LocateFunc
	onLatest func(report.ScanLocation)

	watcher       *fsnotify.Watcher
	debounceDelay time.Duration
	logger        zerolog.Logger

	// mu protects the debounce timer and ctx
	mu            sync.Mutex
	debounceTimer *time.Timer
	ctx           context.Context

	// scanMu serializes rescans and protects last
	scanMu   sync.Mutex
	last     report.ScanLocation
	haveLast bool
}

// New creates a watcher over dir. A non-positive debounce selects
// DefaultDebounce.
func New(dir string, debounce time.Duration, locate LocateFunc, onLatest func(report.ScanLocation), logger zerolog.Logger) (*Watcher, error) {
	if locate == nil || onLatest == nil {
		return nil, errors.New("watch: locate and onLatest are required")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		dir:           dir,
		locate:        locate,
		onLatest:      onLatest,
		watcher:       fw,
		debounceDelay: debounce,
		logger:        logger.With().Str("component", "watch").Logger(),
	}, nil
}

// Start watches until ctx is canceled. It blocks; run it in its own
// goroutine when the caller has other work:
//
//	go w.Start(ctx)
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addTree(w.dir); err != nil {
		w.logger.Error().
			Err(err).
			Str("dir", w.dir).
			Msg("Failed to watch container directory")
		return err
	}

	w.mu.Lock()
	w.ctx = ctx
	w.mu.Unlock()

	w.logger.Info().
		Str("dir", w.dir).
		Dur("debounce", w.debounceDelay).
		Msg("Started watching scan folders")

	defer func() {
		w.mu.Lock()
		if w.debounceTimer != nil {
			w.debounceTimer.Stop()
		}
		w.mu.Unlock()
		if err := w.watcher.Close(); err != nil {
			w.logger.Warn().Err(err).Msg("Error closing watcher")
		}
		w.logger.Info().Msg("Stopped watching scan folders")
	}()

	w.rescan(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().
				Err(err).
				Msg("File watcher error")
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&fsnotify.Chmod == event.Op {
		return
	}

	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			// New target or date folder; files may already be inside.
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn().Err(err).Str("dir", event.Name).Msg("Failed to watch new directory")
			}
		}
	}

	w.logger.Debug().
		Str("op", event.Op.String()).
		Str("file", event.Name).
		Msg("Detected container change")

	w.scheduleRescan()
}

// addTree watches root and every directory below it.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// A folder removed mid-walk is not an error for us.
			if errors.Is(err, fs.ErrNotExist) && p != root {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return w.watcher.Add(p)
	})
}

// scheduleRescan schedules a locate after the debounce delay. If one is
// already scheduled, the timer is reset.
func (w *Watcher) scheduleRescan() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	ctx := w.ctx
	w.debounceTimer = time.AfterFunc(w.debounceDelay, func() {
		if ctx == nil || ctx.Err() != nil {
			return
		}
		w.rescan(ctx)
	})
}

func (w *Watcher) rescan(ctx context.Context) {
	w.scanMu.Lock()
	defer w.scanMu.Unlock()

	loc, ok, err := w.locate(ctx)
	if err != nil {
		w.logger.Warn().Err(err).Msg("Failed to locate latest scan")
		return
	}
	if !ok || (w.haveLast && loc == w.last) {
		return
	}

	w.last, w.haveLast = loc, true
	w.logger.Info().
		Str("target", loc.Target).
		Str("date", loc.Date).
		Msg("New latest scan")
	w.onLatest(loc)
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
