// Package watch re-validates documents when they change on disk.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/zeebo/xxh3"
)

const eventChannelBuffer = 256

// Op is the kind of change reported for a file.
type Op string

const (
	OpChanged Op = "changed"
	OpRemoved Op = "removed"
)

// Event is a debounced, content-deduplicated file change.
type Event struct {
	Path string
	Op   Op
}

type Config struct {
	Debounce   time.Duration
	Extensions []string // e.g. [".txt", ".docx"]
}

// Watcher watches directories recursively and emits an Event per file once
// its changes settle for Config.Debounce. Writes that leave the content
// unchanged are dropped.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	exts     map[string]bool
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[string]time.Time
	hashes  map[string]xxh3.Uint128

	events chan Event
}

func New(cfg Config, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}
	exts := make(map[string]bool, len(cfg.Extensions))
	for _, e := range cfg.Extensions {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = true
	}
	return &Watcher{
		fsw:      fsw,
		debounce: cfg.Debounce,
		exts:     exts,
		logger:   logger,
		pending:  map[string]time.Time{},
		hashes:   map[string]xxh3.Uint128{},
		events:   make(chan Event, eventChannelBuffer),
	}, nil
}

// Events is closed when the watcher stops.
func (w *Watcher) Events() <-chan Event { return w.events }

// Add watches root and every non-hidden directory below it. Existing files
// are hashed so that an unchanged rewrite is not reported.
func (w *Watcher) Add(root string) error {
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			if w.wanted(p) {
				if sum, ok := hashFile(p); ok {
					w.mu.Lock()
					w.hashes[p] = sum
					w.mu.Unlock()
				}
			}
			return nil
		}
		if base := d.Name(); p != root && strings.HasPrefix(base, ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			w.logger.Warn("failed to watch directory", "path", p, "error", err)
		}
		return nil
	})
}

// Run processes events until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.events)
	defer w.fsw.Close()

	tick := time.NewTicker(w.debounce / 2)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		case now := <-tick.C:
			w.flush(ctx, now)
		}
	}
}

func (w *Watcher) wanted(p string) bool {
	if len(w.exts) == 0 {
		return true
	}
	return w.exts[strings.ToLower(filepath.Ext(p))]
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.Add(ev.Name); err != nil {
				w.logger.Warn("failed to watch new directory", "path", ev.Name, "error", err)
			}
			return
		}
	}
	if !w.wanted(ev.Name) || ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
		return
	}
	w.mu.Lock()
	w.pending[ev.Name] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) flush(ctx context.Context, now time.Time) {
	var ready []string
	w.mu.Lock()
	for p, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			ready = append(ready, p)
			delete(w.pending, p)
		}
	}
	w.mu.Unlock()

	for _, p := range ready {
		ev, ok := w.classify(p)
		if !ok {
			continue
		}
		select {
		case w.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

// classify hashes p and reports whether it changed since last seen.
func (w *Watcher) classify(p string) (Event, bool) {
	sum, exists := hashFile(p)

	w.mu.Lock()
	defer w.mu.Unlock()
	prev, known := w.hashes[p]
	if !exists {
		if !known {
			return Event{}, false
		}
		delete(w.hashes, p)
		return Event{Path: p, Op: OpRemoved}, true
	}
	if known && prev == sum {
		return Event{}, false
	}
	w.hashes[p] = sum
	return Event{Path: p, Op: OpChanged}, true
}

func hashFile(p string) (xxh3.Uint128, bool) {
	b, err := os.ReadFile(p)
	if err != nil {
		return xxh3.Uint128{}, false
	}
	return xxh3.Hash128(b), true
}
