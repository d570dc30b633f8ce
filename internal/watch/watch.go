// Package watch converts PDFs dropped into a directory. Files are
// picked up on create or write once their size stops changing, so
// partially copied files are never fed to the pipeline. Only files
// dropped after the watcher starts are picked up.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	// DefaultPollInterval spaces the size checks used to decide a
	// dropped file has finished copying.
	DefaultPollInterval = 500 * time.Millisecond

	// DefaultStablePolls is how many consecutive unchanged sizes count
	// as quiescent.
	DefaultStablePolls = 2
)

// ConvertFunc runs one conversion. A failure is logged and the watcher
// keeps running.
type ConvertFunc func(ctx context.Context, pdfPath string) error

// Config holds watcher settings.
type Config struct {
	Dir          string        // directory to watch for dropped PDFs
	PollInterval time.Duration // spacing of quiescence size checks
	StablePolls  int           // unchanged sizes required before converting
	Logger       *slog.Logger
}

// Watcher converts PDFs as they land in a drop directory.
type Watcher struct {
	dir     string
	poll    time.Duration
	stable  int
	convert ConvertFunc
	logger  *slog.Logger
}

// New creates a watcher, filling defaults.
func New(cfg Config, convert ConvertFunc) *Watcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.StablePolls <= 0 {
		cfg.StablePolls = DefaultStablePolls
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Watcher{
		dir:     cfg.Dir,
		poll:    cfg.PollInterval,
		stable:  cfg.StablePolls,
		convert: convert,
		logger:  cfg.Logger,
	}
}

// fileStamp identifies one observed state of a dropped file. Matching
// stamps mean the file has not changed since it was last handled.
type fileStamp struct {
	size    int64
	modTime time.Time
}

// Run watches the drop directory until ctx is cancelled. Conversions
// run sequentially in event order.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching for dropped PDFs", "dir", w.dir)

	// A single drop arrives as a create followed by a burst of writes.
	// Stamps of handled files let the stale tail of the burst be
	// skipped after the first conversion.
	handled := make(map[string]fileStamp)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopping")
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event, handled)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event, handled map[string]fileStamp) {
	path := event.Name
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		delete(handled, path)
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if strings.ToLower(filepath.Ext(path)) != ".pdf" {
		return
	}

	if err := w.waitStable(ctx, path); err != nil {
		if ctx.Err() == nil {
			w.logger.Debug("file vanished before conversion", "path", path, "error", err)
		}
		return
	}

	fi, err := os.Stat(path)
	if err != nil {
		return
	}
	stamp := fileStamp{size: fi.Size(), modTime: fi.ModTime()}
	if prev, ok := handled[path]; ok && prev == stamp {
		return
	}
	handled[path] = stamp

	w.logger.Info("converting dropped PDF", "path", path)
	if err := w.convert(ctx, path); err != nil {
		w.logger.Error("conversion failed", "path", path, "error", err)
	}
}

// waitStable blocks until the file size holds steady for the
// configured number of polls. It errors when the file disappears or
// ctx ends first.
func (w *Watcher) waitStable(ctx context.Context, path string) error {
	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	var last int64 = -1
	stable := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fi, err := os.Stat(path)
			if err != nil {
				return err
			}
			if fi.Size() == last {
				stable++
				if stable >= w.stable {
					return nil
				}
			} else {
				stable = 0
				last = fi.Size()
			}
		}
	}
}
