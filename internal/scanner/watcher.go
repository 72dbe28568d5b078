package scanner

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/codemark/codemark/internal/checksum"
)

// EventCallback is called after a watcher-driven scan that changed the
// graph. kind is "created" or "moved"; path is relative to root.
type EventCallback func(kind, path string)

// Watch runs an fsnotify watcher over root and scans changed source files
// until ctx is cancelled. Only files whose extension appears in exts are
// scanned. Per-file checksums suppress rescans of unchanged content (editors
// commonly fire several Write events per save). New directories created at
// runtime are added to the watch list. cb, if non-nil, runs after each scan
// that created or moved notes.
func (sc *Scanner) Watch(ctx context.Context, root string, exts []string, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	sc.logger.Info("scanner: watching", slog.String("root", root))

	extSet := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		extSet[strings.TrimPrefix(e, ".")] = struct{}{}
	}
	seen := make(map[string]string) // rel path -> checksum of last scanned content

	// Debounce rapid write bursts per file.
	pending := make(map[string]struct{})
	var flushTimer *time.Timer
	var flushCh <-chan time.Time
	scheduleFlush := func() {
		if flushTimer == nil {
			flushTimer = time.NewTimer(200 * time.Millisecond)
			flushCh = flushTimer.C
		} else {
			flushTimer.Reset(200 * time.Millisecond)
		}
	}

	scanOne := func(rel string) {
		abs := filepath.Join(root, rel)
		data, readErr := os.ReadFile(abs)
		if readErr != nil {
			sc.logger.Warn("scanner: read failed", slog.String("path", rel), slog.String("error", readErr.Error()))
			return
		}
		cs := checksum.Sum(data)
		if seen[rel] == cs {
			return
		}
		seen[rel] = cs

		res, scanErr := sc.ProcessFile(ctx, rel, data)
		if scanErr != nil {
			sc.logger.Warn("scanner: scan failed", slog.String("path", rel), slog.String("error", scanErr.Error()))
			return
		}
		if cb != nil {
			if res.Created > 0 {
				cb("created", rel)
			}
			if res.Moved > 0 {
				cb("moved", rel)
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			if flushTimer != nil {
				flushTimer.Stop()
			}
			sc.logger.Info("scanner: stopped")
			return nil

		case <-flushCh:
			for rel := range pending {
				scanOne(rel)
				delete(pending, rel)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						sc.logger.Warn("scanner: add dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					continue
				}
			}

			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			ext := strings.TrimPrefix(filepath.Ext(ev.Name), ".")
			if _, ok := extSet[ext]; !ok {
				continue
			}
			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil {
				continue
			}
			pending[rel] = struct{}{}
			scheduleFlush()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			sc.logger.Error("scanner: watch error", slog.String("error", watchErr.Error()))
		}
	}
}

// ScanAll walks root once and scans every matching file. Used at startup so
// markers added while the daemon was down are picked up.
func (sc *Scanner) ScanAll(ctx context.Context, root string, exts []string) error {
	extSet := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		extSet[strings.TrimPrefix(e, ".")] = struct{}{}
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		ext := strings.TrimPrefix(filepath.Ext(path), ".")
		if _, ok := extSet[ext]; !ok {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			sc.logger.Warn("scanner: read failed", slog.String("path", rel), slog.String("error", readErr.Error()))
			return nil
		}
		if _, scanErr := sc.ProcessFile(ctx, rel, data); scanErr != nil {
			sc.logger.Warn("scanner: scan failed", slog.String("path", rel), slog.String("error", scanErr.Error()))
		}
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
