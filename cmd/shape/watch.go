package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce is how long a path is ignored after it was formatted, so that
// editors saving in several steps and our own writes do not trigger it
// again.
const debounce = 100 * time.Millisecond

// watch formats files under args whenever they are written, until ctx is
// cancelled or the process is interrupted.
func (f *formatter) watch(ctx context.Context, args []string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close() //nolint:errcheck

	w := watchSet{files: map[string]bool{}}
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return err
		}
		if info.IsDir() {
			if err := watchDirRecursive(watcher, arg); err != nil {
				return err
			}
			w.roots = append(w.roots, filepath.Clean(arg))
			continue
		}
		w.files[filepath.Clean(arg)] = true
		if err := watcher.Add(filepath.Dir(arg)); err != nil {
			return err
		}
	}

	slog.Info("watching for changes", "paths", args)

	last := map[string]time.Time{}
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			path := filepath.Clean(event.Name)
			info, err := os.Stat(path)
			if err != nil {
				continue
			}
			if info.IsDir() {
				if event.Has(fsnotify.Create) && w.underRoot(path) {
					if err := watchDirRecursive(watcher, path); err != nil {
						slog.Warn("failed to watch directory", "path", path, "error", err)
					}
				}
				continue
			}
			if !f.watched(path, w) {
				continue
			}

			if time.Since(last[path]) < debounce {
				continue
			}
			f.process(ctx, []string{path})
			last[path] = time.Now()
			if err := f.cache.Save(); err != nil {
				slog.Warn("failed to save cache", "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "error", err)
		}
	}
}

// watchSet is what was named on the command line.
type watchSet struct {
	files map[string]bool
	roots []string
}

func (w watchSet) underRoot(path string) bool {
	for _, root := range w.roots {
		rel, err := filepath.Rel(root, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// watched reports whether a changed file should be formatted: either it was
// named on the command line, or it sits under a named directory and matches
// its configuration.
func (f *formatter) watched(path string, w watchSet) bool {
	if w.files[path] {
		return true
	}
	if !w.underRoot(path) {
		return false
	}
	cfg, err := f.resolver.forPath(path)
	if err != nil {
		slog.Warn("failed to load config", "path", path, "error", err)
		return false
	}
	return cfg.Matches(path)
}

// watchDirRecursive adds a directory and its subdirectories to the watch list
func watchDirRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if info.IsDir() {
			if path != root && skipDir(info.Name()) {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}
